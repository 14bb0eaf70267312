package domain

import (
	"fmt"
	"time"
)

// Category class of service a bay or booking belongs to.
type Category string

const (
	CategoryWash      Category = "wash"
	CategoryDetailing Category = "detailing"
	CategoryOther     Category = "other"
)

// Categories lists all categories in a stable order.
var Categories = []Category{CategoryWash, CategoryDetailing, CategoryOther}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryWash, CategoryDetailing, CategoryOther:
		return true
	}
	return false
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}
	return c, nil
}

// Bay physical service position.
type Bay struct {
	ID          int64    `json:"id"`
	DisplayName string   `json:"displayName"`
	Category    Category `json:"category"`
	IsActive    bool     `json:"isActive"`
}

// CapacityPlan bay inventory of a partner. Bays keep their declared order,
// which is the order the allocator assigns them in.
type CapacityPlan struct {
	PartnerID int64
	Bays      []Bay
	UpdatedAt time.Time
}

// CapacityByCategory counts active bays per category. Every category is present in the result.
func (p *CapacityPlan) CapacityByCategory() map[Category]int {
	result := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		result[c] = 0
	}
	for _, bay := range p.Bays {
		if bay.IsActive {
			result[bay.Category]++
		}
	}
	return result
}

// ActiveBays returns the active bays of a category in declared order.
func (p *CapacityPlan) ActiveBays(category Category) []Bay {
	bays := make([]Bay, 0, len(p.Bays))
	for _, bay := range p.Bays {
		if bay.IsActive && bay.Category == category {
			bays = append(bays, bay)
		}
	}
	return bays
}

// Validate checks ids are positive and unique and categories are known.
func (p *CapacityPlan) Validate() error {
	if len(p.Bays) > MaxBaysPerPartner {
		return fmt.Errorf("%w: at most %d bays per partner", ErrInvalidInput, MaxBaysPerPartner)
	}
	seen := make(map[int64]struct{}, len(p.Bays))
	for i, bay := range p.Bays {
		if bay.ID <= 0 {
			return fmt.Errorf("%w: bay %d: id must be positive", ErrInvalidInput, i)
		}
		if _, ok := seen[bay.ID]; ok {
			return fmt.Errorf("%w: duplicate bay id %d", ErrInvalidInput, bay.ID)
		}
		seen[bay.ID] = struct{}{}
		if !bay.Category.IsValid() {
			return fmt.Errorf("%w: bay %d: unknown category %q", ErrInvalidInput, bay.ID, bay.Category)
		}
	}
	return nil
}

// DefaultCapacity policy used when a partner has no stored bay inventory:
// one wash bay and one detailing bay.
func DefaultCapacity(partnerID int64) *CapacityPlan {
	return &CapacityPlan{
		PartnerID: partnerID,
		Bays: []Bay{
			{ID: 1, DisplayName: "Wash bay 1", Category: CategoryWash, IsActive: true},
			{ID: 2, DisplayName: "Detailing bay 1", Category: CategoryDetailing, IsActive: true},
		},
	}
}
