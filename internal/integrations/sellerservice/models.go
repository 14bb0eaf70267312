package sellerservice

// Service услуга партнёра из каталога SellerService
type Service struct {
	ID              int64           `json:"id"`
	PartnerID       int64           `json:"partnerId"`
	Name            string          `json:"name"`
	Category        string          `json:"category"` // wash, detailing, other
	DurationMinutes int             `json:"durationMinutes"`
	IsPickupDropoff bool            `json:"isPickupDropoff"`
	BodyTypePricing []BodyTypePrice `json:"bodyTypePricing"`
}

// BodyTypePrice цена услуги для класса кузова
type BodyTypePrice struct {
	BodyType string  `json:"bodyType"`
	Price    float64 `json:"price"`
}

// Product дополнительный товар партнёра
type Product struct {
	ID        int64   `json:"id"`
	PartnerID int64   `json:"partnerId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// Partner партнёр (автомойка) с менеджерами, которым разрешено управлять расписанием
type Partner struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	ManagerIDs []int64 `json:"managerIds"`
}

// IsManager является ли пользователь менеджером партнёра
func (p *Partner) IsManager(userID int64) bool {
	for _, id := range p.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
