package domain

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// BookingStatus lifecycle status of a booking.
type BookingStatus string

const (
	StatusBooked         BookingStatus = "booked"
	StatusInProgress     BookingStatus = "in_progress"
	StatusCompleted      BookingStatus = "completed"
	StatusPicked         BookingStatus = "picked"
	StatusOutForDelivery BookingStatus = "out_for_delivery"
	StatusDelivered      BookingStatus = "delivered"
	StatusCancelled      BookingStatus = "cancelled"

	// StatusRescheduled is written only to the slot history.
	StatusRescheduled BookingStatus = "rescheduled"
)

// IsValid reports whether s is a booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusBooked, StatusInProgress, StatusCompleted, StatusPicked,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether a booking in this status occupies its bay.
func (s BookingStatus) IsActive() bool {
	return s == StatusBooked || s == StatusInProgress
}

// ActiveStatuses statuses that hold a bay.
var ActiveStatuses = []BookingStatus{StatusBooked, StatusInProgress}

// Actor who performed a cancellation.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorPartner  Actor = "partner"
)

// IsValid reports whether a is a known actor.
func (a Actor) IsValid() bool {
	return a == ActorCustomer || a == ActorPartner
}

// Subscription tiers
const (
	TierBasic   = "basic"
	TierPremium = "premium"
)

// ProductLine priced add-on product.
type ProductLine struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Pricing breakdown. Every amount is rounded to 2 decimals half-up.
type Pricing struct {
	BasePrice            float64 `json:"basePrice"`
	SubscriptionDiscount float64 `json:"subscriptionDiscount"`
	ProductsTotal        float64 `json:"productsTotal"`
	Subtotal             float64 `json:"subtotal"`
	PlatformFee          float64 `json:"platformFee"`
	FinalPrice           float64 `json:"finalPrice"`
	PartnerPayout        float64 `json:"partnerPayout"`
}

// Booking reservation of one bay for one window.
type Booking struct {
	ID               int64
	CustomerID       int64
	PartnerID        int64
	ServiceID        int64
	ServiceName      string
	Category         Category
	BayID            int64
	SlotDate         time.Time
	SlotStart        types.MinuteOfDay
	SlotEnd          types.MinuteOfDay
	Status           BookingStatus
	DeliveryRequired bool
	CarID            *int64
	VehicleBodyType  *string
	SubscriptionTier string
	Products         []ProductLine
	Pricing          Pricing
	Notes            *string

	CancelledBy        *Actor
	CancellationReason *string
	CancelledAt        *time.Time

	RescheduledFromDate  *time.Time
	RescheduledFromStart *types.MinuteOfDay
	RescheduledFromEnd   *types.MinuteOfDay
	RescheduledFromBayID *int64
	RescheduledAt        *time.Time
	RescheduleCount      int

	StartedAt       *time.Time
	CompletedAt     *time.Time
	StatusChangedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DurationMinutes length of the booked window.
func (b *Booking) DurationMinutes() int {
	return int(b.SlotEnd - b.SlotStart)
}

// StartsAt absolute start of the booked window in loc.
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	return b.SlotStart.OnDate(DateIn(b.SlotDate, loc))
}

// Overlaps reports whether the booking window overlaps [start, start+duration)
// once its own end is extended by buffer.
func (b *Booking) Overlaps(start types.MinuteOfDay, duration, buffer int) bool {
	return start < b.SlotEnd.AddMinutes(buffer) && b.SlotStart < start.AddMinutes(duration)
}

// SlotHistoryEntry audit record of a slot the booking left.
type SlotHistoryEntry struct {
	ID        int64
	BookingID int64
	BayID     int64
	SlotDate  time.Time
	SlotStart types.MinuteOfDay
	SlotEnd   types.MinuteOfDay
	Status    BookingStatus
	Actor     Actor
	Reason    *string
	CreatedAt time.Time
}

// PartnerBookingsFilter filter for partner booking listings.
// Date takes precedence over From/To.
type PartnerBookingsFilter struct {
	PartnerID       int64
	Date            *time.Time
	From            *time.Time
	To              *time.Time
	Category        *Category
	Status          *BookingStatus
	IncludeInactive bool
}

// CustomerBookingsFilter filter for customer booking listings.
type CustomerBookingsFilter struct {
	CustomerID int64
	Status     *BookingStatus
}

// DateIn returns midnight of date's calendar day in loc.
func DateIn(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
