package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID int64
	Actor  domain.Actor
	Reason *string
}

// AdvanceStatusRequest запрос на перевод бронирования в следующий статус
type AdvanceStatusRequest struct {
	UserID       int64
	TargetStatus domain.BookingStatus
}

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	UserID     int64
	CustomerID int64
	Status     *string
}

// GetPartnerBookingsRequest запрос на получение бронирований партнёра
type GetPartnerBookingsRequest struct {
	UserID          int64
	PartnerID       int64
	Date            *time.Time
	From            *time.Time
	To              *time.Time
	Category        *string
	Status          *string
	IncludeInactive bool
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetPartnerBookingsRequest) ToDomainFilter() (domain.PartnerBookingsFilter, error) {
	filter := domain.PartnerBookingsFilter{
		PartnerID:       r.PartnerID,
		Date:            r.Date,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return filter, fmt.Errorf("%w: period end is before start", domain.ErrInvalidInput)
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	if r.Category != nil {
		category, err := domain.ParseCategory(*r.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &category
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID               int64                `json:"id"`
	CustomerID       int64                `json:"customerId"`
	PartnerID        int64                `json:"partnerId"`
	ServiceID        int64                `json:"serviceId"`
	ServiceName      string               `json:"serviceName"`
	Category         string               `json:"category"`
	BayID            int64                `json:"bayId"`
	Date             string               `json:"date"`  // "2025-10-15"
	Start            string               `json:"start"` // "10:00"
	End              string               `json:"end"`
	DurationMinutes  int                  `json:"durationMinutes"`
	Status           string               `json:"status"`
	NextStatus       *string              `json:"nextStatus,omitempty"`
	DeliveryRequired bool                 `json:"deliveryRequired"`
	CarID            *int64               `json:"carId,omitempty"`
	VehicleBodyType  *string              `json:"vehicleBodyType,omitempty"`
	SubscriptionTier string               `json:"subscriptionTier"`
	Products         []domain.ProductLine `json:"products"`
	Pricing          domain.Pricing       `json:"pricing"`
	Notes            *string              `json:"notes,omitempty"`

	CancelledBy        *string    `json:"cancelledBy,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	RescheduledFrom *SlotResponse `json:"rescheduledFrom,omitempty"`
	RescheduledAt   *time.Time    `json:"rescheduledAt,omitempty"`
	RescheduleCount int           `json:"rescheduleCount"`

	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	StatusChangedAt time.Time  `json:"statusChangedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	SlotHistory []SlotHistoryResponse `json:"slotHistory,omitempty"`
}

// SlotResponse окно бронирования
type SlotResponse struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	BayID int64  `json:"bayId"`
}

// SlotHistoryResponse запись истории окон
type SlotHistoryResponse struct {
	SlotResponse
	Status    string    `json:"status"`
	Actor     string    `json:"actor"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		CustomerID:         b.CustomerID,
		PartnerID:          b.PartnerID,
		ServiceID:          b.ServiceID,
		ServiceName:        b.ServiceName,
		Category:           string(b.Category),
		BayID:              b.BayID,
		Date:               b.SlotDate.Format(domain.DateFormat),
		Start:              b.SlotStart.String(),
		End:                b.SlotEnd.String(),
		DurationMinutes:    b.DurationMinutes(),
		Status:             string(b.Status),
		DeliveryRequired:   b.DeliveryRequired,
		CarID:              b.CarID,
		VehicleBodyType:    b.VehicleBodyType,
		SubscriptionTier:   b.SubscriptionTier,
		Products:           b.Products,
		Pricing:            b.Pricing,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		RescheduledAt:      b.RescheduledAt,
		RescheduleCount:    b.RescheduleCount,
		StartedAt:          b.StartedAt,
		CompletedAt:        b.CompletedAt,
		StatusChangedAt:    b.StatusChangedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if resp.Products == nil {
		resp.Products = []domain.ProductLine{}
	}

	if next, ok := domain.NextStatus(b.Status, b.DeliveryRequired); ok {
		s := string(next)
		resp.NextStatus = &s
	}

	if b.CancelledBy != nil {
		actor := string(*b.CancelledBy)
		resp.CancelledBy = &actor
	}

	if b.RescheduledFromDate != nil && b.RescheduledFromStart != nil && b.RescheduledFromEnd != nil {
		from := &SlotResponse{
			Date:  b.RescheduledFromDate.Format(domain.DateFormat),
			Start: b.RescheduledFromStart.String(),
			End:   b.RescheduledFromEnd.String(),
		}
		if b.RescheduledFromBayID != nil {
			from.BayID = *b.RescheduledFromBayID
		}
		resp.RescheduledFrom = from
	}

	return resp
}

// WithSlotHistory добавляет историю окон
func (r *BookingResponse) WithSlotHistory(entries []*domain.SlotHistoryEntry) *BookingResponse {
	r.SlotHistory = make([]SlotHistoryResponse, 0, len(entries))
	for _, e := range entries {
		r.SlotHistory = append(r.SlotHistory, SlotHistoryResponse{
			SlotResponse: SlotResponse{
				Date:  e.SlotDate.Format(domain.DateFormat),
				Start: e.SlotStart.String(),
				End:   e.SlotEnd.String(),
				BayID: e.BayID,
			},
			Status:    string(e.Status),
			Actor:     string(e.Actor),
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		})
	}
	return r
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, booking := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(booking))
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown booking status %q", domain.ErrInvalidInput, status)
	}
	return s, nil
}
