package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	BookingID *int64  `json:"bookingId,omitempty" validate:"omitempty,gt=0"`
	NewDate   string  `json:"newDate" validate:"required,isodate"`
	NewStart  string  `json:"newStart" validate:"required,hhmm"`
	NewEnd    *string `json:"newEnd,omitempty" validate:"omitempty,hhmm"`
	Actor     string  `json:"actor,omitempty" validate:"omitempty,oneof=customer partner"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// RescheduleBookingResponse перенесённое бронирование
type RescheduleBookingResponse struct {
	*models.BookingResponse
	Attempts int `json:"attempts"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID, userID int64) (*rescheduleBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.NewDate)
	if err != nil {
		return nil, err
	}

	start, err := types.ParseMinuteOfDay(r.NewStart)
	if err != nil {
		return nil, err
	}

	req := &rescheduleBooking.Request{
		BookingID: bookingID,
		UserID:    userID,
		Actor:     domain.Actor(r.Actor),
		NewDate:   date,
		NewStart:  start,
		Reason:    r.Reason,
	}

	if r.NewEnd != nil {
		end, err := types.ParseMinuteOfDay(*r.NewEnd)
		if err != nil {
			return nil, err
		}
		req.NewEnd = &end
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		BookingResponse: models.FromDomainBooking(resp.Booking),
		Attempts:        resp.Attempts,
	}
}
