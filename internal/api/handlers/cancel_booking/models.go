package cancel_booking

import (
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	BookingID *int64  `json:"bookingId,omitempty" validate:"omitempty,gt=0"`
	Actor     string  `json:"actor,omitempty" validate:"omitempty,oneof=customer partner"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(userID int64) *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		UserID: userID,
		Actor:  domain.Actor(r.Actor),
		Reason: r.Reason,
	}
}
