package update_booking_status

import (
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	BookingID    *int64 `json:"bookingId,omitempty" validate:"omitempty,gt=0"`
	TargetStatus string `json:"targetStatus" validate:"required"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest(userID int64) (*models.AdvanceStatusRequest, error) {
	status, err := models.ToDomainBookingStatus(r.TargetStatus)
	if err != nil {
		return nil, err
	}

	return &models.AdvanceStatusRequest{
		UserID:       userID,
		TargetStatus: status,
	}, nil
}
