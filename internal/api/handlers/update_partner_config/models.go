package update_partner_config

import (
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/config/models"
)

// UpdatePartnerConfigRequest HTTP request model. Расписание и боксы заменяются целиком.
type UpdatePartnerConfigRequest struct {
	Schedule ScheduleRequest `json:"schedule"`
	Bays     []BayRequest    `json:"bays" validate:"required,min=1,dive"`
}

// ScheduleRequest недельное расписание, индекс дня = time.Weekday (0 = воскресенье)
type ScheduleRequest struct {
	Days                    [7]domain.DaySchedule `json:"days"`
	BufferMinutes           int                   `json:"bufferMinutes" validate:"gte=0"`
	MaxAdvanceDays          int                   `json:"maxAdvanceDays" validate:"gte=0"`
	MinBookingNoticeMinutes int                   `json:"minBookingNoticeMinutes" validate:"gte=0"`
}

// BayRequest бокс партнёра
type BayRequest struct {
	ID          int64  `json:"id" validate:"required,gt=0"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,oneof=wash detailing other"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса. Бокс без isActive считается активным.
func (r *UpdatePartnerConfigRequest) ToServiceRequest(partnerID, userID int64) *models.UpdateConfigRequest {
	bays := make([]domain.Bay, 0, len(r.Bays))
	for _, b := range r.Bays {
		isActive := true
		if b.IsActive != nil {
			isActive = *b.IsActive
		}
		bays = append(bays, domain.Bay{
			ID:          b.ID,
			DisplayName: b.DisplayName,
			Category:    domain.Category(b.Category),
			IsActive:    isActive,
		})
	}

	return &models.UpdateConfigRequest{
		UserID:    userID,
		PartnerID: partnerID,
		Schedule: domain.WeeklySchedule{
			PartnerID:               partnerID,
			Days:                    r.Schedule.Days,
			BufferMinutes:           r.Schedule.BufferMinutes,
			MaxAdvanceDays:          r.Schedule.MaxAdvanceDays,
			MinBookingNoticeMinutes: r.Schedule.MinBookingNoticeMinutes,
		},
		Capacity: domain.CapacityPlan{
			PartnerID: partnerID,
			Bays:      bays,
		},
	}
}
