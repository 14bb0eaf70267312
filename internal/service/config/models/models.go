package models

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// UpdateConfigRequest запрос на замену расписания и боксов партнёра
type UpdateConfigRequest struct {
	UserID    int64
	PartnerID int64
	Schedule  domain.WeeklySchedule
	Capacity  domain.CapacityPlan
}

// ConfigResponse ответ с настройками партнёра
type ConfigResponse struct {
	PartnerID          int64                   `json:"partnerId"`
	Schedule           ScheduleResponse        `json:"schedule"`
	Bays               []domain.Bay            `json:"bays"`
	CapacityByCategory map[domain.Category]int `json:"capacityByCategory"`
	ScheduleIsDefault  bool                    `json:"scheduleIsDefault"`
	CapacityIsDefault  bool                    `json:"capacityIsDefault"`
}

// ScheduleResponse недельное расписание
type ScheduleResponse struct {
	Days                    [7]domain.DaySchedule `json:"days"` // индекс = time.Weekday, 0 = воскресенье
	BufferMinutes           int                   `json:"bufferMinutes"`
	MaxAdvanceDays          int                   `json:"maxAdvanceDays"`
	MinBookingNoticeMinutes int                   `json:"minBookingNoticeMinutes"`
	UpdatedAt               *time.Time            `json:"updatedAt,omitempty"`
}

// FromDomain собирает ответ из расписания и боксов
func FromDomain(schedule *domain.WeeklySchedule, capacity *domain.CapacityPlan, scheduleIsDefault, capacityIsDefault bool) *ConfigResponse {
	resp := &ConfigResponse{
		PartnerID: schedule.PartnerID,
		Schedule: ScheduleResponse{
			Days:                    schedule.Days,
			BufferMinutes:           schedule.BufferMinutes,
			MaxAdvanceDays:          schedule.MaxAdvanceDays,
			MinBookingNoticeMinutes: schedule.MinBookingNoticeMinutes,
		},
		Bays:               capacity.Bays,
		CapacityByCategory: capacity.CapacityByCategory(),
		ScheduleIsDefault:  scheduleIsDefault,
		CapacityIsDefault:  capacityIsDefault,
	}
	if !schedule.UpdatedAt.IsZero() {
		updatedAt := schedule.UpdatedAt
		resp.Schedule.UpdatedAt = &updatedAt
	}
	if resp.Bays == nil {
		resp.Bays = []domain.Bay{}
	}
	return resp
}
