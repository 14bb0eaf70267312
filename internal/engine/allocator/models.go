package allocator

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Исходы резервирования для метрик
const (
	OutcomeReserved    = "reserved"
	OutcomeRescheduled = "rescheduled"
	OutcomeUnavailable = "unavailable"
	OutcomeTimeout     = "timeout"
	OutcomeError       = "error"
)

// Claim запрос на бокс для окна. Schedule и Capacity уже разрешены вызывающим
// (сохранённые или политика по умолчанию).
type Claim struct {
	PartnerID       int64
	Category        domain.Category
	Date            time.Time
	Start           types.MinuteOfDay
	DurationMinutes int
	Schedule        *domain.WeeklySchedule
	Capacity        *domain.CapacityPlan
}

// End конец окна
func (c Claim) End() types.MinuteOfDay {
	return c.Start.AddMinutes(c.DurationMinutes)
}

// Key ключ конкуренции (партнёр, категория, дата)
func (c Claim) Key() string {
	return fmt.Sprintf("alloc:%d:%s:%s", c.PartnerID, c.Category, c.Date.Format(domain.DateFormat))
}

// Move перенос существующего бронирования
type Move struct {
	BookingID int64
	Actor     domain.Actor
	Reason    *string
	Now       time.Time
}
