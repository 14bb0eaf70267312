// Package slots computes bookable windows for a partner day. It is pure:
// the caller supplies the schedule, the bay inventory and a snapshot of the
// day's bookings, and the same input always yields the same output.
package slots

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// StepMinutes шаг сетки кандидатов
const StepMinutes = domain.SlotStepMinutes

// Input входные данные расчёта
type Input struct {
	Schedule        *domain.WeeklySchedule
	Capacity        *domain.CapacityPlan
	Bookings        []*domain.Booking
	Category        domain.Category
	Date            time.Time
	DurationMinutes int

	// EarliestStart окна, начинающиеся раньше, отбрасываются (минимальное время до записи на сегодня)
	EarliestStart *types.MinuteOfDay

	// ExcludeBookingID бронирование не учитывается при подсчёте (перенос самого себя)
	ExcludeBookingID int64
}

// Calculate возвращает окна, в которых свободен хотя бы один бокс категории.
// Окна упорядочены по времени начала.
func Calculate(in Input) []domain.Window {
	windows := make([]domain.Window, 0)
	if in.Schedule == nil || in.Capacity == nil || in.DurationMinutes <= 0 {
		return windows
	}

	day := in.Schedule.Day(in.Date)
	if !day.IsEnabled {
		return windows
	}

	bays := in.Capacity.ActiveBays(in.Category)
	if len(bays) == 0 {
		return windows
	}

	for _, block := range day.TimeBlocks {
		last := block.End.AddMinutes(-in.DurationMinutes)
		for start := block.Start; start <= last; start = start.AddMinutes(StepMinutes) {
			if in.EarliestStart != nil && start < *in.EarliestStart {
				continue
			}

			free := len(FreeBays(bays, in.Bookings, in.Category, start, in.DurationMinutes, in.Schedule.BufferMinutes, in.ExcludeBookingID))
			if free == 0 {
				continue
			}

			windows = append(windows, domain.Window{
				Start:        start,
				End:          start.AddMinutes(in.DurationMinutes),
				FreeBayCount: free,
			})
		}
	}

	return windows
}

// FreeBays возвращает боксы, не занятые пересекающимися бронированиями,
// в порядке их объявления в плане вместимости.
func FreeBays(
	bays []domain.Bay,
	bookings []*domain.Booking,
	category domain.Category,
	start types.MinuteOfDay,
	durationMinutes int,
	bufferMinutes int,
	excludeBookingID int64,
) []domain.Bay {
	used := make(map[int64]struct{})
	for _, b := range bookings {
		if excludeBookingID != 0 && b.ID == excludeBookingID {
			continue
		}
		if Overlaps(b, category, start, durationMinutes, bufferMinutes) {
			used[b.BayID] = struct{}{}
		}
	}

	free := make([]domain.Bay, 0, len(bays))
	for _, bay := range bays {
		if _, ok := used[bay.ID]; !ok {
			free = append(free, bay)
		}
	}
	return free
}

// Overlaps сообщает, занимает ли бронирование бокс в окне [start, start+duration).
// Буфер добавляется только после существующего бронирования.
func Overlaps(b *domain.Booking, category domain.Category, start types.MinuteOfDay, durationMinutes, bufferMinutes int) bool {
	if !b.Status.IsActive() || b.Category != category {
		return false
	}
	return b.Overlaps(start, durationMinutes, bufferMinutes)
}
