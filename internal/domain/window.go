package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Window candidate time window with the number of bays still free in it.
type Window struct {
	Start        types.MinuteOfDay
	End          types.MinuteOfDay
	FreeBayCount int
}

// OnGrid reports whether start lies on the slot grid anchored at the block start.
func (b TimeBlock) OnGrid(start types.MinuteOfDay) bool {
	return start >= b.Start && int(start-b.Start)%SlotStepMinutes == 0
}

// DaysBetween counts calendar days from the day of from to the day of to.
// Both arguments are compared by their own calendar date.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// CheckBookingWindow validates the date against the advance-booking policy.
// now must already be in the engine location.
func (s *WeeklySchedule) CheckBookingWindow(date, now time.Time) error {
	days := DaysBetween(now, date)
	if days < 0 {
		return fmt.Errorf("%w: %s is in the past", ErrOutsideBookingWindow, date.Format(DateFormat))
	}
	if days > s.MaxAdvanceDays {
		return fmt.Errorf("%w: %s is more than %d days ahead", ErrOutsideBookingWindow, date.Format(DateFormat), s.MaxAdvanceDays)
	}
	return nil
}

// EarliestStart returns the first start allowed on date, or nil when every
// start is allowed. Only today is limited: by the current time plus the notice.
func (s *WeeklySchedule) EarliestStart(date, now time.Time) *types.MinuteOfDay {
	if DaysBetween(now, date) != 0 {
		return nil
	}
	earliest := types.FromTime(now).AddMinutes(s.MinBookingNoticeMinutes)
	if now.Second() > 0 || now.Nanosecond() > 0 {
		earliest = earliest.AddMinutes(1)
	}
	return &earliest
}

// CheckWindow validates a requested window in this order: duration, enabled
// day, advance window, notice for today, containing block, slot grid.
func (s *WeeklySchedule) CheckWindow(date time.Time, start, end types.MinuteOfDay, now time.Time) error {
	if err := start.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	duration := int(end - start)
	if duration < MinDurationMinutes || duration > MaxDurationMinutes || end > types.MinutesPerDay {
		return fmt.Errorf("%w: window %s-%s has invalid duration", ErrInvalidInput, start, end)
	}

	if !s.IsOpenOn(date) {
		return fmt.Errorf("%w: %s", ErrPartnerClosed, date.Weekday())
	}

	if err := s.CheckBookingWindow(date, now); err != nil {
		return err
	}

	if earliest := s.EarliestStart(date, now); earliest != nil && start < *earliest {
		return fmt.Errorf("%w: %s starts before %s", ErrOutsideBookingWindow, start, *earliest)
	}

	block, ok := s.BlockFor(date, start, end)
	if !ok {
		return fmt.Errorf("%w: %s-%s is outside working hours", ErrPartnerClosed, start, end)
	}

	if !block.OnGrid(start) {
		return fmt.Errorf("%w: start %s is not on the %d minute grid", ErrInvalidInput, start, SlotStepMinutes)
	}

	return nil
}
