package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// TimeBlock open interval [Start, End) within a day.
type TimeBlock struct {
	Start types.MinuteOfDay `json:"start"`
	End   types.MinuteOfDay `json:"end"`
}

// Duration returns the block length in minutes.
func (b TimeBlock) Duration() int {
	return int(b.End - b.Start)
}

// Contains reports whether [start, end) lies fully inside the block.
func (b TimeBlock) Contains(start, end types.MinuteOfDay) bool {
	return start >= b.Start && end <= b.End
}

// DaySchedule availability for one day of the week.
type DaySchedule struct {
	IsEnabled  bool        `json:"isEnabled"`
	TimeBlocks []TimeBlock `json:"timeBlocks"`
}

// WeeklySchedule recurring availability of a partner. Days is indexed by time.Weekday.
type WeeklySchedule struct {
	PartnerID               int64
	Days                    [7]DaySchedule
	BufferMinutes           int
	MaxAdvanceDays          int
	MinBookingNoticeMinutes int
	UpdatedAt               time.Time
}

// Day returns the schedule for the weekday of date.
func (s *WeeklySchedule) Day(date time.Time) DaySchedule {
	return s.Days[date.Weekday()]
}

// IsOpenOn reports whether the partner works on the weekday of date.
func (s *WeeklySchedule) IsOpenOn(date time.Time) bool {
	day := s.Day(date)
	return day.IsEnabled && len(day.TimeBlocks) > 0
}

// BlockFor returns the time block of date that fully contains [start, end).
func (s *WeeklySchedule) BlockFor(date time.Time, start, end types.MinuteOfDay) (TimeBlock, bool) {
	day := s.Day(date)
	if !day.IsEnabled {
		return TimeBlock{}, false
	}
	for _, block := range day.TimeBlocks {
		if block.Contains(start, end) {
			return block, true
		}
	}
	return TimeBlock{}, false
}

// Normalize drops the blocks of disabled days.
func (s *WeeklySchedule) Normalize() {
	for i := range s.Days {
		if !s.Days[i].IsEnabled {
			s.Days[i].TimeBlocks = nil
		}
	}
}

// Validate checks the schedule invariants: blocks are inside the day, start < end,
// sorted and non-overlapping; a disabled day has no blocks; policies are in range.
func (s *WeeklySchedule) Validate() error {
	if s.BufferMinutes < 0 || s.BufferMinutes > MaxBufferMinutes {
		return fmt.Errorf("%w: bufferMinutes must be in [0, %d]", ErrInvalidInput, MaxBufferMinutes)
	}
	if s.MaxAdvanceDays < 0 || s.MaxAdvanceDays > MaxAdvanceDaysLimit {
		return fmt.Errorf("%w: maxAdvanceDays must be in [0, %d]", ErrInvalidInput, MaxAdvanceDaysLimit)
	}
	if s.MinBookingNoticeMinutes < 0 || s.MinBookingNoticeMinutes > MaxBookingNoticeMinutes {
		return fmt.Errorf("%w: minBookingNoticeMinutes must be in [0, %d]", ErrInvalidInput, MaxBookingNoticeMinutes)
	}

	for i, day := range s.Days {
		weekday := time.Weekday(i)
		if !day.IsEnabled && len(day.TimeBlocks) > 0 {
			return fmt.Errorf("%w: %s is disabled but has time blocks", ErrInvalidInput, weekday)
		}
		for j, block := range day.TimeBlocks {
			if err := block.Start.Validate(); err != nil {
				return fmt.Errorf("%w: %s block %d: %v", ErrInvalidInput, weekday, j, err)
			}
			if err := block.End.Validate(); err != nil {
				return fmt.Errorf("%w: %s block %d: %v", ErrInvalidInput, weekday, j, err)
			}
			if !block.Start.IsBefore(block.End) {
				return fmt.Errorf("%w: %s block %d: start must be before end", ErrInvalidInput, weekday, j)
			}
			if j > 0 && block.Start.IsBefore(day.TimeBlocks[j-1].End) {
				return fmt.Errorf("%w: %s blocks must be sorted and non-overlapping", ErrInvalidInput, weekday)
			}
		}
	}

	return nil
}

// DefaultSchedule policy used when a partner has no stored schedule:
// Monday to Saturday 08:00-18:00, Sunday closed.
func DefaultSchedule(partnerID int64) *WeeklySchedule {
	open := types.MinuteOfDay(8 * 60)
	closing := types.MinuteOfDay(18 * 60)

	s := &WeeklySchedule{
		PartnerID:               partnerID,
		BufferMinutes:           DefaultBufferMinutes,
		MaxAdvanceDays:          DefaultMaxAdvanceDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
	}
	for i := range s.Days {
		if time.Weekday(i) == time.Sunday {
			continue
		}
		s.Days[i] = DaySchedule{
			IsEnabled:  true,
			TimeBlocks: []TimeBlock{{Start: open, End: closing}},
		}
	}
	return s
}
