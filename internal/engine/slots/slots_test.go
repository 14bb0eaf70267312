package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

var monday = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

func mod(s string) types.MinuteOfDay {
	return types.MustMinuteOfDay(s)
}

func schedule(buffer int) *domain.WeeklySchedule {
	s := &domain.WeeklySchedule{PartnerID: 1, BufferMinutes: buffer, MaxAdvanceDays: 30}
	s.Days[time.Monday] = domain.DaySchedule{
		IsEnabled:  true,
		TimeBlocks: []domain.TimeBlock{{Start: mod("09:00"), End: mod("18:00")}},
	}
	return s
}

func washBays(n int) *domain.CapacityPlan {
	plan := &domain.CapacityPlan{PartnerID: 1}
	for i := 1; i <= n; i++ {
		plan.Bays = append(plan.Bays, domain.Bay{ID: int64(i), Category: domain.CategoryWash, IsActive: true})
	}
	return plan
}

func booking(id, bay int64, start, end string) *domain.Booking {
	return &domain.Booking{
		ID:        id,
		BayID:     bay,
		Category:  domain.CategoryWash,
		Status:    domain.StatusBooked,
		SlotDate:  monday,
		SlotStart: mod(start),
		SlotEnd:   mod(end),
	}
}

func findWindow(windows []domain.Window, start string) (domain.Window, bool) {
	for _, w := range windows {
		if w.Start == mod(start) {
			return w, true
		}
	}
	return domain.Window{}, false
}

func TestCalculate_BufferTrailsExistingBooking(t *testing.T) {
	in := Input{
		Schedule:        schedule(15),
		Capacity:        washBays(3),
		Bookings:        []*domain.Booking{booking(1, 1, "10:00", "10:30")},
		Category:        domain.CategoryWash,
		Date:            monday,
		DurationMinutes: 30,
	}

	windows := Calculate(in)

	w, ok := findWindow(windows, "10:15")
	require.True(t, ok)
	assert.Equal(t, 2, w.FreeBayCount)
	assert.Equal(t, mod("10:45"), w.End)

	w, ok = findWindow(windows, "10:45")
	require.True(t, ok)
	assert.Equal(t, 3, w.FreeBayCount)
}

func TestCalculate_CandidatesOnGrid(t *testing.T) {
	in := Input{
		Schedule:        schedule(0),
		Capacity:        washBays(1),
		Category:        domain.CategoryWash,
		Date:            monday,
		DurationMinutes: 60,
	}

	windows := Calculate(in)

	require.NotEmpty(t, windows)
	assert.Equal(t, mod("09:00"), windows[0].Start)
	assert.Equal(t, mod("17:00"), windows[len(windows)-1].Start)
	assert.Len(t, windows, 33)
	for _, w := range windows {
		assert.Zero(t, int(w.Start-mod("09:00"))%StepMinutes)
	}
}

func TestCalculate_FullyBookedWindowHidden(t *testing.T) {
	in := Input{
		Schedule: schedule(15),
		Capacity: washBays(2),
		Bookings: []*domain.Booking{
			booking(1, 1, "12:00", "13:00"),
			booking(2, 2, "12:00", "13:00"),
		},
		Category:        domain.CategoryWash,
		Date:            monday,
		DurationMinutes: 60,
	}

	windows := Calculate(in)

	_, ok := findWindow(windows, "12:00")
	assert.False(t, ok)
	_, ok = findWindow(windows, "13:00")
	assert.False(t, ok, "buffer keeps 13:00 blocked")
	w, ok := findWindow(windows, "13:15")
	require.True(t, ok)
	assert.Equal(t, 2, w.FreeBayCount)
}

func TestCalculate_IgnoresInactiveAndOtherCategory(t *testing.T) {
	cancelled := booking(1, 1, "10:00", "11:00")
	cancelled.Status = domain.StatusCancelled
	detailing := booking(2, 1, "10:00", "11:00")
	detailing.Category = domain.CategoryDetailing
	inProgress := booking(3, 1, "14:00", "15:00")
	inProgress.Status = domain.StatusInProgress

	in := Input{
		Schedule:        schedule(0),
		Capacity:        washBays(1),
		Bookings:        []*domain.Booking{cancelled, detailing, inProgress},
		Category:        domain.CategoryWash,
		Date:            monday,
		DurationMinutes: 60,
	}

	windows := Calculate(in)

	_, ok := findWindow(windows, "10:00")
	assert.True(t, ok)
	_, ok = findWindow(windows, "14:00")
	assert.False(t, ok)
}

func TestCalculate_EmptyCases(t *testing.T) {
	t.Run("disabled day", func(t *testing.T) {
		in := Input{
			Schedule:        schedule(0),
			Capacity:        washBays(1),
			Category:        domain.CategoryWash,
			Date:            monday.AddDate(0, 0, -1),
			DurationMinutes: 60,
		}
		assert.Empty(t, Calculate(in))
	})

	t.Run("no bays in category", func(t *testing.T) {
		in := Input{
			Schedule:        schedule(0),
			Capacity:        washBays(2),
			Category:        domain.CategoryDetailing,
			Date:            monday,
			DurationMinutes: 60,
		}
		assert.Empty(t, Calculate(in))
	})

	t.Run("duration longer than block", func(t *testing.T) {
		in := Input{
			Schedule:        schedule(0),
			Capacity:        washBays(1),
			Category:        domain.CategoryWash,
			Date:            monday,
			DurationMinutes: 10 * 60,
		}
		assert.Empty(t, Calculate(in))
	})
}

func TestCalculate_EarliestStartAndExclude(t *testing.T) {
	earliest := mod("12:10")
	own := booking(5, 1, "12:15", "12:45")

	in := Input{
		Schedule:         schedule(15),
		Capacity:         washBays(1),
		Bookings:         []*domain.Booking{own},
		Category:         domain.CategoryWash,
		Date:             monday,
		DurationMinutes:  30,
		EarliestStart:    &earliest,
		ExcludeBookingID: own.ID,
	}

	windows := Calculate(in)

	require.NotEmpty(t, windows)
	assert.Equal(t, mod("12:15"), windows[0].Start)
}

func TestCalculate_Deterministic(t *testing.T) {
	in := Input{
		Schedule: schedule(15),
		Capacity: washBays(3),
		Bookings: []*domain.Booking{
			booking(1, 2, "09:30", "10:30"),
			booking(2, 1, "11:00", "12:00"),
			booking(3, 3, "15:00", "16:30"),
		},
		Category:        domain.CategoryWash,
		Date:            monday,
		DurationMinutes: 45,
	}

	first := Calculate(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Calculate(in))
	}
}

func TestFreeBays_DeclaredOrder(t *testing.T) {
	plan := &domain.CapacityPlan{Bays: []domain.Bay{
		{ID: 7, Category: domain.CategoryWash, IsActive: true},
		{ID: 3, Category: domain.CategoryWash, IsActive: true},
		{ID: 5, Category: domain.CategoryWash, IsActive: true},
	}}
	bookings := []*domain.Booking{booking(1, 7, "10:00", "11:00")}

	free := FreeBays(plan.ActiveBays(domain.CategoryWash), bookings, domain.CategoryWash, mod("10:30"), 30, 0, 0)

	require.Len(t, free, 2)
	assert.Equal(t, int64(3), free[0].ID)
	assert.Equal(t, int64(5), free[1].ID)
}
