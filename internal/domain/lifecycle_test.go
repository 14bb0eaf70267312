package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  BookingStatus
		delivery bool
		want     BookingStatus
		ok       bool
	}{
		{"booked", StatusBooked, false, StatusInProgress, true},
		{"in progress", StatusInProgress, false, StatusCompleted, true},
		{"completed without delivery", StatusCompleted, false, "", false},
		{"completed with delivery", StatusCompleted, true, StatusPicked, true},
		{"picked", StatusPicked, true, StatusOutForDelivery, true},
		{"out for delivery", StatusOutForDelivery, true, StatusDelivered, true},
		{"delivered", StatusDelivered, true, "", false},
		{"cancelled", StatusCancelled, true, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextStatus(tt.current, tt.delivery)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBooking_CanAdvanceTo(t *testing.T) {
	b := &Booking{Status: StatusBooked}

	require.NoError(t, b.CanAdvanceTo(StatusInProgress))
	assert.ErrorIs(t, b.CanAdvanceTo(StatusCompleted), ErrInvalidStatusTransition)

	b.Status = StatusCompleted
	assert.ErrorIs(t, b.CanAdvanceTo(StatusPicked), ErrInvalidStatusTransition)
	assert.True(t, b.IsTerminal())

	b.DeliveryRequired = true
	assert.NoError(t, b.CanAdvanceTo(StatusPicked))
	assert.False(t, b.IsTerminal())
}

func TestBooking_CanCancel(t *testing.T) {
	loc := time.UTC
	b := &Booking{
		Status:    StatusBooked,
		SlotDate:  time.Date(2025, 6, 10, 0, 0, 0, 0, loc),
		SlotStart: types.MustMinuteOfDay("10:00"),
	}

	t.Run("outside window", func(t *testing.T) {
		now := time.Date(2025, 6, 9, 10, 0, 0, 0, loc)
		assert.NoError(t, b.CanCancel(now, loc, 24))
	})

	t.Run("inside window", func(t *testing.T) {
		now := time.Date(2025, 6, 9, 10, 1, 0, 0, loc)
		assert.ErrorIs(t, b.CanCancel(now, loc, 24), ErrCancellationWindowViolated)
	})

	t.Run("already completed", func(t *testing.T) {
		done := *b
		done.Status = StatusCompleted
		now := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
		assert.ErrorIs(t, done.CanCancel(now, loc, 24), ErrInvalidStatusTransition)
	})
}

func TestBooking_Overlaps(t *testing.T) {
	b := &Booking{
		SlotStart: types.MustMinuteOfDay("10:00"),
		SlotEnd:   types.MustMinuteOfDay("11:00"),
	}

	assert.True(t, b.Overlaps(types.MustMinuteOfDay("11:00"), 60, 15))
	assert.False(t, b.Overlaps(types.MustMinuteOfDay("11:15"), 60, 15))
	// buffer only trails the existing booking
	assert.False(t, b.Overlaps(types.MustMinuteOfDay("09:00"), 60, 15))
	assert.True(t, b.Overlaps(types.MustMinuteOfDay("09:15"), 60, 15))
}
