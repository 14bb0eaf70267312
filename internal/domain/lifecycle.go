package domain

import (
	"fmt"
	"time"
)

// NextStatus returns the single allowed successor of current. The delivery
// sub-path after completed exists only for bookings that require delivery.
func NextStatus(current BookingStatus, deliveryRequired bool) (BookingStatus, bool) {
	switch current {
	case StatusBooked:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusCompleted, true
	case StatusCompleted:
		if deliveryRequired {
			return StatusPicked, true
		}
	case StatusPicked:
		if deliveryRequired {
			return StatusOutForDelivery, true
		}
	case StatusOutForDelivery:
		if deliveryRequired {
			return StatusDelivered, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is possible.
func (b *Booking) IsTerminal() bool {
	_, ok := NextStatus(b.Status, b.DeliveryRequired)
	return !ok
}

// CanAdvanceTo checks that target is the immediate successor of the current status.
func (b *Booking) CanAdvanceTo(target BookingStatus) error {
	next, ok := NextStatus(b.Status, b.DeliveryRequired)
	if !ok || next != target {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, target)
	}
	return nil
}

// CanCancel checks the status and the cancellation window. now and the slot
// start are compared as absolute instants.
func (b *Booking) CanCancel(now time.Time, loc *time.Location, windowHours int) error {
	if !b.Status.IsActive() {
		return fmt.Errorf("%w: cannot cancel booking in status %s", ErrInvalidStatusTransition, b.Status)
	}
	until := b.StartsAt(loc).Sub(now)
	if until < time.Duration(windowHours)*time.Hour {
		return fmt.Errorf("%w: cancellation is allowed at least %d hours before the slot", ErrCancellationWindowViolated, windowHours)
	}
	return nil
}

// CanReschedule checks the booking still holds its bay.
func (b *Booking) CanReschedule() error {
	if !b.Status.IsActive() {
		return fmt.Errorf("%w: cannot reschedule booking in status %s", ErrInvalidStatusTransition, b.Status)
	}
	return nil
}
