// Package allocator atomically assigns a physical bay to a requested window.
// Claims on the same (partner, category, date) are serialized by a Locker and
// re-checked inside a serializable transaction, so a bay is never held by two
// overlapping active bookings.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

// Allocator резервирует боксы
type Allocator struct {
	locker      Locker
	txManager   TxManager
	repo        BookingRepository
	metrics     Metrics
	logger      Logger
	lockTimeout time.Duration
}

// New создает аллокатор
func New(locker Locker, txManager TxManager, repo BookingRepository, metrics Metrics, logger Logger, lockTimeout time.Duration) *Allocator {
	return &Allocator{
		locker:      locker,
		txManager:   txManager,
		repo:        repo,
		metrics:     metrics,
		logger:      logger,
		lockTimeout: lockTimeout,
	}
}

// Reserve занимает наименьший по порядку объявления свободный бокс категории
// и сохраняет draft как новое бронирование в статусе booked.
func (a *Allocator) Reserve(ctx context.Context, claim Claim, draft *domain.Booking) (*domain.Booking, error) {
	var created *domain.Booking

	err := a.withKey(ctx, claim, func(txCtx context.Context) error {
		existing, err := a.repo.ListActiveForSlotDay(txCtx, claim.PartnerID, claim.Category, claim.Date)
		if err != nil {
			return fmt.Errorf("allocator: list bookings: %w", err)
		}

		bay, err := pickBay(claim, existing, 0)
		if err != nil {
			return err
		}

		b := *draft
		b.PartnerID = claim.PartnerID
		b.Category = claim.Category
		b.BayID = bay.ID
		b.SlotDate = claim.Date
		b.SlotStart = claim.Start
		b.SlotEnd = claim.End()
		b.Status = domain.StatusBooked

		created, err = a.repo.Create(txCtx, &b)
		if err != nil {
			return fmt.Errorf("allocator: create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, a.fail(claim, err)
	}

	a.metrics.IncReservation(OutcomeReserved)
	a.logger.Info("Allocator: booking id=%d got bay=%d for %s", created.ID, created.BayID, claim.Key())
	return created, nil
}

// Reallocate переносит бронирование в новое окно. Новый бокс занимается в той же
// транзакции, в которой освобождается старый, поэтому при неудаче бронирование
// остаётся на прежнем месте.
func (a *Allocator) Reallocate(ctx context.Context, claim Claim, move Move) (*domain.Booking, error) {
	var moved *domain.Booking

	err := a.withKey(ctx, claim, func(txCtx context.Context) error {
		current, err := a.repo.GetByID(txCtx, move.BookingID)
		if err != nil {
			return fmt.Errorf("allocator: get booking: %w", err)
		}
		if err := current.CanReschedule(); err != nil {
			return err
		}
		if current.Category != claim.Category {
			return fmt.Errorf("%w: booking category %s does not match %s", domain.ErrInvalidInput, current.Category, claim.Category)
		}

		existing, err := a.repo.ListActiveForSlotDay(txCtx, claim.PartnerID, claim.Category, claim.Date)
		if err != nil {
			return fmt.Errorf("allocator: list bookings: %w", err)
		}

		bay, err := pickBay(claim, existing, current.ID)
		if err != nil {
			return err
		}

		history := &domain.SlotHistoryEntry{
			BookingID: current.ID,
			BayID:     current.BayID,
			SlotDate:  current.SlotDate,
			SlotStart: current.SlotStart,
			SlotEnd:   current.SlotEnd,
			Status:    domain.StatusRescheduled,
			Actor:     move.Actor,
			Reason:    move.Reason,
			CreatedAt: move.Now,
		}
		if err := a.repo.AddSlotHistory(txCtx, history); err != nil {
			return fmt.Errorf("allocator: add slot history: %w", err)
		}

		next := *current
		fromDate, fromStart, fromEnd, fromBay := current.SlotDate, current.SlotStart, current.SlotEnd, current.BayID
		next.RescheduledFromDate = &fromDate
		next.RescheduledFromStart = &fromStart
		next.RescheduledFromEnd = &fromEnd
		next.RescheduledFromBayID = &fromBay
		next.RescheduledAt = &move.Now
		next.RescheduleCount++
		next.BayID = bay.ID
		next.SlotDate = claim.Date
		next.SlotStart = claim.Start
		next.SlotEnd = claim.End()
		next.UpdatedAt = move.Now

		moved, err = a.repo.MoveSlot(txCtx, &next)
		if err != nil {
			return fmt.Errorf("allocator: move booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, a.fail(claim, err)
	}

	a.metrics.IncReservation(OutcomeRescheduled)
	a.logger.Info("Allocator: booking id=%d moved to bay=%d for %s", moved.ID, moved.BayID, claim.Key())
	return moved, nil
}

// withKey выполняет fn под блокировкой ключа и в сериализуемой транзакции
func (a *Allocator) withKey(ctx context.Context, claim Claim, fn func(txCtx context.Context) error) error {
	started := time.Now()
	release, err := a.locker.Acquire(ctx, claim.Key(), a.lockTimeout)
	a.metrics.ObserveLockWait(a.locker.Backend(), time.Since(started))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: lock %s: %v", domain.ErrAllocationTimeout, claim.Key(), err)
		}
		return fmt.Errorf("allocator: acquire lock: %w", err)
	}
	defer release()

	err = a.txManager.DoSerializable(ctx, fn)
	if errors.Is(err, txmanager.ErrRetriesExhausted) || errors.Is(err, txmanager.ErrLockTimeout) {
		return fmt.Errorf("%w: %v", domain.ErrAllocationTimeout, err)
	}
	return err
}

func (a *Allocator) fail(claim Claim, err error) error {
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		a.metrics.IncReservation(OutcomeUnavailable)
		a.logger.Info("Allocator: no free bay for %s %s-%s", claim.Key(), claim.Start, claim.End())
	case errors.Is(err, domain.ErrAllocationTimeout):
		a.metrics.IncReservation(OutcomeTimeout)
		a.logger.Warn("Allocator: timeout for %s: %v", claim.Key(), err)
	default:
		a.metrics.IncReservation(OutcomeError)
		a.logger.Error("Allocator: failed for %s: %v", claim.Key(), err)
	}
	return err
}

// pickBay повторяет проверку пересечений на снимке, прочитанном под блокировкой
func pickBay(claim Claim, existing []*domain.Booking, excludeBookingID int64) (domain.Bay, error) {
	if claim.Capacity == nil || claim.Schedule == nil {
		return domain.Bay{}, fmt.Errorf("%w: claim without schedule or capacity", domain.ErrInvalidInput)
	}

	free := slots.FreeBays(
		claim.Capacity.ActiveBays(claim.Category),
		existing,
		claim.Category,
		claim.Start,
		claim.DurationMinutes,
		claim.Schedule.BufferMinutes,
		excludeBookingID,
	)
	if len(free) == 0 {
		return domain.Bay{}, fmt.Errorf("%w: %s %s-%s", domain.ErrSlotUnavailable, claim.Date.Format(domain.DateFormat), claim.Start, claim.End())
	}
	return free[0], nil
}
