package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/allocator"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	sellerClient "github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
)

// Settings параметры переноса
type Settings struct {
	Location              *time.Location
	AllocationMaxAttempts int
}

// UseCase use case для переноса бронирования в другое окно
type UseCase struct {
	bookingRepo    BookingRepository
	allocator      Allocator
	configResolver ConfigResolver
	sellerClient   SellerServiceClient
	timeProvider   TimeProvider
	settings       Settings
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	allocator Allocator,
	configResolver ConfigResolver,
	sellerClient SellerServiceClient,
	settings Settings,
	logger Logger,
) *UseCase {
	return NewUseCaseWithTime(bookingRepo, allocator, configResolver, sellerClient, settings, &RealTimeProvider{}, logger)
}

// NewUseCaseWithTime как NewUseCase, но с заданным источником времени
func NewUseCaseWithTime(
	bookingRepo BookingRepository,
	allocator Allocator,
	configResolver ConfigResolver,
	sellerClient SellerServiceClient,
	settings Settings,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.AllocationMaxAttempts <= 0 {
		settings.AllocationMaxAttempts = 1
	}
	return &UseCase{
		bookingRepo:    bookingRepo,
		allocator:      allocator,
		configResolver: configResolver,
		sellerClient:   sellerClient,
		timeProvider:   timeProvider,
		settings:       settings,
		logger:         logger,
	}
}

// Execute выполняет перенос. Новое окно проходит те же проверки, что и при создании.
// Старое окно освобождается в той же транзакции, в которой занимается новое,
// поэтому при неудаче бронирование остаётся на прежнем месте.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, user=%d, new date=%s, new start=%s",
		req.BookingID, req.UserID, req.NewDate.Format(domain.DateFormat), req.NewStart)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.settings.Location)
	date := domain.DateIn(req.NewDate, uc.settings.Location)

	// 2. Бронирование и права
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	actor, err := uc.resolveActor(ctx, booking, req)
	if err != nil {
		return nil, err
	}

	if err := booking.CanReschedule(); err != nil {
		uc.logger.Warn("RescheduleBooking: booking id=%d: %v", req.BookingID, err)
		return nil, err
	}

	// 3. Новое окно той же длительности
	duration := booking.DurationMinutes()
	end := req.NewStart.AddMinutes(duration)
	if req.NewEnd != nil && *req.NewEnd != end {
		return nil, fmt.Errorf("%w: newEnd must be %s, duration of a booking does not change", ErrInvalidInput, end)
	}
	if booking.SlotDate.Format(domain.DateFormat) == date.Format(domain.DateFormat) && booking.SlotStart == req.NewStart {
		return nil, fmt.Errorf("%w: new window equals the current one", ErrInvalidInput)
	}

	schedule, capacity, err := uc.configResolver.Resolve(ctx, booking.PartnerID)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to resolve config for partner=%d: %v", booking.PartnerID, err)
		return nil, fmt.Errorf("%w: failed to resolve config: %v", ErrInternal, err)
	}

	if err := schedule.CheckWindow(date, req.NewStart, end, now); err != nil {
		uc.logger.Warn("RescheduleBooking: window %s %s-%s rejected: %v", date.Format(domain.DateFormat), req.NewStart, end, err)
		return nil, err
	}

	// 4. Перенос под блокировкой нового ключа
	claim := allocator.Claim{
		PartnerID:       booking.PartnerID,
		Category:        booking.Category,
		Date:            date,
		Start:           req.NewStart,
		DurationMinutes: duration,
		Schedule:        schedule,
		Capacity:        capacity,
	}
	move := allocator.Move{
		BookingID: booking.ID,
		Actor:     actor,
		Reason:    req.Reason,
		Now:       now,
	}

	var (
		moved   *domain.Booking
		attempt int
	)
	for attempt = 1; attempt <= uc.settings.AllocationMaxAttempts; attempt++ {
		moved, err = uc.allocator.Reallocate(ctx, claim, move)
		if !errors.Is(err, domain.ErrAllocationTimeout) {
			break
		}
		uc.logger.Warn("RescheduleBooking: allocation attempt %d/%d timed out for %s",
			attempt, uc.settings.AllocationMaxAttempts, claim.Key())
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotUnavailable),
			errors.Is(err, domain.ErrAllocationTimeout),
			errors.Is(err, domain.ErrInvalidStatusTransition):
			return nil, err
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to move booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to move booking: %v", ErrInternal, err)
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved to %s %s, bay=%d",
		moved.ID, moved.SlotDate.Format(domain.DateFormat), moved.SlotStart, moved.BayID)
	return &Response{Booking: moved, Attempts: attempt}, nil
}

// resolveActor определяет, от чьего имени выполняется перенос
func (uc *UseCase) resolveActor(ctx context.Context, booking *domain.Booking, req *Request) (domain.Actor, error) {
	isOwner := booking.CustomerID == req.UserID

	if req.Actor == domain.ActorCustomer || (req.Actor == "" && isOwner) {
		if !isOwner {
			uc.logger.Warn("RescheduleBooking: user=%d is not the owner of booking id=%d", req.UserID, booking.ID)
			return "", ErrAccessDenied
		}
		return domain.ActorCustomer, nil
	}

	partner, err := uc.sellerClient.GetPartner(ctx, booking.PartnerID)
	if err != nil {
		if errors.Is(err, sellerClient.ErrPartnerNotFound) {
			return "", ErrPartnerNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get partner id=%d: %v", booking.PartnerID, err)
		return "", fmt.Errorf("%w: failed to get partner: %v", ErrInternal, err)
	}
	if !partner.IsManager(req.UserID) {
		uc.logger.Warn("RescheduleBooking: user=%d is not a manager of partner=%d", req.UserID, booking.PartnerID)
		return "", ErrAccessDenied
	}
	return domain.ActorPartner, nil
}
