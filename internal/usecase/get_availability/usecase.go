package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/slots"
	sellerClient "github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
)

// UseCase use case для получения свободных окон партнёра
type UseCase struct {
	bookingRepo    BookingRepository
	configResolver ConfigResolver
	sellerClient   SellerServiceClient
	timeProvider   TimeProvider
	location       *time.Location
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	configResolver ConfigResolver,
	sellerClient SellerServiceClient,
	location *time.Location,
	logger Logger,
) *UseCase {
	return NewUseCaseWithTime(bookingRepo, configResolver, sellerClient, location, &RealTimeProvider{}, logger)
}

// NewUseCaseWithTime как NewUseCase, но с заданным источником времени
func NewUseCaseWithTime(
	bookingRepo BookingRepository,
	configResolver ConfigResolver,
	sellerClient SellerServiceClient,
	location *time.Location,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		bookingRepo:    bookingRepo,
		configResolver: configResolver,
		sellerClient:   sellerClient,
		timeProvider:   timeProvider,
		location:       location,
		logger:         logger,
	}
}

// Execute выполняет use case получения свободных окон.
// Дата вне окна предварительной записи даёт ошибку, выходной день даёт пустой список.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: user=%d, partner=%d, date=%s, category=%s, duration=%d",
		req.UserID, req.PartnerID, req.Date.Format(domain.DateFormat), req.Category, req.DurationMinutes)

	// 1. Валидация входных данных
	category, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.location)
	date := domain.DateIn(req.Date, uc.location)

	// 2. Проверяем существование партнёра
	if _, err := uc.sellerClient.GetPartner(ctx, req.PartnerID); err != nil {
		if errors.Is(err, sellerClient.ErrPartnerNotFound) {
			uc.logger.Warn("GetAvailability: partner id=%d not found", req.PartnerID)
			return nil, ErrPartnerNotFound
		}
		uc.logger.Error("GetAvailability: failed to get partner id=%d: %v", req.PartnerID, err)
		return nil, fmt.Errorf("%w: failed to get partner: %v", ErrInternal, err)
	}

	// 3. Расписание и боксы (сохранённые или по умолчанию)
	schedule, capacity, err := uc.configResolver.Resolve(ctx, req.PartnerID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to resolve config for partner=%d: %v", req.PartnerID, err)
		return nil, fmt.Errorf("%w: failed to resolve config: %v", ErrInternal, err)
	}

	resp := &Response{
		Date:               date,
		PartnerID:          req.PartnerID,
		Category:           category,
		DurationMinutes:    req.DurationMinutes,
		Windows:            []domain.Window{},
		CapacityByCategory: capacity.CapacityByCategory(),
	}

	// 4. Окно предварительной записи
	if err := schedule.CheckBookingWindow(date, now); err != nil {
		uc.logger.Warn("GetAvailability: date %s rejected: %v", date.Format(domain.DateFormat), err)
		return nil, err
	}

	// 5. Выходной день
	if !schedule.IsOpenOn(date) {
		uc.logger.Info("GetAvailability: partner=%d is closed on %s", req.PartnerID, date.Format(domain.DateFormat))
		return resp, nil
	}

	// 6. Активные бронирования дня
	bookings, err := uc.bookingRepo.ListActiveForPartnerDay(ctx, req.PartnerID, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 7. Расчёт окон
	resp.Windows = slots.Calculate(slots.Input{
		Schedule:        schedule,
		Capacity:        capacity,
		Bookings:        bookings,
		Category:        category,
		Date:            date,
		DurationMinutes: req.DurationMinutes,
		EarliestStart:   schedule.EarliestStart(date, now),
	})

	uc.logger.Info("GetAvailability: partner=%d, date=%s, category=%s: %d windows from %d bookings",
		req.PartnerID, date.Format(domain.DateFormat), category, len(resp.Windows), len(bookings))
	return resp, nil
}
