package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/allocator"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/pricing"
	sellerClient "github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
)

// Settings параметры создания бронирований
type Settings struct {
	Location              *time.Location
	Pricing               pricing.Settings
	AllocationMaxAttempts int
}

// UseCase use case для создания бронирования
type UseCase struct {
	allocator      Allocator
	configResolver ConfigResolver
	sellerClient   SellerServiceClient
	userClient     UserServiceClient
	timeProvider   TimeProvider
	settings       Settings
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	allocator Allocator,
	configResolver ConfigResolver,
	sellerClient SellerServiceClient,
	userClient UserServiceClient,
	settings Settings,
	logger Logger,
) *UseCase {
	return NewUseCaseWithTime(allocator, configResolver, sellerClient, userClient, settings, &RealTimeProvider{}, logger)
}

// NewUseCaseWithTime как NewUseCase, но с заданным источником времени
func NewUseCaseWithTime(
	allocator Allocator,
	configResolver ConfigResolver,
	sellerClient SellerServiceClient,
	userClient UserServiceClient,
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
		allocator:      allocator,
		configResolver: configResolver,
		sellerClient:   sellerClient,
		userClient:     userClient,
		timeProvider:   timeProvider,
		settings:       settings,
		logger:         logger,
	}
}

// Execute выполняет use case создания бронирования.
// Окно проверяется по расписанию, цена фиксируется до резервирования,
// бокс выбирает аллокатор под блокировкой ключа (партнёр, категория, дата).
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, partner=%d, service=%d, date=%s, start=%s",
		req.UserID, req.PartnerID, req.ServiceID, req.Date.Format(domain.DateFormat), req.Start)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.settings.Location)
	date := domain.DateIn(req.Date, uc.settings.Location)

	// 2. Услуга определяет категорию бокса и длительность
	service, err := uc.sellerClient.GetService(ctx, req.PartnerID, req.ServiceID)
	if err != nil {
		if errors.Is(err, sellerClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	category, err := domain.ParseCategory(service.Category)
	if err != nil {
		uc.logger.Error("CreateBooking: service id=%d has unknown category %q", service.ID, service.Category)
		return nil, fmt.Errorf("%w: service category: %v", ErrInternal, err)
	}
	if req.Category != nil && *req.Category != category {
		uc.logger.Warn("CreateBooking: category %s does not match service id=%d category %s", *req.Category, service.ID, category)
		return nil, fmt.Errorf("%w: category %s does not match service category %s", ErrInvalidInput, *req.Category, category)
	}
	end := req.Start.AddMinutes(service.DurationMinutes)
	if req.End != nil && *req.End != end {
		uc.logger.Warn("CreateBooking: end %s does not match service duration %d", *req.End, service.DurationMinutes)
		return nil, fmt.Errorf("%w: end must be %s for a %d minute service", ErrInvalidInput, end, service.DurationMinutes)
	}

	// 3. Расписание и боксы, проверка окна
	schedule, capacity, err := uc.configResolver.Resolve(ctx, req.PartnerID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to resolve config for partner=%d: %v", req.PartnerID, err)
		return nil, fmt.Errorf("%w: failed to resolve config: %v", ErrInternal, err)
	}

	if err := schedule.CheckWindow(date, req.Start, end, now); err != nil {
		uc.logger.Warn("CreateBooking: window %s %s-%s rejected: %v", date.Format(domain.DateFormat), req.Start, end, err)
		return nil, err
	}

	// 4. Класс кузова и уровень подписки
	carID, bodyType := uc.resolveVehicle(ctx, req)
	tier := uc.userClient.GetSubscriptionTierWithGracefulDegradation(ctx, req.UserID, now)

	// 5. Товары и цена
	products, err := uc.resolveProducts(ctx, req)
	if err != nil {
		return nil, err
	}

	priceTable := make([]pricing.PriceEntry, 0, len(service.BodyTypePricing))
	for _, p := range service.BodyTypePricing {
		priceTable = append(priceTable, pricing.PriceEntry{BodyType: p.BodyType, Price: p.Price})
	}

	var bodyTypeKey string
	if bodyType != nil {
		bodyTypeKey = *bodyType
	}
	price, err := pricing.Calculate(pricing.Input{
		PriceTable:       priceTable,
		BodyType:         bodyTypeKey,
		SubscriptionTier: tier,
		Products:         products,
		Settings:         uc.settings.Pricing,
	})
	if err != nil {
		uc.logger.Warn("CreateBooking: pricing failed for service id=%d: %v", service.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 6. Резервирование бокса
	draft := &domain.Booking{
		CustomerID:       req.UserID,
		ServiceID:        service.ID,
		ServiceName:      service.Name,
		DeliveryRequired: service.IsPickupDropoff,
		CarID:            carID,
		VehicleBodyType:  bodyType,
		SubscriptionTier: tier,
		Products:         pricing.ProductLines(products),
		Pricing:          price,
		Notes:            req.Notes,
	}
	claim := allocator.Claim{
		PartnerID:       req.PartnerID,
		Category:        category,
		Date:            date,
		Start:           req.Start,
		DurationMinutes: service.DurationMinutes,
		Schedule:        schedule,
		Capacity:        capacity,
	}

	var (
		created *domain.Booking
		attempt int
	)
	for attempt = 1; attempt <= uc.settings.AllocationMaxAttempts; attempt++ {
		created, err = uc.allocator.Reserve(ctx, claim, draft)
		if !errors.Is(err, domain.ErrAllocationTimeout) {
			break
		}
		uc.logger.Warn("CreateBooking: allocation attempt %d/%d timed out for %s",
			attempt, uc.settings.AllocationMaxAttempts, claim.Key())
	}
	if err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, domain.ErrAllocationTimeout) {
			return nil, err
		}
		uc.logger.Error("CreateBooking: failed to reserve bay: %v", err)
		return nil, fmt.Errorf("%w: failed to reserve bay: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, bay=%d, final price=%.2f",
		created.ID, created.BayID, created.Pricing.FinalPrice)
	return &Response{Booking: created, Attempts: attempt}, nil
}

// resolveVehicle возвращает автомобиль и класс кузова. Если класс не передан,
// он берётся у выбранного автомобиля; без него цена считается по первой строке прайса.
func (uc *UseCase) resolveVehicle(ctx context.Context, req *Request) (*int64, *string) {
	if req.VehicleBodyType != nil {
		return req.CarID, req.VehicleBodyType
	}

	car, err := uc.userClient.GetSelectedCarWithGracefulDegradation(ctx, req.UserID)
	if err != nil {
		uc.logger.Warn("CreateBooking: no body type for user=%d, using first price entry: %v", req.UserID, err)
		return req.CarID, nil
	}

	carID := req.CarID
	if carID == nil {
		carID = &car.ID
	}
	if car.BodyType == "" {
		return carID, nil
	}
	bodyType := car.BodyType
	return carID, &bodyType
}

// resolveProducts сверяет товары запроса с каталогом партнёра
func (uc *UseCase) resolveProducts(ctx context.Context, req *Request) ([]pricing.Product, error) {
	if len(req.Products) == 0 {
		return nil, nil
	}

	catalog, err := uc.sellerClient.GetProducts(ctx, req.PartnerID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get products of partner=%d: %v", req.PartnerID, err)
		return nil, fmt.Errorf("%w: failed to get products: %v", ErrInternal, err)
	}

	byID := make(map[int64]sellerClient.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	products := make([]pricing.Product, 0, len(req.Products))
	for _, item := range req.Products {
		p, ok := byID[item.ProductID]
		if !ok {
			uc.logger.Warn("CreateBooking: product id=%d not found for partner=%d", item.ProductID, req.PartnerID)
			return nil, fmt.Errorf("%w: id=%d", ErrProductNotFound, item.ProductID)
		}
		products = append(products, pricing.Product{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  item.Quantity,
		})
	}
	return products, nil
}
