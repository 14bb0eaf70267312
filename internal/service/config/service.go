package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	capacityRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/capacity"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	sellerClient "github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
	"github.com/m04kA/SMC-BookingEngine/internal/service/config/models"
)

// Service сервис настроек партнёра: недельное расписание и боксы
type Service struct {
	cache        ConfigCache
	scheduleRepo ScheduleRepository
	capacityRepo CapacityRepository
	txManager    TransactionManager
	sellerClient SellerServiceClient
	logger       Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(
	cache ConfigCache,
	scheduleRepo ScheduleRepository,
	capacityRepo CapacityRepository,
	txManager TransactionManager,
	sellerClient SellerServiceClient,
	logger Logger,
) *Service {
	return &Service{
		cache:        cache,
		scheduleRepo: scheduleRepo,
		capacityRepo: capacityRepo,
		txManager:    txManager,
		sellerClient: sellerClient,
		logger:       logger,
	}
}

// Resolve возвращает действующие расписание и боксы партнёра.
// Если партнёр ничего не сохранял, используются значения по умолчанию.
func (s *Service) Resolve(ctx context.Context, partnerID int64) (*domain.WeeklySchedule, *domain.CapacityPlan, error) {
	schedule, _, err := s.schedule(ctx, partnerID)
	if err != nil {
		return nil, nil, err
	}
	capacity, _, err := s.capacity(ctx, partnerID)
	if err != nil {
		return nil, nil, err
	}
	return schedule, capacity, nil
}

// Get возвращает настройки партнёра. Доступно только менеджерам партнёра.
func (s *Service) Get(ctx context.Context, partnerID, userID int64) (*models.ConfigResponse, error) {
	s.logger.Info("Get: fetching config for partner=%d by user=%d", partnerID, userID)

	if err := s.checkManagerAccess(ctx, partnerID, userID); err != nil {
		return nil, err
	}

	schedule, scheduleIsDefault, err := s.schedule(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	capacity, capacityIsDefault, err := s.capacity(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	return models.FromDomain(schedule, capacity, scheduleIsDefault, capacityIsDefault), nil
}

// Update заменяет расписание и боксы партнёра целиком.
// Обе части пишутся в одной транзакции, после записи кэш сбрасывается.
func (s *Service) Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Update: updating config for partner=%d by user=%d", req.PartnerID, req.UserID)

	if err := s.checkManagerAccess(ctx, req.PartnerID, req.UserID); err != nil {
		return nil, err
	}

	schedule := req.Schedule
	schedule.PartnerID = req.PartnerID
	schedule.Normalize()
	if err := schedule.Validate(); err != nil {
		s.logger.Warn("Update: invalid schedule for partner=%d: %v", req.PartnerID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	capacity := req.Capacity
	capacity.PartnerID = req.PartnerID
	if len(capacity.Bays) == 0 {
		// Пустой набор неотличим от отсутствующего, боксы выключаются через isActive
		return nil, fmt.Errorf("%w: at least one bay is required", ErrInvalidInput)
	}
	if err := capacity.Validate(); err != nil {
		s.logger.Warn("Update: invalid capacity plan for partner=%d: %v", req.PartnerID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		savedSchedule *domain.WeeklySchedule
		savedCapacity *domain.CapacityPlan
	)
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		savedSchedule, err = s.scheduleRepo.Upsert(txCtx, &schedule)
		if err != nil {
			return fmt.Errorf("%w: Update - upsert schedule: %v", ErrInternal, err)
		}
		savedCapacity, err = s.capacityRepo.Replace(txCtx, &capacity)
		if err != nil {
			return fmt.Errorf("%w: Update - replace bays: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Update: failed to save config for partner=%d: %v", req.PartnerID, err)
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, req.PartnerID); err != nil {
		// Запись уже зафиксирована, устаревший кэш доживёт до TTL
		s.logger.Warn("Update: failed to invalidate cache for partner=%d: %v", req.PartnerID, err)
	}

	s.logger.Info("Update: successfully updated config for partner=%d, bays=%d", req.PartnerID, len(savedCapacity.Bays))
	return models.FromDomain(savedSchedule, savedCapacity, false, false), nil
}

// Вспомогательные методы

func (s *Service) schedule(ctx context.Context, partnerID int64) (*domain.WeeklySchedule, bool, error) {
	schedule, err := s.cache.GetSchedule(ctx, partnerID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			return domain.DefaultSchedule(partnerID), true, nil
		}
		s.logger.Error("Resolve: failed to get schedule for partner=%d: %v", partnerID, err)
		return nil, false, fmt.Errorf("%w: get schedule: %v", ErrInternal, err)
	}
	return schedule, false, nil
}

func (s *Service) capacity(ctx context.Context, partnerID int64) (*domain.CapacityPlan, bool, error) {
	capacity, err := s.cache.GetCapacity(ctx, partnerID)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrCapacityNotFound) {
			return domain.DefaultCapacity(partnerID), true, nil
		}
		s.logger.Error("Resolve: failed to get bays for partner=%d: %v", partnerID, err)
		return nil, false, fmt.Errorf("%w: get bays: %v", ErrInternal, err)
	}
	return capacity, false, nil
}

// checkManagerAccess проверяет, что пользователь является менеджером партнёра
func (s *Service) checkManagerAccess(ctx context.Context, partnerID int64, userID int64) error {
	partner, err := s.sellerClient.GetPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, sellerClient.ErrPartnerNotFound) {
			s.logger.Warn("checkManagerAccess: partner id=%d not found", partnerID)
			return ErrPartnerNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get partner id=%d: %v", partnerID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get partner: %v", ErrInternal, err)
	}

	if !partner.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of partner=%d", userID, partnerID)
		return ErrAccessDenied
	}
	return nil
}
