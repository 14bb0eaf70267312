package config

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
)

// ConfigCache кэш расписаний и боксов партнёра
type ConfigCache interface {
	GetSchedule(ctx context.Context, partnerID int64) (*domain.WeeklySchedule, error)
	GetCapacity(ctx context.Context, partnerID int64) (*domain.CapacityPlan, error)
	Invalidate(ctx context.Context, partnerID int64) error
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	Upsert(ctx context.Context, s *domain.WeeklySchedule) (*domain.WeeklySchedule, error)
}

// CapacityRepository интерфейс репозитория боксов
type CapacityRepository interface {
	Replace(ctx context.Context, plan *domain.CapacityPlan) (*domain.CapacityPlan, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SellerServiceClient интерфейс клиента для SellerService
type SellerServiceClient interface {
	GetPartner(ctx context.Context, partnerID int64) (*sellerservice.Partner, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
