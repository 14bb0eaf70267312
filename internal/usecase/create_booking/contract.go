package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/allocator"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/userservice"
)

// Allocator резервирование бокса под окно
type Allocator interface {
	Reserve(ctx context.Context, claim allocator.Claim, draft *domain.Booking) (*domain.Booking, error)
}

// ConfigResolver источник действующего расписания и боксов партнёра
type ConfigResolver interface {
	Resolve(ctx context.Context, partnerID int64) (*domain.WeeklySchedule, *domain.CapacityPlan, error)
}

// SellerServiceClient интерфейс клиента для SellerService
type SellerServiceClient interface {
	GetService(ctx context.Context, partnerID, serviceID int64) (*sellerservice.Service, error)
	GetProducts(ctx context.Context, partnerID int64) ([]sellerservice.Product, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetSelectedCarWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.Car, error)
	GetSubscriptionTierWithGracefulDegradation(ctx context.Context, userID int64, now time.Time) string
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
