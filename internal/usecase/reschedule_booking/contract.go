package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/allocator"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// Allocator перенос бронирования в новое окно
type Allocator interface {
	Reallocate(ctx context.Context, claim allocator.Claim, move allocator.Move) (*domain.Booking, error)
}

// ConfigResolver источник действующего расписания и боксов партнёра
type ConfigResolver interface {
	Resolve(ctx context.Context, partnerID int64) (*domain.WeeklySchedule, *domain.CapacityPlan, error)
}

// SellerServiceClient интерфейс клиента для SellerService
type SellerServiceClient interface {
	GetPartner(ctx context.Context, partnerID int64) (*sellerservice.Partner, error)
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
