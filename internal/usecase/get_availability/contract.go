package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListActiveForPartnerDay активные бронирования партнёра на дату
	ListActiveForPartnerDay(ctx context.Context, partnerID int64, date time.Time) ([]*domain.Booking, error)
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
