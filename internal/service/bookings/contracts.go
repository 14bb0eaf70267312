package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCustomer(ctx context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error)
	GetByPartnerWithFilter(ctx context.Context, filter domain.PartnerBookingsFilter) ([]*domain.Booking, error)
	GetSlotHistory(ctx context.Context, bookingID int64) ([]*domain.SlotHistoryEntry, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, at time.Time) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, actor domain.Actor, reason *string, at time.Time) (*domain.Booking, error)
}

// SellerServiceClient интерфейс клиента для SellerService
type SellerServiceClient interface {
	GetPartner(ctx context.Context, partnerID int64) (*sellerservice.Partner, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики переходов статусов
type Metrics interface {
	IncStatusTransition(status string)
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
