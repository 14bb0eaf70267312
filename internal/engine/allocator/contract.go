package allocator

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Locker взаимное исключение по ключу конкуренции
type Locker interface {
	Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error)
	Backend() string
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// BookingRepository интерфейс журнала бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListActiveForSlotDay(ctx context.Context, partnerID int64, category domain.Category, date time.Time) ([]*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	MoveSlot(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	AddSlotHistory(ctx context.Context, entry *domain.SlotHistoryEntry) error
}

// Metrics счётчики аллокатора
type Metrics interface {
	IncReservation(outcome string)
	ObserveLockWait(backend string, duration time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
