package cache

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// ScheduleStore источник расписаний
type ScheduleStore interface {
	Get(ctx context.Context, partnerID int64) (*domain.WeeklySchedule, error)
}

// CapacityStore источник боксов
type CapacityStore interface {
	Get(ctx context.Context, partnerID int64) (*domain.CapacityPlan, error)
}

// Metrics счётчики попаданий в кэш
type Metrics interface {
	IncCache(cache, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Warn(format string, v ...interface{})
}
