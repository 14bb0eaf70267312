package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request модель запроса на перенос бронирования
type Request struct {
	BookingID int64
	UserID    int64
	Actor     domain.Actor       // customer или partner; пусто = определить по пользователю
	NewDate   time.Time          // Новая дата (без времени)
	NewStart  types.MinuteOfDay  // Новое начало окна
	NewEnd    *types.MinuteOfDay // Новый конец (опционально, длительность не меняется)
	Reason    *string
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	Booking  *domain.Booking
	Attempts int
}
