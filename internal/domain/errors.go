package domain

import "errors"

// Таксономия ошибок движка бронирования. Слои выше оборачивают их через %w,
// поэтому проверка errors.Is работает на любом уровне.
var (
	// ErrPartnerClosed запрошенный день или время вне включённого расписания партнёра
	ErrPartnerClosed = errors.New("partner is closed at the requested time")

	// ErrOutsideBookingWindow дата в прошлом или дальше maxAdvanceDays
	ErrOutsideBookingWindow = errors.New("requested date is outside the booking window")

	// ErrSlotUnavailable нет свободного бокса на запрошенное окно (в т.ч. проигранная гонка)
	ErrSlotUnavailable = errors.New("slot is unavailable")

	// ErrAllocationTimeout не удалось получить блокировку/транзакцию за отведённое время; можно повторить
	ErrAllocationTimeout = errors.New("allocation timed out, retry the request")

	// ErrInvalidStatusTransition операция недопустима из текущего статуса
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")

	// ErrCancellationWindowViolated отмена внутри окна отмены
	ErrCancellationWindowViolated = errors.New("cancellation window violated")

	// ErrNotFound бронирование, партнёр или услуга не найдены
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("invalid input")
)
