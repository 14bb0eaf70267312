package domain

// Значения по умолчанию для политики партнёра и платформенных настроек
const (
	DefaultBufferMinutes             = 15
	DefaultMaxAdvanceDays            = 30
	DefaultMinBookingNoticeMinutes   = 0
	DefaultCancellationWindowHours   = 24
	DefaultCustomerCommissionPercent = 5.0
	DefaultPartnerCommissionPercent  = 10.0
	DefaultPremiumDiscountPercent    = 10.0
)

// SlotStepMinutes шаг сетки начала окон. Фиксирован, чтобы независимые запросы
// на пересекающиеся окна гарантированно сталкивались на одной сетке.
const SlotStepMinutes = 15

// Бизнес-ограничения
const (
	MinDurationMinutes          = SlotStepMinutes
	MaxDurationMinutes          = 12 * 60
	MaxBufferMinutes            = 240
	MaxAdvanceDaysLimit         = 365
	MaxBookingNoticeMinutes     = 7 * 24 * 60
	MaxBaysPerPartner           = 100
	MaxProductsPerBooking       = 50
	MaxCancellationReasonLength = 500
)

// Форматы времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
