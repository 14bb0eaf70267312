package userservice

import "time"

// Car модель автомобиля из UserService
type Car struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	LicensePlate string `json:"license_plate"`
	BodyType     string `json:"body_type"` // ключ прайса услуги (sedan, suv, ...)
	IsSelected   bool   `json:"is_selected"`
}

// Subscription подписка пользователя
type Subscription struct {
	UserID    int64      `json:"user_id"`
	Tier      string     `json:"tier"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// IsActiveAt действует ли подписка на момент now
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}
