package get_availability

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request модель запроса свободных окон
type Request struct {
	UserID          int64     // ID пользователя (для логирования, не влияет на результат)
	PartnerID       int64     // ID партнёра
	Date            time.Time // Дата (без времени)
	Category        string    // Категория боксов: wash, detailing, other
	DurationMinutes int       // Длительность услуги
}

// Response модель ответа со свободными окнами
type Response struct {
	Date               time.Time
	PartnerID          int64
	Category           domain.Category
	DurationMinutes    int
	Windows            []domain.Window         // Окна по возрастанию начала, в каждом свободен хотя бы один бокс
	CapacityByCategory map[domain.Category]int // Активные боксы по категориям
}
