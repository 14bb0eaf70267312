package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID          int64              // ID клиента
	CustomerID      *int64             // ID клиента из тела запроса (опционально, должен совпадать с UserID)
	PartnerID       int64              // ID партнёра
	ServiceID       int64              // ID услуги
	Category        *domain.Category   // Категория (опционально, должна совпадать с категорией услуги)
	Date            time.Time          // Дата (без времени)
	Start           types.MinuteOfDay  // Начало окна
	End             *types.MinuteOfDay // Конец окна (опционально, должен совпадать с длительностью услуги)
	CarID           *int64             // Автомобиль клиента (опционально)
	VehicleBodyType *string            // Класс кузова; если не указан, берётся у выбранного автомобиля
	Products        []ProductRequest   // Дополнительные товары
	Notes           *string            // Заметки (опционально)
}

// ProductRequest товар в заказе
type ProductRequest struct {
	ProductID int64
	Quantity  int
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking  *domain.Booking
	Attempts int // Количество попыток резервирования
}
