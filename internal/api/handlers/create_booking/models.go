package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// CreateBookingRequest HTTP request model.
// SubscriptionTier принимается для совместимости с клиентами, уровень подписки берётся из user service.
type CreateBookingRequest struct {
	PartnerID        int64            `json:"partnerId" validate:"required,gt=0"`
	CustomerID       *int64           `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	ServiceID        int64            `json:"serviceId" validate:"required,gt=0"`
	Category         *string          `json:"category,omitempty" validate:"omitempty,oneof=wash detailing other"`
	SubscriptionTier *string          `json:"subscriptionTier,omitempty" validate:"omitempty,max=50"`
	Date             string           `json:"date" validate:"required,isodate"` // "2025-10-15"
	Start            string           `json:"start" validate:"required,hhmm"`   // "10:00"
	End              *string          `json:"end,omitempty" validate:"omitempty,hhmm"`
	CarID            *int64           `json:"carId,omitempty" validate:"omitempty,gt=0"`
	VehicleBodyType  *string          `json:"vehicleBodyType,omitempty" validate:"omitempty,min=1,max=50"`
	Products         []ProductRequest `json:"products,omitempty" validate:"omitempty,max=50,dive"`
	Notes            *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ProductRequest товар в заказе
type ProductRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CreateBookingResponse созданное бронирование
type CreateBookingResponse struct {
	*models.BookingResponse
	Attempts int `json:"attempts"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Формат полей уже проверен валидатором.
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	start, err := types.ParseMinuteOfDay(r.Start)
	if err != nil {
		return nil, err
	}

	req := &createBooking.Request{
		UserID:          userID,
		CustomerID:      r.CustomerID,
		PartnerID:       r.PartnerID,
		ServiceID:       r.ServiceID,
		Date:            date,
		Start:           start,
		CarID:           r.CarID,
		VehicleBodyType: r.VehicleBodyType,
		Notes:           r.Notes,
	}

	if r.Category != nil {
		category, err := domain.ParseCategory(*r.Category)
		if err != nil {
			return nil, err
		}
		req.Category = &category
	}

	if r.End != nil {
		end, err := types.ParseMinuteOfDay(*r.End)
		if err != nil {
			return nil, err
		}
		req.End = &end
	}

	for _, p := range r.Products {
		req.Products = append(req.Products, createBooking.ProductRequest{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		BookingResponse: models.FromDomainBooking(resp.Booking),
		Attempts:        resp.Attempts,
	}
}
