package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.CustomerID != nil && *req.CustomerID != req.UserID {
		return fmt.Errorf("%w: customerID %d does not match the authenticated user", ErrInvalidInput, *req.CustomerID)
	}

	if req.PartnerID <= 0 {
		return fmt.Errorf("%w: partnerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.Category != nil && !req.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *req.Category)
	}

	if err := req.Start.Validate(); err != nil {
		return fmt.Errorf("%w: invalid start: %v", ErrInvalidInput, err)
	}

	if req.VehicleBodyType != nil && strings.TrimSpace(*req.VehicleBodyType) == "" {
		return fmt.Errorf("%w: vehicleBodyType must not be blank", ErrInvalidInput)
	}

	if len(req.Products) > domain.MaxProductsPerBooking {
		return fmt.Errorf("%w: at most %d products per booking", ErrInvalidInput, domain.MaxProductsPerBooking)
	}

	seen := make(map[int64]struct{}, len(req.Products))
	for _, p := range req.Products {
		if p.ProductID <= 0 || p.Quantity <= 0 {
			return fmt.Errorf("%w: product %d: id and quantity must be positive", ErrInvalidInput, p.ProductID)
		}
		if _, ok := seen[p.ProductID]; ok {
			return fmt.Errorf("%w: product %d is listed twice", ErrInvalidInput, p.ProductID)
		}
		seen[p.ProductID] = struct{}{}
	}

	return nil
}
