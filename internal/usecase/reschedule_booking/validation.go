package reschedule_booking

import (
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.NewDate.IsZero() {
		return fmt.Errorf("%w: newDate is required", ErrInvalidInput)
	}

	if err := req.NewStart.Validate(); err != nil {
		return fmt.Errorf("%w: invalid newStart: %v", ErrInvalidInput, err)
	}

	if req.Actor != "" && !req.Actor.IsValid() {
		return fmt.Errorf("%w: unknown actor %q", ErrInvalidInput, req.Actor)
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}
