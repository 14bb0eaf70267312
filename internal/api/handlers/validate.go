package handlers

import (
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/validation"
)

const msgBookingIDMismatch = "bookingId в теле не совпадает с ID в пути"

var requestValidator = validation.New()

// Validate проверяет тело запроса по тегам validate
func Validate(v interface{}) error {
	return requestValidator.Struct(v)
}

// MatchBookingID сверяет необязательный bookingId из тела с параметром пути
func MatchBookingID(pathID int64, bodyID *int64) error {
	if bodyID != nil && *bodyID != pathID {
		return fmt.Errorf("%w: bookingId %d in body, %d in path", domain.ErrInvalidInput, *bodyID, pathID)
	}
	return nil
}

// RespondBookingIDMismatch отвечает 400 на расхождение bookingId
func RespondBookingIDMismatch(w http.ResponseWriter) {
	RespondBadRequest(w, msgBookingIDMismatch)
}
