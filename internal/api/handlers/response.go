package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/validation"
)

const (
	msgInternalError = "внутренняя ошибка сервера"

	// RetryAfterSeconds подсказка клиенту при таймауте аллокации
	RetryAfterSeconds = "1"
)

// Коды ошибок в теле ответа
const (
	CodeInvalidInput               = "invalid_input"
	CodeUnauthorized               = "unauthorized"
	CodeForbidden                  = "forbidden"
	CodeNotFound                   = "not_found"
	CodePartnerClosed              = "partner_closed"
	CodeOutsideBookingWindow       = "outside_booking_window"
	CodeSlotUnavailable            = "slot_unavailable"
	CodeAllocationTimeout          = "allocation_timeout"
	CodeInvalidStatusTransition    = "invalid_status_transition"
	CodeCancellationWindowViolated = "cancellation_window_violated"
	CodeTooManyRequests            = "too_many_requests"
	CodeInternal                   = "internal"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// RespondError отправляет ошибку с указанным статусом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: codeForStatus(status), Message: message})
}

// RespondErrorCode отправляет ошибку с явным кодом
func RespondErrorCode(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondValidationError отправляет 400 со списком невалидных полей
func RespondValidationError(w http.ResponseWriter, message string, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		RespondJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    CodeInvalidInput,
			Message: message,
			Fields:  fieldErrs,
		})
		return
	}
	RespondBadRequest(w, message)
}

// RespondEngineError отвечает на ошибки движка бронирования.
// Возвращает false, если ошибка не относится к таксономии домена.
func RespondEngineError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		RespondErrorCode(w, http.StatusConflict, CodeSlotUnavailable, "нет свободного бокса на выбранное время")
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		RespondErrorCode(w, http.StatusConflict, CodeInvalidStatusTransition, "операция недопустима в текущем статусе бронирования")
	case errors.Is(err, domain.ErrAllocationTimeout):
		w.Header().Set("Retry-After", RetryAfterSeconds)
		RespondErrorCode(w, http.StatusServiceUnavailable, CodeAllocationTimeout, "не удалось зарезервировать бокс, повторите запрос")
	case errors.Is(err, domain.ErrPartnerClosed):
		RespondErrorCode(w, http.StatusUnprocessableEntity, CodePartnerClosed, "партнёр не работает в выбранное время")
	case errors.Is(err, domain.ErrOutsideBookingWindow):
		RespondErrorCode(w, http.StatusUnprocessableEntity, CodeOutsideBookingWindow, "дата вне окна бронирования")
	case errors.Is(err, domain.ErrCancellationWindowViolated):
		RespondErrorCode(w, http.StatusUnprocessableEntity, CodeCancellationWindowViolated, "отмена невозможна: до начала осталось слишком мало времени")
	case errors.Is(err, domain.ErrNotFound):
		RespondErrorCode(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		RespondErrorCode(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
	default:
		return false
	}
	return true
}

// DecodeJSON декодирует тело запроса, неизвестные поля запрещены
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	default:
		return CodeInternal
	}
}
