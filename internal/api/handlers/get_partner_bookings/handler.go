package get_partner_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidPartnerID = "некорректный ID партнёра"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgInvalidParams    = "некорректные параметры запроса"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/partners/{partnerId}/bookings
// Query params: date, from, to, status, category, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	partnerID, err := strconv.ParseInt(mux.Vars(r)["partnerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /partners/{id}/bookings - Invalid partner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPartnerID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /partners/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := ToServiceRequest(partnerID, userID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /partners/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Сервис сам проверит права менеджера
	result, err := h.service.GetPartnerBookings(r.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, bookings.ErrAccessDenied) {
			h.logger.Warn("GET /partners/{id}/bookings - Access denied: partner_id=%d, user_id=%d", partnerID, userID)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		if handlers.RespondEngineError(w, err) {
			h.logger.Warn("GET /partners/{id}/bookings - Rejected: partner_id=%d, error=%v", partnerID, err)
			return
		}
		h.logger.Error("GET /partners/{id}/bookings - Failed to get bookings: partner_id=%d, error=%v",
			partnerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /partners/{id}/bookings - Bookings retrieved successfully: partner_id=%d, count=%d",
		partnerID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
