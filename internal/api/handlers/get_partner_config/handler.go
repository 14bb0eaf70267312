package get_partner_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/service/config"
)

const (
	msgInvalidPartnerID = "некорректный ID партнёра"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgPartnerNotFound  = "партнёр не найден"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/partners/{partnerId}/config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	partnerID, err := strconv.ParseInt(mux.Vars(r)["partnerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /partners/{id}/config - Invalid partner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPartnerID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /partners/{id}/config - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.Get(r.Context(), partnerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrPartnerNotFound):
			h.logger.Warn("GET /partners/{id}/config - Partner not found: partner_id=%d", partnerID)
			handlers.RespondNotFound(w, msgPartnerNotFound)

		case errors.Is(err, config.ErrAccessDenied):
			h.logger.Warn("GET /partners/{id}/config - Access denied: partner_id=%d, user_id=%d", partnerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /partners/{id}/config - Failed to get config: partner_id=%d, error=%v", partnerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /partners/{id}/config - Config retrieved successfully: partner_id=%d, default_schedule=%t, default_capacity=%t",
		partnerID, result.ScheduleIsDefault, result.CapacityIsDefault)
	handlers.RespondJSON(w, http.StatusOK, result)
}
