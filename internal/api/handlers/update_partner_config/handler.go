package update_partner_config

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
	msgInvalidPartnerID   = "некорректный ID партнёра"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidData        = "некорректные данные конфигурации"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgPartnerNotFound    = "партнёр не найден"
	msgForbidden          = "доступ запрещен"
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

// Handle PUT /api/v1/partners/{partnerId}/config
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	partnerID, err := strconv.ParseInt(mux.Vars(r)["partnerId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /partners/{id}/config - Invalid partner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPartnerID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /partners/{id}/config - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdatePartnerConfigRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /partners/{id}/config - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("PUT /partners/{id}/config - Validation failed: partner_id=%d, error=%v", partnerID, err)
		handlers.RespondValidationError(w, msgInvalidData, err)
		return
	}

	// Сервис сам проверит права менеджера и инварианты расписания
	result, err := h.service.Update(r.Context(), req.ToServiceRequest(partnerID, userID))
	if err != nil {
		switch {
		case errors.Is(err, config.ErrPartnerNotFound):
			h.logger.Warn("PUT /partners/{id}/config - Partner not found: partner_id=%d", partnerID)
			handlers.RespondNotFound(w, msgPartnerNotFound)

		case errors.Is(err, config.ErrAccessDenied):
			h.logger.Warn("PUT /partners/{id}/config - Access denied: partner_id=%d, user_id=%d", partnerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, config.ErrInvalidInput):
			h.logger.Warn("PUT /partners/{id}/config - Invalid config: partner_id=%d, error=%v", partnerID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PUT /partners/{id}/config - Failed to update config: partner_id=%d, error=%v", partnerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /partners/{id}/config - Config updated successfully: partner_id=%d, bays=%d",
		partnerID, len(result.Bays))
	handlers.RespondJSON(w, http.StatusOK, result)
}
