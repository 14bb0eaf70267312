package get_availability

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
)

const (
	msgInvalidPartnerID = "некорректный ID партнёра"
	msgMissingParams    = "параметры date, category и durationMinutes обязательны"
	msgInvalidParams    = "некорректные параметры запроса, дата ожидается в формате YYYY-MM-DD"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/partners/{partnerId}/availability
// Query params: date (YYYY-MM-DD), category, durationMinutes
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	partnerID, err := strconv.ParseInt(mux.Vars(r)["partnerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /partners/{id}/availability - Invalid partner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPartnerID)
		return
	}

	query := r.URL.Query()
	dateStr := query.Get("date")
	category := query.Get("category")
	durationStr := query.Get("durationMinutes")
	if dateStr == "" || category == "" || durationStr == "" {
		h.logger.Warn("GET /partners/{id}/availability - Missing params: partner_id=%d", partnerID)
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	// Публичный маршрут, пользователь может отсутствовать
	userID, _ := middleware.GetUserID(r.Context())

	useCaseReq, err := ToUseCaseRequest(partnerID, userID, dateStr, category, durationStr)
	if err != nil {
		h.logger.Warn("GET /partners/{id}/availability - Invalid params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if handlers.RespondEngineError(w, err) {
			h.logger.Warn("GET /partners/{id}/availability - Rejected: partner_id=%d, date=%s, error=%v",
				partnerID, dateStr, err)
			return
		}
		h.logger.Error("GET /partners/{id}/availability - Failed to get availability: partner_id=%d, date=%s, error=%v",
			partnerID, dateStr, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /partners/{id}/availability - Windows retrieved: partner_id=%d, date=%s, category=%s, windows=%d",
		partnerID, dateStr, category, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
