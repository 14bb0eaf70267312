package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
)

const (
	statusOK       = "ok"
	statusDegraded = "unavailable"

	checkTimeout = 2 * time.Second
)

// Response состояние сервиса и его зависимостей
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type Handler struct {
	checkers map[string]Checker
	logger   Logger
}

// NewHandler принимает проверки по имени зависимости (postgres, redis)
func NewHandler(checkers map[string]Checker, logger Logger) *Handler {
	return &Handler{
		checkers: checkers,
		logger:   logger,
	}
}

// Handle GET /health
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := Response{Status: statusOK, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checkers[name].Ping(ctx); err != nil {
			h.logger.Error("GET /health - %s check failed: %v", name, err)
			resp.Checks[name] = statusDegraded
			resp.Status = statusDegraded
			continue
		}
		resp.Checks[name] = statusOK
	}

	status := http.StatusOK
	if resp.Status != statusOK {
		status = http.StatusServiceUnavailable
	}
	handlers.RespondJSON(w, status, resp)
}
