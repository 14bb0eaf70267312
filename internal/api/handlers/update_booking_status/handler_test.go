package update_booking_status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

type stubService struct {
	got *models.AdvanceStatusRequest
	err error
}

func (s *stubService) AdvanceStatus(_ context.Context, bookingID int64, req *models.AdvanceStatusRequest) (*models.BookingResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingResponse{ID: bookingID, Status: string(req.TargetStatus)}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(h *Handler, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/bookings/{bookingId}/status", h.Handle).Methods(http.MethodPatch)

	r := httptest.NewRequest(http.MethodPatch, "/bookings/12/status", strings.NewReader(body))
	r = r.WithContext(middleware.WithUserID(r.Context(), 3))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle_Advanced(t *testing.T) {
	svc := &stubService{}

	w := serve(NewHandler(svc, nopLogger{}), `{"targetStatus":"in_progress"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusInProgress, svc.got.TargetStatus)
	assert.Equal(t, int64(3), svc.got.UserID)
	assert.Contains(t, w.Body.String(), `"status":"in_progress"`)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"missing status", `{}`, nil, http.StatusBadRequest},
		{"unknown status", `{"targetStatus":"washing"}`, nil, http.StatusBadRequest},
		{"skip ahead", `{"targetStatus":"completed"}`, domain.ErrInvalidStatusTransition, http.StatusConflict},
		{"not manager", `{"targetStatus":"in_progress"}`, bookings.ErrAccessDenied, http.StatusForbidden},
		{"not found", `{"targetStatus":"in_progress"}`, bookings.ErrBookingNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(NewHandler(&stubService{err: tt.err}, nopLogger{}), tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandle_BodyBookingID(t *testing.T) {
	t.Run("matches path", func(t *testing.T) {
		svc := &stubService{}

		w := serve(NewHandler(svc, nopLogger{}), `{"bookingId":12,"targetStatus":"in_progress"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.StatusInProgress, svc.got.TargetStatus)
	})

	t.Run("differs from path", func(t *testing.T) {
		svc := &stubService{}

		w := serve(NewHandler(svc, nopLogger{}), `{"bookingId":7,"targetStatus":"in_progress"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.got)
	})
}
