package cancel_booking

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
	bookingID int64
	got       *models.CancelBookingRequest
	err       error
}

func (s *stubService) Cancel(_ context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.bookingID = bookingID
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	actor := string(req.Actor)
	return &models.BookingResponse{ID: bookingID, Status: string(domain.StatusCancelled), CancelledBy: &actor}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(h *Handler, target, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/bookings/{bookingId}/cancel", h.Handle).Methods(http.MethodPost)

	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r = r.WithContext(middleware.WithUserID(r.Context(), 7))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle_Cancelled(t *testing.T) {
	svc := &stubService{}

	w := serve(NewHandler(svc, nopLogger{}), "/bookings/12/cancel", `{"actor":"customer","reason":"plans changed"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(12), svc.bookingID)
	assert.Equal(t, int64(7), svc.got.UserID)
	assert.Equal(t, domain.ActorCustomer, svc.got.Actor)
	require.NotNil(t, svc.got.Reason)
	assert.Equal(t, "plans changed", *svc.got.Reason)
}

func TestHandle_EmptyBody(t *testing.T) {
	svc := &stubService{}

	w := serve(NewHandler(svc, nopLogger{}), "/bookings/12/cancel", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.Actor(""), svc.got.Actor)
	assert.Nil(t, svc.got.Reason)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		err    error
		status int
	}{
		{"bad id", "/bookings/abc/cancel", `{}`, nil, http.StatusBadRequest},
		{"unknown actor", "/bookings/12/cancel", `{"actor":"system"}`, nil, http.StatusBadRequest},
		{"access denied", "/bookings/12/cancel", `{}`, bookings.ErrAccessDenied, http.StatusForbidden},
		{"not found", "/bookings/12/cancel", `{}`, bookings.ErrBookingNotFound, http.StatusNotFound},
		{"window", "/bookings/12/cancel", `{}`, domain.ErrCancellationWindowViolated, http.StatusUnprocessableEntity},
		{"terminal", "/bookings/12/cancel", `{}`, domain.ErrInvalidStatusTransition, http.StatusConflict},
		{"internal", "/bookings/12/cancel", `{}`, bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(NewHandler(&stubService{err: tt.err}, nopLogger{}), tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandle_BodyBookingID(t *testing.T) {
	t.Run("matches path", func(t *testing.T) {
		svc := &stubService{}

		w := serve(NewHandler(svc, nopLogger{}), "/bookings/12/cancel",
			`{"bookingId":12,"actor":"partner","reason":"bay flooded"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(12), svc.bookingID)
		assert.Equal(t, domain.ActorPartner, svc.got.Actor)
	})

	t.Run("differs from path", func(t *testing.T) {
		svc := &stubService{}

		w := serve(NewHandler(svc, nopLogger{}), "/bookings/12/cancel", `{"bookingId":13}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.got)
	})
}
