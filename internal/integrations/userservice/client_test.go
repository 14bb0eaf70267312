package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/internal/users/1/cars/selected", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":5,"user_id":1,"body_type":"suv","is_selected":true}`))
	})
	mux.HandleFunc("/internal/users/1/subscription", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user_id":1,"tier":"premium","expires_at":"2030-01-01T00:00:00Z"}`))
	})
	mux.HandleFunc("/internal/users/2/subscription", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user_id":2,"tier":"premium","expires_at":"2020-01-01T00:00:00Z"}`))
	})
	mux.HandleFunc("/internal/users/3/subscription", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetSelectedCar(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, logger.Nop())

	car, err := c.GetSelectedCar(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "suv", car.BodyType)

	_, err = c.GetSelectedCar(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCarNotFound)
}

func TestClient_GracefulDegradation(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 100*time.Millisecond, logger.Nop())

	_, err := c.GetSelectedCarWithGracefulDegradation(context.Background(), 1)
	assert.ErrorIs(t, err, ErrServiceDegraded)
}

func TestClient_SubscriptionTier(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, logger.Nop())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	assert.Equal(t, "premium", c.GetSubscriptionTierWithGracefulDegradation(ctx, 1, now))
	assert.Equal(t, TierBasic, c.GetSubscriptionTierWithGracefulDegradation(ctx, 2, now), "expired")
	assert.Equal(t, TierBasic, c.GetSubscriptionTierWithGracefulDegradation(ctx, 3, now), "service error")
	assert.Equal(t, TierBasic, c.GetSubscriptionTierWithGracefulDegradation(ctx, 4, now), "no subscription")
}
