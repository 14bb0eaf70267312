package sellerservice

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

func TestClient_GetService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/partners/1/services/2":
			_, _ = w.Write([]byte(`{"id":2,"partnerId":1,"name":"Full wash","category":"wash","durationMinutes":45,
				"isPickupDropoff":true,"bodyTypePricing":[{"bodyType":"sedan","price":20},{"bodyType":"suv","price":30}]}`))
		case "/internal/partners/1":
			_, _ = w.Write([]byte(`{"id":1,"name":"Shiny","managerIds":[100,101]}`))
		case "/internal/partners/1/products":
			_, _ = w.Write([]byte(`[{"id":7,"partnerId":1,"name":"Wax","price":5}]`))
		case "/internal/partners/1/services/500":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, logger.Nop())
	ctx := context.Background()

	service, err := c.GetService(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "wash", service.Category)
	assert.Equal(t, 45, service.DurationMinutes)
	assert.True(t, service.IsPickupDropoff)
	require.Len(t, service.BodyTypePricing, 2)
	assert.Equal(t, 30.0, service.BodyTypePricing[1].Price)

	products, err := c.GetProducts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Wax", products[0].Name)

	partner, err := c.GetPartner(ctx, 1)
	require.NoError(t, err)
	assert.True(t, partner.IsManager(101))
	assert.False(t, partner.IsManager(5))

	_, err = c.GetService(ctx, 1, 3)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = c.GetService(ctx, 1, 500)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.GetProducts(ctx, 9)
	assert.ErrorIs(t, err, ErrPartnerNotFound)
}
