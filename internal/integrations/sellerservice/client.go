package sellerservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с каталогом SellerService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

var errNotFound = errors.New("sellerservice client: not found")

// NewClient создает новый экземпляр клиента SellerService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetPartner получает партнёра
func (c *Client) GetPartner(ctx context.Context, partnerID int64) (*Partner, error) {
	var partner Partner
	err := c.get(ctx, fmt.Sprintf("%s/internal/partners/%d", c.baseURL, partnerID), &partner)
	if errors.Is(err, errNotFound) {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		c.log.Error("SellerService: get partner=%d: %v", partnerID, err)
		return nil, err
	}
	return &partner, nil
}

// GetService получает услугу партнёра с прайсом по классам кузова
func (c *Client) GetService(ctx context.Context, partnerID, serviceID int64) (*Service, error) {
	var service Service
	err := c.get(ctx, fmt.Sprintf("%s/internal/partners/%d/services/%d", c.baseURL, partnerID, serviceID), &service)
	if errors.Is(err, errNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		c.log.Error("SellerService: get service partner=%d service=%d: %v", partnerID, serviceID, err)
		return nil, err
	}
	return &service, nil
}

// GetProducts получает дополнительные товары партнёра
func (c *Client) GetProducts(ctx context.Context, partnerID int64) ([]Product, error) {
	products := make([]Product, 0)
	err := c.get(ctx, fmt.Sprintf("%s/internal/partners/%d/products", c.baseURL, partnerID), &products)
	if errors.Is(err, errNotFound) {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		c.log.Error("SellerService: get products partner=%d: %v", partnerID, err)
		return nil, err
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}
