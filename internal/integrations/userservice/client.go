package userservice

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
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с UserService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента UserService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetSelectedCar получает выбранный автомобиль пользователя
func (c *Client) GetSelectedCar(ctx context.Context, userID int64) (*Car, error) {
	var car Car
	err := c.get(ctx, fmt.Sprintf("%s/internal/users/%d/cars/selected", c.baseURL, userID), &car)
	if errors.Is(err, errNotFound) {
		return nil, ErrCarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// GetSubscription получает подписку пользователя
func (c *Client) GetSubscription(ctx context.Context, userID int64) (*Subscription, error) {
	var sub Subscription
	err := c.get(ctx, fmt.Sprintf("%s/internal/users/%d/subscription", c.baseURL, userID), &sub)
	if errors.Is(err, errNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSelectedCarWithGracefulDegradation получает выбранный автомобиль пользователя с graceful degradation.
// При недоступности UserService возвращает ErrServiceDegraded, и цена считается по первой строке прайса.
func (c *Client) GetSelectedCarWithGracefulDegradation(ctx context.Context, userID int64) (*Car, error) {
	car, err := c.GetSelectedCar(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCarNotFound) {
			c.log.Info("No selected car found for user_id=%d", userID)
			return nil, err
		}

		c.log.Error("UserService unavailable, applying graceful degradation for user_id=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: user_id=%d, error=%v", ErrServiceDegraded, userID, err)
	}

	c.log.Info("Fetched selected car for user_id=%d, body_type=%s", userID, car.BodyType)
	return car, nil
}

// GetSubscriptionTierWithGracefulDegradation возвращает уровень подписки.
// Отсутствие подписки, истёкшая подписка и недоступность сервиса дают базовый уровень.
func (c *Client) GetSubscriptionTierWithGracefulDegradation(ctx context.Context, userID int64, now time.Time) string {
	sub, err := c.GetSubscription(ctx, userID)
	switch {
	case errors.Is(err, ErrSubscriptionNotFound):
		return TierBasic
	case err != nil:
		c.log.Error("UserService unavailable, subscription tier falls back to basic for user_id=%d: %v", userID, err)
		return TierBasic
	case !sub.IsActiveAt(now) || sub.Tier == "":
		return TierBasic
	}
	return sub.Tier
}

// TierBasic уровень без скидок
const TierBasic = "basic"

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
	case http.StatusBadRequest:
		return fmt.Errorf("%w: invalid user ID format", ErrInvalidResponse)
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
