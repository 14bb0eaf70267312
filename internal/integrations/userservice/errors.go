package userservice

import "errors"

var (
	// ErrCarNotFound возвращается, когда у пользователя нет выбранного автомобиля
	ErrCarNotFound = errors.New("user has no selected car")

	// ErrSubscriptionNotFound возвращается, когда у пользователя нет подписки
	ErrSubscriptionNotFound = errors.New("user has no subscription")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("userservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("userservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation.
	// UserService недоступен, цена считается по первой строке прайса и без скидки подписки.
	ErrServiceDegraded = errors.New("userservice unavailable: graceful degradation applied")
)

// errNotFound внутренний маркер ответа 404
var errNotFound = errors.New("userservice client: not found")
