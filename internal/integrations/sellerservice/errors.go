package sellerservice

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга партнёра не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrPartnerNotFound возвращается, когда партнёр не найден
	ErrPartnerNotFound = errors.New("partner not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("sellerservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("sellerservice client: invalid response")
)
