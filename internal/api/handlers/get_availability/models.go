package get_availability

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	getAvailability "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date               string                  `json:"date"`
	PartnerID          int64                   `json:"partnerId"`
	Category           domain.Category         `json:"category"`
	DurationMinutes    int                     `json:"durationMinutes"`
	Windows            []WindowResponse        `json:"windows"`
	CapacityByCategory map[domain.Category]int `json:"capacityByCategory"`
}

// WindowResponse свободное окно
type WindowResponse struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	FreeBayCount int    `json:"freeBayCount"`
}

// ToUseCaseRequest формирует запрос к use case из query параметров
func ToUseCaseRequest(partnerID, userID int64, dateStr, category, durationStr string) (*getAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	duration, err := strconv.Atoi(durationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid durationMinutes: %w", err)
	}

	return &getAvailability.Request{
		UserID:          userID,
		PartnerID:       partnerID,
		Date:            date,
		Category:        category,
		DurationMinutes: duration,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	windows := make([]WindowResponse, len(resp.Windows))
	for i, w := range resp.Windows {
		windows[i] = WindowResponse{
			Start:        w.Start.String(),
			End:          w.End.String(),
			FreeBayCount: w.FreeBayCount,
		}
	}

	return &AvailabilityResponse{
		Date:               resp.Date.Format(domain.DateFormat),
		PartnerID:          resp.PartnerID,
		Category:           resp.Category,
		DurationMinutes:    resp.DurationMinutes,
		Windows:            windows,
		CapacityByCategory: resp.CapacityByCategory,
	}
}
