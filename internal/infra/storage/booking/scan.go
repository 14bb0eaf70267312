package booking

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует строку в порядке columns
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b        domain.Booking
		products []byte
	)

	err := row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.PartnerID,
		&b.ServiceID,
		&b.ServiceName,
		&b.Category,
		&b.BayID,
		&b.SlotDate,
		&b.SlotStart,
		&b.SlotEnd,
		&b.Status,
		&b.DeliveryRequired,
		&b.CarID,
		&b.VehicleBodyType,
		&b.SubscriptionTier,
		&products,
		&b.Pricing.BasePrice,
		&b.Pricing.SubscriptionDiscount,
		&b.Pricing.ProductsTotal,
		&b.Pricing.Subtotal,
		&b.Pricing.PlatformFee,
		&b.Pricing.FinalPrice,
		&b.Pricing.PartnerPayout,
		&b.Notes,
		&b.CancelledBy,
		&b.CancellationReason,
		&b.CancelledAt,
		&b.RescheduledFromDate,
		&b.RescheduledFromStart,
		&b.RescheduledFromEnd,
		&b.RescheduledFromBayID,
		&b.RescheduledAt,
		&b.RescheduleCount,
		&b.StartedAt,
		&b.CompletedAt,
		&b.StatusChangedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Products = make([]domain.ProductLine, 0)
	if len(products) > 0 {
		if err := json.Unmarshal(products, &b.Products); err != nil {
			return nil, err
		}
	}

	return &b, nil
}

// dateParam передаёт дату строкой, чтобы часовой пояс сессии не сдвигал день
func dateParam(t time.Time) string {
	return t.Format(domain.DateFormat)
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

func joinColumns() string {
	return strings.Join(columns, ", ")
}
