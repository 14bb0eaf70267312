package get_partner_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(partnerID, userID int64, query url.Values) (*models.GetPartnerBookingsRequest, error) {
	req := &models.GetPartnerBookingsRequest{
		UserID:          userID,
		PartnerID:       partnerID,
		IncludeInactive: false, // По умолчанию только активные
	}

	var err error
	if req.Date, err = parseDate(query.Get("date")); err != nil {
		return nil, err
	}
	if req.From, err = parseDate(query.Get("from")); err != nil {
		return nil, err
	}
	if req.To, err = parseDate(query.Get("to")); err != nil {
		return nil, err
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if category := query.Get("category"); category != "" {
		req.Category = &category
	}

	if includeInactiveStr := query.Get("includeInactive"); includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &date, nil
}
