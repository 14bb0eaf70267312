// Package pricing computes the monetary breakdown of a booking.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

const centPlaces = 2

var hundred = decimal.NewFromInt(100)

// PriceEntry цена услуги для класса кузова
type PriceEntry struct {
	BodyType string
	Price    float64
}

// Product дополнительный товар в заказе
type Product struct {
	ProductID int64
	Name      string
	Price     float64
	Quantity  int
}

// Settings проценты комиссий и скидки, проценты задаются как 5 = 5%
type Settings struct {
	CustomerCommissionPercent float64
	PartnerCommissionPercent  float64
	PremiumDiscountPercent    float64
}

// DefaultSettings платформенные настройки по умолчанию
func DefaultSettings() Settings {
	return Settings{
		CustomerCommissionPercent: domain.DefaultCustomerCommissionPercent,
		PartnerCommissionPercent:  domain.DefaultPartnerCommissionPercent,
		PremiumDiscountPercent:    domain.DefaultPremiumDiscountPercent,
	}
}

// Input входные данные расчёта
type Input struct {
	PriceTable       []PriceEntry
	BodyType         string
	SubscriptionTier string
	Products         []Product
	Settings         Settings
}

// Calculate считает разбивку стоимости. Каждая денежная величина
// округляется до копеек половиной вверх сразу после вычисления.
func Calculate(in Input) (domain.Pricing, error) {
	if err := validate(in); err != nil {
		return domain.Pricing{}, err
	}

	base := money(basePrice(in.PriceTable, in.BodyType))

	discount := decimal.Zero
	if in.SubscriptionTier == domain.TierPremium {
		discount = percentOf(base, in.Settings.PremiumDiscountPercent)
	}

	productsTotal := decimal.Zero
	for _, p := range in.Products {
		line := money(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity))).Round(centPlaces)
		productsTotal = productsTotal.Add(line)
	}

	subtotal := base.Sub(discount).Add(productsTotal).Round(centPlaces)
	platformFee := percentOf(subtotal, in.Settings.CustomerCommissionPercent)
	finalPrice := subtotal.Add(platformFee)
	partnerPayout := subtotal.Sub(percentOf(subtotal, in.Settings.PartnerCommissionPercent))

	return domain.Pricing{
		BasePrice:            base.InexactFloat64(),
		SubscriptionDiscount: discount.InexactFloat64(),
		ProductsTotal:        productsTotal.InexactFloat64(),
		Subtotal:             subtotal.InexactFloat64(),
		PlatformFee:          platformFee.InexactFloat64(),
		FinalPrice:           finalPrice.InexactFloat64(),
		PartnerPayout:        partnerPayout.InexactFloat64(),
	}, nil
}

// ProductLines переводит товары в строки бронирования
func ProductLines(products []Product) []domain.ProductLine {
	lines := make([]domain.ProductLine, 0, len(products))
	for _, p := range products {
		lines = append(lines, domain.ProductLine{
			ProductID: p.ProductID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  p.Quantity,
		})
	}
	return lines
}

// Round округляет до 2 знаков половиной вверх (от нуля)
func Round(v float64) float64 {
	return money(v).InexactFloat64()
}

// money переводит цену в копейки с округлением
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(centPlaces)
}

func percentOf(amount decimal.Decimal, percent float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(percent)).Div(hundred).Round(centPlaces)
}

func basePrice(table []PriceEntry, bodyType string) float64 {
	for _, e := range table {
		if e.BodyType == bodyType {
			return e.Price
		}
	}
	return table[0].Price
}

func validate(in Input) error {
	if len(in.PriceTable) == 0 {
		return fmt.Errorf("%w: service has no prices", domain.ErrInvalidInput)
	}
	for _, e := range in.PriceTable {
		if e.Price < 0 {
			return fmt.Errorf("%w: negative price for body type %q", domain.ErrInvalidInput, e.BodyType)
		}
	}
	if len(in.Products) > domain.MaxProductsPerBooking {
		return fmt.Errorf("%w: at most %d products per booking", domain.ErrInvalidInput, domain.MaxProductsPerBooking)
	}
	for _, p := range in.Products {
		if p.Price < 0 {
			return fmt.Errorf("%w: negative price for product %d", domain.ErrInvalidInput, p.ProductID)
		}
		if p.Quantity <= 0 {
			return fmt.Errorf("%w: quantity of product %d must be positive", domain.ErrInvalidInput, p.ProductID)
		}
	}
	s := in.Settings
	for _, pct := range []float64{s.CustomerCommissionPercent, s.PartnerCommissionPercent, s.PremiumDiscountPercent} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%w: percent out of range: %v", domain.ErrInvalidInput, pct)
		}
	}
	return nil
}
