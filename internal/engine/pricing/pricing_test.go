package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

func TestCalculate_PremiumWithProducts(t *testing.T) {
	in := Input{
		PriceTable: []PriceEntry{
			{BodyType: "sedan", Price: 20},
			{BodyType: "suv", Price: 30},
		},
		BodyType:         "sedan",
		SubscriptionTier: domain.TierPremium,
		Products:         []Product{{ProductID: 1, Price: 5, Quantity: 2}},
		Settings:         DefaultSettings(),
	}

	got, err := Calculate(in)

	require.NoError(t, err)
	assert.Equal(t, domain.Pricing{
		BasePrice:            20,
		SubscriptionDiscount: 2,
		ProductsTotal:        10,
		Subtotal:             28,
		PlatformFee:          1.4,
		FinalPrice:           29.4,
		PartnerPayout:        25.2,
	}, got)
}

func TestCalculate_BodyTypeFallback(t *testing.T) {
	in := Input{
		PriceTable: []PriceEntry{{BodyType: "sedan", Price: 15}, {BodyType: "suv", Price: 25}},
		BodyType:   "truck",
		Settings:   DefaultSettings(),
	}

	got, err := Calculate(in)

	require.NoError(t, err)
	assert.Equal(t, 15.0, got.BasePrice)
	assert.Zero(t, got.SubscriptionDiscount)
}

func TestCalculate_RoundTrip(t *testing.T) {
	cases := []Input{
		{PriceTable: []PriceEntry{{"sedan", 19.99}}, BodyType: "sedan", SubscriptionTier: domain.TierPremium,
			Products: []Product{{1, "wax", 3.33, 3}, {2, "foam", 0.01, 7}}},
		{PriceTable: []PriceEntry{{"suv", 33.335}}, BodyType: "suv"},
		{PriceTable: []PriceEntry{{"van", 0}}, Products: []Product{{1, "", 1.005, 1}}},
		{PriceTable: []PriceEntry{{"sedan", 123.45}}, SubscriptionTier: domain.TierBasic,
			Products: []Product{{1, "", 9.99, 10}}},
	}

	for _, in := range cases {
		in.Settings = DefaultSettings()
		p, err := Calculate(in)
		require.NoError(t, err)

		assert.InDelta(t, p.Subtotal+p.PlatformFee, p.FinalPrice, 0.0001)
		assert.InDelta(t, p.Subtotal*in.Settings.PartnerCommissionPercent/100, p.Subtotal-p.PartnerPayout, 0.01)
		assert.LessOrEqual(t, p.PartnerPayout, p.Subtotal)
		assert.GreaterOrEqual(t, p.PartnerPayout, 0.0)
		for _, v := range []float64{p.BasePrice, p.SubscriptionDiscount, p.ProductsTotal, p.Subtotal, p.PlatformFee, p.FinalPrice, p.PartnerPayout} {
			assert.InDelta(t, v, Round(v), 1e-9, "amount %v is not rounded", v)
		}
	}
}

func TestCalculate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"empty price table", Input{}},
		{"negative price", Input{PriceTable: []PriceEntry{{"sedan", -1}}}},
		{"zero quantity", Input{PriceTable: []PriceEntry{{"sedan", 10}}, Products: []Product{{1, "", 1, 0}}}},
		{"negative product price", Input{PriceTable: []PriceEntry{{"sedan", 10}}, Products: []Product{{1, "", -1, 1}}}},
		{"commission over 100", Input{PriceTable: []PriceEntry{{"sedan", 10}}, Settings: Settings{CustomerCommissionPercent: 101}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.01, Round(1.005))
	assert.Equal(t, 2.68, Round(2.675))
	assert.Equal(t, 1.4, Round(1.4))
	assert.Equal(t, -1.01, Round(-1.005))
	assert.Equal(t, 0.0, Round(0.004))
}

func TestPercentOf_HalfUpCents(t *testing.T) {
	for _, percent := range []int64{5, 7, 10, 15} {
		for cents := int64(1); cents <= 2000000; cents += 7 {
			got := percentOf(decimal.New(cents, -2), float64(percent))
			want := (cents*percent + 50) / 100
			if !assert.Equal(t, want, got.Shift(2).IntPart(), "%d%% of %d cents", percent, cents) {
				return
			}
		}
	}
}
