package orders

import (
	"strings"
	"testing"
	"time"

	"github.com/athukorala/storefront-api/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPricing(t *testing.T) Pricing {
	t.Helper()
	pricing, err := NewPricing(config.CheckoutConfig{
		Currency:              "LKR",
		TaxRate:               0.08,
		ShippingFlatRate:      "450",
		FreeShippingThreshold: "25000",
	})
	require.NoError(t, err)
	return pricing
}

func TestComputeChargesFlatShipping(t *testing.T) {
	totals := testPricing(t).Compute(decimal.RequireFromString("10000"))

	assert.True(t, totals.Shipping.Equal(decimal.RequireFromString("450")), "shipping %s", totals.Shipping)
	assert.True(t, totals.Tax.Equal(decimal.RequireFromString("800")), "tax %s", totals.Tax)
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("11250")), "total %s", totals.Total)
	assert.Equal(t, "LKR", totals.Currency)
}

func TestComputeFreeShippingAtThreshold(t *testing.T) {
	totals := testPricing(t).Compute(decimal.RequireFromString("25000"))
	assert.True(t, totals.Shipping.IsZero(), "threshold order must ship free, got %s", totals.Shipping)
}

func TestComputeEmptyCartCostsNothing(t *testing.T) {
	totals := testPricing(t).Compute(decimal.Zero)
	assert.True(t, totals.Total.IsZero(), "empty subtotal must price to zero, got %s", totals.Total)
}

func TestNewClientOrderID(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewClientOrderID(at)

	assert.True(t, strings.HasPrefix(id, "AT-"), "expected AT- prefix, got %q", id)
	assert.Greater(t, len(id), len("AT-"))
	assert.NotEqual(t, id, NewClientOrderID(at.Add(time.Second)))
}

func TestNewPricingRejectsMalformedAmounts(t *testing.T) {
	_, err := NewPricing(config.CheckoutConfig{ShippingFlatRate: "not a number", FreeShippingThreshold: "0"})
	require.Error(t, err)
}
