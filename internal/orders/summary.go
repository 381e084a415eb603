package orders

import (
	"strconv"
	"strings"
	"time"

	"github.com/athukorala/storefront-api/internal/cart"
	"github.com/athukorala/storefront-api/pkg/backend"
	pkgcheckout "github.com/athukorala/storefront-api/pkg/checkout"
	"github.com/athukorala/storefront-api/pkg/config"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/types"
	"github.com/shopspring/decimal"
)

// Pricing carries the storefront's checkout arithmetic: flat-rate
// shipping below the free threshold, percentage tax on the subtotal.
type Pricing struct {
	Currency              string
	TaxRate               decimal.Decimal
	ShippingFlatRate      decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// NewPricing parses the configured checkout amounts.
func NewPricing(cfg config.CheckoutConfig) (Pricing, error) {
	flatRate, err := types.ParseAmount(cfg.ShippingFlatRate)
	if err != nil {
		return Pricing{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "shipping flat rate")
	}
	threshold, err := types.ParseAmount(cfg.FreeShippingThreshold)
	if err != nil {
		return Pricing{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "free shipping threshold")
	}
	return Pricing{
		Currency:              cfg.Currency,
		TaxRate:               decimal.NewFromFloat(cfg.TaxRate),
		ShippingFlatRate:      flatRate,
		FreeShippingThreshold: threshold,
	}, nil
}

// Totals is the priced breakdown of a cart at checkout.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// Compute prices a subtotal. Orders at or above the free-shipping
// threshold ship free; tax applies to the subtotal only.
func (p Pricing) Compute(subtotal decimal.Decimal) Totals {
	shipping := p.ShippingFlatRate
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) || subtotal.IsZero() {
		shipping = decimal.Zero
	}
	tax := types.RoundMoney(subtotal.Mul(p.TaxRate))
	return Totals{
		Subtotal: types.RoundMoney(subtotal),
		Shipping: shipping,
		Tax:      tax,
		Total:    types.RoundMoney(subtotal.Add(shipping).Add(tax)),
		Currency: p.Currency,
	}
}

// Summary is the confirmation-page record of a placed order. It is
// persisted per session after the backend accepts the order.
type Summary struct {
	OrderID       string                   `json:"orderId,omitempty"`
	ClientOrderID string                   `json:"clientOrderId"`
	Items         []backend.OrderLine      `json:"items"`
	Totals        Totals                   `json:"totals"`
	Billing       pkgcheckout.BillingInfo  `json:"billing"`
	Shipping      pkgcheckout.ShippingInfo `json:"shipping"`
	Payment       backend.PaymentMetadata  `json:"payment"`
	PlacedAt      time.Time                `json:"placedAt"`
}

// NewClientOrderID mints the shopper-visible order reference from the
// submission timestamp.
func NewClientOrderID(at time.Time) string {
	return "AT-" + strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
}

// orderLines snapshots the cart into the denormalized order shape.
func orderLines(c *cart.Cart) []backend.OrderLine {
	lines := make([]backend.OrderLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		quantity := decimal.NewFromInt(int64(line.Quantity))
		lines = append(lines, backend.OrderLine{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			SKU:       line.Product.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.UnitPrice,
			Total:     line.Product.UnitPrice.Mul(quantity),
		})
	}
	return lines
}
