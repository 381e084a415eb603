package discounts

import (
	"github.com/athukorala/storefront-api/pkg/backend"
	"github.com/shopspring/decimal"
)

// Info is the derived discount view for one product. It is computed at
// read time and never stored.
type Info struct {
	HasDiscount     bool            `json:"hasDiscount"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	DiscountPercent *float64        `json:"discountPercent"`
	PromotionName   *string         `json:"promotionName"`
}

// Index keys the side-loaded promotions by product name. Matching by
// name rather than id mirrors the catalog service's join key; two
// products sharing a name would collide here (see NewIndex).
type Index map[string]backend.Discount

// NewIndex builds the lookup from the catalog's discount list. On a
// duplicate name the later entry wins and the collision is reported so
// callers can log it.
func NewIndex(entries []backend.Discount) (Index, []string) {
	index := make(Index, len(entries))
	var collisions []string
	for _, entry := range entries {
		if _, exists := index[entry.ProductName]; exists {
			collisions = append(collisions, entry.ProductName)
		}
		index[entry.ProductName] = entry
	}
	return index, collisions
}

// Resolve maps a product to its possibly-discounted effective price.
// A discount applies only when the indexed price undercuts the list
// price and a percent is present; otherwise the list price stands.
func Resolve(product backend.Product, index Index) Info {
	noDiscount := Info{HasDiscount: false, DiscountedPrice: product.Price}

	entry, ok := index[product.Name]
	if !ok {
		return noDiscount
	}
	if entry.DiscountPercent == nil {
		return noDiscount
	}
	if !entry.DiscountedPrice.LessThan(product.Price) {
		return noDiscount
	}
	return Info{
		HasDiscount:     true,
		DiscountedPrice: entry.DiscountedPrice,
		DiscountPercent: entry.DiscountPercent,
		PromotionName:   entry.PromotionName,
	}
}
