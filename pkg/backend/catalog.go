package backend

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is the catalog service's customer-facing product shape.
type Product struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	SKU             string           `json:"sku"`
	Price           decimal.Decimal  `json:"price"`
	Stock           int              `json:"stock"`
	Images          []string         `json:"images,omitempty"`
	Category        string           `json:"category,omitempty"`
	Brand           string           `json:"brand,omitempty"`
	DiscountPercent *float64         `json:"discountPercent,omitempty"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	PromotionName   *string          `json:"promotionName,omitempty"`
}

// Discount is the side-loaded promotion entry, joined by product name.
type Discount struct {
	ProductName     string          `json:"productName"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	DiscountPercent *float64        `json:"discountPercent"`
	PromotionName   *string         `json:"promotionName"`
}

// CatalogClient reads products and promotions from the catalog service.
type CatalogClient struct {
	transport *transport
}

// NewCatalogClient builds a catalog client for the given origin.
func NewCatalogClient(baseURL string, opts ...Option) (*CatalogClient, error) {
	t, err := newTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &CatalogClient{transport: t}, nil
}

// ListProducts fetches the customer product listing.
func (c *CatalogClient) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.transport.doJSON(ctx, "GET", "/api/customer/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListDiscounts fetches the active promotions.
func (c *CatalogClient) ListDiscounts(ctx context.Context) ([]Discount, error) {
	var discounts []Discount
	if err := c.transport.doJSON(ctx, "GET", "/api/customer/discounts", nil, &discounts); err != nil {
		return nil, err
	}
	return discounts, nil
}
