package catalog

import (
	"context"
	"sync"

	"github.com/athukorala/storefront-api/internal/cart"
	"github.com/athukorala/storefront-api/internal/discounts"
	"github.com/athukorala/storefront-api/pkg/backend"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/metrics"
	"github.com/shopspring/decimal"
)

// ProductView is a catalog product merged with its resolved discount.
// EffectivePrice is the price the cart and checkout actually charge.
type ProductView struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Price           decimal.Decimal `json:"price"`
	EffectivePrice  decimal.Decimal `json:"effectivePrice"`
	Stock           int             `json:"stock"`
	Images          []string        `json:"images,omitempty"`
	Category        string          `json:"category,omitempty"`
	Brand           string          `json:"brand,omitempty"`
	HasDiscount     bool            `json:"hasDiscount"`
	DiscountPercent *float64        `json:"discountPercent,omitempty"`
	PromotionName   *string         `json:"promotionName,omitempty"`
}

// Listing is the merged catalog page. DiscountsDegraded flips when the
// promotions fetch failed and products are served at list price.
type Listing struct {
	Products          []ProductView `json:"products"`
	DiscountsDegraded bool          `json:"discountsDegraded"`
}

type productLister interface {
	ListProducts(ctx context.Context) ([]backend.Product, error)
	ListDiscounts(ctx context.Context) ([]backend.Discount, error)
}

// Service exposes the merged product view to the HTTP layer and to the
// cart flows that need fresh stock snapshots.
type Service interface {
	List(ctx context.Context) (Listing, error)
	Get(ctx context.Context, productID int64) (ProductView, error)
	Snapshot(ctx context.Context, productID int64) (cart.ProductSnapshot, error)
	Snapshots(ctx context.Context, productIDs []int64) ([]cart.ProductSnapshot, error)
}

type service struct {
	catalog productLister
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds the catalog read service.
func NewService(catalog productLister, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{catalog: catalog, logg: logg, metrics: m}, nil
}

// List fetches products and promotions concurrently and merges them.
// The two calls are independent on purpose: a dead promotions endpoint
// must not take the storefront down, so a failed discount fetch only
// degrades prices to list price. A failed product fetch is fatal.
func (s *service) List(ctx context.Context) (Listing, error) {
	var (
		wg          sync.WaitGroup
		products    []backend.Product
		productsErr error
		promos      []backend.Discount
		promosErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		products, productsErr = s.catalog.ListProducts(ctx)
	}()
	go func() {
		defer wg.Done()
		promos, promosErr = s.catalog.ListDiscounts(ctx)
	}()
	wg.Wait()

	if productsErr != nil {
		s.metrics.IncBackendError("catalog")
		return Listing{}, pkgerrors.Wrap(pkgerrors.CodeDependency, productsErr, "fetching products")
	}

	listing := Listing{Products: make([]ProductView, 0, len(products))}
	var index discounts.Index
	if promosErr != nil {
		s.metrics.IncBackendError("catalog")
		s.logg.Error(ctx, "fetching discounts, serving list prices", promosErr)
		listing.DiscountsDegraded = true
	} else {
		var collisions []string
		index, collisions = discounts.NewIndex(promos)
		for _, name := range collisions {
			s.logg.Warn(s.logg.WithField(ctx, "product_name", name), "duplicate discount entry, keeping the last one")
		}
	}

	for _, product := range products {
		listing.Products = append(listing.Products, mergeProduct(product, index))
	}
	return listing, nil
}

func (s *service) Get(ctx context.Context, productID int64) (ProductView, error) {
	listing, err := s.List(ctx)
	if err != nil {
		return ProductView{}, err
	}
	for _, view := range listing.Products {
		if view.ID == productID {
			return view, nil
		}
	}
	return ProductView{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) Snapshot(ctx context.Context, productID int64) (cart.ProductSnapshot, error) {
	view, err := s.Get(ctx, productID)
	if err != nil {
		return cart.ProductSnapshot{}, err
	}
	return toSnapshot(view), nil
}

// Snapshots resolves the given ids against a single catalog fetch. Ids
// missing from the catalog are skipped, not errored; stock validation
// treats a vanished product as zero stock.
func (s *service) Snapshots(ctx context.Context, productIDs []int64) ([]cart.ProductSnapshot, error) {
	listing, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]ProductView, len(listing.Products))
	for _, view := range listing.Products {
		byID[view.ID] = view
	}

	snapshots := make([]cart.ProductSnapshot, 0, len(productIDs))
	for _, id := range productIDs {
		view, ok := byID[id]
		if !ok {
			continue
		}
		snapshots = append(snapshots, toSnapshot(view))
	}
	return snapshots, nil
}

func mergeProduct(product backend.Product, index discounts.Index) ProductView {
	info := discounts.Resolve(product, index)
	view := ProductView{
		ID:             product.ID,
		Name:           product.Name,
		SKU:            product.SKU,
		Price:          product.Price,
		EffectivePrice: info.DiscountedPrice,
		Stock:          product.Stock,
		Images:         product.Images,
		Category:       product.Category,
		Brand:          product.Brand,
		HasDiscount:    info.HasDiscount,
	}
	if info.HasDiscount {
		view.DiscountPercent = info.DiscountPercent
		view.PromotionName = info.PromotionName
	}
	return view
}

func toSnapshot(view ProductView) cart.ProductSnapshot {
	snapshot := cart.ProductSnapshot{
		ID:        view.ID,
		Name:      view.Name,
		SKU:       view.SKU,
		UnitPrice: view.EffectivePrice,
		Stock:     view.Stock,
	}
	if len(view.Images) > 0 {
		snapshot.Image = view.Images[0]
	}
	return snapshot
}
