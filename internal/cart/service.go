package cart

import (
	"context"

	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/metrics"
)

// Service is the single source of truth for a session's cart contents.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Add(ctx context.Context, sessionID string, product ProductSnapshot, quantity int) (*Cart, AddResult, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int, product *ProductSnapshot) (*Cart, error)
	Remove(ctx context.Context, sessionID string, productID int64) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
	CanAdd(ctx context.Context, sessionID string, product ProductSnapshot, quantity int) (CanAddResult, error)
	ValidateStock(ctx context.Context, sessionID string, fresh []ProductSnapshot) ([]StockDrift, error)
}

type service struct {
	store   Store
	metrics *metrics.StorefrontMetrics
}

// NewService builds a cart service backed by the provided store.
func NewService(store Store, m *metrics.StorefrontMetrics) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart store required")
	}
	return &service{store: store, metrics: m}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.store.Load(ctx, sessionID)
}

func (s *service) Add(ctx context.Context, sessionID string, product ProductSnapshot, quantity int) (*Cart, AddResult, error) {
	if sessionID == "" {
		return nil, AddResult{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if product.ID == 0 {
		return nil, AddResult{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, AddResult{}, err
	}

	result := cart.Add(product, quantity)
	if result.Success {
		if err := s.store.Save(ctx, sessionID, cart); err != nil {
			return nil, AddResult{}, err
		}
	}
	s.metrics.IncCartMutation("add", result.Kind.String())
	return cart, result, nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int, product *ProductSnapshot) (*Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !cart.InCart(productID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
	}

	cart.UpdateQuantity(productID, quantity, product)
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("update", "success")
	return cart, nil
}

func (s *service) Remove(ctx context.Context, sessionID string, productID int64) (*Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Remove(productID)
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation("remove", "success")
	return cart, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.metrics.IncCartMutation("clear", "success")
	return nil
}

func (s *service) CanAdd(ctx context.Context, sessionID string, product ProductSnapshot, quantity int) (CanAddResult, error) {
	if sessionID == "" {
		return CanAddResult{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return CanAddResult{}, err
	}
	return cart.CanAdd(product, quantity), nil
}

func (s *service) ValidateStock(ctx context.Context, sessionID string, fresh []ProductSnapshot) ([]StockDrift, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cart.ValidateAgainstStock(fresh), nil
}
