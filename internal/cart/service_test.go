package cart

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	carts   map[string]*Cart
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: map[string]*Cart{}}
}

func (f *fakeStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if cart, ok := f.carts[sessionID]; ok {
		copied := &Cart{Lines: append([]Line(nil), cart.Lines...)}
		return copied, nil
	}
	return &Cart{}, nil
}

func (f *fakeStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.carts[sessionID] = &Cart{Lines: append([]Line(nil), cart.Lines...)}
	return nil
}

func (f *fakeStore) Clear(ctx context.Context, sessionID string) error {
	delete(f.carts, sessionID)
	return nil
}

func newTestService(t *testing.T, store Store) Service {
	t.Helper()
	svc, err := NewService(store, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestServiceAddPersistsEveryMutation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	product := ProductSnapshot{ID: 1, Name: "Hammer", UnitPrice: decimal.RequireFromString("10"), Stock: 2}
	cart, result, err := svc.Add(context.Background(), "s1", product, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.ActualQuantity != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !cart.Total().Equal(decimal.RequireFromString("20")) {
		t.Fatalf("unexpected total %s", cart.Total())
	}

	persisted, _ := store.Load(context.Background(), "s1")
	if persisted.ItemQuantity(1) != 2 {
		t.Fatal("mutation was not persisted")
	}
}

func TestServiceRejectedAddDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("must not save")
	svc := newTestService(t, store)

	_, result, err := svc.Add(context.Background(), "s1", ProductSnapshot{ID: 1, Stock: 0}, 1)
	if err != nil {
		t.Fatalf("rejection must not error: %v", err)
	}
	if result.Success {
		t.Fatal("expected rejection")
	}
}

func TestServiceUpdateUnknownProduct(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	_, err := svc.UpdateQuantity(context.Background(), "s1", 99, 1, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestServiceRequiresSession(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	if _, err := svc.Get(context.Background(), ""); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for blank session")
	}
	if err := svc.Clear(context.Background(), ""); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for blank session")
	}
}

func TestServiceClear(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	product := ProductSnapshot{ID: 1, UnitPrice: decimal.RequireFromString("10"), Stock: 5}
	if _, _, err := svc.Add(context.Background(), "s1", product, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Clear(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, _ := svc.Get(context.Background(), "s1")
	if !cart.IsEmpty() {
		t.Fatal("cart should be empty after clear")
	}
}
