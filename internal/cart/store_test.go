package cart

import (
	"context"
	"testing"
	"time"

	"github.com/athukorala/storefront-api/pkg/redis"
	"github.com/shopspring/decimal"
)

type fakeKV struct {
	values  map[string]string
	failGet error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.failGet != nil {
		return "", f.failGet
	}
	val, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return val, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeKV) CartKey(sessionID string) string {
	return "athukorala:cart:" + sessionID
}

func TestStoreRoundTrip(t *testing.T) {
	kv := newFakeKV()
	store, err := NewRedisStore(kv, time.Hour, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart := &Cart{}
	cart.Add(ProductSnapshot{ID: 1, Name: "Hammer", UnitPrice: decimal.RequireFromString("1250"), Stock: 4}, 2)
	cart.Add(ProductSnapshot{ID: 2, Name: "Drill", UnitPrice: decimal.RequireFromString("15000"), Stock: 9}, 1)

	if err := store.Save(context.Background(), "s1", cart); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(loaded.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(loaded.Lines))
	}
	if loaded.ItemQuantity(1) != 2 || loaded.ItemQuantity(2) != 1 {
		t.Fatalf("quantities did not round-trip: %+v", loaded.Lines)
	}
	if !loaded.Total().Equal(cart.Total()) {
		t.Fatalf("totals diverged: %s vs %s", loaded.Total(), cart.Total())
	}
}

func TestStoreLoadMissingKeyIsEmptyCart(t *testing.T) {
	store, _ := NewRedisStore(newFakeKV(), time.Hour, nil)
	cart, err := store.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("missing key must produce an empty cart")
	}
}

func TestStoreLoadCorruptBlobResetsSilently(t *testing.T) {
	kv := newFakeKV()
	kv.values["athukorala:cart:s1"] = "{not json"
	store, _ := NewRedisStore(kv, time.Hour, nil)

	cart, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("corruption must not surface: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("corrupt blob must reset to empty cart")
	}
	if _, still := kv.values["athukorala:cart:s1"]; still {
		t.Fatal("corrupt blob must be deleted")
	}
}

func TestStoreClear(t *testing.T) {
	kv := newFakeKV()
	store, _ := NewRedisStore(kv, time.Hour, nil)
	kv.values["athukorala:cart:s1"] = `{"lines":[]}`

	if err := store.Clear(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, still := kv.values["athukorala:cart:s1"]; still {
		t.Fatal("clear must delete the blob")
	}
}
