package payments

import (
	"context"
	"testing"
	"time"

	"github.com/athukorala/storefront-api/pkg/enums"
	"github.com/athukorala/storefront-api/pkg/redis"
)

type fakeKV struct {
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
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

func (f *fakeKV) PaymentDraftKey(sessionID string) string {
	return "athukorala:payment-draft:" + sessionID
}

func (f *fakeKV) FeedbackKey(sessionID string) string {
	return "athukorala:checkout-feedback:" + sessionID
}

func TestDraftRoundTripMergesMethods(t *testing.T) {
	store, err := NewRedisStore(newFakeKV(), time.Hour, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	draft := &Draft{}
	draft.SetEntry(enums.PaymentMethodCard, &DraftEntry{Status: enums.DraftStatusAuthorized, TransactionID: "T1"})
	if err := store.SaveDraft(ctx, "s1", draft); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.LoadDraft(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.SetEntry(enums.PaymentMethodPayPal, &DraftEntry{Status: enums.DraftStatusFailed, TransactionID: "T2"})
	if err := store.SaveDraft(ctx, "s1", loaded); err != nil {
		t.Fatalf("save merged: %v", err)
	}

	merged, _ := store.LoadDraft(ctx, "s1")
	if merged.Card == nil || merged.Card.TransactionID != "T1" {
		t.Fatalf("card entry lost on merge: %+v", merged)
	}
	if merged.PayPal == nil || merged.PayPal.Status != enums.DraftStatusFailed {
		t.Fatalf("paypal entry missing: %+v", merged)
	}
}

func TestDraftMissingKeyIsEmpty(t *testing.T) {
	store, _ := NewRedisStore(newFakeKV(), time.Hour, nil)

	draft, err := store.LoadDraft(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !draft.IsEmpty() {
		t.Fatal("missing key must produce an empty draft")
	}
	if got := draft.StatusFor(enums.PaymentMethodCard); got != enums.DraftStatusUnverified {
		t.Fatalf("expected unverified, got %s", got)
	}
}

func TestDraftCorruptBlobResets(t *testing.T) {
	kv := newFakeKV()
	kv.values["athukorala:payment-draft:s1"] = "{not json"
	store, _ := NewRedisStore(kv, time.Hour, nil)

	draft, err := store.LoadDraft(context.Background(), "s1")
	if err != nil {
		t.Fatalf("corruption must not surface: %v", err)
	}
	if !draft.IsEmpty() {
		t.Fatal("corrupt blob must reset to empty draft")
	}
	if _, still := kv.values["athukorala:payment-draft:s1"]; still {
		t.Fatal("corrupt blob must be deleted")
	}
}

func TestSaveEmptyDraftDeletesKey(t *testing.T) {
	kv := newFakeKV()
	kv.values["athukorala:payment-draft:s1"] = `{"card":{"status":"authorized"}}`
	store, _ := NewRedisStore(kv, time.Hour, nil)

	if err := store.SaveDraft(context.Background(), "s1", &Draft{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, still := kv.values["athukorala:payment-draft:s1"]; still {
		t.Fatal("empty draft must delete the blob")
	}
}

func TestFeedbackIsConsumedExactlyOnce(t *testing.T) {
	store, _ := NewRedisStore(newFakeKV(), time.Hour, nil)
	ctx := context.Background()

	sent := Feedback{PaymentUpdated: enums.PaymentMethodCard, Message: "ok"}
	if err := store.SaveFeedback(ctx, "s1", sent); err != nil {
		t.Fatalf("save: %v", err)
	}

	first, err := store.ConsumeFeedback(ctx, "s1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if first == nil || first.PaymentUpdated != enums.PaymentMethodCard {
		t.Fatalf("unexpected feedback %+v", first)
	}

	second, err := store.ConsumeFeedback(ctx, "s1")
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if second != nil {
		t.Fatal("feedback must not replay")
	}
}
