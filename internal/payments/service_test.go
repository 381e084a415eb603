package payments

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/athukorala/storefront-api/pkg/backend"
	"github.com/athukorala/storefront-api/pkg/checkout"
	"github.com/athukorala/storefront-api/pkg/enums"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeTxLog struct {
	entries []backend.TransactionEntry
	err     error
}

func (f *fakeTxLog) LogTransaction(ctx context.Context, entry backend.TransactionEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestService(t *testing.T, txLog *fakeTxLog) (Service, *RedisStore) {
	t.Helper()
	store, err := NewRedisStore(newFakeKV(), time.Hour, nil)
	if err != nil {
		t.Fatalf("building store: %v", err)
	}
	svc, err := NewService(store, txLog, quietLogger(), nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc, store
}

func validCard() *checkout.CardDetails {
	return &checkout.CardDetails{
		HolderName: "N Athukorala",
		Number:     "4111 1111 1111 1111",
		Expiry:     "12/27",
		CVV:        "123",
	}
}

func TestStartMintsTransactionIDOnce(t *testing.T) {
	svc, _ := newTestService(t, &fakeTxLog{})
	ctx := context.Background()
	amount := decimal.RequireFromString("12500")

	first, err := svc.Start(ctx, "s1", enums.PaymentMethodCard, amount, "LKR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TransactionID == "" {
		t.Fatal("expected a minted transaction id")
	}
	if first.Status != enums.DraftStatusUnverified {
		t.Fatalf("fresh handshake must be unverified, got %s", first.Status)
	}

	second, err := svc.Start(ctx, "s1", enums.PaymentMethodCard, amount, "LKR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TransactionID != first.TransactionID {
		t.Fatal("restart must reuse the transaction id")
	}

	other, _ := svc.Start(ctx, "s1", enums.PaymentMethodPayPal, amount, "LKR")
	if other.TransactionID == first.TransactionID {
		t.Fatal("each method mints its own transaction id")
	}
}

func TestStartRejectsCashOnDelivery(t *testing.T) {
	svc, _ := newTestService(t, &fakeTxLog{})

	_, err := svc.Start(context.Background(), "s1", enums.PaymentMethodCOD, decimal.Zero, "LKR")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAuthorizePersistsMaskedDetailsAndLogs(t *testing.T) {
	txLog := &fakeTxLog{}
	svc, _ := newTestService(t, txLog)
	ctx := context.Background()

	start, _ := svc.Start(ctx, "s1", enums.PaymentMethodCard, decimal.RequireFromString("12500"), "LKR")
	feedback, err := svc.Authorize(ctx, "s1", enums.PaymentMethodCard, AuthorizationInput{Card: validCard()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feedback.PaymentFailed || feedback.PaymentUpdated != enums.PaymentMethodCard {
		t.Fatalf("unexpected feedback %+v", feedback)
	}

	status, _ := svc.Status(ctx, "s1", enums.PaymentMethodCard)
	if status.Status != enums.DraftStatusAuthorized {
		t.Fatalf("expected authorized, got %s", status.Status)
	}
	if status.TransactionID != start.TransactionID {
		t.Fatal("authorization must keep the minted transaction id")
	}

	entry, _ := svc.Prefill(ctx, "s1", enums.PaymentMethodCard)
	if entry.Details["number"] != "**** **** **** 1111" {
		t.Fatalf("card number must be masked, got %q", entry.Details["number"])
	}

	if len(txLog.entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(txLog.entries))
	}
	logged := txLog.entries[0]
	if logged.Status != enums.TransactionStatusAuthorized || logged.PaymentIntentID != start.TransactionID {
		t.Fatalf("unexpected log entry %+v", logged)
	}
}

func TestAuthorizeSurvivesTransactionLogOutage(t *testing.T) {
	svc, _ := newTestService(t, &fakeTxLog{err: errors.New("payments down")})
	ctx := context.Background()

	if _, err := svc.Authorize(ctx, "s1", enums.PaymentMethodCard, AuthorizationInput{Card: validCard()}); err != nil {
		t.Fatalf("log outage must not fail authorization: %v", err)
	}
	status, _ := svc.Status(ctx, "s1", enums.PaymentMethodCard)
	if status.Status != enums.DraftStatusAuthorized {
		t.Fatalf("expected authorized, got %s", status.Status)
	}
}

func TestAuthorizeRejectsInvalidCard(t *testing.T) {
	svc, _ := newTestService(t, &fakeTxLog{})

	card := validCard()
	card.Number = "12"
	_, err := svc.Authorize(context.Background(), "s1", enums.PaymentMethodCard, AuthorizationInput{Card: card})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	status, _ := svc.Status(context.Background(), "s1", enums.PaymentMethodCard)
	if status.Status != enums.DraftStatusUnverified {
		t.Fatal("rejected input must not change the draft")
	}
}

func TestFailStoresErrorForCheckout(t *testing.T) {
	txLog := &fakeTxLog{}
	svc, _ := newTestService(t, txLog)
	ctx := context.Background()

	feedback, err := svc.Fail(ctx, "s1", enums.PaymentMethodCard, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !feedback.PaymentFailed || feedback.Message != declinedMessage {
		t.Fatalf("unexpected feedback %+v", feedback)
	}

	status, _ := svc.Status(ctx, "s1", enums.PaymentMethodCard)
	if status.Status != enums.DraftStatusFailed || status.ErrorMessage != declinedMessage {
		t.Fatalf("unexpected status %+v", status)
	}
	if txLog.entries[0].Status != enums.TransactionStatusDeclined {
		t.Fatalf("expected DECLINED log, got %s", txLog.entries[0].Status)
	}
}

func TestReauthorizeAfterFailureClearsError(t *testing.T) {
	svc, _ := newTestService(t, &fakeTxLog{})
	ctx := context.Background()

	if _, err := svc.Fail(ctx, "s1", enums.PaymentMethodCard, "declined"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Authorize(ctx, "s1", enums.PaymentMethodCard, AuthorizationInput{Card: validCard()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, _ := svc.Status(ctx, "s1", enums.PaymentMethodCard)
	if status.Status != enums.DraftStatusAuthorized || status.ErrorMessage != "" {
		t.Fatalf("reauthorization must clear the stored error, got %+v", status)
	}
}

func TestStatusForCashOnDeliveryAlwaysAuthorized(t *testing.T) {
	svc, _ := newTestService(t, &fakeTxLog{})

	status, err := svc.Status(context.Background(), "s1", enums.PaymentMethodCOD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != enums.DraftStatusAuthorized {
		t.Fatal("cash on delivery bypasses the handshake")
	}
}

func TestFeedbackDoesNotReplay(t *testing.T) {
	svc, _ := newTestService(t, &fakeTxLog{})
	ctx := context.Background()

	if _, err := svc.Authorize(ctx, "s1", enums.PaymentMethodCard, AuthorizationInput{Card: validCard()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.ConsumeFeedback(ctx, "s1")
	if err != nil || first == nil {
		t.Fatalf("expected feedback, got %v (%v)", first, err)
	}
	second, err := svc.ConsumeFeedback(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != nil {
		t.Fatal("feedback must be one-shot")
	}
}

func TestDisconnectDropsOnlyThatMethod(t *testing.T) {
	svc, _ := newTestService(t, &fakeTxLog{})
	ctx := context.Background()

	if _, err := svc.Authorize(ctx, "s1", enums.PaymentMethodCard, AuthorizationInput{Card: validCard()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Authorize(ctx, "s1", enums.PaymentMethodPayPal, AuthorizationInput{PayPalEmail: "nimal@example.lk"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Disconnect(ctx, "s1", enums.PaymentMethodCard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, _ := svc.Status(ctx, "s1", enums.PaymentMethodCard)
	if status.Status != enums.DraftStatusUnverified {
		t.Fatal("disconnect must reset the card handshake")
	}
	other, _ := svc.Status(ctx, "s1", enums.PaymentMethodPayPal)
	if other.Status != enums.DraftStatusAuthorized {
		t.Fatal("disconnect must leave the other method intact")
	}
	feedback, _ := svc.ConsumeFeedback(ctx, "s1")
	if feedback != nil {
		t.Fatal("disconnect must drop pending feedback")
	}
}
