package checkout

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/athukorala/storefront-api/internal/cart"
	"github.com/athukorala/storefront-api/internal/orders"
	"github.com/athukorala/storefront-api/internal/payments"
	pkgcheckout "github.com/athukorala/storefront-api/pkg/checkout"
	"github.com/athukorala/storefront-api/pkg/enums"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeCarts struct {
	cart *cart.Cart
}

func (f *fakeCarts) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	return f.cart, nil
}

func (f *fakeCarts) Add(ctx context.Context, sessionID string, product cart.ProductSnapshot, quantity int) (*cart.Cart, cart.AddResult, error) {
	return nil, cart.AddResult{}, nil
}

func (f *fakeCarts) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int, product *cart.ProductSnapshot) (*cart.Cart, error) {
	return nil, nil
}

func (f *fakeCarts) Remove(ctx context.Context, sessionID string, productID int64) (*cart.Cart, error) {
	return nil, nil
}

func (f *fakeCarts) Clear(ctx context.Context, sessionID string) error {
	f.cart = &cart.Cart{}
	return nil
}

func (f *fakeCarts) CanAdd(ctx context.Context, sessionID string, product cart.ProductSnapshot, quantity int) (cart.CanAddResult, error) {
	return cart.CanAddResult{}, nil
}

func (f *fakeCarts) ValidateStock(ctx context.Context, sessionID string, fresh []cart.ProductSnapshot) ([]cart.StockDrift, error) {
	return nil, nil
}

type fakeGateway struct {
	status payments.MethodStatus
	entry  *payments.DraftEntry
}

func (f *fakeGateway) Status(ctx context.Context, sessionID string, method enums.PaymentMethod) (payments.MethodStatus, error) {
	if !method.RequiresAuthorization() {
		return payments.MethodStatus{Status: enums.DraftStatusAuthorized}, nil
	}
	return f.status, nil
}

func (f *fakeGateway) Prefill(ctx context.Context, sessionID string, method enums.PaymentMethod) (*payments.DraftEntry, error) {
	return f.entry, nil
}

type fakeOrders struct {
	placed   []orders.PlaceInput
	placeErr error
	summary  *orders.Summary
}

func (f *fakeOrders) Place(ctx context.Context, input orders.PlaceInput) (*orders.Summary, error) {
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	f.placed = append(f.placed, input)
	return f.summary, nil
}

func (f *fakeOrders) Totals(c *cart.Cart) orders.Totals {
	return orders.Totals{Subtotal: c.Total(), Total: c.Total(), Currency: "LKR"}
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func stockedCart() *cart.Cart {
	c := &cart.Cart{}
	c.Add(cart.ProductSnapshot{ID: 1, Name: "Hammer", UnitPrice: decimal.RequireFromString("1250"), Stock: 10}, 2)
	return c
}

func validBilling() pkgcheckout.BillingInfo {
	return pkgcheckout.BillingInfo{
		FirstName:  "Nimal",
		LastName:   "Athukorala",
		Email:      "nimal@example.lk",
		Phone:      "+94 71 234 5678",
		Address:    "12 Galle Road",
		City:       "Colombo",
		PostalCode: "00300",
		Country:    "Sri Lanka",
	}
}

func newTestService(t *testing.T, carts *fakeCarts, gateway *fakeGateway, orderSvc *fakeOrders) Service {
	t.Helper()
	svc, err := NewService(carts, gateway, orderSvc, quietLogger(), nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func authorizedGateway() *fakeGateway {
	return &fakeGateway{
		status: payments.MethodStatus{Status: enums.DraftStatusAuthorized, TransactionID: "T1"},
		entry: &payments.DraftEntry{
			TransactionID: "T1",
			Details:       map[string]string{"number": "**** **** **** 1111"},
		},
	}
}

func cardSubmission() SubmitInput {
	return SubmitInput{
		SessionID:     "s1",
		Username:      "nimal",
		Billing:       validBilling(),
		ShipToBilling: true,
		Method:        enums.PaymentMethodCard,
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	svc := newTestService(t, &fakeCarts{cart: &cart.Cart{}}, authorizedGateway(), &fakeOrders{})

	result, err := svc.Submit(context.Background(), cardSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != enums.SubmissionStateCartEmpty {
		t.Fatalf("expected cart-empty, got %s", result.State)
	}
}

func TestSubmitUnverifiedCardIsBlocked(t *testing.T) {
	gateway := &fakeGateway{status: payments.MethodStatus{Status: enums.DraftStatusUnverified}}
	orderSvc := &fakeOrders{}
	svc := newTestService(t, &fakeCarts{cart: stockedCart()}, gateway, orderSvc)

	result, err := svc.Submit(context.Background(), cardSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != enums.SubmissionStateError {
		t.Fatalf("expected error state, got %s", result.State)
	}
	want := "Authorize your card through the secure gateway before placing the order."
	if result.PaymentError != want {
		t.Fatalf("unexpected payment error %q", result.PaymentError)
	}
	if len(orderSvc.placed) != 0 {
		t.Fatal("no order may be placed while unverified")
	}
}

func TestSubmitFailedCardShowsStoredMessage(t *testing.T) {
	gateway := &fakeGateway{status: payments.MethodStatus{Status: enums.DraftStatusFailed, ErrorMessage: "Card was declined."}}
	svc := newTestService(t, &fakeCarts{cart: stockedCart()}, gateway, &fakeOrders{})

	result, _ := svc.Submit(context.Background(), cardSubmission())
	if result.State != enums.SubmissionStateError || result.PaymentError != "Card was declined." {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSubmitInvalidBilling(t *testing.T) {
	svc := newTestService(t, &fakeCarts{cart: stockedCart()}, authorizedGateway(), &fakeOrders{})

	input := cardSubmission()
	input.Billing.Email = "not-an-email"
	input.Billing.City = ""

	result, _ := svc.Submit(context.Background(), input)
	if result.State != enums.SubmissionStateError {
		t.Fatalf("expected error state, got %s", result.State)
	}
	if result.BillingErrors["email"] == "" || result.BillingErrors["city"] == "" {
		t.Fatalf("expected field errors, got %+v", result.BillingErrors)
	}
}

func TestSubmitValidatesShippingWhenNotDerived(t *testing.T) {
	svc := newTestService(t, &fakeCarts{cart: stockedCart()}, authorizedGateway(), &fakeOrders{})

	input := cardSubmission()
	input.ShipToBilling = false
	input.Shipping = pkgcheckout.ShippingInfo{}

	result, _ := svc.Submit(context.Background(), input)
	if result.State != enums.SubmissionStateError {
		t.Fatalf("expected error state, got %s", result.State)
	}
	if len(result.ShippingErrors) == 0 {
		t.Fatal("expected shipping field errors")
	}
}

func TestSubmitDerivesShippingFromBilling(t *testing.T) {
	orderSvc := &fakeOrders{summary: &orders.Summary{OrderID: "ORD-1"}}
	svc := newTestService(t, &fakeCarts{cart: stockedCart()}, authorizedGateway(), orderSvc)

	result, err := svc.Submit(context.Background(), cardSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != enums.SubmissionStateSuccess {
		t.Fatalf("expected success, got %+v", result)
	}

	placed := orderSvc.placed[0]
	if placed.Shipping.ContactName != "Nimal Athukorala" {
		t.Fatalf("shipping must derive from billing, got %+v", placed.Shipping)
	}
	if placed.Shipping.Instructions != "" {
		t.Fatal("derived shipping has no instructions")
	}
	if placed.MaskedDetails != "**** **** **** 1111" || placed.TransactionID != "T1" {
		t.Fatalf("payment metadata must come from the draft, got %+v", placed)
	}
}

func TestSubmitCashOnDeliveryBypassesGateway(t *testing.T) {
	orderSvc := &fakeOrders{summary: &orders.Summary{OrderID: "ORD-2"}}
	gateway := &fakeGateway{status: payments.MethodStatus{Status: enums.DraftStatusUnverified}}
	svc := newTestService(t, &fakeCarts{cart: stockedCart()}, gateway, orderSvc)

	input := cardSubmission()
	input.Method = enums.PaymentMethodCOD

	result, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != enums.SubmissionStateSuccess {
		t.Fatalf("cash on delivery must bypass the gateway, got %+v", result)
	}
	if orderSvc.placed[0].MaskedDetails != "cash on delivery" {
		t.Fatalf("unexpected metadata %+v", orderSvc.placed[0])
	}
}

func TestSubmitOrderFailureSurfacesPaymentReference(t *testing.T) {
	orderSvc := &fakeOrders{
		placeErr: pkgerrors.New(pkgerrors.CodeDependency, "creating order").
			WithDetails(map[string]string{"paymentIntentId": "T1"}),
	}
	carts := &fakeCarts{cart: stockedCart()}
	svc := newTestService(t, carts, authorizedGateway(), orderSvc)

	result, err := svc.Submit(context.Background(), cardSubmission())
	if err != nil {
		t.Fatalf("order failure is a terminal state, not an error: %v", err)
	}
	if result.State != enums.SubmissionStateError {
		t.Fatalf("expected error state, got %s", result.State)
	}
	if !strings.Contains(result.Message, "T1") {
		t.Fatalf("message must carry the payment reference, got %q", result.Message)
	}
	if carts.cart.IsEmpty() {
		t.Fatal("cart must survive a failed order")
	}
}

func TestQuotePricesTheCart(t *testing.T) {
	svc := newTestService(t, &fakeCarts{cart: stockedCart()}, authorizedGateway(), &fakeOrders{})

	quote, err := svc.Quote(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quote.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(quote.Items))
	}
	if !quote.Totals.Subtotal.Equal(decimal.RequireFromString("2500")) {
		t.Fatalf("unexpected subtotal %s", quote.Totals.Subtotal)
	}
}
