package orders

import (
	"context"
	"time"

	"github.com/athukorala/storefront-api/internal/cart"
	"github.com/athukorala/storefront-api/pkg/backend"
	pkgcheckout "github.com/athukorala/storefront-api/pkg/checkout"
	"github.com/athukorala/storefront-api/pkg/enums"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/metrics"
	"github.com/google/uuid"
)

// PlaceInput is the already-validated submission handed over by the
// checkout service.
type PlaceInput struct {
	SessionID     string
	CustomerID    string
	Username      string
	CustomerEmail string
	Cart          *cart.Cart
	Billing       pkgcheckout.BillingInfo
	Shipping      pkgcheckout.ShippingInfo
	Method        enums.PaymentMethod
	MaskedDetails string
	TransactionID string
}

type ordersBackend interface {
	CreateOrder(ctx context.Context, req backend.CreateOrderRequest) (*backend.OrderRecord, error)
	ListByUsername(ctx context.Context, username string) ([]backend.OrderRecord, error)
	ListByCustomer(ctx context.Context, customerID string) ([]backend.OrderRecord, error)
	GetByID(ctx context.Context, orderID string) (*backend.OrderRecord, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*backend.OrderRecord, error)
}

type transactionLogger interface {
	LogTransaction(ctx context.Context, entry backend.TransactionEntry) error
}

type notifier interface {
	Send(ctx context.Context, notification backend.Notification) error
}

type cartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// Service runs the order submission pipeline and the order lookups.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*Summary, error)
	Last(ctx context.Context, sessionID string) (*Summary, error)
	ListForCustomer(ctx context.Context, customerID, username string) ([]backend.OrderRecord, error)
	Detail(ctx context.Context, orderID string) (*backend.OrderRecord, error)
	UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*backend.OrderRecord, error)
	Totals(c *cart.Cart) Totals
}

type service struct {
	backend ordersBackend
	txLog   transactionLogger
	notify  notifier
	store   Store
	carts   cartClearer
	pricing Pricing
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
}

// NewService builds the orders service.
func NewService(ordersBE ordersBackend, txLog transactionLogger, notify notifier, store Store, carts cartClearer, pricing Pricing, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if ordersBE == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders client required")
	}
	if txLog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction logger required")
	}
	if notify == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order summary store required")
	}
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		backend: ordersBE,
		txLog:   txLog,
		notify:  notify,
		store:   store,
		carts:   carts,
		pricing: pricing,
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}, nil
}

// Totals prices the cart with the configured shipping and tax rules.
func (s *service) Totals(c *cart.Cart) Totals {
	return s.pricing.Compute(c.Total())
}

// Place runs the submission pipeline: log the payment transaction
// (best effort), create the order (fatal on failure, cart untouched),
// persist the confirmation summary, then clear the cart. The summary
// is written before the cart is dropped so the confirmation page never
// races an empty session.
func (s *service) Place(ctx context.Context, input PlaceInput) (*Summary, error) {
	if input.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.Cart == nil || input.Cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	placedAt := s.now().UTC()
	paymentIntentID := input.TransactionID
	if paymentIntentID == "" {
		paymentIntentID = uuid.NewString()
	}

	summary := &Summary{
		ClientOrderID: NewClientOrderID(placedAt),
		Items:         orderLines(input.Cart),
		Totals:        s.Totals(input.Cart),
		Billing:       input.Billing,
		Shipping:      input.Shipping,
		Payment: backend.PaymentMetadata{
			Method:        input.Method,
			MaskedDetails: input.MaskedDetails,
			TransactionID: paymentIntentID,
		},
		PlacedAt: placedAt,
	}

	txStatus := enums.TransactionStatusCompleted
	if !input.Method.RequiresAuthorization() {
		txStatus = enums.TransactionStatusPending
	}
	if err := s.txLog.LogTransaction(ctx, backend.TransactionEntry{
		PaymentIntentID: paymentIntentID,
		OrderID:         summary.ClientOrderID,
		PaymentMethod:   input.Method,
		Status:          txStatus,
		Amount:          summary.Totals.Total,
		Currency:        summary.Totals.Currency,
		Metadata:        map[string]any{"sessionId": input.SessionID},
	}); err != nil {
		s.metrics.IncBackendError("payments")
		s.logg.Error(s.logg.WithTransactionID(ctx, paymentIntentID), "recording order transaction", err)
	}

	record, err := s.backend.CreateOrder(ctx, backend.CreateOrderRequest{
		ClientOrderID: summary.ClientOrderID,
		CustomerID:    input.CustomerID,
		Username:      input.Username,
		Items:         summary.Items,
		Subtotal:      summary.Totals.Subtotal,
		ShippingCost:  summary.Totals.Shipping,
		Tax:           summary.Totals.Tax,
		Total:         summary.Totals.Total,
		Currency:      summary.Totals.Currency,
		Billing:       input.Billing,
		Shipping:      input.Shipping,
		Payment:       summary.Payment,
	})
	if err != nil {
		s.metrics.IncBackendError("orders")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order").
			WithDetails(map[string]string{"paymentIntentId": paymentIntentID})
	}
	summary.OrderID = record.ID

	if err := s.store.SaveLast(ctx, input.SessionID, summary); err != nil {
		s.logg.Error(ctx, "persisting order summary", err)
	}
	if err := s.carts.Clear(ctx, input.SessionID); err != nil {
		s.logg.Error(ctx, "clearing cart after order", err)
	}
	return summary, nil
}

// Last returns the session's confirmation summary, if any.
func (s *service) Last(ctx context.Context, sessionID string) (*Summary, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.store.LoadLast(ctx, sessionID)
}

// ListForCustomer prefers the customer id lookup and falls back to the
// username variant for accounts created before ids were issued.
func (s *service) ListForCustomer(ctx context.Context, customerID, username string) ([]backend.OrderRecord, error) {
	if customerID != "" {
		records, err := s.backend.ListByCustomer(ctx, customerID)
		if err != nil {
			s.metrics.IncBackendError("orders")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
		}
		return records, nil
	}
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id or username is required")
	}
	records, err := s.backend.ListByUsername(ctx, username)
	if err != nil {
		s.metrics.IncBackendError("orders")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return records, nil
}

// Detail fetches one order.
func (s *service) Detail(ctx context.Context, orderID string) (*backend.OrderRecord, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	record, err := s.backend.GetByID(ctx, orderID)
	if err != nil {
		s.metrics.IncBackendError("orders")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching order")
	}
	return record, nil
}

// UpdateStatus transitions the order and fires the matching customer
// email. The notification is best effort.
func (s *service) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*backend.OrderRecord, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	record, err := s.backend.UpdateStatus(ctx, orderID, status)
	if err != nil {
		s.metrics.IncBackendError("orders")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}

	if record.CustomerEmail != "" {
		if err := s.notify.Send(ctx, backend.Notification{
			OrderID:       record.ID,
			CustomerEmail: record.CustomerEmail,
			Status:        status,
		}); err != nil {
			s.metrics.IncBackendError("notifications")
			s.logg.Error(ctx, "sending order status notification", err)
		}
	}
	return record, nil
}
