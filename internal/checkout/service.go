package checkout

import (
	"context"
	"fmt"

	"github.com/athukorala/storefront-api/internal/cart"
	"github.com/athukorala/storefront-api/internal/orders"
	"github.com/athukorala/storefront-api/internal/payments"
	pkgcheckout "github.com/athukorala/storefront-api/pkg/checkout"
	"github.com/athukorala/storefront-api/pkg/enums"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/metrics"
)

// SubmitInput is one checkout submission attempt.
type SubmitInput struct {
	SessionID     string
	CustomerID    string
	Username      string
	CustomerEmail string
	Billing       pkgcheckout.BillingInfo
	Shipping      pkgcheckout.ShippingInfo
	ShipToBilling bool
	Method        enums.PaymentMethod
}

// Result is the terminal outcome of a submission. Recoverable problems
// land here as structured state, never as an error return.
type Result struct {
	State          enums.SubmissionState `json:"state"`
	BillingErrors  map[string]string     `json:"billingErrors,omitempty"`
	ShippingErrors map[string]string     `json:"shippingErrors,omitempty"`
	PaymentError   string                `json:"paymentError,omitempty"`
	Message        string                `json:"message,omitempty"`
	Summary        *orders.Summary       `json:"summary,omitempty"`
}

// Quote is the checkout page's priced view of the current cart.
type Quote struct {
	Items  []cart.Line   `json:"items"`
	Totals orders.Totals `json:"totals"`
}

type gatewayReader interface {
	Status(ctx context.Context, sessionID string, method enums.PaymentMethod) (payments.MethodStatus, error)
	Prefill(ctx context.Context, sessionID string, method enums.PaymentMethod) (*payments.DraftEntry, error)
}

type orderPlacer interface {
	Place(ctx context.Context, input orders.PlaceInput) (*orders.Summary, error)
	Totals(c *cart.Cart) orders.Totals
}

// Service drives the checkout submission state machine.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (Result, error)
	Quote(ctx context.Context, sessionID string) (Quote, error)
}

type service struct {
	carts   cart.Service
	gateway gatewayReader
	orders  orderPlacer
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewService builds the checkout service.
func NewService(carts cart.Service, gateway gatewayReader, orderSvc orderPlacer, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart service required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway service required")
	}
	if orderSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{carts: carts, gateway: gateway, orders: orderSvc, logg: logg, metrics: m}, nil
}

// Quote prices the session's cart for the checkout page.
func (s *service) Quote(ctx context.Context, sessionID string) (Quote, error) {
	current, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Items: current.Lines, Totals: s.orders.Totals(current)}, nil
}

// Submit runs the state machine: cart-empty short-circuits, any
// validation or gateway gate failure ends in error, and success is
// reached only after the backend accepts the order. Infrastructure
// failures while reading state come back as Go errors instead.
func (s *service) Submit(ctx context.Context, input SubmitInput) (Result, error) {
	if input.SessionID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	current, err := s.carts.Get(ctx, input.SessionID)
	if err != nil {
		return Result{}, err
	}
	if current.IsEmpty() {
		return s.finish(ctx, Result{State: enums.SubmissionStateCartEmpty}), nil
	}

	result := Result{State: enums.SubmissionStateProcessing}
	result.BillingErrors = pkgcheckout.ValidateBilling(input.Billing)

	shipping := input.Shipping
	if input.ShipToBilling {
		shipping = pkgcheckout.DeriveShipping(input.Billing)
	} else {
		result.ShippingErrors = pkgcheckout.ValidateShipping(shipping)
	}

	if !input.Method.IsValid() {
		result.PaymentError = "Select a payment method."
	} else if result.PaymentError == "" {
		result.PaymentError = s.gateBlockMessage(ctx, input)
	}

	if len(result.BillingErrors) > 0 || len(result.ShippingErrors) > 0 || result.PaymentError != "" {
		result.State = enums.SubmissionStateError
		return s.finish(ctx, result), nil
	}

	masked, transactionID, err := s.paymentMetadata(ctx, input)
	if err != nil {
		return Result{}, err
	}

	summary, err := s.orders.Place(ctx, orders.PlaceInput{
		SessionID:     input.SessionID,
		CustomerID:    input.CustomerID,
		Username:      input.Username,
		CustomerEmail: input.CustomerEmail,
		Cart:          current,
		Billing:       input.Billing,
		Shipping:      shipping,
		Method:        input.Method,
		MaskedDetails: masked,
		TransactionID: transactionID,
	})
	if err != nil {
		result.State = enums.SubmissionStateError
		result.Message = orderFailureMessage(err)
		s.logg.Error(ctx, "placing order", err)
		return s.finish(ctx, result), nil
	}

	result.State = enums.SubmissionStateSuccess
	result.Summary = summary
	return s.finish(ctx, result), nil
}

// gateBlockMessage applies the gateway gate for the selected method and
// returns the blocking message, or empty when the submission may proceed.
func (s *service) gateBlockMessage(ctx context.Context, input SubmitInput) string {
	status, err := s.gateway.Status(ctx, input.SessionID, input.Method)
	if err != nil {
		s.logg.Error(ctx, "reading gateway status", err)
		return "Payment status is unavailable. Try again."
	}
	switch status.Status {
	case enums.DraftStatusAuthorized:
		return ""
	case enums.DraftStatusFailed:
		if status.ErrorMessage != "" {
			return status.ErrorMessage
		}
		return "Payment authorization failed. Try again."
	default:
		return fmt.Sprintf("Authorize your %s through the secure gateway before placing the order.", methodLabel(input.Method))
	}
}

func (s *service) paymentMetadata(ctx context.Context, input SubmitInput) (string, string, error) {
	if !input.Method.RequiresAuthorization() {
		return "cash on delivery", "", nil
	}
	entry, err := s.gateway.Prefill(ctx, input.SessionID, input.Method)
	if err != nil {
		return "", "", err
	}
	if entry == nil {
		return "", "", nil
	}
	switch input.Method {
	case enums.PaymentMethodCard:
		return entry.Details["number"], entry.TransactionID, nil
	case enums.PaymentMethodPayPal:
		return entry.Details["email"], entry.TransactionID, nil
	}
	return "", entry.TransactionID, nil
}

func (s *service) finish(ctx context.Context, result Result) Result {
	s.metrics.IncSubmission(result.State.String())
	s.logg.Info(s.logg.WithField(ctx, "submission_state", result.State.String()), "checkout submission finished")
	return result
}

func orderFailureMessage(err error) string {
	message := "Your order could not be placed. Please try again."
	typed := pkgerrors.As(err)
	if typed == nil {
		return message
	}
	if details, ok := typed.Details().(map[string]string); ok {
		if intent := details["paymentIntentId"]; intent != "" {
			return fmt.Sprintf("%s Quote payment reference %s when contacting support.", message, intent)
		}
	}
	return message
}

func methodLabel(method enums.PaymentMethod) string {
	switch method {
	case enums.PaymentMethodPayPal:
		return "PayPal account"
	default:
		return "card"
	}
}
