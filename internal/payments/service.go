package payments

import (
	"context"
	"time"

	"github.com/athukorala/storefront-api/pkg/backend"
	"github.com/athukorala/storefront-api/pkg/checkout"
	"github.com/athukorala/storefront-api/pkg/enums"
	pkgerrors "github.com/athukorala/storefront-api/pkg/errors"
	"github.com/athukorala/storefront-api/pkg/logger"
	"github.com/athukorala/storefront-api/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const declinedMessage = "Payment was declined by the gateway."

// AuthorizationInput carries the gateway form fields for one method.
// Exactly one of the two sections is read, selected by the method.
type AuthorizationInput struct {
	Card        *checkout.CardDetails `json:"card,omitempty"`
	PayPalEmail string                `json:"paypalEmail,omitempty"`
}

// MethodStatus is the checkout-facing view of one method's handshake.
type MethodStatus struct {
	Status        enums.DraftStatus `json:"status"`
	ErrorMessage  string            `json:"errorMessage,omitempty"`
	TransactionID string            `json:"transactionId,omitempty"`
}

type transactionLogger interface {
	LogTransaction(ctx context.Context, entry backend.TransactionEntry) error
}

// Service runs the gateway handshake: start, prefill, authorize or
// fail, and the one-shot feedback hand-off back to checkout.
type Service interface {
	Start(ctx context.Context, sessionID string, method enums.PaymentMethod, amount decimal.Decimal, currency string) (Context, error)
	Prefill(ctx context.Context, sessionID string, method enums.PaymentMethod) (*DraftEntry, error)
	Authorize(ctx context.Context, sessionID string, method enums.PaymentMethod, input AuthorizationInput) (Feedback, error)
	Fail(ctx context.Context, sessionID string, method enums.PaymentMethod, message string) (Feedback, error)
	Disconnect(ctx context.Context, sessionID string, method enums.PaymentMethod) error
	Status(ctx context.Context, sessionID string, method enums.PaymentMethod) (MethodStatus, error)
	ConsumeFeedback(ctx context.Context, sessionID string) (*Feedback, error)
}

type service struct {
	store   Store
	txLog   transactionLogger
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
}

// NewService builds the gateway service.
func NewService(store Store, txLog transactionLogger, logg *logger.Logger, m *metrics.StorefrontMetrics) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment draft store required")
	}
	if txLog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction logger required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{store: store, txLog: txLog, logg: logg, metrics: m, now: time.Now}, nil
}

// Start opens the handshake for a method. The transaction id is minted
// exactly once per method and session: a second start reuses the id of
// the existing draft entry, so retries keep the same paymentIntentId.
func (s *service) Start(ctx context.Context, sessionID string, method enums.PaymentMethod, amount decimal.Decimal, currency string) (Context, error) {
	if err := requireGatewayMethod(sessionID, method); err != nil {
		return Context{}, err
	}

	draft, err := s.store.LoadDraft(ctx, sessionID)
	if err != nil {
		return Context{}, err
	}

	entry := draft.Entry(method)
	if entry == nil {
		entry = &DraftEntry{
			Status:        enums.DraftStatusUnverified,
			TransactionID: uuid.NewString(),
		}
	}
	entry.Amount = amount
	entry.Currency = currency
	draft.SetEntry(method, entry)

	if err := s.store.SaveDraft(ctx, sessionID, draft); err != nil {
		return Context{}, err
	}
	s.metrics.IncGatewayEvent(method.String(), "start")
	return Context{
		Method:        method,
		TransactionID: entry.TransactionID,
		Amount:        entry.Amount,
		Currency:      entry.Currency,
		Status:        entry.Status,
	}, nil
}

// Prefill returns the stored entry for the method so a previous
// attempt's masked data can seed the gateway form. Nil when the method
// has never been started.
func (s *service) Prefill(ctx context.Context, sessionID string, method enums.PaymentMethod) (*DraftEntry, error) {
	if err := requireGatewayMethod(sessionID, method); err != nil {
		return nil, err
	}
	draft, err := s.store.LoadDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return draft.Entry(method), nil
}

// Authorize validates the gateway form, marks the method authorized,
// and hands a success message back to checkout. The transaction-log
// call is best effort: its failure is logged, not surfaced.
func (s *service) Authorize(ctx context.Context, sessionID string, method enums.PaymentMethod, input AuthorizationInput) (Feedback, error) {
	if err := requireGatewayMethod(sessionID, method); err != nil {
		return Feedback{}, err
	}

	details, message, validationErrs := resolveAuthorization(method, input)
	if len(validationErrs) > 0 {
		return Feedback{}, pkgerrors.New(pkgerrors.CodeValidation, "payment details are invalid").WithDetails(validationErrs)
	}

	draft, err := s.store.LoadDraft(ctx, sessionID)
	if err != nil {
		return Feedback{}, err
	}
	entry := draft.Entry(method)
	if entry == nil {
		entry = &DraftEntry{TransactionID: uuid.NewString()}
	}

	completed := s.now().UTC()
	entry.Details = details
	entry.Status = enums.DraftStatusAuthorized
	entry.ErrorMessage = ""
	entry.CompletedAt = &completed
	draft.SetEntry(method, entry)

	if err := s.store.SaveDraft(ctx, sessionID, draft); err != nil {
		return Feedback{}, err
	}

	s.logTransaction(ctx, sessionID, entry, method, enums.TransactionStatusAuthorized)
	s.metrics.IncGatewayEvent(method.String(), "authorized")

	feedback := Feedback{PaymentUpdated: method, PaymentFailed: false, Message: message}
	if err := s.store.SaveFeedback(ctx, sessionID, feedback); err != nil {
		return Feedback{}, err
	}
	return feedback, nil
}

// Fail records a declined attempt. The stored error message is what
// checkout later shows when the shopper tries to submit anyway.
func (s *service) Fail(ctx context.Context, sessionID string, method enums.PaymentMethod, message string) (Feedback, error) {
	if err := requireGatewayMethod(sessionID, method); err != nil {
		return Feedback{}, err
	}
	if message == "" {
		message = declinedMessage
	}

	draft, err := s.store.LoadDraft(ctx, sessionID)
	if err != nil {
		return Feedback{}, err
	}
	entry := draft.Entry(method)
	if entry == nil {
		entry = &DraftEntry{TransactionID: uuid.NewString()}
	}

	completed := s.now().UTC()
	entry.Status = enums.DraftStatusFailed
	entry.ErrorMessage = message
	entry.CompletedAt = &completed
	draft.SetEntry(method, entry)

	if err := s.store.SaveDraft(ctx, sessionID, draft); err != nil {
		return Feedback{}, err
	}

	s.logTransaction(ctx, sessionID, entry, method, enums.TransactionStatusDeclined)
	s.metrics.IncGatewayEvent(method.String(), "failed")

	feedback := Feedback{PaymentUpdated: method, PaymentFailed: true, Message: message}
	if err := s.store.SaveFeedback(ctx, sessionID, feedback); err != nil {
		return Feedback{}, err
	}
	return feedback, nil
}

// Disconnect removes one method's draft entry and any pending
// feedback, leaving the other method's attempt intact. Both deletions
// are attempted even if one fails.
func (s *service) Disconnect(ctx context.Context, sessionID string, method enums.PaymentMethod) error {
	if err := requireGatewayMethod(sessionID, method); err != nil {
		return err
	}

	draft, err := s.store.LoadDraft(ctx, sessionID)
	if err != nil {
		return err
	}
	draft.SetEntry(method, nil)

	var errs error
	errs = multierr.Append(errs, s.store.SaveDraft(ctx, sessionID, draft))
	if _, err := s.store.ConsumeFeedback(ctx, sessionID); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Status reports the handshake state checkout gates on at submit time.
func (s *service) Status(ctx context.Context, sessionID string, method enums.PaymentMethod) (MethodStatus, error) {
	if sessionID == "" {
		return MethodStatus{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if !method.IsValid() {
		return MethodStatus{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if !method.RequiresAuthorization() {
		return MethodStatus{Status: enums.DraftStatusAuthorized}, nil
	}

	draft, err := s.store.LoadDraft(ctx, sessionID)
	if err != nil {
		return MethodStatus{}, err
	}
	status := MethodStatus{Status: draft.StatusFor(method)}
	if entry := draft.Entry(method); entry != nil {
		status.ErrorMessage = entry.ErrorMessage
		status.TransactionID = entry.TransactionID
	}
	return status, nil
}

// ConsumeFeedback pops the gateway's one-shot message, if any.
func (s *service) ConsumeFeedback(ctx context.Context, sessionID string) (*Feedback, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.store.ConsumeFeedback(ctx, sessionID)
}

func (s *service) logTransaction(ctx context.Context, sessionID string, entry *DraftEntry, method enums.PaymentMethod, status enums.TransactionStatus) {
	err := s.txLog.LogTransaction(ctx, backend.TransactionEntry{
		PaymentIntentID: entry.TransactionID,
		PaymentMethod:   method,
		Status:          status,
		Amount:          entry.Amount,
		Currency:        entry.Currency,
		Metadata:        map[string]any{"sessionId": sessionID},
	})
	if err != nil {
		s.metrics.IncBackendError("payments")
		s.logg.Error(s.logg.WithTransactionID(ctx, entry.TransactionID), "recording gateway transaction", err)
	}
}

func resolveAuthorization(method enums.PaymentMethod, input AuthorizationInput) (map[string]string, string, map[string]string) {
	switch method {
	case enums.PaymentMethodCard:
		if input.Card == nil {
			return nil, "", map[string]string{"card": "Card details are required."}
		}
		if errs := checkout.ValidateCard(*input.Card); len(errs) > 0 {
			return nil, "", errs
		}
		details := map[string]string{
			"holder_name": input.Card.HolderName,
			"number":      checkout.MaskCardNumber(input.Card.Number),
			"expiry":      input.Card.Expiry,
		}
		return details, "Card authorized successfully.", nil
	case enums.PaymentMethodPayPal:
		if errs := checkout.ValidatePayPalEmail(input.PayPalEmail); len(errs) > 0 {
			return nil, "", errs
		}
		details := map[string]string{"email": checkout.MaskPayPalEmail(input.PayPalEmail)}
		return details, "PayPal account authorized successfully.", nil
	}
	return nil, "", map[string]string{"method": "Unsupported payment method."}
}

func requireGatewayMethod(sessionID string, method enums.PaymentMethod) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if !method.RequiresAuthorization() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cash on delivery does not use the payment gateway")
	}
	return nil
}
