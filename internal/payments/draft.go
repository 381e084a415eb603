package payments

import (
	"time"

	"github.com/athukorala/storefront-api/pkg/enums"
	"github.com/shopspring/decimal"
)

// DraftEntry is one payment method's state inside the session draft.
// Details hold only masked values; raw card input is never persisted.
type DraftEntry struct {
	Details       map[string]string `json:"details,omitempty"`
	Status        enums.DraftStatus `json:"status"`
	ErrorMessage  string            `json:"errorMessage"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	TransactionID string            `json:"transactionId"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
}

// Draft is the per-session payment document shared by the checkout and
// gateway flows. Each authorizable method keeps its own entry so a
// card attempt never clobbers a PayPal attempt.
type Draft struct {
	Card   *DraftEntry `json:"card,omitempty"`
	PayPal *DraftEntry `json:"paypal,omitempty"`
}

// Entry returns the draft entry for the method, or nil.
func (d *Draft) Entry(method enums.PaymentMethod) *DraftEntry {
	switch method {
	case enums.PaymentMethodCard:
		return d.Card
	case enums.PaymentMethodPayPal:
		return d.PayPal
	}
	return nil
}

// SetEntry merges the entry for one method, leaving the other intact.
func (d *Draft) SetEntry(method enums.PaymentMethod, entry *DraftEntry) {
	switch method {
	case enums.PaymentMethodCard:
		d.Card = entry
	case enums.PaymentMethodPayPal:
		d.PayPal = entry
	}
}

// IsEmpty reports whether no method holds a draft entry.
func (d *Draft) IsEmpty() bool {
	return d.Card == nil && d.PayPal == nil
}

// StatusFor returns the handshake state for a method. A method without
// an entry is unverified.
func (d *Draft) StatusFor(method enums.PaymentMethod) enums.DraftStatus {
	entry := d.Entry(method)
	if entry == nil || entry.Status == "" {
		return enums.DraftStatusUnverified
	}
	return entry.Status
}

// Feedback is the one-shot message the gateway leaves for the checkout
// page. It is consumed exactly once so a refresh cannot replay it.
type Feedback struct {
	PaymentUpdated enums.PaymentMethod `json:"paymentUpdated"`
	PaymentFailed  bool                `json:"paymentFailed"`
	Message        string              `json:"message"`
}

// Context is the handshake envelope handed to the gateway flow when a
// shopper starts authorizing a method.
type Context struct {
	Method        enums.PaymentMethod `json:"method"`
	TransactionID string              `json:"transactionId"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency"`
	Status        enums.DraftStatus   `json:"status"`
}
