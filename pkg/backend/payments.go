package backend

import (
	"context"

	"github.com/athukorala/storefront-api/pkg/enums"
	"github.com/shopspring/decimal"
)

// TransactionEntry appends one row to the payment-transaction log.
type TransactionEntry struct {
	PaymentIntentID string                  `json:"paymentIntentId"`
	OrderID         string                  `json:"orderId,omitempty"`
	PaymentMethod   enums.PaymentMethod     `json:"paymentMethod"`
	Status          enums.TransactionStatus `json:"status"`
	Amount          decimal.Decimal         `json:"amount"`
	Currency        string                  `json:"currency"`
	Metadata        map[string]any          `json:"metadata,omitempty"`
}

// PaymentsClient appends to the external payment-transaction log.
type PaymentsClient struct {
	transport *transport
}

// NewPaymentsClient builds a payments client for the given origin.
func NewPaymentsClient(baseURL string, opts ...Option) (*PaymentsClient, error) {
	t, err := newTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &PaymentsClient{transport: t}, nil
}

// LogTransaction records one transaction. Callers decide whether a
// logging failure is fatal; most treat it as best-effort.
func (c *PaymentsClient) LogTransaction(ctx context.Context, entry TransactionEntry) error {
	return c.transport.doJSON(ctx, "POST", "/api/payments/transactions", entry, nil)
}
