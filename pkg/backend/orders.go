package backend

import (
	"context"
	"fmt"
	"net/url"

	pkgcheckout "github.com/athukorala/storefront-api/pkg/checkout"
	"github.com/athukorala/storefront-api/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderLine is the denormalized line snapshot sent with an order.
type OrderLine struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// PaymentMetadata travels with the order payload; details are masked.
type PaymentMetadata struct {
	Method        enums.PaymentMethod `json:"method"`
	MaskedDetails string              `json:"maskedDetails"`
	TransactionID string              `json:"transactionId"`
}

// CreateOrderRequest is the normalized payload for the orders service.
type CreateOrderRequest struct {
	ClientOrderID string                   `json:"clientOrderId"`
	CustomerID    string                   `json:"customerId,omitempty"`
	Username      string                   `json:"username,omitempty"`
	Items         []OrderLine              `json:"items"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	ShippingCost  decimal.Decimal          `json:"shippingCost"`
	Tax           decimal.Decimal          `json:"tax"`
	Total         decimal.Decimal          `json:"total"`
	Currency      string                   `json:"currency"`
	Billing       pkgcheckout.BillingInfo  `json:"billing"`
	Shipping      pkgcheckout.ShippingInfo `json:"shipping"`
	Payment       PaymentMetadata          `json:"payment"`
}

// OrderRecord is the orders service's view of a placed order.
type OrderRecord struct {
	ID            string            `json:"id"`
	ClientOrderID string            `json:"clientOrderId,omitempty"`
	Status        enums.OrderStatus `json:"status"`
	Username      string            `json:"username,omitempty"`
	CustomerID    string            `json:"customerId,omitempty"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	Items         []OrderLine       `json:"items,omitempty"`
	Total         decimal.Decimal   `json:"total"`
	Currency      string            `json:"currency,omitempty"`
	CreatedAt     string            `json:"createdAt,omitempty"`
}

// OrdersClient talks to the external orders service.
type OrdersClient struct {
	transport *transport
}

// NewOrdersClient builds an orders client for the given origin.
func NewOrdersClient(baseURL string, opts ...Option) (*OrdersClient, error) {
	t, err := newTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &OrdersClient{transport: t}, nil
}

// CreateOrder places a new order. Failure here is fatal to a submission.
func (c *OrdersClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderRecord, error) {
	var record OrderRecord
	if err := c.transport.doJSON(ctx, "POST", "/api/customer/orders", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByUsername returns the customer's orders looked up by username.
func (c *OrdersClient) ListByUsername(ctx context.Context, username string) ([]OrderRecord, error) {
	var records []OrderRecord
	path := "/api/customer/orders/by-username?username=" + url.QueryEscape(username)
	if err := c.transport.doJSON(ctx, "GET", path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListByCustomer returns the customer's orders looked up by customer id.
func (c *OrdersClient) ListByCustomer(ctx context.Context, customerID string) ([]OrderRecord, error) {
	var records []OrderRecord
	path := "/api/customer/orders?customerId=" + url.QueryEscape(customerID)
	if err := c.transport.doJSON(ctx, "GET", path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetByID fetches one order.
func (c *OrdersClient) GetByID(ctx context.Context, orderID string) (*OrderRecord, error) {
	var record OrderRecord
	path := fmt.Sprintf("/api/customer/orders/%s", url.PathEscape(orderID))
	if err := c.transport.doJSON(ctx, "GET", path, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateStatus transitions an order's status.
func (c *OrdersClient) UpdateStatus(ctx context.Context, orderID string, status enums.OrderStatus) (*OrderRecord, error) {
	var record OrderRecord
	path := fmt.Sprintf("/api/customer/orders/%s/status", url.PathEscape(orderID))
	payload := map[string]string{"status": status.String()}
	if err := c.transport.doJSON(ctx, "PUT", path, payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
