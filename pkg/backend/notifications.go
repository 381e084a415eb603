package backend

import (
	"context"

	"github.com/athukorala/storefront-api/pkg/enums"
)

// Notification asks the notification service to email the customer
// using the template keyed by the order status.
type Notification struct {
	OrderID       string            `json:"orderId"`
	CustomerEmail string            `json:"customerEmail"`
	Status        enums.OrderStatus `json:"status"`
}

// NotificationsClient fires customer emails via the external service.
type NotificationsClient struct {
	transport *transport
}

// NewNotificationsClient builds a notifications client for the given origin.
func NewNotificationsClient(baseURL string, opts ...Option) (*NotificationsClient, error) {
	t, err := newTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &NotificationsClient{transport: t}, nil
}

// Send fires one notification; always best-effort for callers.
func (c *NotificationsClient) Send(ctx context.Context, notification Notification) error {
	return c.transport.doJSON(ctx, "POST", "/api/notifications", notification, nil)
}
