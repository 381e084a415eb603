package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStorefrontMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.IncCartMutation("add", "partial")
	m.IncCartMutation("add", "partial")
	m.IncSubmission("cart-empty")
	m.IncGatewayEvent("card", "authorized")
	m.IncBackendError("orders")

	if got := testutil.ToFloat64(m.cartMutations.WithLabelValues("add", "partial")); got != 2 {
		t.Fatalf("expected 2 cart mutations, got %v", got)
	}
	if got := testutil.ToFloat64(m.submissions.WithLabelValues("cart-empty")); got != 1 {
		t.Fatalf("expected 1 submission, got %v", got)
	}
	if got := testutil.ToFloat64(m.gatewayEvents.WithLabelValues("card", "authorized")); got != 1 {
		t.Fatalf("expected 1 gateway event, got %v", got)
	}
}

func TestNilSafeWithoutRegisterer(t *testing.T) {
	m := NewStorefrontMetrics(nil)
	m.IncCartMutation("add", "full")
	m.IncSubmission("")
	m.IncGatewayEvent("", "")
	m.IncBackendError("")

	var zero *StorefrontMetrics
	zero.IncSubmission("success")
}
