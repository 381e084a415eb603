package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart, checkout, and gateway activity.
type StorefrontMetrics struct {
	cartMutations *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	gatewayEvents *prometheus.CounterVec
	backendErrors *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by terminal state.",
	}, []string{"state"})
	gatewayEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_events_total",
		Help: "Payment gateway events by method and result.",
	}, []string{"method", "result"})
	backendErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_call_errors_total",
		Help: "Failed calls to external collaborator services.",
	}, []string{"service"})
	reg.MustRegister(cartMutations, submissions, gatewayEvents, backendErrors)
	return &StorefrontMetrics{
		cartMutations: cartMutations,
		submissions:   submissions,
		gatewayEvents: gatewayEvents,
		backendErrors: backendErrors,
	}
}

// IncCartMutation counts one cart operation with its outcome.
func (m *StorefrontMetrics) IncCartMutation(op, outcome string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// IncSubmission counts one checkout submission ending in the given state.
func (m *StorefrontMetrics) IncSubmission(state string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(state)).Inc()
}

// IncGatewayEvent counts one gateway authorization attempt.
func (m *StorefrontMetrics) IncGatewayEvent(method, result string) {
	if m == nil || m.gatewayEvents == nil {
		return
	}
	m.gatewayEvents.WithLabelValues(normalizeLabel(method), normalizeLabel(result)).Inc()
}

// IncBackendError counts one failed external service call.
func (m *StorefrontMetrics) IncBackendError(service string) {
	if m == nil || m.backendErrors == nil {
		return
	}
	m.backendErrors.WithLabelValues(normalizeLabel(service)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
