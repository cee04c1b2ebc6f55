package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records instrumentation for the checkout pipeline.
type CheckoutMetrics struct {
	duration     *prometheus.HistogramVec
	success      *prometheus.CounterVec
	failure      *prometheus.CounterVec
	idCollisions prometheus.Counter
	skippedLines prometheus.Counter
	degraded     prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_success",
		Help: "Successful checkouts.",
	}, []string{"payment_method"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failure",
		Help: "Failed checkouts.",
	}, []string{"reason"})
	idCollisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_order_code_collisions",
		Help: "Order code allocation attempts retried after a duplicate key.",
	})
	skippedLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_skipped_lines",
		Help: "Cart lines dropped during best-effort persistence.",
	})
	degraded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_degraded_orders",
		Help: "Orders committed with fewer lines than the cart held.",
	})
	reg.MustRegister(duration, success, failure, idCollisions, skippedLines, degraded)
	return &CheckoutMetrics{
		duration:     duration,
		success:      success,
		failure:      failure,
		idCollisions: idCollisions,
		skippedLines: skippedLines,
		degraded:     degraded,
	}
}

// ObserveDuration records the duration for a checkout by payment method.
func (c *CheckoutMetrics) ObserveDuration(method string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the payment method.
func (c *CheckoutMetrics) IncSuccess(method string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailure increments the failure counter for the named reason.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncIDCollision counts one duplicate-key retry in the code allocator.
func (c *CheckoutMetrics) IncIDCollision() {
	if c == nil || c.idCollisions == nil {
		return
	}
	c.idCollisions.Inc()
}

// AddSkippedLines counts cart lines that failed to persist.
func (c *CheckoutMetrics) AddSkippedLines(n int) {
	if c == nil || c.skippedLines == nil || n <= 0 {
		return
	}
	c.skippedLines.Add(float64(n))
}

// IncDegradedOrder counts an order committed without its full line set.
func (c *CheckoutMetrics) IncDegradedOrder() {
	if c == nil || c.degraded == nil {
		return
	}
	c.degraded.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
