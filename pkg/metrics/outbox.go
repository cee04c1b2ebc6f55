package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records metadata for the outbox publisher loop.
type OutboxMetrics struct {
	batchDuration prometheus.Histogram
	published     prometheus.Counter
	failed        prometheus.Counter
	exhausted     prometheus.Counter
}

// NewOutboxMetrics registers the outbox publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox events published downstream.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_publish_failures",
		Help: "Outbox publish attempts that failed.",
	})
	exhausted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_exhausted",
		Help: "Outbox events abandoned after the attempt cap.",
	})
	reg.MustRegister(batchDuration, published, failed, exhausted)
	return &OutboxMetrics{
		batchDuration: batchDuration,
		published:     published,
		failed:        failed,
		exhausted:     exhausted,
	}
}

// ObserveBatch records the duration of one publish batch.
func (o *OutboxMetrics) ObserveBatch(duration time.Duration) {
	if o == nil || o.batchDuration == nil {
		return
	}
	o.batchDuration.Observe(duration.Seconds())
}

// IncPublished increments the published event counter.
func (o *OutboxMetrics) IncPublished() {
	if o == nil || o.published == nil {
		return
	}
	o.published.Inc()
}

// IncFailed increments the failed publish counter.
func (o *OutboxMetrics) IncFailed() {
	if o == nil || o.failed == nil {
		return
	}
	o.failed.Inc()
}

// IncExhausted increments the abandoned event counter.
func (o *OutboxMetrics) IncExhausted() {
	if o == nil || o.exhausted == nil {
		return
	}
	o.exhausted.Inc()
}
