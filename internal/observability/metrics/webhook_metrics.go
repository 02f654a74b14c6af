package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics counts outcomes of the billing webhook pipeline.
type WebhookMetrics struct {
	received        *prometheus.CounterVec
	rejected        prometheus.Counter
	duplicates      prometheus.Counter
	processed       prometheus.Counter
	handlerFailures prometheus.Counter
	deadLettered    prometheus.Counter
}

var (
	webhookMetricsOnce sync.Once
	webhookMetrics     *WebhookMetrics
)

// Webhook returns the process-wide webhook metrics, registering them on first use.
func Webhook() *WebhookMetrics {
	webhookMetricsOnce.Do(func() {
		webhookMetrics = newWebhookMetrics(prometheus.DefaultRegisterer)
	})
	return webhookMetrics
}

// ResetWebhookMetricsForTest clears the singleton so tests can re-register.
func ResetWebhookMetricsForTest() {
	if webhookMetrics != nil {
		prometheus.DefaultRegisterer.Unregister(webhookMetrics.received)
		prometheus.DefaultRegisterer.Unregister(webhookMetrics.rejected)
		prometheus.DefaultRegisterer.Unregister(webhookMetrics.duplicates)
		prometheus.DefaultRegisterer.Unregister(webhookMetrics.processed)
		prometheus.DefaultRegisterer.Unregister(webhookMetrics.handlerFailures)
		prometheus.DefaultRegisterer.Unregister(webhookMetrics.deadLettered)
	}
	webhookMetricsOnce = sync.Once{}
	webhookMetrics = nil
}

func newWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		received: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_webhook_events_received_total",
				Help: "Verified webhook events received, by event type.",
			},
			[]string{"event_type"},
		),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_webhook_signature_rejections_total",
			Help: "Webhook deliveries rejected for an invalid signature.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_webhook_duplicate_events_total",
			Help: "Redelivered events short-circuited by the idempotency ledger.",
		}),
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_webhook_events_processed_total",
			Help: "Events whose tenant mutation completed and was marked processed.",
		}),
		handlerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_webhook_handler_failures_total",
			Help: "Tenant mutations that failed and were left for the sweep.",
		}),
		deadLettered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billing_webhook_events_dead_lettered_total",
			Help: "Events parked after exhausting processing attempts.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.received, m.rejected, m.duplicates, m.processed, m.handlerFailures, m.deadLettered)
	}
	return m
}

func (m *WebhookMetrics) Received(eventType string) {
	if m == nil {
		return
	}
	m.received.WithLabelValues(eventType).Inc()
}

func (m *WebhookMetrics) Rejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

func (m *WebhookMetrics) Duplicate() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}

func (m *WebhookMetrics) Processed() {
	if m == nil {
		return
	}
	m.processed.Inc()
}

func (m *WebhookMetrics) HandlerFailure() {
	if m == nil {
		return
	}
	m.handlerFailures.Inc()
}

func (m *WebhookMetrics) DeadLettered() {
	if m == nil {
		return
	}
	m.deadLettered.Inc()
}
