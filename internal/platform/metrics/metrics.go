package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the broker-wide Prometheus metrics.
type Metrics struct {
	EventsAccepted       prometheus.Counter
	EventsRejected       prometheus.Counter
	SubscriptionsCreated prometheus.Counter
	CapabilityDeclared   prometheus.Counter
	ViolationsRecorded   prometheus.Counter
	MatchesPerEvent      prometheus.Histogram
	SubmitDuration       prometheus.Histogram
	WebhookDeliveries    *prometheus.CounterVec
}

// New creates and registers all broker metrics.
func New() *Metrics {
	return &Metrics{
		EventsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinksync_events_accepted_total",
			Help: "Total number of accessibility events accepted by the broker",
		}),
		EventsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinksync_events_rejected_total",
			Help: "Total number of accessibility events rejected at validation",
		}),
		SubscriptionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinksync_subscriptions_created_total",
			Help: "Total number of consumer subscriptions created",
		}),
		CapabilityDeclared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinksync_capability_declarations_total",
			Help: "Total number of capability declarations (including replacements)",
		}),
		ViolationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pinksync_violations_recorded_total",
			Help: "Total number of compliance violations recorded by the auditor feed",
		}),
		MatchesPerEvent: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinksync_matches_per_event",
			Help:    "Number of consumers matched per accepted event",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinksync_submit_duration_seconds",
			Help:    "Latency of event submission through the full broker pipeline",
			Buckets: prometheus.DefBuckets,
		}),
		WebhookDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pinksync_webhook_deliveries_total",
			Help: "Webhook delivery attempts by outcome",
		}, []string{"outcome"}),
	}
}

// IncEventsAccepted increments the accepted-events counter by 1.
func (m *Metrics) IncEventsAccepted() {
	if m == nil {
		return
	}
	m.EventsAccepted.Inc()
}

// IncEventsRejected increments the rejected-events counter by 1.
func (m *Metrics) IncEventsRejected() {
	if m == nil {
		return
	}
	m.EventsRejected.Inc()
}

// IncSubscriptionsCreated increments the subscriptions counter by 1.
func (m *Metrics) IncSubscriptionsCreated() {
	if m == nil {
		return
	}
	m.SubscriptionsCreated.Inc()
}

// IncCapabilityDeclared increments the declarations counter by 1.
func (m *Metrics) IncCapabilityDeclared() {
	if m == nil {
		return
	}
	m.CapabilityDeclared.Inc()
}

// IncViolationsRecorded increments the violations counter by 1.
func (m *Metrics) IncViolationsRecorded() {
	if m == nil {
		return
	}
	m.ViolationsRecorded.Inc()
}

// ObserveMatches records the fan-out size for one accepted event.
func (m *Metrics) ObserveMatches(n int) {
	if m == nil {
		return
	}
	m.MatchesPerEvent.Observe(float64(n))
}

// ObserveSubmitDuration records one submission's pipeline latency in seconds.
func (m *Metrics) ObserveSubmitDuration(seconds float64) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(seconds)
}

// IncWebhookDelivery records one delivery attempt outcome ("ok" or "failed").
func (m *Metrics) IncWebhookDelivery(outcome string) {
	if m == nil {
		return
	}
	m.WebhookDeliveries.WithLabelValues(outcome).Inc()
}
