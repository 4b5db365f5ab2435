// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the API.
//
// Metrics are exposed on /metrics. All recording methods are safe on a nil
// *Metrics so tests and tools can run without a registry.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "vidtube"

// Metrics holds every collector the API records to.
type Metrics struct {
	// ReactionToggles counts toggles by kind (like, dislike) and outcome
	// (added, removed, already_applied, error).
	ReactionToggles *prometheus.CounterVec

	// SubscriptionToggles counts subscription toggles by outcome.
	SubscriptionToggles *prometheus.CounterVec

	// Broadcasts counts room broadcasts by event name.
	Broadcasts *prometheus.CounterVec

	// DroppedEvents counts events not enqueued because a connection's
	// buffer was full.
	DroppedEvents prometheus.Counter

	// Connections tracks open realtime connections.
	Connections prometheus.Gauge

	// Rooms tracks rooms with at least one member.
	Rooms prometheus.Gauge

	// HTTPRequests counts requests by method, route template and status.
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
//
// Passing prometheus.DefaultRegisterer exposes them through promhttp.Handler.
// Registering twice on the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ReactionToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "reactions",
				Name:      "toggles_total",
				Help:      "Reaction toggles by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		SubscriptionToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "subscriptions",
				Name:      "toggles_total",
				Help:      "Subscription toggles by outcome",
			},
			[]string{"outcome"},
		),

		Broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "realtime",
				Name:      "broadcasts_total",
				Help:      "Room broadcasts by event name",
			},
			[]string{"event"},
		),

		DroppedEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "realtime",
				Name:      "dropped_events_total",
				Help:      "Events dropped because a connection's send buffer was full",
			},
		),

		Connections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "realtime",
				Name:      "connections",
				Help:      "Open realtime connections",
			},
		),

		Rooms: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "realtime",
				Name:      "rooms",
				Help:      "Rooms with at least one member",
			},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (m *Metrics) ReactionToggled(kind, outcome string) {
	if m == nil {
		return
	}
	m.ReactionToggles.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) SubscriptionToggled(outcome string) {
	if m == nil {
		return
	}
	m.SubscriptionToggles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Broadcasted(event string) {
	if m == nil {
		return
	}
	m.Broadcasts.WithLabelValues(event).Inc()
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.DroppedEvents.Inc()
}

func (m *Metrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.Connections.Set(float64(n))
}

func (m *Metrics) SetRooms(n int) {
	if m == nil {
		return
	}
	m.Rooms.Set(float64(n))
}

func (m *Metrics) RequestServed(method, route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
}
