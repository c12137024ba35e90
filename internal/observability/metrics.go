package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the lookup service.
type Metrics struct {
	LookupsTotal     *prometheus.CounterVec // labels: outcome={success,address_not_found,...}
	LookupsInFlight  prometheus.Gauge
	LookupDuration   prometheus.Histogram
	LookupSuperseded prometheus.Counter

	// Upstream metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: service={address,weather}, outcome={success,error,not_found}
	UpstreamDuration *prometheus.HistogramVec // labels: service={address,weather}

	// Event sink metrics.
	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter
	EventSinkEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.LookupsTotal,
		m.LookupsInFlight,
		m.LookupDuration,
		m.LookupSuperseded,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.EventsPublished,
		m.EventPublishErrors,
		m.EventSinkEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cep_weather",
			Name:      "lookups_total",
			Help:      "Completed lookups by outcome.",
		}, []string{"outcome"}),
		LookupsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cep_weather",
			Name:      "lookups_in_flight",
			Help:      "Lookups currently waiting on an upstream service.",
		}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cep_weather",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a complete address-then-weather lookup.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LookupSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cep_weather",
			Name:      "lookups_superseded_total",
			Help:      "Session lookups discarded because a newer submission started.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cep_weather",
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by service and outcome.",
		}, []string{"service", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cep_weather",
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"service"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cep_weather",
			Name:      "events_published_total",
			Help:      "Lookup events written to the event sink.",
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cep_weather",
			Name:      "event_publish_errors_total",
			Help:      "Lookup events that could not be written to the event sink.",
		}),
		EventSinkEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cep_weather",
			Name:      "event_sink_enabled",
			Help:      "1 when lookup events are published, 0 otherwise.",
		}),
	}
}
