package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	FetchEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "imgbind",
			Name:      "fetch_events_total",
			Help:      "Count of fetch lifecycle events emitted by sessions.",
		},
		[]string{"kind"},
	)

	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "imgbind",
			Name:      "http_request_latency_seconds",
			Help:      "Latency of image HTTP requests.",
		},
		[]string{"outcome"},
	)

	ActiveFetches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "imgbind",
			Name:      "active_fetches",
			Help:      "Number of in-flight image requests.",
		},
	)

	SimulatedSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "imgbind",
			Name:      "simulated_sessions_total",
			Help:      "Simulated sessions created by the simulation registry.",
		},
	)
)

// Register registers the imgbind metrics into the default registry.
func Register() {
	prometheus.MustRegister(FetchEvents, RequestLatency, ActiveFetches, SimulatedSessions)
}
