package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(FetchEvents, RequestLatency, ActiveFetches, SimulatedSessions)
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(FetchEvents.WithLabelValues("sent"))
	FetchEvents.WithLabelValues("sent").Inc()
	if got := testutil.ToFloat64(FetchEvents.WithLabelValues("sent")); got != before+1 {
		t.Fatalf("counter = %v, want %v", got, before+1)
	}

	ActiveFetches.Inc()
	ActiveFetches.Dec()
	if got := testutil.ToFloat64(ActiveFetches); got != 0 {
		t.Fatalf("gauge = %v, want 0", got)
	}
}
