package metrics_test

import (
	"strings"
	"testing"

	"github.com/glizzus/softtimer/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := metrics.NewPrometheus(reg)

	counter := m.Counter("test_events_total", "A counter.", "kind")
	gauge := m.Gauge("test_level", "A gauge.")

	counter("a")
	counter("a")
	counter("b")
	gauge(42)

	const want = `
# HELP test_events_total A counter.
# TYPE test_events_total counter
test_events_total{kind="a"} 2
test_events_total{kind="b"} 1
# HELP test_level A gauge.
# TYPE test_level gauge
test_level 42
`

	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "test_events_total", "test_level"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestDiscard(t *testing.T) {
	m := metrics.Discard()

	// Must not panic with any label combination.
	m.Counter("a", "b", "c")("d", "e")
	m.Gauge("a", "b")(1, "c")
}
