// Package metrics provides a small metrics abstraction over Prometheus so that
// components can be instrumented without depending on a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// A Counter is a function which increments a metric's value by 1 when invoked.
// Labels enable optional partitioning of a Counter into multiple dimensions.
// Counters must be safe for concurrent use.
type Counter func(labels ...string)

// A Gauge is a function which sets a metric's value when invoked.
// Labels enable optional partitioning of a Gauge into multiple dimensions.
// Gauges must be safe for concurrent use.
type Gauge func(value float64, labels ...string)

// An Interface is a type which can produce metrics functions. An Interface
// implementation must be safe for concurrent use.
type Interface interface {
	Counter(name, help string, labelNames ...string) Counter
	Gauge(name, help string, labelNames ...string) Gauge
}

// prom implements Interface by wrapping the Prometheus client library.
type prom struct {
	reg prometheus.Registerer
}

var _ Interface = &prom{}

// NewPrometheus creates an Interface which will register all of its metrics
// to the specified Prometheus registerer. The registerer must not be nil.
func NewPrometheus(reg prometheus.Registerer) Interface {
	return &prom{reg: reg}
}

// Counter implements Interface.
func (p *prom) Counter(name, help string, labelNames ...string) Counter {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labelNames)

	p.reg.MustRegister(c)

	return func(labels ...string) {
		c.WithLabelValues(labels...).Inc()
	}
}

// Gauge implements Interface.
func (p *prom) Gauge(name, help string, labelNames ...string) Gauge {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	}, labelNames)

	p.reg.MustRegister(g)

	return func(value float64, labels ...string) {
		g.WithLabelValues(labels...).Set(value)
	}
}

// Discard returns an Interface which discards all metrics.
func Discard() Interface { return discard{} }

type discard struct{}

func (discard) Counter(_, _ string, _ ...string) Counter { return func(...string) {} }
func (discard) Gauge(_, _ string, _ ...string) Gauge     { return func(float64, ...string) {} }
