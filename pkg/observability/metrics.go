// Package observability wires flow lifecycle hooks into Prometheus
// metrics. Hosts register the collectors once and serve them via the
// /metrics endpoint of the HTTP adapter.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/latticelabs/lattice/internal/flow"
)

// Metrics holds the flow-level Prometheus collectors.
type Metrics struct {
	stepVisits   *prometheus.CounterVec
	stepFailures *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg. Pass
// prometheus.DefaultRegisterer to use the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_step_visits_total",
				Help: "Total number of step visits",
			},
			[]string{"step"},
		),
		stepFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_step_failures_total",
				Help: "Total number of failed step visits",
			},
			[]string{"step"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "lattice_step_duration_seconds",
				Help: "Duration of step executions",
			},
			[]string{"step"},
		),
	}
	reg.MustRegister(m.stepVisits, m.stepFailures, m.stepDuration)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() flow.Hooks {
	return flow.Hooks{
		OnStepEnter: func(ctx context.Context, e *flow.StepEvent) {
			m.stepVisits.WithLabelValues(e.Step).Inc()
		},
		OnStepLeave: func(ctx context.Context, e *flow.StepEvent) {
			m.stepDuration.WithLabelValues(e.Step).Observe(e.Duration.Seconds())
		},
		OnStepError: func(ctx context.Context, e *flow.StepEvent) {
			m.stepFailures.WithLabelValues(e.Step).Inc()
			m.stepDuration.WithLabelValues(e.Step).Observe(e.Duration.Seconds())
		},
	}
}
