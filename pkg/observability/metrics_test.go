package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticelabs/lattice/internal/flow"
	"github.com/latticelabs/lattice/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hooks := metrics.Hooks()

	ctx := context.Background()
	hooks.OnStepEnter(ctx, &flow.StepEvent{Step: "intent_recognition"})
	hooks.OnStepLeave(ctx, &flow.StepEvent{Step: "intent_recognition", Duration: 5 * time.Millisecond})
	hooks.OnStepEnter(ctx, &flow.StepEvent{Step: "apply_diff"})
	hooks.OnStepError(ctx, &flow.StepEvent{Step: "apply_diff", Duration: time.Millisecond})

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]float64)
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			var label string
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == "step" {
					label = pair.GetValue()
				}
			}
			if metric.GetCounter() != nil {
				byName[fam.GetName()+"/"+label] += metric.GetCounter().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, byName["lattice_step_visits_total/intent_recognition"])
	assert.Equal(t, 1.0, byName["lattice_step_visits_total/apply_diff"])
	assert.Equal(t, 1.0, byName["lattice_step_failures_total/apply_diff"])
	assert.Zero(t, byName["lattice_step_failures_total/intent_recognition"])
}
