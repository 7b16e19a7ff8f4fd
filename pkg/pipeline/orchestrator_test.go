package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUnconfiguredOrchestrator wires a full pipeline where no external backend
// is available, exercising the all-mock degradation path end to end.
func newUnconfiguredOrchestrator() *Orchestrator {
	logger := testLogger()
	return NewOrchestrator(
		NewPIIFilter(logger),
		NewRouter(nil, logger),
		NewSiloAAgent(&fakeBackend{name: "Databricks", configured: false}, logger),
		NewSiloBAgent(&fakeBackend{name: "Azure", configured: false}, logger),
		NewSynthesizer(nil, logger),
		logger,
	)
}

func TestOrchestratorUnconfiguredEndToEnd(t *testing.T) {
	o := newUnconfiguredOrchestrator()

	result := o.Invoke(context.Background(), "How does our ML pipeline compare to published patents?")

	require.NotNil(t, result)
	assert.Equal(t, RouteBoth, result.RouteDecision)
	assert.False(t, result.PIIDetected)
	assert.Contains(t, result.Answer, "### From Engineering Docs (Silo A)")
	assert.Contains(t, result.Answer, "### From Patents (Silo B)")
	assert.Contains(t, result.Answer, "[MOCK DATA")
	assert.Len(t, result.Sources, 4, "two mock sources per silo")
	assert.Empty(t, result.Errors)
	assert.GreaterOrEqual(t, result.LatencyMs, 0.0)
}

func TestOrchestratorRedactsPIIBeforeDownstreamStages(t *testing.T) {
	o := newUnconfiguredOrchestrator()
	backendA := &fakeBackend{name: "Databricks", configured: true}
	o.siloA = NewSiloAAgent(backendA, testLogger())

	result := o.Invoke(context.Background(), "Contact max.mustermann@example.org about the pipeline")

	assert.True(t, result.PIIDetected)
	assert.NotContains(t, result.Answer, "max.mustermann@example.org")
	assert.Contains(t, result.Answer, "[REDACTED_EMAIL]")
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "PII detected and redacted")
}

func TestOrchestratorSiloOnlyRoutes(t *testing.T) {
	tests := []struct {
		name          string
		route         string
		wantInAnswer  string
		notInAnswer   string
		wantSourceSub string
	}{
		{
			name:          "silo_a only",
			route:         "silo_a",
			wantInAnswer:  "### From Engineering Docs (Silo A)",
			notInAnswer:   "### From Patents (Silo B)",
			wantSourceSub: "Databricks",
		},
		{
			name:          "silo_b only",
			route:         "silo_b",
			wantInAnswer:  "### From Patents (Silo B)",
			notInAnswer:   "### From Engineering Docs (Silo A)",
			wantSourceSub: "Azure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newUnconfiguredOrchestrator()
			o.router = NewRouter(&fakeProvider{response: tt.route}, testLogger())

			result := o.Invoke(context.Background(), "some query")

			assert.Equal(t, Route(tt.route), result.RouteDecision)
			assert.Contains(t, result.Answer, tt.wantInAnswer)
			assert.NotContains(t, result.Answer, tt.notInAnswer)
			require.Len(t, result.Sources, 2)
			for _, src := range result.Sources {
				assert.Contains(t, src, tt.wantSourceSub)
			}
		})
	}
}

func TestPlanOrderIsDeterministic(t *testing.T) {
	o := newUnconfiguredOrchestrator()

	assert.Equal(t, []*Agent{o.siloA}, o.plan(RouteSiloA))
	assert.Equal(t, []*Agent{o.siloB}, o.plan(RouteSiloB))
	assert.Equal(t, []*Agent{o.siloA, o.siloB}, o.plan(RouteBoth))
	assert.Equal(t, []*Agent{o.siloA, o.siloB}, o.plan(Route("garbage")), "unknown routes run both silos")
}

func TestNodeNames(t *testing.T) {
	o := newUnconfiguredOrchestrator()

	assert.Equal(t,
		[]string{"pii_filter", "router", "silo_a_agent", "silo_b_agent", "synthesizer"},
		o.NodeNames())
}
