package pipeline

import (
	"context"
	"log"
	"math"
	"time"
)

// Orchestrator owns the pipeline state and sequences the stages:
// PII filter → router → retrieval agent(s) → synthesizer. The routing
// decision is evaluated once into an ordered agent plan right after the
// router; the plan is then simply iterated, so the "both" path needs no
// second decision point.
type Orchestrator struct {
	piiFilter   *PIIFilter
	router      *Router
	siloA       *Agent
	siloB       *Agent
	synthesizer *Synthesizer
	logger      *log.Logger
}

func NewOrchestrator(
	piiFilter *PIIFilter,
	router *Router,
	siloA *Agent,
	siloB *Agent,
	synthesizer *Synthesizer,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		piiFilter:   piiFilter,
		router:      router,
		siloA:       siloA,
		siloB:       siloB,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Result is what one pipeline invocation returns to the serving layer.
type Result struct {
	Answer        string
	Sources       []string
	RouteDecision Route
	PIIDetected   bool
	Errors        []string
	LatencyMs     float64
}

// plan maps the routing decision to the ordered list of agents to run.
func (o *Orchestrator) plan(route Route) []*Agent {
	switch route {
	case RouteSiloA:
		return []*Agent{o.siloA}
	case RouteSiloB:
		return []*Agent{o.siloB}
	default:
		return []*Agent{o.siloA, o.siloB}
	}
}

// Invoke runs the full pipeline for one query. The state record is created
// fresh here and discarded when the result is returned; every stage recovers
// locally or degrades to substitute content, so Invoke itself never fails.
func (o *Orchestrator) Invoke(ctx context.Context, query string) *Result {
	start := time.Now()

	state := &State{}
	state.Apply(Update{
		Query:    ptr(query),
		Messages: []Message{{Role: "user", Content: query}},
	})

	state.Apply(o.piiFilter.Run(state))
	state.Apply(o.router.Run(ctx, state))

	agents := o.plan(state.RouteDecision)
	o.logger.Printf("[PIPELINE] Route %s resolved to %d agent(s)", state.RouteDecision, len(agents))
	for _, agent := range agents {
		state.Apply(agent.Run(ctx, state))
	}

	state.Apply(o.synthesizer.Run(ctx, state))

	latencyMs := math.Round(float64(time.Since(start).Microseconds())/1000*10) / 10
	o.logger.Printf("[PIPELINE] Completed in %.1fms | route=%s | sources=%d",
		latencyMs, state.RouteDecision, len(state.Sources))

	return &Result{
		Answer:        state.SynthesizedAnswer,
		Sources:       state.Sources,
		RouteDecision: state.RouteDecision,
		PIIDetected:   state.PIIDetected,
		Errors:        state.Errors,
		LatencyMs:     latencyMs,
	}
}

// NodeNames lists the pipeline stages in execution order, for the debug
// endpoint.
func (o *Orchestrator) NodeNames() []string {
	return []string{"pii_filter", "router", "silo_a_agent", "silo_b_agent", "synthesizer"}
}
