package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hybrid-knowledge-synthesizer/pkg/llm"
)

const routerSystemPrompt = `You are a query router for a Hybrid Knowledge Synthesizer system.
Your job is to classify the user's query into one of three categories:

- "silo_a": The query is about internal engineering documentation, system architecture,
  ML pipelines, API design, or technical specifications.
- "silo_b": The query is about patents, external research, published innovations,
  or intellectual property.
- "both": The query requires comparing or synthesizing information from both
  internal engineering docs AND external patents/research.

Respond with ONLY one of: silo_a, silo_b, both
Do not include any other text.`

var validRoutes = map[Route]bool{
	RouteSiloA: true,
	RouteSiloB: true,
	RouteBoth:  true,
}

// Router classifies the (sanitized) query into a routing decision via a
// single LLM call. A wrong-but-safe default of "both" only costs extra
// retrieval, so there are no retries here: any failure is absorbed into the
// default immediately.
type Router struct {
	provider llm.Provider // nil when the generation backend is not configured
	logger   *log.Logger
}

func NewRouter(provider llm.Provider, logger *log.Logger) *Router {
	return &Router{
		provider: provider,
		logger:   logger,
	}
}

// Run sets RouteDecision. Defaults to "both" on empty query, unconfigured
// backend, call failure, or an out-of-vocabulary classification.
func (r *Router) Run(ctx context.Context, s *State) Update {
	if s.Query == "" {
		r.logger.Printf("[ROUTER] Empty query, defaulting to 'both'")
		return Update{RouteDecision: ptr(RouteBoth)}
	}

	if r.provider == nil {
		r.logger.Printf("[ROUTER] Generation backend not configured, defaulting route to 'both'")
		return Update{RouteDecision: ptr(RouteBoth)}
	}

	response, err := r.provider.Generate(ctx, routerSystemPrompt, s.Query,
		llm.WithTemperature(0), llm.WithMaxTokens(10))
	if err != nil {
		r.logger.Printf("[ROUTER] Classification call failed: %v", err)
		return Update{
			RouteDecision: ptr(RouteBoth),
			Errors:        []string{fmt.Sprintf("Router error: %v", err)},
		}
	}

	decision := Route(strings.ToLower(strings.TrimSpace(response)))
	if !validRoutes[decision] {
		r.logger.Printf("[ROUTER] Invalid decision %q, defaulting to 'both'", decision)
		return Update{RouteDecision: ptr(RouteBoth)}
	}

	r.logger.Printf("[ROUTER] Decision: %s for query: %s", decision, truncate(s.Query, 80))
	return Update{RouteDecision: ptr(decision)}
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
