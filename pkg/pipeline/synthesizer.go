package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hybrid-knowledge-synthesizer/pkg/llm"
)

const synthesisSystemPrompt = `You are a Knowledge Synthesis Expert for a Hybrid Intelligence system.
You receive context from two data silos:

**Silo A (Internal Engineering Docs)**: Technical documentation, architecture specs,
ML pipeline designs, and engineering best practices from the organization.

**Silo B (External Patents/Research)**: Published patents, research papers,
and external innovations.

Your task is to:
1. Synthesize information from both silos into a coherent, actionable answer.
2. Highlight key comparisons or synergies between internal and external knowledge.
3. Always cite which silo (A or B) each piece of information comes from.
4. If only one silo has relevant data, acknowledge the gap and provide what's available.
5. Be precise, professional, and structured in your response.

Format your response with clear sections and bullet points where appropriate.`

const noResultsAnswer = "No relevant information found in either data silo."

// Synthesizer merges whatever contexts the agents produced into one
// attributed answer. Synthesis failure degrades to the raw retrieved data,
// never aborting the request, so there are no retries here.
type Synthesizer struct {
	provider llm.Provider // nil when the generation backend is not configured
	logger   *log.Logger
}

func NewSynthesizer(provider llm.Provider, logger *log.Logger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		logger:   logger,
	}
}

// Run sets SynthesizedAnswer and appends it to the conversation.
func (sy *Synthesizer) Run(ctx context.Context, s *State) Update {
	if s.ContextSiloA == "" && s.ContextSiloB == "" {
		return answerUpdate(noResultsAnswer, []string{"Synthesizer: both silos returned empty context"})
	}

	if sy.provider == nil {
		sy.logger.Printf("[SYNTH] Generation backend not configured, returning raw concatenation")
		var b strings.Builder
		fmt.Fprintf(&b, "## Query: %s\n\n", s.Query)
		if s.ContextSiloA != "" {
			fmt.Fprintf(&b, "### From Engineering Docs (Silo A)\n%s\n\n", s.ContextSiloA)
		}
		if s.ContextSiloB != "" {
			fmt.Fprintf(&b, "### From Patents (Silo B)\n%s\n\n", s.ContextSiloB)
		}
		return answerUpdate(b.String(), nil)
	}

	prompt := buildSynthesisPrompt(s.Query, s.ContextSiloA, s.ContextSiloB)
	response, err := sy.provider.Generate(ctx, synthesisSystemPrompt, prompt,
		llm.WithTemperature(0.3), llm.WithMaxTokens(1500))
	if err != nil {
		sy.logger.Printf("[SYNTH] Generation call failed: %v", err)
		var b strings.Builder
		b.WriteString("[Synthesis error — raw data follows]\n\n")
		if s.ContextSiloA != "" {
			fmt.Fprintf(&b, "### Silo A\n%s\n\n", s.ContextSiloA)
		}
		if s.ContextSiloB != "" {
			fmt.Fprintf(&b, "### Silo B\n%s\n\n", s.ContextSiloB)
		}
		return answerUpdate(b.String(), []string{fmt.Sprintf("Synthesizer error: %v", err)})
	}

	sy.logger.Printf("[SYNTH] Generated answer (%d chars)", len(response))
	return answerUpdate(response, nil)
}

func answerUpdate(answer string, errors []string) Update {
	return Update{
		SynthesizedAnswer: ptr(answer),
		Messages:          []Message{{Role: "assistant", Content: answer}},
		Errors:            errors,
	}
}

// buildSynthesisPrompt embeds the query and both silo contexts, explicitly
// marking empty sections so the model acknowledges the gap.
func buildSynthesisPrompt(query, contextA, contextB string) string {
	parts := []string{fmt.Sprintf("## User Query\n%s\n", query)}

	if contextA != "" {
		parts = append(parts, fmt.Sprintf("## Silo A — Internal Engineering Documentation\n%s\n", contextA))
	} else {
		parts = append(parts, "## Silo A — Internal Engineering Documentation\n*No data available.*\n")
	}

	if contextB != "" {
		parts = append(parts, fmt.Sprintf("## Silo B — External Patents & Research\n%s\n", contextB))
	} else {
		parts = append(parts, "## Silo B — External Patents & Research\n*No data available.*\n")
	}

	parts = append(parts, "## Instructions\nSynthesize the above into a comprehensive answer.")
	return strings.Join(parts, "\n")
}
