package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizerBothSilosEmpty(t *testing.T) {
	provider := &fakeProvider{response: "should not be called"}
	synth := NewSynthesizer(provider, testLogger())

	u := synth.Run(context.Background(), &State{Query: "anything"})

	require.NotNil(t, u.SynthesizedAnswer)
	assert.Equal(t, "No relevant information found in either data silo.", *u.SynthesizedAnswer)
	require.Len(t, u.Errors, 1)
	assert.Contains(t, u.Errors[0], "both silos returned empty context")
	require.Len(t, u.Messages, 1)
	assert.Equal(t, "assistant", u.Messages[0].Role)
	assert.Zero(t, provider.calls)
}

func TestSynthesizerUnconfiguredConcatenatesRawContext(t *testing.T) {
	synth := NewSynthesizer(nil, testLogger())
	s := &State{
		Query:        "pipeline latency",
		ContextSiloA: "gRPC endpoint with <50ms p99 latency",
	}

	u := synth.Run(context.Background(), s)

	require.NotNil(t, u.SynthesizedAnswer)
	answer := *u.SynthesizedAnswer
	assert.Contains(t, answer, "## Query: pipeline latency")
	assert.Contains(t, answer, "### From Engineering Docs (Silo A)")
	assert.Contains(t, answer, "gRPC endpoint with <50ms p99 latency")
	assert.NotContains(t, answer, "### From Patents (Silo B)", "empty silo must be omitted")
	assert.Empty(t, u.Errors)
}

func TestSynthesizerSuccess(t *testing.T) {
	provider := &fakeProvider{response: "Synthesized answer citing Silo A and Silo B."}
	synth := NewSynthesizer(provider, testLogger())
	s := &State{
		Query:        "compare internal pipeline with patented approaches",
		ContextSiloA: "internal docs",
		ContextSiloB: "patent claims",
	}

	u := synth.Run(context.Background(), s)

	require.NotNil(t, u.SynthesizedAnswer)
	assert.Equal(t, "Synthesized answer citing Silo A and Silo B.", *u.SynthesizedAnswer)
	assert.Empty(t, u.Errors)
	require.Len(t, u.Messages, 1)
	assert.Equal(t, *u.SynthesizedAnswer, u.Messages[0].Content)
	assert.Equal(t, 1, provider.calls)
}

func TestSynthesizerGenerationErrorDegradesToRawData(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	synth := NewSynthesizer(provider, testLogger())
	s := &State{
		Query:        "anything",
		ContextSiloA: "docs content",
		ContextSiloB: "patent content",
	}

	u := synth.Run(context.Background(), s)

	require.NotNil(t, u.SynthesizedAnswer)
	answer := *u.SynthesizedAnswer
	assert.Contains(t, answer, "[Synthesis error — raw data follows]")
	assert.Contains(t, answer, "### Silo A\ndocs content")
	assert.Contains(t, answer, "### Silo B\npatent content")
	require.Len(t, u.Errors, 1)
	assert.Contains(t, u.Errors[0], "Synthesizer error")
	assert.Contains(t, u.Errors[0], "rate limited")
}

func TestBuildSynthesisPromptMarksEmptySilo(t *testing.T) {
	prompt := buildSynthesisPrompt("q", "some docs", "")

	assert.Contains(t, prompt, "## User Query\nq")
	assert.Contains(t, prompt, "some docs")
	assert.Contains(t, prompt, "## Silo B — External Patents & Research\n*No data available.*")
}
