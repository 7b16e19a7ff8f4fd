package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hybrid-knowledge-synthesizer/pkg/llm"
)

// fakeProvider is a stub text-generation backend.
type fakeProvider struct {
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeProvider) Generate(ctx context.Context, system, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "system", Content: system}, {Role: "user", Content: prompt}}, opts...)
}

func TestRouterEmptyQueryDefaultsToBoth(t *testing.T) {
	provider := &fakeProvider{response: "silo_a"}
	router := NewRouter(provider, testLogger())

	u := router.Run(context.Background(), &State{})

	require.NotNil(t, u.RouteDecision)
	assert.Equal(t, RouteBoth, *u.RouteDecision)
	assert.Zero(t, provider.calls, "backend must not be invoked for empty query")
}

func TestRouterUnconfiguredDefaultsToBoth(t *testing.T) {
	router := NewRouter(nil, testLogger())

	u := router.Run(context.Background(), &State{Query: "What is the architecture of our ML inference pipeline?"})

	require.NotNil(t, u.RouteDecision)
	assert.Equal(t, RouteBoth, *u.RouteDecision)
}

func TestRouterClassification(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Route
	}{
		{"silo_a", "silo_a", RouteSiloA},
		{"silo_b", "silo_b", RouteSiloB},
		{"both", "both", RouteBoth},
		{"whitespace and case normalized", "  SILO_A \n", RouteSiloA},
		{"out of vocabulary", "invalid_route", RouteBoth},
		{"chatty response", "The answer is silo_a", RouteBoth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&fakeProvider{response: tt.response}, testLogger())
			u := router.Run(context.Background(), &State{Query: "some query"})

			require.NotNil(t, u.RouteDecision)
			assert.Equal(t, tt.want, *u.RouteDecision)
		})
	}
}

func TestRouterBackendErrorDefaultsToBoth(t *testing.T) {
	provider := &fakeProvider{err: errors.New("API error")}
	router := NewRouter(provider, testLogger())

	u := router.Run(context.Background(), &State{Query: "some query"})

	require.NotNil(t, u.RouteDecision)
	assert.Equal(t, RouteBoth, *u.RouteDecision)
	require.Len(t, u.Errors, 1)
	assert.Contains(t, u.Errors[0], "Router error")
	assert.Equal(t, 1, provider.calls, "no retries at the router layer")
}
