package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// Document is one retrieved row from a search backend, normalized across
// backend schemas.
type Document struct {
	Title   string
	Content string
	Source  string
}

// SearchBackend abstracts one retrieval silo.
type SearchBackend interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, query string) ([]Document, error)
}

// MockDataset is the clearly-marked substitute data an agent emits when its
// backend is unavailable or keeps failing, so the pipeline can still produce
// a degraded-but-successful response.
type MockDataset struct {
	Context         string
	Sources         []string
	FallbackSources []string
}

const retryBackoffBase = 1.5 // seconds

// Agent is one per-silo retrieval stage. Both silos are the same state
// machine (configured? → empty query? → attempt-with-retry → fallback) and
// differ only in backend adapter, retry budget, empty-result message, mock
// dataset and which state field receives the context.
type Agent struct {
	backend      SearchBackend
	maxAttempts  int
	emptyMessage string
	mock         MockDataset
	assign       func(u *Update, context string)
	sleep        func(time.Duration)
	logger       *log.Logger
}

const databricksMockContext = `[MOCK DATA - Databricks Vector Search unavailable]

Engineering Document: ML Pipeline Architecture v2.3
- The system uses a modular pipeline with separate stages for data ingestion,
  feature engineering, model training, and inference serving.
- Real-time inference is handled via a gRPC endpoint with <50ms p99 latency.
- Model artifacts are versioned in MLflow and deployed via Databricks Model Serving.

Engineering Document: Signal Processing Module
- The DSP module implements a custom FFT-based approach for audio feature extraction.
- Supports sampling rates from 8kHz to 48kHz with configurable window sizes.
- Integrates with the ML pipeline via Apache Kafka for streaming inference.`

const azureMockContext = `[MOCK DATA - Azure AI Search unavailable]

Patent: US-2024-0112233 - Neural Architecture for Low-Latency Audio Classification
- A novel neural network architecture optimized for real-time audio event detection
  on edge devices. Uses depthwise separable convolutions with attention mechanisms.
- Claims improved accuracy over prior art by 12% while reducing inference time by 40%.

Patent: EP-3987654 - Distributed Feature Engineering Pipeline
- A system and method for distributed feature computation across heterogeneous
  data sources with automatic schema reconciliation.
- Key innovation: lazy materialization of feature vectors with caching at the
  serving layer to minimize computation during inference.`

// NewSiloAAgent builds the engineering-docs agent (Databricks Vector Search).
// It has the tighter retry budget of the two silos.
func NewSiloAAgent(backend SearchBackend, logger *log.Logger) *Agent {
	return &Agent{
		backend:      backend,
		maxAttempts:  2,
		emptyMessage: "No relevant engineering documents found.",
		mock: MockDataset{
			Context: databricksMockContext,
			Sources: []string{
				"[MOCK] Databricks/ML Pipeline Architecture v2.3",
				"[MOCK] Databricks/Signal Processing Module",
			},
			FallbackSources: []string{"[MOCK/FALLBACK] Databricks data"},
		},
		assign: func(u *Update, context string) { u.ContextSiloA = ptr(context) },
		sleep:  time.Sleep,
		logger: logger,
	}
}

// NewSiloBAgent builds the patents agent (Azure AI Search).
func NewSiloBAgent(backend SearchBackend, logger *log.Logger) *Agent {
	return &Agent{
		backend:      backend,
		maxAttempts:  3,
		emptyMessage: "No relevant patent documents found.",
		mock: MockDataset{
			Context: azureMockContext,
			Sources: []string{
				"[MOCK] Azure/US-2024-0112233/Neural Architecture",
				"[MOCK] Azure/EP-3987654/Distributed Feature Engineering",
			},
			FallbackSources: []string{"[MOCK/FALLBACK] Azure data"},
		},
		assign: func(u *Update, context string) { u.ContextSiloB = ptr(context) },
		sleep:  time.Sleep,
		logger: logger,
	}
}

// Run retrieves context for the query. It never fails: every failure path
// resolves to usable context (real data, a "no results" message, or the
// marked substitute dataset) plus diagnostic errors.
func (a *Agent) Run(ctx context.Context, s *State) Update {
	name := a.backend.Name()

	if s.Query == "" {
		u := Update{Errors: []string{fmt.Sprintf("%s agent received empty query", name)}}
		a.assign(&u, "")
		return u
	}

	if !a.backend.Configured() {
		a.logger.Printf("[AGENT] %s not configured, using mock data", name)
		u := Update{Sources: a.mock.Sources}
		a.assign(&u, a.mock.Context)
		return u
	}

	docs, err := withRetry(ctx, name, a.maxAttempts, retryBackoffBase, a.sleep, a.logger,
		func(ctx context.Context) ([]Document, error) {
			return a.backend.Search(ctx, s.Query)
		})
	if err != nil {
		a.logger.Printf("[AGENT] %s failed after %d attempts: %v", name, a.maxAttempts, err)
		u := Update{
			Sources: a.mock.FallbackSources,
			Errors:  []string{fmt.Sprintf("%s agent error (using mock fallback): %v", name, err)},
		}
		a.assign(&u, a.mock.Context)
		return u
	}

	// Zero results is a valid outcome, not an error.
	if len(docs) == 0 {
		u := Update{}
		a.assign(&u, a.emptyMessage)
		return u
	}

	context, sources := formatResults(name, docs)
	a.logger.Printf("[AGENT] %s retrieved %d sources", name, len(sources))
	u := Update{Sources: sources}
	a.assign(&u, context)
	return u
}

// formatResults pairs each row's title/content/identifier into a context line
// and a "<Backend>/<parentOrSource>/<title>" reference string.
func formatResults(backendName string, docs []Document) (string, []string) {
	contextParts := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		contextParts = append(contextParts, fmt.Sprintf("[%s]: %s", doc.Title, doc.Content))
		sources = append(sources, fmt.Sprintf("%s/%s/%s", backendName, doc.Source, doc.Title))
	}
	return strings.Join(contextParts, "\n\n"), sources
}
