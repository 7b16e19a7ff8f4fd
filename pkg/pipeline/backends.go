package pipeline

import (
	"context"
	"fmt"

	"hybrid-knowledge-synthesizer/pkg/embedding"
	"hybrid-knowledge-synthesizer/pkg/search/azuresearch"
	"hybrid-knowledge-synthesizer/pkg/search/databricks"
)

const resultsPerQuery = 5

// EngineeringDocsBackend adapts the Databricks Vector Search client to the
// SearchBackend contract (Silo A). A nil client means the backend is not
// configured.
type EngineeringDocsBackend struct {
	client *databricks.Client
}

var _ SearchBackend = &EngineeringDocsBackend{}

func NewEngineeringDocsBackend(client *databricks.Client) *EngineeringDocsBackend {
	return &EngineeringDocsBackend{client: client}
}

func (b *EngineeringDocsBackend) Name() string {
	return "Databricks"
}

func (b *EngineeringDocsBackend) Configured() bool {
	return b.client != nil
}

func (b *EngineeringDocsBackend) Search(ctx context.Context, query string) ([]Document, error) {
	rows, err := b.client.QueryIndex(ctx, query, resultsPerQuery)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		title := row.Title
		if title == "" {
			title = "Unknown"
		}
		source := row.Source
		if source == "" {
			source = "databricks"
		}
		docs = append(docs, Document{
			Title:   title,
			Content: row.Content,
			Source:  source,
		})
	}
	return docs, nil
}

// PatentsBackend adapts Azure AI Search hybrid queries to the SearchBackend
// contract (Silo B). The embedder builds the vector half of the hybrid query;
// when it is absent the backend degrades to keyword-only search.
type PatentsBackend struct {
	client   *azuresearch.Client
	embedder embedding.Provider
}

var _ SearchBackend = &PatentsBackend{}

func NewPatentsBackend(client *azuresearch.Client, embedder embedding.Provider) *PatentsBackend {
	return &PatentsBackend{
		client:   client,
		embedder: embedder,
	}
}

func (b *PatentsBackend) Name() string {
	return "Azure"
}

func (b *PatentsBackend) Configured() bool {
	return b.client != nil
}

func (b *PatentsBackend) Search(ctx context.Context, query string) ([]Document, error) {
	var vector []float32
	if b.embedder != nil {
		v, err := b.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		vector = v
	}

	hits, err := b.client.HybridSearch(ctx, query, vector, resultsPerQuery)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(hits))
	for _, hit := range hits {
		title := hit.Title
		if title == "" {
			title = "Unknown Patent"
		}
		parentID := hit.ParentID
		if parentID == "" {
			parentID = "azure"
		}
		docs = append(docs, Document{
			Title:   title,
			Content: hit.Chunk,
			Source:  parentID,
		})
	}
	return docs, nil
}
