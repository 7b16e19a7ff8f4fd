package azuresearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiVersion = "2024-07-01"

// Client talks to an Azure AI Search index over the REST API. It covers the
// two operations the system needs: hybrid (keyword + vector) queries at
// serving time and index management plus document upload at ingestion time.
type Client struct {
	endpoint  string
	apiKey    string
	indexName string
	client    *http.Client
}

func NewClient(endpoint, apiKey, indexName string, timeout time.Duration) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		indexName: indexName,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Document is one search hit, selected down to the fields the pipeline uses.
type Document struct {
	Chunk    string `json:"chunk"`
	Title    string `json:"title"`
	ParentID string `json:"parent_id"`
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
}

type searchRequest struct {
	Search        string        `json:"search"`
	Top           int           `json:"top"`
	Select        string        `json:"select"`
	VectorQueries []vectorQuery `json:"vectorQueries,omitempty"`
}

type searchResponse struct {
	Value []Document `json:"value"`
}

// HybridSearch combines keyword search with a k-NN vector query over the
// text_vector field. Pass a nil vector to run keyword-only search.
func (c *Client) HybridSearch(ctx context.Context, query string, vector []float32, top int) ([]Document, error) {
	reqBody := searchRequest{
		Search: query,
		Top:    top,
		Select: "chunk,title,parent_id",
	}
	if len(vector) > 0 {
		reqBody.VectorQueries = []vectorQuery{{
			Kind:   "vector",
			Vector: vector,
			K:      top,
			Fields: "text_vector",
		}}
	}

	body, err := c.post(ctx, fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, c.indexName, apiVersion), reqBody)
	if err != nil {
		return nil, err
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return searchResp.Value, nil
}

// --- Index management (used by the offline ingestion command) ---

// IndexDocument is the shape of a document uploaded to the index.
type IndexDocument struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Chunk    string    `json:"chunk"`
	ParentID string    `json:"parent_id"`
	Source   string    `json:"source"`
	Vector   []float32 `json:"text_vector,omitempty"`
}

// CreateOrUpdateIndex provisions the index schema with an HNSW vector field
// sized to the configured embedding dimensionality.
func (c *Client) CreateOrUpdateIndex(ctx context.Context, dimensions int) error {
	schema := map[string]any{
		"name": c.indexName,
		"fields": []map[string]any{
			{"name": "id", "type": "Edm.String", "key": true, "filterable": true},
			{"name": "title", "type": "Edm.String", "searchable": true},
			{"name": "chunk", "type": "Edm.String", "searchable": true},
			{"name": "parent_id", "type": "Edm.String", "filterable": true},
			{"name": "source", "type": "Edm.String", "filterable": true},
			{
				"name":                "text_vector",
				"type":                "Collection(Edm.Single)",
				"searchable":          true,
				"dimensions":          dimensions,
				"vectorSearchProfile": "hnswProfile",
			},
		},
		"vectorSearch": map[string]any{
			"algorithms": []map[string]any{
				{"name": "hnsw", "kind": "hnsw"},
			},
			"profiles": []map[string]any{
				{"name": "hnswProfile", "algorithm": "hnsw"},
			},
		},
	}

	jsonData, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal index schema: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s?api-version=%s", c.endpoint, c.indexName, apiVersion)
	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("azure search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("azure search error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

type uploadAction struct {
	IndexDocument
	Action string `json:"@search.action"`
}

type uploadResponse struct {
	Value []struct {
		Key    string `json:"key"`
		Status bool   `json:"status"`
	} `json:"value"`
}

// UploadDocuments pushes documents into the index, returning the number that
// succeeded.
func (c *Client) UploadDocuments(ctx context.Context, docs []IndexDocument) (int, error) {
	actions := make([]uploadAction, len(docs))
	for i, doc := range docs {
		actions[i] = uploadAction{IndexDocument: doc, Action: "mergeOrUpload"}
	}

	body, err := c.post(ctx, fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s", c.endpoint, c.indexName, apiVersion), map[string]any{"value": actions})
	if err != nil {
		return 0, err
	}

	var uploadResp uploadResponse
	if err := json.Unmarshal(body, &uploadResp); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}

	succeeded := 0
	for _, r := range uploadResp.Value {
		if r.Status {
			succeeded++
		}
	}
	return succeeded, nil
}

func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure search request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure search error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}
	return bodyBytes, nil
}
