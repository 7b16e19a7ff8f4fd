package databricks

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

// Client queries a Databricks Vector Search index over the REST API.
type Client struct {
	host      string
	token     string
	indexName string
	client    *http.Client
}

func NewClient(host, token, indexName string, timeout time.Duration) *Client {
	return &Client{
		host:      strings.TrimRight(host, "/"),
		token:     token,
		indexName: indexName,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Row is one result from the vector search index.
type Row struct {
	Content string
	Title   string
	Source  string
}

type queryRequest struct {
	Columns    []string `json:"columns"`
	QueryText  string   `json:"query_text"`
	NumResults int      `json:"num_results"`
}

type queryResponse struct {
	Result struct {
		DataArray [][]any `json:"data_array"`
	} `json:"result"`
}

// QueryIndex runs a text query against the index and returns the matched rows
// in relevance order. Columns requested: content, title, source.
func (c *Client) QueryIndex(ctx context.Context, query string, numResults int) ([]Row, error) {
	reqBody := queryRequest{
		Columns:    []string{"content", "title", "source"},
		QueryText:  query,
		NumResults: numResults,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/2.0/vector-search/indexes/%s/query", c.host, c.indexName)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("databricks request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("databricks error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var queryResp queryResponse
	if err := json.Unmarshal(bodyBytes, &queryResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	rows := make([]Row, 0, len(queryResp.Result.DataArray))
	for _, raw := range queryResp.Result.DataArray {
		rows = append(rows, Row{
			Content: cell(raw, 0),
			Title:   cell(raw, 1),
			Source:  cell(raw, 2),
		})
	}
	return rows, nil
}

// cell extracts a string column from a data_array row, tolerating short rows
// and non-string values.
func cell(row []any, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", row[idx])
}
