package databricks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryIndex(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2.0/vector-search/indexes/eng_docs_index/query", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"data_array": [][]any{
					{"pipeline stages", "ML Pipeline v2.3", "eng-docs"},
					{"fft extraction", nil, 42},
					{"short row"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "dapi-test", "eng_docs_index", 5*time.Second)
	rows, err := client.QueryIndex(context.Background(), "pipeline", 5)
	require.NoError(t, err)

	assert.Equal(t, "Bearer dapi-test", gotAuth)
	assert.Equal(t, "pipeline", gotBody["query_text"])
	assert.Equal(t, float64(5), gotBody["num_results"])

	require.Len(t, rows, 3)
	assert.Equal(t, Row{Content: "pipeline stages", Title: "ML Pipeline v2.3", Source: "eng-docs"}, rows[0])
	assert.Equal(t, Row{Content: "fft extraction", Title: "", Source: "42"}, rows[1])
	assert.Equal(t, Row{Content: "short row", Title: "", Source: ""}, rows[2])
}

func TestQueryIndexErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error_code": "PERMISSION_DENIED"}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "dapi-test", "eng_docs_index", 5*time.Second)
	_, err := client.QueryIndex(context.Background(), "pipeline", 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")
}

func TestQueryIndexEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"data_array": [][]any{}}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "dapi-test", "eng_docs_index", 5*time.Second)
	rows, err := client.QueryIndex(context.Background(), "nothing", 5)

	require.NoError(t, err)
	assert.Empty(t, rows)
}
