// Command ingest provisions the Azure AI Search patents index and uploads
// documents from a JSON file, chunking and embedding content client-side.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"hybrid-knowledge-synthesizer/internal/config"
	embeddingazure "hybrid-knowledge-synthesizer/pkg/embedding/azureopenai"
	"hybrid-knowledge-synthesizer/pkg/search/azuresearch"
	"hybrid-knowledge-synthesizer/pkg/utils"
)

const (
	chunkSize    = 2000
	chunkOverlap = 200
)

type sourceDocument struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	PatentID string `json:"patent_id"`
	Source   string `json:"source"`
}

func main() {
	dataFile := flag.String("data", "data/sample_patents.json", "path to the source documents JSON file")
	flag.Parse()

	cfg := config.Load()
	if !cfg.AzureSearchConfigured() {
		color.Red("❌ Azure AI Search not configured. Set AZURE_SEARCH_* env vars.")
		os.Exit(1)
	}
	if !cfg.AzureOpenAIConfigured() {
		color.Red("❌ Azure OpenAI not configured. Set AZURE_OPENAI_* env vars.")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*dataFile)
	if err != nil {
		color.Red("❌ Failed to read data file: %v", err)
		os.Exit(1)
	}

	var documents []sourceDocument
	if err := json.Unmarshal(raw, &documents); err != nil {
		color.Red("❌ Failed to parse data file: %v", err)
		os.Exit(1)
	}
	fmt.Printf("📄 Loaded %d documents from %s\n", len(documents), *dataFile)

	ctx := context.Background()

	searchClient := azuresearch.NewClient(
		cfg.AzureSearch.Endpoint,
		cfg.AzureSearch.APIKey,
		cfg.AzureSearch.IndexName,
		60*time.Second,
	)
	embedder := embeddingazure.NewProvider(
		cfg.AzureOpenAI.Endpoint,
		cfg.AzureOpenAI.APIKey,
		cfg.AzureOpenAI.EmbeddingDeployment,
		cfg.AzureOpenAI.APIVersion,
		cfg.App.EmbeddingDimensions,
	)

	if err := searchClient.CreateOrUpdateIndex(ctx, cfg.App.EmbeddingDimensions); err != nil {
		color.Red("❌ Failed to create index: %v", err)
		os.Exit(1)
	}
	color.Green("✅ Index '%s' created/updated", cfg.AzureSearch.IndexName)

	var toUpload []azuresearch.IndexDocument
	for _, doc := range documents {
		parentID := doc.PatentID
		if parentID == "" {
			parentID = doc.ID
		}
		source := doc.Source
		if source == "" {
			source = "unknown"
		}

		chunks := utils.SplitText(doc.Content, chunkSize, chunkOverlap)
		for i, chunk := range chunks {
			vector, err := embedder.Embed(ctx, chunk)
			if err != nil {
				color.Red("❌ Failed to embed chunk %d of %s: %v", i, doc.ID, err)
				os.Exit(1)
			}
			toUpload = append(toUpload, azuresearch.IndexDocument{
				ID:       fmt.Sprintf("%s-%d", doc.ID, i),
				Title:    doc.Title,
				Chunk:    chunk,
				ParentID: parentID,
				Source:   source,
				Vector:   vector,
			})
		}
	}

	succeeded, err := searchClient.UploadDocuments(ctx, toUpload)
	if err != nil {
		color.Red("❌ Upload failed: %v", err)
		os.Exit(1)
	}
	color.Green("✅ Uploaded %d/%d documents", succeeded, len(toUpload))
	color.Green("🎉 Azure ingestion complete!")
}
