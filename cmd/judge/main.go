// Command judge runs LLM-as-a-judge evaluation of the running service on two
// axes: contextual relevancy of the retrieved context and groundedness of the
// generated answer.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"hybrid-knowledge-synthesizer/internal/config"
	"hybrid-knowledge-synthesizer/internal/dto"
	"hybrid-knowledge-synthesizer/pkg/llm"
	llmazure "hybrid-knowledge-synthesizer/pkg/llm/azureopenai"
)

const relevancyPrompt = `You are evaluating the CONTEXTUAL RELEVANCY of a RAG system.
Given a user query and retrieved context, rate how relevant the context is to answering the query.

Score on a scale of 1-5:
1 = Completely irrelevant
2 = Mostly irrelevant
3 = Partially relevant
4 = Mostly relevant
5 = Highly relevant

Respond with ONLY a JSON object: {"score": <int>, "reasoning": "<brief explanation>"}`

const groundednessPrompt = `You are evaluating the GROUNDEDNESS of a RAG system.
Given retrieved context and a generated answer, rate how well the answer is supported by the context.

Score on a scale of 1-5:
1 = Fabricated, no support in context
2 = Mostly fabricated
3 = Partially grounded
4 = Mostly grounded
5 = Fully grounded in context

Respond with ONLY a JSON object: {"score": <int>, "reasoning": "<brief explanation>"}`

type evalItem struct {
	Query         string `json:"query"`
	ExpectedRoute string `json:"expected_route"`
}

type judgement struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

type evalResult struct {
	Query                 string  `json:"query"`
	ExpectedRoute         string  `json:"expected_route,omitempty"`
	ActualRoute           string  `json:"actual_route,omitempty"`
	RouteCorrect          bool    `json:"route_correct"`
	RelevancyScore        int     `json:"relevancy_score"`
	RelevancyReasoning    string  `json:"relevancy_reasoning,omitempty"`
	GroundednessScore     int     `json:"groundedness_score"`
	GroundednessReasoning string  `json:"groundedness_reasoning,omitempty"`
	LatencyMs             float64 `json:"latency_ms"`
	Error                 string  `json:"error,omitempty"`
}

func main() {
	dataFile := flag.String("data", "data/evaluation_dataset.json", "path to the evaluation dataset JSON file")
	serviceURL := flag.String("url", "http://localhost:8000/invoke", "URL of the running /invoke endpoint")
	outFile := flag.String("out", "reporting/evaluation_results.json", "path to write detailed results")
	flag.Parse()

	cfg := config.Load()
	if !cfg.AzureOpenAIConfigured() {
		color.Red("❌ Azure OpenAI not configured for evaluation")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*dataFile)
	if err != nil {
		color.Red("❌ Evaluation dataset not found: %s", *dataFile)
		os.Exit(1)
	}
	var items []evalItem
	if err := json.Unmarshal(raw, &items); err != nil {
		color.Red("❌ Failed to parse evaluation dataset: %v", err)
		os.Exit(1)
	}
	fmt.Printf("📊 Starting evaluation with %d queries\n", len(items))

	judge := llmazure.NewProvider(
		cfg.AzureOpenAI.Endpoint,
		cfg.AzureOpenAI.APIKey,
		cfg.AzureOpenAI.DeploymentName,
		cfg.AzureOpenAI.APIVersion,
	)

	ctx := context.Background()
	results := make([]evalResult, 0, len(items))

	for i, item := range items {
		fmt.Printf("  [%d/%d] Evaluating: %s\n", i+1, len(items), truncate(item.Query, 60))

		pipelineResult, err := invokePipeline(*serviceURL, item.Query)
		if err != nil {
			color.Red("  ❌ Failed: %v", err)
			results = append(results, evalResult{Query: item.Query, Error: err.Error()})
			continue
		}

		// Reconstruct context from sources, the judge only needs attribution.
		retrievedContext := fmt.Sprintf("Route: %s\nSources: %s",
			pipelineResult.RouteDecision, strings.Join(pipelineResult.Sources, ", "))

		relevancy := judgeScore(ctx, judge, relevancyPrompt,
			fmt.Sprintf("Query: %s\n\nRetrieved Context:\n%s", item.Query, retrievedContext))
		groundedness := judgeScore(ctx, judge, groundednessPrompt,
			fmt.Sprintf("Context:\n%s\n\nGenerated Answer:\n%s", retrievedContext, pipelineResult.Answer))

		results = append(results, evalResult{
			Query:                 item.Query,
			ExpectedRoute:         item.ExpectedRoute,
			ActualRoute:           pipelineResult.RouteDecision,
			RouteCorrect:          pipelineResult.RouteDecision == item.ExpectedRoute,
			RelevancyScore:        relevancy.Score,
			RelevancyReasoning:    relevancy.Reasoning,
			GroundednessScore:     groundedness.Score,
			GroundednessReasoning: groundedness.Reasoning,
			LatencyMs:             pipelineResult.LatencyMs,
		})

		time.Sleep(1 * time.Second) // Rate limit respect
	}

	printAndSaveSummary(results, len(items), *outFile)
}

func invokePipeline(url, query string) (*dto.InvokeResponse, error) {
	payload, err := json.Marshal(dto.InvokeRequest{Query: query})
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("pipeline request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pipeline returned status %d", resp.StatusCode)
	}

	var result dto.InvokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode pipeline response: %w", err)
	}
	return &result, nil
}

// judgeScore asks the judge LLM for a JSON-object verdict, falling back to
// score 0 when the response fails to parse.
func judgeScore(ctx context.Context, judge llm.Provider, system, prompt string) judgement {
	response, err := judge.Generate(ctx, system, prompt,
		llm.WithTemperature(0), llm.WithMaxTokens(200))
	if err != nil {
		return judgement{Score: 0, Reasoning: fmt.Sprintf("Judge call failed: %v", err)}
	}

	var j judgement
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &j); err != nil {
		return judgement{Score: 0, Reasoning: fmt.Sprintf("Failed to parse judge response: %s", response)}
	}
	return j
}

func printAndSaveSummary(results []evalResult, totalQueries int, outFile string) {
	var valid []evalResult
	for _, r := range results {
		if r.Error == "" {
			valid = append(valid, r)
		}
	}

	var avgRelevancy, avgGroundedness, routeAccuracy, avgLatency float64
	if len(valid) > 0 {
		correct := 0
		for _, r := range valid {
			avgRelevancy += float64(r.RelevancyScore)
			avgGroundedness += float64(r.GroundednessScore)
			avgLatency += r.LatencyMs
			if r.RouteCorrect {
				correct++
			}
		}
		n := float64(len(valid))
		avgRelevancy /= n
		avgGroundedness /= n
		avgLatency /= n
		routeAccuracy = float64(correct) / n

		fmt.Println()
		color.Cyan("📊 EVALUATION RESULTS")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Printf("  Queries evaluated:     %d\n", len(valid))
		fmt.Printf("  Avg Relevancy:         %.1f/5\n", avgRelevancy)
		fmt.Printf("  Avg Groundedness:      %.1f/5\n", avgGroundedness)
		fmt.Printf("  Route Accuracy:        %.0f%%\n", routeAccuracy*100)
		fmt.Printf("  Avg Latency:           %.0fms\n", avgLatency)
		fmt.Println(strings.Repeat("=", 50))
	}

	report := map[string]any{
		"summary": map[string]any{
			"total_queries":    totalQueries,
			"successful":       len(valid),
			"avg_relevancy":    round2(avgRelevancy),
			"avg_groundedness": round2(avgGroundedness),
			"route_accuracy":   round2(routeAccuracy),
		},
		"details": results,
	}

	if err := os.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
		color.Red("❌ Failed to create output dir: %v", err)
		os.Exit(1)
	}
	data, _ := json.MarshalIndent(report, "", "  ")
	if err := os.WriteFile(outFile, data, 0o644); err != nil {
		color.Red("❌ Failed to write results: %v", err)
		os.Exit(1)
	}
	fmt.Printf("📁 Detailed results saved to %s\n", outFile)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
