package bootstrap

import (
	"log"
	"time"

	"hybrid-knowledge-synthesizer/internal/config"
	"hybrid-knowledge-synthesizer/internal/controller"
	"hybrid-knowledge-synthesizer/internal/pkg/logger"
	"hybrid-knowledge-synthesizer/pkg/embedding"
	embeddingazure "hybrid-knowledge-synthesizer/pkg/embedding/azureopenai"
	"hybrid-knowledge-synthesizer/pkg/llm"
	llmazure "hybrid-knowledge-synthesizer/pkg/llm/azureopenai"
	"hybrid-knowledge-synthesizer/pkg/pipeline"
	"hybrid-knowledge-synthesizer/pkg/search/azuresearch"
	"hybrid-knowledge-synthesizer/pkg/search/databricks"
)

type Container struct {
	SynthesisController controller.ISynthesisController
	Orchestrator        *pipeline.Orchestrator
	Logger              logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipeLogger := log.Default()

	// 2. Backend Clients
	// Unconfigured backends stay nil: the pipeline stages resolve that to
	// safe defaults and substitute data rather than failing at startup.
	var llmProvider llm.Provider
	var embedder embedding.Provider
	if cfg.AzureOpenAIConfigured() {
		llmProvider = llmazure.NewProvider(
			cfg.AzureOpenAI.Endpoint,
			cfg.AzureOpenAI.APIKey,
			cfg.AzureOpenAI.DeploymentName,
			cfg.AzureOpenAI.APIVersion,
		)
		embedder = embeddingazure.NewProvider(
			cfg.AzureOpenAI.Endpoint,
			cfg.AzureOpenAI.APIKey,
			cfg.AzureOpenAI.EmbeddingDeployment,
			cfg.AzureOpenAI.APIVersion,
			cfg.App.EmbeddingDimensions,
		)
		log.Printf("[INFO] Using Generation Backend: Azure OpenAI (%s)", cfg.AzureOpenAI.DeploymentName)
	} else {
		log.Printf("[INFO] Azure OpenAI not configured; router and synthesizer use safe defaults")
	}

	var databricksClient *databricks.Client
	if cfg.DatabricksConfigured() {
		databricksClient = databricks.NewClient(
			cfg.Databricks.Host,
			cfg.Databricks.Token,
			cfg.Databricks.VSIndexName,
			time.Duration(cfg.Databricks.TimeoutSeconds)*time.Second,
		)
		log.Printf("[INFO] Using Engineering Docs Backend: Databricks (%s)", cfg.Databricks.VSIndexName)
	} else {
		log.Printf("[INFO] Databricks not configured; Silo A serves mock data")
	}

	var azureSearchClient *azuresearch.Client
	if cfg.AzureSearchConfigured() {
		azureSearchClient = azuresearch.NewClient(
			cfg.AzureSearch.Endpoint,
			cfg.AzureSearch.APIKey,
			cfg.AzureSearch.IndexName,
			30*time.Second,
		)
		log.Printf("[INFO] Using Patents Backend: Azure AI Search (%s)", cfg.AzureSearch.IndexName)
	} else {
		log.Printf("[INFO] Azure AI Search not configured; Silo B serves mock data")
	}

	// 3. Pipeline
	siloA := pipeline.NewSiloAAgent(pipeline.NewEngineeringDocsBackend(databricksClient), pipeLogger)
	siloB := pipeline.NewSiloBAgent(pipeline.NewPatentsBackend(azureSearchClient, embedder), pipeLogger)

	orchestrator := pipeline.NewOrchestrator(
		pipeline.NewPIIFilter(pipeLogger),
		pipeline.NewRouter(llmProvider, pipeLogger),
		siloA,
		siloB,
		pipeline.NewSynthesizer(llmProvider, pipeLogger),
		pipeLogger,
	)

	// 4. Controllers
	return &Container{
		SynthesisController: controller.NewSynthesisController(orchestrator, cfg, sysLogger),
		Orchestrator:        orchestrator,
		Logger:              sysLogger,
	}
}
