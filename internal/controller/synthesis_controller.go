package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hybrid-knowledge-synthesizer/internal/config"
	"hybrid-knowledge-synthesizer/internal/dto"
	"hybrid-knowledge-synthesizer/internal/pkg/logger"
	"hybrid-knowledge-synthesizer/internal/pkg/serverutils"
	"hybrid-knowledge-synthesizer/pkg/pipeline"
)

const Version = "0.1.0"

type ISynthesisController interface {
	RegisterRoutes(r fiber.Router)
	Invoke(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	Graph(ctx *fiber.Ctx) error
}

type synthesisController struct {
	orchestrator *pipeline.Orchestrator
	cfg          *config.Config
	logger       logger.ILogger
}

func NewSynthesisController(orchestrator *pipeline.Orchestrator, cfg *config.Config, sysLogger logger.ILogger) ISynthesisController {
	return &synthesisController{
		orchestrator: orchestrator,
		cfg:          cfg,
		logger:       sysLogger,
	}
}

func (c *synthesisController) RegisterRoutes(r fiber.Router) {
	r.Post("/invoke", c.Invoke)
	r.Get("/health", c.Health)
	r.Get("/graph", c.Graph)
}

// Invoke executes the full pipeline for one query.
func (c *synthesisController) Invoke(ctx *fiber.Ctx) error {
	var req dto.InvokeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	requestId := uuid.New()
	result := c.orchestrator.Invoke(ctx.Context(), req.Query)

	c.logger.Info("synthesis", "Pipeline completed", map[string]interface{}{
		"request_id": requestId.String(),
		"route":      string(result.RouteDecision),
		"sources":    len(result.Sources),
		"latency_ms": result.LatencyMs,
	})

	return ctx.JSON(dto.InvokeResponse{
		Answer:        result.Answer,
		Sources:       emptyIfNil(result.Sources),
		RouteDecision: string(result.RouteDecision),
		PIIDetected:   result.PIIDetected,
		Errors:        emptyIfNil(result.Errors),
		LatencyMs:     result.LatencyMs,
	})
}

// Health reports per-backend configuration status for load balancers and
// operators.
func (c *synthesisController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:  "healthy",
		Version: Version,
		Services: map[string]string{
			"azure_openai": configuredLabel(c.cfg.AzureOpenAIConfigured()),
			"azure_search": configuredLabel(c.cfg.AzureSearchConfigured()),
			"databricks":   configuredLabel(c.cfg.DatabricksConfigured()),
			"tracing":      enabledLabel(c.cfg.TracingConfigured()),
		},
	})
}

// Graph returns the pipeline structure, for debugging.
func (c *synthesisController) Graph(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.GraphResponse{
		Nodes:       c.orchestrator.NodeNames(),
		Description: "Hybrid Knowledge Synthesizer — Multi-agent RAG pipeline",
	})
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not_configured"
}

func enabledLabel(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}

// emptyIfNil keeps JSON output as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
