package server

import (
	"errors"
	"log"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"hybrid-knowledge-synthesizer/internal/bootstrap"
	"hybrid-knowledge-synthesizer/internal/config"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024, // 1MB, queries are small
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(cors.New())

	// Panics escaping the pipeline are the sole fatal case; map them to 500.
	app.Use(recover.New())

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	logStartupStatus(s.cfg)
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.SynthesisController.RegisterRoutes(app)
}

// errorHandler maps fiber errors to their status and anything else to a
// generic 500, mirroring the response shape {"detail": "..."}.
func errorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return ctx.Status(code).JSON(fiber.Map{"detail": err.Error()})
}

func logStartupStatus(cfg *config.Config) {
	log.Println("🚀 Hybrid Knowledge Synthesizer starting...")
	log.Printf("  Azure OpenAI: %s", statusLabel(cfg.AzureOpenAIConfigured()))
	log.Printf("  Azure Search: %s", statusLabel(cfg.AzureSearchConfigured()))
	log.Printf("  Databricks:   %s", statusLabel(cfg.DatabricksConfigured()))
	log.Printf("  Tracing:      %s", statusLabel(cfg.TracingConfigured()))
}

func statusLabel(ok bool) string {
	if ok {
		return "✅ configured"
	}
	return "❌ not configured"
}
