package main

import (
	"context"
	"log"

	"hybrid-knowledge-synthesizer/internal/bootstrap"
	"hybrid-knowledge-synthesizer/internal/config"
	"hybrid-knowledge-synthesizer/internal/server"
	"hybrid-knowledge-synthesizer/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()

	// 4. Initialize and Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
