package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pad-lab/infrastructure/ws"
	"pad-lab/internal"
	"pad-lab/observability"
	"pad-lab/runtime"
	"pad-lab/runtime/workers"
	"pad-lab/services"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the websocket server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup Supervision & Orchestration
	monitoring := observability.NewMonitoringManager()
	sup := workers.NewSupervisor(log)
	registry := runtime.NewRegistry()
	hub := runtime.NewHub(log, monitoring)

	orchestrator := runtime.NewOrchestrator(
		log, sup, registry, hub, monitoring, config.CommandBufferSize,
	)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start the Engine
	if err := orchestrator.Start(ctx, config.TelemetryInterval); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}
	defer orchestrator.Stop()

	// 5. Websocket Server
	padService := services.NewPadService(log, orchestrator)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := ws.NewServer(log, padService, address,
		config.ConnectionBufferSize, config.WriteTimeout)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	log.Info("Shutdown complete")
	return nil
}
