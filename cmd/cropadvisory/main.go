// Cropadvisory is the backend for the Smart Crop Advisory app. It forwards
// farmer queries and voice notes to OpenAI and returns advice or transcripts.
//
// Usage:
//
//	cropadvisory [flags]
//	cropadvisory --config /path/to/cropadvisory.yaml
//
// @title       Smart Crop Advisory API
// @version     1.0
// @description Proxy that forwards farmer queries and voice notes to a hosted language model.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/smartcrop/cropadvisory/internal/advisory"
	"github.com/smartcrop/cropadvisory/internal/config"
	"github.com/smartcrop/cropadvisory/internal/health"
	httptransport "github.com/smartcrop/cropadvisory/internal/transport/http"
	openaiupstream "github.com/smartcrop/cropadvisory/internal/upstream/openai"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/cropadvisory.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cropadvisory %s\n", version)
		os.Exit(0)
	}

	// Load configuration. A missing API key stops the process here.
	cfg, err := config.Load(*configFile)
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			slog.Error("refusing to start without an OpenAI credential", "error", err)
		} else {
			slog.Error("failed to load configuration", "error", err)
		}
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("cropadvisory starting", "version", version)

	origins := cfg.CORS.Origins()
	if len(origins) == 0 {
		slog.Warn("ALLOWED_ORIGINS is empty, accepting requests from any origin")
	}

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One upstream client for the whole process, shared by every request.
	client := openaiupstream.New(cfg.OpenAI)
	defer client.Close()
	slog.Info("using OpenAI upstream",
		"completion_model", cfg.OpenAI.CompletionModel,
		"transcription_model", cfg.OpenAI.TranscriptionModel)

	svc := advisory.NewService(client, advisory.Options{
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		TempDir:     cfg.Transcription.TempDir,
	})

	api := httptransport.New(svc, httptransport.Options{
		Port:           cfg.Server.Port,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AllowedOrigins: origins,
	})

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, cfg.Server.GRPCHealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("starting transport", "name", api.Name())
		if err := api.Listen(ctx); err != nil {
			slog.Error("transport failed", "name", api.Name(), "error", err)
			cancel()
		}
	}()

	healthServer.SetReady(true)
	slog.Info("cropadvisory ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	if err := api.Close(); err != nil {
		slog.Error("transport close error", "name", api.Name(), "error", err)
	}

	wg.Wait()
	slog.Info("cropadvisory stopped")
}
