package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"yai.app/assessment-assistant/internal/api"
	"yai.app/assessment-assistant/internal/assessment"
	"yai.app/assessment-assistant/internal/config"
	"yai.app/assessment-assistant/internal/core"
	"yai.app/assessment-assistant/internal/logging"
	"yai.app/assessment-assistant/internal/store"
	"yai.app/assessment-assistant/internal/telemetry"
)

// Gemini's free tier allows roughly 100 embedding requests per minute.
const ingestInterval = 700 * time.Millisecond

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Command line flag for knowledge ingestion
	ingestFlag := flag.Bool("ingest", false, "Embed the personality and conflict-style knowledge base and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	if !cfg.DotEnvLoaded {
		logger.Info("No .env file found, relying on environment variables")
	}

	if err := run(cfg, logger, *ingestFlag); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, ingest bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbStore.Close()

	var llmService *core.LLMService
	if cfg.AssistantEnabled() {
		llmService, err = core.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.ChatModel, cfg.EmbeddingModel, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize LLM service: %w", err)
		}
		defer llmService.Close()
	}

	if ingest {
		if llmService == nil {
			return fmt.Errorf("knowledge ingestion needs GEMINI_API_KEY")
		}
		logger.Info("Starting knowledge ingestion")
		n, err := dbStore.IngestKnowledge(ctx, assessment.KnowledgeDocuments(), llmService.GetEmbedding, ingestInterval)
		if err != nil {
			return fmt.Errorf("knowledge ingestion failed: %w", err)
		}
		logger.Info("Knowledge ingestion complete. Exiting.", zap.Int("chunks", n))
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promSink, err := telemetry.NewPrometheusSink(cfg.MetricsNamespace, registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	harness := telemetry.New(logger,
		telemetry.WithSinks(dbStore, promSink, telemetry.NewLogSink(logger)),
		telemetry.WithBufferSize(cfg.TelemetryBuffer),
	)
	harness.Init()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := harness.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown incomplete", zap.Error(err))
		}
	}()
	defer harness.Recover("main")

	assistant := core.NewAssistantService(nil, nil, logger)
	if llmService != nil {
		ragService, err := core.NewRAGService(ctx, dbStore, llmService.GetEmbedding, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RAG service: %w", err)
		}
		assistant = core.NewAssistantService(llmService, ragService, logger)
	} else {
		logger.Info("GEMINI_API_KEY not set, assistant route returns the stub reply")
	}

	apiHandler := api.NewAPIHandler(assistant, harness, dbStore, logger)
	router := api.NewRouter(apiHandler, api.RouterOptions{
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	harness.Go("http server", func() error {
		defer close(serveErr)
		logger.Info("Starting server. Press Ctrl+C to quit.", zap.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("could not listen on %s: %w", serverAddr, err)
			serveErr <- err
			return err
		}
		return nil
	})

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting gracefully")
	return nil
}
