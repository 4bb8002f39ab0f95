// Package main provides the entrypoint for the MommyShops API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ArielSanroj/mommyshops-sub003/internal/api"
	"github.com/ArielSanroj/mommyshops-sub003/internal/api/middleware"
	"github.com/ArielSanroj/mommyshops-sub003/internal/ingredient"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/fda"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/ollama"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/pubchem"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
	"github.com/ArielSanroj/mommyshops-sub003/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "mommyshops-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting MommyShops API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"
	sampleRatio, _ := strconv.ParseFloat(os.Getenv("OTEL_SAMPLE_RATIO"), 64)

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		SampleRatio:    sampleRatio,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	breakerMetrics, err := middleware.NewBreakerMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize breaker metrics")
		os.Exit(1)
	}

	// Resilient call layer shared by all provider clients. Every state
	// transition is counted so breaker flapping shows up in dashboards.
	resilient := resilience.New(resilience.Config{
		Logger: log,
		OnStateChange: func(operation string, from, to resilience.State) {
			breakerMetrics.RecordTransition(operation, from.String(), to.String())
		},
	})

	// The LLM is slow and local, so give it fewer, slower retries than
	// the public data APIs.
	resilient.Configure(ollama.OperationName, nil, &resilience.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   2 * time.Second,
		MaxDelay:    time.Minute,
		Strategy:    resilience.StrategyFixed,
		Jitter:      true,
	})

	// Initialize provider clients
	fdaClient := fda.NewClient(fda.ClientConfig{
		BaseURL:    os.Getenv("FDA_BASE_URL"),
		APIKey:     os.Getenv("FDA_API_KEY"),
		HTTPClient: resilience.NewHTTPClient(resilience.HTTPClientConfig{Operation: fda.OperationName, Client: resilient}),
	})
	pubchemClient := pubchem.NewClient(pubchem.ClientConfig{
		BaseURL:    os.Getenv("PUBCHEM_BASE_URL"),
		HTTPClient: resilience.NewHTTPClient(resilience.HTTPClientConfig{Operation: pubchem.OperationName, Client: resilient}),
	})
	ollamaClient := ollama.NewClient(ollama.ClientConfig{
		BaseURL:    os.Getenv("OLLAMA_BASE_URL"),
		Model:      os.Getenv("OLLAMA_MODEL"),
		HTTPClient: resilience.NewHTTPClient(resilience.HTTPClientConfig{Operation: ollama.OperationName, Client: resilient, Timeout: 90 * time.Second}),
	})
	log.Info().Msg("provider clients initialized")

	// Initialize ingredient analysis service
	ingredientService := ingredient.NewService(ingredient.ServiceConfig{
		Compounds:  pubchemClient,
		Recalls:    fdaClient,
		Summarizer: ollamaClient,
		Logger:     log,
	})
	log.Info().Msg("ingredient service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		ResilientClient: resilient,
		Ingredients:     ingredientService,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
