// Package main provides the entrypoint for the observation EDR API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/metobs/metobs-edr/internal/api"
	"github.com/metobs/metobs-edr/internal/api/handler"
	"github.com/metobs/metobs-edr/internal/api/middleware"
	"github.com/metobs/metobs-edr/internal/catalog"
	"github.com/metobs/metobs-edr/internal/database"
	"github.com/metobs/metobs-edr/internal/edr"
	"github.com/metobs/metobs-edr/internal/telemetry"
	"github.com/metobs/metobs-edr/internal/timeseries"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "metobs-edr-api"

	// Optional .env for local development
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting observation EDR API")

	port := envOrDefault("APP_PORT", "8080")
	env := envOrDefault("APP_ENV", "development")
	otlpEndpoint := envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
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

	// Connect to the observation database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	catalogRepo := catalog.NewPostgresRepository(pool)
	seriesAccessor := timeseries.NewPostgresAccessor(pool)

	// The temporal extent is a declared collection property of the
	// deployment, not derived from the series themselves
	temporal, err := temporalExtentFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid temporal extent configuration")
	}

	extents := edr.NewExtentCalculator(edr.ExtentConfig{
		Catalog:  catalogRepo,
		Temporal: temporal,
		Logger:   log,
	})

	// An empty catalog must prevent the service from reporting a valid
	// collection, so the extent is computed (and memoized) up front
	spatial, err := extents.SpatialExtent(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compute spatial extent")
	}
	log.Info().
		Float64("min_lon", spatial.MinLon).
		Float64("min_lat", spatial.MinLat).
		Float64("max_lon", spatial.MaxLon).
		Float64("max_lat", spatial.MaxLat).
		Str("temporal", temporal.RepeatExpression()).
		Msg("collection extents ready")

	assembler := edr.NewAssembler(edr.AssemblerConfig{
		Catalog: catalogRepo,
		Series:  seriesAccessor,
		Logger:  log,
	})

	collectionConfig := edr.CollectionConfig{
		ID:          envOrDefault("COLLECTION_ID", "observations"),
		Title:       envOrDefault("COLLECTION_TITLE", "Daily in-situ meteorological observations"),
		Description: envOrDefault("COLLECTION_DESCRIPTION", "Validated daily weather station observations"),
		Keywords:    []string{"Weather", "Temperature", "Wind", "Humidity", "Pressure", "Clouds", "Radiation"},
	}
	collectionBuilder := edr.NewCollectionBuilder(catalogRepo, extents, collectionConfig)
	log.Info().Str("collection_id", collectionConfig.ID).Msg("collection metadata builder initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:    Version,
		Logger:     log,
		Metrics:    metrics,
		Catalog:    catalogRepo,
		Assembler:  assembler,
		Extents:    extents,
		Collection: collectionBuilder,
		Capabilities: handler.CapabilitiesConfig{
			Version:      Version,
			Title:        collectionConfig.Title,
			Description:  collectionConfig.Description,
			Keywords:     collectionConfig.Keywords,
			ProviderName: envOrDefault("PROVIDER_NAME", "MetObs"),
			ProviderURL:  os.Getenv("PROVIDER_URL"),
			ContactEmail: os.Getenv("CONTACT_EMAIL"),
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// temporalExtentFromEnv reads the collection's declared temporal extent.
func temporalExtentFromEnv() (edr.TemporalExtent, error) {
	start, err := time.Parse(time.RFC3339, envOrDefault("COLLECTION_TIME_START", "2024-02-22T00:00:00Z"))
	if err != nil {
		return edr.TemporalExtent{}, err
	}
	end, err := time.Parse(time.RFC3339, envOrDefault("COLLECTION_TIME_END", "2024-02-27T00:00:00Z"))
	if err != nil {
		return edr.TemporalExtent{}, err
	}
	interval, err := time.ParseDuration(envOrDefault("COLLECTION_TIME_INTERVAL", "24h"))
	if err != nil {
		return edr.TemporalExtent{}, err
	}

	extent := edr.TemporalExtent{
		Start:       start,
		End:         end,
		Interval:    interval,
		IntervalISO: envOrDefault("COLLECTION_TIME_INTERVAL_ISO", "P1D"),
	}
	return extent, extent.Validate()
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
