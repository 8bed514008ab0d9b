// Package api provides the HTTP API for the observation EDR service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/metobs/metobs-edr/internal/api/handler"
	"github.com/metobs/metobs-edr/internal/api/middleware"
	"github.com/metobs/metobs-edr/internal/catalog"
	"github.com/metobs/metobs-edr/internal/edr"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	Logger       zerolog.Logger
	Metrics      *middleware.Metrics
	Catalog      catalog.Repository
	Assembler    *edr.Assembler
	Extents      *edr.ExtentCalculator
	Collection   *edr.CollectionBuilder
	Capabilities handler.CapabilitiesConfig
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(chimiddleware.Compress(5))       // Response compression
	r.Use(middleware.SecurityHeaders)      // Security headers

	capabilitiesHandler := handler.NewCapabilitiesHandler(cfg.Capabilities)
	collectionHandler := handler.NewCollectionHandler(cfg.Collection, cfg.Logger)
	observationsHandler := handler.NewObservationsHandler(handler.ObservationsConfig{
		Catalog:      cfg.Catalog,
		Assembler:    cfg.Assembler,
		Extents:      cfg.Extents,
		CollectionID: cfg.Collection.Config().ID,
		Logger:       cfg.Logger,
	})

	metadataRateLimit := middleware.RateLimitByIP(middleware.MetadataRateLimit) // 120 req/min
	dataRateLimit := middleware.RateLimitByIP(middleware.DataQueryRateLimit)   // 60 req/min

	// Capability endpoints
	r.Get("/health", capabilitiesHandler.Health)
	r.With(metadataRateLimit).Get("/", capabilitiesHandler.LandingPage)
	r.With(metadataRateLimit).Get("/conformance", capabilitiesHandler.Conformance)

	// Collection metadata and data queries
	r.Route("/collections", func(r chi.Router) {
		r.With(metadataRateLimit).Get("/", collectionHandler.ListCollections)
		r.Route("/{collectionId}", func(r chi.Router) {
			r.With(metadataRateLimit).Get("/", collectionHandler.GetCollection)
			r.Route("/locations", func(r chi.Router) {
				r.Use(dataRateLimit)
				r.Get("/", observationsHandler.ListLocations)
				r.Get("/{locationId}", observationsHandler.GetLocation)
			})
			r.With(dataRateLimit).Get("/area", observationsHandler.GetArea)
		})
	})

	return r
}
