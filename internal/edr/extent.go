package edr

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/metobs/metobs-edr/internal/catalog"
)

// SpatialExtent is the bounding box over all station coordinates.
type SpatialExtent struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// TemporalExtent is the collection's declared time coverage. The nominal
// sampling interval is a collection property of the deployment, not derived
// from the series themselves (series may have gaps).
type TemporalExtent struct {
	Start time.Time
	End   time.Time

	// Interval is the nominal sampling interval.
	Interval time.Duration

	// IntervalISO is the interval as an ISO 8601 duration (e.g. "P1D").
	IntervalISO string
}

// Validate checks the extent invariants.
func (e TemporalExtent) Validate() error {
	if e.End.Before(e.Start) {
		return fmt.Errorf("temporal extent end %s before start %s", e.End, e.Start)
	}
	if e.Interval <= 0 {
		return fmt.Errorf("temporal extent interval must be positive, got %s", e.Interval)
	}
	return nil
}

// RepeatCount returns the number of points a fully-populated series would
// have: floor((end-start)/interval) + 1. This is a metadata hint, not
// validated against actual data completeness.
func (e TemporalExtent) RepeatCount() int {
	return int(e.End.Sub(e.Start)/e.Interval) + 1
}

// RepeatExpression renders the extent as an interval-repetition expression:
// "R{count}/{ISO 8601 start}/{ISO 8601 duration}".
func (e TemporalExtent) RepeatExpression() string {
	return fmt.Sprintf("R%d/%s/%s", e.RepeatCount(), ISO8601(e.Start), e.IntervalISO)
}

// ExtentCalculator derives collection-wide extents from the station catalog.
//
// The spatial extent is memoized: the catalog is treated as static per
// process lifetime, so the fold over station coordinates runs once.
// Invalidate drops the cached value after a catalog reload.
type ExtentCalculator struct {
	catalog  catalog.Repository
	temporal TemporalExtent
	logger   zerolog.Logger

	mu      sync.RWMutex
	spatial *SpatialExtent
}

// ExtentConfig holds configuration for the extent calculator.
type ExtentConfig struct {
	Catalog  catalog.Repository
	Temporal TemporalExtent
	Logger   zerolog.Logger
}

// NewExtentCalculator creates a new extent calculator.
func NewExtentCalculator(cfg ExtentConfig) *ExtentCalculator {
	return &ExtentCalculator{
		catalog:  cfg.Catalog,
		temporal: cfg.Temporal,
		logger:   cfg.Logger,
	}
}

// TemporalExtent returns the declared temporal extent.
func (c *ExtentCalculator) TemporalExtent() TemporalExtent {
	return c.temporal
}

// SpatialExtent returns the bounding box over all station coordinates.
// An empty catalog is an error, not a degenerate extent.
func (c *ExtentCalculator) SpatialExtent(ctx context.Context) (SpatialExtent, error) {
	c.mu.RLock()
	if c.spatial != nil {
		extent := *c.spatial
		c.mu.RUnlock()
		return extent, nil
	}
	c.mu.RUnlock()

	return c.computeSpatialExtent(ctx)
}

// Invalidate drops the memoized spatial extent. Call after the catalog
// signals a reload.
func (c *ExtentCalculator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spatial = nil
}

func (c *ExtentCalculator) computeSpatialExtent(ctx context.Context) (SpatialExtent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have computed it while we waited
	if c.spatial != nil {
		return *c.spatial, nil
	}

	stations, err := c.catalog.ListStations(ctx)
	if err != nil {
		return SpatialExtent{}, fmt.Errorf("list stations: %w", err)
	}
	if len(stations) == 0 {
		return SpatialExtent{}, ErrEmptyCatalog
	}

	extent := SpatialExtent{
		MinLon: stations[0].Lon,
		MinLat: stations[0].Lat,
		MaxLon: stations[0].Lon,
		MaxLat: stations[0].Lat,
	}
	for _, s := range stations[1:] {
		if s.Lon < extent.MinLon {
			extent.MinLon = s.Lon
		}
		if s.Lon > extent.MaxLon {
			extent.MaxLon = s.Lon
		}
		if s.Lat < extent.MinLat {
			extent.MinLat = s.Lat
		}
		if s.Lat > extent.MaxLat {
			extent.MaxLat = s.Lat
		}
	}

	c.spatial = &extent
	c.logger.Debug().
		Int("stations", len(stations)).
		Float64("min_lon", extent.MinLon).
		Float64("min_lat", extent.MinLat).
		Float64("max_lon", extent.MaxLon).
		Float64("max_lat", extent.MaxLat).
		Msg("spatial extent computed")

	return extent, nil
}
