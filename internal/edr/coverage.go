package edr

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twpayne/go-geom"
	"golang.org/x/sync/errgroup"

	"github.com/metobs/metobs-edr/internal/catalog"
	"github.com/metobs/metobs-edr/internal/timeseries"
)

// Assembler builds coverages from resolved queries. It is request-scoped in
// effect: it holds no mutable state and is safe for concurrent use.
type Assembler struct {
	catalog catalog.Repository
	series  timeseries.Accessor
	logger  zerolog.Logger
}

// AssemblerConfig holds configuration for the coverage assembler.
type AssemblerConfig struct {
	Catalog catalog.Repository
	Series  timeseries.Accessor
	Logger  zerolog.Logger
}

// NewAssembler creates a new coverage assembler.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	return &Assembler{
		catalog: cfg.Catalog,
		series:  cfg.Series,
		logger:  cfg.Logger,
	}
}

// Assemble builds the coverage for one station over the given parameters and
// time window.
//
// Filtering is inclusive on both bounds. The first parameter's filtered
// timestamps form the authoritative time axis; if that axis is empty the
// assembly fails with ErrNoDataInWindow. Parameters with different sampling
// timestamps are not reconciled: each range carries its own filtered series
// and shape. Parameter fetches run concurrently but ranges are emitted in the
// given parameter order.
func (a *Assembler) Assemble(ctx context.Context, station *catalog.Station, parameterIDs []string, interval Interval) (Coverage, error) {
	if len(parameterIDs) == 0 {
		return Coverage{}, fmt.Errorf("no parameters to assemble for station %s", station.ID)
	}

	filtered := make([][]timeseries.Point, len(parameterIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, parameterID := range parameterIDs {
		g.Go(func() error {
			points, err := a.series.ReadSeries(gctx, station.ID, parameterID)
			if err != nil {
				return fmt.Errorf("read series %s/%s: %w", station.ID, parameterID, err)
			}
			filtered[i] = filterWindow(points, interval)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Coverage{}, err
	}

	// The first requested parameter defines the time axis for the coverage
	anchor := filtered[0]
	if len(anchor) == 0 {
		return Coverage{}, ErrNoDataInWindow
	}

	timeValues := make([]string, len(anchor))
	for i, p := range anchor {
		timeValues[i] = ISO8601(p.Time)
	}

	ranges := NewOrderedMap[NdArray]()
	for i, parameterID := range parameterIDs {
		values := make([]*float64, len(filtered[i]))
		for j, p := range filtered[i] {
			values[j] = p.Value
		}
		ranges.Set(parameterID, NdArray{
			Type:      TypeNdArray,
			DataType:  "float",
			AxisNames: []string{"t", "y", "x"},
			Shape:     []int{len(values), 1, 1},
			Values:    values,
		})
	}

	return Coverage{
		Type: TypeCoverage,
		Domain: Domain{
			Type:       TypeDomain,
			DomainType: DomainTypePointSeries,
			Axes: Axes{
				X: NumericAxis{Values: []float64{station.Lon}},
				Y: NumericAxis{Values: []float64{station.Lat}},
				T: &TimeAxis{Values: timeValues},
			},
		},
		Ranges:     ranges,
		LocationID: station.ID,
	}, nil
}

// AssembleArea builds one coverage per station intersecting the polygon.
// Stations with no data in the window are skipped; if every station in the
// polygon is empty (or the polygon contains no stations) the assembly fails
// with ErrNoDataInWindow. Each station-level coverage follows the same rules
// as the point case.
func (a *Assembler) AssembleArea(ctx context.Context, polygon *geom.Polygon, parameterIDs []string, interval Interval) ([]Coverage, error) {
	stations, err := a.catalog.StationsWithin(ctx, polygon)
	if err != nil {
		return nil, fmt.Errorf("resolve stations within geometry: %w", err)
	}

	var coverages []Coverage
	for _, station := range stations {
		coverage, err := a.Assemble(ctx, station, parameterIDs, interval)
		if err != nil {
			if errors.Is(err, ErrNoDataInWindow) {
				a.logger.Debug().
					Str("station_id", station.ID).
					Msg("skipping station with no data in window")
				continue
			}
			return nil, err
		}
		coverages = append(coverages, coverage)
	}

	if len(coverages) == 0 {
		return nil, ErrNoDataInWindow
	}
	return coverages, nil
}

// filterWindow returns the points with start <= t <= end. Inclusive on both
// bounds; a point exactly at either bound is included.
func filterWindow(points []timeseries.Point, interval Interval) []timeseries.Point {
	var out []timeseries.Point
	for _, p := range points {
		if p.Time.Before(interval.Start) || p.Time.After(interval.End) {
			continue
		}
		out = append(out, p)
	}
	return out
}
