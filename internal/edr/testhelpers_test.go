package edr_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/metobs/metobs-edr/internal/catalog"
	"github.com/metobs/metobs-edr/internal/edr"
	"github.com/metobs/metobs-edr/internal/timeseries"
)

func testStations() []*catalog.Station {
	return []*catalog.Station{
		{
			ID:          "0-20000-0-06260",
			Name:        "De Bilt",
			Lat:         52.0,
			Lon:         5.0,
			VariableIDs: []string{"DDVEC", "FG"},
		},
		{
			ID:          "0-20000-0-06209",
			Name:        "IJmond",
			Lat:         52.1,
			Lon:         6.0,
			VariableIDs: []string{"FG"},
		},
	}
}

func testVariables() []*catalog.Variable {
	return []*catalog.Variable{
		{ID: "FG", LongName: "Daily mean wind speed", StandardName: "wind_speed", Unit: "m s-1"},
		{ID: "DDVEC", LongName: "Vector mean wind direction", StandardName: "wind_from_direction", Unit: "degree"},
	}
}

func testTemporalExtent() edr.TemporalExtent {
	return edr.TemporalExtent{
		Start:       time.Date(2024, 2, 22, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC),
		Interval:    24 * time.Hour,
		IntervalISO: "P1D",
	}
}

func newTestCatalog() *catalog.SnapshotRepository {
	return catalog.NewSnapshotRepository(testStations(), testVariables())
}

// countingCatalog wraps a Repository and counts ListStations calls, to
// observe extent memoization.
type countingCatalog struct {
	catalog.Repository
	listCalls atomic.Int64
}

func (c *countingCatalog) ListStations(ctx context.Context) ([]*catalog.Station, error) {
	c.listCalls.Add(1)
	return c.Repository.ListStations(ctx)
}

func ptr(v float64) *float64 {
	return &v
}

func seriesAt(day time.Time, hours []int, values []*float64) []timeseries.Point {
	points := make([]timeseries.Point, len(hours))
	for i, h := range hours {
		points[i] = timeseries.Point{Time: day.Add(time.Duration(h) * time.Hour), Value: values[i]}
	}
	return points
}
