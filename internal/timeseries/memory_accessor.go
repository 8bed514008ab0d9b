package timeseries

import (
	"context"
	"sync"
)

// MemoryAccessor is an in-memory implementation of Accessor.
// This is intended for testing. Production should use PostgresAccessor.
type MemoryAccessor struct {
	mu     sync.RWMutex
	series map[string][]Point
}

// NewMemoryAccessor creates a new in-memory time series accessor.
func NewMemoryAccessor() *MemoryAccessor {
	return &MemoryAccessor{
		series: make(map[string][]Point),
	}
}

// SetSeries stores a series for a station and variable. Points must already be
// in ascending timestamp order.
func (a *MemoryAccessor) SetSeries(stationID, variableID string, points []Point) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.series[stationID+":"+variableID] = points
}

// ReadSeries returns the stored series for a station and variable. An unknown
// station+variable pair yields an empty series.
func (a *MemoryAccessor) ReadSeries(ctx context.Context, stationID, variableID string) ([]Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	points := a.series[stationID+":"+variableID]
	out := make([]Point, len(points))
	copy(out, points)
	return out, nil
}
