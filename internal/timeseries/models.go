// Package timeseries provides read-only access to station observation series.
package timeseries

import (
	"context"
	"time"
)

// Point is a single observation in a station+variable series. A nil Value is
// an explicitly absent observation, distinct from the point not existing.
type Point struct {
	Time  time.Time
	Value *float64
}

// Accessor defines read access to observation time series. Implementations
// must return points in strictly ascending timestamp order with no duplicates.
type Accessor interface {
	// ReadSeries returns the full series for a station and variable.
	ReadSeries(ctx context.Context, stationID, variableID string) ([]Point, error)
}
