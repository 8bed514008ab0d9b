package catalog

import (
	"context"

	"github.com/twpayne/go-geom"
)

// Repository defines read access to the station and variable catalog.
type Repository interface {
	// ListStations returns all stations in the catalog.
	ListStations(ctx context.Context) ([]*Station, error)

	// GetStation returns the station with the given id, or ErrStationNotFound.
	GetStation(ctx context.Context, id string) (*Station, error)

	// ListVariables returns all known variables.
	ListVariables(ctx context.Context) ([]*Variable, error)

	// GetVariable returns the variable with the given id, or ErrVariableNotFound.
	GetVariable(ctx context.Context, id string) (*Variable, error)

	// ListVariablesForStation returns the variables observed at a station,
	// or ErrStationNotFound if the station is unknown.
	ListVariablesForStation(ctx context.Context, stationID string) ([]*Variable, error)

	// StationsWithin returns all stations whose point lies within the polygon.
	StationsWithin(ctx context.Context, polygon *geom.Polygon) ([]*Station, error)
}
