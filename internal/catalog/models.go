// Package catalog provides read-only access to the station and variable catalog.
package catalog

import "errors"

// Catalog errors.
var (
	ErrStationNotFound  = errors.New("station not found")
	ErrVariableNotFound = errors.New("variable not found")
)

// Station represents a fixed observation point. Stations are immutable once
// loaded from the catalog.
type Station struct {
	// ID is the stable station identifier (WIGOS station identifier).
	ID string

	// Name is the human-readable station name.
	Name string

	// Lat and Lon are the station coordinates in EPSG:4326.
	Lat float64
	Lon float64

	// Height is the station elevation in meters above mean sea level.
	Height float64

	// VariableIDs lists the ids of variables observed at this station.
	VariableIDs []string
}

// HasVariable reports whether the station observes the given variable.
func (s *Station) HasVariable(variableID string) bool {
	for _, id := range s.VariableIDs {
		if id == variableID {
			return true
		}
	}
	return false
}

// Variable represents a measurable quantity observed at stations.
type Variable struct {
	// ID is the short variable code (e.g. "ff", "dd").
	ID string

	// LongName is the descriptive name.
	LongName string

	// StandardName is the CF standard name, if any.
	StandardName string

	// Unit is the unit of measure symbol.
	Unit string

	// Comment holds optional level/category metadata.
	Comment string
}
