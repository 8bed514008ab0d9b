// Package edr implements the EDR query-resolution and coverage-assembly engine.
package edr

import (
	"errors"
	"fmt"
	"strings"
)

// Engine errors. All but ErrEmptyCatalog are client-input errors and map to
// 4xx responses at the HTTP layer.
var (
	// ErrEmptyCatalog means no stations are loaded; the service cannot report
	// a valid collection.
	ErrEmptyCatalog = errors.New("station catalog is empty")

	// ErrUnknownLocation means the requested station id is not in the catalog.
	ErrUnknownLocation = errors.New("location not found")

	// ErrInvalidInterval means the interval end lies before its start.
	ErrInvalidInterval = errors.New("the start datetime must be before end datetime")

	// ErrNoDataInWindow means the query is well-formed but the time window
	// contains zero observations for the anchoring parameter.
	ErrNoDataInWindow = errors.New("no data available in the requested time interval")
)

// UnknownParametersError reports every requested parameter name that is not in
// the available set, not just the first.
type UnknownParametersError struct {
	Names []string
}

func (e *UnknownParametersError) Error() string {
	return fmt.Sprintf("the following parameters are not available: %s", strings.Join(e.Names, ", "))
}
