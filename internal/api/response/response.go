// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/metobs/metobs-edr/internal/api/middleware"
	"github.com/metobs/metobs-edr/internal/api/models"
	"github.com/metobs/metobs-edr/internal/catalog"
	"github.com/metobs/metobs-edr/internal/edr"
)

// Media types served by the API.
const (
	MediaTypeJSON         = "application/json"
	MediaTypeCoverageJSON = "application/prs.coverage+json"
	MediaTypeGeoJSON      = "application/geo+json"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	write(w, r, status, MediaTypeJSON, data)
}

// CoverageJSON writes a 200 response with the CoverageJSON media type.
func CoverageJSON(w http.ResponseWriter, r *http.Request, data interface{}) {
	write(w, r, http.StatusOK, MediaTypeCoverageJSON, data)
}

// GeoJSON writes a 200 response with the GeoJSON media type.
func GeoJSON(w http.ResponseWriter, r *http.Request, data interface{}) {
	write(w, r, http.StatusOK, MediaTypeGeoJSON, data)
}

// write writes a response with the given media type.
// Includes X-Request-Id header for correlation.
func write(w http.ResponseWriter, r *http.Request, status int, mediaType string, data interface{}) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a Problem+JSON error response.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail))
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound(middleware.GetRequestID(r.Context()), detail))
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewInternalError(middleware.GetRequestID(r.Context()), detail))
}

// ServiceUnavailable writes a 503 Service Unavailable error response.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewServiceUnavailable(middleware.GetRequestID(r.Context()), detail))
}

// EngineError translates an engine error into the corresponding problem
// response. Client-input errors map to 4xx; an empty catalog means the
// service cannot report a valid collection.
func EngineError(w http.ResponseWriter, r *http.Request, err error) {
	var unknownParams *edr.UnknownParametersError

	switch {
	case errors.Is(err, edr.ErrUnknownLocation), errors.Is(err, catalog.ErrStationNotFound):
		NotFound(w, r, "Location not found")
	case errors.As(err, &unknownParams),
		errors.Is(err, edr.ErrInvalidInterval),
		errors.Is(err, edr.ErrNoDataInWindow):
		BadRequest(w, r, err.Error())
	case errors.Is(err, edr.ErrEmptyCatalog):
		ServiceUnavailable(w, r, err.Error())
	default:
		InternalError(w, r, "an unexpected error occurred")
	}
}
