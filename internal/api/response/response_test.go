package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metobs/metobs-edr/internal/api/response"
	"github.com/metobs/metobs-edr/internal/catalog"
	"github.com/metobs/metobs-edr/internal/edr"
)

func TestEngineError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "station not found", err: catalog.ErrStationNotFound, wantStatus: http.StatusNotFound},
		{name: "unknown location", err: edr.ErrUnknownLocation, wantStatus: http.StatusNotFound},
		{name: "unknown parameters", err: &edr.UnknownParametersError{Names: []string{"NOPE"}}, wantStatus: http.StatusBadRequest},
		{name: "invalid interval", err: edr.ErrInvalidInterval, wantStatus: http.StatusBadRequest},
		{name: "no data in window", err: edr.ErrNoDataInWindow, wantStatus: http.StatusBadRequest},
		{name: "empty catalog", err: edr.ErrEmptyCatalog, wantStatus: http.StatusServiceUnavailable},
		{name: "anything else", err: errors.New("pool exhausted"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.EngineError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestEngineError_WrappedErrorsMap(t *testing.T) {
	wrapped := errors.Join(errors.New("resolve datetime"), edr.ErrInvalidInterval)

	rec := httptest.NewRecorder()
	response.EngineError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), wrapped)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEngineError_InternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	response.EngineError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("password in dsn"))

	var problem struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "an unexpected error occurred", problem.Detail)
}

func TestCoverageJSON_ContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	response.CoverageJSON(rec, httptest.NewRequest(http.MethodGet, "/x", nil), map[string]string{"type": "Coverage"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/prs.coverage+json", rec.Header().Get("Content-Type"))
}

func TestProblemInstanceIsRequestPath(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NotFound(rec, httptest.NewRequest(http.MethodGet, "/collections/nope", nil), "Collection not found")

	var problem struct {
		Instance string `json:"instance"`
		Title    string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/collections/nope", problem.Instance)
	assert.Equal(t, "Not found", problem.Title)
}
