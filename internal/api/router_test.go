package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metobs/metobs-edr/internal/api"
	"github.com/metobs/metobs-edr/internal/api/handler"
	"github.com/metobs/metobs-edr/internal/catalog"
	"github.com/metobs/metobs-edr/internal/edr"
	"github.com/metobs/metobs-edr/internal/timeseries"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	repo := catalog.NewSnapshotRepository(
		[]*catalog.Station{
			{ID: "0-20000-0-06260", Name: "De Bilt", Lat: 52.0, Lon: 5.0, VariableIDs: []string{"DDVEC", "FG"}},
			{ID: "0-20000-0-06209", Name: "IJmond", Lat: 52.1, Lon: 6.0, VariableIDs: []string{"FG"}},
		},
		[]*catalog.Variable{
			{ID: "FG", LongName: "Daily mean wind speed", StandardName: "wind_speed", Unit: "m s-1"},
			{ID: "DDVEC", LongName: "Vector mean wind direction", StandardName: "wind_from_direction", Unit: "degree"},
		},
	)

	start := time.Date(2024, 2, 22, 0, 0, 0, 0, time.UTC)
	series := timeseries.NewMemoryAccessor()
	series.SetSeries("0-20000-0-06260", "FG", dailySeries(start, 5.0))
	series.SetSeries("0-20000-0-06260", "DDVEC", dailySeries(start, 180.0))
	series.SetSeries("0-20000-0-06209", "FG", dailySeries(start, 7.0))

	log := zerolog.Nop()
	extents := edr.NewExtentCalculator(edr.ExtentConfig{
		Catalog: repo,
		Temporal: edr.TemporalExtent{
			Start:       start,
			End:         start.AddDate(0, 0, 5),
			Interval:    24 * time.Hour,
			IntervalISO: "P1D",
		},
		Logger: log,
	})
	assembler := edr.NewAssembler(edr.AssemblerConfig{Catalog: repo, Series: series, Logger: log})
	collection := edr.NewCollectionBuilder(repo, extents, edr.CollectionConfig{
		ID:          "observations",
		Title:       "Daily in-situ meteorological observations",
		Description: "Validated daily weather station observations",
		Keywords:    []string{"Weather", "Wind"},
	})

	return api.NewRouter(api.RouterConfig{
		Version:    "test",
		Logger:     log,
		Catalog:    repo,
		Assembler:  assembler,
		Extents:    extents,
		Collection: collection,
		Capabilities: handler.CapabilitiesConfig{
			Version:      "test",
			Title:        "Daily in-situ meteorological observations",
			Description:  "Validated daily weather station observations",
			ProviderName: "MetObs",
		},
	})
}

// dailySeries builds six daily observations starting at start, one per day of
// the collection's temporal extent.
func dailySeries(start time.Time, base float64) []timeseries.Point {
	points := make([]timeseries.Point, 6)
	for day := range points {
		v := base + float64(day)
		points[day] = timeseries.Point{Time: start.AddDate(0, 0, day), Value: &v}
	}
	return points
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "test", body.Version)
}

func TestLandingPage(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Title    string     `json:"title"`
		Links    []edr.Link `json:"links"`
		Provider *struct {
			Name string `json:"name"`
		} `json:"provider"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "Daily in-situ meteorological observations", body.Title)
	require.NotNil(t, body.Provider)
	assert.Equal(t, "MetObs", body.Provider.Name)
	require.Len(t, body.Links, 3)
	assert.Equal(t, "self", body.Links[0].Rel)
}

func TestConformance(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/conformance")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ConformsTo []string `json:"conformsTo"`
	}
	decode(t, rec, &body)
	assert.Contains(t, body.ConformsTo, "http://www.opengis.net/spec/ogcapi-edr-1/1.1/conf/core")
	assert.Contains(t, body.ConformsTo, "http://www.opengis.net/spec/ogcapi-edr-1/1.1/conf/covjson")
}

func TestListCollections(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body edr.Collections
	decode(t, rec, &body)
	require.Len(t, body.Collections, 1)
	assert.Equal(t, "observations", body.Collections[0].ID)
	assert.Equal(t, [][]float64{{5.0, 52.0, 6.0, 52.1}}, body.Collections[0].Extent.Spatial.BBox)
	assert.Equal(t, []string{"R6/2024-02-22T00:00:00Z/P1D"}, body.Collections[0].Extent.Temporal.Values)
}

func TestGetCollection(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body edr.CollectionDescriptor
	decode(t, rec, &body)
	assert.Equal(t, "observations", body.ID)
	require.Len(t, body.Links, 1)
	assert.Equal(t, "self", body.Links[0].Rel)
	require.NotNil(t, body.DataQueries.Locations)
	require.NotNil(t, body.DataQueries.Area)
}

func TestGetCollection_Unknown(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem struct {
		Status int    `json:"status"`
		Title  string `json:"title"`
	}
	decode(t, rec, &problem)
	assert.Equal(t, http.StatusNotFound, problem.Status)
}

func TestListLocations(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var body struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
		Parameters map[string]json.RawMessage `json:"parameters"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "FeatureCollection", body.Type)
	require.Len(t, body.Features, 2)
	assert.Equal(t, "0-20000-0-06209", body.Features[0].ID)
	assert.Equal(t, []float64{5.0, 52.0}, body.Features[1].Geometry.Coordinates)
	assert.Len(t, body.Parameters, 2)
}

func TestListLocations_BBoxFilter(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations?bbox=4.9,51.9,5.5,52.05")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body edr.FeatureCollection
	decode(t, rec, &body)
	require.Len(t, body.Features, 1)
	assert.Equal(t, "0-20000-0-06260", body.Features[0].ID)
}

func TestListLocations_ParameterFilter(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations?parameter-name=DDVEC")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body edr.FeatureCollection
	decode(t, rec, &body)
	require.Len(t, body.Features, 1)
	assert.Equal(t, "0-20000-0-06260", body.Features[0].ID)
}

func TestListLocations_UnknownParameter(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations?parameter-name=NOPE")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLocations_InvalidBBox(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations?bbox=6,52,5,53")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLocation(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations/0-20000-0-06260")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/prs.coverage+json", rec.Header().Get("Content-Type"))

	var body struct {
		Type      string `json:"type"`
		Coverages []struct {
			Type   string `json:"type"`
			Domain struct {
				DomainType string `json:"domainType"`
				Axes       struct {
					X struct {
						Values []float64 `json:"values"`
					} `json:"x"`
					T struct {
						Values []string `json:"values"`
					} `json:"t"`
				} `json:"axes"`
			} `json:"domain"`
			Ranges     map[string]json.RawMessage `json:"ranges"`
			LocationID string                     `json:"eumetnet:locationId"`
		} `json:"coverages"`
		Parameters  map[string]json.RawMessage `json:"parameters"`
		Referencing []json.RawMessage          `json:"referencing"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "CoverageCollection", body.Type)
	require.Len(t, body.Coverages, 1)

	coverage := body.Coverages[0]
	assert.Equal(t, "Coverage", coverage.Type)
	assert.Equal(t, "PointSeries", coverage.Domain.DomainType)
	assert.Equal(t, []float64{5.0}, coverage.Domain.Axes.X.Values)
	assert.Len(t, coverage.Domain.Axes.T.Values, 6)
	assert.Equal(t, "0-20000-0-06260", coverage.LocationID)
	assert.Len(t, coverage.Ranges, 2)
	assert.Len(t, body.Parameters, 2)
	assert.Len(t, body.Referencing, 2)
}

func TestGetLocation_DatetimeWindow(t *testing.T) {
	router := newTestRouter(t)

	// Inclusive bounds keep the observations on both edge days
	rec := get(t, router, "/collections/observations/locations/0-20000-0-06260?"+
		"datetime=2024-02-23T00:00:00Z/2024-02-25T00:00:00Z&parameter-name=FG")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Coverages []struct {
			Domain struct {
				Axes struct {
					T struct {
						Values []string `json:"values"`
					} `json:"t"`
				} `json:"axes"`
			} `json:"domain"`
		} `json:"coverages"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Coverages, 1)
	assert.Equal(t, []string{
		"2024-02-23T00:00:00Z",
		"2024-02-24T00:00:00Z",
		"2024-02-25T00:00:00Z",
	}, body.Coverages[0].Domain.Axes.T.Values)
}

func TestGetLocation_UnknownLocation(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations/0-20000-0-99999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestGetLocation_InvalidDatetime(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name     string
		datetime string
	}{
		{name: "malformed", datetime: "not-a-date"},
		{name: "end before start", datetime: "2024-02-25T00:00:00Z/2024-02-23T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, "/collections/observations/locations/0-20000-0-06260?datetime="+
				url.QueryEscape(tt.datetime))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetLocation_UnknownParameterReportsAllNames(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations/0-20000-0-06260?parameter-name=FG,NOPE1,NOPE2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem struct {
		Detail string `json:"detail"`
	}
	decode(t, rec, &problem)
	assert.Contains(t, problem.Detail, "NOPE1")
	assert.Contains(t, problem.Detail, "NOPE2")
}

func TestGetLocation_ParameterNotObservedAtStation(t *testing.T) {
	router := newTestRouter(t)

	// DDVEC exists in the catalog but not at this station
	rec := get(t, router, "/collections/observations/locations/0-20000-0-06209?parameter-name=DDVEC")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLocation_NoDataInWindow(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/locations/0-20000-0-06260?"+
		"datetime="+url.QueryEscape("2024-02-22T01:00:00Z/2024-02-22T02:00:00Z"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetArea(t *testing.T) {
	router := newTestRouter(t)

	coords := url.QueryEscape("POLYGON((4.9 51.9, 6.1 51.9, 6.1 52.2, 4.9 52.2, 4.9 51.9))")
	rec := get(t, router, "/collections/observations/area?coords="+coords+"&parameter-name=FG")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/prs.coverage+json", rec.Header().Get("Content-Type"))

	var body struct {
		Coverages []struct {
			LocationID string `json:"eumetnet:locationId"`
		} `json:"coverages"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Coverages, 2)
	assert.Equal(t, "0-20000-0-06209", body.Coverages[0].LocationID)
	assert.Equal(t, "0-20000-0-06260", body.Coverages[1].LocationID)
}

func TestGetArea_MissingCoords(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/area")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetArea_InvalidCoords(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/collections/observations/area?coords="+url.QueryEscape("POINT(5 52)"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetArea_UnknownCollection(t *testing.T) {
	router := newTestRouter(t)

	coords := url.QueryEscape("POLYGON((4.9 51.9, 6.1 51.9, 6.1 52.2, 4.9 52.2, 4.9 51.9))")
	rec := get(t, router, "/collections/nope/area?coords="+coords)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResponsesCarryRequestID(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req_upstream")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "req_upstream", rec.Header().Get("X-Request-Id"))
}

func TestSecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	rec := get(t, router, "/health")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
