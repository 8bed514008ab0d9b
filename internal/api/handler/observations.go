package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/metobs/metobs-edr/internal/api/response"
	"github.com/metobs/metobs-edr/internal/catalog"
	"github.com/metobs/metobs-edr/internal/edr"
)

// ObservationsConfig holds configuration for the observations handler.
type ObservationsConfig struct {
	Catalog      catalog.Repository
	Assembler    *edr.Assembler
	Extents      *edr.ExtentCalculator
	CollectionID string
	Logger       zerolog.Logger
}

// ObservationsHandler serves the collection data queries: locations listing,
// per-location time series and area-bounded time series.
type ObservationsHandler struct {
	catalog      catalog.Repository
	assembler    *edr.Assembler
	extents      *edr.ExtentCalculator
	collectionID string
	logger       zerolog.Logger
}

// NewObservationsHandler creates a new ObservationsHandler.
func NewObservationsHandler(cfg ObservationsConfig) *ObservationsHandler {
	return &ObservationsHandler{
		catalog:      cfg.Catalog,
		assembler:    cfg.Assembler,
		extents:      cfg.Extents,
		collectionID: cfg.CollectionID,
		logger:       cfg.Logger,
	}
}

// knownCollection rejects data queries against unknown collection ids.
func (h *ObservationsHandler) knownCollection(w http.ResponseWriter, r *http.Request) bool {
	if chi.URLParam(r, "collectionId") != h.collectionID {
		response.NotFound(w, r, "Collection not found")
		return false
	}
	return true
}

// ListLocations handles GET /collections/{collectionId}/locations.
//
// Optional bbox and parameter-name filters narrow the result to stations
// inside the box that observe at least one of the requested parameters.
func (h *ObservationsHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	if !h.knownCollection(w, r) {
		return
	}

	variables, err := h.catalog.ListVariables(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list variables")
		response.EngineError(w, r, err)
		return
	}

	var requested []string
	if raw := r.URL.Query().Get("parameter-name"); raw != "" {
		requested, err = edr.ResolveParameters(raw, variables)
		if err != nil {
			response.EngineError(w, r, err)
			return
		}
	}

	var box *edr.BBox
	if raw := r.URL.Query().Get("bbox"); raw != "" {
		parsed, err := edr.ParseBBox(raw)
		if err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}
		box = &parsed
	}

	stations, err := h.catalog.ListStations(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list stations")
		response.EngineError(w, r, err)
		return
	}

	features := make([]edr.Feature, 0, len(stations))
	for _, station := range stations {
		if box != nil && !box.Contains(station.Lon, station.Lat) {
			continue
		}
		if len(requested) > 0 && !observesAny(station, requested) {
			continue
		}
		features = append(features, edr.Feature{
			Type: edr.TypeFeature,
			ID:   station.ID,
			Geometry: edr.PointGeometry{
				Type:        edr.TypePoint,
				Coordinates: []float64{station.Lon, station.Lat},
			},
			Properties: map[string]any{
				"name": station.Name,
			},
		})
	}

	ids := requested
	if len(ids) == 0 {
		ids = make([]string, 0, len(variables))
		for _, v := range variables {
			ids = append(ids, v.ID)
		}
	}

	response.GeoJSON(w, r, edr.FeatureCollection{
		Type:       edr.TypeFeatureCollection,
		Features:   features,
		Parameters: parameterMap(ids, variables),
	})
}

// GetLocation handles GET /collections/{collectionId}/locations/{locationId}.
func (h *ObservationsHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	if !h.knownCollection(w, r) {
		return
	}

	station, err := h.catalog.GetStation(r.Context(), chi.URLParam(r, "locationId"))
	if err != nil {
		response.EngineError(w, r, err)
		return
	}

	interval, err := edr.ResolveInterval(r.URL.Query().Get("datetime"), h.extents.TemporalExtent())
	if err != nil {
		response.EngineError(w, r, err)
		return
	}

	variables, err := h.catalog.ListVariablesForStation(r.Context(), station.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("station_id", station.ID).Msg("failed to list station variables")
		response.EngineError(w, r, err)
		return
	}

	parameterIDs, err := edr.ResolveParameters(r.URL.Query().Get("parameter-name"), variables)
	if err != nil {
		response.EngineError(w, r, err)
		return
	}

	coverage, err := h.assembler.Assemble(r.Context(), station, parameterIDs, interval)
	if err != nil {
		response.EngineError(w, r, err)
		return
	}

	response.CoverageJSON(w, r, edr.CoverageCollection{
		Type:        edr.TypeCoverageCollection,
		Coverages:   []edr.Coverage{coverage},
		Parameters:  parameterMap(parameterIDs, variables),
		Referencing: edr.ReferenceSystems(),
	})
}

// GetArea handles GET /collections/{collectionId}/area.
func (h *ObservationsHandler) GetArea(w http.ResponseWriter, r *http.Request) {
	if !h.knownCollection(w, r) {
		return
	}

	coords := r.URL.Query().Get("coords")
	if coords == "" {
		response.BadRequest(w, r, "coords query parameter is required")
		return
	}

	polygon, err := edr.ParsePolygon(coords)
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	interval, err := edr.ResolveInterval(r.URL.Query().Get("datetime"), h.extents.TemporalExtent())
	if err != nil {
		response.EngineError(w, r, err)
		return
	}

	variables, err := h.catalog.ListVariables(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list variables")
		response.EngineError(w, r, err)
		return
	}

	parameterIDs, err := edr.ResolveParameters(r.URL.Query().Get("parameter-name"), variables)
	if err != nil {
		response.EngineError(w, r, err)
		return
	}

	coverages, err := h.assembler.AssembleArea(r.Context(), polygon, parameterIDs, interval)
	if err != nil {
		response.EngineError(w, r, err)
		return
	}

	response.CoverageJSON(w, r, edr.CoverageCollection{
		Type:        edr.TypeCoverageCollection,
		Coverages:   coverages,
		Parameters:  parameterMap(parameterIDs, variables),
		Referencing: edr.ReferenceSystems(),
	})
}

// observesAny reports whether the station observes at least one of the ids.
func observesAny(station *catalog.Station, ids []string) bool {
	for _, id := range ids {
		if station.HasVariable(id) {
			return true
		}
	}
	return false
}

// parameterMap builds parameter descriptors for the given ids, preserving id
// order so responses are byte-identical across identical requests.
func parameterMap(ids []string, variables []*catalog.Variable) *edr.OrderedMap[edr.Parameter] {
	byID := make(map[string]*catalog.Variable, len(variables))
	for _, v := range variables {
		byID[v.ID] = v
	}

	parameters := edr.NewOrderedMap[edr.Parameter]()
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			parameters.Set(id, edr.ParameterFromVariable(v.ID, v.LongName, v.StandardName, v.Unit, v.Comment))
		}
	}
	return parameters
}
