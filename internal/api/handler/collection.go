package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/metobs/metobs-edr/internal/api/response"
	"github.com/metobs/metobs-edr/internal/edr"
)

// CollectionHandler serves the collection discovery documents.
type CollectionHandler struct {
	builder *edr.CollectionBuilder
	logger  zerolog.Logger
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(builder *edr.CollectionBuilder, logger zerolog.Logger) *CollectionHandler {
	return &CollectionHandler{builder: builder, logger: logger}
}

// ListCollections handles GET /collections.
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	base := collectionsURL(r)

	descriptor, err := h.builder.Build(r.Context(), base, false)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build collection metadata")
		response.EngineError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, edr.Collections{
		Links:       []edr.Link{{Href: base, Rel: "self"}},
		Collections: []edr.CollectionDescriptor{descriptor},
	})
}

// GetCollection handles GET /collections/{collectionId}.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "collectionId") != h.builder.Config().ID {
		response.NotFound(w, r, "Collection not found")
		return
	}

	descriptor, err := h.builder.Build(r.Context(), collectionsURL(r), true)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build collection metadata")
		response.EngineError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, descriptor)
}
