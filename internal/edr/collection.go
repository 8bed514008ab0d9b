package edr

import (
	"context"
	"fmt"

	"github.com/metobs/metobs-edr/internal/catalog"
)

// CoverageJSONFormat is the advertised output format for data queries.
const CoverageJSONFormat = "CoverageJSON"

// CollectionConfig holds the static identity of the collection.
type CollectionConfig struct {
	ID          string
	Title       string
	Description string
	Keywords    []string
}

// CollectionBuilder composes extent calculator output with static collection
// descriptors into a discoverable collection document. The result is a pure
// function of catalog state and base URL.
type CollectionBuilder struct {
	catalog catalog.Repository
	extents *ExtentCalculator
	config  CollectionConfig
}

// NewCollectionBuilder creates a new collection metadata builder.
func NewCollectionBuilder(repo catalog.Repository, extents *ExtentCalculator, config CollectionConfig) *CollectionBuilder {
	return &CollectionBuilder{
		catalog: repo,
		extents: extents,
		config:  config,
	}
}

// Config returns the static collection identity.
func (b *CollectionBuilder) Config() CollectionConfig {
	return b.config
}

// Build composes the collection document. baseURL is the collections root
// (".../collections/"); isSelf controls the rel of the collection link.
func (b *CollectionBuilder) Build(ctx context.Context, baseURL string, isSelf bool) (CollectionDescriptor, error) {
	spatial, err := b.extents.SpatialExtent(ctx)
	if err != nil {
		return CollectionDescriptor{}, err
	}
	temporal := b.extents.TemporalExtent()

	variables, err := b.catalog.ListVariables(ctx)
	if err != nil {
		return CollectionDescriptor{}, fmt.Errorf("list variables: %w", err)
	}

	// Catalog repositories return variables sorted by id, which keeps the
	// parameter document deterministic
	parameters := NewOrderedMap[Parameter]()
	for _, v := range variables {
		parameters.Set(v.ID, ParameterFromVariable(v.ID, v.LongName, v.StandardName, v.Unit, v.Comment))
	}

	rel := "data"
	if isSelf {
		rel = "self"
	}

	collectionURL := baseURL + b.config.ID

	return CollectionDescriptor{
		ID:          b.config.ID,
		Title:       b.config.Title,
		Description: b.config.Description,
		Links: []Link{
			{Href: collectionURL, Rel: rel},
		},
		Extent: ExtentDoc{
			Spatial: SpatialExtentDoc{
				BBox: [][]float64{{spatial.MinLon, spatial.MinLat, spatial.MaxLon, spatial.MaxLat}},
				CRS:  "EPSG:4326",
			},
			Temporal: TemporalExtentDoc{
				Interval: [][]string{{ISO8601(temporal.Start), ISO8601(temporal.End)}},
				Values:   []string{temporal.RepeatExpression()},
				TRS:      "datetime",
			},
		},
		DataQueries: DataQueries{
			Locations: &DataQuery{
				Link: QueryLink{
					Href: collectionURL + "/locations",
					Rel:  "data",
					Variables: QueryVariables{
						QueryType:     "locations",
						OutputFormats: []string{CoverageJSONFormat},
					},
				},
			},
			Area: &DataQuery{
				Link: QueryLink{
					Href: collectionURL + "/area",
					Rel:  "data",
					Variables: QueryVariables{
						QueryType:     "area",
						OutputFormats: []string{CoverageJSONFormat},
					},
				},
			},
		},
		CRS:            []string{"WGS84"},
		OutputFormats:  []string{CoverageJSONFormat},
		ParameterNames: parameters,
	}, nil
}
