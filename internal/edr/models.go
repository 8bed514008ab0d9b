package edr

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Document type constants.
const (
	TypeCoverage           = "Coverage"
	TypeCoverageCollection = "CoverageCollection"
	TypeDomain             = "Domain"
	TypeNdArray            = "NdArray"
	TypeParameter          = "Parameter"
	TypeFeature            = "Feature"
	TypeFeatureCollection  = "FeatureCollection"
	TypePoint              = "Point"

	// DomainTypePointSeries is the CoverageJSON domain type for a time series
	// at a single spatial point.
	DomainTypePointSeries = "PointSeries"
)

// ISO8601 renders a timestamp as an ISO 8601 string, replacing the +00:00
// offset with the military time zone indicator (Z).
func ISO8601(t time.Time) string {
	s := t.Format(time.RFC3339)
	if strings.HasSuffix(s, "+00:00") {
		return s[:len(s)-len("+00:00")] + "Z"
	}
	return s
}

// I18N is a language-tagged string map ({"en": ...}).
type I18N map[string]string

// En builds an English-only I18N map.
func En(s string) I18N {
	return I18N{"en": s}
}

// OrderedMap is a string-keyed map that serializes its entries in insertion
// order. CoverageJSON consumers diff payloads byte-for-byte, so parameter and
// range objects must keep the resolved parameter order.
type OrderedMap[V any] struct {
	keys  []string
	items map[string]V
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{items: make(map[string]V)}
}

// Set adds or replaces an entry. A replaced key keeps its original position.
func (m *OrderedMap[V]) Set(key string, value V) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = value
}

// Get returns the value for a key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// MarshalJSON serializes the map as a JSON object in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.items[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NumericAxis is a coordinate axis with numeric values.
type NumericAxis struct {
	Values []float64 `json:"values"`
}

// TimeAxis is a coordinate axis with ISO 8601 timestamp values.
type TimeAxis struct {
	Values []string `json:"values"`
}

// Axes holds the domain coordinate axes.
type Axes struct {
	X NumericAxis `json:"x"`
	Y NumericAxis `json:"y"`
	T *TimeAxis   `json:"t,omitempty"`
}

// Domain is the spatiotemporal domain of a coverage.
type Domain struct {
	Type       string `json:"type"`
	DomainType string `json:"domainType"`
	Axes       Axes   `json:"axes"`
}

// NdArray is a flat value array plus shape metadata describing a
// time-by-one-by-one grid for a single spatial point.
type NdArray struct {
	Type      string     `json:"type"`
	DataType  string     `json:"dataType"`
	AxisNames []string   `json:"axisNames"`
	Shape     []int      `json:"shape"`
	Values    []*float64 `json:"values"`
}

// Coverage pairs a domain with named value ranges aligned to it.
type Coverage struct {
	Type   string               `json:"type"`
	Domain Domain               `json:"domain"`
	Ranges *OrderedMap[NdArray] `json:"ranges"`

	// LocationID attaches the station identity to the coverage as an opaque
	// locator annotation.
	LocationID string `json:"eumetnet:locationId,omitempty"`
}

// CoverageCollection is a set of coverages sharing parameter metadata and a
// reference system.
type CoverageCollection struct {
	Type        string                      `json:"type"`
	Coverages   []Coverage                  `json:"coverages"`
	Parameters  *OrderedMap[Parameter]      `json:"parameters"`
	Referencing []ReferenceSystemConnection `json:"referencing"`
}

// ObservedProperty identifies the quantity a parameter measures.
type ObservedProperty struct {
	ID    string `json:"id,omitempty"`
	Label I18N   `json:"label"`
}

// Unit is a parameter's unit of measure.
type Unit struct {
	Label  I18N   `json:"label,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// Parameter describes a measurable quantity exposed by the collection.
type Parameter struct {
	Type             string           `json:"type"`
	Description      I18N             `json:"description,omitempty"`
	ObservedProperty ObservedProperty `json:"observedProperty"`
	Unit             *Unit            `json:"unit,omitempty"`
}

// ReferenceSystem identifies a spatial or temporal reference system.
type ReferenceSystem struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Calendar string `json:"calendar,omitempty"`
}

// ReferenceSystemConnection binds coordinates to a reference system.
type ReferenceSystemConnection struct {
	Coordinates []string        `json:"coordinates"`
	System      ReferenceSystem `json:"system"`
}

// ReferenceSystems returns the reference system connections for coverages
// produced by this service: WGS84 coordinates and Gregorian timestamps.
func ReferenceSystems() []ReferenceSystemConnection {
	return []ReferenceSystemConnection{
		{
			Coordinates: []string{"y", "x"},
			System: ReferenceSystem{
				Type: "GeographicCRS",
				ID:   "http://www.opengis.net/def/crs/EPSG/0/4326",
			},
		},
		{
			Coordinates: []string{"t"},
			System: ReferenceSystem{
				Type:     "TemporalRS",
				Calendar: "Gregorian",
			},
		},
	}
}

// Link is a typed hyperlink in a discovery document.
type Link struct {
	Href  string `json:"href"`
	Rel   string `json:"rel"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// QueryVariables describes a supported data query type.
type QueryVariables struct {
	QueryType     string   `json:"query_type"`
	OutputFormats []string `json:"output_formats"`
}

// QueryLink is a data-query link with its query descriptor.
type QueryLink struct {
	Href      string         `json:"href"`
	Rel       string         `json:"rel"`
	Variables QueryVariables `json:"variables"`
}

// DataQuery wraps a query link.
type DataQuery struct {
	Link QueryLink `json:"link"`
}

// DataQueries lists the query types this collection supports.
type DataQueries struct {
	Locations *DataQuery `json:"locations,omitempty"`
	Area      *DataQuery `json:"area,omitempty"`
}

// SpatialExtentDoc is the spatial extent block of a collection document.
type SpatialExtentDoc struct {
	BBox [][]float64 `json:"bbox"`
	CRS  string      `json:"crs"`
}

// TemporalExtentDoc is the temporal extent block of a collection document.
type TemporalExtentDoc struct {
	Interval [][]string `json:"interval"`
	Values   []string   `json:"values"`
	TRS      string     `json:"trs"`
}

// ExtentDoc is the extent block of a collection document.
type ExtentDoc struct {
	Spatial  SpatialExtentDoc  `json:"spatial"`
	Temporal TemporalExtentDoc `json:"temporal"`
}

// CollectionDescriptor is the discoverable collection document.
type CollectionDescriptor struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Links          []Link                 `json:"links"`
	Extent         ExtentDoc              `json:"extent"`
	DataQueries    DataQueries            `json:"data_queries"`
	CRS            []string               `json:"crs"`
	OutputFormats  []string               `json:"output_formats"`
	ParameterNames *OrderedMap[Parameter] `json:"parameter_names"`
}

// Collections is the collection listing document.
type Collections struct {
	Links       []Link                 `json:"links"`
	Collections []CollectionDescriptor `json:"collections"`
}

// PointGeometry is a GeoJSON point.
type PointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Feature is a GeoJSON feature describing a station location.
type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Geometry   PointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection of station locations,
// extended with the EDR parameter catalog.
type FeatureCollection struct {
	Type       string                 `json:"type"`
	Features   []Feature              `json:"features"`
	Parameters *OrderedMap[Parameter] `json:"parameters,omitempty"`
}

// ParameterFromVariable turns a catalog variable into a parameter descriptor.
func ParameterFromVariable(id, longName, standardName, unit, comment string) Parameter {
	p := Parameter{
		Type: TypeParameter,
		ObservedProperty: ObservedProperty{
			ID:    standardName,
			Label: En(longName),
		},
		Unit: &Unit{
			Label:  En(unit),
			Symbol: unit,
		},
	}
	if comment != "" {
		p.Description = En(comment)
	}
	return p
}
