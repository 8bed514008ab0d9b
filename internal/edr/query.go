package edr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/metobs/metobs-edr/internal/catalog"
)

// Interval is a resolved, closed datetime interval.
type Interval struct {
	Start time.Time
	End   time.Time
}

// BBox is a validated bounding box (minLon, minLat, maxLon, maxLat).
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Contains reports whether the point (lon, lat) lies within the box,
// bounds inclusive.
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// ResolvedQuery holds the typed, validated query values for one request.
// Built once per request, immutable, never persisted.
type ResolvedQuery struct {
	StationID    string
	Polygon      *geom.Polygon
	ParameterIDs []string
	Interval     Interval
}

// ResolveInterval parses a raw datetime query value into a closed interval.
//
// Accepted forms are a single ISO 8601 instant or "start/end". An omitted
// bound ("..", or an empty side) clamps to the collection's temporal extent
// bound; an empty expression yields the full extent. An interval whose end
// lies before its start fails with ErrInvalidInterval.
func ResolveInterval(raw string, extent TemporalExtent) (Interval, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Interval{Start: extent.Start, End: extent.End}, nil
	}

	parts := strings.Split(raw, "/")
	switch len(parts) {
	case 1:
		instant, err := parseInstant(parts[0])
		if err != nil {
			return Interval{}, err
		}
		return Interval{Start: instant, End: instant}, nil
	case 2:
		start := extent.Start
		end := extent.End
		if !openBound(parts[0]) {
			var err error
			if start, err = parseInstant(parts[0]); err != nil {
				return Interval{}, err
			}
		}
		if !openBound(parts[1]) {
			var err error
			if end, err = parseInstant(parts[1]); err != nil {
				return Interval{}, err
			}
		}
		if end.Before(start) {
			return Interval{}, ErrInvalidInterval
		}
		return Interval{Start: start, End: end}, nil
	default:
		return Interval{}, fmt.Errorf("%w: expected a single interval expression, got %q", ErrInvalidInterval, raw)
	}
}

func openBound(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == ".."
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid datetime %q", ErrInvalidInterval, s)
	}
	return t, nil
}

// ResolveParameters resolves a raw comma-separated parameter-name value
// against the available variable set.
//
// An empty value resolves to the full available set sorted by id. An explicit
// list is trimmed, matched case-insensitively and returned in case-insensitive
// alphabetical order rather than request order, so repeated identical requests
// yield byte-identical parameter ordering. Every unresolved name is reported,
// not just the first.
func ResolveParameters(raw string, available []*catalog.Variable) ([]string, error) {
	ids := make([]string, 0, len(available))
	byFold := make(map[string]string, len(available))
	for _, v := range available {
		ids = append(ids, v.ID)
		byFold[strings.ToLower(v.ID)] = v.ID
	}

	if strings.TrimSpace(raw) == "" {
		sort.Strings(ids)
		return ids, nil
	}

	seen := make(map[string]bool)
	var resolved []string
	var unknown []string
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, ok := byFold[strings.ToLower(token)]
		if !ok {
			unknown = append(unknown, token)
			continue
		}
		if !seen[id] {
			seen[id] = true
			resolved = append(resolved, id)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownParametersError{Names: unknown}
	}

	sort.Slice(resolved, func(i, j int) bool {
		return strings.ToLower(resolved[i]) < strings.ToLower(resolved[j])
	})
	return resolved, nil
}

// ParseBBox parses a bbox query value of four comma-separated floats
// (minLon, minLat, maxLon, maxLat) and validates min <= max on both axes.
func ParseBBox(raw string) (BBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox must have 4 values, got %d", len(parts))
	}

	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("bbox value %q is not a number", strings.TrimSpace(part))
		}
		values[i] = v
	}

	box := BBox{MinLon: values[0], MinLat: values[1], MaxLon: values[2], MaxLat: values[3]}
	if box.MinLon > box.MaxLon {
		return BBox{}, fmt.Errorf("bbox min longitude %g exceeds max longitude %g", box.MinLon, box.MaxLon)
	}
	if box.MinLat > box.MaxLat {
		return BBox{}, fmt.Errorf("bbox min latitude %g exceeds max latitude %g", box.MinLat, box.MaxLat)
	}
	return box, nil
}

// ParsePolygon parses a well-known-text polygon from the coords query value.
// Ring closure and winding are the geometry library's concern.
func ParsePolygon(raw string) (*geom.Polygon, error) {
	g, err := wkt.Unmarshal(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid WKT geometry: %w", err)
	}

	polygon, ok := g.(*geom.Polygon)
	if !ok {
		return nil, fmt.Errorf("coords must be a POLYGON, got %T", g)
	}
	return polygon, nil
}
