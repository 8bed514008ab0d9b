package catalog

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// pointInPolygon reports whether the point (lon, lat) lies within the polygon:
// inside the outer ring and outside every interior ring.
func pointInPolygon(polygon *geom.Polygon, lon, lat float64) bool {
	if polygon == nil || polygon.NumLinearRings() == 0 {
		return false
	}

	p := geom.Coord{lon, lat}
	layout := polygon.Layout()

	if !xy.IsPointInRing(layout, p, polygon.LinearRing(0).FlatCoords()) {
		return false
	}

	// Interior rings are holes
	for i := 1; i < polygon.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, p, polygon.LinearRing(i).FlatCoords()) {
			return false
		}
	}

	return true
}
