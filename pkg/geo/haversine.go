// Package geo provides point-to-segment geometry helpers used by the
// query-time road-snapping layer (pkg/snap). The great-circle formula
// itself lives once in pkg/distance, which the routing core uses in
// float32/kilometers; this package wraps it in float64/meters, the units
// snapping arithmetic is more naturally expressed in.
package geo

import (
	"math"

	"github.com/azybler/map_router/pkg/distance"
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	km := distance.Haversine(float32(lat1), float32(lon1), float32(lat2), float32(lon2))
	return float64(km) * 1000
}

// EquirectangularDist returns an approximate distance in meters.
// ~3x faster than Haversine; accurate to <0.1% away from the poles.
// Use for candidate filtering and comparisons, not for final edge weights.
func EquirectangularDist(lat1, lon1, lat2, lon2 float64) float64 {
	x := (lon2 - lon1) * math.Cos((lat1+lat2)/2*math.Pi/180) * math.Pi / 180
	y := (lat2 - lat1) * math.Pi / 180
	return math.Sqrt(x*x+y*y) * distance.EarthRadiusKm * 1000
}

// PointToSegmentDist computes the perpendicular distance from point P to segment AB,
// and returns the projection ratio along AB (clamped to [0,1]).
// dist is in meters, ratio is in [0.0, 1.0].
func PointToSegmentDist(pLat, pLon, aLat, aLon, bLat, bLon float64) (dist float64, ratio float64) {
	// Work in equirectangular projection (good enough at Singapore latitude).
	cosLat := math.Cos((aLat+bLat) / 2 * math.Pi / 180)

	// Convert to approximate planar coordinates (degrees, with longitude
	// scaled by cos(lat)).
	ax := aLon * cosLat
	ay := aLat
	bx := bLon * cosLat
	by := bLat
	px := pLon * cosLat
	py := pLat

	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy

	// A and B project to the same planar point (a zero-length edge, or a
	// true A==B) whenever lenSq is 0; there's no line to project onto, so
	// the distance to either endpoint is the answer.
	if lenSq == 0 {
		return Haversine(pLat, pLon, aLat, aLon), 0
	}

	// Project P onto line AB, clamp to [0,1].
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	// Closest point on segment in original coordinates.
	closeLat := aLat + t*(bLat-aLat)
	closeLon := aLon + t*(bLon-aLon)

	return Haversine(pLat, pLon, closeLat, closeLon), t
}
