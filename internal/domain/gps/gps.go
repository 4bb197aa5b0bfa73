// Package gps converts recorded GPS tracks into planar point sequences
// suitable for shape grading.
package gps

import (
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"

	"github.com/inshape/inshape/internal/domain/geom"
)

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371000.0

// LatLng is a recorded GPS sample.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Route is an ordered GPS track.
type Route []LatLng

// Validate checks that the route is long enough to describe a closed shape
// and that every sample is a real coordinate.
func (r Route) Validate() error {
	if len(r) < geom.MinPoints {
		return fmt.Errorf("%w: got %d, need at least %d", ErrTooFewPoints, len(r), geom.MinPoints)
	}
	for i, p := range r {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
			return fmt.Errorf("%w: point %d is not finite", ErrInvalidCoordinate, i)
		}
		if p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("%w: latitude %f at point %d", ErrInvalidCoordinate, p.Lat, i)
		}
		if p.Lng < -180 || p.Lng > 180 {
			return fmt.Errorf("%w: longitude %f at point %d", ErrInvalidCoordinate, p.Lng, i)
		}
	}
	return nil
}

// Project converts the route to local planar coordinates in meters using an
// equirectangular projection about the route's mean position. The small
// extent of a running route keeps the distortion negligible.
func (r Route) Project() (geom.Sequence, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var lat0, lng0 float64
	for _, p := range r {
		lat0 += p.Lat
		lng0 += p.Lng
	}
	lat0 /= float64(len(r))
	lng0 /= float64(len(r))

	cosLat0 := math.Cos(lat0 * math.Pi / 180)
	out := make(geom.Sequence, len(r))
	for i, p := range r {
		out[i] = geom.Point{
			X: earthRadius * (p.Lng - lng0) * math.Pi / 180 * cosLat0,
			Y: earthRadius * (p.Lat - lat0) * math.Pi / 180,
		}
	}
	return out, nil
}

// DecodePolyline decodes a Google encoded polyline string into a route.
func DecodePolyline(encoded string) (Route, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPolyline, err)
	}
	route := make(Route, len(coords))
	for i, c := range coords {
		route[i] = LatLng{Lat: c[0], Lng: c[1]}
	}
	return route, nil
}
