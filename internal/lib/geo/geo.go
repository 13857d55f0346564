package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/twpayne/go-polyline"
)

// spherical implements Geodesy on a sphere with the WGS84 equatorial radius,
// the same model the Maps JavaScript spherical library uses.
type spherical struct{}

// NewSpherical creates the default Geodesy implementation
func NewSpherical() Geodesy {
	return spherical{}
}

// Distance calculates great-circle distance between two points using the Haversine formula
func (spherical) Distance(a, b Point) (float64, error) {
	if !isValidCoordinate(a) || !isValidCoordinate(b) {
		return 0, ErrInvalidCoordinate
	}
	if a == b {
		return 0, nil
	}
	return orbgeo.DistanceHaversine(a.orb(), b.orb()), nil
}

// Heading returns the initial bearing normalized to [0, 360)
func (spherical) Heading(from, to Point) (float64, error) {
	if !isValidCoordinate(from) || !isValidCoordinate(to) {
		return 0, ErrInvalidCoordinate
	}
	return NormalizeHeading(orbgeo.Bearing(from.orb(), to.orb())), nil
}

// Destination offsets origin by distance meters along heading
func (spherical) Destination(origin Point, distance, heading float64) (Point, error) {
	if !isValidCoordinate(origin) {
		return Point{}, ErrInvalidCoordinate
	}
	if math.IsNaN(distance) || math.IsNaN(heading) {
		return Point{}, errors.New("distance and heading must be numbers")
	}
	if distance == 0 {
		return origin, nil
	}
	return fromOrb(orbgeo.PointAtBearingAndDistance(origin.orb(), heading, distance)), nil
}

// NormalizeHeading maps any angle in degrees onto [0, 360)
func NormalizeHeading(heading float64) float64 {
	h := math.Mod(heading, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// PathLength sums the great-circle length of every segment of the path
func PathLength(g Geodesy, path []Point) (float64, error) {
	var total float64
	for i := 1; i < len(path); i++ {
		d, err := g.Distance(path[i-1], path[i])
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// FitBounds returns the bounds containing every point, grown by padMeters on each side
func FitBounds(points []Point, padMeters float64) (Bounds, error) {
	if len(points) == 0 {
		return Bounds{}, errors.New("at least one point is required to fit bounds")
	}
	if padMeters < 0 {
		return Bounds{}, fmt.Errorf("padding must not be negative: %v", padMeters)
	}

	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		if !isValidCoordinate(p) {
			return Bounds{}, fmt.Errorf("point %d: %w", i, ErrInvalidCoordinate)
		}
		mp[i] = p.orb()
	}

	b := mp.Bound()
	if padMeters > 0 {
		b = orbgeo.BoundPad(b, padMeters)
	}

	return Bounds{
		SouthWest: clamp(fromOrb(b.Min)),
		NorthEast: clamp(fromOrb(b.Max)),
	}, nil
}

// Center returns the midpoint of the bounds rectangle
func (b Bounds) Center() Point {
	return Point{
		Latitude:  (b.SouthWest.Latitude + b.NorthEast.Latitude) / 2,
		Longitude: (b.SouthWest.Longitude + b.NorthEast.Longitude) / 2,
	}
}

// Contains reports whether the point lies inside the bounds, edges included
func (b Bounds) Contains(p Point) bool {
	return p.Latitude >= b.SouthWest.Latitude && p.Latitude <= b.NorthEast.Latitude &&
		p.Longitude >= b.SouthWest.Longitude && p.Longitude <= b.NorthEast.Longitude
}

// DecodePolyline decodes Google polyline string to point sequence
func DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}

		if !isValidCoordinate(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}

// EncodePolyline encodes points with Google's polyline algorithm (1e5 precision)
func EncodePolyline(points []Point) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(latitude, longitude float64) (Point, error) {
	point := Point{Latitude: latitude, Longitude: longitude}
	if !isValidCoordinate(point) {
		return Point{}, ErrInvalidCoordinate
	}
	return point, nil
}

func (p Point) orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

func fromOrb(p orb.Point) Point {
	return Point{Latitude: p.Lat(), Longitude: p.Lon()}
}

// clamp keeps padded bounds on the globe
func clamp(p Point) Point {
	p.Latitude = math.Max(-90, math.Min(90, p.Latitude))
	p.Longitude = math.Max(-180, math.Min(180, p.Longitude))
	return p
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(point Point) bool {
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}
