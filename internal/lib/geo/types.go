package geo

import "errors"

// ErrInvalidCoordinate is returned when a latitude or longitude is out of range
var ErrInvalidCoordinate = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")

// Point represents a geographic coordinate in decimal degrees
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Polyline represents an encoded polyline with optional decoded points
type Polyline struct {
	EncodedPolyline string  `json:"encoded_polyline,omitempty"`
	Points          []Point `json:"points"`
}

// Bounds is the smallest lat/lng rectangle containing a set of points
type Bounds struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
}

// Geodesy is the set of great-circle operations the sampler depends on.
// Implementations must be pure: identical inputs give identical outputs.
type Geodesy interface {
	// Great-circle distance between two points in meters
	Distance(a, b Point) (float64, error)

	// Initial bearing in degrees [0, 360) from one point toward another
	Heading(from, to Point) (float64, error)

	// Point reached by traveling distance meters from origin along heading
	Destination(origin Point, distance, heading float64) (Point, error)
}
