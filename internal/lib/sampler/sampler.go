// Package sampler reduces a dense route polyline into points spaced at a fixed
// cumulative distance, e.g. for placing markers along a route.
package sampler

import (
	"errors"
	"fmt"
	"math"

	"github.com/dpup/routemarks/server/internal/lib/geo"
)

// DefaultSpacing is the distance in meters used when the caller passes zero
const DefaultSpacing = 500.0

var (
	// ErrInvalidInput is returned for malformed arguments; the caller must fix the input
	ErrInvalidInput = errors.New("invalid input")

	// ErrDependencyUnavailable is returned when no geodesy implementation was provided
	ErrDependencyUnavailable = errors.New("geodesy service unavailable")
)

// Sampler computes sampled paths using an injected Geodesy
type Sampler struct {
	geodesy geo.Geodesy
}

// New creates a Sampler. A nil geodesy is accepted and reported on Sample.
func New(geodesy geo.Geodesy) *Sampler {
	return &Sampler{geodesy: geodesy}
}

// Sample walks path accumulating great-circle distance and emits a point each
// time the rounded accumulated distance reaches spacing. The emitted point is
// pulled back from the current vertex by the overshoot, along the reverse of
// the heading from the previous anchor. The first point of path is always the
// first point of the result.
//
// Two-point paths are validated but never offset: only paths with more than
// two points produce synthetic points. Errors from the geodesy are returned
// unchanged.
func (s *Sampler) Sample(path []geo.Point, spacing float64) ([]geo.Point, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: at least two points required", ErrInvalidInput)
	}
	// Only the exact two-point case is checked; longer paths may repeat their first point.
	if len(path) == 2 && path[0] == path[1] {
		return nil, fmt.Errorf("%w: the two points must differ", ErrInvalidInput)
	}
	if math.IsNaN(spacing) || spacing < 0 {
		return nil, fmt.Errorf("%w: spacing must be a positive distance, got %v", ErrInvalidInput, spacing)
	}
	if spacing == 0 {
		spacing = DefaultSpacing
	}
	if s == nil || s.geodesy == nil {
		return nil, ErrDependencyUnavailable
	}

	sampled := []geo.Point{path[0]}
	if len(path) == 2 {
		return sampled, nil
	}

	prev := path[0]
	var acc float64
	for _, p := range path {
		d, err := s.geodesy.Distance(prev, p)
		if err != nil {
			return nil, err
		}
		acc += d

		// Rounded to whole meters for the comparison only.
		if math.Round(acc) < spacing {
			prev = p
			continue
		}

		overshoot := acc - spacing
		heading, err := s.geodesy.Heading(prev, p)
		if err != nil {
			return nil, err
		}
		adjusted, err := s.geodesy.Destination(p, overshoot, geo.NormalizeHeading(heading+180))
		if err != nil {
			return nil, err
		}

		acc = 0
		prev = adjusted
		sampled = append(sampled, adjusted)
	}

	return sampled, nil
}
