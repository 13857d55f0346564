package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/routemarks/server/internal/cache"
	"github.com/dpup/routemarks/server/internal/clients/google"
	"github.com/dpup/routemarks/server/internal/config"
	"github.com/dpup/routemarks/server/internal/lib/async"
	"github.com/dpup/routemarks/server/internal/lib/geo"
	"github.com/dpup/routemarks/server/internal/lib/sampler"
)

// ErrInvalidRequest is returned for requests rejected before any work is done
var ErrInvalidRequest = errors.New("invalid request")

// MapsClient is the subset of the Google Maps client the service uses
type MapsClient interface {
	Directions(ctx context.Context, origin, destination, mode string) (*google.Route, error)
	Geocode(ctx context.Context, address string) (*google.GeocodeResult, error)
}

// SampleResult is a sampled route ready to be placed on a map
type SampleResult struct {
	Markers       []geo.Point   `json:"markers"`
	SpacingMeters float64       `json:"spacing_meters"`
	PathPoints    int           `json:"path_points"`
	LengthMeters  float64       `json:"length_meters"`
	Bounds        geo.Bounds    `json:"bounds"`
	Route         *google.Route `json:"route,omitempty"`
	Path          []geo.Point   `json:"-"`
}

// MapsService wraps geocoding, directions, bounds fitting and route sampling
type MapsService struct {
	client  MapsClient
	geodesy geo.Geodesy
	sampler *sampler.Sampler
	cache   *cache.Cache
	config  *config.Config
}

// NewMapsService creates a new MapsService
func NewMapsService(client MapsClient, geodesy geo.Geodesy, cache *cache.Cache, config *config.Config) *MapsService {
	return &MapsService{
		client:  client,
		geodesy: geodesy,
		sampler: sampler.New(geodesy),
		cache:   cache,
		config:  config,
	}
}

// Geocode resolves an address, reusing cached answers
func (s *MapsService) Geocode(ctx context.Context, address string) (*google.GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidRequest)
	}

	cacheKey := "geocode:" + strings.ToLower(address)
	var cached google.GeocodeResult
	if found, err := s.cache.Get(cacheKey, &cached); err != nil {
		logging.Warnw(ctx, "Cache error", "key", cacheKey, "error", err)
	} else if found {
		return &cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Google.Timeout)
	defer cancel()

	result, err := s.client.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, s.config.Cache.GeocodeTTL, "geocode"); err != nil {
		logging.Warnw(ctx, "Failed to cache geocode result", "key", cacheKey, "error", err)
	}
	return result, nil
}

// Directions computes a route, reusing cached answers. An empty mode uses the configured default.
func (s *MapsService) Directions(ctx context.Context, origin, destination, mode string) (*google.Route, error) {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidRequest)
	}
	if mode == "" {
		mode = s.config.Google.Mode
	}
	if _, err := google.ParseMode(mode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	cacheKey := fmt.Sprintf("directions:%s:%s|%s", strings.ToLower(mode), origin, destination)
	var cached google.Route
	if found, err := s.cache.Get(cacheKey, &cached); err != nil {
		logging.Warnw(ctx, "Cache error", "key", cacheKey, "error", err)
	} else if found {
		return &cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Google.Timeout)
	defer cancel()

	logging.Infow(ctx, "Fetching directions", "origin", origin, "destination", destination, "mode", mode)
	route, err := s.client.Directions(ctx, origin, destination, mode)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, route, s.config.Cache.DirectionsTTL, "directions"); err != nil {
		logging.Warnw(ctx, "Failed to cache directions", "key", cacheKey, "error", err)
	}
	return route, nil
}

// FitBounds returns the bounds containing all points, padded by paddingMeters
func (s *MapsService) FitBounds(points []geo.Point, paddingMeters float64) (geo.Bounds, error) {
	bounds, err := geo.FitBounds(points, paddingMeters)
	if err != nil {
		return geo.Bounds{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return bounds, nil
}

// SamplePath samples a caller supplied path. A zero spacing uses the configured default.
func (s *MapsService) SamplePath(ctx context.Context, path []geo.Point, spacing float64) (*SampleResult, error) {
	if spacing == 0 {
		spacing = s.config.Sampler.DefaultSpacingMeters
	}

	markers, err := s.sampler.Sample(path, spacing)
	if err != nil {
		return nil, err
	}

	length, err := geo.PathLength(s.geodesy, path)
	if err != nil {
		return nil, err
	}
	bounds, err := geo.FitBounds(path, 0)
	if err != nil {
		return nil, err
	}

	logging.Debugw(ctx, "Sampled path", "points", len(path), "markers", len(markers), "spacing", spacing)

	return &SampleResult{
		Markers:       markers,
		SpacingMeters: spacing,
		PathPoints:    len(path),
		LengthMeters:  length,
		Bounds:        bounds,
		Path:          path,
	}, nil
}

// SampleRoute fetches directions, flattens the route and samples it
func (s *MapsService) SampleRoute(ctx context.Context, origin, destination, mode string, spacing float64) (*SampleResult, error) {
	route, err := s.Directions(ctx, origin, destination, mode)
	if err != nil {
		return nil, err
	}

	result, err := s.SamplePath(ctx, route.Path(), spacing)
	if err != nil {
		return nil, fmt.Errorf("failed to sample route %q: %w", route.Summary, err)
	}
	result.Route = route
	return result, nil
}

// SampleRouteAsync runs SampleRoute on its own goroutine
func (s *MapsService) SampleRouteAsync(ctx context.Context, origin, destination, mode string, spacing float64) *async.Future[*SampleResult] {
	return async.Go(ctx, func(ctx context.Context) (*SampleResult, error) {
		return s.SampleRoute(ctx, origin, destination, mode, spacing)
	})
}
