package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"

	"github.com/dpup/routemarks/server/internal/lib/geo"
)

// ErrNoResults is returned when the API answers successfully but with nothing to use
var ErrNoResults = errors.New("no results found")

// Client provides access to the Google Maps Directions and Geocoding APIs
type Client struct {
	maps    *maps.Client
	limiter *rate.Limiter
}

type clientOptions struct {
	baseURL           string
	httpClient        *http.Client
	requestsPerSecond float64
}

// Option configures a Client
type Option func(*clientOptions)

// WithBaseURL points the client at a different host, e.g. a test server
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = httpClient }
}

// WithRateLimit caps outgoing requests per second
func WithRateLimit(requestsPerSecond float64) Option {
	return func(o *clientOptions) { o.requestsPerSecond = requestsPerSecond }
}

// NewClient creates a new Google Maps client
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google maps API key is required")
	}

	o := clientOptions{
		httpClient:        &http.Client{Timeout: 30 * time.Second},
		requestsPerSecond: 10,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.requestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive: %v", o.requestsPerSecond)
	}

	mapsOpts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(o.httpClient),
	}
	if o.baseURL != "" {
		mapsOpts = append(mapsOpts, maps.WithBaseURL(o.baseURL))
	}

	mc, err := maps.NewClient(mapsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &Client{
		maps:    mc,
		limiter: rate.NewLimiter(rate.Limit(o.requestsPerSecond), 1),
	}, nil
}

// Directions computes a route between origin and destination. Both accept an
// address or a "lat,lng" string (see LatLng).
func (c *Client) Directions(ctx context.Context, origin, destination, mode string) (*Route, error) {
	travelMode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	routes, _, err := c.maps.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        travelMode,
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("directions from %q to %q: %w", origin, destination, ErrNoResults)
	}

	return processRoute(routes[0])
}

// Geocode resolves an address to its first matching location
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.New("address is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", address, ErrNoResults)
	}

	r := results[0]
	return &GeocodeResult{
		FormattedAddress: r.FormattedAddress,
		PlaceID:          r.PlaceID,
		Point:            fromLatLng(r.Geometry.Location),
	}, nil
}

// processRoute converts a maps.Route into our Route, decoding every step polyline
func processRoute(route maps.Route) (*Route, error) {
	out := &Route{
		Summary:  route.Summary,
		Overview: route.OverviewPolyline.Points,
		Bounds: geo.Bounds{
			SouthWest: fromLatLng(route.Bounds.SouthWest),
			NorthEast: fromLatLng(route.Bounds.NorthEast),
		},
	}

	for i, leg := range route.Legs {
		l := Leg{
			StartAddress:    leg.StartAddress,
			EndAddress:      leg.EndAddress,
			DistanceMeters:  leg.Distance.Meters,
			DurationSeconds: int(leg.Duration / time.Second),
		}

		for j, step := range leg.Steps {
			points, err := geo.DecodePolyline(step.Polyline.Points)
			if err != nil {
				return nil, fmt.Errorf("leg %d step %d: %w", i, j, err)
			}
			l.Steps = append(l.Steps, Step{Points: points})
		}

		out.DistanceMeters += l.DistanceMeters
		out.DurationSeconds += l.DurationSeconds
		out.Legs = append(out.Legs, l)
	}

	return out, nil
}

// ParseMode maps a travel mode name onto the SDK's mode, defaulting to driving
func ParseMode(mode string) (maps.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "driving":
		return maps.TravelModeDriving, nil
	case "walking":
		return maps.TravelModeWalking, nil
	case "bicycling":
		return maps.TravelModeBicycling, nil
	case "transit":
		return maps.TravelModeTransit, nil
	}
	return "", fmt.Errorf("unsupported travel mode %q", mode)
}

// LatLng formats a point the way the web services accept coordinates
func LatLng(p geo.Point) string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

func fromLatLng(ll maps.LatLng) geo.Point {
	return geo.Point{Latitude: ll.Lat, Longitude: ll.Lng}
}
