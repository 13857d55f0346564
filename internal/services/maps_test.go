package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dpup/routemarks/server/internal/cache"
	"github.com/dpup/routemarks/server/internal/clients/google"
	"github.com/dpup/routemarks/server/internal/config"
	"github.com/dpup/routemarks/server/internal/lib/geo"
	"github.com/dpup/routemarks/server/internal/lib/sampler"
)

// MockMapsClient is a mock implementation of MapsClient
type MockMapsClient struct {
	mock.Mock
}

func (m *MockMapsClient) Directions(ctx context.Context, origin, destination, mode string) (*google.Route, error) {
	args := m.Called(ctx, origin, destination, mode)
	route, _ := args.Get(0).(*google.Route)
	return route, args.Error(1)
}

func (m *MockMapsClient) Geocode(ctx context.Context, address string) (*google.GeocodeResult, error) {
	args := m.Called(ctx, address)
	result, _ := args.Get(0).(*google.GeocodeResult)
	return result, args.Error(1)
}

// eastward builds a path heading due east from Angels Camp with segments of stepMeters
func eastward(t *testing.T, count int, stepMeters float64) []geo.Point {
	g := geo.NewSpherical()
	path := []geo.Point{{Latitude: 38.0675, Longitude: -120.5436}}
	for i := 1; i < count; i++ {
		next, err := g.Destination(path[i-1], stepMeters, 90)
		require.NoError(t, err)
		path = append(path, next)
	}
	return path
}

func newTestService(client MapsClient) *MapsService {
	return NewMapsService(client, geo.NewSpherical(), cache.NewCache(), config.DefaultConfig())
}

func TestSamplePath(t *testing.T) {
	svc := newTestService(&MockMapsClient{})
	path := eastward(t, 21, 100) // 2km

	result, err := svc.SamplePath(context.Background(), path, 0)
	require.NoError(t, err)

	assert.Equal(t, 500.0, result.SpacingMeters, "Zero spacing uses the configured default")
	assert.Equal(t, 21, result.PathPoints)
	assert.InDelta(t, 2000, result.LengthMeters, 1)
	assert.Len(t, result.Markers, 5)
	assert.Equal(t, path[0], result.Markers[0])
	assert.True(t, result.Bounds.Contains(path[10]))

	_, err = svc.SamplePath(context.Background(), path[:1], 0)
	assert.ErrorIs(t, err, sampler.ErrInvalidInput)
}

func TestSampleRoute(t *testing.T) {
	path := eastward(t, 11, 100)
	route := &google.Route{
		Summary:        "CA-4 E",
		DistanceMeters: 1000,
		Legs: []google.Leg{{Steps: []google.Step{
			{Points: path[:6]},
			{Points: path[5:]},
		}}},
	}

	client := &MockMapsClient{}
	client.On("Directions", mock.Anything, "Angels Camp, CA", "Murphys, CA", "driving").Return(route, nil).Once()
	svc := newTestService(client)

	result, err := svc.SampleRoute(context.Background(), "Angels Camp, CA", "Murphys, CA", "", 250)
	require.NoError(t, err)
	assert.Equal(t, 12, result.PathPoints, "Flattened path keeps the duplicated step boundary")
	assert.Len(t, result.Markers, 5)
	assert.Equal(t, route, result.Route)

	// Second call is served from cache
	cached, err := svc.SampleRoute(context.Background(), "Angels Camp, CA", "Murphys, CA", "driving", 250)
	require.NoError(t, err)
	assert.Equal(t, result.Markers, cached.Markers)

	client.AssertExpectations(t)
}

func TestSampleRoute_PropagatesErrors(t *testing.T) {
	errUpstream := errors.New("upstream down")
	client := &MockMapsClient{}
	client.On("Directions", mock.Anything, "a", "b", "walking").Return(nil, errUpstream)
	svc := newTestService(client)

	_, err := svc.SampleRoute(context.Background(), "a", "b", "walking", 0)
	assert.ErrorIs(t, err, errUpstream)

	_, err = svc.SampleRoute(context.Background(), "", "b", "walking", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.SampleRoute(context.Background(), "a", "b", "hovercraft", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSampleRoute_EmptyRoute(t *testing.T) {
	client := &MockMapsClient{}
	client.On("Directions", mock.Anything, "a", "b", "driving").Return(&google.Route{Summary: "empty"}, nil)
	svc := newTestService(client)

	_, err := svc.SampleRoute(context.Background(), "a", "b", "driving", 0)
	assert.ErrorIs(t, err, sampler.ErrInvalidInput)
}

func TestSampleRouteAsync(t *testing.T) {
	path := eastward(t, 11, 100)
	client := &MockMapsClient{}
	client.On("Directions", mock.Anything, "a", "b", "driving").Return(&google.Route{
		Legs: []google.Leg{{Steps: []google.Step{{Points: path}}}},
	}, nil)
	svc := newTestService(client)

	future := svc.SampleRouteAsync(context.Background(), "a", "b", "driving", 500)
	result, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Markers, 3)
}

func TestGeocode(t *testing.T) {
	client := &MockMapsClient{}
	client.On("Geocode", mock.Anything, "Murphys, CA").Return(&google.GeocodeResult{
		FormattedAddress: "Murphys, CA 95247, USA",
		Point:            geo.Point{Latitude: 38.1391, Longitude: -120.4561},
	}, nil).Once()
	svc := newTestService(client)

	result, err := svc.Geocode(context.Background(), "  Murphys, CA ")
	require.NoError(t, err)
	assert.Equal(t, 38.1391, result.Point.Latitude)

	// Cache keys are case-insensitive
	again, err := svc.Geocode(context.Background(), "murphys, ca")
	require.NoError(t, err)
	assert.Equal(t, result, again)

	_, err = svc.Geocode(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	client.AssertExpectations(t)
}

func TestFitBounds(t *testing.T) {
	svc := newTestService(&MockMapsClient{})
	path := eastward(t, 5, 100)

	bounds, err := svc.FitBounds(path, 50)
	require.NoError(t, err)
	for _, p := range path {
		assert.True(t, bounds.Contains(p))
	}

	_, err = svc.FitBounds(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
