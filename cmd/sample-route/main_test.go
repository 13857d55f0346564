package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/routemarks/server/internal/lib/geo"
)

func TestParsePoints(t *testing.T) {
	path, err := parsePoints("38.0675,-120.5436; 38.1000, -120.5000;38.1391,-120.4561;")
	require.NoError(t, err)
	assert.Equal(t, []geo.Point{
		{Latitude: 38.0675, Longitude: -120.5436},
		{Latitude: 38.1000, Longitude: -120.5000},
		{Latitude: 38.1391, Longitude: -120.4561},
	}, path)

	_, err = parsePoints("38.0675")
	assert.Error(t, err)

	_, err = parsePoints("north,-120.5")
	assert.Error(t, err)

	_, err = parsePoints("95,10")
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}
