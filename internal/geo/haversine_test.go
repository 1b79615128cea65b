package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name     string
		lat1     float64
		lng1     float64
		lat2     float64
		lng2     float64
		expected float64
		delta    float64
	}{
		{name: "identical points", lat1: 10.77, lng1: 106.70, lat2: 10.77, lng2: 106.70, expected: 0, delta: 1e-6},
		{name: "one degree of latitude", lat1: 0, lng1: 0, lat2: 1, lng2: 0, expected: 111195, delta: 200},
		{name: "known HCMC pair", lat1: 10.7769, lng1: 106.7009, lat2: 10.7865, lng2: 106.6954, expected: 1160, delta: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Haversine(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.expected, d, tt.delta)
		})
	}
}

func TestNearestIndex(t *testing.T) {
	polyLat := []float64{0, 1, 2, 3}
	polyLng := []float64{0, 0, 0, 0}

	idx, dist := NearestIndex(1.01, 0, polyLat, polyLng)
	assert.Equal(t, 1, idx)
	assert.Greater(t, dist, 0.0)
}

func TestPathLengthBetween(t *testing.T) {
	// A straight polyline with four equally spaced vertices.
	polyLat := []float64{0, 1, 2, 3}
	polyLng := []float64{0, 0, 0, 0}

	full := PathLengthBetween(0, 0, 3, 0, polyLat, polyLng)
	partial := PathLengthBetween(0, 0, 1, 0, polyLat, polyLng)
	assert.Greater(t, full, partial)

	// Order of the two stops must not matter.
	reversed := PathLengthBetween(3, 0, 0, 0, polyLat, polyLng)
	assert.InDelta(t, full, reversed, 1e-9)

	assert.Equal(t, 0.0, PathLengthBetween(0, 0, 1, 0, []float64{1}, []float64{1}))
}

func TestPolylineLength(t *testing.T) {
	polyLat := []float64{0, 0}
	polyLng := []float64{0, 1}
	length := PolylineLength(polyLat, polyLng)
	assert.True(t, math.Abs(length-Haversine(0, 0, 0, 1)) < 1e-6)

	assert.Equal(t, 0.0, PolylineLength(nil, nil))
}
