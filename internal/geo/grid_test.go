package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridWithin(t *testing.T) {
	lats := map[int]float64{
		1: 10.7769,
		2: 10.7770, // a few meters from 1
		3: 10.9000, // far away
	}
	lngs := map[int]float64{
		1: 106.7009,
		2: 106.7009,
		3: 106.7009,
	}

	grid := NewGrid(400, lats, lngs)
	found := grid.Within(lats[1], lngs[1], 400, 1)

	ids := make(map[int]bool)
	for _, c := range found {
		ids[c.ID] = true
	}
	assert.True(t, ids[2])
	assert.False(t, ids[1], "query point must exclude itself")
	assert.False(t, ids[3], "far point must not be returned")
}

// TestGridScalesLongitudeCellByLatitude guards against sizing longitude
// cells the same as latitude cells: a degree of longitude covers fewer
// meters than a degree of latitude away from the equator (scaled by
// cos(lat)), so a fixed-degree cell undercovers the east-west direction
// and the 3x3 neighborhood scan can miss a point that is still within
// radiusMeters by straight-line distance. The effect is small at a
// metropolitan latitude (~10-11 degrees) but unambiguous at a steeper
// one, which this fixture uses to make a regression observable.
func TestGridScalesLongitudeCellByLatitude(t *testing.T) {
	const radius = 1000.0
	lat := 80.0
	lngA := 0.0
	lngB := 0.046549 // mostly-eastward offset

	dist := Haversine(lat, lngA, lat, lngB)
	require.Less(t, dist, radius, "fixture distance must be inside the query radius")

	lats := map[int]float64{1: lat, 2: lat}
	lngs := map[int]float64{1: lngA, 2: lngB}
	grid := NewGrid(radius, lats, lngs)

	found := grid.Within(lat, lngA, radius, 1)
	ids := make(map[int]bool)
	for _, c := range found {
		ids[c.ID] = true
	}
	assert.True(t, ids[2], "a point within radius via a longitude-dominant offset must be found")
}

func TestGridEmptyIndex(t *testing.T) {
	grid := NewGrid(400, map[int]float64{}, map[int]float64{})
	found := grid.Within(10, 106, 400, -1)
	assert.Empty(t, found)
}
