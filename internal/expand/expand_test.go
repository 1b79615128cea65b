package expand

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anninhn/hcmc-transit-accessibility/internal/config"
	"github.com/anninhn/hcmc-transit-accessibility/internal/geocache"
	"github.com/anninhn/hcmc-transit-accessibility/internal/ingest"
	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

func straightCatalog() *ingest.Catalog {
	vk := ingest.VariantKey{RouteID: 1, VariantID: 1}
	return &ingest.Catalog{
		Stops: map[int]*ingest.Stop{
			10: {StopID: 10, Lat: 10.0, Lng: 106.0, Name: "A"},
			11: {StopID: 11, Lat: 10.01, Lng: 106.0, Name: "B"},
			12: {StopID: 12, Lat: 10.02, Lng: 106.0, Name: "C"},
		},
		Routes: map[int]*ingest.Route{
			1: {RouteID: 1, RouteNo: "01", BusType: "regular"},
		},
		Variants: map[ingest.VariantKey]*ingest.Variant{
			vk: {
				RouteID:   1,
				VariantID: 1,
				StopIDs:   []int{10, 11, 12},
				PolyLat:   []float64{10.0, 10.01, 10.02},
				PolyLng:   []float64{106.0, 106.0, 106.0},
			},
		},
		VariantOrd: []ingest.VariantKey{vk},
		Timetables: map[ingest.VariantKey][]ingest.Timetable{
			vk: {{TimetableID: 1, Trips: []ingest.Trip{
				{TripID: 100, StartTime: "05:00", EndTime: "05:30"},
			}}},
		},
	}
}

func loopCatalog() *ingest.Catalog {
	vk := ingest.VariantKey{RouteID: 2, VariantID: 1}
	return &ingest.Catalog{
		Stops: map[int]*ingest.Stop{
			20: {StopID: 20, Lat: 10.0, Lng: 106.0, Name: "Depot"},
			21: {StopID: 21, Lat: 10.0, Lng: 106.0, Name: "Depot-return"},
		},
		Routes: map[int]*ingest.Route{
			2: {RouteID: 2, RouteNo: "02", BusType: "regular"},
		},
		Variants: map[ingest.VariantKey]*ingest.Variant{
			vk: {
				RouteID:   2,
				VariantID: 1,
				StopIDs:   []int{20, 21},
				PolyLat:   []float64{10.0, 10.01, 10.0},
				PolyLng:   []float64{106.0, 106.01, 106.0},
			},
		},
		VariantOrd: []ingest.VariantKey{vk},
		Timetables: map[ingest.VariantKey][]ingest.Timetable{
			vk: {{TimetableID: 1, Trips: []ingest.Trip{
				{TripID: 200, StartTime: "22:30", EndTime: "01:30"},
			}}},
		},
	}
}

func collect(t *testing.T, cat *ingest.Catalog, cfg config.Config) []model.Node {
	t.Helper()
	cache := geocache.New("")
	var nodes []model.Node
	err := Run(cat, cfg, cache, func(n model.Node) error {
		nodes = append(nodes, n)
		return nil
	})
	require.NoError(t, err)
	return nodes
}

func TestRunEmitsAlternatingEvents(t *testing.T) {
	cfg := config.Default()
	cfg.MinAvgSpeed = 0.01 // keeps the fixture's ~1.28 m/s trip well inside the speed bounds
	nodes := collect(t, straightCatalog(), cfg)

	require.Len(t, nodes, 4) // DEP, ARR, DEP, ARR
	assert.Equal(t, model.Departure, nodes[0].Event)
	assert.Equal(t, model.Arrival, nodes[1].Event)
	assert.Equal(t, model.Departure, nodes[2].Event)
	assert.Equal(t, model.Arrival, nodes[3].Event)

	for i := 1; i < len(nodes); i++ {
		assert.GreaterOrEqual(t, nodes[i].Timestamp, nodes[i-1].Timestamp)
	}
}

func TestRunLoopVariantEmitsOnlyEndpoints(t *testing.T) {
	cfg := config.Default()
	cfg.MinAvgSpeed = 0.001
	cfg.MaxAvgSpeed = 1000
	nodes := collect(t, loopCatalog(), cfg)

	require.Len(t, nodes, 2)
	assert.Equal(t, model.Departure, nodes[0].Event)
	assert.Equal(t, 20, nodes[0].StopID)
	assert.Equal(t, model.Arrival, nodes[1].Event)
	assert.Equal(t, 21, nodes[1].StopID)
}

func TestRunOvernightTripRollsPastMidnight(t *testing.T) {
	cfg := config.Default()
	cfg.MinAvgSpeed = 0.001
	cfg.MaxAvgSpeed = 1000
	nodes := collect(t, loopCatalog(), cfg)

	require.Len(t, nodes, 2)
	assert.Equal(t, int64(22*3600+30*60), nodes[0].Timestamp)
	assert.Equal(t, int64(25*3600+30*60), nodes[1].Timestamp) // 01:30 + 1 day
}

func TestRunDropsImplausibleSpeed(t *testing.T) {
	cfg := config.Default()
	// The fixture's trip averages ~1.28 m/s (~2224 m over 1740 s of travel),
	// so a 2.0 m/s minimum makes it implausibly slow.
	cfg.MinAvgSpeed = 2.0
	nodes := collect(t, straightCatalog(), cfg)
	assert.Empty(t, nodes)
}

func TestRunAbortsOnEmitError(t *testing.T) {
	cfg := config.Default()
	cfg.MinAvgSpeed = 0.01
	cache := geocache.New("")
	boom := errors.New("disk full")

	err := Run(straightCatalog(), cfg, cache, func(n model.Node) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantOk  bool
	}{
		{"05:00", 5 * 3600, true},
		{"23:59", 23*3600 + 59*60, true},
		{"0:00", 0, true},
		{"bad", 0, false},
		{"12:99", 0, false},
		{"12", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseHHMM(tt.in)
		assert.Equal(t, tt.wantOk, ok, tt.in)
		if tt.wantOk {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
