package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "2": {
    "getroutebyid": {"RouteId": 2, "RouteNo": "02", "Type": "regular"},
    "getvarsbyroute": [{"RouteVarId": 1, "RouteVarName": "Outbound"}],
    "getstopsbyvar": {
      "1": [
        {"StopId": 100, "Lat": 10.77, "Lng": 106.70, "Name": "Ben Thanh"},
        {"StopId": 101, "Lat": 10.78, "Lng": 106.71, "Name": "District 3"}
      ]
    },
    "getpathsbyvar": {
      "1": {"lat": [10.77, 10.775, 10.78], "lng": [106.70, 106.705, 106.71]}
    },
    "gettimetablebyroute": [{"TimeTableId": 9, "RouteVarId": 1}],
    "gettripsbytimetable": {
      "9": [{"TripId": 77, "StartTime": "05:00", "EndTime": "05:20"}]
    }
  },
  "1": {
    "getroutebyid": {"RouteId": 1, "RouteNo": "01", "Type": "regular"},
    "getvarsbyroute": [{"RouteVarId": 5, "RouteVarName": "BadVariant"}],
    "getstopsbyvar": {},
    "getpathsbyvar": {},
    "gettimetablebyroute": [],
    "gettripsbytimetable": {}
  }
}`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))
	return path
}

func TestLoadOrdersRoutesNumerically(t *testing.T) {
	path := writeSample(t)
	cat, err := Load(path, 0)
	require.NoError(t, err)

	// Route "1" has RouteId 1 and must be visited before route "2",
	// even though it appears second in the JSON object.
	require.Len(t, cat.Routes, 2)
	assert.Equal(t, "01", cat.Routes[1].RouteNo)
	assert.Equal(t, "02", cat.Routes[2].RouteNo)

	// With a one-route limit, only the first route visited is kept.
	limited, err := Load(path, 1)
	require.NoError(t, err)
	require.Len(t, limited.Routes, 1)
	assert.Contains(t, limited.Routes, 1)
}

func TestLoadSkipsVariantMissingStops(t *testing.T) {
	path := writeSample(t)
	cat, err := Load(path, 0)
	require.NoError(t, err)

	_, ok := cat.Variants[VariantKey{RouteID: 1, VariantID: 5}]
	assert.False(t, ok, "variant with no stops must be skipped")

	v, ok := cat.Variants[VariantKey{RouteID: 2, VariantID: 1}]
	require.True(t, ok)
	assert.Equal(t, []int{100, 101}, v.StopIDs)
}

func TestLoadUnionsStopRoutes(t *testing.T) {
	path := writeSample(t)
	cat, err := Load(path, 0)
	require.NoError(t, err)

	stop := cat.Stops[100]
	require.NotNil(t, stop)
	_, served := stop.Routes[2]
	assert.True(t, served)
}

func TestLoadRouteLimit(t *testing.T) {
	path := writeSample(t)
	cat, err := Load(path, 1)
	require.NoError(t, err)
	assert.Len(t, cat.Routes, 1)
	assert.Contains(t, cat.Routes, 1)
}

func TestLoadTimetablesAttachToVariant(t *testing.T) {
	path := writeSample(t)
	cat, err := Load(path, 0)
	require.NoError(t, err)

	tts := cat.Timetables[VariantKey{RouteID: 2, VariantID: 1}]
	require.Len(t, tts, 1)
	require.Len(t, tts[0].Trips, 1)
	assert.Equal(t, 77, tts[0].Trips[0].TripID)
}
