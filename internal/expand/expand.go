// Package expand implements component C of the pipeline: turning each
// ingested variant's timetables into a validated, timestamped stream of
// arrival/departure events (spec.md §4.C).
package expand

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/anninhn/hcmc-transit-accessibility/internal/config"
	"github.com/anninhn/hcmc-transit-accessibility/internal/geo"
	"github.com/anninhn/hcmc-transit-accessibility/internal/geocache"
	"github.com/anninhn/hcmc-transit-accessibility/internal/ingest"
	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

// Emit is called once per event in emission order. NodeID is left zero;
// the caller (internal/nodewriter) owns the global monotonic counter.
type Emit func(model.Node) error

// Run expands every variant in cat in catalog order, emitting its event
// stream through emit. Per-variant and per-trip failures are logged and
// skipped; only an emit error aborts the run (an I/O failure downstream,
// which spec.md §7 classifies as fatal).
func Run(cat *ingest.Catalog, cfg config.Config, cache geocache.Cache, emit Emit) error {
	for _, vk := range cat.VariantOrd {
		v := cat.Variants[vk]
		route := cat.Routes[vk.RouteID]
		if route == nil {
			log.Printf("expand: route %d variant %d: route metadata missing, skipping", vk.RouteID, vk.VariantID)
			continue
		}
		dwell := cfg.DwellFor(route.BusType)

		loop := isLoop(v, cat.Stops)
		var stopDistances []float64
		var totalDistance float64

		if loop {
			totalDistance = cache.GetOrCompute(
				fmt.Sprintf("loop:%d:%d", vk.RouteID, vk.VariantID),
				func() float64 { return geo.PolylineLength(v.PolyLat, v.PolyLng) },
			)
		} else {
			stopDistances = make([]float64, len(v.StopIDs)-1)
			for i := 0; i < len(v.StopIDs)-1; i++ {
				a := cat.Stops[v.StopIDs[i]]
				b := cat.Stops[v.StopIDs[i+1]]
				if a == nil || b == nil {
					continue
				}
				key := fmt.Sprintf("seg:%d:%d:%d", vk.RouteID, vk.VariantID, i)
				d := cache.GetOrCompute(key, func() float64 {
					return geo.PathLengthBetween(a.Lat, a.Lng, b.Lat, b.Lng, v.PolyLat, v.PolyLng)
				})
				stopDistances[i] = d
				totalDistance += d
			}
		}

		if totalDistance <= 0 {
			log.Printf("expand: route %d variant %d: non-positive total distance, skipping variant", vk.RouteID, vk.VariantID)
			continue
		}

		for _, tt := range cat.Timetables[vk] {
			for _, trip := range tt.Trips {
				err := expandTrip(cat, v, route, trip, loop, stopDistances, totalDistance, dwell, cfg, emit)
				if err != nil {
					return err // only emit (I/O) errors propagate
				}
			}
		}
	}
	return nil
}

func isLoop(v *ingest.Variant, stops map[int]*ingest.Stop) bool {
	if len(v.StopIDs) != 2 {
		return false
	}
	a, aok := stops[v.StopIDs[0]]
	b, bok := stops[v.StopIDs[1]]
	if !aok || !bok {
		return false
	}
	return a.Lat == b.Lat && a.Lng == b.Lng
}

// emitError wraps the one error class expandTrip can return that must
// abort the whole run: a failure from the caller's emit function.
type emitError struct{ err error }

func (e emitError) Error() string { return e.err.Error() }
func (e emitError) Unwrap() error { return e.err }

func expandTrip(
	cat *ingest.Catalog,
	v *ingest.Variant,
	route *ingest.Route,
	trip ingest.Trip,
	loop bool,
	stopDistances []float64,
	totalDistance float64,
	dwell int64,
	cfg config.Config,
	emit Emit,
) error {
	start, ok := parseHHMM(trip.StartTime)
	if !ok {
		log.Printf("expand: route %d variant %d trip %d: unparseable start_time %q, dropping trip", v.RouteID, v.VariantID, trip.TripID, trip.StartTime)
		return nil
	}
	end, ok := parseHHMM(trip.EndTime)
	if !ok {
		log.Printf("expand: route %d variant %d trip %d: unparseable end_time %q, dropping trip", v.RouteID, v.VariantID, trip.TripID, trip.EndTime)
		return nil
	}
	if end <= start {
		end += 86400 // overnight trip, spec.md §3
	}

	n := len(v.StopIDs)
	totalDwell := int64(n-1) * dwell
	travel := end - start - totalDwell
	if travel <= 0 {
		log.Printf("expand: route %d variant %d trip %d: non-positive travel time, dropping trip", v.RouteID, v.VariantID, trip.TripID)
		return nil
	}

	speed := totalDistance / float64(travel)
	if speed < cfg.MinAvgSpeed || speed > cfg.MaxAvgSpeed {
		log.Printf("expand: route %d variant %d trip %d: speed %.2f m/s out of bounds, dropping trip", v.RouteID, v.VariantID, trip.TripID, speed)
		return nil
	}

	mk := func(stopID int, ts int64, kind model.EventKind) (model.Node, error) {
		stop := cat.Stops[stopID]
		name := ""
		if stop != nil {
			name = stop.Name
		}
		node := model.Node{
			RouteID:   v.RouteID,
			RouteNo:   route.RouteNo,
			VariantID: v.VariantID,
			TripID:    trip.TripID,
			StopID:    stopID,
			StopName:  name,
			Timestamp: ts,
			Event:     kind,
		}
		return node, emit(node)
	}

	if loop {
		if err := emitOrAbort(mk(v.StopIDs[0], start, model.Departure)); err != nil {
			return err
		}
		if err := emitOrAbort(mk(v.StopIDs[1], end, model.Arrival)); err != nil {
			return err
		}
		return nil
	}

	current := float64(start)
	if err := emitOrAbort(mk(v.StopIDs[0], start, model.Departure)); err != nil {
		return err
	}
	for i := 1; i < n; i++ {
		current += stopDistances[i-1] / speed
		arrival := int64(math.Round(current))
		if err := emitOrAbort(mk(v.StopIDs[i], arrival, model.Arrival)); err != nil {
			return err
		}
		if i != n-1 {
			current += float64(dwell)
			departure := int64(math.Round(current))
			if err := emitOrAbort(mk(v.StopIDs[i], departure, model.Departure)); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitOrAbort(_ model.Node, err error) error {
	if err != nil {
		return emitError{err: err}
	}
	return nil
}

// parseHHMM parses "HH:MM" into seconds-since-midnight.
func parseHHMM(s string) (int64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || m < 0 || m > 59 {
		return 0, false
	}
	return int64(h)*3600 + int64(m)*60, true
}
