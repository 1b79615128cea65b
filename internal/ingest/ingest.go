// Package ingest parses the nested per-route JSON described in spec.md
// §4.B into a normalized in-memory catalog, the way internal/gtfs in the
// teacher repo turns GTFS text files into a GTFSFeed — except the source
// format here is one JSON document instead of five CSV files.
package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
)

// stopJSON is one entry of "getstopsbyvar".
type stopJSON struct {
	StopId int     `json:"StopId"`
	Lat    float64 `json:"Lat"`
	Lng    float64 `json:"Lng"`
	Name   string  `json:"Name"`
}

// pathJSON is the polyline geometry of one variant.
type pathJSON struct {
	Lat []float64 `json:"lat"`
	Lng []float64 `json:"lng"`
}

// tripJSON is one entry of "gettripsbytimetable".
type tripJSON struct {
	TripId    int    `json:"TripId"`
	StartTime string `json:"StartTime"`
	EndTime   string `json:"EndTime"`
}

type routeEntry struct {
	GetRouteByID struct {
		RouteId int    `json:"RouteId"`
		RouteNo string `json:"RouteNo"`
		Type    string `json:"Type"`
	} `json:"getroutebyid"`
	GetVarsByRoute []struct {
		RouteVarId   int    `json:"RouteVarId"`
		RouteVarName string `json:"RouteVarName"`
	} `json:"getvarsbyroute"`
	GetStopsByVar       map[string][]stopJSON  `json:"getstopsbyvar"`
	GetPathsByVar       map[string]pathJSON    `json:"getpathsbyvar"`
	GetTimeTableByRoute []struct {
		TimeTableId int `json:"TimeTableId"`
		RouteVarId  int `json:"RouteVarId"`
	} `json:"gettimetablebyroute"`
	GetTripsByTimeTable map[string][]tripJSON `json:"gettripsbytimetable"`
}

// VariantKey identifies a (route, variant) pair.
type VariantKey struct {
	RouteID   int
	VariantID int
}

// Catalog is the normalized view produced by Load: routes, variants,
// stops, and the timetables/trips that hang off each variant.
type Catalog struct {
	Stops      map[int]*Stop
	Routes     map[int]*Route
	Variants   map[VariantKey]*Variant
	VariantOrd []VariantKey // emission order: first route, first variant, ...
	Timetables map[VariantKey][]Timetable
}

// Stop mirrors model.Stop; Routes is the set of route ids serving the
// stop, unioned over every ingested variant.
type Stop struct {
	StopID int
	Lat    float64
	Lng    float64
	Name   string
	Routes map[int]struct{}
}

// Route is the (route_id, route_no, bus_type) triple from spec.md §3.
type Route struct {
	RouteID int
	RouteNo string
	BusType string
}

// Variant is a directional service pattern with its stop sequence and
// polyline geometry.
type Variant struct {
	RouteID     int
	VariantID   int
	VariantName string
	StopIDs     []int
	PolyLat     []float64
	PolyLng     []float64
}

// Timetable groups trips for a given variant.
type Timetable struct {
	TimetableID int
	Trips       []Trip
}

// Trip is a single scheduled dispatch with raw "HH:MM" times.
type Trip struct {
	TripID    int
	StartTime string
	EndTime   string
}

// Load reads and normalizes the routes JSON file at path. routeLimit, if
// greater than zero, caps the number of routes ingested (spec.md §6,
// ROUTE_LIMIT).
func Load(path string, routeLimit int) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading %s: %w", path, err)
	}

	var doc map[string]routeEntry
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("ingest: parsing %s: %w", path, err)
	}

	// Route keys are processed in RouteId order, not JSON object order
	// (Go maps have no stable iteration order), so that node/link ids are
	// reproducible across runs per spec.md §8's idempotence property.
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return doc[keys[i]].GetRouteByID.RouteId < doc[keys[j]].GetRouteByID.RouteId
	})

	cat := &Catalog{
		Stops:      make(map[int]*Stop),
		Routes:     make(map[int]*Route),
		Variants:   make(map[VariantKey]*Variant),
		Timetables: make(map[VariantKey][]Timetable),
	}

	routesSeen := 0
	for _, key := range keys {
		if routeLimit > 0 && routesSeen >= routeLimit {
			break
		}
		entry := doc[key]
		routeID := entry.GetRouteByID.RouteId
		if routeID == 0 {
			routeID = parseKeyAsID(key)
		}
		cat.Routes[routeID] = &Route{
			RouteID: routeID,
			RouteNo: entry.GetRouteByID.RouteNo,
			BusType: entry.GetRouteByID.Type,
		}
		routesSeen++

		timetablesByVariant := make(map[int][]int) // variantID -> timetable ids
		for _, tt := range entry.GetTimeTableByRoute {
			timetablesByVariant[tt.RouteVarId] = append(timetablesByVariant[tt.RouteVarId], tt.TimeTableId)
		}

		for _, v := range entry.GetVarsByRoute {
			variantID := v.RouteVarId
			vkey := strconv.Itoa(variantID)

			stops, ok := entry.GetStopsByVar[vkey]
			if !ok {
				log.Printf("ingest: route %d variant %d: missing stops, skipping variant", routeID, variantID)
				continue
			}
			if len(stops) < 2 {
				log.Printf("ingest: route %d variant %d: fewer than two stops, skipping variant", routeID, variantID)
				continue
			}
			path, ok := entry.GetPathsByVar[vkey]
			if !ok {
				log.Printf("ingest: route %d variant %d: missing path, skipping variant", routeID, variantID)
				continue
			}
			if len(path.Lat) < 2 || len(path.Lng) < 2 {
				log.Printf("ingest: route %d variant %d: polyline has fewer than two vertices, skipping variant", routeID, variantID)
				continue
			}

			stopIDs := make([]int, 0, len(stops))
			for _, s := range stops {
				stopIDs = append(stopIDs, s.StopId)
				if existing, ok := cat.Stops[s.StopId]; ok {
					existing.Routes[routeID] = struct{}{}
				} else {
					cat.Stops[s.StopId] = &Stop{
						StopID: s.StopId,
						Lat:    s.Lat,
						Lng:    s.Lng,
						Name:   s.Name,
						Routes: map[int]struct{}{routeID: {}},
					}
				}
			}

			variant := &Variant{
				RouteID:     routeID,
				VariantID:   variantID,
				VariantName: v.RouteVarName,
				StopIDs:     stopIDs,
				PolyLat:     path.Lat,
				PolyLng:     path.Lng,
			}
			vk := VariantKey{RouteID: routeID, VariantID: variantID}
			cat.Variants[vk] = variant
			cat.VariantOrd = append(cat.VariantOrd, vk)

			ttIDs := timetablesByVariant[variantID]
			sort.Ints(ttIDs)
			for _, ttID := range ttIDs {
				tripsJSON, ok := entry.GetTripsByTimeTable[strconv.Itoa(ttID)]
				if !ok {
					continue
				}
				trips := make([]Trip, 0, len(tripsJSON))
				for _, t := range tripsJSON {
					trips = append(trips, Trip{TripID: t.TripId, StartTime: t.StartTime, EndTime: t.EndTime})
				}
				cat.Timetables[vk] = append(cat.Timetables[vk], Timetable{TimetableID: ttID, Trips: trips})
			}
		}
	}

	log.Printf("ingest: loaded %d routes, %d variants, %d stops", routesSeen, len(cat.Variants), len(cat.Stops))
	return cat, nil
}

func parseKeyAsID(key string) int {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0
	}
	return n
}
