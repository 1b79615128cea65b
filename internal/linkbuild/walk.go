package linkbuild

import (
	"sort"

	"github.com/anninhn/hcmc-transit-accessibility/internal/config"
	"github.com/anninhn/hcmc-transit-accessibility/internal/geo"
	"github.com/anninhn/hcmc-transit-accessibility/internal/ingest"
	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

// BuildWalk emits a walk link from every ARRIVAL at stop a to every
// DEPARTURE at a disjoint-route stop b within WALKING_RADIUS, where the
// elapsed time (walk + wait) lies in [walk_time, MAX_WALK_WAIT_TIME]
// (spec.md §4.H). Nearby stops are found through a grid index instead of
// the O(n^2) per-arrival scan the reference implementation uses (spec.md
// §9's scalability note).
func BuildWalk(nodes []model.Node, cat *ingest.Catalog, cfg config.Config, w *Writer) error {
	lats := make(map[int]float64, len(cat.Stops))
	lngs := make(map[int]float64, len(cat.Stops))
	for id, s := range cat.Stops {
		lats[id] = s.Lat
		lngs[id] = s.Lng
	}
	grid := geo.NewGrid(cfg.WalkingRadius, lats, lngs)

	departuresByStop := make(map[int][]model.Node)
	for _, n := range nodes {
		if n.Event == model.Departure {
			departuresByStop[n.StopID] = append(departuresByStop[n.StopID], n)
		}
	}
	stopKeys := make([]int, 0, len(departuresByStop))
	for id := range departuresByStop {
		stopKeys = append(stopKeys, id)
	}
	sort.Ints(stopKeys)
	for _, id := range stopKeys {
		deps := departuresByStop[id]
		sort.SliceStable(deps, func(i, j int) bool { return deps[i].Timestamp < deps[j].Timestamp })
		departuresByStop[id] = deps
	}

	arrivals := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Event == model.Arrival {
			arrivals = append(arrivals, n)
		}
	}
	sort.SliceStable(arrivals, func(i, j int) bool {
		if arrivals[i].StopID != arrivals[j].StopID {
			return arrivals[i].StopID < arrivals[j].StopID
		}
		return arrivals[i].Timestamp < arrivals[j].Timestamp
	})

	for _, arr := range arrivals {
		stopA := cat.Stops[arr.StopID]
		if stopA == nil {
			continue
		}
		nearby := grid.Within(stopA.Lat, stopA.Lng, cfg.WalkingRadius, arr.StopID)
		sort.Slice(nearby, func(i, j int) bool { return nearby[i].ID < nearby[j].ID })

		for _, cand := range nearby {
			stopB := cat.Stops[cand.ID]
			if stopB == nil || sharesRoute(stopA, stopB) {
				continue
			}
			walkTime := cand.Distance / cfg.WalkingSpeed
			threshold := float64(arr.Timestamp) + walkTime
			maxTimestamp := arr.Timestamp + cfg.MaxWalkWaitTime

			deps := departuresByStop[cand.ID]
			startIdx := sort.Search(len(deps), func(i int) bool { return float64(deps[i].Timestamp) >= threshold })
			for _, dep := range deps[startIdx:] {
				if dep.Timestamp > maxTimestamp {
					break
				}
				duration := dep.Timestamp - arr.Timestamp
				if err := w.Append(arr.NodeID, dep.NodeID, duration, model.ModeWalk); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func sharesRoute(a, b *ingest.Stop) bool {
	small, big := a.Routes, b.Routes
	if len(b.Routes) < len(small) {
		small, big = big, small
	}
	for rid := range small {
		if _, ok := big[rid]; ok {
			return true
		}
	}
	return false
}
