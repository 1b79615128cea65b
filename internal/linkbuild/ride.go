package linkbuild

import (
	"sort"

	"github.com/anninhn/hcmc-transit-accessibility/internal/config"
	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

type tripKey struct {
	RouteID int
	TripID  int
}

// BuildRide emits a ride link from every DEPARTURE to the first ARRIVAL
// strictly after it within the same (route, trip), dropping any pair
// whose duration is not in (0, cfg.RideLinkMaxSecs) — the undocumented
// filter from link_generator.py's create_ride_links (spec.md §4.E, §9
// open question (i)).
func BuildRide(nodes []model.Node, cfg config.Config, w *Writer) error {
	groups := make(map[tripKey][]model.Node)
	for _, n := range nodes {
		k := tripKey{RouteID: n.RouteID, TripID: n.TripID}
		groups[k] = append(groups[k], n)
	}

	keys := make([]tripKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].RouteID != keys[j].RouteID {
			return keys[i].RouteID < keys[j].RouteID
		}
		return keys[i].TripID < keys[j].TripID
	})

	for _, k := range keys {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Timestamp < group[j].Timestamp })

		var arrivals []model.Node
		for _, n := range group {
			if n.Event == model.Arrival {
				arrivals = append(arrivals, n)
			}
		}

		for _, dep := range group {
			if dep.Event != model.Departure {
				continue
			}
			idx := sort.Search(len(arrivals), func(i int) bool { return arrivals[i].Timestamp > dep.Timestamp })
			if idx == len(arrivals) {
				continue
			}
			arr := arrivals[idx]
			duration := arr.Timestamp - dep.Timestamp
			if duration <= 0 || duration >= cfg.RideLinkMaxSecs {
				continue
			}
			if err := w.Append(dep.NodeID, arr.NodeID, duration, model.ModeBus); err != nil {
				return err
			}
		}
	}
	return nil
}
