package linkbuild

import (
	"sort"

	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

type stopRouteKey struct {
	StopID  int
	RouteID int
}

// BuildWait emits a wait link from every ARRIVAL to every subsequent
// same-(stop, route) DEPARTURE, with no upper bound on duration — this is
// deliberate (spec.md §4.F) and makes wait the densest link class.
func BuildWait(nodes []model.Node, w *Writer) error {
	groups := make(map[stopRouteKey][]model.Node)
	for _, n := range nodes {
		k := stopRouteKey{StopID: n.StopID, RouteID: n.RouteID}
		groups[k] = append(groups[k], n)
	}

	keys := make([]stopRouteKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].StopID != keys[j].StopID {
			return keys[i].StopID < keys[j].StopID
		}
		return keys[i].RouteID < keys[j].RouteID
	})

	for _, k := range keys {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Timestamp < group[j].Timestamp })

		var arrivals, departures []model.Node
		for _, n := range group {
			if n.Event == model.Arrival {
				arrivals = append(arrivals, n)
			} else {
				departures = append(departures, n)
			}
		}

		for _, arr := range arrivals {
			idx := sort.Search(len(departures), func(i int) bool { return departures[i].Timestamp > arr.Timestamp })
			for _, dep := range departures[idx:] {
				duration := dep.Timestamp - arr.Timestamp
				if err := w.Append(arr.NodeID, dep.NodeID, duration, model.ModeWait); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
