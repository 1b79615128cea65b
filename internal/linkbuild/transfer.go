package linkbuild

import (
	"sort"

	"github.com/anninhn/hcmc-transit-accessibility/internal/config"
	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

// BuildTransfer emits a transfer link from every ARRIVAL to every
// subsequent different-route DEPARTURE at the same stop whose timestamp
// falls in [arrival + MIN_TRANSFER_TIME, arrival + MAX_TRANSFER_TIME]
// (spec.md §4.G, §8 invariant 2).
func BuildTransfer(nodes []model.Node, cfg config.Config, w *Writer) error {
	groups := make(map[int][]model.Node)
	for _, n := range nodes {
		groups[n.StopID] = append(groups[n.StopID], n)
	}

	stopIDs := make([]int, 0, len(groups))
	for id := range groups {
		stopIDs = append(stopIDs, id)
	}
	sort.Ints(stopIDs)

	for _, stopID := range stopIDs {
		group := groups[stopID]
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
			lo := arr.Timestamp + cfg.MinTransferTime
			hi := arr.Timestamp + cfg.MaxTransferTime
			startIdx := sort.Search(len(departures), func(i int) bool { return departures[i].Timestamp >= lo })
			for _, dep := range departures[startIdx:] {
				if dep.Timestamp > hi {
					break
				}
				if dep.RouteID == arr.RouteID {
					continue
				}
				duration := dep.Timestamp - arr.Timestamp
				if err := w.Append(arr.NodeID, dep.NodeID, duration, model.ModeTransfer); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
