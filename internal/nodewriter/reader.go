package nodewriter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
)

// ReadAll loads the node table CSV produced by Writer back into memory,
// the input shape link builders in internal/linkbuild consume.
func ReadAll(path string) ([]model.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nodewriter: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("nodewriter: reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	var nodes []model.Node
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		node, ok := parseRow(rec, col)
		if !ok {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func parseRow(rec []string, col map[string]int) (model.Node, bool) {
	get := func(name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}
	nodeID, err1 := strconv.ParseInt(get("NodeId"), 10, 64)
	routeID, err2 := strconv.Atoi(get("RouteId"))
	variantID, err3 := strconv.Atoi(get("RouteVarId"))
	tripID, err4 := strconv.Atoi(get("TripId"))
	stopID, err5 := strconv.Atoi(get("StopId"))
	ts, err6 := strconv.ParseInt(get("Timestamp"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return model.Node{}, false
	}
	kind := model.Arrival
	if get("Event") == "DEPARTURE" {
		kind = model.Departure
	}
	return model.Node{
		NodeID:    nodeID,
		RouteID:   routeID,
		RouteNo:   get("RouteNo"),
		VariantID: variantID,
		TripID:    tripID,
		StopID:    stopID,
		StopName:  get("StopName"),
		Timestamp: ts,
		Event:     kind,
	}, true
}
