// Package model holds the domain types shared across the ingestion,
// expansion, and link-building stages of the graph builder.
package model

import "fmt"

// EventKind distinguishes the two halves of a stop-event.
type EventKind int8

const (
	Arrival EventKind = iota
	Departure
)

func (k EventKind) String() string {
	if k == Departure {
		return "DEPARTURE"
	}
	return "ARRIVAL"
}

// Mode identifies the link class a Link belongs to.
type Mode int8

const (
	ModeBus Mode = iota
	ModeWait
	ModeTransfer
	ModeWalk
)

func (m Mode) String() string {
	switch m {
	case ModeBus:
		return "bus"
	case ModeWait:
		return "wait"
	case ModeTransfer:
		return "transfer"
	case ModeWalk:
		return "walk"
	default:
		return "unknown"
	}
}

// Stop is a physical location served by one or more routes.
type Stop struct {
	StopID int
	Lat    float64
	Lng    float64
	Name   string
	Routes map[int]struct{}
}

// HasRoute reports whether route rid serves this stop.
func (s *Stop) HasRoute(rid int) bool {
	_, ok := s.Routes[rid]
	return ok
}

// SharesRoute reports whether s and other are both served by at least
// one common route.
func (s *Stop) SharesRoute(other *Stop) bool {
	small, big := s.Routes, other.Routes
	if len(other.Routes) < len(small) {
		small, big = big, small
	}
	for rid := range small {
		if _, ok := big[rid]; ok {
			return true
		}
	}
	return false
}

// Route is a bus line; BusType selects a dwell-time override.
type Route struct {
	RouteID int
	RouteNo string
	BusType string
}

// Variant is a directional service pattern of a route.
type Variant struct {
	RouteID     int
	VariantID   int
	VariantName string
	StopIDs     []int
	PolyLat     []float64
	PolyLng     []float64
}

// IsLoop reports whether this variant has exactly two stops with
// identical coordinates, per spec.md §3.
func (v *Variant) IsLoop(stops map[int]*Stop) bool {
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

// Timetable groups trips under a (route, variant).
type Timetable struct {
	RouteID     int
	VariantID   int
	TimetableID int
}

// Trip is a single scheduled dispatch with wall-clock start/end times in
// "HH:MM" form.
type Trip struct {
	TimetableID int
	TripID      int
	StartTime   string
	EndTime     string
}

// Node is an arrival or departure occurrence of a trip at a stop.
type Node struct {
	NodeID    int64
	RouteID   int
	RouteNo   string
	VariantID int
	TripID    int
	StopID    int
	StopName  string
	Timestamp int64
	Event     EventKind
}

// TimeStr renders Timestamp as "HH:MM:SS", appending "+Nd" for any
// timestamp that has rolled past one or more midnights.
func (n Node) TimeStr() string {
	days := n.Timestamp / 86400
	rem := n.Timestamp % 86400
	h := rem / 3600
	m := (rem % 3600) / 60
	s := rem % 60
	base := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if days > 0 {
		return fmt.Sprintf("%s+%dd", base, days)
	}
	return base
}

// Attributes renders the redundant packed form documented in spec.md §3.
func (n Node) Attributes() string {
	return fmt.Sprintf("[%d,%d,%d,%q]", n.RouteID, n.StopID, n.Timestamp, n.Event.String())
}

// Link is a legal transition between two Nodes.
type Link struct {
	LinkID   int64
	FromNode int64
	ToNode   int64
	Duration int64
	Mode     Mode
}
