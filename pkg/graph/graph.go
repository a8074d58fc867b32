package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	geo "github.com/natevvv/searoute/pkg/geometry"
)

type NodeId = int

// Graph is the read-only view on a navigable-water graph.
// Node ids are dense indices in [0, NodeCount()).
type Graph interface {
	GetNode(id NodeId) *geo.Coordinate
	GetNodes() []geo.Coordinate
	GetArcsFrom(id NodeId) []Arc
	NodeCount() int
	ArcCount() int
	AsString() string
}

// DataLoadError is returned when reference data is malformed, empty or inconsistent.
type DataLoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := fmt.Sprintf("loading graph from %q: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Validate checks the invariants every loaded graph has to satisfy.
// It returns a DataLoadError naming the first violation.
func Validate(g Graph, source string) error {
	if g.NodeCount() == 0 {
		return &DataLoadError{Source: source, Reason: "graph has no nodes"}
	}
	for i, node := range g.GetNodes() {
		if err := node.Validate(); err != nil {
			return &DataLoadError{Source: source, Reason: fmt.Sprintf("node %v", i), Err: err}
		}
	}
	for i := 0; i < g.NodeCount(); i++ {
		for _, arc := range g.GetArcsFrom(i) {
			if arc.To < 0 || arc.To >= g.NodeCount() {
				return &DataLoadError{Source: source, Reason: fmt.Sprintf("arc %v -> %v references a missing node", i, arc.To)}
			}
			if math.IsNaN(arc.Distance) || math.IsInf(arc.Distance, 0) || arc.Distance < 0 {
				return &DataLoadError{Source: source, Reason: fmt.Sprintf("arc %v -> %v has invalid distance %v", i, arc.To, arc.Distance)}
			}
		}
	}
	return nil
}

// HeuristicFactor returns the largest factor f <= 1 such that f times the
// great-circle distance never exceeds an arc's weight.
// Scaling the A* heuristic by f keeps it admissible and consistent for graphs
// whose weights are not exact great-circle lengths.
func HeuristicFactor(g Graph) float64 {
	factor := 1.0
	for i := 0; i < g.NodeCount(); i++ {
		from := g.GetNode(i)
		for _, arc := range g.GetArcsFrom(i) {
			length := geo.Distance(*from, *g.GetNode(arc.To))
			if length <= 0 {
				continue
			}
			if ratio := arc.Distance / length; ratio < factor {
				factor = ratio
			}
		}
	}
	return factor
}

// Weight returns the cheapest arc weight from -> to, and false if there is none.
func Weight(g Graph, from, to NodeId) (float64, bool) {
	weight, found := math.Inf(1), false
	for _, arc := range g.GetArcsFrom(from) {
		if arc.To == to && arc.Distance < weight {
			weight, found = arc.Distance, true
		}
	}
	return weight, found
}

func GraphAsString(g Graph) string {
	var sb strings.Builder

	// write number of nodes and number of edges
	sb.WriteString(fmt.Sprintf("%v\n", g.NodeCount()))
	sb.WriteString(fmt.Sprintf("%v\n", g.ArcCount()))

	sb.WriteString("#Nodes\n")
	// list all nodes structured as "id lat lon"
	for i := 0; i < g.NodeCount(); i++ {
		node := g.GetNode(i)
		sb.WriteString(fmt.Sprintf("%v %v %v\n", i, node.Lat, node.Lon))
	}

	sb.WriteString("#Edges\n")
	// list all edges structured as "fromId targetId distance [passage]", distance in meters
	for i := 0; i < g.NodeCount(); i++ {
		for _, arc := range g.GetArcsFrom(i) {
			meters := formatMeters(arc.Distance)
			if arc.Passage == "" {
				sb.WriteString(fmt.Sprintf("%v %v %v\n", i, arc.Destination(), meters))
			} else {
				sb.WriteString(fmt.Sprintf("%v %v %v %v\n", i, arc.Destination(), meters, arc.Passage))
			}
		}
	}
	return sb.String()
}

// format kilometers as meters, rounded to micrometers to hide the km <-> m conversion noise
func formatMeters(km float64) string {
	return strconv.FormatFloat(math.Round(km*1e9)/1e6, 'f', -1, 64)
}
