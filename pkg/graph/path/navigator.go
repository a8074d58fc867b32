package path

import (
	"context"
	"fmt"

	"github.com/natevvv/searoute/pkg/graph"
)

// A Navigator computes shortest paths on a fixed graph.
// Implementations hold no per-search state and can be used from several goroutines at once.
type Navigator interface {
	ShortestPath(ctx context.Context, origin, destination graph.NodeId) (Path, error)
	GetGraph() graph.Graph
}

// Path is the result of a search.
type Path struct {
	Nodes  []graph.NodeId // node ids from origin to destination
	Weight float64        // sum of the arc weights along Nodes, in kilometers
	KPIs   SearchKPIs
}

// SearchKPIs describe the work a search did.
type SearchKPIs struct {
	PqPops             int            // amount of pops performed on the priority queue
	PqUpdates          int            // each push or decrease-key on the priority queue
	RelaxationAttempts int            // every arc looked at
	RelaxedEdges       int            // arcs which were actually relaxed
	SettledNodes       int            // number of settled nodes
	SearchSpace        []graph.NodeId // settled nodes in settle order, only filled if requested
}

// InvalidNodeError is returned when a search endpoint is not a node of the graph.
type InvalidNodeError struct {
	Node      graph.NodeId
	NodeCount int
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("node %v is not contained in the graph (%v nodes)", e.Node, e.NodeCount)
}

// NoPathError is returned when the destination cannot be reached from the origin.
type NoPathError struct {
	Origin      graph.NodeId
	Destination graph.NodeId
	Reason      string
}

func (e *NoPathError) Error() string {
	msg := fmt.Sprintf("no path from node %v to node %v", e.Origin, e.Destination)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func checkNodes(g graph.Graph, nodes ...graph.NodeId) error {
	for _, node := range nodes {
		if node < 0 || node >= g.NodeCount() {
			return &InvalidNodeError{Node: node, NodeCount: g.NodeCount()}
		}
	}
	return nil
}

// Sum the cheapest arc weights along the node sequence.
// Returns false if two consecutive nodes are not connected.
func PathWeight(g graph.Graph, nodes []graph.NodeId) (float64, bool) {
	weight := 0.0
	for i := 1; i < len(nodes); i++ {
		w, ok := graph.Weight(g, nodes[i-1], nodes[i])
		if !ok {
			return 0, false
		}
		weight += w
	}
	return weight, true
}
