package graph

import (
	"fmt"

	geo "github.com/natevvv/searoute/pkg/geometry"
)

// Implementation for dynamic graphs.
// It is used while reading reference data and frozen into an AdjacencyArrayGraph afterwards.
type AdjacencyListGraph struct {
	Nodes    []geo.Coordinate // The nodes of the graph
	Edges    [][]Arc          // The Arcs of the graph. The first slice specifies to which the arc belongs
	arcCount int              // the number of arcs in the graph
}

func NewAdjacencyListGraph() *AdjacencyListGraph {
	return &AdjacencyListGraph{
		Nodes: make([]geo.Coordinate, 0),
		Edges: make([][]Arc, 0),
	}
}

// Return the node for the given id
func (alg *AdjacencyListGraph) GetNode(id NodeId) *geo.Coordinate {
	if id < 0 || id >= alg.NodeCount() {
		panic(id)
	}
	return &alg.Nodes[id]
}

// Return all nodes of the graph
func (alg *AdjacencyListGraph) GetNodes() []geo.Coordinate {
	return alg.Nodes
}

// Get the arcs for the given node
func (alg *AdjacencyListGraph) GetArcsFrom(id NodeId) []Arc {
	if id < 0 || id >= alg.NodeCount() {
		panic(id)
	}
	return alg.Edges[id]
}

// Return the number of total nodes
func (alg *AdjacencyListGraph) NodeCount() int {
	return len(alg.Nodes)
}

// Return the number of total arcs
func (alg *AdjacencyListGraph) ArcCount() int {
	return alg.arcCount
}

// Return a human readable string of the graph
func (alg *AdjacencyListGraph) AsString() string {
	return GraphAsString(alg)
}

// Add a node to the graph and return its id
func (alg *AdjacencyListGraph) AddNode(n geo.Coordinate) NodeId {
	alg.Nodes = append(alg.Nodes, n)
	alg.Edges = append(alg.Edges, make([]Arc, 0))
	return len(alg.Nodes) - 1
}

// Add an arc to the graph, going from source to target with the given distance.
// Arcs are identified by target and passage: a duplicate only lowers the distance
// of the existing arc, an arc of another passage is kept as parallel arc.
// Returns false if nothing changed.
func (alg *AdjacencyListGraph) AddArc(from, to NodeId, distance float64, passage string) bool {
	if from < 0 || to < 0 || from >= alg.NodeCount() || to >= alg.NodeCount() {
		panic(fmt.Sprintf("Arc out of range %v -> %v", from, to))
	}

	arcs := alg.Edges[from]
	for i := range arcs {
		arc := &arcs[i]
		if to == arc.To && passage == arc.Passage {
			if distance < arc.Distance {
				arc.Distance = distance
				return true
			}
			return false
		}
	}

	alg.Edges[from] = append(alg.Edges[from], MakeArc(to, distance, passage))
	alg.arcCount++
	return true
}

// Add arcs in both directions
func (alg *AdjacencyListGraph) AddEdge(from, to NodeId, distance float64, passage string) {
	alg.AddArc(from, to, distance, passage)
	alg.AddArc(to, from, distance, passage)
}
