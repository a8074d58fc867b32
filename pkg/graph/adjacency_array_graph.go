package graph

import (
	"fmt"
	"sort"

	geo "github.com/natevvv/searoute/pkg/geometry"
)

// Implementation for static graphs.
// Nodes and arcs live in flat slices, the arcs of node i are arcs[Offsets[i]:Offsets[i+1]].
type AdjacencyArrayGraph struct {
	Nodes   []geo.Coordinate
	arcs    []Arc
	Offsets []int
}

// Create an AdjacencyArrayGraph from the given graph.
// The arcs of every node are sorted by destination id.
func NewAdjacencyArrayFromGraph(g Graph) *AdjacencyArrayGraph {
	nodes := make([]geo.Coordinate, 0, g.NodeCount())
	arcs := make([]Arc, 0, g.ArcCount())
	offsets := make([]int, g.NodeCount()+1)

	for i := 0; i < g.NodeCount(); i++ {
		// add node
		nodes = append(nodes, *g.GetNode(i))

		// add all edges of node
		arcs = append(arcs, g.GetArcsFrom(i)...)
		nodeArcs := arcs[offsets[i]:]
		sort.SliceStable(nodeArcs, func(a, b int) bool { return nodeArcs[a].To < nodeArcs[b].To })

		// set stop-offset
		offsets[i+1] = len(arcs)
	}

	return &AdjacencyArrayGraph{Nodes: nodes, arcs: arcs, Offsets: offsets}
}

// Get the node for the given id
func (aag *AdjacencyArrayGraph) GetNode(id NodeId) *geo.Coordinate {
	if id < 0 || id >= aag.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return &aag.Nodes[id]
}

// get all nodes of the graph
func (aag *AdjacencyArrayGraph) GetNodes() []geo.Coordinate {
	return aag.Nodes
}

// Get the Arcs for the given node id
func (aag *AdjacencyArrayGraph) GetArcsFrom(id NodeId) []Arc {
	if id < 0 || id >= aag.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return aag.arcs[aag.Offsets[id]:aag.Offsets[id+1]]
}

// Returns the number of Nodes in the graph
func (aag *AdjacencyArrayGraph) NodeCount() int {
	return len(aag.Nodes)
}

// Returns the total number of arcs in the graph
func (aag *AdjacencyArrayGraph) ArcCount() int {
	return len(aag.arcs)
}

// Returns a human readable string of the graph
func (aag *AdjacencyArrayGraph) AsString() string {
	return GraphAsString(aag)
}

// Returns the names of all passages used by arcs of the graph, sorted
func (aag *AdjacencyArrayGraph) Passages() []string {
	seen := make(map[string]bool)
	passages := make([]string, 0)
	for _, arc := range aag.arcs {
		if arc.Passage != "" && !seen[arc.Passage] {
			seen[arc.Passage] = true
			passages = append(passages, arc.Passage)
		}
	}
	sort.Strings(passages)
	return passages
}
