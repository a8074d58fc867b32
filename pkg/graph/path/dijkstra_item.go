package path

import (
	"fmt"

	"github.com/natevvv/searoute/pkg/graph"
)

// NodeState is the state of a node during a single search.
type NodeState int

const (
	Unvisited NodeState = iota // not discovered yet
	Frontier                   // discovered, tentative distance in the priority queue
	Settled                    // final shortest distance known
)

func (s NodeState) String() string {
	switch s {
	case Unvisited:
		return "Unvisited"
	case Frontier:
		return "Frontier"
	case Settled:
		return "Settled"
	}
	return "INVALID"
}

// implements queue.Priorizable
type DijkstraItem struct {
	nodeId      graph.NodeId // node id of this item in the graph
	distance    float64      // distance to origin of this node
	heuristic   float64      // estimated distance from node to destination
	predecessor graph.NodeId // node id of the predecessor
	index       int          // internal usage
	state       NodeState
}

func NewDijkstraItem(nodeId graph.NodeId, distance float64, predecessor graph.NodeId, heuristic float64) *DijkstraItem {
	return &DijkstraItem{nodeId: nodeId, distance: distance, predecessor: predecessor, index: -1, heuristic: heuristic, state: Frontier}
}

func (item *DijkstraItem) NodeId() graph.NodeId { return item.nodeId }
func (item *DijkstraItem) Id() int              { return item.nodeId }
func (item *DijkstraItem) Distance() float64    { return item.distance }
func (item *DijkstraItem) Priority() float64    { return item.distance + item.heuristic }
func (item *DijkstraItem) Index() int           { return item.index }
func (item *DijkstraItem) SetIndex(index int)   { item.index = index }
func (item *DijkstraItem) State() NodeState     { return item.state }
func (item *DijkstraItem) String() string {
	return fmt.Sprintf("%v: %v, %v\n", item.index, item.nodeId, item.Priority())
}
