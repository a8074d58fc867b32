package graph

import (
	"fmt"

	geo "github.com/natevvv/searoute/pkg/geometry"
)

// A Way is an OSM-style polyline referencing nodes by their source id.
type Way struct {
	ID      int64
	NodeIDs []int64
	OneWay  bool
	Marine  bool // the way is explicitly tagged as a sea lane
	Passage string
}

// WayBuilder collects OSM-style nodes and ways and turns them into a graph.
// If at least one way is tagged as marine, only marine ways are used.
type WayBuilder struct {
	coords map[int64]geo.Coordinate
	ways   []Way
	marine bool
}

func NewWayBuilder() *WayBuilder {
	return &WayBuilder{coords: make(map[int64]geo.Coordinate)}
}

func (b *WayBuilder) AddNode(id int64, c geo.Coordinate) {
	b.coords[id] = c
}

func (b *WayBuilder) AddWay(w Way) {
	if len(w.NodeIDs) < 2 {
		return
	}
	b.marine = b.marine || w.Marine
	b.ways = append(b.ways, w)
}

// Build creates the graph. Nodes get dense ids in order of their first appearance in the ways.
func (b *WayBuilder) Build(source string) (*AdjacencyListGraph, error) {
	alg := NewAdjacencyListGraph()
	ids := make(map[int64]NodeId)

	for _, w := range b.ways {
		if b.marine && !w.Marine {
			continue
		}
		previous := -1
		for _, sourceId := range w.NodeIDs {
			id, ok := ids[sourceId]
			if !ok {
				c, exists := b.coords[sourceId]
				if !exists {
					return nil, &DataLoadError{Source: source, Reason: fmt.Sprintf("way %v references missing node %v", w.ID, sourceId)}
				}
				id = alg.AddNode(c)
				ids[sourceId] = id
			}
			if previous >= 0 && previous != id {
				distance := geo.Distance(*alg.GetNode(previous), *alg.GetNode(id))
				if w.OneWay {
					alg.AddArc(previous, id, distance, w.Passage)
				} else {
					alg.AddEdge(previous, id, distance, w.Passage)
				}
			}
			previous = id
		}
	}
	return alg, nil
}
