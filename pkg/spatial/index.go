package spatial

import (
	"fmt"
	"math"
	"sort"

	geo "github.com/natevvv/searoute/pkg/geometry"
	"github.com/natevvv/searoute/pkg/graph"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"
)

// Graphs with at most this many nodes are searched with a linear scan.
const LinearScanThreshold = 64

// padding of the candidate bound in degrees, covers rounding of the bound computation
const boundPadding = 1e-7

var world = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// EmptyIndexError is returned when an index is built for a graph without nodes.
type EmptyIndexError struct{}

func (e *EmptyIndexError) Error() string { return "spatial index: graph has no nodes" }

// Neighbor is a node together with its great-circle distance (km) to a query coordinate.
type Neighbor struct {
	Node     graph.NodeId
	Distance float64
}

// nodeRef points into the node slice of the graph, the quadtree holds no coordinates of its own
type nodeRef struct {
	nodes []geo.Coordinate
	id    graph.NodeId
}

func (r nodeRef) Point() orb.Point { return r.nodes[r.id].Point() }

// Index answers nearest neighbor queries on the nodes of a graph.
// It is read-only after construction and safe for concurrent use.
type Index struct {
	nodes []geo.Coordinate
	tree  *quadtree.Quadtree
}

// NewIndex builds the index. Graphs up to LinearScanThreshold nodes skip the quadtree.
func NewIndex(g graph.Graph) (*Index, error) {
	nodes := g.GetNodes()
	if len(nodes) == 0 {
		return nil, &EmptyIndexError{}
	}
	idx := &Index{nodes: nodes}
	if len(nodes) <= LinearScanThreshold {
		return idx, nil
	}

	idx.tree = quadtree.New(world)
	for id := range nodes {
		if err := idx.tree.Add(nodeRef{nodes: nodes, id: id}); err != nil {
			return nil, fmt.Errorf("spatial index: adding node %v: %w", id, err)
		}
	}
	return idx, nil
}

func (idx *Index) Len() int { return len(idx.nodes) }

// Nearest returns the k nodes closest to c by great-circle distance, ascending.
// Equal distances are ordered by node id.
func (idx *Index) Nearest(c geo.Coordinate, k int) []Neighbor {
	if k <= 0 {
		return []Neighbor{}
	}
	if k > len(idx.nodes) {
		k = len(idx.nodes)
	}
	if idx.tree == nil {
		return idx.linearScan(c, k)
	}

	// the k planar nearest nodes bound the radius in which the k great-circle nearest nodes lie
	seeds := idx.tree.KNearest(nil, c.Point(), k)
	radius := 0.0
	for _, seed := range seeds {
		radius = math.Max(radius, geo.Distance(c, geo.FromPoint(seed.Point())))
	}

	bound := orbgeo.NewBoundAroundPoint(c.Point(), radius*1000)
	if !searchable(bound) {
		return idx.linearScan(c, k)
	}

	candidates := idx.tree.InBound(nil, clampToWorld(bound.Pad(boundPadding)))
	neighbors := make([]Neighbor, 0, len(candidates))
	for _, candidate := range candidates {
		ref := candidate.(nodeRef)
		neighbors = append(neighbors, Neighbor{Node: ref.id, Distance: geo.Distance(c, idx.nodes[ref.id])})
	}
	return closest(neighbors, k)
}

// linearScan is the fallback for small graphs and bounds crossing the edge of the map
func (idx *Index) linearScan(c geo.Coordinate, k int) []Neighbor {
	neighbors := make([]Neighbor, len(idx.nodes))
	for id, node := range idx.nodes {
		neighbors[id] = Neighbor{Node: id, Distance: geo.Distance(c, node)}
	}
	return closest(neighbors, k)
}

func closest(neighbors []Neighbor, k int) []Neighbor {
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance == neighbors[j].Distance {
			return neighbors[i].Node < neighbors[j].Node
		}
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// searchable reports whether the bound can be queried as one rectangle.
// Bounds wrapping around the antimeridian come back with Min.Lon > Max.Lon.
// A bound around a pole spans all longitudes and stays searchable.
func searchable(b orb.Bound) bool {
	for _, v := range []float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()} {
		if math.IsNaN(v) {
			return false
		}
	}
	if b.Min.Lon() > b.Max.Lon() {
		return false
	}
	if b.Min.Lon() <= -180 && b.Max.Lon() >= 180 {
		return true
	}
	return b.Min.Lon()-boundPadding >= -180 && b.Max.Lon()+boundPadding <= 180
}

func clampToWorld(b orb.Bound) orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Max(b.Min.Lon(), world.Min.Lon()), math.Max(b.Min.Lat(), world.Min.Lat())},
		Max: orb.Point{math.Min(b.Max.Lon(), world.Max.Lon()), math.Min(b.Max.Lat(), world.Max.Lat())},
	}
}
