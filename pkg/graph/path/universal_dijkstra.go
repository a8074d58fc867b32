package path

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/natevvv/searoute/pkg/geometry"
	"github.com/natevvv/searoute/pkg/graph"
	"github.com/natevvv/searoute/pkg/queue"
	"github.com/natevvv/searoute/pkg/slice"
)

// the context is checked every cancelCheckInterval priority queue pops
const cancelCheckInterval = 1024

// the heuristic is scaled down slightly so floating point noise cannot make it overestimate
const heuristicSlack = 0.99

type SearchOptions struct {
	UseHeuristic       bool     // flag indicating if heuristic (remaining distance) should be used (AStar implementation)
	AvoidPassages      []string // arcs belonging to one of these passages are ignored
	MaxNumSettledNodes int      // maximum number of settled nodes before search is terminated
	RecordSearchSpace  bool     // collect the settled nodes in the KPIs of the result
}

// UniversalDijkstra implements Dijkstra and A* on top of the same search loop.
// Its configuration is set up before use; every call of ShortestPath works on
// its own search state, so one instance can serve concurrent searches.
// Implements the Navigator Interface.
type UniversalDijkstra struct {
	g               graph.Graph
	options         SearchOptions
	avoid           map[string]bool
	heuristicFactor float64
	logger          *slog.Logger
}

// search holds everything which belongs to a single computation
type search struct {
	d           *UniversalDijkstra
	destination graph.NodeId
	items       []*DijkstraItem // search space indexed by node id, nil means unvisited
	minHeap     *queue.MinHeap[*DijkstraItem]
	kpis        SearchKPIs
}

// Create a new Dijkstra instance with the given graph g
func NewUniversalDijkstra(g graph.Graph) *UniversalDijkstra {
	return NewUniversalDijkstraWithOptions(g, SearchOptions{})
}

func NewUniversalDijkstraWithOptions(g graph.Graph, options SearchOptions) *UniversalDijkstra {
	d := &UniversalDijkstra{g: g, avoid: make(map[string]bool)}
	if options.MaxNumSettledNodes <= 0 {
		options.MaxNumSettledNodes = math.MaxInt
	}
	d.options = options
	d.SetUseHeuristic(options.UseHeuristic)
	d.SetAvoidPassages(options.AvoidPassages...)
	return d
}

// Compute the shortest path from the origin to the destination.
// The search stops as soon as the destination is settled.
func (d *UniversalDijkstra) ShortestPath(ctx context.Context, origin, destination graph.NodeId) (Path, error) {
	if err := checkNodes(d.g, origin, destination); err != nil {
		return Path{}, err
	}
	if origin == destination {
		return Path{Nodes: []graph.NodeId{origin}}, nil
	}

	s := d.newSearch(destination)
	s.discover(origin, 0, -1)

	for s.minHeap.Len() > 0 {
		if s.kpis.PqPops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Path{}, fmt.Errorf("search %v -> %v aborted: %w", origin, destination, err)
			}
		}

		currentNode := s.minHeap.Pop()
		s.kpis.PqPops++
		s.settle(currentNode)

		if currentNode.nodeId == destination {
			p := s.path(origin, destination)
			d.debug("found path", origin, destination, slog.Float64("distance", p.Weight), slog.Int("settled_nodes", s.kpis.SettledNodes))
			return p, nil
		}

		if s.kpis.SettledNodes >= d.options.MaxNumSettledNodes {
			d.debug("exceeded settled node limit", origin, destination, slog.Int("settled_nodes", s.kpis.SettledNodes))
			return Path{}, &NoPathError{Origin: origin, Destination: destination, Reason: fmt.Sprintf("exceeded limit of %v settled nodes", d.options.MaxNumSettledNodes)}
		}

		s.relaxEdges(currentNode)
	}

	d.debug("no path found", origin, destination, slog.Int("settled_nodes", s.kpis.SettledNodes))
	return Path{}, &NoPathError{Origin: origin, Destination: destination}
}

func (d *UniversalDijkstra) newSearch(destination graph.NodeId) *search {
	return &search{
		d:           d,
		destination: destination,
		items:       make([]*DijkstraItem, d.g.NodeCount()),
		minHeap:     queue.NewMinHeap[*DijkstraItem](nil),
	}
}

// Add a newly discovered node to the frontier
func (s *search) discover(nodeId graph.NodeId, distance float64, predecessor graph.NodeId) {
	item := NewDijkstraItem(nodeId, distance, predecessor, s.d.heuristic(nodeId, s.destination))
	s.items[nodeId] = item
	s.minHeap.Push(item)
	s.kpis.PqUpdates++
}

// Settle the given node item
func (s *search) settle(item *DijkstraItem) {
	item.state = Settled
	s.kpis.SettledNodes++
	if s.d.options.RecordSearchSpace {
		s.kpis.SearchSpace = append(s.kpis.SearchSpace, item.nodeId)
	}
}

// state of the node in this search, nodes without an item are unvisited
func (s *search) state(nodeId graph.NodeId) NodeState {
	if item := s.items[nodeId]; item != nil {
		return item.State()
	}
	return Unvisited
}

// Relax the Edges for the given node item and add the new nodes to the priority queue.
// On equal distances the lower predecessor id wins.
func (s *search) relaxEdges(node *DijkstraItem) {
	for _, arc := range s.d.g.GetArcsFrom(node.nodeId) {
		s.kpis.RelaxationAttempts++
		if arc.Passage != "" && s.d.avoid[arc.Passage] {
			continue
		}

		successor := arc.Destination()
		distance := node.distance + arc.Cost()
		item := s.items[successor]

		switch state := s.state(successor); {
		case state == Unvisited:
			s.discover(successor, distance, node.nodeId)
		case state == Settled:
			continue
		case distance < item.distance:
			item.distance = distance
			item.predecessor = node.nodeId
			s.minHeap.Update(item)
			s.kpis.PqUpdates++
		case distance == item.distance && node.nodeId < item.predecessor:
			item.predecessor = node.nodeId
		default:
			continue
		}
		s.kpis.RelaxedEdges++
	}
}

func (s *search) path(origin, destination graph.NodeId) Path {
	nodes := make([]graph.NodeId, 0)
	for nodeId := destination; nodeId != -1; nodeId = s.items[nodeId].predecessor {
		nodes = append(nodes, nodeId)
	}
	// reverse path (to create the correct direction)
	slice.ReverseInPlace(nodes)
	return Path{Nodes: nodes, Weight: s.items[destination].distance, KPIs: s.kpis}
}

// helper function for AStar to calculate the heuristic value from node to destination
// Returns 0 if the heuristic is not used
func (d *UniversalDijkstra) heuristic(nodeId, destination graph.NodeId) float64 {
	if !d.options.UseHeuristic {
		return 0
	}
	return d.heuristicFactor * geometry.Distance(*d.g.GetNode(nodeId), *d.g.GetNode(destination))
}

func (d *UniversalDijkstra) debug(msg string, origin, destination graph.NodeId, attrs ...any) {
	if d.logger == nil {
		return
	}
	args := append([]any{slog.Int("origin", origin), slog.Int("destination", destination)}, attrs...)
	d.logger.Debug(msg, args...)
}

// Specify whether a heuristic for path finding (AStar) should be used
func (d *UniversalDijkstra) SetUseHeuristic(useHeuristic bool) {
	d.options.UseHeuristic = useHeuristic
	if useHeuristic {
		d.heuristicFactor = heuristicSlack * graph.HeuristicFactor(d.g)
	}
}

// Ignore all arcs of the given passages
func (d *UniversalDijkstra) SetAvoidPassages(passages ...string) {
	d.options.AvoidPassages = passages
	d.avoid = make(map[string]bool, len(passages))
	for _, passage := range passages {
		d.avoid[passage] = true
	}
}

// Set the maximum number of nodes that can get settled before the search is terminated
func (d *UniversalDijkstra) SetMaxNumSettledNodes(maxNumSettledNodes int) {
	if maxNumSettledNodes <= 0 {
		maxNumSettledNodes = math.MaxInt
	}
	d.options.MaxNumSettledNodes = maxNumSettledNodes
}

// Collect the settled nodes of each search
func (d *UniversalDijkstra) SetRecordSearchSpace(record bool) {
	d.options.RecordSearchSpace = record
}

// Log search events at debug level
func (d *UniversalDijkstra) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *UniversalDijkstra) Options() SearchOptions { return d.options }

// Get the used graph
func (d *UniversalDijkstra) GetGraph() graph.Graph { return d.g }
