package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/natevvv/searoute/internal/logging"
	"github.com/natevvv/searoute/pkg/geometry"
	"github.com/natevvv/searoute/pkg/graph"
	"github.com/natevvv/searoute/pkg/graph/path"
	"github.com/natevvv/searoute/pkg/spatial"
)

// DefaultSnapEpsilon is the distance (km) below which a coordinate is considered to lie on a node.
const DefaultSnapEpsilon = 1e-9

// Binding ties a requested coordinate to a graph node.
// Exact bindings have distance 0, otherwise Distance is the great-circle length
// of the synthetic segment between Coordinate and the node.
// Synthetic segments are not checked for crossing land.
type Binding struct {
	Coordinate geometry.Coordinate
	Node       graph.NodeId
	Distance   float64
	Exact      bool
}

// Request is a single origin/destination pair.
type Request struct {
	Origin      geometry.Coordinate
	Destination geometry.Coordinate
}

// Route is the result of a request. Length is in kilometers.
type Route struct {
	Origin      Binding
	Destination Binding
	Nodes       []graph.NodeId
	Coordinates []geometry.Coordinate
	Length      float64
	KPIs        path.SearchKPIs
}

// Result pairs a route with the error of its computation.
type Result struct {
	Route Route
	Err   error
}

// Router answers route requests on a static graph.
// All of its state is read-only, one router serves any number of concurrent requests.
type Router struct {
	graph       graph.Graph
	index       *spatial.Index
	navigator   path.Navigator
	snapEpsilon float64
	logger      *slog.Logger
}

type Option func(*Router)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

func WithSnapEpsilon(epsilon float64) Option {
	return func(r *Router) { r.snapEpsilon = epsilon }
}

// Create a new router. The navigator has to work on g.
func NewRouter(g graph.Graph, index *spatial.Index, navigator path.Navigator, opts ...Option) *Router {
	r := &Router{
		graph:       g,
		index:       index,
		navigator:   navigator,
		snapEpsilon: DefaultSnapEpsilon,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewNavigator creates the navigator for the given algorithm name.
func NewNavigator(algorithm string, g graph.Graph, options path.SearchOptions) (path.Navigator, error) {
	switch algorithm {
	case "dijkstra":
		options.UseHeuristic = false
		return path.NewUniversalDijkstraWithOptions(g, options), nil
	case "astar", "":
		options.UseHeuristic = true
		return path.NewUniversalDijkstraWithOptions(g, options), nil
	case "reference":
		return path.NewDijkstra(g), nil
	}
	return nil, fmt.Errorf("unknown navigator %q", algorithm)
}

// Resolve binds a coordinate to its nearest node.
func (r *Router) Resolve(c geometry.Coordinate) (Binding, error) {
	if err := c.Validate(); err != nil {
		return Binding{}, err
	}
	nearest := r.index.Nearest(c, 1)[0]
	if nearest.Distance <= r.snapEpsilon {
		return Binding{Coordinate: c, Node: nearest.Node, Exact: true}, nil
	}
	return Binding{Coordinate: c, Node: nearest.Node, Distance: nearest.Distance}, nil
}

// Route computes the sea route from origin to destination.
func (r *Router) Route(ctx context.Context, origin, destination geometry.Coordinate) (Route, error) {
	start := time.Now()

	originBinding, err := r.Resolve(origin)
	if err != nil {
		err = fmt.Errorf("origin: %w", err)
		logging.LogError(r.logger, "resolving endpoint failed", err, slog.String("origin", origin.String()))
		return Route{}, err
	}
	destinationBinding, err := r.Resolve(destination)
	if err != nil {
		err = fmt.Errorf("destination: %w", err)
		logging.LogError(r.logger, "resolving endpoint failed", err, slog.String("destination", destination.String()))
		return Route{}, err
	}

	p, err := r.navigator.ShortestPath(ctx, originBinding.Node, destinationBinding.Node)
	if err != nil {
		logging.LogError(r.logger, "route computation failed", err,
			slog.String("origin", origin.String()),
			slog.String("destination", destination.String()))
		return Route{}, err
	}

	route := Build(originBinding, p, destinationBinding, r.graph)
	if r.logger != nil {
		r.logger.Debug("route computed",
			slog.String("origin", origin.String()),
			slog.String("destination", destination.String()),
			slog.Float64("length_km", route.Length),
			slog.Int("nodes", len(route.Nodes)),
			slog.Int("settled_nodes", p.KPIs.SettledNodes),
			slog.Duration("duration", time.Since(start)))
	}
	return route, nil
}

// RouteMany computes the routes with up to workers concurrent searches.
// Results are in request order, a failing request does not affect the others.
func (r *Router) RouteMany(ctx context.Context, requests []Request, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(requests))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				route, err := r.Route(ctx, requests[i].Origin, requests[i].Destination)
				results[i] = Result{Route: route, Err: err}
			}
		}()
	}
	for i := range requests {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// Get the used graph
func (r *Router) GetGraph() graph.Graph { return r.graph }

// Build assembles the route from the endpoint bindings and the path between their nodes.
// A synthetic origin is put before the first node, a synthetic destination after the last one.
// Endpoints resolving to the same node give two identical coordinates of that node and length 0.
func Build(origin Binding, p path.Path, destination Binding, g graph.Graph) Route {
	route := Route{Origin: origin, Destination: destination, Nodes: p.Nodes, KPIs: p.KPIs}

	if origin.Node == destination.Node {
		c := *g.GetNode(origin.Node)
		route.Nodes = []graph.NodeId{origin.Node}
		route.Coordinates = []geometry.Coordinate{c, c}
		return route
	}

	coordinates := make([]geometry.Coordinate, 0, len(p.Nodes)+2)
	if !origin.Exact {
		coordinates = append(coordinates, origin.Coordinate)
	}
	for _, nodeId := range p.Nodes {
		coordinates = append(coordinates, *g.GetNode(nodeId))
	}
	if !destination.Exact {
		coordinates = append(coordinates, destination.Coordinate)
	}

	route.Coordinates = coordinates
	route.Length = origin.Distance + p.Weight + destination.Distance
	return route
}
