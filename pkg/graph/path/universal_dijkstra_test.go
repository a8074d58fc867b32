package path

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/natevvv/searoute/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphFmi = `10
26
# nodes
0 0 0
1 0 1
2 0 2
3 1 0
4 1 1
5 1 2
6 2 0
7 2 1
8 2 2
9 3 3
# edges
0 1 1
0 3 1
1 0 1
1 2 1
1 4 1
2 1 1
2 5 1
3 0 1
3 4 1
3 6 1
4 1 1
4 3 1
4 5 1
4 7 1
5 2 1
5 4 1
5 8 1
6 3 1
6 7 1
7 4 1
7 6 1
7 8 1
8 5 1
8 7 1
8 9 1
9 8 1`

// unit square with 1 km sides, no diagonal
const squareFmi = `4
8
0 0 0
1 0 1
2 1 1
3 1 0
0 1 1000
1 0 1000
1 2 1000
2 1 1000
2 3 1000
3 2 1000
3 0 1000
0 3 1000
`

// two components: 0-1 and 2-3
const disconnectedFmi = `4
4
0 0 0
1 0 1
2 5 5
3 5 6
0 1 10
1 0 10
2 3 10
3 2 10
`

// 0 -> 3 either directly through the canal or around the cape
const passageFmi = `4
8
0 0 0
1 1 1
2 0 2
3 0 3
0 2 1000 suez
2 0 1000 suez
2 3 1000
3 2 1000
0 1 3000
1 0 3000
1 3 3000
3 1 3000
`

func loadGraph(t *testing.T, fmi string) *graph.AdjacencyArrayGraph {
	t.Helper()
	g, err := graph.NewAdjacencyArrayFromFmiString(fmi)
	require.NoError(t, err)
	require.NoError(t, graph.Validate(g, "test"))
	return g
}

// sum the arc weights along the path without help of the search
func independentWeight(t *testing.T, g graph.Graph, nodes []graph.NodeId) float64 {
	t.Helper()
	sum := 0.0
	for i := 1; i < len(nodes); i++ {
		found := false
		best := 0.0
		for _, arc := range g.GetArcsFrom(nodes[i-1]) {
			if arc.To == nodes[i] && (!found || arc.Distance < best) {
				best, found = arc.Distance, true
			}
		}
		require.True(t, found, "nodes %v and %v are not adjacent", nodes[i-1], nodes[i])
		sum += best
	}
	return sum
}

func navigators(g graph.Graph) map[string]Navigator {
	astar := NewUniversalDijkstra(g)
	astar.SetUseHeuristic(true)
	return map[string]Navigator{
		"dijkstra":  NewUniversalDijkstra(g),
		"astar":     astar,
		"reference": NewDijkstra(g),
	}
}

func TestPlainDijkstra(t *testing.T) {
	aag := loadGraph(t, graphFmi)
	d := NewUniversalDijkstra(aag)
	p, err := d.ShortestPath(context.Background(), 0, 9)
	require.NoError(t, err)

	assert.InDelta(t, 0.005, p.Weight, 1e-12)
	// equal cost alternatives are resolved towards lower node ids
	assert.Equal(t, []graph.NodeId{0, 1, 2, 5, 8, 9}, p.Nodes)
	assert.Equal(t, 6, len(p.Nodes))
	assert.Greater(t, p.KPIs.PqPops, 0)
}

func TestAStarDijkstra(t *testing.T) {
	aag := loadGraph(t, graphFmi)
	d := NewUniversalDijkstra(aag)
	astar := NewUniversalDijkstra(aag)
	astar.SetUseHeuristic(true)

	p, err := d.ShortestPath(context.Background(), 0, 9)
	require.NoError(t, err)
	astarPath, err := astar.ShortestPath(context.Background(), 0, 9)
	require.NoError(t, err)

	assert.Equal(t, p.Weight, astarPath.Weight)
	assert.Equal(t, len(p.Nodes), len(astarPath.Nodes))
	assert.Equal(t, p.Nodes[0], astarPath.Nodes[0])
	assert.Equal(t, p.Nodes[len(p.Nodes)-1], astarPath.Nodes[len(astarPath.Nodes)-1])
}

func TestSquareOppositeCorners(t *testing.T) {
	g := loadGraph(t, squareFmi)
	for name, navigator := range navigators(g) {
		t.Run(name, func(t *testing.T) {
			p, err := navigator.ShortestPath(context.Background(), 0, 2)
			require.NoError(t, err)
			assert.InDelta(t, 2.0, p.Weight, 1e-12)
			require.Len(t, p.Nodes, 3)
			assert.Contains(t, []graph.NodeId{1, 3}, p.Nodes[1])

			p, err = navigator.ShortestPath(context.Background(), 1, 3)
			require.NoError(t, err)
			assert.InDelta(t, 2.0, p.Weight, 1e-12)
		})
	}
}

func TestPathToItself(t *testing.T) {
	g := loadGraph(t, graphFmi)
	for name, navigator := range navigators(g) {
		t.Run(name, func(t *testing.T) {
			for node := 0; node < g.NodeCount(); node++ {
				p, err := navigator.ShortestPath(context.Background(), node, node)
				require.NoError(t, err)
				assert.Equal(t, []graph.NodeId{node}, p.Nodes)
				assert.Zero(t, p.Weight)
			}
		})
	}
}

func TestAllPairs(t *testing.T) {
	for _, fmi := range []string{graphFmi, squareFmi, passageFmi} {
		g := loadGraph(t, fmi)
		reference := NewDijkstra(g)
		for name, navigator := range navigators(g) {
			t.Run(name, func(t *testing.T) {
				for origin := 0; origin < g.NodeCount(); origin++ {
					for destination := 0; destination < g.NodeCount(); destination++ {
						p, err := navigator.ShortestPath(context.Background(), origin, destination)
						require.NoError(t, err)
						ref, err := reference.ShortestPath(context.Background(), origin, destination)
						require.NoError(t, err)

						assert.Equal(t, origin, p.Nodes[0])
						assert.Equal(t, destination, p.Nodes[len(p.Nodes)-1])
						assert.InDelta(t, independentWeight(t, g, p.Nodes), p.Weight, 1e-12)
						assert.InDelta(t, ref.Weight, p.Weight, 1e-12)

						// edges are undirected in these graphs
						back, err := navigator.ShortestPath(context.Background(), destination, origin)
						require.NoError(t, err)
						assert.InDelta(t, p.Weight, back.Weight, 1e-12)
					}
				}
			})
		}
	}
}

func TestDeterminism(t *testing.T) {
	g := loadGraph(t, graphFmi)
	d := NewUniversalDijkstra(g)
	first, err := d.ShortestPath(context.Background(), 0, 9)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := d.ShortestPath(context.Background(), 0, 9)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDisconnected(t *testing.T) {
	g := loadGraph(t, disconnectedFmi)
	for name, navigator := range navigators(g) {
		t.Run(name, func(t *testing.T) {
			p, err := navigator.ShortestPath(context.Background(), 0, 3)
			var noPath *NoPathError
			require.ErrorAs(t, err, &noPath)
			assert.Equal(t, 0, noPath.Origin)
			assert.Equal(t, 3, noPath.Destination)
			assert.Empty(t, p.Nodes)

			_, err = navigator.ShortestPath(context.Background(), 2, 3)
			assert.NoError(t, err)
		})
	}
}

func TestInvalidNode(t *testing.T) {
	g := loadGraph(t, squareFmi)
	for name, navigator := range navigators(g) {
		t.Run(name, func(t *testing.T) {
			for _, pair := range [][2]graph.NodeId{{-1, 0}, {0, 4}, {17, 17}} {
				_, err := navigator.ShortestPath(context.Background(), pair[0], pair[1])
				var invalid *InvalidNodeError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, 4, invalid.NodeCount)
			}
		})
	}
}

func TestAvoidPassages(t *testing.T) {
	g := loadGraph(t, passageFmi)
	d := NewUniversalDijkstra(g)
	p, err := d.ShortestPath(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeId{0, 2, 3}, p.Nodes)
	assert.InDelta(t, 2.0, p.Weight, 1e-12)

	avoiding := NewUniversalDijkstraWithOptions(g, SearchOptions{AvoidPassages: []string{"suez"}, UseHeuristic: true})
	p, err = avoiding.ShortestPath(context.Background(), 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeId{0, 1, 3}, p.Nodes)
	assert.InDelta(t, 6.0, p.Weight, 1e-12)

	_, err = avoiding.ShortestPath(context.Background(), 0, 2)
	require.NoError(t, err, "2 is still reachable around the cape")
}

func TestMaxNumSettledNodes(t *testing.T) {
	g := loadGraph(t, graphFmi)
	d := NewUniversalDijkstra(g)
	d.SetMaxNumSettledNodes(3)
	_, err := d.ShortestPath(context.Background(), 0, 9)
	var noPath *NoPathError
	require.ErrorAs(t, err, &noPath)
	assert.Contains(t, noPath.Error(), "settled nodes")

	_, err = d.ShortestPath(context.Background(), 0, 1)
	assert.NoError(t, err)
}

func TestCancelledSearch(t *testing.T) {
	g := loadGraph(t, graphFmi)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, navigator := range navigators(g) {
		t.Run(name, func(t *testing.T) {
			_, err := navigator.ShortestPath(ctx, 0, 9)
			assert.True(t, errors.Is(err, context.Canceled))
		})
	}
}

func TestSearchSpace(t *testing.T) {
	g := loadGraph(t, graphFmi)
	d := NewUniversalDijkstra(g)
	d.SetRecordSearchSpace(true)
	p, err := d.ShortestPath(context.Background(), 0, 9)
	require.NoError(t, err)

	space := p.KPIs.SearchSpace
	require.NotEmpty(t, space)
	assert.Equal(t, 0, space[0])
	assert.Equal(t, 9, space[len(space)-1])
	assert.Equal(t, p.KPIs.SettledNodes, len(space))
	assert.Equal(t, g.NodeCount(), len(space))
}

func TestConcurrentSearches(t *testing.T) {
	g := loadGraph(t, graphFmi)
	d := NewUniversalDijkstra(g)
	d.SetUseHeuristic(true)
	expected, err := d.ShortestPath(context.Background(), 0, 9)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Path, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = d.ShortestPath(context.Background(), 0, 9)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, expected.Nodes, results[i].Nodes)
		assert.Equal(t, expected.Weight, results[i].Weight)
	}
}

func TestPathWeight(t *testing.T) {
	g := loadGraph(t, squareFmi)
	w, ok := PathWeight(g, []graph.NodeId{0, 1, 2})
	assert.True(t, ok)
	assert.InDelta(t, 2.0, w, 1e-12)

	_, ok = PathWeight(g, []graph.NodeId{0, 2})
	assert.False(t, ok)
}

func TestAvoidPassageWithParallelOpenSeaArc(t *testing.T) {
	fmi := `2
2
0 0 0
1 0 1
0 1 5000 canal
0 1 1000
`
	for _, canalMeters := range []string{"5000", "500"} {
		t.Run("canal "+canalMeters+"m", func(t *testing.T) {
			g := loadGraph(t, strings.Replace(fmi, "5000", canalMeters, 1))
			avoiding := NewUniversalDijkstraWithOptions(g, SearchOptions{AvoidPassages: []string{"canal"}})

			p, err := avoiding.ShortestPath(context.Background(), 0, 1)
			require.NoError(t, err)
			assert.Equal(t, []graph.NodeId{0, 1}, p.Nodes)
			assert.InDelta(t, 1.0, p.Weight, 1e-12)
		})
	}

	g := loadGraph(t, strings.Replace(fmi, "5000", "500", 1))
	p, err := NewUniversalDijkstra(g).ShortestPath(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p.Weight, 1e-12)
}

func TestSearchNodeStates(t *testing.T) {
	g := loadGraph(t, squareFmi)
	s := NewUniversalDijkstra(g).newSearch(2)

	s.discover(0, 0, -1)
	assert.Equal(t, Frontier, s.state(0))
	assert.Equal(t, Unvisited, s.state(1))

	item := s.minHeap.Pop()
	s.settle(item)
	s.relaxEdges(item)
	assert.Equal(t, Settled, s.state(0))
	assert.Equal(t, Frontier, s.state(1))
	assert.Equal(t, Frontier, s.state(3))
	assert.Equal(t, Unvisited, s.state(2))
	assert.Equal(t, "Settled", s.state(0).String())
}
