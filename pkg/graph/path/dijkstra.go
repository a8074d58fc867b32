package path

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/natevvv/searoute/pkg/graph"
	"github.com/natevvv/searoute/pkg/queue"
	"github.com/natevvv/searoute/pkg/slice"
)

// Dijkstra is the plain textbook implementation.
// It serves as reference for the UniversalDijkstra in tests and benchmarks.
type Dijkstra struct {
	g graph.Graph
}

func NewDijkstra(g graph.Graph) *Dijkstra {
	return &Dijkstra{g: g}
}

func (d *Dijkstra) ShortestPath(ctx context.Context, origin, destination graph.NodeId) (Path, error) {
	if err := checkNodes(d.g, origin, destination); err != nil {
		return Path{}, err
	}

	dijkstraItems := make([]*queue.Item, d.g.NodeCount())
	settled := make([]bool, d.g.NodeCount())
	dijkstraItems[origin] = queue.NewQueueItem(origin, 0, -1)

	pq := queue.NewQueue(dijkstraItems[origin])
	kpis := SearchKPIs{PqUpdates: 1}

	for pq.Len() > 0 {
		if kpis.PqPops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Path{}, fmt.Errorf("search %v -> %v aborted: %w", origin, destination, err)
			}
		}

		currentPqItem := heap.Pop(pq).(*queue.Item)
		currentNodeId := currentPqItem.ItemId
		settled[currentNodeId] = true
		kpis.PqPops++
		kpis.SettledNodes++

		if currentNodeId == destination {
			break
		}

		for _, arc := range d.g.GetArcsFrom(currentNodeId) {
			kpis.RelaxationAttempts++
			successor := arc.Destination()
			if settled[successor] {
				continue
			}

			newPriority := currentPqItem.Priority + arc.Cost()
			if dijkstraItems[successor] == nil {
				pqItem := queue.NewQueueItem(successor, newPriority, currentNodeId)
				dijkstraItems[successor] = pqItem
				heap.Push(pq, pqItem)
				kpis.PqUpdates++
			} else if newPriority < dijkstraItems[successor].Priority {
				pq.Update(dijkstraItems[successor], newPriority)
				dijkstraItems[successor].Predecessor = currentNodeId
				kpis.PqUpdates++
			} else if newPriority == dijkstraItems[successor].Priority && currentNodeId < dijkstraItems[successor].Predecessor {
				dijkstraItems[successor].Predecessor = currentNodeId
			} else {
				continue
			}
			kpis.RelaxedEdges++
		}
	}

	if !settled[destination] {
		return Path{}, &NoPathError{Origin: origin, Destination: destination}
	}

	nodes := make([]graph.NodeId, 0)
	for nodeId := destination; nodeId != -1; nodeId = dijkstraItems[nodeId].Predecessor {
		nodes = append(nodes, nodeId)
	}
	slice.ReverseInPlace(nodes)
	return Path{Nodes: nodes, Weight: dijkstraItems[destination].Priority, KPIs: kpis}, nil
}

func (d *Dijkstra) GetGraph() graph.Graph { return d.g }
