package routing

import (
	"container/heap"

	"taxi-dispatch-system/roadnet"
)

// Overlay is a sparse, request-scoped set of edge weight multipliers.
// The base graph is never mutated; the overlay is consulted during
// shortest-path expansion instead.
type Overlay map[int]float64

// Penalize multiplies the overlay weight of each edge by factor,
// compounding with any penalty already applied.
func (o Overlay) Penalize(edges []int, factor float64) {
	for _, e := range edges {
		if current, ok := o[e]; ok {
			o[e] = current * factor
		} else {
			o[e] = factor
		}
	}
}

func (o Overlay) multiplier(edge int) float64 {
	if o == nil {
		return 1
	}
	if m, ok := o[edge]; ok {
		return m
	}
	return 1
}

type queueItem struct {
	node  int64
	dist  float64
	index int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// ShortestPath runs time-weighted Dijkstra from source to target,
// scaling each edge's time by the overlay multiplier. It returns the
// node sequence and the traversed edge indexes, or ok=false when target
// is unreachable.
func ShortestPath(g *roadnet.Graph, source, target int64, overlay Overlay) (nodes []int64, edges []int, ok bool) {
	if _, exists := g.Nodes[source]; !exists {
		return nil, nil, false
	}
	if _, exists := g.Nodes[target]; !exists {
		return nil, nil, false
	}

	dist := map[int64]float64{source: 0}
	prevNode := make(map[int64]int64)
	prevEdge := make(map[int64]int)
	visited := make(map[int64]bool)

	pq := priorityQueue{{node: source, dist: 0}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*queueItem)
		if visited[item.node] {
			continue
		}
		visited[item.node] = true
		if item.node == target {
			break
		}

		for _, edgeIdx := range g.OutEdges(item.node) {
			edge := g.Edges[edgeIdx]
			if visited[edge.To] {
				continue
			}
			weight := edge.TimeH * overlay.multiplier(edgeIdx)
			next := item.dist + weight
			if current, seen := dist[edge.To]; !seen || next < current {
				dist[edge.To] = next
				prevNode[edge.To] = item.node
				prevEdge[edge.To] = edgeIdx
				heap.Push(&pq, &queueItem{node: edge.To, dist: next})
			}
		}
	}

	if !visited[target] {
		return nil, nil, false
	}

	// Walk predecessors back to the source.
	for at := target; at != source; at = prevNode[at] {
		nodes = append(nodes, at)
		edges = append(edges, prevEdge[at])
	}
	nodes = append(nodes, source)
	reverseInt64(nodes)
	reverseInt(edges)
	return nodes, edges, true
}

func reverseInt64(s []int64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseInt(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
