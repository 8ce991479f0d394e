package routing

import (
	"context"
	"log"
	"sort"

	"taxi-dispatch-system/geo"
	"taxi-dispatch-system/models"
	"taxi-dispatch-system/roadnet"
)

// Minimum spacing between suggested standby points.
const standbySpacingKm = 0.5

// Betweenness computes betweenness centrality for every node using
// Brandes' algorithm over unweighted hops.
func Betweenness(g *roadnet.Graph) map[int64]float64 {
	centrality := make(map[int64]float64, len(g.Nodes))
	for id := range g.Nodes {
		centrality[id] = 0
	}

	for source := range g.Nodes {
		var stack []int64
		preds := make(map[int64][]int64)
		sigma := map[int64]float64{source: 1}
		dist := map[int64]int{source: 0}

		queue := []int64{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for _, edgeIdx := range g.OutEdges(v) {
				w := g.Edges[edgeIdx].To
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		delta := make(map[int64]float64)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != source {
				centrality[w] += delta[w]
			}
		}
	}
	return centrality
}

// OptimalStandbyPoints suggests up to count graph nodes where idle
// drivers cover the most routes, ranked by betweenness centrality with a
// minimum spacing between picks.
func (e *Engine) OptimalStandbyPoints(ctx context.Context, box roadnet.BBox, count int) []models.Coordinate {
	graph, err := e.graphs.GetOrBuild(ctx, box)
	if err != nil {
		log.Printf("routing: graph unavailable for standby points %s: %v", box.Key(), err)
		return nil
	}

	centrality := Betweenness(graph)

	type ranked struct {
		id    int64
		score float64
	}
	nodes := make([]ranked, 0, len(centrality))
	for id, score := range centrality {
		nodes = append(nodes, ranked{id: id, score: score})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].score != nodes[j].score {
			return nodes[i].score > nodes[j].score
		}
		return nodes[i].id < nodes[j].id
	})

	var points []models.Coordinate
	for _, n := range nodes {
		node := graph.Nodes[n.id]
		candidate := models.Coordinate{Lat: node.Lat, Lon: node.Lon}

		tooClose := false
		for _, p := range points {
			if geo.HaversineKm(candidate.Lat, candidate.Lon, p.Lat, p.Lon) < standbySpacingKm {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		points = append(points, candidate)
		if len(points) >= count {
			break
		}
	}
	return points
}
