package routing

import (
	"testing"
	"time"

	"taxi-dispatch-system/roadnet"
)

// diamond builds two routes from 1 to 4: a fast primary road via 2 and a
// slow residential road via 3.
func diamond() *roadnet.Graph {
	return roadnet.BuildGraph(&roadnet.RawNetwork{
		Nodes: []roadnet.RawNode{
			{ID: 1, Lat: 55.750, Lon: 37.600},
			{ID: 2, Lat: 55.755, Lon: 37.610},
			{ID: 3, Lat: 55.745, Lon: 37.610},
			{ID: 4, Lat: 55.750, Lon: 37.620},
		},
		Edges: []roadnet.RawEdge{
			{From: 1, To: 2, LengthM: 1000, RoadClass: "primary"},
			{From: 2, To: 4, LengthM: 1000, RoadClass: "primary"},
			{From: 1, To: 3, LengthM: 1000, RoadClass: "residential"},
			{From: 3, To: 4, LengthM: 1000, RoadClass: "residential"},
		},
	}, map[string]float64{"primary": 60, "residential": 30}, 30, time.Now())
}

func TestShortestPathPrefersFastRoad(t *testing.T) {
	g := diamond()

	nodes, edges, ok := ShortestPath(g, 1, 4, nil)
	if !ok {
		t.Fatal("path not found")
	}
	if len(nodes) != 3 || nodes[1] != 2 {
		t.Errorf("expected route via node 2, got %v", nodes)
	}
	if len(edges) != 2 {
		t.Errorf("expected 2 edges, got %d", len(edges))
	}
}

func TestShortestPathOverlayFlipsChoice(t *testing.T) {
	g := diamond()

	_, fastEdges, _ := ShortestPath(g, 1, 4, nil)

	overlay := Overlay{}
	overlay.Penalize(fastEdges, 10)

	nodes, _, ok := ShortestPath(g, 1, 4, overlay)
	if !ok {
		t.Fatal("path not found under overlay")
	}
	if nodes[1] != 3 {
		t.Errorf("penalized route should go via node 3, got %v", nodes)
	}

	// The base graph must be untouched by the overlay.
	for _, e := range g.Edges {
		want := e.LengthM / 1000 / e.SpeedKmh
		if diff := e.TimeH - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("edge %d->%d time mutated: %f", e.From, e.To, e.TimeH)
		}
	}
}

func TestOverlayPenaltyCompounds(t *testing.T) {
	overlay := Overlay{}
	overlay.Penalize([]int{7}, 1.5)
	overlay.Penalize([]int{7}, 1.5)

	if got := overlay.multiplier(7); got != 2.25 {
		t.Errorf("multiplier = %f, want 2.25", got)
	}
	if got := overlay.multiplier(8); got != 1 {
		t.Errorf("untouched edge multiplier = %f, want 1", got)
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	g := roadnet.BuildGraph(&roadnet.RawNetwork{
		Nodes: []roadnet.RawNode{
			{ID: 1, Lat: 55.75, Lon: 37.60},
			{ID: 2, Lat: 55.76, Lon: 37.60},
		},
	}, nil, 30, time.Now())

	if _, _, ok := ShortestPath(g, 1, 2, nil); ok {
		t.Error("expected no path in edgeless graph")
	}
	if _, _, ok := ShortestPath(g, 1, 99, nil); ok {
		t.Error("expected no path to unknown node")
	}
}
