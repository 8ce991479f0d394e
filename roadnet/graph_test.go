package roadnet

import (
	"testing"
	"time"
)

func TestBoxAround(t *testing.T) {
	box := BoxAround(55.75, 37.60, 55.70, 37.65, 0.02)

	if box.South != 55.68 || box.North != 55.77 {
		t.Errorf("latitude bounds wrong: %+v", box)
	}
	if box.West != 37.58 || box.East != 37.67 {
		t.Errorf("longitude bounds wrong: %+v", box)
	}
}

func TestBBoxKeyCanonical(t *testing.T) {
	a := BoxAround(55.75, 37.60, 55.70, 37.65, 0.02)
	b := BoxAround(55.70, 37.65, 55.75, 37.60, 0.02)

	if a.Key() != b.Key() {
		t.Errorf("same endpoints in either order must share a key: %s vs %s", a.Key(), b.Key())
	}

	far := BoxAround(50.0, 30.0, 50.1, 30.1, 0.02)
	if far.Key() == a.Key() {
		t.Errorf("distinct boxes must not collide: %s", far.Key())
	}
}

func TestBuildGraphAnnotation(t *testing.T) {
	raw := &RawNetwork{
		Nodes: []RawNode{{ID: 1, Lat: 55.75, Lon: 37.60}, {ID: 2, Lat: 55.76, Lon: 37.60}},
		Edges: []RawEdge{
			{From: 1, To: 2, LengthM: 1100, RoadClass: "primary"},
			{From: 2, To: 1, LengthM: 1100, RoadClass: "goat_path"},
		},
	}
	speeds := map[string]float64{"primary": 60}

	g := BuildGraph(raw, speeds, 30, time.Now())

	if g.Edges[0].SpeedKmh != 60 {
		t.Errorf("known class speed = %f, want 60", g.Edges[0].SpeedKmh)
	}
	if g.Edges[1].SpeedKmh != 30 {
		t.Errorf("unknown class should fall back to default, got %f", g.Edges[1].SpeedKmh)
	}

	wantTime := 1.1 / 60 // km over km/h
	if diff := g.Edges[0].TimeH - wantTime; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("edge time = %f, want %f", g.Edges[0].TimeH, wantTime)
	}

	if len(g.OutEdges(1)) != 1 || g.Edges[g.OutEdges(1)[0]].To != 2 {
		t.Errorf("adjacency of node 1 wrong")
	}
}

func TestNearestNode(t *testing.T) {
	g := BuildGraph(&RawNetwork{
		Nodes: []RawNode{{ID: 1, Lat: 55.75, Lon: 37.60}, {ID: 2, Lat: 55.80, Lon: 37.60}},
	}, nil, 30, time.Now())

	id, ok := g.NearestNode(55.76, 37.60)
	if !ok || id != 1 {
		t.Errorf("NearestNode = %d, %v; want 1, true", id, ok)
	}

	empty := BuildGraph(&RawNetwork{}, nil, 30, time.Now())
	if _, ok := empty.NearestNode(55.75, 37.60); ok {
		t.Errorf("empty graph should report no nearest node")
	}
}
