package routing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taxi-dispatch-system/geo"
	"taxi-dispatch-system/geocode"
	"taxi-dispatch-system/models"
	"taxi-dispatch-system/roadnet"
)

var testCoeffs = Coefficients{MorningRush: 1.5, EveningRush: 1.7, Night: 0.8, Normal: 1.0}

func TestTrafficCoefficient(t *testing.T) {
	engine := &Engine{coeffs: testCoeffs}

	tests := []struct {
		hour int
		want float64
	}{
		{2, 0.8},
		{4, 0.8},
		{5, 1.0},
		{7, 1.5},
		{8, 1.5},
		{10, 1.0}, // rush window is half-open
		{12, 1.0},
		{17, 1.7},
		{18, 1.7},
		{20, 1.0},
		{23, 0.8},
	}
	for _, tt := range tests {
		at := time.Date(2024, 3, 15, tt.hour, 30, 0, 0, time.UTC)
		if got := engine.TrafficCoefficient(at); got != tt.want {
			t.Errorf("hour %d: coefficient = %f, want %f", tt.hour, got, tt.want)
		}
	}
}

type stubProvider struct {
	raw *roadnet.RawNetwork
}

func (p stubProvider) FetchNetwork(ctx context.Context, box roadnet.BBox) (*roadnet.RawNetwork, error) {
	return p.raw, nil
}

func newTestEngine(t *testing.T, raw *roadnet.RawNetwork, hour int) *Engine {
	t.Helper()
	graphs, err := roadnet.NewCache(stubProvider{raw: raw}, geo.NewMemStore(), roadnet.CacheOptions{
		SpeedLimits:     map[string]float64{"residential": 30},
		DefaultSpeedKmh: 30,
		LRUSize:         8,
		PersistTTL:      time.Hour,
		ProviderTimeout: time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(graphs, geocode.Nop{}, testCoeffs, 0.02)
	engine.now = func() time.Time {
		return time.Date(2024, 3, 15, hour, 0, 0, 0, time.UTC)
	}
	return engine
}

// threeWays admits three distinct paths from node 1 to node 4: a direct
// edge and detours via nodes 2 and 3.
func threeWays() *roadnet.RawNetwork {
	nodes := []roadnet.RawNode{
		{ID: 1, Lat: 55.750, Lon: 37.600},
		{ID: 2, Lat: 55.760, Lon: 37.615},
		{ID: 3, Lat: 55.740, Lon: 37.615},
		{ID: 4, Lat: 55.750, Lon: 37.630},
	}
	both := func(from, to int64, length float64) []roadnet.RawEdge {
		return []roadnet.RawEdge{
			{From: from, To: to, LengthM: length, RoadClass: "residential"},
			{From: to, To: from, LengthM: length, RoadClass: "residential"},
		}
	}
	var edges []roadnet.RawEdge
	edges = append(edges, both(1, 4, 2000)...)
	edges = append(edges, both(1, 2, 1400)...)
	edges = append(edges, both(2, 4, 1400)...)
	edges = append(edges, both(1, 3, 1450)...)
	edges = append(edges, both(3, 4, 1450)...)
	return &roadnet.RawNetwork{Nodes: nodes, Edges: edges}
}

func TestCalculateRoutesAlternatives(t *testing.T) {
	engine := newTestEngine(t, threeWays(), 12)

	origin := models.Coordinate{Lat: 55.750, Lon: 37.600}
	destination := models.Coordinate{Lat: 55.750, Lon: 37.630}

	routes := engine.CalculateRoutes(context.Background(), origin, destination, 3)
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}

	// Primary first: the direct 2 km edge.
	if routes[0].DistanceKm != 2.0 {
		t.Errorf("primary distance = %f, want 2.0", routes[0].DistanceKm)
	}

	signatures := make(map[string]bool)
	for i, route := range routes {
		if route.DistanceKm <= 0 {
			t.Errorf("route %d has non-positive distance", i)
		}
		if route.DurationMinutes <= 0 {
			t.Errorf("route %d has non-positive duration", i)
		}
		if route.TrafficCoefficient != 1.0 {
			t.Errorf("route %d coefficient = %f, want 1.0 at noon", i, route.TrafficCoefficient)
		}
		if len(route.Points) < 2 {
			t.Errorf("route %d polyline too short", i)
		}

		sig := ""
		for _, p := range route.Points {
			sig += fmt.Sprintf("%.6f,%.6f;", p.Lat, p.Lon)
		}
		if signatures[sig] {
			t.Errorf("route %d duplicates an earlier polyline", i)
		}
		signatures[sig] = true
	}
}

func TestCalculateRoutesTrafficAdjustment(t *testing.T) {
	origin := models.Coordinate{Lat: 55.750, Lon: 37.600}
	destination := models.Coordinate{Lat: 55.750, Lon: 37.630}

	noon := newTestEngine(t, threeWays(), 12).CalculateRoutes(context.Background(), origin, destination, 1)
	rush := newTestEngine(t, threeWays(), 8).CalculateRoutes(context.Background(), origin, destination, 1)

	if len(noon) != 1 || len(rush) != 1 {
		t.Fatal("expected one route from each engine")
	}
	want := noon[0].DurationMinutes * 1.5
	if diff := rush[0].DurationMinutes - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("rush duration = %f, want %f", rush[0].DurationMinutes, want)
	}
}

func TestCalculateRoutesNoPath(t *testing.T) {
	disconnected := &roadnet.RawNetwork{
		Nodes: []roadnet.RawNode{
			{ID: 1, Lat: 55.750, Lon: 37.600},
			{ID: 2, Lat: 55.750, Lon: 37.630},
		},
	}
	engine := newTestEngine(t, disconnected, 12)

	routes := engine.CalculateRoutes(context.Background(),
		models.Coordinate{Lat: 55.750, Lon: 37.600},
		models.Coordinate{Lat: 55.750, Lon: 37.630}, 3)
	if len(routes) != 0 {
		t.Errorf("expected no routes on a disconnected graph, got %d", len(routes))
	}
}

func TestCalculateRoutesFewerAlternativesThanRequested(t *testing.T) {
	// Only one path exists; asking for three must return just one.
	single := &roadnet.RawNetwork{
		Nodes: []roadnet.RawNode{
			{ID: 1, Lat: 55.750, Lon: 37.600},
			{ID: 2, Lat: 55.750, Lon: 37.630},
		},
		Edges: []roadnet.RawEdge{
			{From: 1, To: 2, LengthM: 2000, RoadClass: "residential"},
			{From: 2, To: 1, LengthM: 2000, RoadClass: "residential"},
		},
	}
	engine := newTestEngine(t, single, 12)

	routes := engine.CalculateRoutes(context.Background(),
		models.Coordinate{Lat: 55.750, Lon: 37.600},
		models.Coordinate{Lat: 55.750, Lon: 37.630}, 3)
	if len(routes) != 1 {
		t.Errorf("got %d routes, want 1", len(routes))
	}
}
