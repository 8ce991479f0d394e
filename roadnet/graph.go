// Package roadnet builds and caches annotated road graphs per bounding box.
package roadnet

import (
	"fmt"
	"time"

	"github.com/mmcloughlin/geohash"

	"taxi-dispatch-system/geo"
)

// BBox is a geographic bounding box in degrees.
type BBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoxAround returns the rectangle covering both points, expanded by
// buffer degrees on every side.
func BoxAround(aLat, aLon, bLat, bLon, buffer float64) BBox {
	box := BBox{South: aLat, West: aLon, North: aLat, East: aLon}
	if bLat < box.South {
		box.South = bLat
	}
	if bLat > box.North {
		box.North = bLat
	}
	if bLon < box.West {
		box.West = bLon
	}
	if bLon > box.East {
		box.East = bLon
	}
	box.South -= buffer
	box.West -= buffer
	box.North += buffer
	box.East += buffer
	return box
}

// Key canonicalizes the box into a cache key. Corners are quantized via
// geohash so the same box always maps to the same key and near-identical
// boxes coalesce.
func (b BBox) Key() string {
	sw := geohash.EncodeWithPrecision(b.South, b.West, 6)
	ne := geohash.EncodeWithPrecision(b.North, b.East, 6)
	return fmt.Sprintf("graph:%s:%s", sw, ne)
}

// Node is a road graph vertex.
type Node struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Edge is a directed road segment annotated with a class-derived speed
// and the traversal time at that speed.
type Edge struct {
	From      int64   `json:"from"`
	To        int64   `json:"to"`
	LengthM   float64 `json:"length_m"`
	RoadClass string  `json:"road_class"`
	SpeedKmh  float64 `json:"speed_kmh"`
	TimeH     float64 `json:"time_h"`
}

// Graph is a directed multigraph over road nodes. It is immutable after
// construction; route computations overlay their own edge weights.
type Graph struct {
	Nodes   map[int64]Node `json:"nodes"`
	Edges   []Edge         `json:"edges"`
	BuiltAt time.Time      `json:"built_at"`

	// adjacency holds edge indexes per origin node, rebuilt after decode.
	adjacency map[int64][]int
}

// RawNode and RawEdge are what the road network provider returns before
// speed/time annotation.
type RawNode struct {
	ID  int64
	Lat float64
	Lon float64
}

type RawEdge struct {
	From      int64
	To        int64
	LengthM   float64
	RoadClass string
}

// RawNetwork is an unannotated provider response.
type RawNetwork struct {
	Nodes []RawNode
	Edges []RawEdge
}

// BuildGraph annotates a raw network: every edge gets a speed from the
// road class table (falling back to defaultSpeed) and a traversal time of
// length over speed.
func BuildGraph(raw *RawNetwork, speedLimits map[string]float64, defaultSpeedKmh float64, builtAt time.Time) *Graph {
	g := &Graph{
		Nodes:   make(map[int64]Node, len(raw.Nodes)),
		Edges:   make([]Edge, 0, len(raw.Edges)),
		BuiltAt: builtAt,
	}
	for _, n := range raw.Nodes {
		g.Nodes[n.ID] = Node{ID: n.ID, Lat: n.Lat, Lon: n.Lon}
	}
	for _, e := range raw.Edges {
		speed, ok := speedLimits[e.RoadClass]
		if !ok {
			speed = defaultSpeedKmh
		}
		g.Edges = append(g.Edges, Edge{
			From:      e.From,
			To:        e.To,
			LengthM:   e.LengthM,
			RoadClass: e.RoadClass,
			SpeedKmh:  speed,
			TimeH:     e.LengthM / 1000 / speed,
		})
	}
	g.buildAdjacency()
	return g
}

func (g *Graph) buildAdjacency() {
	g.adjacency = make(map[int64][]int, len(g.Nodes))
	for i, e := range g.Edges {
		g.adjacency[e.From] = append(g.adjacency[e.From], i)
	}
}

// OutEdges returns the indexes of edges leaving node id.
func (g *Graph) OutEdges(id int64) []int {
	if g.adjacency == nil {
		g.buildAdjacency()
	}
	return g.adjacency[id]
}

// NearestNode snaps a coordinate to the closest graph node. ok is false
// for an empty graph.
func (g *Graph) NearestNode(lat, lon float64) (int64, bool) {
	var best int64
	bestDist := -1.0
	for id, n := range g.Nodes {
		d := geo.HaversineKm(lat, lon, n.Lat, n.Lon)
		if bestDist < 0 || d < bestDist {
			best = id
			bestDist = d
		}
	}
	return best, bestDist >= 0
}
