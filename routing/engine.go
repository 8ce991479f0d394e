// Package routing computes time-weighted routes with time-of-day traffic
// adjustment and alternative paths over cached road graphs.
package routing

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"taxi-dispatch-system/geocode"
	"taxi-dispatch-system/models"
	"taxi-dispatch-system/roadnet"
)

const alternativePenalty = 1.5

// Coefficients are the time-of-day traffic multipliers.
type Coefficients struct {
	MorningRush float64
	EveningRush float64
	Night       float64
	Normal      float64
}

// Engine is the route cost engine.
type Engine struct {
	graphs   *roadnet.Cache
	geocoder geocode.Geocoder
	coeffs   Coefficients
	buffer   float64
	now      func() time.Time
}

func NewEngine(graphs *roadnet.Cache, geocoder geocode.Geocoder, coeffs Coefficients, bufferDeg float64) *Engine {
	return &Engine{
		graphs:   graphs,
		geocoder: geocoder,
		coeffs:   coeffs,
		buffer:   bufferDeg,
		now:      time.Now,
	}
}

// TrafficCoefficient maps the wall-clock hour to a duration multiplier.
// Rush windows are half-open: [07:00, 10:00) and [17:00, 20:00); night
// is [23:00, 24:00) plus [00:00, 05:00).
func (e *Engine) TrafficCoefficient(t time.Time) float64 {
	hour := t.Hour()
	switch {
	case hour >= 7 && hour < 10:
		return e.coeffs.MorningRush
	case hour >= 17 && hour < 20:
		return e.coeffs.EveningRush
	case hour >= 23 || hour < 5:
		return e.coeffs.Night
	default:
		return e.coeffs.Normal
	}
}

// CalculateRoutes returns up to k route candidates between origin and
// destination, primary first. Alternatives are computed by penalizing
// every edge used by previously found paths; an alternative that cannot
// be found, or that duplicates an earlier one, is skipped without
// failing the call. The result may be empty when no path exists or the
// graph cannot be built.
func (e *Engine) CalculateRoutes(ctx context.Context, origin, destination models.Coordinate, k int) []models.RouteCandidate {
	box := roadnet.BoxAround(origin.Lat, origin.Lon, destination.Lat, destination.Lon, e.buffer)

	graph, err := e.graphs.GetOrBuild(ctx, box)
	if err != nil {
		log.Printf("routing: graph unavailable for %s: %v", box.Key(), err)
		return nil
	}

	originNode, ok := graph.NearestNode(origin.Lat, origin.Lon)
	if !ok {
		return nil
	}
	destNode, ok := graph.NearestNode(destination.Lat, destination.Lon)
	if !ok {
		return nil
	}

	coefficient := e.TrafficCoefficient(e.now())

	var routes []models.RouteCandidate
	overlay := Overlay{}
	seen := make(map[string]bool)

	for i := 0; i < k; i++ {
		nodes, edges, found := ShortestPath(graph, originNode, destNode, overlay)
		if !found {
			if i == 0 {
				// No path at all.
				return nil
			}
			// Graph disconnected under the penalty; skip this alternative.
			continue
		}

		overlay.Penalize(edges, alternativePenalty)

		signature := pathSignature(nodes)
		if seen[signature] {
			continue
		}
		seen[signature] = true

		routes = append(routes, e.buildCandidate(ctx, graph, origin, destination, nodes, edges, coefficient))
	}
	return routes
}

func (e *Engine) buildCandidate(ctx context.Context, graph *roadnet.Graph, origin, destination models.Coordinate, nodes []int64, edges []int, coefficient float64) models.RouteCandidate {
	var lengthM, timeH float64
	for _, idx := range edges {
		lengthM += graph.Edges[idx].LengthM
		timeH += graph.Edges[idx].TimeH
	}

	points := make([]models.Coordinate, 0, len(nodes))
	for _, id := range nodes {
		node := graph.Nodes[id]
		points = append(points, models.Coordinate{Lat: node.Lat, Lon: node.Lon})
	}

	candidate := models.RouteCandidate{
		DistanceKm:         lengthM / 1000,
		DurationMinutes:    timeH * 60 * coefficient,
		TrafficCoefficient: coefficient,
		StartLocation:      origin,
		EndLocation:        destination,
		Points:             points,
	}

	// Addresses are best effort; a failing geocoder leaves them empty.
	if address, err := e.geocoder.Reverse(ctx, origin); err == nil {
		candidate.StartAddress = address
	}
	if address, err := e.geocoder.Reverse(ctx, destination); err == nil {
		candidate.EndAddress = address
	}
	return candidate
}

func pathSignature(nodes []int64) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(strconv.FormatInt(n, 10))
		b.WriteByte(',')
	}
	return b.String()
}
