// Package matching selects the driver minimizing total completion time
// for a dispatch request.
package matching

import (
	"context"
	"log"

	"taxi-dispatch-system/models"
	"taxi-dispatch-system/registry"
	"taxi-dispatch-system/routing"
)

// Assignment is the dispatch decision for a request: the chosen driver
// with both route legs and their combined totals.
type Assignment struct {
	Driver           models.NearbyDriver   `json:"driver"`
	PickupRoute      models.RouteCandidate `json:"pickup_route"`
	DestinationRoute models.RouteCandidate `json:"destination_route"`
	TotalTimeMin     float64               `json:"total_time_minutes"`
	TotalDistanceKm  float64               `json:"total_distance_km"`
}

// Optimizer composes the nearest-driver finder with the route cost engine.
type Optimizer struct {
	finder         *registry.Finder
	routes         *routing.Engine
	searchRadiusKm float64
	candidateLimit int
}

func NewOptimizer(finder *registry.Finder, routes *routing.Engine, searchRadiusKm float64, candidateLimit int) *Optimizer {
	return &Optimizer{
		finder:         finder,
		routes:         routes,
		searchRadiusKm: searchRadiusKm,
		candidateLimit: candidateLimit,
	}
}

// SelectDriver picks the candidate with the smallest pickup-plus-trip
// time. Candidates whose pickup leg cannot be routed are skipped without
// aborting the search. Ties keep the first candidate seen, i.e. the one
// nearer by straight-line distance. A nil result means no eligible
// driver could be routed; that is a normal outcome, not an error.
func (o *Optimizer) SelectDriver(ctx context.Context, pickup, destination models.Coordinate, vehicleClass string) (*Assignment, error) {
	candidates, err := o.finder.FindNearest(ctx, pickup, o.searchRadiusKm, vehicleClass, o.candidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// The pickup-to-destination leg is identical for every candidate.
	destinationLeg := o.routes.CalculateRoutes(ctx, pickup, destination, 1)
	if len(destinationLeg) == 0 {
		log.Printf("matching: no route from pickup (%f, %f) to destination (%f, %f)",
			pickup.Lat, pickup.Lon, destination.Lat, destination.Lon)
		return nil, nil
	}

	var best *Assignment
	for _, candidate := range candidates {
		pickupLeg := o.routes.CalculateRoutes(ctx, candidate.Location, pickup, 1)
		if len(pickupLeg) == 0 {
			log.Printf("matching: skipping driver %d, pickup leg unroutable", candidate.DriverID)
			continue
		}

		totalTime := pickupLeg[0].DurationMinutes + destinationLeg[0].DurationMinutes
		if best == nil || totalTime < best.TotalTimeMin {
			best = &Assignment{
				Driver:           candidate,
				PickupRoute:      pickupLeg[0],
				DestinationRoute: destinationLeg[0],
				TotalTimeMin:     totalTime,
				TotalDistanceKm:  pickupLeg[0].DistanceKm + destinationLeg[0].DistanceKm,
			}
		}
	}
	return best, nil
}
