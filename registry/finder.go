package registry

import (
	"context"
	"log"

	"taxi-dispatch-system/models"
)

// Finder answers "who is near this point and eligible for this job".
type Finder struct {
	registry *Registry
}

func NewFinder(registry *Registry) *Finder {
	return &Finder{registry: registry}
}

// FindNearest returns up to limit available drivers within radiusKm of the
// center, ordered by ascending distance. When vehicleClass is non-empty only
// that class is considered. Drivers whose detail record is missing or
// expired are skipped silently, as are drivers farther away than their
// class's maximum service distance. An empty result is not an error.
func (f *Finder) FindNearest(ctx context.Context, center models.Coordinate, radiusKm float64, vehicleClass string, limit int) ([]models.NearbyDriver, error) {
	members, err := f.registry.store.GeoRadius(ctx, geoKey, center.Lat, center.Lon, radiusKm, 0)
	if err != nil {
		log.Printf("finder: radius query failed at (%f, %f): %v", center.Lat, center.Lon, err)
		return nil, err
	}

	result := make([]models.NearbyDriver, 0, limit)
	for _, member := range members {
		driverID, ok := parseMemberID(member.ID)
		if !ok {
			continue
		}

		record, err := f.registry.Get(ctx, driverID)
		if err != nil {
			log.Printf("finder: record lookup failed for driver %d: %v", driverID, err)
			continue
		}
		if record == nil {
			// Stale index entry; the record expired underneath it.
			continue
		}
		if record.Status != models.StatusAvailable {
			continue
		}
		if vehicleClass != "" && record.VehicleClass != vehicleClass {
			continue
		}

		profile, ok := f.registry.profiles[record.VehicleClass]
		if !ok {
			continue
		}
		if member.DistanceKm > profile.MaxDistanceKm {
			continue
		}

		result = append(result, models.NearbyDriver{
			DriverID:     driverID,
			DistanceKm:   member.DistanceKm,
			EtaMinutes:   member.DistanceKm / profile.SpeedKmh * 60,
			VehicleClass: record.VehicleClass,
			Location:     models.Coordinate{Lat: member.Lat, Lon: member.Lon},
		})
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}
