package database

import (
	"context"
	"database/sql"
	"fmt"

	"taxi-dispatch-system/models"
)

// TripStore persists trip records at the dispatch boundary. The core
// itself only writes the outcome of a dispatch decision here.
type TripStore struct {
	db *sql.DB
}

func NewTripStore(db *sql.DB) *TripStore {
	return &TripStore{db: db}
}

// Create inserts a requested trip and returns its id.
func (s *TripStore) Create(ctx context.Context, trip models.Trip) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO trips (rider_id, driver_id, pickup_latitude, pickup_longitude,
		                    destination_latitude, destination_longitude, vehicle_class,
		                    status, total_time_minutes, total_distance_km)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'requested', $8, $9) RETURNING id`,
		trip.RiderID, trip.DriverID, trip.PickupLat, trip.PickupLon,
		trip.DestLat, trip.DestLon, trip.VehicleClass,
		trip.TotalTimeMin, trip.TotalDistanceKm,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting trip: %w", err)
	}
	return id, nil
}

// Get fetches a trip by id; nil when it does not exist.
func (s *TripStore) Get(ctx context.Context, id int64) (*models.Trip, error) {
	var trip models.Trip
	err := s.db.QueryRowContext(ctx,
		`SELECT id, rider_id, driver_id, pickup_latitude, pickup_longitude,
		        destination_latitude, destination_longitude, vehicle_class,
		        status, total_time_minutes, total_distance_km
		 FROM trips WHERE id = $1`, id,
	).Scan(
		&trip.ID, &trip.RiderID, &trip.DriverID, &trip.PickupLat, &trip.PickupLon,
		&trip.DestLat, &trip.DestLon, &trip.VehicleClass,
		&trip.Status, &trip.TotalTimeMin, &trip.TotalDistanceKm,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting trip %d: %w", id, err)
	}
	return &trip, nil
}

// Complete marks a trip as finished and returns its driver id.
func (s *TripStore) Complete(ctx context.Context, id int64) (int64, error) {
	var driverID int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE trips SET status = 'completed' WHERE id = $1 RETURNING driver_id`, id,
	).Scan(&driverID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("trip %d not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("completing trip %d: %w", id, err)
	}
	return driverID, nil
}
