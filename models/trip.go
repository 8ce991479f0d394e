package models

type Trip struct {
	ID              int64   `json:"id"`
	RiderID         int64   `json:"rider_id"`
	DriverID        int64   `json:"driver_id"`
	PickupLat       float64 `json:"pickup_latitude"`
	PickupLon       float64 `json:"pickup_longitude"`
	DestLat         float64 `json:"destination_latitude"`
	DestLon         float64 `json:"destination_longitude"`
	VehicleClass    string  `json:"vehicle_class"`
	Status          string  `json:"status"` // "requested", "completed"
	TotalTimeMin    float64 `json:"total_time_minutes"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}
