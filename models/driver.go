package models

import "time"

// Driver statuses carried by position updates.
const (
	StatusAvailable = "available"
	StatusBusy      = "busy"
	StatusOffline   = "offline"
)

// ValidStatus reports whether s is a known driver status.
func ValidStatus(s string) bool {
	return s == StatusAvailable || s == StatusBusy || s == StatusOffline
}

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is inside the lat/lon value ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// VehicleClassProfile describes a service tier: how far a driver of this
// class may be sent for a pickup and the average speed used for ETAs.
type VehicleClassProfile struct {
	MaxDistanceKm float64 `json:"max_distance_km" mapstructure:"max_distance_km"`
	SpeedKmh      float64 `json:"speed_kmh" mapstructure:"speed_kmh"`
}

// DriverLocationRecord is the current known position of a driver. Records
// expire a fixed TTL after Timestamp; expired records are treated as absent.
type DriverLocationRecord struct {
	DriverID     int64     `json:"driver_id"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Status       string    `json:"status"`
	VehicleClass string    `json:"vehicle_class"`
	Timestamp    time.Time `json:"timestamp"`
}

// LocationHistoryEntry is one point of a driver's recent movement history.
type LocationHistoryEntry struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

// NearbyDriver is one result of a radius search, ordered by distance.
type NearbyDriver struct {
	DriverID     int64      `json:"driver_id"`
	DistanceKm   float64    `json:"distance_km"`
	EtaMinutes   float64    `json:"eta_minutes"`
	VehicleClass string     `json:"vehicle_class"`
	Location     Coordinate `json:"location"`
}

// Driver is the persisted driver profile.
type Driver struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	VehicleClass string `json:"vehicle_class"`
	Status       string `json:"status"`
}

// Rider is the persisted rider profile.
type Rider struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
