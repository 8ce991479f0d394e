package models

// RouteCandidate is one computed route between two points. Duration is
// already adjusted by the traffic coefficient that was in effect.
type RouteCandidate struct {
	DistanceKm         float64      `json:"distance_km"`
	DurationMinutes    float64      `json:"duration_minutes"`
	TrafficCoefficient float64      `json:"traffic_coefficient"`
	StartLocation      Coordinate   `json:"start_location"`
	EndLocation        Coordinate   `json:"end_location"`
	Points             []Coordinate `json:"points"`
	StartAddress       string       `json:"start_address,omitempty"`
	EndAddress         string       `json:"end_address,omitempty"`
}
