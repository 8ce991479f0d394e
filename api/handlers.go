package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"taxi-dispatch-system/database"
	"taxi-dispatch-system/matching"
	"taxi-dispatch-system/models"
	"taxi-dispatch-system/registry"
	"taxi-dispatch-system/roadnet"
	"taxi-dispatch-system/routing"
)

// Server bundles the core services behind the HTTP surface.
type Server struct {
	Registry  *registry.Registry
	Finder    *registry.Finder
	Routes    *routing.Engine
	Optimizer *matching.Optimizer
	Trips     *database.TripStore

	MaxSearchRadiusKm float64
	Alternatives      int
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// UpdateDriverLocation ingests a raw driver position update.
func (s *Server) UpdateDriverLocation(w http.ResponseWriter, r *http.Request) {
	var update registry.LocationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := s.Registry.Upsert(r.Context(), update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Driver location updated"})
}

// GetNearestDrivers runs a radius search around a point.
func (s *Server) GetNearestDrivers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(query.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		http.Error(w, "Invalid coordinates", http.StatusBadRequest)
		return
	}

	radius := s.MaxSearchRadiusKm
	if raw := query.Get("radius"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			radius = parsed
		}
	}
	limit := 10
	if raw := query.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	drivers, err := s.Finder.FindNearest(r.Context(), models.Coordinate{Lat: lat, Lon: lon},
		radius, query.Get("vehicle_class"), limit)
	if err != nil {
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"drivers": drivers})
}

// GetDriverHistory returns the driver's recent positions, newest first.
func (s *Server) GetDriverHistory(w http.ResponseWriter, r *http.Request) {
	driverID, err := strconv.ParseInt(mux.Vars(r)["driver_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid driver ID", http.StatusBadRequest)
		return
	}

	history, err := s.Registry.History(r.Context(), driverID)
	if err != nil {
		http.Error(w, "History lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"driver_id": driverID, "history": history})
}

// CalculateRoutes computes up to k routes between two points.
func (s *Server) CalculateRoutes(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Origin       models.Coordinate `json:"origin"`
		Destination  models.Coordinate `json:"destination"`
		Alternatives int               `json:"alternatives"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if !request.Origin.Valid() || !request.Destination.Valid() {
		http.Error(w, "Coordinates out of range", http.StatusBadRequest)
		return
	}

	k := request.Alternatives
	if k <= 0 {
		k = s.Alternatives
	}

	routes := s.Routes.CalculateRoutes(r.Context(), request.Origin, request.Destination, k)
	writeJSON(w, http.StatusOK, map[string]interface{}{"routes": routes})
}

// Dispatch selects the best driver for a ride request and records the trip.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RiderID      int64             `json:"rider_id"`
		Pickup       models.Coordinate `json:"pickup"`
		Destination  models.Coordinate `json:"destination"`
		VehicleClass string            `json:"vehicle_class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if !request.Pickup.Valid() || !request.Destination.Valid() {
		http.Error(w, "Coordinates out of range", http.StatusBadRequest)
		return
	}

	assignment, err := s.Optimizer.SelectDriver(r.Context(), request.Pickup, request.Destination, request.VehicleClass)
	if err != nil {
		http.Error(w, "Dispatch failed", http.StatusInternalServerError)
		return
	}
	if assignment == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No available drivers"})
		return
	}

	tripID, err := s.Trips.Create(r.Context(), models.Trip{
		RiderID:         request.RiderID,
		DriverID:        assignment.Driver.DriverID,
		PickupLat:       request.Pickup.Lat,
		PickupLon:       request.Pickup.Lon,
		DestLat:         request.Destination.Lat,
		DestLon:         request.Destination.Lon,
		VehicleClass:    assignment.Driver.VehicleClass,
		TotalTimeMin:    assignment.TotalTimeMin,
		TotalDistanceKm: assignment.TotalDistanceKm,
	})
	if err != nil {
		http.Error(w, "Failed to create trip", http.StatusInternalServerError)
		return
	}

	// Mark the driver busy so the next radius search skips them.
	if err := s.Registry.Upsert(r.Context(), registry.LocationUpdate{
		DriverID:     assignment.Driver.DriverID,
		Location:     assignment.Driver.Location,
		Status:       models.StatusBusy,
		VehicleClass: assignment.Driver.VehicleClass,
	}); err != nil {
		logRequest(r, "marking driver %d busy: %v", assignment.Driver.DriverID, err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Driver assigned",
		"trip_id":    tripID,
		"assignment": assignment,
	})
}

// GetTrip fetches trip details by ID.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := strconv.ParseInt(mux.Vars(r)["trip_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid trip ID", http.StatusBadRequest)
		return
	}

	trip, err := s.Trips.Get(r.Context(), tripID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if trip == nil {
		http.Error(w, "Trip not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// CompleteTrip marks a trip as completed.
func (s *Server) CompleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := strconv.ParseInt(mux.Vars(r)["trip_id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid trip ID", http.StatusBadRequest)
		return
	}

	if _, err := s.Trips.Complete(r.Context(), tripID); err != nil {
		http.Error(w, "Failed to update trip", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Trip completed"})
}

// GetStandbyPoints suggests high-coverage staging spots inside a bbox.
func (s *Server) GetStandbyPoints(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	parse := func(name string) (float64, error) {
		return strconv.ParseFloat(query.Get(name), 64)
	}
	south, errS := parse("south")
	west, errW := parse("west")
	north, errN := parse("north")
	east, errE := parse("east")
	if errS != nil || errW != nil || errN != nil || errE != nil {
		http.Error(w, "Invalid bounding box", http.StatusBadRequest)
		return
	}

	count := 10
	if raw := query.Get("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			count = parsed
		}
	}

	box := roadnet.BBox{South: south, West: west, North: north, East: east}
	points := s.Routes.OptimalStandbyPoints(r.Context(), box, count)
	writeJSON(w, http.StatusOK, map[string]interface{}{"points": points})
}
