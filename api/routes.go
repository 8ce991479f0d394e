package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(s *Server) http.Handler {
	router := mux.NewRouter()

	// Driver endpoints
	router.HandleFunc("/drivers/location", s.UpdateDriverLocation).Methods("POST")
	router.HandleFunc("/drivers/nearest", s.GetNearestDrivers).Methods("GET")
	router.HandleFunc("/drivers/{driver_id}/history", s.GetDriverHistory).Methods("GET")

	// Routing endpoints
	router.HandleFunc("/routes", s.CalculateRoutes).Methods("POST")
	router.HandleFunc("/standby-points", s.GetStandbyPoints).Methods("GET")

	// Dispatch and trip endpoints
	router.HandleFunc("/dispatch", s.Dispatch).Methods("POST")
	router.HandleFunc("/trips/{trip_id}", s.GetTrip).Methods("GET")
	router.HandleFunc("/trips/{trip_id}/complete", s.CompleteTrip).Methods("PUT")

	// Streaming position ingestion
	router.HandleFunc("/ws/driver", s.DriverStream)

	// Observability
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Add CORS support
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return cors(RequestIDMiddleware(MetricsMiddleware(router)))
}
