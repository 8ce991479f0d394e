package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"taxi-dispatch-system/api"
	"taxi-dispatch-system/cache"
	"taxi-dispatch-system/config"
	"taxi-dispatch-system/database"
	"taxi-dispatch-system/geo"
	"taxi-dispatch-system/geocode"
	"taxi-dispatch-system/matching"
	"taxi-dispatch-system/registry"
	"taxi-dispatch-system/roadnet"
	"taxi-dispatch-system/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Database connected.")

	// Geospatial store: Redis in production, in-memory for single-node dev.
	var store geo.Store
	if cfg.Store.Backend == "memory" {
		store = geo.NewMemStore()
		log.Println("Using in-memory geo store.")
	} else {
		client, err := cache.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Connected to Redis successfully.")
		store = geo.NewRedisStore(client)
	}

	var geocoder geocode.Geocoder = geocode.Nop{}
	if cfg.Geocoder.GoogleAPIKey != "" {
		geocoder, err = geocode.NewGoogleGeocoder(
			cfg.Geocoder.GoogleAPIKey,
			store,
			time.Duration(cfg.Geocoder.CacheTTLHours)*time.Hour,
		)
		if err != nil {
			log.Fatal(err)
		}
	}

	provider := roadnet.NewOverpassClient(
		cfg.RoadNetwork.OverpassURL,
		time.Duration(cfg.RoadNetwork.ProviderTimeoutSeconds)*time.Second,
	)
	graphs, err := roadnet.NewCache(provider, store, roadnet.CacheOptions{
		SpeedLimits:     cfg.RoadNetwork.SpeedLimits,
		DefaultSpeedKmh: cfg.RoadNetwork.DefaultSpeedKmh,
		LRUSize:         cfg.RoadNetwork.CacheSize,
		PersistTTL:      time.Duration(cfg.RoadNetwork.CacheTTLHours) * time.Hour,
		ProviderTimeout: time.Duration(cfg.RoadNetwork.ProviderTimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatal(err)
	}

	locations := registry.New(
		store,
		time.Duration(cfg.Dispatch.LocationTTLSeconds)*time.Second,
		cfg.Dispatch.HistorySize,
		cfg.VehicleClasses,
	)
	finder := registry.NewFinder(locations)

	engine := routing.NewEngine(graphs, geocoder, routing.Coefficients{
		MorningRush: cfg.Traffic.MorningRush,
		EveningRush: cfg.Traffic.EveningRush,
		Night:       cfg.Traffic.Night,
		Normal:      cfg.Traffic.Normal,
	}, cfg.RoadNetwork.BufferDeg)

	optimizer := matching.NewOptimizer(finder, engine,
		cfg.Dispatch.MaxSearchRadiusKm, cfg.Dispatch.CandidateLimit)

	server := &api.Server{
		Registry:          locations,
		Finder:            finder,
		Routes:            engine,
		Optimizer:         optimizer,
		Trips:             database.NewTripStore(db),
		MaxSearchRadiusKm: cfg.Dispatch.MaxSearchRadiusKm,
		Alternatives:      cfg.Dispatch.Alternatives,
	}

	router := api.RegisterRoutes(server)

	log.Printf("Server started on %s", cfg.HTTP.Addr)
	log.Fatal(http.ListenAndServe(cfg.HTTP.Addr, router))
}
