package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"googlemaps.github.io/maps"

	"taxi-dispatch-system/geo"
	"taxi-dispatch-system/models"
)

const (
	forwardKeyPrefix = "geocode:fwd:"
	reverseKeyPrefix = "geocode:rev:"
)

// GoogleGeocoder resolves addresses through the Google Maps Geocoding
// API, caching results in the geo store to stay within quota.
type GoogleGeocoder struct {
	client *maps.Client
	store  geo.Store
	ttl    time.Duration
}

func NewGoogleGeocoder(apiKey string, store geo.Store, ttl time.Duration) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &GoogleGeocoder{client: client, store: store, ttl: ttl}, nil
}

type cachedResult struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

func (g *GoogleGeocoder) Forward(ctx context.Context, address string) (models.Coordinate, string, error) {
	key := forwardKeyPrefix + address
	if cached, ok := g.fromCache(ctx, key); ok {
		return models.Coordinate{Lat: cached.Lat, Lon: cached.Lon}, cached.Address, nil
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return models.Coordinate{}, "", fmt.Errorf("geocoding %q: %w", address, err)
	}
	if len(results) == 0 {
		return models.Coordinate{}, "", ErrNoResult
	}

	location := models.Coordinate{
		Lat: results[0].Geometry.Location.Lat,
		Lon: results[0].Geometry.Location.Lng,
	}
	g.toCache(ctx, key, cachedResult{Lat: location.Lat, Lon: location.Lon, Address: results[0].FormattedAddress})
	return location, results[0].FormattedAddress, nil
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, location models.Coordinate) (string, error) {
	key := fmt.Sprintf("%s%.5f,%.5f", reverseKeyPrefix, location.Lat, location.Lon)
	if cached, ok := g.fromCache(ctx, key); ok {
		return cached.Address, nil
	}

	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: location.Lat, Lng: location.Lon},
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocoding (%f, %f): %w", location.Lat, location.Lon, err)
	}
	if len(results) == 0 {
		return "", ErrNoResult
	}

	g.toCache(ctx, key, cachedResult{Lat: location.Lat, Lon: location.Lon, Address: results[0].FormattedAddress})
	return results[0].FormattedAddress, nil
}

func (g *GoogleGeocoder) fromCache(ctx context.Context, key string) (cachedResult, bool) {
	data, err := g.store.Get(ctx, key)
	if err != nil {
		if err != geo.ErrNotFound {
			log.Printf("geocode: cache read %s: %v", key, err)
		}
		return cachedResult{}, false
	}
	var result cachedResult
	if err := json.Unmarshal(data, &result); err != nil {
		return cachedResult{}, false
	}
	return result, true
}

func (g *GoogleGeocoder) toCache(ctx context.Context, key string, result cachedResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := g.store.SetWithTTL(ctx, key, data, g.ttl); err != nil {
		log.Printf("geocode: cache write %s: %v", key, err)
	}
}
