// Package geocode enriches routes with human-readable addresses. A
// failing or absent geocoder degrades address fields to empty; it never
// fails a route.
package geocode

import (
	"context"
	"errors"

	"taxi-dispatch-system/models"
)

// ErrNoResult is returned when the geocoder has no answer for a query.
var ErrNoResult = errors.New("geocode: no result")

type Geocoder interface {
	// Forward resolves an address to a coordinate and a formatted address.
	Forward(ctx context.Context, address string) (models.Coordinate, string, error)

	// Reverse resolves a coordinate to a formatted address.
	Reverse(ctx context.Context, location models.Coordinate) (string, error)
}

// Nop is used when no geocoding backend is configured.
type Nop struct{}

func (Nop) Forward(ctx context.Context, address string) (models.Coordinate, string, error) {
	return models.Coordinate{}, "", ErrNoResult
}

func (Nop) Reverse(ctx context.Context, location models.Coordinate) (string, error) {
	return "", ErrNoResult
}
