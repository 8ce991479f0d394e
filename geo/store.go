// Package geo abstracts the geospatial key-value store used by the
// location registry and the road network cache. Backends must preserve
// TTL and radius-query semantics exactly; per-key atomicity is all that
// callers rely on.
package geo

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is missing or expired.
var ErrNotFound = errors.New("geo: not found")

// Member is one entry of a geo set returned by a radius query.
type Member struct {
	ID         string
	Lat        float64
	Lon        float64
	DistanceKm float64
}

// Store is the capability set required from a backing store.
type Store interface {
	// GeoUpsert adds or moves member id within the geo set at key.
	GeoUpsert(ctx context.Context, key, id string, lat, lon float64) error

	// GeoRemove drops member id from the geo set at key. Removing an
	// absent member is not an error.
	GeoRemove(ctx context.Context, key, id string) error

	// GeoRadius returns members within radiusKm of the center, ordered
	// by ascending distance. limit <= 0 means no limit.
	GeoRadius(ctx context.Context, key string, lat, lon, radiusKm float64, limit int) ([]Member, error)

	// SetWithTTL stores value under key, expiring after ttl. A zero ttl
	// stores the value without expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// PrependBounded pushes value to the front of the list at key and
	// trims the list to at most size entries.
	PrependBounded(ctx context.Context, key string, value []byte, size int) error

	// List returns the list at key, front first.
	List(ctx context.Context, key string) ([][]byte, error)
}
