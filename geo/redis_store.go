package geo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore backs the geospatial store with Redis: GEO commands for the
// spatial index, SETEX for expiring records, LPUSH+LTRIM for bounded lists.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GeoUpsert(ctx context.Context, key, id string, lat, lon float64) error {
	err := s.client.GeoAdd(ctx, key, &redis.GeoLocation{
		Name:      id,
		Latitude:  lat,
		Longitude: lon,
	}).Err()
	if err != nil {
		return fmt.Errorf("geoadd %s/%s: %w", key, id, err)
	}
	return nil
}

func (s *RedisStore) GeoRemove(ctx context.Context, key, id string) error {
	// Geo sets are sorted sets underneath, so ZREM drops the member.
	if err := s.client.ZRem(ctx, key, id).Err(); err != nil {
		return fmt.Errorf("zrem %s/%s: %w", key, id, err)
	}
	return nil
}

func (s *RedisStore) GeoRadius(ctx context.Context, key string, lat, lon, radiusKm float64, limit int) ([]Member, error) {
	query := &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}
	if limit > 0 {
		query.Count = limit
	}
	locations, err := s.client.GeoRadius(ctx, key, lon, lat, query).Result()
	if err != nil {
		return nil, fmt.Errorf("georadius %s: %w", key, err)
	}

	members := make([]Member, 0, len(locations))
	for _, loc := range locations {
		members = append(members, Member{
			ID:         loc.Name,
			Lat:        loc.Latitude,
			Lon:        loc.Longitude,
			DistanceKm: loc.Dist,
		})
	}
	return members, nil
}

func (s *RedisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) PrependBounded(ctx context.Context, key string, value []byte, size int) error {
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, int64(size-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("lpush/ltrim %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, key string) ([][]byte, error) {
	values, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out, nil
}
