package roadnet

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"taxi-dispatch-system/geo"
)

// CacheOptions tune the graph cache.
type CacheOptions struct {
	SpeedLimits     map[string]float64
	DefaultSpeedKmh float64
	// LRUSize bounds the in-memory layer; the persisted layer is bounded
	// by PersistTTL instead so distinct boxes cannot accumulate forever.
	LRUSize         int
	PersistTTL      time.Duration
	ProviderTimeout time.Duration
}

// Cache builds annotated road graphs per bounding box and keeps them in
// an in-memory LRU over a persisted store layer. Both layers are pure
// derived artifacts: discarding them only costs a rebuild.
type Cache struct {
	provider Provider
	store    geo.Store
	memory   *lru.Cache[string, *Graph]
	building singleflight.Group
	opts     CacheOptions
	now      func() time.Time
}

func NewCache(provider Provider, store geo.Store, opts CacheOptions) (*Cache, error) {
	memory, err := lru.New[string, *Graph](opts.LRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating graph lru: %w", err)
	}
	return &Cache{
		provider: provider,
		store:    store,
		memory:   memory,
		opts:     opts,
		now:      time.Now,
	}, nil
}

// GetOrBuild returns the annotated graph for the box, building it from
// the provider on a full miss. Concurrent calls for the same key share
// one build. An unreadable persisted entry counts as a miss.
func (c *Cache) GetOrBuild(ctx context.Context, box BBox) (*Graph, error) {
	key := box.Key()

	if g, ok := c.memory.Get(key); ok {
		return g, nil
	}

	if g := c.loadPersisted(ctx, key); g != nil {
		c.memory.Add(key, g)
		return g, nil
	}

	value, err, _ := c.building.Do(key, func() (interface{}, error) {
		return c.build(ctx, box, key)
	})
	if err != nil {
		return nil, err
	}

	g := value.(*Graph)
	c.memory.Add(key, g)
	return g, nil
}

func (c *Cache) loadPersisted(ctx context.Context, key string) *Graph {
	data, err := c.store.Get(ctx, key)
	if err == geo.ErrNotFound {
		return nil
	}
	if err != nil {
		log.Printf("roadnet: persisted lookup failed for %s: %v", key, err)
		return nil
	}

	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		// Corrupt entry; treat as a miss and rebuild.
		log.Printf("roadnet: corrupt cached graph %s: %v", key, err)
		return nil
	}
	g.buildAdjacency()
	return &g
}

func (c *Cache) build(ctx context.Context, box BBox, key string) (*Graph, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.opts.ProviderTimeout)
	defer cancel()

	raw, err := c.provider.FetchNetwork(fetchCtx, box)
	if err != nil {
		return nil, fmt.Errorf("fetching network for %s: %w", key, err)
	}

	g := BuildGraph(raw, c.opts.SpeedLimits, c.opts.DefaultSpeedKmh, c.now())

	data, err := json.Marshal(g)
	if err != nil {
		log.Printf("roadnet: encoding graph %s for persistence: %v", key, err)
		return g, nil
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.opts.PersistTTL); err != nil {
		// Persistence is best effort; the graph is still usable.
		log.Printf("roadnet: persisting graph %s: %v", key, err)
	}
	return g, nil
}
