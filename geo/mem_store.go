package geo

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/dhconnelly/rtreego"
)

// Degrees per kilometre of latitude; longitude is corrected by cos(lat)
// at query time. Coarse, but the haversine filter below is exact.
const degPerKmLat = 1.0 / 110.574

// MemStore is an in-process Store backed by an R-tree spatial index. It
// mirrors the Redis backend's semantics (lazy TTL, ascending radius
// results, bounded lists) and is used in tests and single-node setups.
type MemStore struct {
	mu      sync.Mutex
	geosets map[string]*geoSet
	values  map[string]memValue
	lists   map[string][][]byte
	now     func() time.Time
}

type geoSet struct {
	tree    *rtreego.Rtree
	members map[string]*geoMember
}

type geoMember struct {
	id       string
	lat, lon float64
}

// Bounds satisfies rtreego.Spatial with a degenerate box around the point.
func (m *geoMember) Bounds() rtreego.Rect {
	return rtreego.Point{m.lat, m.lon}.ToRect(1e-6)
}

type memValue struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func NewMemStore() *MemStore {
	return &MemStore{
		geosets: make(map[string]*geoSet),
		values:  make(map[string]memValue),
		lists:   make(map[string][][]byte),
		now:     time.Now,
	}
}

func (s *MemStore) geoset(key string) *geoSet {
	set, ok := s.geosets[key]
	if !ok {
		set = &geoSet{
			tree:    rtreego.NewTree(2, 25, 50),
			members: make(map[string]*geoMember),
		}
		s.geosets[key] = set
	}
	return set
}

func (s *MemStore) GeoUpsert(ctx context.Context, key, id string, lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.geoset(key)
	if old, ok := set.members[id]; ok {
		set.tree.Delete(old)
	}
	member := &geoMember{id: id, lat: lat, lon: lon}
	set.members[id] = member
	set.tree.Insert(member)
	return nil
}

func (s *MemStore) GeoRemove(ctx context.Context, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.geosets[key]
	if !ok {
		return nil
	}
	if member, ok := set.members[id]; ok {
		set.tree.Delete(member)
		delete(set.members, id)
	}
	return nil
}

func (s *MemStore) GeoRadius(ctx context.Context, key string, lat, lon, radiusKm float64, limit int) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.geosets[key]
	if !ok {
		return nil, nil
	}

	hits := set.tree.SearchIntersect(searchRect(lat, lon, radiusKm))

	members := make([]Member, 0, len(hits))
	for _, hit := range hits {
		m := hit.(*geoMember)
		d := HaversineKm(lat, lon, m.lat, m.lon)
		if d > radiusKm {
			continue
		}
		members = append(members, Member{ID: m.id, Lat: m.lat, Lon: m.lon, DistanceKm: d})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].DistanceKm < members[j].DistanceKm })
	if limit > 0 && len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

// searchRect covers the radius circle; imprecise at the poles, which the
// exact distance filter above compensates for.
func searchRect(lat, lon, radiusKm float64) rtreego.Rect {
	dLat := radiusKm * degPerKmLat
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	dLon := dLat / cosLat
	rect, err := rtreego.NewRect(
		rtreego.Point{lat - dLat, lon - dLon},
		[]float64{2 * dLat, 2 * dLon},
	)
	if err != nil {
		return rtreego.Point{lat, lon}.ToRect(dLat)
	}
	return rect
}

func (s *MemStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := memValue{data: append([]byte(nil), value...)}
	if ttl > 0 {
		v.expiresAt = s.now().Add(ttl)
	}
	s.values[key] = v
	return nil
}

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !v.expiresAt.IsZero() && s.now().After(v.expiresAt) {
		delete(s.values, key)
		return nil, ErrNotFound
	}
	return v.data, nil
}

func (s *MemStore) PrependBounded(ctx context.Context, key string, value []byte, size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([][]byte{append([]byte(nil), value...)}, s.lists[key]...)
	if len(list) > size {
		list = list[:size]
	}
	s.lists[key] = list
	return nil
}

func (s *MemStore) List(ctx context.Context, key string) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	out := make([][]byte, len(list))
	copy(out, list)
	return out, nil
}
