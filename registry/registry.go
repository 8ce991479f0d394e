// Package registry tracks current and recent driver positions on top of
// the injected geo store. The spatial index entry and the detail record
// for a driver may transiently disagree; readers treat a missing or
// expired record as absent rather than an error.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"taxi-dispatch-system/geo"
	"taxi-dispatch-system/models"
)

const (
	geoKey           = "driver:locations"
	infoKeyPrefix    = "driver:info:"
	historyKeyPrefix = "driver:history:"
	memberPrefix     = "driver:"
)

// LocationUpdate is a raw position update from the ingestion channel.
type LocationUpdate struct {
	DriverID     int64             `json:"driver_id"`
	Location     models.Coordinate `json:"location"`
	Status       string            `json:"status"`
	VehicleClass string            `json:"vehicle_class"`
}

// Registry is the driver location registry.
type Registry struct {
	store       geo.Store
	ttl         time.Duration
	historySize int
	profiles    map[string]models.VehicleClassProfile
	now         func() time.Time
}

func New(store geo.Store, ttl time.Duration, historySize int, profiles map[string]models.VehicleClassProfile) *Registry {
	return &Registry{
		store:       store,
		ttl:         ttl,
		historySize: historySize,
		profiles:    profiles,
		now:         time.Now,
	}
}

// Upsert writes a fresh location record for the driver, resetting its TTL,
// updates the spatial index and prepends a history entry. The three writes
// are not atomic as a group; the first failure is logged and reported, and
// readers tolerate any partial state left behind.
func (r *Registry) Upsert(ctx context.Context, up LocationUpdate) error {
	if err := r.validate(up); err != nil {
		return err
	}

	timestamp := r.now()
	record := models.DriverLocationRecord{
		DriverID:     up.DriverID,
		Lat:          up.Location.Lat,
		Lon:          up.Location.Lon,
		Status:       up.Status,
		VehicleClass: up.VehicleClass,
		Timestamp:    timestamp,
	}

	if err := r.store.GeoUpsert(ctx, geoKey, memberID(up.DriverID), up.Location.Lat, up.Location.Lon); err != nil {
		log.Printf("registry: geo upsert failed for driver %d: %v", up.DriverID, err)
		return fmt.Errorf("updating spatial index: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding location record: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, infoKey(up.DriverID), data, r.ttl); err != nil {
		log.Printf("registry: record write failed for driver %d: %v", up.DriverID, err)
		return fmt.Errorf("writing location record: %w", err)
	}

	entry, err := json.Marshal(models.LocationHistoryEntry{
		Lat:       up.Location.Lat,
		Lon:       up.Location.Lon,
		Timestamp: timestamp,
	})
	if err != nil {
		return fmt.Errorf("encoding history entry: %w", err)
	}
	if err := r.store.PrependBounded(ctx, historyKey(up.DriverID), entry, r.historySize); err != nil {
		log.Printf("registry: history write failed for driver %d: %v", up.DriverID, err)
		return fmt.Errorf("writing history: %w", err)
	}

	return nil
}

// Get returns the driver's current location record, or nil if the driver
// is unknown or the record has passed its TTL.
func (r *Registry) Get(ctx context.Context, driverID int64) (*models.DriverLocationRecord, error) {
	data, err := r.store.Get(ctx, infoKey(driverID))
	if err == geo.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading record for driver %d: %w", driverID, err)
	}

	var record models.DriverLocationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		log.Printf("registry: corrupt record for driver %d: %v", driverID, err)
		return nil, nil
	}

	// The store enforces expiry itself; the timestamp check is a second
	// line of defence against backends without native TTL.
	if r.now().Sub(record.Timestamp) > r.ttl {
		return nil, nil
	}
	return &record, nil
}

// History returns the driver's recent positions, newest first, at most
// the configured cap.
func (r *Registry) History(ctx context.Context, driverID int64) ([]models.LocationHistoryEntry, error) {
	items, err := r.store.List(ctx, historyKey(driverID))
	if err != nil {
		return nil, fmt.Errorf("reading history for driver %d: %w", driverID, err)
	}

	entries := make([]models.LocationHistoryEntry, 0, len(items))
	for _, item := range items {
		var entry models.LocationHistoryEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			log.Printf("registry: corrupt history entry for driver %d: %v", driverID, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Registry) validate(up LocationUpdate) error {
	if !up.Location.Valid() {
		return fmt.Errorf("driver %d: coordinate out of range (%f, %f)", up.DriverID, up.Location.Lat, up.Location.Lon)
	}
	if !models.ValidStatus(up.Status) {
		return fmt.Errorf("driver %d: unknown status %q", up.DriverID, up.Status)
	}
	if _, ok := r.profiles[up.VehicleClass]; !ok {
		return fmt.Errorf("driver %d: unknown vehicle class %q", up.DriverID, up.VehicleClass)
	}
	return nil
}

func infoKey(driverID int64) string {
	return infoKeyPrefix + strconv.FormatInt(driverID, 10)
}

func historyKey(driverID int64) string {
	return historyKeyPrefix + strconv.FormatInt(driverID, 10)
}

func memberID(driverID int64) string {
	return memberPrefix + strconv.FormatInt(driverID, 10)
}

func parseMemberID(member string) (int64, bool) {
	raw, ok := strings.CutPrefix(member, memberPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
