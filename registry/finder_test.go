package registry

import (
	"context"
	"testing"
	"time"

	"taxi-dispatch-system/models"
)

var center = models.Coordinate{Lat: 55.75, Lon: 37.60}

func TestFindNearestOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()
	finder := NewFinder(reg)

	// Distances from the center, going north: ~1.1 km per 0.01 degrees.
	reg.Upsert(ctx, update(1, 55.76, 37.60, models.StatusAvailable, "economy"))  // ~1.1 km
	reg.Upsert(ctx, update(2, 55.77, 37.60, models.StatusAvailable, "comfort"))  // ~2.2 km
	reg.Upsert(ctx, update(3, 55.78, 37.60, models.StatusBusy, "economy"))       // busy
	reg.Upsert(ctx, update(4, 55.79, 37.60, models.StatusAvailable, "economy"))  // ~4.4 km > economy max 3
	reg.Upsert(ctx, update(5, 55.80, 37.60, models.StatusAvailable, "business")) // ~5.6 km

	drivers, err := finder.FindNearest(ctx, center, 10, "", 10)
	if err != nil {
		t.Fatalf("FindNearest: %v", err)
	}

	// Busy driver 3 and out-of-class-range driver 4 must be excluded.
	wantIDs := []int64{1, 2, 5}
	if len(drivers) != len(wantIDs) {
		t.Fatalf("got %d drivers, want %d: %+v", len(drivers), len(wantIDs), drivers)
	}
	for i, want := range wantIDs {
		if drivers[i].DriverID != want {
			t.Errorf("drivers[%d] = %d, want %d", i, drivers[i].DriverID, want)
		}
	}
	for i := 1; i < len(drivers); i++ {
		if drivers[i].DistanceKm < drivers[i-1].DistanceKm {
			t.Errorf("results not ascending by distance at index %d", i)
		}
	}
	for _, d := range drivers {
		if d.DistanceKm > 10 {
			t.Errorf("driver %d beyond requested radius", d.DriverID)
		}
		if d.DistanceKm > testProfiles[d.VehicleClass].MaxDistanceKm {
			t.Errorf("driver %d beyond class max service distance", d.DriverID)
		}
		if d.EtaMinutes <= 0 {
			t.Errorf("driver %d has non-positive ETA", d.DriverID)
		}
	}
}

func TestFindNearestClassFilter(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()
	finder := NewFinder(reg)

	reg.Upsert(ctx, update(1, 55.76, 37.60, models.StatusAvailable, "economy"))
	reg.Upsert(ctx, update(2, 55.77, 37.60, models.StatusAvailable, "comfort"))

	drivers, err := finder.FindNearest(ctx, center, 10, "comfort", 10)
	if err != nil {
		t.Fatalf("FindNearest: %v", err)
	}
	if len(drivers) != 1 || drivers[0].DriverID != 2 {
		t.Errorf("class filter broken: %+v", drivers)
	}
}

func TestFindNearestLimit(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()
	finder := NewFinder(reg)

	for i := int64(1); i <= 5; i++ {
		reg.Upsert(ctx, update(i, 55.75+float64(i)*0.002, 37.60, models.StatusAvailable, "comfort"))
	}

	drivers, err := finder.FindNearest(ctx, center, 10, "", 2)
	if err != nil {
		t.Fatalf("FindNearest: %v", err)
	}
	if len(drivers) != 2 {
		t.Fatalf("limit not applied, got %d", len(drivers))
	}
	if drivers[0].DriverID != 1 || drivers[1].DriverID != 2 {
		t.Errorf("limit should keep the nearest survivors: %+v", drivers)
	}
}

func TestFindNearestSkipsExpired(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()
	finder := NewFinder(reg)

	current := time.Now()
	reg.now = func() time.Time { return current }

	reg.Upsert(ctx, update(1, 55.76, 37.60, models.StatusAvailable, "economy"))
	current = current.Add(301 * time.Second)
	reg.Upsert(ctx, update(2, 55.77, 37.60, models.StatusAvailable, "economy"))

	// Driver 1's index entry is still in the spatial index, but its
	// record expired; only driver 2 may come back.
	drivers, err := finder.FindNearest(ctx, center, 10, "", 10)
	if err != nil {
		t.Fatalf("FindNearest: %v", err)
	}
	if len(drivers) != 1 || drivers[0].DriverID != 2 {
		t.Errorf("expired driver leaked into results: %+v", drivers)
	}
}

func TestFindNearestEmpty(t *testing.T) {
	finder := NewFinder(newTestRegistry())

	drivers, err := finder.FindNearest(context.Background(), center, 10, "", 10)
	if err != nil {
		t.Fatalf("FindNearest: %v", err)
	}
	if len(drivers) != 0 {
		t.Errorf("expected empty result, got %+v", drivers)
	}
}
