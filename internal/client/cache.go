package client

import (
	"sync"
	"time"

	"github.com/uwayapp/uway/internal/pkg/models"
)

// VehicleCache holds the viewer's last-known position per trip. Entries that
// stop refreshing are evicted by Sweep so vanished vehicles leave the map
// instead of freezing on it.
type VehicleCache struct {
	mu       sync.RWMutex
	vehicles map[int64]*models.VehicleRecord
	now      func() time.Time
}

// NewVehicleCache creates an empty cache
func NewVehicleCache() *VehicleCache {
	return &VehicleCache{
		vehicles: make(map[int64]*models.VehicleRecord),
		now:      time.Now,
	}
}

// Upsert records the latest sample for its trip
func (c *VehicleCache) Upsert(sample *models.LocationSample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vehicles[sample.TripID] = &models.VehicleRecord{
		TripID:     sample.TripID,
		DriverName: sample.DriverName,
		Latitude:   sample.Latitude,
		Longitude:  sample.Longitude,
		SpeedKmh:   sample.SpeedKmh,
		LastUpdate: c.now(),
	}
}

// Get returns the record for a trip, if present
func (c *VehicleCache) Get(tripID int64) (*models.VehicleRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.vehicles[tripID]
	if !ok {
		return nil, false
	}
	copied := *record
	return &copied, true
}

// Snapshot returns a copy of all current records
func (c *VehicleCache) Snapshot() []*models.VehicleRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*models.VehicleRecord, 0, len(c.vehicles))
	for _, record := range c.vehicles {
		copied := *record
		result = append(result, &copied)
	}
	return result
}

// Sweep evicts records older than the threshold and returns the trip IDs it
// removed.
func (c *VehicleCache) Sweep(threshold time.Duration) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-threshold)
	var evicted []int64
	for tripID, record := range c.vehicles {
		if record.LastUpdate.Before(cutoff) {
			delete(c.vehicles, tripID)
			evicted = append(evicted, tripID)
		}
	}
	return evicted
}

// Remove drops a single trip from the cache
func (c *VehicleCache) Remove(tripID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vehicles, tripID)
}

// Len returns the number of tracked vehicles
func (c *VehicleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vehicles)
}
