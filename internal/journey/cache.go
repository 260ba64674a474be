package journey

import (
	"sync"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// RegionCache holds parsed region sets keyed by venue id. Entries have no
// TTL; the owner must invalidate after region edits. Reads during an
// invalidation observe either the old set or the new one, never a partial
// mix. Cached slices are shared and must not be mutated by callers.
type RegionCache struct {
	mu      sync.RWMutex
	byVenue map[string][]exposure.Region
}

// NewRegionCache returns an empty cache.
func NewRegionCache() *RegionCache {
	return &RegionCache{byVenue: make(map[string][]exposure.Region)}
}

// Lookup returns the cached region set for a venue, if present. A venue
// cached with zero regions still reports ok, which is what distinguishes
// "known empty" from "never loaded".
func (c *RegionCache) Lookup(venueID string) ([]exposure.Region, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	regions, ok := c.byVenue[venueID]
	return regions, ok
}

// Store replaces the cached region set for a venue.
func (c *RegionCache) Store(venueID string, regions []exposure.Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byVenue[venueID] = regions
}

// Invalidate drops one venue's cached regions.
func (c *RegionCache) Invalidate(venueID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byVenue, venueID)
}

// Clear drops every cached region set.
func (c *RegionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byVenue = make(map[string][]exposure.Region)
}
