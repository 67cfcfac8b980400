// ABOUTME: Layered record cache: current-record slot, durable store, collection snapshot
// ABOUTME: Enforces freshness windows, edit-version checks, and invalidation-first lookup
package cache

import (
	"sync"
	"time"

	"github.com/adrata/pipenav/models"
)

// Freshness windows per tier. The current-record slot is hot state for the
// record being viewed; the durable tier survives restarts and tolerates more
// age. Collection snapshots were loaded by this session and carry no window.
const (
	CurrentSlotWindow = 30 * time.Second
	DurableWindow     = 5 * time.Minute
)

// LayeredCache answers "do we already have this (section, id) record, fresh
// enough to skip a network round trip?". One instance per client session;
// all views share it so freshness and versioning rules live in one place.
type LayeredCache struct {
	mu sync.Mutex

	store   *Store
	current map[models.Section]models.CacheEntry

	snapshots map[models.Section][]models.Record
	totals    map[models.Section]int

	versions    map[string]int64
	invalidated map[string]struct{}
}

// New creates a layered cache over the given durable store. When bus is
// non-nil the cache subscribes to refresh signals and invalidates the
// signaled (section, id) before its next lookup.
func New(store *Store, bus *Bus) *LayeredCache {
	c := &LayeredCache{
		store:       store,
		current:     make(map[models.Section]models.CacheEntry),
		snapshots:   make(map[models.Section][]models.Record),
		totals:      make(map[models.Section]int),
		versions:    make(map[string]int64),
		invalidated: make(map[string]struct{}),
	}
	if bus != nil {
		bus.Subscribe(func(sig RefreshSignal) {
			c.markInvalid(sig.Section, sig.ID)
		})
	}
	return c
}

func versionKey(section models.Section, id string) string {
	return string(section) + "/" + id
}

// NoteVersion records the latest known edit-version for (section, id).
// Cached entries behind it are reported as misses.
func (c *LayeredCache) NoteVersion(section models.Section, id string, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := versionKey(section, id)
	if version > c.versions[key] {
		c.versions[key] = version
	}
}

// LatestVersion returns the latest known edit-version for (section, id).
func (c *LayeredCache) LatestVersion(section models.Section, id string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[versionKey(section, id)]
}

// Lookup walks the tiers in order: current-record slot, durable per-record
// cache, then collection snapshot. A pending invalidation for (section, id)
// always wins over any tier hit and is consumed here, before freshness is
// even considered.
func (c *LayeredCache) Lookup(section models.Section, id string) (models.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := versionKey(section, id)
	if _, pending := c.invalidated[key]; pending {
		delete(c.invalidated, key)
		c.dropLocked(section, id)
		return models.Record{}, false
	}

	latest := c.versions[key]

	// Tier 1: current-record slot, warm-started from the durable store.
	slot, ok := c.current[section]
	if !ok && c.store != nil {
		if persisted, found := c.store.Get(CurrentKey(section)); found {
			c.current[section] = persisted
			slot, ok = persisted, true
		}
	}
	if ok && slot.ID == id && !slot.Stale(CurrentSlotWindow, latest) {
		return slot.Data, true
	}

	// Tier 2: durable per-record cache.
	if c.store != nil {
		if entry, found := c.store.Get(RecordKey(section, id)); found {
			if entry.ID == id && !entry.Stale(DurableWindow, latest) {
				return entry.Data, true
			}
		}
	}

	// Tier 3: collection snapshot. Loaded by this session, so no freshness
	// check; demo/seed rows match on the alternate identifier too.
	for _, rec := range c.snapshots[section] {
		if rec.ID == id || (rec.ExternalID() != "" && rec.ExternalID() == id) {
			return rec, true
		}
	}

	return models.Record{}, false
}

// Store writes the record through the first two tiers. Called after every
// successful fetch and after every local optimistic edit.
func (c *LayeredCache) Store(section models.Section, id string, rec models.Record, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := models.CacheEntry{
		ID:        id,
		Data:      rec,
		Timestamp: time.Now(),
		Version:   version,
	}

	c.current[section] = entry
	key := versionKey(section, id)
	if version > c.versions[key] {
		c.versions[key] = version
	}
	delete(c.invalidated, key)

	if c.store != nil {
		if err := c.store.Set(RecordKey(section, id), entry); err != nil {
			// A failed durable write degrades to in-memory-only caching.
			return
		}
		_ = c.store.Set(CurrentKey(section), entry)
	}
}

// Invalidate removes (section, id) from the first two tiers immediately.
func (c *LayeredCache) Invalidate(section models.Section, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(section, id)
	delete(c.invalidated, versionKey(section, id))
}

// markInvalid records a pending invalidation to be honored on next lookup.
func (c *LayeredCache) markInvalid(section models.Section, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated[versionKey(section, id)] = struct{}{}
}

func (c *LayeredCache) dropLocked(section models.Section, id string) {
	if slot, ok := c.current[section]; ok && slot.ID == id {
		delete(c.current, section)
		if c.store != nil {
			_ = c.store.Delete(CurrentKey(section))
		}
	}
	if c.store != nil {
		_ = c.store.Delete(RecordKey(section, id))
	}
}

// SetCollection installs the in-memory collection snapshot for a section,
// along with the backend's total count for "N of M" display when the full
// collection isn't loaded.
func (c *LayeredCache) SetCollection(section models.Section, records []models.Record, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := make([]models.Record, len(records))
	copy(snap, records)
	c.snapshots[section] = snap
	if total < len(records) {
		total = len(records)
	}
	c.totals[section] = total
}

// Collection returns the current snapshot and total for a section.
func (c *LayeredCache) Collection(section models.Section) ([]models.Record, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snapshots[section]
	if !ok {
		return nil, 0, false
	}
	out := make([]models.Record, len(snap))
	copy(out, snap)
	return out, c.totals[section], true
}
