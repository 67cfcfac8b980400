// ABOUTME: Cache entry envelope shared by every cache tier
// ABOUTME: Carries the cached record, write timestamp, and edit-version
package models

import "time"

// CacheEntry is the (section, id) keyed envelope persisted by the cache
// tiers: `{ id, data, timestamp, version? }`.
type CacheEntry struct {
	ID        string    `json:"id"`
	Data      Record    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Version   int64     `json:"version,omitempty"`
}

// Stale reports whether the entry must be treated as a miss: older than the
// tier's freshness window, or behind the latest known edit-version for its
// (section, id).
func (e CacheEntry) Stale(window time.Duration, latestVersion int64) bool {
	if time.Since(e.Timestamp) > window {
		return true
	}
	return latestVersion > 0 && e.Version < latestVersion
}
