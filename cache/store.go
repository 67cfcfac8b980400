// ABOUTME: Badger-backed durable store for cache entries
// ABOUTME: Persists JSON envelopes under cached-<section>-<id> and current-record-<section> keys
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v3"

	"github.com/adrata/pipenav/models"
)

// RecordKey is the durable per-record cache namespace.
func RecordKey(section models.Section, id string) string {
	return fmt.Sprintf("cached-%s-%s", section, id)
}

// CurrentKey is the persisted current-record slot namespace.
func CurrentKey(section models.Section) string {
	return fmt.Sprintf("current-record-%s", section)
}

// DefaultStoreDir returns the XDG-compliant cache directory.
func DefaultStoreDir() string {
	return filepath.Join(xdg.DataHome, "pipenav", "cache")
}

// Store is the durable tier behind the layered cache.
type Store struct {
	db *badger.DB
}

// OpenStore opens (creating if needed) the Badger store at dir.
func OpenStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get reads a cache entry. A missing key, or an envelope that no longer
// parses (corrupt or written by an incompatible version), is a miss. Parse
// failures are logged and never propagate.
func (s *Store) Get(key string) (models.CacheEntry, bool) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("cache: read %s: %v", key, err)
		}
		return models.CacheEntry{}, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Printf("cache: corrupt entry at %s, treating as miss: %v", key, err)
		return models.CacheEntry{}, false
	}
	return entry, true
}

// Set writes a cache entry envelope.
func (s *Store) Set(key string, entry models.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}

// Delete removes a cache entry. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
