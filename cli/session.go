// ABOUTME: Shared session wiring for CLI commands
// ABOUTME: Builds the cache, signal bus, and fetch client from loaded configuration
package cli

import (
	"fmt"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/config"
	"github.com/adrata/pipenav/fetch"
)

// Session bundles the per-invocation collaborators every record command
// needs: the layered cache, the refresh-signal bus, and the fetch client.
type Session struct {
	Config  *config.Config
	Store   *cache.Store
	Bus     *cache.Bus
	Cache   *cache.LayeredCache
	Fetcher *fetch.Client
}

// OpenSession wires a session from configuration. Callers own Close.
func OpenSession(cfg *config.Config) (*Session, error) {
	store, err := cache.OpenStore(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	bus := cache.NewBus()
	layered := cache.New(store, bus)
	client := fetch.NewClient(cfg.APIURL, cfg.Workspace, cfg.APIToken, cfg.SessionID, layered)

	return &Session{
		Config:  cfg,
		Store:   store,
		Bus:     bus,
		Cache:   layered,
		Fetcher: client,
	}, nil
}

// Close releases the session's durable store.
func (s *Session) Close() error {
	return s.Store.Close()
}
