// ABOUTME: Configuration loading for the record navigation tools
// ABOUTME: Handles config storage at XDG paths, .env loading, environment overrides, and session IDs
package config

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/db"
)

// Config stores the backend endpoint, credentials, and local storage paths.
type Config struct {
	APIURL    string `json:"api_url"`
	APIToken  string `json:"api_token,omitempty"`
	Workspace string `json:"workspace"`
	DBPath    string `json:"db_path,omitempty"`
	CacheDir  string `json:"cache_dir,omitempty"`
	SessionID string `json:"-"`
}

// ConfigDir returns XDG-compliant directory for configuration.
func ConfigDir() string {
	return filepath.Join(xdg.DataHome, "pipenav")
}

// ConfigPath returns XDG-compliant path for the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load reads configuration in layers: defaults, then the config file if it
// exists, then a .env file in the working directory, then environment
// variables:
// - PIPENAV_API_URL
// - PIPENAV_API_TOKEN
// - PIPENAV_WORKSPACE
// - PIPENAV_DB_PATH
// - PIPENAV_CACHE_DIR.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:    "http://localhost:8947",
		Workspace: "demo",
	}

	f, err := os.Open(ConfigPath())
	if err == nil {
		defer func() { _ = f.Close() }()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// A missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	applyEnvOverrides(cfg)

	if cfg.DBPath == "" {
		cfg.DBPath = db.DefaultPath()
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = cache.DefaultStoreDir()
	}
	cfg.SessionID = NewSessionID()

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("PIPENAV_API_URL"); url != "" {
		cfg.APIURL = url
	}
	if token := os.Getenv("PIPENAV_API_TOKEN"); token != "" {
		cfg.APIToken = token
	}
	if workspace := os.Getenv("PIPENAV_WORKSPACE"); workspace != "" {
		cfg.Workspace = workspace
	}
	if path := os.Getenv("PIPENAV_DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	if dir := os.Getenv("PIPENAV_CACHE_DIR"); dir != "" {
		cfg.CacheDir = dir
	}
}

// Save writes configuration to the XDG data directory.
func Save(cfg *Config) error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// NewSessionID generates a ULID identifying this client session. It is sent
// with every backend request so server logs can correlate a browsing session.
func NewSessionID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
