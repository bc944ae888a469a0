// Package config reads and writes the .colsync/config.json settings file
// and resolves the effective configuration from file, .env and environment.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
)

const configFile = ".colsync/config.json"
const lockFile = ".colsync/config.json.lock"

// DefaultBackendURL is the production sync backend origin.
const DefaultBackendURL = "https://subcollection.allgovjobs.com/backend"

// Environment overrides. Each one, when set, wins over the config file.
const (
	EnvBackendURL = "COLSYNC_BACKEND_URL"
	EnvAppURL     = "COLSYNC_APP_URL"
	EnvShop       = "COLSYNC_SHOP"
)

// Config holds the persisted settings.
type Config struct {
	// BackendURL is the sync backend base URL.
	BackendURL string `json:"backend_url,omitempty"`
	// AppURL is the public app origin used to build outbound links
	// (plan selection). Optional.
	AppURL string `json:"app_url,omitempty"`
	// Shop is the default tenant when --shop is not given.
	Shop string `json:"shop,omitempty"`
}

// Load reads the config from disk. A missing file yields a zero config.
func Load(baseDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk using atomic write (temp file + rename).
func Save(baseDir string, cfg *Config) error {
	configPath := filepath.Join(baseDir, configFile)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(configPath), "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, configPath)
}

// withLock serializes config access across processes.
func withLock(baseDir string, fn func() error) error {
	lockPath := filepath.Join(baseDir, lockFile)

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return err
	}

	lk := flock.New(lockPath)
	if err := lk.Lock(); err != nil {
		return err
	}
	defer lk.Unlock()

	return fn()
}

// SetShop persists the default shop.
func SetShop(baseDir, shop string) error {
	return withLock(baseDir, func() error {
		cfg, err := Load(baseDir)
		if err != nil {
			return err
		}
		cfg.Shop = shop
		return Save(baseDir, cfg)
	})
}

// Resolve returns the effective config: file values, then .env, then
// process environment, then defaults for anything still unset.
func Resolve(baseDir string) (*Config, error) {
	// A missing .env is fine; real env vars are not clobbered by godotenv.
	_ = godotenv.Load(filepath.Join(baseDir, ".env"))

	cfg, err := Load(baseDir)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(EnvAppURL); v != "" {
		cfg.AppURL = v
	}
	if v := os.Getenv(EnvShop); v != "" {
		cfg.Shop = v
	}

	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}

	return cfg, nil
}
