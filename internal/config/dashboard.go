package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when a field is omitted from the config file and not
// overridden by a flag.
const (
	DefaultResultsRoot   = "odysseus/simulator/results"
	DefaultListen        = ":8080"
	DefaultCacheEntries  = 64
	DefaultWatchDebounce = "500ms"
	DefaultAssetsHost    = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

// DashboardConfig is the root configuration for the results dashboard. Every
// field is optional; the Get* methods supply defaults for nil fields, so
// partial configs are safe.
type DashboardConfig struct {
	// ResultsRoot is the top of the <city>/<sim_type>/<scenario> tree.
	ResultsRoot *string `json:"results_root,omitempty" yaml:"results_root,omitempty"`
	Listen      *string `json:"listen,omitempty" yaml:"listen,omitempty"`

	// CacheEntries bounds the CSV download memo cache. 0 disables it.
	CacheEntries *int `json:"cache_entries,omitempty" yaml:"cache_entries,omitempty"`

	// Watch purges the memo cache when files under ResultsRoot change.
	Watch         *bool   `json:"watch,omitempty" yaml:"watch,omitempty"`
	WatchDebounce *string `json:"watch_debounce,omitempty" yaml:"watch_debounce,omitempty"` // duration string like "500ms"

	// SnapshotDB enables the sqlite snapshot store and its /debug/tailsql/ routes.
	SnapshotDB *string `json:"snapshot_db,omitempty" yaml:"snapshot_db,omitempty"`

	// AssetsHost is where chart pages load the echarts javascript from.
	AssetsHost *string `json:"assets_host,omitempty" yaml:"assets_host,omitempty"`
}

// LoadDashboardConfig loads a DashboardConfig from a JSON or YAML file.
// The extension selects the decoder; files over 1MB are rejected.
func LoadDashboardConfig(path string) (*DashboardConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &DashboardConfig{}
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", ext, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *DashboardConfig) Validate() error {
	if c.ResultsRoot != nil && *c.ResultsRoot == "" {
		return fmt.Errorf("results_root must not be empty")
	}
	if c.Listen != nil && *c.Listen == "" {
		return fmt.Errorf("listen must not be empty")
	}
	if c.CacheEntries != nil && *c.CacheEntries < 0 {
		return fmt.Errorf("cache_entries must be non-negative, got %d", *c.CacheEntries)
	}
	if c.WatchDebounce != nil && *c.WatchDebounce != "" {
		d, err := time.ParseDuration(*c.WatchDebounce)
		if err != nil {
			return fmt.Errorf("invalid watch_debounce '%s': %w", *c.WatchDebounce, err)
		}
		if d < 0 {
			return fmt.Errorf("watch_debounce must be non-negative, got %s", d)
		}
	}
	return nil
}

// GetResultsRoot returns the results tree root.
func (c *DashboardConfig) GetResultsRoot() string {
	if c.ResultsRoot == nil {
		return DefaultResultsRoot
	}
	return *c.ResultsRoot
}

// GetListen returns the HTTP listen address.
func (c *DashboardConfig) GetListen() string {
	if c.Listen == nil {
		return DefaultListen
	}
	return *c.Listen
}

// GetCacheEntries returns the memo cache bound.
func (c *DashboardConfig) GetCacheEntries() int {
	if c.CacheEntries == nil {
		return DefaultCacheEntries
	}
	return *c.CacheEntries
}

// GetWatch reports whether the results tree should be watched.
func (c *DashboardConfig) GetWatch() bool {
	return c.Watch != nil && *c.Watch
}

// GetWatchDebounce returns the watcher debounce interval.
func (c *DashboardConfig) GetWatchDebounce() time.Duration {
	s := DefaultWatchDebounce
	if c.WatchDebounce != nil && *c.WatchDebounce != "" {
		s = *c.WatchDebounce
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// GetSnapshotDB returns the snapshot database path, or "" when disabled.
func (c *DashboardConfig) GetSnapshotDB() string {
	if c.SnapshotDB == nil {
		return ""
	}
	return *c.SnapshotDB
}

// GetAssetsHost returns the echarts assets prefix.
func (c *DashboardConfig) GetAssetsHost() string {
	if c.AssetsHost == nil || *c.AssetsHost == "" {
		return DefaultAssetsHost
	}
	return *c.AssetsHost
}

// Override helpers used by the CLI to apply flags on top of a loaded file.

// SetResultsRoot overrides ResultsRoot.
func (c *DashboardConfig) SetResultsRoot(v string) { c.ResultsRoot = &v }

// SetListen overrides Listen.
func (c *DashboardConfig) SetListen(v string) { c.Listen = &v }

// SetSnapshotDB overrides SnapshotDB.
func (c *DashboardConfig) SetSnapshotDB(v string) { c.SnapshotDB = &v }

// SetWatch overrides Watch.
func (c *DashboardConfig) SetWatch(v bool) { c.Watch = &v }
