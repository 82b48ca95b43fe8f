package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for clarify-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Clarification data sources
	Catalog CatalogConfig `yaml:"catalog"`

	// Session lifecycle policy
	Sessions SessionConfig `yaml:"sessions"`
}

// CatalogConfig holds paths for the clarification catalog inputs and the
// optional compiled-snapshot output.
type CatalogConfig struct {
	// CSVPath is the primary tabular catalog, one row per question pattern.
	CSVPath string `yaml:"csv_path" env:"CATALOG_CSV_PATH" env-default:"data/clarification_catalog.csv"`
	// SamplesPath is the optional keyed JSON of previously sampled results.
	SamplesPath string `yaml:"samples_path" env:"CATALOG_SAMPLES_PATH" env-default:"data/clarification_samples.json"`
	// SnapshotResultsPath is the cached aggregate reference-query results.
	SnapshotResultsPath string `yaml:"snapshot_results_path" env:"SNAPSHOT_RESULTS_PATH" env-default:"data/reference_snapshots.json"`
	// CompiledPath is where the compiled dataset is persisted for inspection.
	// Empty disables the persist; it is a convenience, not required.
	CompiledPath string `yaml:"compiled_path" env:"CATALOG_COMPILED_PATH" env-default:""`
}

// SessionConfig holds the eviction policy for the in-memory session store.
type SessionConfig struct {
	// TTLMinutes is how long an idle session survives before lazy eviction.
	TTLMinutes int `yaml:"ttl_minutes" env:"SESSION_TTL_MINUTES" env-default:"120"`
	// MaxEntries bounds the session map; oldest sessions are evicted first.
	MaxEntries int `yaml:"max_entries" env:"SESSION_MAX_ENTRIES" env-default:"10000"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config. A missing config.yaml is fine; env defaults apply.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if cfg.Sessions.TTLMinutes <= 0 {
		return nil, fmt.Errorf("sessions.ttl_minutes must be positive, got %d", cfg.Sessions.TTLMinutes)
	}
	if cfg.Sessions.MaxEntries <= 0 {
		return nil, fmt.Errorf("sessions.max_entries must be positive, got %d", cfg.Sessions.MaxEntries)
	}

	return cfg, nil
}
