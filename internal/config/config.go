// Package config loads CLI configuration from file and environment. The
// engine itself never touches this; it receives explicit values only.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/aqasim81/schemaflow/internal/lock"
	"github.com/aqasim81/schemaflow/internal/store"
)

// Default values for configuration fields.
const (
	DefaultMigrationsDir = "./migrations"
)

// Config holds the application configuration loaded from file, environment,
// and flags.
type Config struct {
	DatabaseURL    string
	MigrationsDir  string
	Table          string
	LockID         int64
	DisableLocking bool
	Verbose        bool
}

// yamlConfig is the raw YAML file representation.
type yamlConfig struct {
	DatabaseURL    string `yaml:"database_url"`
	MigrationsDir  string `yaml:"migrations_dir"`
	Table          string `yaml:"table"`
	LockID         int64  `yaml:"lock_id"`
	DisableLocking bool   `yaml:"disable_locking"`
	Verbose        bool   `yaml:"verbose"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		MigrationsDir: DefaultMigrationsDir,
		Table:         store.DefaultTable,
		LockID:        lock.DefaultLockID,
	}
}

// Load reads a YAML configuration file and returns a Config. If allowMissing
// is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg := New()

	if raw.DatabaseURL != "" {
		cfg.DatabaseURL = raw.DatabaseURL
	}

	if raw.MigrationsDir != "" {
		cfg.MigrationsDir = raw.MigrationsDir
	}

	if raw.Table != "" {
		cfg.Table = raw.Table
	}

	if raw.LockID != 0 {
		cfg.LockID = raw.LockID
	}

	cfg.DisableLocking = raw.DisableLocking
	cfg.Verbose = raw.Verbose

	return cfg, nil
}

// MergeEnv overrides config fields from SCHEMAFLOW_* environment variables.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("SCHEMAFLOW_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("SCHEMAFLOW_MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}

	if v := os.Getenv("SCHEMAFLOW_TABLE"); v != "" {
		cfg.Table = v
	}

	if v := os.Getenv("SCHEMAFLOW_LOCK_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.LockID = id
		}
	}
}
