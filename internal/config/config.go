// Package config loads the runtime configuration: defaults, then an optional
// YAML file, then environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"trade-journal-lab/internal/campaign"
	"trade-journal-lab/internal/grouping"
	"trade-journal-lab/internal/logging"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	defaultSQLitePath = "data/journal.db"
	defaultLogLevel   = "info"
	defaultTimezone   = "UTC"
)

// Config keeps the runtime configuration for the CLI.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Matching  MatchingConfig  `yaml:"matching"`
	Grouping  GroupingConfig  `yaml:"grouping"`
	Campaigns CampaignConfig  `yaml:"campaigns"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// StorageConfig selects the journal backend.
// ClickhouseDSN is optional; when set, strategy and campaign summaries are
// written to ClickHouse instead of the primary driver.
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// IngestionConfig controls statement parsing.
type IngestionConfig struct {
	Timezone string `yaml:"timezone"` // IANA zone of statement timestamps
}

// Location resolves Timezone.
func (c IngestionConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MatchingConfig controls lot matching. Workers > 1 enables per-key
// parallel matching.
type MatchingConfig struct {
	Workers int `yaml:"workers"`
}

// GroupingConfig controls strategy clustering.
type GroupingConfig struct {
	Gap time.Duration `yaml:"gap"`
}

// CampaignConfig controls campaign chaining.
type CampaignConfig struct {
	ShortTolerance time.Duration `yaml:"short_tolerance"`
	LongTolerance  time.Duration `yaml:"long_tolerance"`
	ExcludedRoots  []string      `yaml:"excluded_roots"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls Prometheus output.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // written after analyze when set
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: defaultSQLitePath,
		},
		Ingestion: IngestionConfig{Timezone: defaultTimezone},
		Matching:  MatchingConfig{Workers: 1},
		Grouping:  GroupingConfig{Gap: grouping.DefaultGap},
		Campaigns: CampaignConfig{
			ShortTolerance: campaign.DefaultShortTolerance,
			LongTolerance:  campaign.DefaultLongTolerance,
			ExcludedRoots:  append([]string(nil), campaign.DefaultExcludedRoots...),
		},
		Log: LogConfig{Level: defaultLogLevel, Format: logging.FormatJSON},
	}
}

// Load builds Config from defaults, the YAML file at path (skipped when
// path is empty) and environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Storage.Driver = strings.ToLower(getString("STORAGE_DRIVER", cfg.Storage.Driver))
	cfg.Storage.SQLitePath = getString("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.PostgresDSN = getString("DATABASE_URL", cfg.Storage.PostgresDSN)
	cfg.Storage.ClickhouseDSN = getString("CLICKHOUSE_DSN", cfg.Storage.ClickhouseDSN)
	cfg.Ingestion.Timezone = getString("STATEMENT_TZ", cfg.Ingestion.Timezone)
	cfg.Log.Level = getString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getString("LOG_FORMAT", cfg.Log.Format)
	cfg.Metrics.Textfile = getString("METRICS_TEXTFILE", cfg.Metrics.Textfile)

	workers, err := getInt("MATCH_WORKERS", cfg.Matching.Workers)
	if err != nil {
		return fmt.Errorf("parse MATCH_WORKERS: %w", err)
	}
	cfg.Matching.Workers = workers
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Driver) {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn (or DATABASE_URL) is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Matching.Workers < 0 {
		return fmt.Errorf("matching.workers must be >= 0, got %d", c.Matching.Workers)
	}
	if c.Grouping.Gap < 0 {
		return fmt.Errorf("grouping.gap must be >= 0, got %s", c.Grouping.Gap)
	}
	if c.Campaigns.ShortTolerance <= 0 || c.Campaigns.LongTolerance <= 0 {
		return errors.New("campaign tolerances must be positive")
	}
	if c.Campaigns.ShortTolerance > c.Campaigns.LongTolerance {
		return fmt.Errorf("campaigns.short_tolerance %s exceeds long_tolerance %s",
			c.Campaigns.ShortTolerance, c.Campaigns.LongTolerance)
	}
	if _, err := c.Ingestion.Location(); err != nil {
		return fmt.Errorf("ingestion.timezone: %w", err)
	}
	if _, err := logging.NewWithWriter(io.Discard, c.Log.Level, c.Log.Format); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}
