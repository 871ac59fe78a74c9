// Package config loads service configuration from YAML, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/storage"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Asset source kinds.
const (
	AssetEmbedded = "embedded"
	AssetFile     = "file"
	AssetPostgres = "postgres"
)

// Config is the complete service configuration.
type Config struct {
	Asset   AssetSection   `yaml:"asset"`
	Regions RegionsSection `yaml:"regions"`
	API     APISection     `yaml:"api"`
	NATS    NATSSection    `yaml:"nats"`
	Storage StorageSection `yaml:"storage"`
	Log     LogSection     `yaml:"log"`
}

// AssetSection selects where the alias asset is read from.
type AssetSection struct {
	Source string `yaml:"source"` // embedded, file or postgres
	Path   string `yaml:"path"`   // For the file source.
}

// RegionsSection overrides the curated region order.
type RegionsSection struct {
	Order    []string          `yaml:"order"`
	Synonyms map[string]string `yaml:"synonyms"`
}

// APISection configures the HTTP server.
type APISection struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// NATSSection configures the schedule feed bridge.
type NATSSection struct {
	Enabled    bool   `yaml:"enabled"`
	URL        string `yaml:"url"`
	Subject    string `yaml:"subject"`
	OutSubject string `yaml:"out_subject"`
	Queue      string `yaml:"queue"`
}

// DatabaseSection is one database connection.
type DatabaseSection struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// StorageSection configures optional persistence.
type StorageSection struct {
	Postgres   DatabaseSection `yaml:"postgres"`
	ClickHouse DatabaseSection `yaml:"clickhouse"`
	SQLitePath string          `yaml:"sqlite_path"` // Unresolved-port report; empty disables it.
}

// LogSection configures logging.
type LogSection struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns a configuration with local development settings.
func Default() Config {
	pg := storage.DefaultConfig().Postgres
	ch := storage.DefaultConfig().ClickHouse
	return Config{
		Asset: AssetSection{Source: AssetEmbedded},
		API: APISection{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		NATS: NATSSection{
			URL:        "nats://localhost:4222",
			Subject:    "schedule.raw",
			OutSubject: "schedule.normalized",
			Queue:      "portnorm",
		},
		Storage: StorageSection{
			Postgres: DatabaseSection{
				Host: pg.Host, Port: pg.Port, Database: pg.Database, User: pg.User, Password: pg.Password,
			},
			ClickHouse: DatabaseSection{
				Host: ch.Host, Port: ch.Port, Database: ch.Database, User: ch.User, Password: ch.Password,
			},
		},
		Log: LogSection{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORTNORM_ASSET"); v != "" {
		c.Asset.Source = AssetFile
		c.Asset.Path = v
	}
	if v := os.Getenv("PORTNORM_ASSET_SOURCE"); v != "" {
		c.Asset.Source = v
	}
	if v := os.Getenv("PORTNORM_REGION_ORDER"); v != "" {
		c.Regions.Order = splitList(v)
	}
	if v := os.Getenv("PORTNORM_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("PORTNORM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORTNORM_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("PORTNORM_SQLITE"); v != "" {
		c.Storage.SQLitePath = v
	}

	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
		c.NATS.Enabled = true
	}
	if v := os.Getenv("NATS_SUBJECT"); v != "" {
		c.NATS.Subject = v
	}
	if v := os.Getenv("NATS_OUT_SUBJECT"); v != "" {
		c.NATS.OutSubject = v
	}

	if err := applyDatabaseEnv(&c.Storage.Postgres, "POSTGRES"); err != nil {
		return err
	}
	return applyDatabaseEnv(&c.Storage.ClickHouse, "CLICKHOUSE")
}

func applyDatabaseEnv(d *DatabaseSection, prefix string) error {
	if v := os.Getenv(prefix + "_HOST"); v != "" {
		d.Host = v
		d.Enabled = true
	}
	if v := os.Getenv(prefix + "_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s_PORT %q: %v", ErrInvalid, prefix, v, err)
		}
		d.Port = p
	}
	if v := os.Getenv(prefix + "_USER"); v != "" {
		d.User = v
	}
	if v := os.Getenv(prefix + "_PASSWORD"); v != "" {
		d.Password = v
	}
	if v := os.Getenv(prefix + "_DATABASE"); v != "" {
		d.Database = v
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Asset.Source {
	case AssetEmbedded, "":
	case AssetFile:
		if strings.TrimSpace(c.Asset.Path) == "" {
			return fmt.Errorf("%w: asset.path is required for the file source", ErrInvalid)
		}
	case AssetPostgres:
		if !c.Storage.Postgres.Enabled {
			return fmt.Errorf("%w: asset source postgres needs storage.postgres.enabled", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown asset source %q", ErrInvalid, c.Asset.Source)
	}

	seen := make(map[string]bool, len(c.Regions.Order))
	for _, r := range c.Regions.Order {
		name := strings.TrimSpace(r)
		if name == "" {
			return fmt.Errorf("%w: empty region in regions.order", ErrInvalid)
		}
		if seen[name] {
			return fmt.Errorf("%w: region %q listed twice", ErrInvalid, name)
		}
		seen[name] = true
	}

	for name, db := range map[string]DatabaseSection{"postgres": c.Storage.Postgres, "clickhouse": c.Storage.ClickHouse} {
		if db.Enabled && (db.Port <= 0 || db.Port > 65535) {
			return fmt.Errorf("%w: storage.%s.port %d out of range", ErrInvalid, name, db.Port)
		}
	}

	if c.NATS.Enabled && (c.NATS.URL == "" || c.NATS.Subject == "") {
		return fmt.Errorf("%w: nats.url and nats.subject are required when nats is enabled", ErrInvalid)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// BuildOptions returns the catalog options for the configured regions.
func (c *Config) BuildOptions() catalog.BuildOptions {
	return catalog.BuildOptions{
		RegionOrder:    c.Regions.Order,
		RegionSynonyms: c.Regions.Synonyms,
	}
}

// PostgresConfig returns the storage connection settings.
func (c *Config) PostgresConfig() storage.PostgresConfig {
	d := c.Storage.Postgres
	return storage.PostgresConfig{Host: d.Host, Port: d.Port, Database: d.Database, User: d.User, Password: d.Password}
}

// ClickHouseConfig returns the storage connection settings.
func (c *Config) ClickHouseConfig() storage.ClickHouseConfig {
	d := c.Storage.ClickHouse
	return storage.ClickHouseConfig{Host: d.Host, Port: d.Port, Database: d.Database, User: d.User, Password: d.Password}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
