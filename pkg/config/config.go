// Package config loads worktime configuration from TOML files.
//
// A configuration file is optional. [Load] decodes the file over [Default],
// so any key left out keeps its default value:
//
//	[tracker]
//	modes = ["w", "p", "n", "s"]
//	hidden = ["s"]
//	ratio = ["p", "w"]
//	ratio_timespans = ["12h", "2h"]
//	history_timespan = "12h"
//
//	[storage]
//	driver = "sqlite"
//	path = "~/.local/share/worktime/worktime.db"
//
//	[cache]
//	backend = "file"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
//	[arrange]
//	min_space = 5.0
//	max_passes = 10
//
// Paths follow the XDG base directory conventions.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/errors"
)

const appName = "worktime"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete worktime configuration.
type Config struct {
	Tracker TrackerConfig `toml:"tracker"`
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
	Arrange ArrangeConfig `toml:"arrange"`
}

// TrackerConfig configures modes and summary timespans.
type TrackerConfig struct {
	Modes           []string   `toml:"modes"`
	Hidden          []string   `toml:"hidden"`
	Ratio           []string   `toml:"ratio"`
	RatioTimespans  []Duration `toml:"ratio_timespans"`
	HistoryTimespan Duration   `toml:"history_timespan"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Driver        string `toml:"driver"`
	Path          string `toml:"path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig configures the layout result cache used by the server.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// LayoutDir is where the file backend keeps arrangement results.
func (c CacheConfig) LayoutDir() string { return filepath.Join(c.Dir, "layout") }

// HTTPDir is where the HTTP client keeps the last fetched summaries.
func (c CacheConfig) HTTPDir() string { return filepath.Join(c.Dir, "http") }

// ServerConfig configures the HTTP front end and the remote URL used by
// the watch dashboard.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	URL             string   `toml:"url"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	// GlyphWidth is the estimated width in pixels of one character of an
	// adjustment label on the HTML page.
	GlyphWidth float64 `toml:"glyph_width"`
	// BarWidth is the assumed pixel width of the adjustments bar.
	BarWidth float64 `toml:"bar_width"`
}

// ArrangeConfig tunes the adjustment layout engine.
type ArrangeConfig struct {
	MinSpace  float64 `toml:"min_space"`
	MaxPasses int     `toml:"max_passes"`
}

// Options returns the engine options for this configuration.
func (c ArrangeConfig) Options() []arrange.Option {
	return []arrange.Option{
		arrange.WithMinSpace(c.MinSpace),
		arrange.WithMaxPasses(c.MaxPasses),
	}
}

// Duration is a time.Duration that decodes from strings such as "12h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			Modes:           []string{"w", "p", "n", "s"},
			Hidden:          []string{"s"},
			Ratio:           []string{"p", "w"},
			RatioTimespans:  []Duration{{12 * time.Hour}, {2 * time.Hour}},
			HistoryTimespan: Duration{12 * time.Hour},
		},
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			Path:          filepath.Join(dataHome(), appName, "worktime.db"),
			MongoDatabase: appName,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     filepath.Join(cacheHome(), appName),
			TTL:     Duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			URL:             "",
			ShutdownTimeout: Duration{5 * time.Second},
			GlyphWidth:      7,
			BarWidth:        600,
		},
		Arrange: ArrangeConfig{
			MinSpace:  arrange.DefaultMinSpace,
			MaxPasses: arrange.DefaultMaxPasses,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error when path is the default location.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg, expands paths and validates the result.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	return cfg.Validate()
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	t := c.Tracker
	if len(t.Modes) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tracker.modes must not be empty")
	}
	seen := make(map[string]bool, len(t.Modes))
	for _, m := range t.Modes {
		if err := errors.ValidateModeName(m); err != nil {
			return err
		}
		if seen[m] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate mode %q", m)
		}
		seen[m] = true
	}
	for _, m := range t.Hidden {
		if !seen[m] {
			return errors.New(errors.ErrCodeInvalidConfig, "hidden mode %q is not a configured mode", m)
		}
	}
	if len(t.Ratio) != 0 && len(t.Ratio) != 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "tracker.ratio must name exactly two modes")
	}
	for _, m := range t.Ratio {
		if !seen[m] {
			return errors.New(errors.ErrCodeInvalidConfig, "ratio mode %q is not a configured mode", m)
		}
	}
	for _, d := range t.RatioTimespans {
		if d.Duration <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "ratio timespans must be positive")
		}
	}
	if t.HistoryTimespan.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tracker.history_timespan must be positive")
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage.path is required for sqlite")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage.mongo_uri is required for mongo")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for redis")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	if c.Server.URL != "" {
		if err := errors.ValidateURL(c.Server.URL); err != nil {
			return err
		}
	}
	if c.Arrange.MinSpace < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "arrange.min_space must not be negative")
	}
	if c.Arrange.MaxPasses < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "arrange.max_passes must be at least 1")
	}
	return nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}

// =============================================================================
// Paths
// =============================================================================

// Path returns the default config file location (~/.config/worktime/config.toml).
func Path() string {
	return filepath.Join(configHome(), appName, "config.toml")
}

func configHome() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func dataHome() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func cacheHome() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), fallback)
	}
	return filepath.Join(home, fallback)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
