// Package config loads familytree settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, then command-line flags (applied by the caller).
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/familytree/pkg/cache"
	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/integrations/familyapi"
)

const appName = "familytree"

// Environment variables that override file settings.
const (
	EnvAPIURL    = "FAMILYTREE_API_URL"
	EnvRedisAddr = "FAMILYTREE_REDIS_ADDR"
	EnvConfig    = "FAMILYTREE_CONFIG"
)

// Cache backends.
const (
	BackendNull  = "null"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Duration is a time.Duration written as "10s" or "24h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the full set of settings.
type Config struct {
	API    APIConfig    `toml:"api"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// APIConfig points at the family-tree REST service.
type APIConfig struct {
	BaseURL string   `toml:"base_url"`
	Retries int      `toml:"retries"`
	Timeout Duration `toml:"timeout"`
}

// CacheConfig selects where GET responses and rendered charts are cached.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	TTL     Duration `toml:"ttl"`
	Dir     string   `toml:"dir"`
}

// RedisConfig is used when the cache backend is "redis".
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures "familytree serve".
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`

	// ChartScripts are loaded in order on the tree page to provide the
	// interactive chart widget. Empty serves the Graphviz drawing only.
	ChartScripts []string `toml:"chart_scripts"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default chart widget scripts: family-chart and the d3 build it expects
// as a global.
const (
	DefaultD3Script    = "https://unpkg.com/d3@7"
	DefaultChartScript = "https://unpkg.com/family-chart"
)

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: familyapi.DefaultBaseURL,
			Timeout: Duration{10 * time.Second},
		},
		Cache: CacheConfig{
			Backend: BackendNull,
			TTL:     Duration{5 * time.Minute},
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: appName + ":",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			CORSOrigins:  []string{"http://localhost:3000"},
			ChartScripts: []string{DefaultD3Script, DefaultChartScript},
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/familytree/config.toml, or the
// platform equivalent. FAMILYTREE_CONFIG overrides it.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads path like Read and validates the result.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read reads path (or DefaultPath when empty) over the defaults and applies
// environment overrides without validating, so callers can layer their own
// overrides first. A missing file is not an error.
func Read(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "locate config")
		}
		path = p
	}

	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "read %s", path)
	default:
		if err := Decode(data, &cfg); err != nil {
			return Config{}, ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// Decode parses TOML data into cfg, leaving unset keys untouched.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Redis.Addr = v
	}
}

// Validate checks values that would otherwise fail later with a less useful
// error.
func (c Config) Validate() error {
	if err := ferrors.ValidateURL(c.API.BaseURL); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "api.base_url")
	}
	if c.API.Retries < 0 {
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "api.retries cannot be negative")
	}
	switch c.Cache.Backend {
	case BackendNull, BackendFile, BackendRedis:
	default:
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "cache.backend must be null, file or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return ferrors.New(ferrors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidConfig, err, "log.level")
	}
	return nil
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes cfg to path, creating parent directories. An existing file
// is left alone unless overwrite is set.
func (c Config) Save(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return ferrors.New(ferrors.ErrCodeInvalidConfig, "%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CacheDir returns the file cache directory.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// OpenCache opens the configured cache backend. The caller closes it.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendFile:
		dir, err := c.CacheDir()
		if err != nil {
			return nil, err
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return cache.NewNullCache(), nil
	}
}
