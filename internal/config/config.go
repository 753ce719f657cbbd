// Package config loads pawnctl settings: defaults, then the YAML file, then
// PAWNSHOP_* environment variables. Command-line flags are applied by the caller.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAWNSHOP_"

// Token store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config holds runtime settings.
type Config struct {
	APIURL     string        `yaml:"api_url" env:"API_URL, overwrite"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT, overwrite"`
	Debounce   time.Duration `yaml:"debounce" env:"DEBOUNCE, overwrite"`
	PageSize   int           `yaml:"page_size" env:"PAGE_SIZE, overwrite"`
	TokenStore string        `yaml:"token_store" env:"TOKEN_STORE, overwrite"`
	DSN        string        `yaml:"dsn" env:"DSN, overwrite"`
	LogLevel   string        `yaml:"log_level" env:"LOG_LEVEL, overwrite"`
	Trace      bool          `yaml:"trace" env:"TRACE, overwrite"`
	PrintDir   string        `yaml:"print_dir" env:"PRINT_DIR, overwrite"`

	// OTLPEndpoint receives spans when Trace is on; empty uses the exporter defaults.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" env:"OTLP_ENDPOINT, overwrite"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:     "http://localhost:8000/api/v1/",
		Timeout:    30 * time.Second,
		Debounce:   300 * time.Millisecond,
		PageSize:   10,
		TokenStore: StoreFile,
		LogLevel:   "info",
	}
}

// Dir is the per-user configuration directory.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "pawnshop")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pawnshop")
}

// Path is the default config file location.
func Path() string { return filepath.Join(Dir(), "config.yaml") }

// Load builds the configuration. An empty path means Path(), which may be missing;
// an explicit path must exist. A nil lookuper reads the process environment.
func Load(ctx context.Context, path string, l envconfig.Lookuper) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if l == nil {
		l = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return Config{}, fmt.Errorf("env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings are usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q must be an absolute URL", c.APIURL)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.Debounce < 0 || c.Timeout < 0 {
		return errors.New("durations must not be negative")
	}
	switch c.TokenStore {
	case StoreFile:
	case StorePostgres:
		if c.DSN == "" {
			return errors.New("token_store postgres requires dsn")
		}
	default:
		return fmt.Errorf("unknown token_store %q", c.TokenStore)
	}
	return nil
}

// Save writes c as YAML to path, creating the directory.
func (c Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
