// Package config loads profdiff settings.
//
// Settings come from ~/.profdiff/config.yaml, then a project-local
// .profdiff/config.yaml merged on top by section, then PROFDIFF_* environment
// variables. Command-line flags are applied last by the CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceDir    = "dir"
	SourceSQLite = "sqlite"
	SourceRemote = "remote"
)

// Filter names accepted by ui.default_filter.
const (
	FilterAll         = "all"
	FilterDifferences = "differences"
)

// Defaults.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"
	DefaultServerAddr = "127.0.0.1:8080"
	DefaultTimeout    = 30 * time.Second
	DefaultRetryMax   = 3
	DefaultCacheTTL   = 5 * time.Minute

	configFileName  = "config.yaml"
	profilesDirName = "profiles"
	databaseName    = "profiles.db"
	cacheDirName    = "cache"
)

// Environment variables.
const (
	EnvHome        = "PROFDIFF_HOME"
	EnvSource      = "PROFDIFF_SOURCE"
	EnvProfilesDir = "PROFDIFF_PROFILES_DIR"
	EnvDatabase    = "PROFDIFF_DATABASE"
	EnvEndpoint    = "PROFDIFF_ENDPOINT"
	EnvTimeout     = "PROFDIFF_TIMEOUT"
	EnvCacheTTL    = "PROFDIFF_CACHE_TTL"
	EnvLogLevel    = "PROFDIFF_LOG_LEVEL"
	EnvLogFormat   = "PROFDIFF_LOG_FORMAT"
	EnvLogFile     = "PROFDIFF_LOG_FILE"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete profdiff configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`
	Server  ServerConfig  `yaml:"server"`

	configPath string
}

// SourceConfig selects where profiles are read from. CacheTTL is how long
// remote responses are kept under CacheDir; zero disables the cache.
type SourceConfig struct {
	Kind        string        `yaml:"kind"`
	ProfilesDir string        `yaml:"profiles_dir,omitempty"`
	Database    string        `yaml:"database,omitempty"`
	Endpoint    string        `yaml:"endpoint,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	RetryMax    int           `yaml:"retry_max,omitempty"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	CacheDir    string        `yaml:"cache_dir,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// UIConfig holds presentation defaults.
type UIConfig struct {
	DefaultFilter string `yaml:"default_filter"`
	NoColor       bool   `yaml:"no_color,omitempty"`
}

// ServerConfig configures `profdiff serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// New returns the default configuration. Paths are rooted at the config
// directory; if it cannot be determined they are left relative.
func New() *Config {
	dir, err := GetConfigDir()
	if err != nil {
		dir = ".profdiff"
	}
	return &Config{
		Source:     defaultSource(dir),
		Logging:    defaultLogging(),
		UI:         defaultUI(),
		Server:     defaultServer(),
		configPath: filepath.Join(dir, configFileName),
	}
}

func defaultSource(dir string) SourceConfig {
	return SourceConfig{
		Kind:        SourceDir,
		ProfilesDir: filepath.Join(dir, profilesDirName),
		Database:    filepath.Join(dir, databaseName),
		Timeout:     DefaultTimeout,
		RetryMax:    DefaultRetryMax,
		CacheTTL:    DefaultCacheTTL,
		CacheDir:    filepath.Join(dir, cacheDirName),
	}
}

func defaultLogging() LoggingConfig {
	return LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat}
}

func defaultUI() UIConfig {
	return UIConfig{DefaultFilter: FilterAll}
}

func defaultServer() ServerConfig {
	return ServerConfig{Addr: DefaultServerAddr}
}

// ConfigPath returns the file Save writes to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// LoadFile reads path onto c. Fields missing from the file keep their
// current values. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Save writes c as YAML to ConfigPath, creating the directory if needed.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

// YAML returns the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}

// ApplyEnv overrides settings from PROFDIFF_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSource); ok && v != "" {
		c.Source.Kind = strings.ToLower(v)
	}
	if v, ok := lookup(EnvProfilesDir); ok && v != "" {
		c.Source.ProfilesDir = v
	}
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.Source.Database = v
	}
	if v, ok := lookup(EnvEndpoint); ok && v != "" {
		c.Source.Endpoint = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Source.Timeout = d
	}
	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		c.Source.CacheTTL = d
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		c.Logging.File = v
	}
	return nil
}

// parseTimeout accepts a Go duration or a whole number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceDir:
		if c.Source.ProfilesDir == "" {
			return fmt.Errorf("%w: source.profiles_dir is required for the dir source", ErrInvalidConfig)
		}
	case SourceSQLite:
		if c.Source.Database == "" {
			return fmt.Errorf("%w: source.database is required for the sqlite source", ErrInvalidConfig)
		}
	case SourceRemote:
		if err := validateEndpoint(c.Source.Endpoint); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: source.kind %q must be one of dir, sqlite, remote", ErrInvalidConfig, c.Source.Kind)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("%w: source.timeout must not be negative", ErrInvalidConfig)
	}
	if c.Source.RetryMax < 0 {
		return fmt.Errorf("%w: source.retry_max must not be negative", ErrInvalidConfig)
	}
	if c.Source.CacheTTL < 0 {
		return fmt.Errorf("%w: source.cache_ttl must not be negative", ErrInvalidConfig)
	}
	if c.Source.CacheTTL > 0 && c.Source.CacheDir == "" {
		return fmt.Errorf("%w: source.cache_dir is required when the cache is enabled", ErrInvalidConfig)
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		return fmt.Errorf("%w: logging.level %q is not a valid level", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q must be console or json", ErrInvalidConfig, c.Logging.Format)
	}

	switch strings.ToLower(c.UI.DefaultFilter) {
	case "", FilterAll, FilterDifferences:
	default:
		return fmt.Errorf("%w: ui.default_filter %q must be all or differences", ErrInvalidConfig, c.UI.DefaultFilter)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: source.endpoint is required for the remote source", ErrInvalidConfig)
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: source.endpoint %q must be an http or https URL", ErrInvalidConfig, endpoint)
	}
	return nil
}
