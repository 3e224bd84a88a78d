package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/rshade/profdiff/internal/logging"
)

// LoadOptions controls Load.
type LoadOptions struct {
	// ConfigFile replaces ~/.profdiff/config.yaml when set.
	ConfigFile string
	// ProjectDir is a project .profdiff directory whose config.yaml is merged
	// on top of the global file. Empty skips the project overlay.
	ProjectDir string
	// LookupEnv reads environment variables. Nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the effective configuration: defaults, then the global file,
// then the project overlay, then environment variables. The result is not
// validated; callers apply flag overrides first and then call Validate.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	logger := logging.FromContext(ctx).With().
		Str("component", "config").
		Str("operation", "load").
		Logger()

	cfg := New()
	if opts.ConfigFile != "" {
		path, err := homedir.Expand(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("expanding config path: %w", err)
		}
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("config file %s: %w", path, statErr)
		}
		cfg.SetConfigPath(path)
	}
	if err := cfg.LoadFile(cfg.ConfigPath()); err != nil {
		return nil, err
	}

	if opts.ProjectDir != "" {
		overlay := filepath.Join(opts.ProjectDir, configFileName)
		if _, err := os.Stat(overlay); err == nil {
			if mergeErr := ShallowMergeYAML(cfg, overlay); mergeErr != nil {
				return nil, mergeErr
			}
			logger.Debug().Ctx(ctx).Str("overlay_path", overlay).Msg("merged project config")
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	logger.Debug().Ctx(ctx).
		Str("config_path", cfg.ConfigPath()).
		Str("source", cfg.Source.Kind).
		Msg("configuration loaded")
	return cfg, nil
}

// expandPaths resolves ~ in file settings.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Source.ProfilesDir, &c.Source.Database, &c.Source.CacheDir, &c.Logging.File} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// GetConfigDir returns the profdiff configuration directory, $PROFDIFF_HOME
// or ~/.profdiff.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return homedir.Expand(home)
	}
	dir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(dir, ".profdiff"), nil
}

// EnsureConfigDir creates the configuration directory.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// EnsureLogDir creates the parent directory of the configured log file.
func (c *Config) EnsureLogDir() error {
	if c.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(c.Logging.File)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// EnsureSubDirs creates the configuration directory, the default profiles
// directory and the log directory.
func (c *Config) EnsureSubDirs() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	if c.Source.ProfilesDir != "" {
		if err := os.MkdirAll(c.Source.ProfilesDir, 0o700); err != nil {
			return fmt.Errorf("failed to create profiles directory %q: %w", c.Source.ProfilesDir, err)
		}
	}
	return c.EnsureLogDir()
}
