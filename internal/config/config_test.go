package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/profdiff/internal/config"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNew_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	cfg := config.New()
	assert.Equal(t, config.SourceDir, cfg.Source.Kind)
	assert.Equal(t, filepath.Join(home, "profiles"), cfg.Source.ProfilesDir)
	assert.Equal(t, filepath.Join(home, "profiles.db"), cfg.Source.Database)
	assert.Equal(t, config.DefaultTimeout, cfg.Source.Timeout)
	assert.Equal(t, config.DefaultCacheTTL, cfg.Source.CacheTTL)
	assert.Equal(t, filepath.Join(home, "cache"), cfg.Source.CacheDir)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.ConfigPath())
	assert.Equal(t, config.FilterAll, cfg.UI.DefaultFilter)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Layers(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	writeFile(t, filepath.Join(home, "config.yaml"), `
source:
  kind: sqlite
  database: /data/global.db
logging:
  level: debug
  format: json
server:
  addr: 0.0.0.0:9000
`)
	projectDir := filepath.Join(t.TempDir(), ".profdiff")
	writeFile(t, filepath.Join(projectDir, "config.yaml"), `
logging:
  level: warn
ui:
  default_filter: differences
`)

	cfg, err := config.Load(context.Background(), config.LoadOptions{
		ProjectDir: projectDir,
		LookupEnv:  envMap(map[string]string{config.EnvDatabase: "/data/env.db"}),
	})
	require.NoError(t, err)

	assert.Equal(t, config.SourceSQLite, cfg.Source.Kind, "global file")
	assert.Equal(t, "/data/env.db", cfg.Source.Database, "env wins over file")
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr, "untouched by overlay")
	assert.Equal(t, "warn", cfg.Logging.Level, "project overlay")
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format, "overlay replaces the whole section")
	assert.Equal(t, config.FilterDifferences, cfg.UI.DefaultFilter)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "source:\n  kind: remote\n  endpoint: https://profiles.example.com\n  timeout: 5s\n")

	cfg, err := config.Load(context.Background(), config.LoadOptions{ConfigFile: path, LookupEnv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigPath())
	assert.Equal(t, config.SourceRemote, cfg.Source.Kind)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	require.NoError(t, cfg.Validate())

	_, err = config.Load(context.Background(), config.LoadOptions{
		ConfigFile: filepath.Join(t.TempDir(), "missing.yaml"),
		LookupEnv:  noEnv,
	})
	require.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	writeFile(t, filepath.Join(home, "config.yaml"), "source: [unterminated\n")

	_, err := config.Load(context.Background(), config.LoadOptions{LookupEnv: noEnv})
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	cfg := config.New()

	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		config.EnvSource:    "REMOTE",
		config.EnvEndpoint:  "http://localhost:8080",
		config.EnvTimeout:   "12",
		config.EnvCacheTTL:  "1m",
		config.EnvLogLevel:  "trace",
		config.EnvLogFormat: "json",
	})))
	assert.Equal(t, config.SourceRemote, cfg.Source.Kind)
	assert.Equal(t, 12*time.Second, cfg.Source.Timeout)
	assert.Equal(t, time.Minute, cfg.Source.CacheTTL)
	assert.Equal(t, "trace", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())

	require.Error(t, cfg.ApplyEnv(envMap(map[string]string{config.EnvTimeout: "soon"})))
}

func TestValidate(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown source", func(c *config.Config) { c.Source.Kind = "ldap" }},
		{"dir without path", func(c *config.Config) { c.Source.ProfilesDir = "" }},
		{"sqlite without db", func(c *config.Config) { c.Source.Kind = config.SourceSQLite; c.Source.Database = "" }},
		{"remote without endpoint", func(c *config.Config) { c.Source.Kind = config.SourceRemote }},
		{"remote bad scheme", func(c *config.Config) {
			c.Source.Kind = config.SourceRemote
			c.Source.Endpoint = "ftp://example.com"
		}},
		{"negative retries", func(c *config.Config) { c.Source.RetryMax = -1 }},
		{"negative cache ttl", func(c *config.Config) { c.Source.CacheTTL = -time.Second }},
		{"cache without dir", func(c *config.Config) { c.Source.CacheDir = "" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"empty level", func(c *config.Config) { c.Logging.Level = "" }},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad filter", func(c *config.Config) { c.UI.DefaultFilter = "changed" }},
		{"no server addr", func(c *config.Config) { c.Server.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	cfg := config.New()
	cfg.Source.Kind = config.SourceSQLite
	cfg.Source.Timeout = 45 * time.Second
	cfg.UI.DefaultFilter = config.FilterDifferences
	cfg.SetConfigPath(filepath.Join(home, "nested", "config.yaml"))
	require.NoError(t, cfg.Save())

	loaded := config.New()
	require.NoError(t, loaded.LoadFile(cfg.ConfigPath()))
	assert.Equal(t, cfg.Source, loaded.Source)
	assert.Equal(t, cfg.UI, loaded.UI)

	info, err := os.Stat(cfg.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoggingConfigBridge(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	assert.Equal(t, "stderr", lc.ToLoggingConfig().Output)
	assert.Equal(t, "discard", lc.InteractiveLoggingConfig().Output)

	lc.File = "/tmp/profdiff.log"
	assert.Equal(t, "file", lc.ToLoggingConfig().Output)
	assert.Equal(t, "file", lc.InteractiveLoggingConfig().Output)
	assert.Equal(t, "/tmp/profdiff.log", lc.InteractiveLoggingConfig().File)
}
