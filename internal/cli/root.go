package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/config"
	"github.com/rshade/profdiff/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// annotationSkipValidate marks commands that must run with an invalid config.
const annotationSkipValidate = "profdiff/skip-validate"

// rootOptions holds the global flags.
type rootOptions struct {
	configFile  string
	projectDir  string
	source      string
	profilesDir string
	database    string
	endpoint    string
	noCache     bool
	debug       bool
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	opts       rootOptions
	lookupEnv  func(string) (string, bool)
	cfg        *config.Config
	projectDir string
	logResult  *logging.LogPathResult
}

// NewRootCmd creates the root Cobra command for the profdiff CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit environment
// lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	a := &app{lookupEnv: lookupEnv}

	cmd := &cobra.Command{
		Use:           "profdiff",
		Short:         "Compare Salesforce profile permissions",
		Long:          "profdiff: compare two Salesforce profiles side by side, from snapshot files, SQLite or a profdiff server",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd, a.cfg, a.opts.debug, isInteractiveRun(cmd, a.cfg))
			a.logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, a.logResult)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.opts.configFile, "config", "", "config file (default ~/.profdiff/config.yaml)")
	pf.StringVar(&a.opts.projectDir, "project-dir", "", "project directory holding .profdiff/config.yaml")
	pf.StringVar(&a.opts.source, "source", "", "profile source: dir, sqlite or remote")
	pf.StringVar(&a.opts.profilesDir, "profiles-dir", "", "directory of profile snapshot YAML files")
	pf.StringVar(&a.opts.database, "db", "", "SQLite profile database")
	pf.StringVar(&a.opts.endpoint, "endpoint", "", "profdiff server URL for the remote source")
	pf.BoolVar(&a.opts.noCache, "no-cache", false, "bypass the response cache of the remote source")
	pf.BoolVar(&a.opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newProfilesCmd(a),
		newCompareCmd(a),
		newFieldsCmd(a),
		newServeCmd(a),
		newImportCmd(a),
		newConfigCmd(a),
		newCacheCmd(a),
	)
	return cmd
}

// loadConfig builds the effective configuration: files, environment, then flags.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.projectDir = config.ResolveProjectDir(ctx, a.opts.projectDir, cwd)

	cfg, err := config.Load(ctx, config.LoadOptions{
		ConfigFile: a.opts.configFile,
		ProjectDir: a.projectDir,
		LookupEnv:  a.lookupEnv,
	})
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if a.opts.source != "" {
		cfg.Source.Kind = a.opts.source
	}
	if a.opts.profilesDir != "" {
		cfg.Source.ProfilesDir = a.opts.profilesDir
	}
	if a.opts.database != "" {
		cfg.Source.Database = a.opts.database
	}
	if a.opts.endpoint != "" {
		cfg.Source.Endpoint = a.opts.endpoint
	}
	a.cfg = cfg

	if cmd.Annotations[annotationSkipValidate] == "true" {
		return nil
	}
	return cfg.Validate()
}

const rootCmdExample = `  # List profiles in the default snapshot directory
  profdiff profiles list

  # Compare two profiles interactively
  profdiff compare

  # Print only the differences between two profiles
  profdiff compare 00e000000000001 00e000000000002 --differences-only --plain

  # Include field-level detail for Account and Contact as JSON
  profdiff compare 00e000000000001 00e000000000002 --expand Account --expand Contact --output json

  # Load snapshots into SQLite and serve them over HTTP
  profdiff import --dir ./snapshots --db profiles.db
  profdiff serve --source sqlite --db profiles.db --addr :8080

  # Compare through a running server
  profdiff compare --source remote --endpoint http://localhost:8080`

// newProfilesCmd creates the profiles command group.
func newProfilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "profiles", Short: "Profile listing commands"}
	cmd.AddCommand(newProfilesListCmd(a))
	return cmd
}
