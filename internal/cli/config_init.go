package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/config"
)

// newConfigInitCmd creates the config init command. Inside a project (a
// directory with .profdiff/, or --project-dir) it writes the project config
// and a .gitignore; otherwise, or with --global, it writes the global config.
func newConfigInitCmd(a *app) *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

Inside a project, creates $PROJECT/.profdiff/config.yaml with a .gitignore
that keeps imported databases and logs out of version control.
Use --global to initialize ~/.profdiff/config.yaml even inside a project.`,
		Example: `  # Create project-local configuration
  profdiff config init --project-dir .

  # Create global configuration
  profdiff config init --global

  # Overwrite an existing file
  profdiff config init --force`,
		Annotations: map[string]string{annotationSkipValidate: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.projectDir != "" && !global {
				return initProjectConfig(cmd, a.projectDir, force)
			}
			return initGlobalConfig(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "initialize the global configuration even inside a project")
	return cmd
}

func checkWritable(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return errors.New("configuration file already exists, use --force to overwrite")
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return nil
}

func initProjectConfig(cmd *cobra.Command, projectDir string, force bool) error {
	configPath := filepath.Join(projectDir, "config.yaml")
	if err := checkWritable(configPath, force); err != nil {
		return err
	}

	cfg := config.New()
	cfg.SetConfigPath(configPath)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	created, err := config.EnsureGitignore(projectDir)
	if err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", configPath)
	if created {
		cmd.Printf("Created .gitignore for local databases and logs\n")
	}
	return nil
}

func initGlobalConfig(cmd *cobra.Command, force bool) error {
	cfg := config.New()
	if err := checkWritable(cfg.ConfigPath(), force); err != nil {
		return err
	}
	if err := cfg.EnsureSubDirs(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", cfg.ConfigPath())
	cmd.Printf("Place profile snapshots in %s\n", cfg.Source.ProfilesDir)
	return nil
}
