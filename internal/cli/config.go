package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the config command group.
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(newConfigInitCmd(a), newConfigShowCmd(a), newConfigValidateCmd(a))
	return cmd
}

// newConfigShowCmd creates the config show command.
func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Prints the configuration after merging the global file, the project
overlay, PROFDIFF_* environment variables and command-line flags.`,
		Annotations: map[string]string{annotationSkipValidate: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// newConfigValidateCmd creates the config validate command.
func newConfigValidateCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate the effective configuration",
		Annotations: map[string]string{annotationSkipValidate: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			cmd.Printf("Configuration is valid\n")
			if verbose {
				cmd.Printf("  Config file: %s\n", a.cfg.ConfigPath())
				if a.projectDir != "" {
					cmd.Printf("  Project:     %s\n", a.projectDir)
				}
				cmd.Printf("  Source:      %s\n", a.cfg.Source.Kind)
				cmd.Printf("  Log level:   %s\n", a.cfg.Logging.Level)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")
	return cmd
}
