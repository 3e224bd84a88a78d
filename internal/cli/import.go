package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/profiles"
)

// newImportCmd creates the import command.
func newImportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import profile snapshots into a SQLite database",
		Long: `Reads every snapshot in a directory and stores it in a SQLite database.
Profiles already in the database are replaced. The database is the global
--db flag, falling back to source.database in the configuration.`,
		Example: `  # Import the default snapshot directory into the default database
  profdiff import

  # Import a specific directory
  profdiff import --dir ./snapshots --db profiles.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			if dir == "" {
				dir = a.cfg.Source.ProfilesDir
			}
			db := a.cfg.Source.Database

			src, err := profiles.NewDirSource(dir)
			if err != nil {
				return err
			}
			snapshots, err := src.LoadAll(ctx)
			if err != nil {
				return fmt.Errorf("reading snapshots: %w", err)
			}

			store, err := profiles.OpenSQLite(ctx, db)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			n, err := store.Import(ctx, snapshots)
			if err != nil {
				return fmt.Errorf("importing snapshots: %w", err)
			}
			logger.Info().Ctx(ctx).Int("profiles", n).Str("database", db).Msg("import complete")
			cmd.Printf("Imported %d profiles into %s\n", n, db)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "snapshot directory (default from config)")
	return cmd
}
