package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/cache"
	"github.com/rshade/profdiff/internal/config"
)

// newCacheCmd creates the cache command group.
func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the remote response cache",
	}
	cmd.AddCommand(newCacheClearCmd(a))
	return cmd
}

func newCacheClearCmd(a *app) *cobra.Command {
	var expiredOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached remote responses",
		Example: `  # Remove everything
  profdiff cache clear

  # Remove only expired entries
  profdiff cache clear --expired`,
		Annotations: map[string]string{annotationSkipValidate: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := a.cfg.Source.CacheDir
			if dir == "" {
				return errors.New("source.cache_dir is not set")
			}
			if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
				cmd.Printf("Cache is empty\n")
				return nil
			}

			ttl := a.cfg.Source.CacheTTL
			if ttl <= 0 {
				ttl = config.DefaultCacheTTL
			}
			store, err := cache.NewFileStore(dir, ttl)
			if err != nil {
				return err
			}

			var removed int
			if expiredOnly {
				removed, err = store.CleanupExpired()
			} else {
				removed, err = store.Clear()
			}
			if err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			cmd.Printf("Removed %d cached responses from %s\n", removed, dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&expiredOnly, "expired", false, "remove only expired entries")
	return cmd
}
