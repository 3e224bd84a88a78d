package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/remote"
)

// newServeCmd creates the serve command.
func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve profile comparisons over HTTP",
		Long: `Runs an HTTP server exposing the configured profile source:

  GET /api/v1/profiles
  GET /api/v1/compare?profile1=ID&profile2=ID
  GET /api/v1/fields?profile1=ID&profile2=ID&object=NAME
  GET /healthz

Other profdiff commands can use it with --source remote --endpoint URL.`,
		Example: `  # Serve the default snapshot directory
  profdiff serve

  # Serve an imported database on all interfaces
  profdiff serve --source sqlite --db profiles.db --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withService(ctx, func(svc engine.Service) error {
				cmd.Printf("Serving %s profiles on http://%s\n", a.cfg.Source.Kind, addr)
				return remote.NewServer(ctx, svc).ListenAndServe(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}
