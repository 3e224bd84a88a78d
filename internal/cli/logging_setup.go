package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/config"
	"github.com/rshade/profdiff/internal/logging"
)

// setupLogging configures logging from the config and the --debug flag and
// stores the logger and a trace ID in the command context. Interactive runs
// never log to the terminal.
func setupLogging(cmd *cobra.Command, cfg *config.Config, debug, interactive bool) logging.LogPathResult {
	loggingCfg := cfg.Logging
	if debug {
		loggingCfg.Level = "debug"
		if !interactive {
			loggingCfg.Format = logging.FormatConsole
			loggingCfg.File = ""
		}
	}

	if loggingCfg.File != "" {
		if err := cfg.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	lc := loggingCfg.ToLoggingConfig()
	if interactive {
		lc = loggingCfg.InteractiveLoggingConfig()
	}
	result := logging.NewLoggerWithPath(lc)
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile && debug && !interactive {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed && !interactive {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.CommandPath()).Msg("command started")
	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(_ *cobra.Command, logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
