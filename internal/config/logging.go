package config

import (
	"github.com/rshade/profdiff/internal/logging"
)

// ToLoggingConfig converts the logging section for use with internal/logging.
// A configured file selects file output; otherwise logs go to stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// InteractiveLoggingConfig is the logging config for full-screen TUI runs.
// Writing to stderr would corrupt the screen, so logs go to the configured
// file or are discarded.
func (lc LoggingConfig) InteractiveLoggingConfig() logging.Config {
	cfg := lc.ToLoggingConfig()
	if lc.File == "" {
		cfg.Output = logging.OutputDiscard
	}
	return cfg
}
