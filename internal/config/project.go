package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rshade/profdiff/internal/logging"
)

// EnvProjectDir overrides project discovery.
const EnvProjectDir = "PROFDIFF_PROJECT_DIR"

// projectDirName is the name of the project-local settings directory.
const projectDirName = ".profdiff"

// ErrNoProject is returned by FindProject when no .profdiff directory exists
// between the start directory and the filesystem root.
var ErrNoProject = errors.New("no .profdiff directory found in this directory or any parent")

// ResolveProjectDir determines the project-local .profdiff directory path.
// It checks, in order:
//  1. flagValue (--project-dir)
//  2. PROFDIFF_PROJECT_DIR
//  3. a .profdiff directory in startDir or one of its parents
//
// It returns an empty string when there is no project. The directory is not
// created.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}
	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	root, err := FindProject(startDir)
	if err != nil {
		if !errors.Is(err, ErrNoProject) {
			logger := logging.FromContext(ctx)
			logger.Warn().
				Str("component", "config").
				Err(err).
				Str("start_dir", startDir).
				Msg("unexpected error during project discovery")
		}
		return ""
	}
	return filepath.Join(root, projectDirName)
}

// FindProject walks up from dir and returns the first directory that holds a
// .profdiff directory. The global config directory in $HOME does not count.
func FindProject(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	global, _ := GetConfigDir()

	current := absDir
	for {
		candidate := filepath.Join(current, projectDirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() && candidate != global {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNoProject
		}
		current = parent
	}
}

// toAbsProjectDir makes dir absolute and appends .profdiff unless it already
// ends with it.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}
	if filepath.Base(abs) == projectDirName {
		return abs
	}
	return filepath.Join(abs, projectDirName)
}
