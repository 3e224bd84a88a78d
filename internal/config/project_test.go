package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/profdiff/internal/config"
)

func TestResolveProjectDir_FlagOverridesEnv(t *testing.T) {
	t.Setenv(config.EnvProjectDir, t.TempDir())
	flagDir := t.TempDir()

	got := config.ResolveProjectDir(context.Background(), flagDir, "/does/not/matter")
	assert.Equal(t, filepath.Join(flagDir, ".profdiff"), got)
}

func TestResolveProjectDir_EnvVar(t *testing.T) {
	envDir := t.TempDir()
	t.Setenv(config.EnvProjectDir, envDir)

	got := config.ResolveProjectDir(context.Background(), "", "/does/not/matter")
	assert.Equal(t, filepath.Join(envDir, ".profdiff"), got)
	assert.True(t, filepath.IsAbs(got))
}

func TestResolveProjectDir_SuffixNotDoubled(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")
	dir := filepath.Join(t.TempDir(), ".profdiff")

	assert.Equal(t, dir, config.ResolveProjectDir(context.Background(), dir, ""))
}

func TestResolveProjectDir_WalkUp(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvHome, t.TempDir())

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".profdiff"), 0o750))
	sub := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	got := config.ResolveProjectDir(context.Background(), "", sub)
	assert.Equal(t, filepath.Join(root, ".profdiff"), got)
}

func TestResolveProjectDir_NoProject(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvHome, t.TempDir())

	_, err := config.FindProject(t.TempDir())
	if err == nil {
		t.Skip("a .profdiff directory exists above the temp dir")
	}
	assert.ErrorIs(t, err, config.ErrNoProject)
	assert.Empty(t, config.ResolveProjectDir(context.Background(), "", t.TempDir()))
}
