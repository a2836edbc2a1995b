package config_test

import (
	"testing"

	"github.com/halide-vcs/gitkit/config"
	"github.com/halide-vcs/gitkit/internal/env"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadDiscoversGitDirByWalkingUp(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o750))
	require.NoError(t, fs.MkdirAll("/repo/src/pkg", 0o750))

	e := env.NewFromKVList(nil)
	cfg, err := config.Load(fs, e, config.LoadOptions{WorkingDirectory: "/repo/src/pkg"})
	require.NoError(t, err)
	require.Equal(t, "/repo/.git", cfg.GitDirPath)
	require.Equal(t, "/repo", cfg.WorkTreePath)
}

func TestLoadFailsWithoutRepo(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/nowhere", 0o750))

	e := env.NewFromKVList(nil)
	_, err := config.Load(fs, e, config.LoadOptions{WorkingDirectory: "/nowhere"})
	require.ErrorIs(t, err, config.ErrNoRepo)
}

func TestLoadHonorsGitDirEnvVar(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/elsewhere/custom.git", 0o750))

	e := env.NewFromKVList([]string{"GIT_DIR=/elsewhere/custom.git"})
	cfg, err := config.Load(fs, e, config.LoadOptions{WorkingDirectory: "/wherever"})
	require.NoError(t, err)
	require.Equal(t, "/elsewhere/custom.git", cfg.GitDirPath)
	require.Equal(t, "/elsewhere", cfg.WorkTreePath)
}

func TestLoadRejectsWorkTreeWithoutGitDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := env.NewFromKVList([]string{"GIT_WORK_TREE=/some/tree"})
	_, err := config.Load(fs, e, config.LoadOptions{})
	require.ErrorIs(t, err, config.ErrWorkTreeWithoutGitDir)
}

func TestGetSetSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o750))

	e := env.NewFromKVList(nil)
	cfg, err := config.Load(fs, e, config.LoadOptions{WorkingDirectory: "/repo"})
	require.NoError(t, err)

	_, ok := cfg.Get("core", "bare")
	require.False(t, ok)

	require.NoError(t, cfg.Set("core", "bare", "false"))
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(fs, e, config.LoadOptions{WorkingDirectory: "/repo"})
	require.NoError(t, err)
	v, ok := reloaded.Get("core", "bare")
	require.True(t, ok)
	require.Equal(t, "false", v)
}

func TestDefaultBranchFallsBackToMain(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o750))

	e := env.NewFromKVList(nil)
	cfg, err := config.Load(fs, e, config.LoadOptions{WorkingDirectory: "/repo"})
	require.NoError(t, err)
	require.Equal(t, "main", cfg.DefaultBranch())

	require.NoError(t, cfg.Set("init", "defaultbranch", "trunk"))
	require.Equal(t, "trunk", cfg.DefaultBranch())
}
