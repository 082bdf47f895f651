package git

import (
	"path/filepath"
	"testing"

	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/config"
	"github.com/elewis/gitgo/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, dir string, bare bool) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		WorkingDirectory: dir,
		GitDirPath:       filepath.Join(dir, ".git"),
		IsBare:           bare,
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	return cfg
}

func TestInitRepositoryWithParams(t *testing.T) {
	t.Parallel()

	t.Run("repo with working tree", func(t *testing.T) {
		t.Parallel()

		d, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		cfg := newTestConfig(t, d, false)
		r, err := InitRepositoryWithParams(cfg, InitOptions{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		assert.False(t, r.IsBare())
		assert.Equal(t, d, r.Config.WorkTreePath)

		head, err := r.Reference(ginternals.Head)
		require.NoError(t, err)
		assert.Equal(t, ginternals.SymbolicReference, head.Type())
		assert.Equal(t, ginternals.LocalBranchFullName(ginternals.Master), head.SymbolicTarget())
	})

	t.Run("bare repo", func(t *testing.T) {
		t.Parallel()

		d, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		cfg := newTestConfig(t, d, true)
		r, err := InitRepositoryWithParams(cfg, InitOptions{IsBare: true})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		assert.True(t, r.IsBare())
	})

	t.Run("custom initial branch", func(t *testing.T) {
		t.Parallel()

		d, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		cfg := newTestConfig(t, d, false)
		r, err := InitRepositoryWithParams(cfg, InitOptions{InitialBranchName: "main"})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r.Close())
		})

		head, err := r.Reference(ginternals.Head)
		require.NoError(t, err)
		assert.Equal(t, "refs/heads/main", head.SymbolicTarget())
	})

	t.Run("re-initializing an existing repo fails", func(t *testing.T) {
		t.Parallel()

		d, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		cfg := newTestConfig(t, d, false)
		r, err := InitRepositoryWithParams(cfg, InitOptions{})
		require.NoError(t, err)
		require.NoError(t, r.Close())

		_, err = InitRepositoryWithParams(cfg, InitOptions{})
		assert.ErrorIs(t, err, ErrRepositoryExists)
	})
}

func TestOpenRepositoryWithParams(t *testing.T) {
	t.Parallel()

	t.Run("opens an existing repo", func(t *testing.T) {
		t.Parallel()

		d, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		cfg := newTestConfig(t, d, false)
		r, err := InitRepositoryWithParams(cfg, InitOptions{})
		require.NoError(t, err)
		require.NoError(t, r.Close())

		r2, err := OpenRepositoryWithParams(cfg, OpenOptions{})
		require.NoError(t, err)
		t.Cleanup(func() {
			require.NoError(t, r2.Close())
		})
		assert.False(t, r2.IsBare())
	})

	t.Run("fails on a directory that was never initialized", func(t *testing.T) {
		t.Parallel()

		d, cleanup := testhelper.TempDir(t)
		t.Cleanup(cleanup)

		cfg := newTestConfig(t, d, false)
		_, err := OpenRepositoryWithParams(cfg, OpenOptions{})
		assert.ErrorIs(t, err, ErrRepositoryNotExist)
	})
}
