package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	git "github.com/elewis/gitgo"
	"github.com/elewis/gitgo/env"
	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/config"
	"github.com/elewis/gitgo/ginternals/object"
	"github.com/elewis/gitgo/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T, dir string) *git.Repository {
	t.Helper()
	cfg, err := config.LoadConfig(env.NewFromKVList(nil), config.LoadConfigOptions{
		WorkingDirectory: dir,
	})
	require.NoError(t, err)
	r, err := git.OpenRepositoryWithParams(cfg, git.OpenOptions{})
	require.NoError(t, err)
	return r
}

// setupSwitchRepo initializes a repo on "master" and creates a second
// branch "dev" pointing at the same commit as "master".
func setupSwitchRepo(t *testing.T) string {
	t.Helper()
	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	require.NoError(t, initCmd(os.Stdout, &globalFlags{
		env: env.NewFromKVList(nil),
		C:   &testhelper.StringValue{Value: dir},
	}, initCmdFlags{}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("content"), 0o644))

	r := openTestRepo(t, dir)

	tree, err := r.WriteTree(dir)
	require.NoError(t, err)
	commit, err := r.NewCommit(tree.ID(), object.Signature{Name: "A", Email: "a@example.com"}, object.CommitOptions{Message: "first"})
	require.NoError(t, err)

	_, err = r.NewReference(ginternals.LocalBranchFullName("master"), commit.ID())
	require.NoError(t, err)
	_, err = r.NewReference(ginternals.LocalBranchFullName("dev"), commit.ID())
	require.NoError(t, err)

	require.NoError(t, r.Close())
	return dir
}

func TestSwitchToExistingBranch(t *testing.T) {
	t.Parallel()

	dir := setupSwitchRepo(t)

	out := bytes.NewBufferString("")
	err := switchCmd(out, &globalFlags{
		env: env.NewFromKVList(nil),
		C:   &testhelper.StringValue{Value: dir},
	}, switchCmdFlags{}, "dev")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Switched to branch 'dev'")

	r := openTestRepo(t, dir)
	defer func() { require.NoError(t, r.Close()) }()

	head, err := r.Reference(ginternals.Head)
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/dev", head.SymbolicTarget())
}

func TestSwitchAlreadyOnBranch(t *testing.T) {
	t.Parallel()

	dir := setupSwitchRepo(t)

	out := bytes.NewBufferString("")
	err := switchCmd(out, &globalFlags{
		env: env.NewFromKVList(nil),
		C:   &testhelper.StringValue{Value: dir},
	}, switchCmdFlags{}, "master")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Already on 'master'")
}

func TestSwitchUnknownBranch(t *testing.T) {
	t.Parallel()

	dir := setupSwitchRepo(t)

	err := switchCmd(os.Stdout, &globalFlags{
		env: env.NewFromKVList(nil),
		C:   &testhelper.StringValue{Value: dir},
	}, switchCmdFlags{}, "does-not-exist")
	assert.Error(t, err)
}

func TestSwitchOrphan(t *testing.T) {
	t.Parallel()

	dir := setupSwitchRepo(t)

	out := bytes.NewBufferString("")
	err := switchCmd(out, &globalFlags{
		env: env.NewFromKVList(nil),
		C:   &testhelper.StringValue{Value: dir},
	}, switchCmdFlags{orphan: "feature"}, "")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Switched to a new branch 'feature'")

	r := openTestRepo(t, dir)
	defer func() { require.NoError(t, r.Close()) }()

	head, err := r.Reference(ginternals.Head)
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/feature", head.SymbolicTarget())
}

func TestSwitchDetach(t *testing.T) {
	t.Parallel()

	dir := setupSwitchRepo(t)

	out := bytes.NewBufferString("")
	err := switchCmd(out, &globalFlags{
		env: env.NewFromKVList(nil),
		C:   &testhelper.StringValue{Value: dir},
	}, switchCmdFlags{detach: true}, "dev")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "HEAD is now at")

	r := openTestRepo(t, dir)
	defer func() { require.NoError(t, r.Close()) }()

	head, err := r.Reference(ginternals.Head)
	require.NoError(t, err)
	assert.Equal(t, ginternals.OidReference, head.Type())
}
