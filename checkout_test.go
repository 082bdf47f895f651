package git

import (
	"testing"
	"time"

	"github.com/elewis/gitgo/ginternals/object"
	"github.com/elewis/gitgo/internal/testhelper"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutRepo(t *testing.T) (*Repository, afero.Fs) {
	t.Helper()
	d, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	cfg := newTestConfig(t, d, false)
	wt := afero.NewMemMapFs()
	r, err := InitRepositoryWithParams(cfg, InitOptions{WorkingTreeBackend: wt})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, r.Close())
	})
	return r, wt
}

func testSignature() object.Signature {
	return object.Signature{Name: "Author", Email: "author@example.com", Time: time.Unix(1000, 0)}
}

func TestCheckoutMaterializesFilesAndDirs(t *testing.T) {
	t.Parallel()

	r, wt := newCheckoutRepo(t)

	rootBlob, err := r.NewBlob([]byte("root content"))
	require.NoError(t, err)
	childBlob, err := r.NewBlob([]byte("child content"))
	require.NoError(t, err)

	childTb := r.NewTreeBuilder()
	require.NoError(t, childTb.Insert("child.txt", childBlob.ToObject().ID(), object.ModeFile))
	childTree, err := childTb.Write()
	require.NoError(t, err)

	rootTb := r.NewTreeBuilder()
	require.NoError(t, rootTb.Insert("root.txt", rootBlob.ToObject().ID(), object.ModeFile))
	require.NoError(t, rootTb.Insert("sub", childTree.ID(), object.ModeDirectory))
	rootTree, err := rootTb.Write()
	require.NoError(t, err)

	commit, err := r.NewCommit(rootTree.ID(), testSignature(), object.CommitOptions{Message: "initial"})
	require.NoError(t, err)

	require.NoError(t, r.Checkout(commit.ID(), "/work"))

	data, err := afero.ReadFile(wt, "/work/root.txt")
	require.NoError(t, err)
	assert.Equal(t, "root content", string(data))

	data, err = afero.ReadFile(wt, "/work/sub/child.txt")
	require.NoError(t, err)
	assert.Equal(t, "child content", string(data))
}

func TestCheckoutPreservesExecutableBit(t *testing.T) {
	t.Parallel()

	r, wt := newCheckoutRepo(t)

	blob, err := r.NewBlob([]byte("#!/bin/sh\n"))
	require.NoError(t, err)

	tb := r.NewTreeBuilder()
	require.NoError(t, tb.Insert("run.sh", blob.ToObject().ID(), object.ModeExecutable))
	tree, err := tb.Write()
	require.NoError(t, err)

	commit, err := r.NewCommit(tree.ID(), testSignature(), object.CommitOptions{Message: "add script"})
	require.NoError(t, err)

	require.NoError(t, r.Checkout(commit.ID(), "/work"))

	info, err := wt.Stat("/work/run.sh")
	require.NoError(t, err)
	assert.Equal(t, "-rwxr-xr-x", info.Mode().String())
}

func TestCheckoutRejectsSymlinkMode(t *testing.T) {
	t.Parallel()

	r, _ := newCheckoutRepo(t)

	blob, err := r.NewBlob([]byte("target"))
	require.NoError(t, err)

	tb := r.NewTreeBuilder()
	require.NoError(t, tb.Insert("link", blob.ToObject().ID(), object.ModeSymLink))
	tree, err := tb.Write()
	require.NoError(t, err)

	commit, err := r.NewCommit(tree.ID(), testSignature(), object.CommitOptions{Message: "add symlink"})
	require.NoError(t, err)

	err = r.Checkout(commit.ID(), "/work")
	assert.Error(t, err)
}

func TestCheckoutUnknownCommit(t *testing.T) {
	t.Parallel()

	r, _ := newCheckoutRepo(t)

	var oid [20]byte
	for i := range oid {
		oid[i] = 0xAB
	}
	err := r.Checkout(oid, "/work")
	assert.Error(t, err)
}
