package object

import (
	"sort"
	"testing"

	"github.com/elewis/gitgo/ginternals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeRoundTrip(t *testing.T) {
	t.Parallel()

	blobA := NewBlob([]byte("a"))
	blobB := NewBlob([]byte("b"))

	entries := []TreeEntry{
		{Path: "a.txt", ID: blobA.ID(), Mode: ModeFile},
		{Path: "b.txt", ID: blobB.ID(), Mode: ModeExecutable},
	}

	tr := NewTree(entries)
	parsed, err := NewTreeFromObject(tr.ToObject())
	require.NoError(t, err)

	assert.Equal(t, entries, parsed.Entries())
	assert.Equal(t, tr.ID(), parsed.ID())
}

func TestTreeEntryNameForSort(t *testing.T) {
	t.Parallel()

	file := TreeEntry{Path: "lib", Mode: ModeFile}
	dir := TreeEntry{Path: "lib", Mode: ModeDirectory}

	assert.Equal(t, "lib", file.NameForSort())
	assert.Equal(t, "lib/", dir.NameForSort())
}

// TestTreeCanonicalOrder asserts the directory-as-if-suffixed-by-slash
// comparison rule: "lib.go" sorts before the directory "lib" because
// '.' (0x2e) is less than '/' (0x2f), even though "lib" < "lib.go" in
// a plain string comparison.
func TestTreeCanonicalOrder(t *testing.T) {
	t.Parallel()

	entries := []TreeEntry{
		{Path: "lib", Mode: ModeDirectory},
		{Path: "lib.go", Mode: ModeFile},
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NameForSort() < entries[j].NameForSort()
	})

	require.Len(t, entries, 2)
	assert.Equal(t, "lib.go", entries[0].Path)
	assert.Equal(t, "lib", entries[1].Path)
}

func TestTreeEmpty(t *testing.T) {
	t.Parallel()

	tr := NewTree(nil)
	parsed, err := NewTreeFromObject(tr.ToObject())
	require.NoError(t, err)
	assert.Empty(t, parsed.Entries())
}

func TestTreeModeObjectType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TypeTree, ModeDirectory.ObjectType())
	assert.Equal(t, TypeCommit, ModeGitLink.ObjectType())
	assert.Equal(t, TypeBlob, ModeFile.ObjectType())
	assert.Equal(t, TypeBlob, ModeExecutable.ObjectType())
}

func TestTreeModeIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, ModeFile.IsValid())
	assert.False(t, TreeObjectMode(0o777).IsValid())
}

func TestTreeFromObjectTruncated(t *testing.T) {
	t.Parallel()

	o := New(TypeTree, []byte("100644 a.txt\x00"+string(make([]byte, ginternals.OidSize-1))))
	_, err := NewTreeFromObject(o)
	assert.ErrorIs(t, err, ErrTreeInvalid)
}
