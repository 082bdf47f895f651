package object

import (
	"bytes"
	"fmt"

	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/internal/readutil"
)

// TreeObjectMode represents the mode (permission + type) of a tree entry
type TreeObjectMode int32

// Tree entry modes, as stored in git (octal, no leading zero when
// serialized)
const (
	ModeFile       TreeObjectMode = 0o100644
	ModeExecutable TreeObjectMode = 0o100755
	ModeDirectory  TreeObjectMode = 0o040000
	ModeSymLink    TreeObjectMode = 0o120000
	ModeGitLink    TreeObjectMode = 0o160000
)

// ObjectType returns the type of object a mode points to
func (m TreeObjectMode) ObjectType() Type {
	if m == ModeDirectory {
		return TypeTree
	}
	if m == ModeGitLink {
		return TypeCommit
	}
	return TypeBlob
}

// IsDir returns whether the entry is a directory
func (m TreeObjectMode) IsDir() bool {
	return m == ModeDirectory
}

// IsValid returns whether the mode is one git recognizes for a tree entry
func (m TreeObjectMode) IsValid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeDirectory, ModeSymLink, ModeGitLink:
		return true
	default:
		return false
	}
}

// NameForSort returns the name to use for canonical tree-entry
// comparison: directories compare as if their name had a trailing
// "/", which is what makes the sort order match the hash git itself
// would produce.
func (e TreeEntry) NameForSort() string {
	if e.Mode.IsDir() {
		return e.Path + "/"
	}
	return e.Path
}

// TreeEntry represents a single entry of a Tree (a file, a directory,
// a symlink, or a submodule pointer)
type TreeEntry struct {
	Path string
	ID   ginternals.Oid
	Mode TreeObjectMode
}

// Tree represents a git tree object: an ordered list of entries each
// naming a blob, another tree, or a gitlink
type Tree struct {
	rawObject *Object
	entries   []TreeEntry
}

// NewTree creates a new Tree object from a set of entries. The entries
// must already be sorted in git's canonical tree order (see
// sortTreeEntries in the root package's tree_builder.go); NewTree does
// not re-sort them, since the
// empty tree and single-entry trees are trivially sorted and the
// tree builder is the only other caller.
func NewTree(entries []TreeEntry) *Tree {
	t := &Tree{entries: entries}
	t.rawObject = New(TypeTree, t.serialize())
	return t
}

// NewTreeFromObject parses a raw Object into a Tree
func NewTreeFromObject(o *Object) (*Tree, error) {
	data := o.Bytes()
	entries := []TreeEntry{}

	for len(data) > 0 {
		modeBytes := readutil.ReadTo(data, ' ')
		if modeBytes == nil {
			return nil, fmt.Errorf("could not find mode: %w", ErrTreeInvalid)
		}
		var mode int64
		if _, err := fmt.Sscanf(string(modeBytes), "%o", &mode); err != nil {
			return nil, fmt.Errorf("invalid mode %q: %w", modeBytes, ErrTreeInvalid)
		}
		data = data[len(modeBytes)+1:]

		pathBytes := readutil.ReadTo(data, 0)
		if pathBytes == nil {
			return nil, fmt.Errorf("could not find path: %w", ErrTreeInvalid)
		}
		data = data[len(pathBytes)+1:]

		if len(data) < ginternals.OidSize {
			return nil, fmt.Errorf("truncated entry id: %w", ErrTreeInvalid)
		}
		id, err := ginternals.NewOidFromHex(data[:ginternals.OidSize])
		if err != nil {
			return nil, fmt.Errorf("invalid entry id: %w", ErrTreeInvalid)
		}
		data = data[ginternals.OidSize:]

		entries = append(entries, TreeEntry{
			Path: string(pathBytes),
			ID:   id,
			Mode: TreeObjectMode(mode),
		})
	}

	return &Tree{rawObject: o, entries: entries}, nil
}

// Entries returns a copy of the tree's entries
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ID returns the Oid of the underlying object
func (t *Tree) ID() ginternals.Oid {
	return t.rawObject.ID()
}

// ToObject returns the underlying Object
func (t *Tree) ToObject() *Object {
	return t.rawObject
}

func (t *Tree) serialize() []byte {
	var buf bytes.Buffer
	for _, e := range t.entries {
		fmt.Fprintf(&buf, "%o %s\x00", e.Mode, e.Path)
		buf.Write(e.ID.Bytes())
	}
	return buf.Bytes()
}
