package git

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/object"
	"github.com/elewis/gitgo/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// TreeBuilder is used to build trees one entry at a time
type TreeBuilder struct {
	r       *Repository
	entries map[string]object.TreeEntry
}

// NewTreeBuilder creates a new empty tree builder
func (r *Repository) NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{r: r}
}

// NewTreeBuilderFromTree creates a new tree builder pre-populated with
// the entries of an existing tree
func (r *Repository) NewTreeBuilderFromTree(t *object.Tree) *TreeBuilder {
	entries := map[string]object.TreeEntry{}
	for _, e := range t.Entries() {
		entries[e.Path] = e
	}
	return &TreeBuilder{r: r, entries: entries}
}

// Insert adds or replaces an entry in the tree
func (tb *TreeBuilder) Insert(path string, oid ginternals.Oid, mode object.TreeObjectMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid mode %o", mode) //nolint:goerr113 // caused by a programming mistake, not worth a sentinel
	}

	o, err := tb.r.GetObject(oid)
	if err != nil {
		return xerrors.Errorf("cannot verify object: %w", err)
	}
	if o.Type() != object.TypeBlob && o.Type() != object.TypeTree {
		return xerrors.Errorf("unexpected object %s: %w", o.Type().String(), object.ErrObjectInvalid)
	}

	if tb.entries == nil {
		tb.entries = map[string]object.TreeEntry{}
	}
	tb.entries[path] = object.TreeEntry{
		Mode: mode,
		Path: path,
		ID:   oid,
	}
	return nil
}

// Remove removes an entry from the tree
func (tb *TreeBuilder) Remove(path string) {
	if tb.entries == nil {
		return
	}
	delete(tb.entries, path)
}

// Write serializes, persists, and returns a new Tree object from the
// entries accumulated so far, sorted in git's canonical tree order: a
// directory compares as though its name carried a trailing "/".
func (tb *TreeBuilder) Write() (*object.Tree, error) {
	entries := make([]object.TreeEntry, 0, len(tb.entries))
	for _, e := range tb.entries {
		entries = append(entries, e)
	}
	sortTreeEntries(entries)

	t := object.NewTree(entries)
	o := t.ToObject()
	if _, err := tb.r.WriteObject(o); err != nil {
		return nil, xerrors.Errorf("could not write the tree to the odb: %w", err)
	}
	return o.AsTree()
}

// sortTreeEntries orders entries in git's canonical tree order.
func sortTreeEntries(entries []object.TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].NameForSort() < entries[j].NameForSort()
	})
}

// WriteTree recursively builds and persists Tree objects from the
// directory at dirPath, skipping any entry named ".git", and returns
// the root Tree. Files keep mode 0o100644, or 0o100755 if their
// executable bit is set; subdirectories become nested trees with mode
// 0o40000.
func (r *Repository) WriteTree(dirPath string) (*object.Tree, error) {
	infos, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, xerrors.Errorf("could not read directory %s: %w", dirPath, err)
	}

	tb := r.NewTreeBuilder()
	for _, info := range infos {
		if info.Name() == gitpath.DotGitPath {
			continue
		}
		entryPath := filepath.Join(dirPath, info.Name())

		if info.IsDir() {
			subTree, err := r.WriteTree(entryPath)
			if err != nil {
				return nil, err
			}
			if err := tb.Insert(info.Name(), subTree.ID(), object.ModeDirectory); err != nil {
				return nil, xerrors.Errorf("could not insert %s: %w", entryPath, err)
			}
			continue
		}

		fi, err := info.Info()
		if err != nil {
			return nil, xerrors.Errorf("could not stat %s: %w", entryPath, err)
		}

		data, err := afero.ReadFile(afero.NewOsFs(), entryPath)
		if err != nil {
			return nil, xerrors.Errorf("could not read %s: %w", entryPath, err)
		}
		blob, err := r.NewBlob(data)
		if err != nil {
			return nil, xerrors.Errorf("could not write blob for %s: %w", entryPath, err)
		}

		mode := object.ModeFile
		if fi.Mode().Perm()&0o111 != 0 {
			mode = object.ModeExecutable
		}
		if err := tb.Insert(info.Name(), blob.ToObject().ID(), mode); err != nil {
			return nil, xerrors.Errorf("could not insert %s: %w", entryPath, err)
		}
	}

	return tb.Write()
}
