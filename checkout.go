package git

import (
	"os"
	"path/filepath"

	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/object"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Checkout materializes the tree of the commit at oid onto disk,
// rooted at dest. Existing files under dest that collide with the
// tree are overwritten; files not present in the tree are left alone,
// since this core has no index to diff against.
func (r *Repository) Checkout(oid ginternals.Oid, dest string) (err error) {
	fs := r.wt
	if fs == nil {
		fs = afero.NewOsFs()
	}

	c, err := r.Commit(oid)
	if err != nil {
		return xerrors.Errorf("could not load commit %s: %w", oid.String(), err)
	}

	t, err := r.Tree(c.TreeID())
	if err != nil {
		return xerrors.Errorf("could not load tree %s: %w", c.TreeID().String(), err)
	}

	if err = fs.MkdirAll(dest, 0o755); err != nil {
		return xerrors.Errorf("could not create %s: %w", dest, err)
	}

	return r.checkoutTree(fs, t, dest)
}

func (r *Repository) checkoutTree(fs afero.Fs, t *object.Tree, dest string) error {
	for _, e := range t.Entries() {
		entryPath := filepath.Join(dest, e.Path)

		switch {
		case e.Mode.IsDir():
			if err := fs.MkdirAll(entryPath, 0o755); err != nil {
				return xerrors.Errorf("could not create directory %s: %w", entryPath, err)
			}
			subTree, err := r.Tree(e.ID)
			if err != nil {
				return xerrors.Errorf("could not load tree %s: %w", e.ID.String(), err)
			}
			if err := r.checkoutTree(fs, subTree, entryPath); err != nil {
				return err
			}
		case e.Mode == object.ModeSymLink || e.Mode == object.ModeGitLink:
			return xerrors.Errorf("entry %s uses mode %o: %w", e.Path, e.Mode, ginternals.ErrUnsupported)
		default:
			b, err := r.Blob(e.ID)
			if err != nil {
				return xerrors.Errorf("could not load blob %s: %w", e.ID.String(), err)
			}
			mode := os.FileMode(0o644)
			if e.Mode == object.ModeExecutable {
				mode = 0o755
			}
			if err := afero.WriteFile(fs, entryPath, b.Bytes(), mode); err != nil {
				return xerrors.Errorf("could not write %s: %w", entryPath, err)
			}
		}
	}
	return nil
}
