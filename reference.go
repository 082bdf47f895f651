package git

import (
	"github.com/elewis/gitgo/ginternals"
	"golang.org/x/xerrors"
)

// Reference returns a stored reference from its name.
// ErrRefNotFound is returned if the reference doesn't exist.
func (r *Repository) Reference(name string) (*ginternals.Reference, error) {
	return r.dotGit.Reference(name)
}

// GetReference is an alias of Reference, kept for callers that look
// up a reference by a name that might also be an object id.
func (r *Repository) GetReference(name string) (*ginternals.Reference, error) {
	return r.dotGit.Reference(name)
}

// NewReference creates, persists, and returns a direct reference
// pointing at the given Oid, overwriting any reference of the same
// name that already exists.
func (r *Repository) NewReference(name string, target ginternals.Oid) (*ginternals.Reference, error) {
	ref := ginternals.NewReference(name, target)
	if err := r.dotGit.WriteReference(ref); err != nil {
		return nil, xerrors.Errorf("could not write reference %s: %w", name, err)
	}
	return ref, nil
}

// NewSymbolicReference creates, persists, and returns a symbolic
// reference pointing at another reference, overwriting any reference
// of the same name that already exists.
func (r *Repository) NewSymbolicReference(name, target string) (*ginternals.Reference, error) {
	ref := ginternals.NewSymbolicReference(name, target)
	if err := r.dotGit.WriteReference(ref); err != nil {
		return nil, xerrors.Errorf("could not write reference %s: %w", name, err)
	}
	return ref, nil
}

// WalkReferences runs f on every reference in the repository
func (r *Repository) WalkReferences(f func(ref *ginternals.Reference) error) error {
	return r.dotGit.WalkReferences(f)
}
