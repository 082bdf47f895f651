package git

import (
	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/object"
	"golang.org/x/xerrors"
)

// GetObject returns the object matching the given Oid
func (r *Repository) GetObject(oid ginternals.Oid) (*object.Object, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, xerrors.Errorf("could not get object %s: %w", oid.String(), err)
	}
	return o, nil
}

// HasObject returns whether an object exists in the odb
func (r *Repository) HasObject(oid ginternals.Oid) (bool, error) {
	return r.dotGit.HasObject(oid)
}

// WriteObject persists o and returns its Oid
func (r *Repository) WriteObject(o *object.Object) (ginternals.Oid, error) {
	oid, err := r.dotGit.WriteObject(o)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not write object: %w", err)
	}
	return oid, nil
}

// Commit returns the commit matching the given Oid
func (r *Repository) Commit(oid ginternals.Oid) (*object.Commit, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	c, err := o.AsCommit()
	if err != nil {
		return nil, xerrors.Errorf("%s is not a commit: %w", oid.String(), err)
	}
	return c, nil
}

// Tree returns the tree matching the given Oid
func (r *Repository) Tree(oid ginternals.Oid) (*object.Tree, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	t, err := o.AsTree()
	if err != nil {
		return nil, xerrors.Errorf("%s is not a tree: %w", oid.String(), err)
	}
	return t, nil
}

// Blob returns the blob matching the given Oid
func (r *Repository) Blob(oid ginternals.Oid) (*object.Blob, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	b, err := o.AsBlob()
	if err != nil {
		return nil, xerrors.Errorf("%s is not a blob: %w", oid.String(), err)
	}
	return b, nil
}

// Tag returns the tag matching the given Oid
func (r *Repository) Tag(oid ginternals.Oid) (*object.Tag, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	t, err := o.AsTag()
	if err != nil {
		return nil, xerrors.Errorf("%s is not a tag: %w", oid.String(), err)
	}
	return t, nil
}

// NewBlob creates and persists a new Blob object from raw data
func (r *Repository) NewBlob(data []byte) (*object.Blob, error) {
	o := object.New(object.TypeBlob, data)
	if _, err := r.WriteObject(o); err != nil {
		return nil, xerrors.Errorf("could not write blob: %w", err)
	}
	return o.AsBlob()
}

// NewCommit creates and persists a new Commit object
func (r *Repository) NewCommit(treeID ginternals.Oid, author object.Signature, opts object.CommitOptions) (*object.Commit, error) {
	c := object.NewCommit(treeID, author, opts)
	if _, err := r.WriteObject(c.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not write commit: %w", err)
	}
	return c, nil
}
