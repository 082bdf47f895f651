// Package object contains the structs and methods to work with the 4
// kinds of git objects: blob, tree, commit, and tag.
package object

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/elewis/gitgo/ginternals"
)

// Type represents the type of a git object, including the 2 synthetic
// types used only inside packfiles (deltas never get persisted as
// loose objects)
type Type int8

// Object types
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
	TypeTag    Type = 4
	// ObjectDeltaOFS represents a delta object that references its base
	// using a negative offset inside the same packfile
	ObjectDeltaOFS Type = 6
	// ObjectDeltaRef represents a delta object that references its base
	// using the base's Oid
	ObjectDeltaRef Type = 7
)

var (
	// ErrObjectUnknown is returned when trying to parse an object with
	// an unsupported type
	ErrObjectUnknown = errors.New("unknown object type")
	// ErrObjectInvalid is returned when an object doesn't respect the
	// expected format
	ErrObjectInvalid = errors.New("invalid object")
	// ErrTreeInvalid is returned when a tree object doesn't respect the
	// expected format
	ErrTreeInvalid = errors.New("invalid tree")
	// ErrCommitInvalid is returned when a commit object doesn't respect
	// the expected format
	ErrCommitInvalid = errors.New("invalid commit")
	// ErrTagInvalid is returned when a tag object doesn't respect the
	// expected format
	ErrTagInvalid = errors.New("invalid tag")
)

// String returns the on-disk representation of the type
func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	case ObjectDeltaOFS:
		return "ofs-delta"
	case ObjectDeltaRef:
		return "ref-delta"
	default:
		return fmt.Sprintf("unknown(%d)", int8(t))
	}
}

// IsValid returns whether the type is a type git knows about
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag, ObjectDeltaOFS, ObjectDeltaRef:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns the Type matching the given string
// representation ("blob", "tree", "commit", "tag")
func NewTypeFromString(s string) (Type, error) {
	switch s {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return 0, fmt.Errorf("%s: %w", s, ErrObjectUnknown)
	}
}

// Object represents a git object as it is stored on disk or in a
// packfile, before it gets interpreted as a blob/tree/commit/tag
type Object struct {
	id           ginternals.Oid
	typ          Type
	content      []byte
	idProcessing sync.Once
}

// New creates a new Object and computes its ID lazily, the first time
// ID() is called
func New(typ Type, content []byte) *Object {
	return &Object{
		typ:     typ,
		content: content,
	}
}

// NewWithID creates a new Object with an already known ID, skipping
// the hashing step. The ID is taken as given and is not checked
// against the content.
func NewWithID(id ginternals.Oid, typ Type, content []byte) *Object {
	o := &Object{
		typ:     typ,
		content: content,
	}
	o.idProcessing.Do(func() {})
	o.id = id
	return o
}

// build computes the Oid of the object the same way git does:
// sha1("<type> <size>\x00<content>")
func (o *Object) build() {
	o.idProcessing.Do(func() {
		header := fmt.Sprintf("%s %d\x00", o.typ.String(), len(o.content))
		buf := make([]byte, 0, len(header)+len(o.content))
		buf = append(buf, header...)
		buf = append(buf, o.content...)
		o.id = ginternals.NewOidFromContent(buf)
	})
}

// ID returns the Oid of the object
func (o *Object) ID() ginternals.Oid {
	o.build()
	return o.id
}

// Type returns the type of the object
func (o *Object) Type() Type {
	return o.typ
}

// Size returns the size of the object's content, in bytes
func (o *Object) Size() int {
	return len(o.content)
}

// Bytes returns the raw content of the object
func (o *Object) Bytes() []byte {
	return o.content
}

// Compress returns the zlib-compressed, header-prefixed representation
// of the object, ready to be persisted as a loose object
func (o *Object) Compress() (data []byte, err error) {
	o.build()

	header := o.typ.String() + " " + strconv.Itoa(len(o.content)) + "\x00"

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err = zw.Write([]byte(header)); err != nil {
		return nil, fmt.Errorf("could not write object header: %w", err)
	}
	if _, err = zw.Write(o.content); err != nil {
		return nil, fmt.Errorf("could not write object content: %w", err)
	}
	if err = zw.Close(); err != nil {
		return nil, fmt.Errorf("could not flush compressed object: %w", err)
	}

	return buf.Bytes(), nil
}

// AsBlob returns the object as a Blob
func (o *Object) AsBlob() (*Blob, error) {
	if o.typ != TypeBlob {
		return nil, fmt.Errorf("expected type %s, got %s: %w", TypeBlob, o.typ, ErrObjectInvalid)
	}
	return &Blob{rawObject: o}, nil
}

// AsTree returns the object as a Tree
func (o *Object) AsTree() (*Tree, error) {
	if o.typ != TypeTree {
		return nil, fmt.Errorf("expected type %s, got %s: %w", TypeTree, o.typ, ErrObjectInvalid)
	}
	return NewTreeFromObject(o)
}

// AsCommit returns the object as a Commit
func (o *Object) AsCommit() (*Commit, error) {
	if o.typ != TypeCommit {
		return nil, fmt.Errorf("expected type %s, got %s: %w", TypeCommit, o.typ, ErrObjectInvalid)
	}
	return NewCommitFromObject(o)
}

// AsTag returns the object as a Tag
func (o *Object) AsTag() (*Tag, error) {
	if o.typ != TypeTag {
		return nil, fmt.Errorf("expected type %s, got %s: %w", TypeTag, o.typ, ErrObjectInvalid)
	}
	return NewTagFromObject(o)
}
