package object

import "github.com/elewis/gitgo/ginternals"

// Blob represents the content of a file stored in git
type Blob struct {
	rawObject *Object
}

// NewBlob creates a new Blob object from the given content
func NewBlob(content []byte) *Blob {
	return &Blob{rawObject: New(TypeBlob, content)}
}

// ID returns the Oid of the underlying object
func (b *Blob) ID() ginternals.Oid {
	return b.rawObject.ID()
}

// Bytes returns the content of the blob
func (b *Blob) Bytes() []byte {
	return b.rawObject.Bytes()
}

// ToObject returns the underlying Object
func (b *Blob) ToObject() *Object {
	return b.rawObject
}
