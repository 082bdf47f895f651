package object

import (
	"bytes"
	"fmt"

	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/internal/readutil"
)

// Tag represents an annotated git tag object
type Tag struct {
	rawObject *Object
	target    ginternals.Oid
	typ       Type
	name      string
	tagger    Signature
	message   string
	gpgSig    string
}

// NewTag creates a new annotated Tag object
func NewTag(target ginternals.Oid, targetType Type, name string, tagger Signature, message, gpgSig string) *Tag {
	t := &Tag{
		target:  target,
		typ:     targetType,
		name:    name,
		tagger:  tagger,
		message: message,
		gpgSig:  gpgSig,
	}
	t.rawObject = New(TypeTag, t.serialize())
	return t
}

// NewTagFromObject parses a raw Object into a Tag
func NewTagFromObject(o *Object) (*Tag, error) {
	t := &Tag{rawObject: o}

	data := o.Bytes()
	for {
		line := readutil.ReadTo(data, '\n')
		if line == nil {
			return nil, fmt.Errorf("unterminated header: %w", ErrTagInvalid)
		}
		if len(line) == 0 {
			data = data[1:]
			break
		}

		parts := bytes.SplitN(line, []byte{' '}, 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header line %q: %w", line, ErrTagInvalid)
		}
		key, value := string(parts[0]), parts[1]

		switch key {
		case "object":
			id, err := ginternals.NewOidFromChars(value)
			if err != nil {
				return nil, fmt.Errorf("invalid object id: %w", ErrTagInvalid)
			}
			t.target = id
		case "type":
			typ, err := NewTypeFromString(string(value))
			if err != nil {
				return nil, fmt.Errorf("invalid type: %w", ErrTagInvalid)
			}
			t.typ = typ
		case "tag":
			t.name = string(value)
		case "tagger":
			sig, err := NewSignatureFromBytes(value)
			if err != nil {
				return nil, fmt.Errorf("invalid tagger: %w", err)
			}
			t.tagger = sig
		case "gpgsig":
			t.gpgSig = string(value)
		}

		data = data[len(line)+1:]
	}
	t.message = string(data)

	return t, nil
}

// ID returns the Oid of the underlying object
func (t *Tag) ID() ginternals.Oid {
	return t.rawObject.ID()
}

// Target returns the Oid of the object being tagged
func (t *Tag) Target() ginternals.Oid {
	return t.target
}

// Type returns the type of the object being tagged
func (t *Tag) Type() Type {
	return t.typ
}

// Name returns the tag's name
func (t *Tag) Name() string {
	return t.name
}

// Tagger returns the signature of whoever created the tag
func (t *Tag) Tagger() Signature {
	return t.tagger
}

// Message returns the tag's message
func (t *Tag) Message() string {
	return t.message
}

// GPGSig returns the tag's GPG signature, if any
func (t *Tag) GPGSig() string {
	return t.gpgSig
}

// ToObject returns the underlying Object
func (t *Tag) ToObject() *Object {
	return t.rawObject
}

func (t *Tag) serialize() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.target.String())
	fmt.Fprintf(&buf, "type %s\n", t.typ.String())
	fmt.Fprintf(&buf, "tag %s\n", t.name)
	fmt.Fprintf(&buf, "tagger %s\n", t.tagger.String())
	if t.gpgSig != "" {
		fmt.Fprintf(&buf, "gpgsig %s\n", t.gpgSig)
	}
	buf.WriteString("\n")
	buf.WriteString(t.message)
	return buf.Bytes()
}
