package object

import (
	"bytes"
	"fmt"
	"time"

	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/internal/readutil"
)

// Signature represents an author or committer identity with a timestamp
type Signature struct {
	Name  string
	Email string
	Time  time.Time
}

// String returns the on-disk representation of the signature:
// "Name <email> unix-timestamp timezone"
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.Time.Unix(), s.Time.Format("-0700"))
}

// NewSignatureFromBytes parses a signature line, without the leading
// "author "/"committer " key
func NewSignatureFromBytes(data []byte) (Signature, error) {
	name := readutil.ReadTo(data, '<')
	if name == nil {
		return Signature{}, fmt.Errorf("could not find name: %w", ErrCommitInvalid)
	}
	data = data[len(name):]
	data = data[1:] // skip '<'

	email := readutil.ReadTo(data, '>')
	if email == nil {
		return Signature{}, fmt.Errorf("could not find email: %w", ErrCommitInvalid)
	}
	data = data[len(email)+1:] // skip email + '>'
	data = bytes.TrimPrefix(data, []byte(" "))

	tsBytes := readutil.ReadTo(data, ' ')
	if tsBytes == nil {
		return Signature{}, fmt.Errorf("could not find timestamp: %w", ErrCommitInvalid)
	}
	data = data[len(tsBytes)+1:]

	tz := string(bytes.TrimSpace(data))

	var unix int64
	if _, err := fmt.Sscanf(string(tsBytes), "%d", &unix); err != nil {
		return Signature{}, fmt.Errorf("invalid timestamp %q: %w", tsBytes, ErrCommitInvalid)
	}

	t, err := time.Parse("-0700", tz)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid timezone %q: %w", tz, ErrCommitInvalid)
	}
	loc := t.Location()

	return Signature{
		Name:  string(bytes.TrimSuffix(name, []byte(" "))),
		Email: string(email),
		Time:  time.Unix(unix, 0).In(loc),
	}, nil
}

// CommitOptions contains the options needed to create a new commit
type CommitOptions struct {
	Message   string
	GPGSig    string
	Committer Signature
	ParentsID []ginternals.Oid
}

// Commit represents a git commit object
type Commit struct {
	rawObject *Object
	treeID    ginternals.Oid
	parentIDs []ginternals.Oid
	author    Signature
	committer Signature
	message   string
	gpgSig    string
}

// NewCommit creates a new Commit object
func NewCommit(treeID ginternals.Oid, author Signature, opts CommitOptions) *Commit {
	committer := opts.Committer
	if committer.Name == "" && committer.Email == "" {
		committer = author
	}

	c := &Commit{
		treeID:    treeID,
		parentIDs: opts.ParentsID,
		author:    author,
		committer: committer,
		message:   opts.Message,
		gpgSig:    opts.GPGSig,
	}
	c.rawObject = New(TypeCommit, c.serialize())
	return c
}

// NewCommitFromObject parses a raw Object into a Commit
func NewCommitFromObject(o *Object) (*Commit, error) {
	c := &Commit{rawObject: o}

	data := o.Bytes()
	for {
		line := readutil.ReadTo(data, '\n')
		if line == nil {
			return nil, fmt.Errorf("unterminated header: %w", ErrCommitInvalid)
		}
		if len(line) == 0 {
			data = data[1:]
			break
		}

		parts := bytes.SplitN(line, []byte{' '}, 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header line %q: %w", line, ErrCommitInvalid)
		}
		key, value := string(parts[0]), parts[1]

		switch key {
		case "tree":
			id, err := ginternals.NewOidFromChars(value)
			if err != nil {
				return nil, fmt.Errorf("invalid tree id: %w", ErrCommitInvalid)
			}
			c.treeID = id
		case "parent":
			id, err := ginternals.NewOidFromChars(value)
			if err != nil {
				return nil, fmt.Errorf("invalid parent id: %w", ErrCommitInvalid)
			}
			c.parentIDs = append(c.parentIDs, id)
		case "author":
			sig, err := NewSignatureFromBytes(value)
			if err != nil {
				return nil, fmt.Errorf("invalid author: %w", err)
			}
			c.author = sig
		case "committer":
			sig, err := NewSignatureFromBytes(value)
			if err != nil {
				return nil, fmt.Errorf("invalid committer: %w", err)
			}
			c.committer = sig
		case "gpgsig":
			c.gpgSig = string(value)
		}

		data = data[len(line)+1:]
	}
	c.message = string(data)

	return c, nil
}

// ID returns the Oid of the underlying object
func (c *Commit) ID() ginternals.Oid {
	return c.rawObject.ID()
}

// TreeID returns the Oid of the commit's tree
func (c *Commit) TreeID() ginternals.Oid {
	return c.treeID
}

// ParentIDs returns the Oids of the commit's parents
func (c *Commit) ParentIDs() []ginternals.Oid {
	return c.parentIDs
}

// Author returns the commit's author
func (c *Commit) Author() Signature {
	return c.author
}

// Committer returns the commit's committer
func (c *Commit) Committer() Signature {
	return c.committer
}

// Message returns the commit's message
func (c *Commit) Message() string {
	return c.message
}

// GPGSig returns the commit's GPG signature, if any
func (c *Commit) GPGSig() string {
	return c.gpgSig
}

// ToObject returns the underlying Object
func (c *Commit) ToObject() *Object {
	return c.rawObject
}

func (c *Commit) serialize() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.treeID.String())
	for _, id := range c.parentIDs {
		fmt.Fprintf(&buf, "parent %s\n", id.String())
	}
	fmt.Fprintf(&buf, "author %s\n", c.author.String())
	fmt.Fprintf(&buf, "committer %s\n", c.committer.String())
	if c.gpgSig != "" {
		fmt.Fprintf(&buf, "gpgsig %s\n", c.gpgSig)
	}
	buf.WriteString("\n")
	buf.WriteString(c.message)
	return buf.Bytes()
}
