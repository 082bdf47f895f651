package ginternals

import (
	"crypto/sha1" //nolint:gosec // this is the hash git itself uses
	"encoding/hex"
	"errors"
)

const (
	// OidSize is the length of an oid, in bytes
	OidSize = 20
)

var (
	// NullOid is the value of an empty Oid, or one that's all 0s
	NullOid = Oid{}

	// ErrInvalidOid is returned when a given value isn't a valid Oid
	ErrInvalidOid = errors.New("invalid Oid")
)

// Oid represents an object id
type Oid [OidSize]byte

// Bytes returns a byte slice of the Oid
func (o Oid) Bytes() []byte {
	return o[:]
}

// String converts an oid to its hex representation
func (o Oid) String() string {
	return hex.EncodeToString(o[:])
}

// IsZero returns whether the oid has the zero value (NullOid)
func (o Oid) IsZero() bool {
	return o == NullOid
}

// NewOidFromContent returns the Oid of the given content.
// The oid is the SHA1 sum of the content, exactly as git computes it:
// sha1("<type> <size>\x00<content>")
func NewOidFromContent(content []byte) Oid {
	return sha1.Sum(content) //nolint:gosec // matches git's own object hashing
}

// NewOidFromHex returns an Oid from a 20 byte binary-encoded oid, such
// as the ones found in tree entries or packfile ref-deltas
func NewOidFromHex(id []byte) (Oid, error) {
	if len(id) < OidSize {
		return NullOid, ErrInvalidOid
	}

	var oid Oid
	copy(oid[:], id)
	return oid, nil
}

// NewOidFromChars creates an Oid from the given 40 ascii hex char bytes
// For the SHA {'9', 'b', '9', '1', 'd', 'a', ...} the oid will be
// {0x9b, 0x91, 0xda, ...}
func NewOidFromChars(id []byte) (Oid, error) {
	return NewOidFromStr(string(id))
}

// NewOidFromStr creates an Oid from the given 40 char hex string
// For the SHA 9b91da06e69613397b38e0808e0ba5ee6983251b the oid will be
// {0x9b, 0x91, 0xda, ...}
func NewOidFromStr(id string) (Oid, error) {
	b, err := hex.DecodeString(id)
	if err != nil {
		return NullOid, ErrInvalidOid
	}

	if len(b) != OidSize {
		return NullOid, ErrInvalidOid
	}

	var oid Oid
	copy(oid[:], b)
	return oid, nil
}
