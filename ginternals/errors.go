package ginternals

import "errors"

// ErrObjectNotFound is an error corresponding to a git object not being
// found
var ErrObjectNotFound = errors.New("object not found")

// Error kinds returned by the object store, packfile decoder, and fetch
// client. Callers should use errors.Is against these sentinels; many
// of the errors those components return wrap one of them with
// xerrors.Errorf so the breadcrumb trail (operation, oid, offset)
// survives in the message while errors.Is still matches the kind.
// Some failures wrap other sentinels instead, such as
// ErrObjectNotFound, packfile.ErrTruncated or
// transport.ErrInvalidPktLine.
var (
	// ErrIO is returned when an operation fails because of the
	// underlying filesystem or network (a read, write, or syscall
	// failure unrelated to the data itself)
	ErrIO = errors.New("io error")
	// ErrCorrupt is returned when stored or transmitted data doesn't
	// match its expected framing (bad header, truncated object, bad
	// varint, ...)
	ErrCorrupt = errors.New("corrupt data")
	// ErrChecksumMismatch is returned when a packfile's trailing SHA1
	// doesn't match the SHA1 computed over the bytes that precede it
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrProtocolError is returned when the smart-HTTP server sends a
	// response that doesn't follow the expected pkt-line protocol
	ErrProtocolError = errors.New("protocol error")
	// ErrUnsupported is returned when valid data uses a feature this
	// implementation deliberately doesn't support (side-band,
	// multi_ack, shallow, ...)
	ErrUnsupported = errors.New("unsupported")
	// ErrDeltaOutOfBounds is returned when a delta instruction's
	// copy/insert range falls outside the base or target buffer
	ErrDeltaOutOfBounds = errors.New("delta instruction out of bounds")
)
