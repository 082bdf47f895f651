// Package transport implements the client side of git's smart-HTTP
// transfer protocol, version 0: pkt-line framing, ref discovery, and the
// upload-pack negotiation that produces a packfile for a fresh clone.
package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/xerrors"
)

// flushPkt is the 4-byte pkt-line that terminates a section
const flushPkt = "0000"

// ErrInvalidPktLine is returned when a pkt-line's length prefix isn't
// 4 lowercase hex digits, or declares a length shorter than the prefix
// itself
var ErrInvalidPktLine = errors.New("invalid pkt-line")

// encodePktLine frames data as a single pkt-line: a 4 hex digit length
// prefix (counting itself) followed by the payload
func encodePktLine(data string) []byte {
	l := len(data) + 4
	return []byte(fmt.Sprintf("%04x%s", l, data))
}

// encodeFlushPkt returns the flush-pkt marker
func encodeFlushPkt() []byte {
	return []byte(flushPkt)
}

// readPktLine reads a single pkt-line from r. A flush packet ("0000")
// is reported by returning a nil payload with isFlush=true.
func readPktLine(r *bufio.Reader) (payload []byte, isFlush bool, err error) {
	hexLen := make([]byte, 4)
	if _, err = io.ReadFull(r, hexLen); err != nil {
		return nil, false, xerrors.Errorf("could not read pkt-line length: %w", err)
	}

	for _, c := range hexLen {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return nil, false, xerrors.Errorf("length %q: %w", hexLen, ErrInvalidPktLine)
		}
	}
	l, err := strconv.ParseInt(string(hexLen), 16, 32)
	if err != nil {
		return nil, false, xerrors.Errorf("length %q: %w", hexLen, ErrInvalidPktLine)
	}
	if l == 0 {
		return nil, true, nil
	}
	if l < 4 {
		return nil, false, xerrors.Errorf("length %d: %w", l, ErrInvalidPktLine)
	}

	payload = make([]byte, l-4)
	if _, err = io.ReadFull(r, payload); err != nil {
		return nil, false, xerrors.Errorf("could not read pkt-line payload: %w", err)
	}
	return payload, false, nil
}
