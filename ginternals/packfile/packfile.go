// Package packfile contains methods and structs to decode packfiles
// received over the wire. Packfiles are never persisted to disk by
// this package: a fetch decodes a pack fully into memory and the
// resulting objects are handed to a backend to be stored as loose
// objects, one by one.
package packfile

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"crypto/sha1" //nolint:gosec // matches git's own checksum algorithm
	"encoding/binary"
	"errors"
	"io"

	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/object"
	"golang.org/x/xerrors"
)

// packfileHeaderSize is the size, in bytes, of a packfile's header:
// 4 bytes of magic, 4 bytes of version, 4 bytes of object count
const packfileHeaderSize = 12

// trailerSize is the size, in bytes, of the trailing SHA1 checksum
const trailerSize = ginternals.OidSize

// ExtPackfile is the file extension historically used for packfiles
// on disk. Kept around as a constant so a backend can recognize
// stray packfiles even though this implementation never writes one.
const ExtPackfile = ".pack"

// OidWalkFunc is called once per Oid by WalkOids
type OidWalkFunc = func(oid ginternals.Oid) error

// OidWalkStop is a sentinel error a OidWalkFunc can return to stop a walk
var OidWalkStop = errors.New("stop walking") //nolint:stylecheck // sentinel, not a real error

func packfileMagic() []byte {
	return []byte{'P', 'A', 'C', 'K'}
}

var (
	// ErrInvalidMagic is returned when a pack doesn't start with "PACK"
	ErrInvalidMagic = errors.New("invalid magic")
	// ErrInvalidVersion is returned when a pack declares an unsupported
	// version number
	ErrInvalidVersion = errors.New("invalid version")
	// ErrTruncated is returned when a pack ends before its declared
	// object count has been read, or before the trailer checksum
	ErrTruncated = errors.New("truncated packfile")
)

// rawEntry is an object as it appears in the pack, before delta
// resolution
type rawEntry struct {
	offset     uint64
	typ        object.Type
	content    []byte // literal content, or delta instructions
	baseOid    ginternals.Oid
	baseOffset uint64 // absolute offset in the pack, only set for ofs-delta
}

// BaseResolver looks up a delta base that isn't found inside the
// current pack, typically by asking the object store
type BaseResolver func(oid ginternals.Oid) (*object.Object, error)

// Pack is the result of decoding a packfile: every object it
// contained, fully resolved (deltas applied)
type Pack struct {
	objects []*object.Object
	byOid   map[ginternals.Oid]*object.Object
}

// Decode reads and fully decodes a packfile from r. Ref-deltas whose
// base isn't present earlier in the same pack are resolved using
// resolveExternal, which may be nil if the caller knows the pack is
// self-contained.
func Decode(r io.Reader, resolveExternal BaseResolver) (*Pack, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("could not read packfile: %w", err)
	}
	if len(data) < packfileHeaderSize+trailerSize {
		return nil, xerrors.Errorf("packfile too small (%d bytes): %w", len(data), ErrTruncated)
	}

	header := data[:packfileHeaderSize]
	if !bytes.Equal(header[0:4], packfileMagic()) {
		return nil, xerrors.Errorf("invalid header: %w", ErrInvalidMagic)
	}
	version := binary.BigEndian.Uint32(header[4:8])
	if version != 2 {
		return nil, xerrors.Errorf("unsupported version %d: %w", version, ErrInvalidVersion)
	}
	count := binary.BigEndian.Uint32(header[8:12])

	body := data[:len(data)-trailerSize]
	trailer := data[len(data)-trailerSize:]
	sum := sha1.Sum(body) //nolint:gosec // matches git's own checksum algorithm
	if !bytes.Equal(sum[:], trailer) {
		return nil, xerrors.Errorf("packfile checksum mismatch: %w", ginternals.ErrChecksumMismatch)
	}

	entries := make(map[uint64]*rawEntry, count)
	order := make([]uint64, 0, count)

	pos := uint64(packfileHeaderSize)
	for i := uint32(0); i < count; i++ {
		entry, newPos, err := readEntry(body, pos)
		if err != nil {
			return nil, xerrors.Errorf("could not read object %d at offset %d: %w", i, pos, err)
		}
		entries[pos] = entry
		order = append(order, pos)
		pos = newPos
	}
	if pos != uint64(len(body)) {
		return nil, xerrors.Errorf("extra bytes after last object: %w", ErrTruncated)
	}

	resolved := make(map[uint64]*object.Object, count)
	// oidIndex maps a decoded object's Oid to its pack offset. It's
	// filled strictly in pack order as each entry is resolved below, so
	// a ref-delta only ever finds bases that were decoded earlier in
	// the same pack - never the entry currently being resolved.
	oidIndex := make(map[ginternals.Oid]uint64, count)
	pck := &Pack{
		objects: make([]*object.Object, 0, count),
		byOid:   make(map[ginternals.Oid]*object.Object, count),
	}

	var resolve func(offset uint64) (*object.Object, error)
	resolve = func(offset uint64) (*object.Object, error) {
		if o, ok := resolved[offset]; ok {
			return o, nil
		}
		entry, ok := entries[offset]
		if !ok {
			return nil, xerrors.Errorf("no object at offset %d: %w", offset, ginternals.ErrObjectNotFound)
		}

		switch entry.typ {
		case object.ObjectDeltaOFS, object.ObjectDeltaRef:
			var base *object.Object
			var err error
			if entry.typ == object.ObjectDeltaOFS {
				// entry.baseOffset was already validated to be an
				// earlier offset in the pack, so it was resolved by a
				// prior iteration of the pack-order loop below.
				base, err = resolve(entry.baseOffset)
			} else if baseOffset, ok := oidIndex[entry.baseOid]; ok {
				base, err = resolve(baseOffset)
			} else if resolveExternal != nil {
				base, err = resolveExternal(entry.baseOid)
			} else {
				err = xerrors.Errorf("base object %s: %w", entry.baseOid.String(), ginternals.ErrObjectNotFound)
			}
			if err != nil {
				return nil, xerrors.Errorf("could not resolve base of delta at offset %d: %w", offset, err)
			}

			content, err := applyDelta(base.Bytes(), entry.content)
			if err != nil {
				return nil, xerrors.Errorf("could not apply delta at offset %d: %w", offset, err)
			}
			o := object.New(base.Type(), content)
			resolved[offset] = o
			oidIndex[o.ID()] = offset
			return o, nil
		default:
			o := object.New(entry.typ, entry.content)
			resolved[offset] = o
			oidIndex[o.ID()] = offset
			return o, nil
		}
	}

	// order is already sorted by increasing offset (it's built as the
	// decode loop above advances pos), so every base a delta at
	// order[i] can legally reference - whether by offset or by hash -
	// was produced by one of order[0:i] and is already in oidIndex/
	// resolved by the time resolve(order[i]) runs.
	for _, offset := range order {
		o, err := resolve(offset)
		if err != nil {
			return nil, err
		}
		pck.objects = append(pck.objects, o)
		pck.byOid[o.ID()] = o
	}

	return pck, nil
}

// readEntry parses a single pack entry starting at offset, returning
// the entry and the offset immediately following it
func readEntry(data []byte, offset uint64) (*rawEntry, uint64, error) {
	r := bytes.NewReader(data[offset:])
	buf := bufio.NewReader(r)

	// First byte: MSB continuation bit, 3 bits of type, 4 low bits of size
	first, err := buf.ReadByte()
	if err != nil {
		return nil, 0, xerrors.Errorf("could not read object header: %w", err)
	}
	typ := object.Type((first & 0b_0111_0000) >> 4)
	if !typ.IsValid() {
		return nil, 0, xerrors.Errorf("object type %d: %w", typ, ginternals.ErrUnsupported)
	}
	size := uint64(first & 0b_0000_1111)
	consumed := 1

	if isMSBSet(first) {
		rest, err := buf.Peek(9)
		if err != nil && len(rest) == 0 {
			return nil, 0, xerrors.Errorf("could not read object size: %w", err)
		}
		extra, read, err := readSize(rest)
		if err != nil {
			return nil, 0, xerrors.Errorf("could not read object size: %w", err)
		}
		if _, err := buf.Discard(read); err != nil {
			return nil, 0, xerrors.Errorf("could not skip size bytes: %w", err)
		}
		consumed += read
		size |= extra << 4
	}

	entry := &rawEntry{offset: offset, typ: typ}

	switch typ {
	case object.ObjectDeltaRef:
		baseSHA := make([]byte, ginternals.OidSize)
		if _, err := io.ReadFull(buf, baseSHA); err != nil {
			return nil, 0, xerrors.Errorf("could not read ref-delta base: %w", err)
		}
		baseOid, err := ginternals.NewOidFromHex(baseSHA)
		if err != nil {
			return nil, 0, xerrors.Errorf("invalid ref-delta base: %w", err)
		}
		entry.baseOid = baseOid
		consumed += ginternals.OidSize
	case object.ObjectDeltaOFS:
		rest, err := buf.Peek(9)
		if err != nil && len(rest) == 0 {
			return nil, 0, xerrors.Errorf("could not read ofs-delta offset: %w", err)
		}
		negOffset, read, err := readDeltaOffset(rest)
		if err != nil {
			return nil, 0, xerrors.Errorf("could not read ofs-delta offset: %w", err)
		}
		if negOffset == 0 || negOffset > offset {
			return nil, 0, xerrors.Errorf("ofs-delta offset %d does not point before object offset %d: %w", negOffset, offset, ginternals.ErrCorrupt)
		}
		if _, err := buf.Discard(read); err != nil {
			return nil, 0, xerrors.Errorf("could not skip offset bytes: %w", err)
		}
		entry.baseOffset = offset - negOffset
		consumed += read
	}

	zr, err := zlib.NewReader(buf)
	if err != nil {
		return nil, 0, xerrors.Errorf("could not open zlib stream: %w", err)
	}
	content, err := io.ReadAll(zr)
	if err != nil {
		return nil, 0, xerrors.Errorf("could not decompress object: %w", err)
	}
	if err := zr.Close(); err != nil {
		return nil, 0, xerrors.Errorf("could not close zlib stream: %w", err)
	}
	if typ != object.ObjectDeltaOFS && typ != object.ObjectDeltaRef && uint64(len(content)) != size {
		return nil, 0, xerrors.Errorf("object size mismatch: expected %d, got %d: %w", size, len(content), ginternals.ErrCorrupt)
	}
	entry.content = content

	// we need to know exactly how many bytes the zlib stream consumed
	// from the underlying reader to find the offset of the next entry.
	// bufio.Reader buffers ahead of the zlib reader's actual
	// consumption, so we recompute it by decompressing the stream again
	// through a byte-counting reader.
	consumedTotal, err := zlibConsumedBytes(data[offset:], consumed)
	if err != nil {
		return nil, 0, xerrors.Errorf("could not determine object length: %w", err)
	}

	return entry, offset + uint64(consumedTotal), nil
}

// zlibConsumedBytes returns the total number of bytes (header +
// compressed payload) a zlib stream starting at headerLen into data
// occupies. zlib doesn't expose this directly through compress/zlib,
// so we decompress through a byte-counting reader instead.
func zlibConsumedBytes(data []byte, headerLen int) (int, error) {
	cr := &countingReader{r: bytes.NewReader(data[headerLen:])}
	zr, err := zlib.NewReader(cr)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(io.Discard, zr); err != nil {
		return 0, err
	}
	if err := zr.Close(); err != nil {
		return 0, err
	}
	return headerLen + cr.n, nil
}

type countingReader struct {
	r *bytes.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// ReadByte makes countingReader an io.ByteReader, so zlib reads from it
// directly instead of wrapping it in a bufio.Reader that would read
// (and count) bytes past the end of the stream.
func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

// Objects returns every object decoded from the pack, in pack order,
// fully resolved
func (pck *Pack) Objects() []*object.Object {
	return pck.objects
}

// GetObject returns the object matching the given Oid
func (pck *Pack) GetObject(oid ginternals.Oid) (*object.Object, error) {
	o, ok := pck.byOid[oid]
	if !ok {
		return nil, ginternals.ErrObjectNotFound
	}
	return o, nil
}

// WalkOids runs f on every Oid decoded from the pack
func (pck *Pack) WalkOids(f OidWalkFunc) error {
	for oid := range pck.byOid {
		if err := f(oid); err != nil {
			if errors.Is(err, OidWalkStop) {
				return nil
			}
			return err
		}
	}
	return nil
}
