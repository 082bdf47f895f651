package packfile

import (
	"encoding/binary"
	"errors"

	"github.com/elewis/gitgo/ginternals"
	"golang.org/x/xerrors"
)

// ErrIntOverflow is an error thrown when a varint couldn't be parsed
// because some data couldn't fit in an int64
var ErrIntOverflow = errors.New("int64 overflow")

// isMSBSet checks if the MSB of a byte is set to 1.
// The MSB is the first bit on the left
func isMSBSet(b byte) bool {
	return b >= 0b_1000_0000
}

// unsetMSB sets the most left bit of the byte to 0
func unsetMSB(b byte) byte {
	// value       : XXXX_XXXX
	// & 0111_1111 : 0XXX_XXXX
	return b & 0b_0111_1111
}

// insertLittleEndian7 inserts $chunk into $base from the left, at bit
// position*7. The chunk is not masked: it must already fit in 7 bits
// (see unsetMSB).
// Example:
// base     = 111_1100
// chunk    = 010_1011
// position = 1
// Result   = 010_1011_111_1100 [chunk][base]
func insertLittleEndian7(base uint64, chunk, position uint8) uint64 {
	return (uint64(chunk) << (uint64(position) * 7)) | base
}

// insertBigEndian7 inserts $chunk into $base from the right. The chunk
// is not masked: it must already fit in 7 bits (see unsetMSB).
// Example:
// base   = 111_1100
// chunk  = 010_1011
// Result = 111_1100_010_1011 [base][chunk]
func insertBigEndian7(base uint64, chunk uint8) uint64 {
	return base<<7 | uint64(chunk)
}

// readSize reads a regular varint: every byte holds 7 bits of the
// value, little-endian ordered, with the MSB of each byte signaling
// whether another byte follows. Used for object sizes and delta
// header sizes. This is NOT the same encoding as readDeltaOffset,
// which is git-specific.
func readSize(data []byte) (size uint64, bytesRead int, err error) {
	for i, b := range data {
		bytesRead++
		chunk := unsetMSB(b)
		size = insertLittleEndian7(size, chunk, uint8(i))
		if !isMSBSet(b) {
			return size, bytesRead, nil
		}
	}
	return 0, 0, ErrIntOverflow
}

// readDeltaOffset reads an ofs-delta negative offset. Each byte holds
// 7 bits of the value, big-endian ordered. Unlike readSize, each
// continuation adds one to the value accumulated so far before it is
// shifted to make room for the next 7 bits - this is what makes the
// encoding git-specific rather than an "ordinary" varint.
func readDeltaOffset(data []byte) (offset uint64, bytesRead int, err error) {
	for i, b := range data {
		bytesRead++
		if i > 0 {
			offset++
		}
		offset = insertBigEndian7(offset, unsetMSB(b))
		if !isMSBSet(b) {
			return offset, bytesRead, nil
		}
	}
	return 0, 0, ErrIntOverflow
}

// applyDelta reconstructs the target buffer described by a delta
// instruction stream against the given base content.
func applyDelta(base, delta []byte) ([]byte, error) {
	sourceSize, sourceSizeLen, err := readSize(delta)
	if err != nil {
		return nil, xerrors.Errorf("could not read source size: %w", err)
	}
	if int(sourceSize) != len(base) {
		return nil, xerrors.Errorf("base size mismatch: expected %d, got %d: %w", sourceSize, len(base), ginternals.ErrDeltaOutOfBounds)
	}
	targetSize, targetSizeLen, err := readSize(delta[sourceSizeLen:])
	if err != nil {
		return nil, xerrors.Errorf("could not read target size: %w", err)
	}

	instructions := delta[sourceSizeLen+targetSizeLen:]
	out := make([]byte, 0, targetSize)

	for i := 0; i < len(instructions); i++ {
		instr := instructions[i]

		if instr == 0 {
			return nil, xerrors.Errorf("reserved delta instruction 0x00: %w", ginternals.ErrCorrupt)
		}

		if isMSBSet(instr) {
			// COPY: low 4 bits say which of the 4 offset bytes are
			// present, the next 3 bits say which of the 3 size bytes
			// are present.
			offsetInfo := uint(instr & 0b_0000_1111)
			offsetBytes := make([]byte, 4)
			read := 0
			for j := uint(0); j < 4; j++ {
				if (offsetInfo>>j)&1 == 1 {
					read++
					if i+read >= len(instructions) {
						return nil, xerrors.Errorf("truncated copy offset: %w", ginternals.ErrDeltaOutOfBounds)
					}
					offsetBytes[j] = instructions[i+read]
				}
			}
			offset := binary.LittleEndian.Uint32(offsetBytes)
			i += read

			sizeInfo := uint((instr & 0b_0111_0000) >> 4)
			sizeBytes := make([]byte, 4)
			read = 0
			for j := uint(0); j < 3; j++ {
				if (sizeInfo>>j)&1 == 1 {
					read++
					if i+read >= len(instructions) {
						return nil, xerrors.Errorf("truncated copy size: %w", ginternals.ErrDeltaOutOfBounds)
					}
					sizeBytes[j] = instructions[i+read]
				}
			}
			copyLen := binary.LittleEndian.Uint32(sizeBytes)
			if copyLen == 0 {
				copyLen = 0x10000
			}
			i += read

			end := uint64(offset) + uint64(copyLen)
			if end > uint64(len(base)) {
				return nil, xerrors.Errorf("copy range [%d:%d] exceeds base of length %d: %w", offset, end, len(base), ginternals.ErrDeltaOutOfBounds)
			}
			out = append(out, base[offset:end]...)
			continue
		}

		// INSERT: low 7 bits hold the number of literal bytes that follow
		n := int(instr)
		start := i + 1
		end := start + n
		if end > len(instructions) {
			return nil, xerrors.Errorf("insert of %d bytes exceeds instruction stream: %w", n, ginternals.ErrDeltaOutOfBounds)
		}
		out = append(out, instructions[start:end]...)
		i += n
	}

	if uint64(len(out)) != targetSize {
		return nil, xerrors.Errorf("target size mismatch: expected %d, got %d: %w", targetSize, len(out), ginternals.ErrDeltaOutOfBounds)
	}
	return out, nil
}
