package packfile

import (
	"testing"

	"github.com/elewis/gitgo/ginternals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSizeSingleByte(t *testing.T) {
	t.Parallel()

	size, n, err := readSize([]byte{0x05})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), size)
	assert.Equal(t, 1, n)
}

func TestReadSizeMultiByte(t *testing.T) {
	t.Parallel()

	// 0xFF (continuation, low 7 bits = 0x7F) then 0x02 -> 0x7F | (2 << 7) = 383
	size, n, err := readSize([]byte{0xFF, 0x02})
	require.NoError(t, err)
	assert.Equal(t, uint64(383), size)
	assert.Equal(t, 2, n)
}

func TestReadSizeOverflow(t *testing.T) {
	t.Parallel()

	allContinuation := make([]byte, 10)
	for i := range allContinuation {
		allContinuation[i] = 0xFF
	}
	_, _, err := readSize(allContinuation)
	assert.ErrorIs(t, err, ErrIntOverflow)
}

func TestReadDeltaOffsetSingleByte(t *testing.T) {
	t.Parallel()

	offset, n, err := readDeltaOffset([]byte{0x05})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), offset)
	assert.Equal(t, 1, n)
}

func TestReadDeltaOffsetMultiByte(t *testing.T) {
	t.Parallel()

	// First byte 0x81 (continuation, chunk 1 -> +1 = 2), second byte 0x00
	// offset = (2 << 7) | 0 = 256
	offset, n, err := readDeltaOffset([]byte{0x81, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint64(256), offset)
	assert.Equal(t, 2, n)
}

func encodeVarint(n uint64) []byte {
	var buf []byte
	for {
		b := byte(n & 0x7F)
		n >>= 7
		if n != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		buf = append(buf, b)
		return buf
	}
}

func TestApplyDeltaInsertOnly(t *testing.T) {
	t.Parallel()

	base := []byte("hello")
	target := []byte("hello world")

	var delta []byte
	delta = append(delta, encodeVarint(uint64(len(base)))...)
	delta = append(delta, encodeVarint(uint64(len(target)))...)
	delta = append(delta, byte(len(target))) // insert instruction, MSB clear
	delta = append(delta, target...)

	out, err := applyDelta(base, delta)
	require.NoError(t, err)
	assert.Equal(t, target, out)
}

func TestApplyDeltaCopyAndInsert(t *testing.T) {
	t.Parallel()

	base := []byte("0123456789")
	// Copy base[2:7] ("23456"), then insert "XY"
	var delta []byte
	delta = append(delta, encodeVarint(uint64(len(base)))...)
	delta = append(delta, encodeVarint(7)...) // target size: 5 + 2

	// copy instruction: offset=2 (1 byte), size=5 (1 byte)
	// MSB set, bit0 of low nibble = offset byte 0 present, bit4 = size byte 0 present
	delta = append(delta, 0b1001_0001, 0x02, 0x05)
	// insert instruction: 2 literal bytes
	delta = append(delta, 0x02, 'X', 'Y')

	out, err := applyDelta(base, delta)
	require.NoError(t, err)
	assert.Equal(t, []byte("23456XY"), out)
}

func TestApplyDeltaBaseSizeMismatch(t *testing.T) {
	t.Parallel()

	delta := encodeVarint(99)
	delta = append(delta, encodeVarint(0)...)
	_, err := applyDelta([]byte("short"), delta)
	assert.ErrorIs(t, err, ginternals.ErrDeltaOutOfBounds)
}

func TestApplyDeltaReservedInstruction(t *testing.T) {
	t.Parallel()

	base := []byte("x")
	var delta []byte
	delta = append(delta, encodeVarint(uint64(len(base)))...)
	delta = append(delta, encodeVarint(0)...)
	delta = append(delta, 0x00)

	_, err := applyDelta(base, delta)
	assert.ErrorIs(t, err, ginternals.ErrCorrupt)
}

func TestApplyDeltaCopyOutOfBounds(t *testing.T) {
	t.Parallel()

	base := []byte("short")
	var delta []byte
	delta = append(delta, encodeVarint(uint64(len(base)))...)
	delta = append(delta, encodeVarint(100)...)
	// copy instruction requesting offset=0, size=100 (too big for base)
	delta = append(delta, 0b1001_0001, 0x00, 100)

	_, err := applyDelta(base, delta)
	assert.ErrorIs(t, err, ginternals.ErrDeltaOutOfBounds)
}
