package zstring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
	"github.com/kestrelgames/zfic/zstring"
)

func newImage(t *testing.T) *zcore.Core {
	t.Helper()
	image := make([]uint8, 0x200)
	image[0] = 3
	image[0x0e] = 0x01 // static memory base 0x100
	core, err := zcore.Load(image)
	require.NoError(t, err)
	return core
}

func TestEncodeDecodeRoundTripShortWord(t *testing.T) {
	alphabets := zstring.Default(zaddr.V3)
	core := newImage(t)

	// "goto" exactly fills the 4 z-char word length, so Encode pads no
	// z-chars of its own; only the second word's two unused slots hold
	// z-char 5.
	encoded := zstring.Encode("goto", zaddr.V3, alphabets, 4)
	require.Len(t, encoded, 4) // 4 z-chars packed into two words
	for i, b := range encoded {
		require.NoError(t, core.WriteByteAt(zaddr.ByteAddr(0x40+i), b))
	}

	text, consumed, err := zstring.Decode(core, zaddr.V3, alphabets, zstring.DefaultUnicodeTable(), 0, 0x40)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), consumed)
	assert.Equal(t, "goto", text)
}

func TestEncodeTruncatesToWordLength(t *testing.T) {
	alphabets := zstring.Default(zaddr.V3)
	encoded := zstring.Encode("adventure", zaddr.V3, alphabets, 4)
	assert.Len(t, encoded, 4)
}

func TestDecodeUppercaseShift(t *testing.T) {
	alphabets := zstring.Default(zaddr.V3)
	core := newImage(t)

	// z-char 4 is a one-shot shift to the uppercase alphabet (V3+); z-char
	// 6 in that alphabet is 'A'. Terminate immediately after.
	word := uint16(4)<<10 | uint16(6)<<5 | uint16(5)
	word |= 0x8000
	require.NoError(t, core.WriteWordAt(0x40, word))

	text, _, err := zstring.Decode(core, zaddr.V3, alphabets, zstring.DefaultUnicodeTable(), 0, 0x40)
	require.NoError(t, err)
	assert.Equal(t, "A", text)
}

func TestAlphabetsLetterBounds(t *testing.T) {
	alphabets := zstring.Default(zaddr.V3)
	_, ok := alphabets.Letter(5, zstring.Lowercase)
	assert.False(t, ok)

	r, ok := alphabets.Letter(6, zstring.Lowercase)
	assert.True(t, ok)
	assert.Equal(t, 'a', r)
}

func TestWithOverrideRejectsShortTable(t *testing.T) {
	_, ok := zstring.WithOverride(make([]uint8, 10))
	assert.False(t, ok)

	_, ok = zstring.WithOverride(make([]uint8, 78))
	assert.True(t, ok)
}
