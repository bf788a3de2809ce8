package zstring

import "github.com/kestrelgames/zfic/zaddr"

// Encode converts a plain-text word into its z-char stream, truncated or
// padded the way dictionary entries are: to wordLength z-chars (6 for V1-3,
// 9 for V4+), padding with z-char 5 and terminating the final word with the
// high bit. It only emits lowercase-alphabet and literal-shift characters;
// callers are expected to have already folded case and stripped anything
// not worth distinguishing for lookup purposes, matching how a story's own
// dictionary is built.
func Encode(word string, version zaddr.Version, alphabets Alphabets, wordLength int) []uint8 {
	zchars := make([]uint8, 0, wordLength)
	for _, r := range word {
		if len(zchars) >= wordLength {
			break
		}
		zchars = append(zchars, encodeRune(r, alphabets)...)
	}
	if len(zchars) > wordLength {
		zchars = zchars[:wordLength]
	}
	for len(zchars) < wordLength {
		zchars = append(zchars, 5)
	}

	out := make([]uint8, 0, wordLength/3*2+2)
	for i := 0; i < len(zchars); i += 3 {
		var a, b, c uint8
		a = zchars[i]
		if i+1 < len(zchars) {
			b = zchars[i+1]
		} else {
			b = 5
		}
		if i+2 < len(zchars) {
			c = zchars[i+2]
		} else {
			c = 5
		}
		word16 := uint16(a&0x1f)<<10 | uint16(b&0x1f)<<5 | uint16(c&0x1f)
		if i+3 >= len(zchars) {
			word16 |= 0x8000
		}
		out = append(out, uint8(word16>>8), uint8(word16))
	}
	return out
}

// encodeRune maps a single rune to the z-char(s) that produce it: a letter
// in the lowercase alphabet emits one z-char, anything only reachable via
// the symbol alphabet emits a one-shot shift followed by the symbol z-char.
func encodeRune(r rune, alphabets Alphabets) []uint8 {
	for i, candidate := range alphabets.lower {
		if candidate == r {
			return []uint8{uint8(i + 6)}
		}
	}
	for i, candidate := range alphabets.symbol {
		if candidate == r {
			return []uint8{5, uint8(i + 6)}
		}
	}
	return []uint8{0}
}
