package zstring

import "github.com/kestrelgames/zfic/zaddr"

// Mode names the three shifting alphabets a z-char can be looked up in.
type Mode int

const (
	Lowercase Mode = iota
	Uppercase
	Symbol
)

// rotateUp and rotateDown implement the V1/V2 persistent-shift wraparound
// (Lowercase -> Uppercase -> Symbol -> Lowercase and back).
func (m Mode) rotateUp() Mode {
	return (m + 1) % 3
}

func (m Mode) rotateDown() Mode {
	return (m + 3 - 1) % 3
}

const tableSize = 26

// defaultLower, defaultUpper and defaultSymbol are the three built-in
// alphabet tables (z-chars 6-31 map to entries 0-25). V1 uses a slightly
// different symbol table than V2+; see DEFAULT_SYMBOL_ALPHABET_V1 in the
// corpus's original-language source for the one differing slot.
var (
	defaultLower    = []rune("abcdefghijklmnopqrstuvwxyz")
	defaultUpper    = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	defaultSymbolV2 = []rune(" \n0123456789.,!?_#'\"/\\-:()")
	defaultSymbolV1 = []rune("<\n0123456789.,!?_#'\"/\\-:()")
)

// Alphabets holds the three 26-entry tables a story's z-strings decode
// against. V2 and below use the built-in defaults unconditionally; V5+ may
// override them from a table pointed to by the header's alphabet-table
// field.
type Alphabets struct {
	lower, upper, symbol []rune
}

// Default builds the alphabet set a story of the given version starts with,
// before any V5+ header override is applied.
func Default(version zaddr.Version) Alphabets {
	symbol := defaultSymbolV2
	if version == zaddr.V1 {
		symbol = defaultSymbolV1
	}
	return Alphabets{lower: defaultLower, upper: defaultUpper, symbol: symbol}
}

// WithOverride builds an alphabet set whose three tables come from the
// given 78-byte (3x26) ZSCII table, the override V5+ stories may supply via
// the header's alphabet-table-address field.
func WithOverride(raw []uint8) (Alphabets, bool) {
	if len(raw) < 3*tableSize {
		return Alphabets{}, false
	}
	lower := make([]rune, tableSize)
	upper := make([]rune, tableSize)
	symbol := make([]rune, tableSize)
	for i := 0; i < tableSize; i++ {
		lower[i] = rune(raw[i])
		upper[i] = rune(raw[tableSize+i])
		symbol[i] = rune(raw[2*tableSize+i])
	}
	return Alphabets{lower: lower, upper: upper, symbol: symbol}, true
}

// Letter returns the rune a z-char (6-31) maps to under the given mode.
// zchar must be in [6, 31]; callers handle 0-5 themselves before reaching
// here.
func (a Alphabets) Letter(zchar uint8, mode Mode) (rune, bool) {
	if zchar < 6 || zchar > 31 {
		return 0, false
	}
	index := int(zchar) - 6
	switch mode {
	case Lowercase:
		return a.lower[index], true
	case Uppercase:
		return a.upper[index], true
	case Symbol:
		return a.symbol[index], true
	default:
		return 0, false
	}
}
