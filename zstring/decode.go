package zstring

import (
	"fmt"
	"strings"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
)

// maxZStringBytes bounds how far a single decode will read before giving up;
// a well-formed story never needs anywhere near this.
const maxZStringBytes = 4096

const maxAbbreviationDepth = 1

// Decode reads a z-string starting at addr and returns its decoded text
// along with the number of octets it occupied (always a multiple of 2).
func Decode(core *zcore.Core, version zaddr.Version, alphabets Alphabets, unicode UnicodeTable, abbrevBase zaddr.ByteAddr, addr zaddr.ByteAddr) (string, uint32, error) {
	var sb strings.Builder
	consumed, err := decodeInto(&sb, core, version, alphabets, unicode, abbrevBase, addr, 0)
	if err != nil {
		return "", 0, err
	}
	return sb.String(), consumed, nil
}

func decodeInto(sb *strings.Builder, core *zcore.Core, version zaddr.Version, alphabets Alphabets, unicode UnicodeTable, abbrevBase zaddr.ByteAddr, addr zaddr.ByteAddr, depth int) (uint32, error) {
	mode := Lowercase
	var state decodeState = stateUnset{}
	cursor := addr
	var consumed uint32

	for {
		word, err := core.WordAt(cursor)
		if err != nil {
			return 0, fmt.Errorf("zstring: reading word at %#x: %w", uint32(cursor), ErrInvalidZString)
		}
		cursor = cursor.Add(2)
		consumed += 2
		if consumed > maxZStringBytes {
			return 0, fmt.Errorf("zstring: string at %#x exceeded maximum length: %w", uint32(addr), ErrInvalidZString)
		}

		terminator := word&0x8000 != 0
		triplet := [3]uint8{uint8((word >> 10) & 0x1f), uint8((word >> 5) & 0x1f), uint8(word & 0x1f)}

		for _, zc := range triplet {
			state, err = step(sb, zc, version, &mode, state, alphabets, unicode, abbrevBase, core, depth)
			if err != nil {
				return 0, err
			}
		}

		if terminator {
			return consumed, nil
		}
	}
}

// step advances the decoder by one z-char, given its current pending-state,
// and returns the state that should govern the next z-char.
func step(sb *strings.Builder, zc uint8, version zaddr.Version, mode *Mode, state decodeState, alphabets Alphabets, unicode UnicodeTable, abbrevBase zaddr.ByteAddr, core *zcore.Core, depth int) (decodeState, error) {
	switch s := state.(type) {
	case stateTenBitHigh:
		return stateTenBitLow{high: zc}, nil

	case stateTenBitLow:
		code := uint16(s.high)<<5 | uint16(zc)
		writeZSCII(sb, code, unicode)
		return stateUnset{}, nil

	case stateAbbreviation:
		if err := expandAbbreviation(sb, core, version, alphabets, unicode, abbrevBase, s.bank, zc, depth); err != nil {
			return nil, err
		}
		return stateUnset{}, nil

	case stateModeShift:
		if zc <= 5 {
			// A shift only modifies the letter immediately following it; a
			// second special z-char cancels the pending shift instead of
			// stacking with it.
			return decodeUnset(sb, zc, version, mode, alphabets, unicode)
		}
		if s.mode == Symbol && zc == 6 {
			return stateTenBitHigh{}, nil
		}
		writeLetter(sb, zc, s.mode, alphabets)
		return stateUnset{}, nil

	case stateUnset:
		return decodeUnset(sb, zc, version, mode, alphabets, unicode)

	default:
		return stateUnset{}, nil
	}
}

// decodeUnset handles a z-char with no pending modifier state: z-chars 0-5
// are the space/newline/abbreviation/shift signals, 6-31 select a letter
// from the current alphabet.
func decodeUnset(sb *strings.Builder, zc uint8, version zaddr.Version, mode *Mode, alphabets Alphabets, unicode UnicodeTable) (decodeState, error) {
	switch zc {
	case 0:
		sb.WriteRune(' ')
		return stateUnset{}, nil
	case 1:
		if version == zaddr.V1 {
			sb.WriteRune('\n')
			return stateUnset{}, nil
		}
		return stateAbbreviation{bank: 1}, nil
	case 2:
		if version <= zaddr.V2 {
			return stateModeShift{mode: mode.rotateUp()}, nil
		}
		return stateAbbreviation{bank: 2}, nil
	case 3:
		if version <= zaddr.V2 {
			return stateModeShift{mode: mode.rotateDown()}, nil
		}
		return stateAbbreviation{bank: 3}, nil
	case 4:
		if version <= zaddr.V2 {
			*mode = mode.rotateUp()
			return stateUnset{}, nil
		}
		return stateModeShift{mode: mode.rotateUp()}, nil
	case 5:
		if version <= zaddr.V2 {
			*mode = mode.rotateDown()
			return stateUnset{}, nil
		}
		return stateModeShift{mode: mode.rotateDown()}, nil
	}

	if *mode == Symbol && zc == 6 {
		return stateTenBitHigh{}, nil
	}
	writeLetter(sb, zc, *mode, alphabets)
	return stateUnset{}, nil
}

func writeLetter(sb *strings.Builder, zc uint8, mode Mode, alphabets Alphabets) {
	if r, ok := alphabets.Letter(zc, mode); ok {
		sb.WriteRune(r)
	}
}

// writeZSCII resolves a full ZSCII code (either a plain zchar 6-31 escape
// result or a ten-bit escape) to a rune and appends it. A code neither
// table recognises (including 0) is dropped silently.
func writeZSCII(sb *strings.Builder, code uint16, unicode UnicodeTable) {
	if code < 256 {
		if r, ok := basicZSCII(uint8(code)); ok {
			sb.WriteRune(r)
			return
		}
		if r, ok := unicode.Rune(uint8(code)); ok {
			sb.WriteRune(r)
			return
		}
	}
}

// expandAbbreviation looks up and decodes the abbreviation text named by
// (bank, zc) and appends it to sb. V1/V2 stories only populate the first
// bank (indices 0-31); referencing anything past that is a malformed
// story file.
func expandAbbreviation(sb *strings.Builder, core *zcore.Core, version zaddr.Version, alphabets Alphabets, unicode UnicodeTable, abbrevBase zaddr.ByteAddr, bank uint8, zc uint8, depth int) error {
	if depth >= maxAbbreviationDepth {
		return fmt.Errorf("zstring: abbreviation referenced from within an abbreviation: %w", ErrInvalidAbbreviation)
	}

	index := uint32(bank-1)*32 + uint32(zc)
	if version <= zaddr.V2 && index >= 32 {
		return fmt.Errorf("zstring: abbreviation index %d invalid for this version: %w", index, ErrInvalidAbbreviation)
	}

	entryAddr := abbrevBase.Add(index * 2)
	wordAddr, err := core.WordAt(entryAddr)
	if err != nil {
		return fmt.Errorf("zstring: reading abbreviation table entry %d: %w", index, ErrInvalidAbbreviation)
	}

	target := zaddr.WordAddr(wordAddr).ToByte()
	_, err = decodeInto(sb, core, version, alphabets, unicode, abbrevBase, target, depth+1)
	if err != nil {
		return fmt.Errorf("zstring: decoding abbreviation %d: %w", index, err)
	}
	return nil
}
