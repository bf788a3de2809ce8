// Package zdict implements dictionary parsing and word lookup.
package zdict

import (
	"bytes"
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
	"github.com/kestrelgames/zfic/zstring"
)

// Dictionary is a parsed story dictionary: the word separators, the
// entry layout, and the sorted table of encoded entries.
type Dictionary struct {
	separators []rune
	entrySize  int
	entryCount int
	entriesAt  zaddr.ByteAddr
	wordLength int
	core       *zcore.Core
}

// Load parses a dictionary at base. wordLength is the number of z-chars an
// encoded entry holds: 6 for V1-3, 9 for V4+.
func Load(core *zcore.Core, version zaddr.Version, base zaddr.ByteAddr) (*Dictionary, error) {
	sepCount, err := core.ByteAt(base)
	if err != nil {
		return nil, fmt.Errorf("zdict: reading separator count: %w", err)
	}
	separators := make([]rune, sepCount)
	for i := 0; i < int(sepCount); i++ {
		b, err := core.ByteAt(base.Add(1 + uint32(i)))
		if err != nil {
			return nil, fmt.Errorf("zdict: reading separator %d: %w", i, err)
		}
		separators[i] = rune(b)
	}

	entrySizeAddr := base.Add(1 + uint32(sepCount))
	entrySize, err := core.ByteAt(entrySizeAddr)
	if err != nil {
		return nil, fmt.Errorf("zdict: reading entry size: %w", err)
	}
	count, err := core.WordAt(entrySizeAddr.Add(1))
	if err != nil {
		return nil, fmt.Errorf("zdict: reading entry count: %w", err)
	}

	wordLength := 6
	if version >= zaddr.V4 {
		wordLength = 9
	}

	// A negative count (top bit set) means the entries are unsorted.
	// Lookup still does a binary search; an unsorted dictionary is rare
	// enough in practice (and outside this interpreter's non-goals) that
	// Load does not special-case it further here.
	entryCount := int(int16(count))
	if entryCount < 0 {
		entryCount = -entryCount
	}

	return &Dictionary{
		separators: separators,
		entrySize:  int(entrySize),
		entryCount: entryCount,
		entriesAt:  entrySizeAddr.Add(3),
		wordLength: wordLength,
		core:       core,
	}, nil
}

// Separators returns the ZSCII word-separator characters declared by the
// dictionary header (used to tokenise input text).
func (d *Dictionary) Separators() []rune {
	return d.separators
}

// Count returns the number of entries in the dictionary.
func (d *Dictionary) Count() int {
	return d.entryCount
}

// entryAddr returns the address of the i-th entry (0-based).
func (d *Dictionary) entryAddr(i int) zaddr.ByteAddr {
	return d.entriesAt.Add(uint32(i) * uint32(d.entrySize))
}

func (d *Dictionary) encodedBytesAt(i int) ([]uint8, error) {
	return d.core.Slice(d.entryAddr(i), uint32(d.wordLength)/3*2)
}

// Lookup binary-searches the sorted dictionary for word and returns the
// address of its entry, or ok=false if it isn't present.
func (d *Dictionary) Lookup(word string, version zaddr.Version, alphabets zstring.Alphabets) (zaddr.ByteAddr, bool, error) {
	target := zstring.Encode(word, version, alphabets, d.wordLength)

	lo, hi := 0, d.entryCount-1
	for lo <= hi {
		mid := (lo + hi) / 2
		candidate, err := d.encodedBytesAt(mid)
		if err != nil {
			return 0, false, err
		}
		cmp := bytes.Compare(candidate, target)
		switch {
		case cmp == 0:
			return d.entryAddr(mid), true, nil
		case cmp < 0:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return 0, false, nil
}

// EntrySize returns the size in bytes of each dictionary entry, including
// the encoded word and any trailing data bytes the story defines.
func (d *Dictionary) EntrySize() int {
	return d.entrySize
}
