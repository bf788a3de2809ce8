// Package zcore implements the story image: the mutable byte buffer that
// backs a Z-machine story, its header fields, its three memory regions, and
// bounds-checked typed access to all three.
package zcore

import (
	"encoding/binary"
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
)

// StatusLineKind is the status-line style a V1-V3 story declares.
type StatusLineKind int

const (
	// StatusLineNone applies to V4+ stories, which draw their own status line.
	StatusLineNone StatusLineKind = iota
	StatusLineScoreTurns
	StatusLineHoursMins
)

// Core owns one story image and the header fields parsed from it.
type Core struct {
	image []uint8

	Version               zaddr.Version
	Flags1                uint8
	Flags2                uint16
	ReleaseNumber         uint16
	HighMemoryBase        zaddr.ByteAddr
	InitialPC             zaddr.ByteAddr
	DictionaryBase        zaddr.ByteAddr
	ObjectTableBase       zaddr.ByteAddr
	GlobalVariableBase    zaddr.ByteAddr
	StaticMemoryBase      zaddr.ByteAddr
	AbbreviationTableBase zaddr.ByteAddr
	fileLengthField       uint16
	StoredChecksum        uint16
	ScreenHeightLines     uint8
	ScreenWidthChars      uint8
	ScreenWidthUnits      uint16
	ScreenHeightUnits     uint16
	FontWidthUnits        uint8
	FontHeightUnits       uint8
	RoutinesOffset        uint16
	StringsOffset         uint16
	TerminatingCharsBase  zaddr.ByteAddr
	OutputStream3Width    uint16
	AlphabetTableBase     zaddr.ByteAddr
	HeaderExtensionBase   zaddr.ByteAddr
	UnicodeTableBase      zaddr.ByteAddr
}

// Load parses the header of a story image and returns a Core that owns it.
// The image must be at least 64 octets (the fixed header size); anything
// smaller is ErrLoadFailure.
//
// Load sets the interpreter-identity and capability bytes in the header the
// way a hosting interpreter is expected to, so that callers never have to
// special-case an unpopulated header on a freshly loaded story.
func Load(image []uint8) (*Core, error) {
	if len(image) < 64 {
		return nil, fmt.Errorf("zcore: image is %d octets, need at least 64: %w", len(image), ErrLoadFailure)
	}

	c := &Core{image: image}
	c.Version = zaddr.Version(image[0x00])
	c.Flags1 = image[0x01]
	c.ReleaseNumber = be16(image, 0x02)
	c.HighMemoryBase = zaddr.ByteAddr(be16(image, 0x04))
	c.InitialPC = zaddr.ByteAddr(be16(image, 0x06))
	c.DictionaryBase = zaddr.ByteAddr(be16(image, 0x08))
	c.ObjectTableBase = zaddr.ByteAddr(be16(image, 0x0a))
	c.GlobalVariableBase = zaddr.ByteAddr(be16(image, 0x0c))
	c.StaticMemoryBase = zaddr.ByteAddr(be16(image, 0x0e))
	c.Flags2 = be16(image, 0x10)
	c.AbbreviationTableBase = zaddr.ByteAddr(be16(image, 0x18))
	c.fileLengthField = be16(image, 0x1a)
	c.StoredChecksum = be16(image, 0x1c)
	c.ScreenHeightLines = image[0x20]
	c.ScreenWidthChars = image[0x21]
	c.ScreenWidthUnits = be16(image, 0x22)
	c.ScreenHeightUnits = be16(image, 0x24)
	c.FontWidthUnits = image[0x27]
	c.FontHeightUnits = image[0x26]
	c.RoutinesOffset = be16(image, 0x28)
	c.StringsOffset = be16(image, 0x2a)
	c.TerminatingCharsBase = zaddr.ByteAddr(be16(image, 0x2e))
	c.OutputStream3Width = be16(image, 0x30)
	c.AlphabetTableBase = zaddr.ByteAddr(be16(image, 0x34))
	c.HeaderExtensionBase = zaddr.ByteAddr(be16(image, 0x36))

	if c.HeaderExtensionBase != 0 {
		extWords, err := c.headerExtensionWord(3)
		if err == nil {
			c.UnicodeTableBase = zaddr.ByteAddr(extWords)
		}
	}

	c.populateInterpreterIdentity()

	return c, nil
}

func (c *Core) headerExtensionWord(index uint32) (uint16, error) {
	addr := zaddr.ByteAddr(uint32(c.HeaderExtensionBase) + index*2)
	return c.WordAt(addr)
}

// populateInterpreterIdentity sets the interpreter-identity and capability
// bytes the way a hosting interpreter does at load time; see
// zmachine/screen.go and main.go in the grounding corpus for the bit layout.
func (c *Core) populateInterpreterIdentity() {
	const interpreterNumberIBMPC = 6
	const interpreterVersionAspirational = 1

	c.image[0x1e] = interpreterNumberIBMPC
	c.image[0x1f] = interpreterVersionAspirational

	if c.ScreenHeightLines == 0 {
		c.ScreenHeightLines = 25
		c.image[0x20] = 25
	}
	if c.ScreenWidthChars == 0 {
		c.ScreenWidthChars = 80
		c.image[0x21] = 80
	}

	c.image[0x32] = 1 // standard revision major
	c.image[0x33] = 0 // standard revision minor

	if c.Version <= zaddr.V3 {
		c.image[0x01] |= 0b0010_0000 // screen splitting available
	} else {
		// colours (bit0), bold (bit2), italic (bit3), fixed-pitch (bit4)
		c.image[0x01] |= 0b0001_1101
		c.Flags1 = c.image[0x01]
	}
}

// StatusLine reports which status-line style a V1-V3 story wants; V4+
// stories draw their own and get StatusLineNone.
func (c *Core) StatusLine() StatusLineKind {
	if c.Version > zaddr.V3 {
		return StatusLineNone
	}
	if c.Version == zaddr.V3 && c.Flags1&0b0000_0010 != 0 {
		return StatusLineHoursMins
	}
	return StatusLineScoreTurns
}

// IsTwoDisks reports the two-disks flag (Flags1 bit 2, V1-V3 only).
func (c *Core) IsTwoDisks() bool {
	return c.Version <= zaddr.V3 && c.Flags1&0b0000_0100 != 0
}

// FileLength returns the story's declared length in octets, derived from the
// stored header field by the version-dependent multiplier.
func (c *Core) FileLength() uint32 {
	var multiplier uint32
	switch {
	case c.Version <= zaddr.V3:
		multiplier = 2
	case c.Version <= zaddr.V5:
		multiplier = 4
	default:
		multiplier = 8
	}
	return uint32(c.fileLengthField) * multiplier
}

// Checksum returns the unsigned 16-bit sum of every octet from offset 64 to
// FileLength. The verify opcode compares this against StoredChecksum.
func (c *Core) Checksum() uint16 {
	end := c.FileLength()
	if end > uint32(len(c.image)) {
		end = uint32(len(c.image))
	}
	var sum uint16
	for i := uint32(0x40); i < end; i++ {
		sum += uint16(c.image[i])
	}
	return sum
}

// VerifyChecksum reports whether the computed checksum matches the one
// stored in the header, the test the verify opcode performs.
func (c *Core) VerifyChecksum() bool {
	return c.Checksum() == c.StoredChecksum
}

// Len returns the total length of the story image in octets.
func (c *Core) Len() uint32 {
	return uint32(len(c.image))
}

// DynamicEnd is the exclusive upper bound of dynamic memory: [0, DynamicEnd).
func (c *Core) DynamicEnd() zaddr.ByteAddr {
	return c.StaticMemoryBase
}

// StaticEnd is the exclusive upper bound of static memory, capped at 0x10000
// regardless of what the header claims.
func (c *Core) StaticEnd() zaddr.ByteAddr {
	end := c.Len()
	if end > 0x10000 {
		end = 0x10000
	}
	return zaddr.ByteAddr(end)
}

// HighStart is the first octet of high memory; it may overlap static memory.
func (c *Core) HighStart() zaddr.ByteAddr {
	return c.HighMemoryBase
}

func be16(b []uint8, offset int) uint16 {
	return binary.BigEndian.Uint16(b[offset : offset+2])
}
