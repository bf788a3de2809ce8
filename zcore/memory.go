package zcore

import (
	"encoding/binary"
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
)

// ByteAt reads a single octet. Every address in [0, Len()) is readable.
func (c *Core) ByteAt(addr zaddr.ByteAddr) (uint8, error) {
	if uint32(addr) >= c.Len() {
		return 0, fmt.Errorf("zcore: byte read at %#x: %w", uint32(addr), ErrBadAddress)
	}
	return c.image[addr], nil
}

// WordAt reads a big-endian 16-bit value starting at addr. Both addr and
// addr+1 must be in range.
func (c *Core) WordAt(addr zaddr.ByteAddr) (uint16, error) {
	if uint32(addr)+1 >= c.Len() {
		return 0, fmt.Errorf("zcore: word read at %#x: %w", uint32(addr), ErrBadAddress)
	}
	return binary.BigEndian.Uint16(c.image[addr : addr+2]), nil
}

// BitAt reads a single bit, MSB-first within its containing octet.
func (c *Core) BitAt(addr zaddr.BitAddr) (bool, error) {
	b, err := c.ByteAt(addr.ToByte())
	if err != nil {
		return false, err
	}
	mask := uint8(1) << (7 - addr.BitOffset())
	return b&mask != 0, nil
}

// Slice returns a read-only view of length octets starting at addr. The
// returned slice aliases the story image; callers must not retain it across
// a write to the same region.
func (c *Core) Slice(addr zaddr.ByteAddr, length uint32) ([]uint8, error) {
	end := uint64(addr) + uint64(length)
	if end > uint64(c.Len()) {
		return nil, fmt.Errorf("zcore: slice [%#x, %#x): %w", uint32(addr), end, ErrBadAddress)
	}
	return c.image[addr : uint32(addr)+length], nil
}

// WriteByteAt writes a single octet. Only dynamic memory is writable; a
// write to static or high memory is ErrReadOnlyMemory (spec.md's read-only
// region rule).
func (c *Core) WriteByteAt(addr zaddr.ByteAddr, value uint8) error {
	if err := c.checkWritable(addr, 1); err != nil {
		return err
	}
	c.image[addr] = value
	return nil
}

// WriteWordAt writes a big-endian 16-bit value. Only dynamic memory is
// writable.
func (c *Core) WriteWordAt(addr zaddr.ByteAddr, value uint16) error {
	if err := c.checkWritable(addr, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(c.image[addr:addr+2], value)
	return nil
}

// WriteBitAt sets or clears a single bit, MSB-first within its octet. Only
// dynamic memory is writable.
func (c *Core) WriteBitAt(addr zaddr.BitAddr, set bool) error {
	byteAddr := addr.ToByte()
	if err := c.checkWritable(byteAddr, 1); err != nil {
		return err
	}
	mask := uint8(1) << (7 - addr.BitOffset())
	if set {
		c.image[byteAddr] |= mask
	} else {
		c.image[byteAddr] &^= mask
	}
	return nil
}

func (c *Core) checkWritable(addr zaddr.ByteAddr, length uint32) error {
	end := uint64(addr) + uint64(length)
	if end > uint64(c.Len()) {
		return fmt.Errorf("zcore: write [%#x, %#x): %w", uint32(addr), end, ErrBadAddress)
	}
	if uint32(addr) >= uint32(c.DynamicEnd()) {
		return fmt.Errorf("zcore: write at %#x: %w", uint32(addr), ErrReadOnlyMemory)
	}
	return nil
}

// Bytes exposes the raw image for callers that need direct access, such as
// save-state serialization of dynamic memory. Callers must not resize it.
func (c *Core) Bytes() []uint8 {
	return c.image
}
