// Package ztable implements the scan_table/copy_table/print_table opcode
// helpers, which treat a region of memory as a flat array of fixed-width
// records.
package ztable

import (
	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
)

// Scan walks a table of count fields, each fieldLen bytes (1 or 2), looking
// for one equal to value. It returns the address of the matching field, or
// ok=false if none matched.
func Scan(core *zcore.Core, base zaddr.ByteAddr, value uint16, count int, fieldLen int) (zaddr.ByteAddr, bool, error) {
	for i := 0; i < count; i++ {
		addr := base.Add(uint32(i) * uint32(fieldLen))
		var field uint16
		var err error
		if fieldLen == 1 {
			var b uint8
			b, err = core.ByteAt(addr)
			field = uint16(b)
		} else {
			field, err = core.WordAt(addr)
		}
		if err != nil {
			return 0, false, err
		}
		if field == value {
			return addr, true, nil
		}
	}
	return 0, false, nil
}

// Copy moves size bytes from src to dst. A negative size forces a
// forward (possibly corrupting, for overlapping regions) copy instead of
// the safe direction Go's copy() would otherwise pick; a dst of 0 zero-fills
// size bytes instead of copying, matching the copy_table opcode's documented
// special cases.
func Copy(core *zcore.Core, src, dst zaddr.ByteAddr, size int) error {
	n := size
	forceForward := n < 0
	if forceForward {
		n = -n
	}

	if dst == 0 {
		for i := 0; i < n; i++ {
			if err := core.WriteByteAt(src.Add(uint32(i)), 0); err != nil {
				return err
			}
		}
		return nil
	}

	buf, err := core.Slice(src, uint32(n))
	if err != nil {
		return err
	}

	if forceForward || dst <= src {
		for i := 0; i < n; i++ {
			if err := core.WriteByteAt(dst.Add(uint32(i)), buf[i]); err != nil {
				return err
			}
		}
		return nil
	}

	for i := n - 1; i >= 0; i-- {
		if err := core.WriteByteAt(dst.Add(uint32(i)), buf[i]); err != nil {
			return err
		}
	}
	return nil
}

// PrintRow renders one table row for print_table: width fields, fieldLen
// bytes each, returned as their raw big-endian values for the caller to
// format and print.
func PrintRow(core *zcore.Core, base zaddr.ByteAddr, width int, fieldLen int) ([]uint16, error) {
	row := make([]uint16, width)
	for i := 0; i < width; i++ {
		addr := base.Add(uint32(i) * uint32(fieldLen))
		if fieldLen == 1 {
			b, err := core.ByteAt(addr)
			if err != nil {
				return nil, err
			}
			row[i] = uint16(b)
		} else {
			w, err := core.WordAt(addr)
			if err != nil {
				return nil, err
			}
			row[i] = w
		}
	}
	return row, nil
}
