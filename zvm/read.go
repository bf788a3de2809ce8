package zvm

import (
	"strings"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
	"github.com/kestrelgames/zfic/zhost"
)

// showStatus implements `show_status` and the automatic status-line
// refresh sread performs on V1-V3 stories: global 16 names the current
// location object, 17/18 hold either score/turns or a clock depending on
// the header's time-based flag.
func (vm *VM) showStatus() {
	if vm.Core.StatusLine() == zcore.StatusLineNone {
		return
	}
	locationID, err := vm.readVariable(16, false)
	if err != nil {
		return
	}
	location := ""
	if obj, err := vm.Objects.Object(locationID); err == nil {
		location, _ = obj.Name()
	}
	second, _ := vm.readVariable(17, false)
	third, _ := vm.readVariable(18, false)

	info := zhost.StatusInfo{Location: location}
	if vm.Core.StatusLine() == zcore.StatusLineHoursMins {
		info.TimeMode = true
		info.Hours = int(second)
		info.Minutes = int(third)
	} else {
		info.Score = int(int16(second))
		info.Turns = int(third)
	}
	vm.Host.ShowStatus(info)
}

// terminatingCharacters returns the V5+ custom terminator set declared in
// the header, or just newline if none is set. Function-key and keypad
// ZSCII codes (129-154, 252-254) are the only values a story may declare;
// 255 is the "all function keys" shorthand.
func (vm *VM) terminatingCharacters() []rune {
	terminators := []rune{'\n'}
	if vm.Core.Version < zaddr.V5 || vm.Core.TerminatingCharsBase == 0 {
		return terminators
	}
	addr := vm.Core.TerminatingCharsBase
	for {
		b, err := vm.Core.ByteAt(addr)
		if err != nil || b == 0 {
			break
		}
		switch {
		case b >= 129 && b <= 154, b >= 252 && b <= 254:
			terminators = append(terminators, rune(b))
		case b == 255:
			all := []rune{'\n'}
			for c := 129; c <= 154; c++ {
				all = append(all, rune(c))
			}
			all = append(all, 252, 253, 254)
			return all
		}
		addr = addr.Add(1)
	}
	return terminators
}

// doRead implements sread/aread: the V1-V3 status-line refresh, blocking
// on the Host for a line of text, writing it (lowercased, ZSCII-filtered)
// into the text buffer, and tokenising it into the parse buffer.
func (vm *VM) doRead(textBuffer, parseBuffer zaddr.ByteAddr) (uint16, error) {
	if vm.Core.Version <= zaddr.V3 {
		vm.showStatus()
	}

	maxLen, err := vm.Core.ByteAt(textBuffer)
	if err != nil {
		return 0, err
	}

	existing := ""
	bufferStart := textBuffer.Add(1)
	if vm.Core.Version >= zaddr.V5 {
		existingLen, err := vm.Core.ByteAt(bufferStart)
		if err != nil {
			return 0, err
		}
		raw, err := vm.Core.Slice(bufferStart.Add(1), uint32(existingLen))
		if err != nil {
			return 0, err
		}
		existing = string(raw)
	}

	terminators := vm.terminatingCharacters()
	text, terminator, err := vm.Host.ReadLine(int(maxLen), existing, terminators)
	if err != nil {
		return 0, err
	}
	text = strings.ToLower(text)

	ix := 0
	writeAt := bufferStart
	if vm.Core.Version >= zaddr.V5 {
		writeAt = bufferStart.Add(1)
	}
	for ; ix < int(maxLen) && ix < len(text); ix++ {
		chr := text[ix]
		if !((chr >= 32 && chr <= 126) || (chr >= 155 && chr <= 251)) {
			chr = ' '
		}
		if err := vm.Core.WriteByteAt(writeAt.Add(uint32(ix)), chr); err != nil {
			return 0, err
		}
	}

	if vm.Core.Version >= zaddr.V5 {
		if err := vm.Core.WriteByteAt(bufferStart, uint8(ix)); err != nil {
			return 0, err
		}
	} else {
		if err := vm.Core.WriteByteAt(writeAt.Add(uint32(ix)), 0); err != nil {
			return 0, err
		}
	}

	if parseBuffer != 0 {
		if err := vm.tokenise(textBuffer, parseBuffer, vm.Dict, false); err != nil {
			return 0, err
		}
	}

	if terminator == 0 {
		terminator = '\n'
	}
	return uint16(terminator), nil
}
