package zvm

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zdict"
)

type token struct {
	text   string
	start  zaddr.ByteAddr
	length int
}

// tokenise implements the `tokenise` opcode and the word-splitting `sread`
// performs as part of reading a line: split the text at textBuffer into
// words on spaces and the dictionary's declared separators (separators are
// themselves single-character words), look each up, and write the parse
// buffer. leaveUnidentifiedBlank (tokenise's optional fourth operand) leaves
// the parse-buffer entry of a word not found in the dictionary untouched
// instead of writing it with a zero address.
func (vm *VM) tokenise(textBuffer, parseBuffer zaddr.ByteAddr, dict *zdict.Dictionary, leaveUnidentifiedBlank bool) error {
	start := textBuffer.Add(1)
	var textLen int
	if vm.Core.Version >= zaddr.V5 {
		n, err := vm.Core.ByteAt(start)
		if err != nil {
			return err
		}
		textLen = int(n)
		start = start.Add(1)
	} else {
		maxLen, err := vm.Core.ByteAt(textBuffer)
		if err != nil {
			return err
		}
		raw, err := vm.Core.Slice(start, uint32(maxLen))
		if err != nil {
			return err
		}
		for i, b := range raw {
			if b == 0 {
				textLen = i
				break
			}
			textLen = i + 1
		}
	}

	raw, err := vm.Core.Slice(start, uint32(textLen))
	if err != nil {
		return err
	}

	separators := dict.Separators()
	isSeparator := func(b uint8) bool {
		for _, s := range separators {
			if rune(b) == s {
				return true
			}
		}
		return false
	}

	var words []token
	wordStart := 0
	flush := func(end int) {
		if end > wordStart {
			words = append(words, token{
				text:   string(raw[wordStart:end]),
				start:  start.Add(uint32(wordStart)),
				length: end - wordStart,
			})
		}
	}
	for i, b := range raw {
		switch {
		case b == ' ':
			flush(i)
			wordStart = i + 1
		case isSeparator(b):
			flush(i)
			words = append(words, token{text: string(b), start: start.Add(uint32(i)), length: 1})
			wordStart = i + 1
		}
	}
	flush(len(raw))

	maxWords, err := vm.Core.ByteAt(parseBuffer)
	if err != nil {
		return err
	}
	if int(maxWords) < len(words) {
		words = words[:maxWords]
	}

	ptr := parseBuffer.Add(1)
	if err := vm.Core.WriteByteAt(ptr, uint8(len(words))); err != nil {
		return err
	}
	ptr = ptr.Add(1)

	for _, w := range words {
		var dictAddr zaddr.ByteAddr
		addr, found, err := dict.Lookup(w.text, vm.Core.Version, vm.Alphabets)
		if err != nil {
			return fmt.Errorf("zvm: tokenise: %w", err)
		}
		if found {
			dictAddr = addr
		} else if leaveUnidentifiedBlank {
			ptr = ptr.Add(4)
			continue
		}
		if err := vm.Core.WriteWordAt(ptr, uint16(dictAddr)); err != nil {
			return err
		}
		if err := vm.Core.WriteByteAt(ptr.Add(2), uint8(w.length)); err != nil {
			return err
		}
		if err := vm.Core.WriteByteAt(ptr.Add(3), uint8(uint32(w.start)-uint32(textBuffer))); err != nil {
			return err
		}
		ptr = ptr.Add(4)
	}

	return nil
}
