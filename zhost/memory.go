package zhost

import "fmt"

// MemoryHost is an in-process Host that records everything it's asked to
// render and serves scripted input, rather than talking to a real screen.
// It backs zvm's package tests so opcode semantics can be
// exercised without cmd/zfic's bubbletea loop.
type MemoryHost struct {
	Output          []string
	TranscriptLines []string
	Statuses        []StatusInfo
	Warnings        []string

	Lines    []string // scripted ReadLine responses, consumed in order
	Chars    []rune   // scripted ReadChar responses, consumed in order
	SaveData []byte
	SaveOK   bool
	RestoreData []byte
	RestoreOK   bool

	RandomValues []int // if non-empty, RandomNext consumes from here instead of counting up
	randomCursor int

	QuitCalled bool
}

// NewMemoryHost returns a MemoryHost with no scripted input. Once their
// scripts run out, ReadLine returns the existing text with terminator 0 and
// ReadChar returns 0, both without an error.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{}
}

func (h *MemoryHost) Print(text string)      { h.Output = append(h.Output, text) }
func (h *MemoryHost) Transcript(text string) { h.TranscriptLines = append(h.TranscriptLines, text) }

func (h *MemoryHost) ShowStatus(info StatusInfo) { h.Statuses = append(h.Statuses, info) }

func (h *MemoryHost) ReadLine(maxLen int, existing string, terminators []rune) (string, rune, error) {
	if len(h.Lines) == 0 {
		return existing, 0, nil
	}
	line := h.Lines[0]
	h.Lines = h.Lines[1:]
	if len(line) > maxLen {
		line = line[:maxLen]
	}
	term := rune('\n')
	if len(terminators) > 0 {
		term = terminators[0]
	}
	return line, term, nil
}

func (h *MemoryHost) ReadChar() (rune, error) {
	if len(h.Chars) == 0 {
		return 0, nil
	}
	c := h.Chars[0]
	h.Chars = h.Chars[1:]
	return c, nil
}

func (h *MemoryHost) Save(data []byte) (bool, error) {
	h.SaveData = append([]byte(nil), data...)
	return h.SaveOK, nil
}

func (h *MemoryHost) Restore() ([]byte, bool, error) {
	return h.RestoreData, h.RestoreOK, nil
}

func (h *MemoryHost) RandomSeed(seed int64) { h.randomCursor = 0 }

func (h *MemoryHost) RandomNext(n int) int {
	if n <= 0 {
		return 1
	}
	if len(h.RandomValues) > 0 {
		v := h.RandomValues[h.randomCursor%len(h.RandomValues)]
		h.randomCursor++
		if v > n {
			v = n
		}
		if v < 1 {
			v = 1
		}
		return v
	}
	h.randomCursor++
	return (h.randomCursor-1)%n + 1
}

func (h *MemoryHost) Warnf(format string, args ...any) {
	h.Warnings = append(h.Warnings, fmt.Sprintf(format, args...))
}

func (h *MemoryHost) SplitWindow(lines int)   {}
func (h *MemoryHost) SetWindow(window int)    {}
func (h *MemoryHost) EraseWindow(window int)  {}
func (h *MemoryHost) EraseLine()              {}
func (h *MemoryHost) SetCursor(line, column int) {}
func (h *MemoryHost) SetTextStyle(style TextStyle) {}
func (h *MemoryHost) SetBufferMode(buffered bool)  {}
func (h *MemoryHost) SetColour(foreground, background Color, window int) {}
func (h *MemoryHost) SoundEffect(effect SoundEffect) {}

func (h *MemoryHost) Quit() { h.QuitCalled = true }

var _ Host = (*MemoryHost)(nil)
