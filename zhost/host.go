// Package zhost defines the collaborator surface zvm drives for everything
// outside the story image itself: the screen, the keyboard, persistence,
// and randomness. Every method is a blocking, synchronous call (spec.md
// §5) - zvm never times a collaborator out or cancels it partway through.
// A concrete Host (cmd/zfic's bubbletea-backed one, or a test double) is
// free to bridge to something asynchronous internally, but that bridging
// never leaks into this interface.
package zhost

import "fmt"

// TextStyle mirrors the Z-machine's set_text_style bitmask.
type TextStyle int

const (
	Roman        TextStyle = 0b0000_0000
	ReverseVideo TextStyle = 0b0000_0001
	Bold         TextStyle = 0b0000_0010
	Italic       TextStyle = 0b0000_0100
	FixedPitch   TextStyle = 0b0000_1000
)

// Color is an RGB triple a Host renders foreground/background text in.
type Color struct {
	R, G, B int
}

func (c Color) ToHex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// StandardColor resolves one of the Z-machine's standard colours 2-12
// (black through dark grey) to an RGB value. 0 ("current") and 1
// ("default") are left to the caller and report false here.
func StandardColor(i uint16) (Color, bool) {
	switch i {
	case 2:
		return Color{0, 0, 0}, true
	case 3:
		return Color{255, 0, 0}, true
	case 4:
		return Color{0, 255, 0}, true
	case 5:
		return Color{255, 255, 0}, true
	case 6:
		return Color{0, 0, 255}, true
	case 7:
		return Color{255, 0, 255}, true
	case 8:
		return Color{0, 255, 255}, true
	case 9:
		return Color{255, 255, 255}, true
	case 10:
		return Color{192, 192, 192}, true
	case 11:
		return Color{128, 128, 128}, true
	case 12:
		return Color{64, 64, 64}, true
	default:
		return Color{}, false
	}
}

// StatusInfo is what ShowStatus needs to render a V1-V3 status line: the
// left-hand location text, and either a score/turns pair or an hours/mins
// clock, selected by TimeMode.
type StatusInfo struct {
	Location string
	TimeMode bool
	Score    int
	Turns    int
	Hours    int
	Minutes  int
}

// SoundEffect describes one sound_effect opcode invocation.
type SoundEffect struct {
	Number int
	Effect int // 1=prepare, 2=start, 3=stop, 4=finish
	Volume int
	Repeats int
}

// Host is everything zvm needs from the outside world. Implementations
// must not panic: every method that can fail returns an error, which zvm
// propagates to its caller exactly like a story-image fault.
type Host interface {
	// Print writes text to the screen's currently selected window (the
	// standard's stream 1). Transcript writes the same text to the
	// player's transcript file (stream 2), independently enabled.
	Print(text string)
	Transcript(text string)

	// ShowStatus redraws a V1-V3 status line. No-op for V4+ stories,
	// which draw their own via Print.
	ShowStatus(info StatusInfo)

	// ReadLine blocks for a line of input (the `sread`/`aread` opcodes),
	// pre-populating the input buffer with existing (already-typed text
	// from a prior, interrupted read) and stopping as soon as one of
	// terminators is seen. It returns the text typed and the rune that
	// terminated it (0 if input was exhausted without an explicit
	// terminator, e.g. on EOF).
	ReadLine(maxLen int, existing string, terminators []rune) (text string, terminator rune, err error)

	// ReadChar blocks for a single keystroke (`read_char`).
	ReadChar() (rune, error)

	// Save persists data as the running instance's saved game and
	// Restore retrieves it; ok is false if the player declined or no
	// save exists. Both are synchronous per spec.md §5, even though
	// cmd/zfic's implementation bridges to a prompt.
	Save(data []byte) (ok bool, err error)
	Restore() (data []byte, ok bool, err error)

	// RandomSeed reseeds the generator (the negative-range form of
	// `random`); RandomNext returns a value in [1, n].
	RandomSeed(seed int64)
	RandomNext(n int) int

	// Warnf reports a recoverable condition (stack underflow, a
	// malformed but non-fatal table op) without aborting the instance.
	Warnf(format string, args ...any)

	// Window and cursor management (split_window/set_window/erase_window
	// /erase_line/set_cursor). split_window and set_window exist from V3,
	// the others from V4.
	SplitWindow(lines int)
	SetWindow(window int)
	EraseWindow(window int)
	EraseLine()
	SetCursor(line, column int)

	SetTextStyle(style TextStyle)
	SetBufferMode(buffered bool)
	SetColour(foreground, background Color, window int)

	SoundEffect(effect SoundEffect)

	// Quit ends the session (the `quit` opcode, or a fatal error the
	// driver decided to surface this way instead of returning it).
	Quit()
}
