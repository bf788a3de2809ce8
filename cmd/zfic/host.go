package main

import (
	"fmt"
	"math/rand"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelgames/zfic/zhost"
)

// randomSource backs the random opcode. The Z-machine standard lets a
// negative seed fix the sequence for reproducible testing, which is why
// RandomSeed reseeds this in place rather than swapping in a fresh one.
var randomSource = rand.New(rand.NewSource(1))

// Every blocking zhost.Host call on teaHost follows the same shape: build a
// request value, hand it to the running Bubble Tea program with
// program.Send (which is safe to call from any goroutine), then block on a
// per-call response channel until the Update loop answers it. This plays
// the same role as the teacher's channel-based interpreter protocol in
// main.go, just inverted: there the interpreter goroutine produced typed
// messages for the UI to consume, here the host collaborator interface
// itself is the thing that blocks, and the bridging lives entirely behind
// it so zhost.Host stays synchronous per spec.md §5.
type teaHost struct {
	program *tea.Program
}

type printRequest struct{ text string }
type transcriptRequest struct{ text string }
type statusRequest struct{ info zhost.StatusInfo }

type readLineRequest struct {
	maxLen      int
	existing    string
	terminators []rune
	respond     chan readLineResponse
}

type readLineResponse struct {
	text       string
	terminator rune
}

type readCharRequest struct {
	respond chan rune
}

type saveGameRequest struct {
	data    []byte
	respond chan saveGameResponse
}

type saveGameResponse struct {
	ok bool
}

type restoreGameRequest struct {
	respond chan restoreGameResponse
}

type restoreGameResponse struct {
	data []byte
	ok   bool
}

type splitWindowRequest struct{ lines int }
type setWindowRequest struct{ window int }
type eraseWindowRequest struct{ window int }
type eraseLineRequest struct{}
type setCursorRequest struct{ line, column int }
type setTextStyleRequest struct{ style zhost.TextStyle }
type setBufferModeRequest struct{ buffered bool }
type setColourRequest struct {
	foreground, background zhost.Color
	window                 int
}
type soundEffectRequest struct{ effect zhost.SoundEffect }
type warningRequest struct{ text string }
type quitRequest struct{}

func (h *teaHost) Print(text string) {
	h.program.Send(printRequest{text: text})
}

func (h *teaHost) Transcript(text string) {
	h.program.Send(transcriptRequest{text: text})
}

func (h *teaHost) ShowStatus(info zhost.StatusInfo) {
	h.program.Send(statusRequest{info: info})
}

func (h *teaHost) ReadLine(maxLen int, existing string, terminators []rune) (string, rune, error) {
	respond := make(chan readLineResponse, 1)
	h.program.Send(readLineRequest{maxLen: maxLen, existing: existing, terminators: terminators, respond: respond})
	resp := <-respond
	return resp.text, resp.terminator, nil
}

func (h *teaHost) ReadChar() (rune, error) {
	respond := make(chan rune, 1)
	h.program.Send(readCharRequest{respond: respond})
	return <-respond, nil
}

func (h *teaHost) Save(data []byte) (bool, error) {
	respond := make(chan saveGameResponse, 1)
	h.program.Send(saveGameRequest{data: data, respond: respond})
	resp := <-respond
	return resp.ok, nil
}

func (h *teaHost) Restore() ([]byte, bool, error) {
	respond := make(chan restoreGameResponse, 1)
	h.program.Send(restoreGameRequest{respond: respond})
	resp := <-respond
	return resp.data, resp.ok, nil
}

func (h *teaHost) RandomSeed(seed int64) {
	randomSource.Seed(seed)
}

func (h *teaHost) RandomNext(n int) int {
	if n <= 0 {
		return 0
	}
	return randomSource.Intn(n) + 1
}

func (h *teaHost) Warnf(format string, args ...any) {
	h.program.Send(warningRequest{text: fmt.Sprintf(format, args...)})
}

func (h *teaHost) SplitWindow(lines int) {
	h.program.Send(splitWindowRequest{lines: lines})
}

func (h *teaHost) SetWindow(window int) {
	h.program.Send(setWindowRequest{window: window})
}

func (h *teaHost) EraseWindow(window int) {
	h.program.Send(eraseWindowRequest{window: window})
}

func (h *teaHost) EraseLine() {
	h.program.Send(eraseLineRequest{})
}

func (h *teaHost) SetCursor(line, column int) {
	h.program.Send(setCursorRequest{line: line, column: column})
}

func (h *teaHost) SetTextStyle(style zhost.TextStyle) {
	h.program.Send(setTextStyleRequest{style: style})
}

func (h *teaHost) SetBufferMode(buffered bool) {
	h.program.Send(setBufferModeRequest{buffered: buffered})
}

func (h *teaHost) SetColour(foreground, background zhost.Color, window int) {
	h.program.Send(setColourRequest{foreground: foreground, background: background, window: window})
}

func (h *teaHost) SoundEffect(effect zhost.SoundEffect) {
	h.program.Send(soundEffectRequest{effect: effect})
}

func (h *teaHost) Quit() {
	h.program.Send(quitRequest{})
}
