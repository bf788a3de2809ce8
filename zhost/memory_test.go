package zhost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelgames/zfic/zhost"
)

func TestMemoryHostReadLineConsumesScript(t *testing.T) {
	h := zhost.NewMemoryHost()
	h.Lines = []string{"open mailbox", "read leaflet"}

	text, term, err := h.ReadLine(80, "", []rune{'\n'})
	assert.NoError(t, err)
	assert.Equal(t, "open mailbox", text)
	assert.Equal(t, '\n', term)

	text, _, err = h.ReadLine(80, "", []rune{'\n'})
	assert.NoError(t, err)
	assert.Equal(t, "read leaflet", text)

	// Script exhausted: ReadLine echoes whatever pre-existing buffer it
	// was handed back, rather than blocking or erroring.
	text, _, err = h.ReadLine(80, "look", []rune{'\n'})
	assert.NoError(t, err)
	assert.Equal(t, "look", text)
}

func TestMemoryHostReadLineTruncatesToMaxLen(t *testing.T) {
	h := zhost.NewMemoryHost()
	h.Lines = []string{"a very long command line"}

	text, _, err := h.ReadLine(6, "", nil)
	assert.NoError(t, err)
	assert.Equal(t, "a very", text)
}

func TestMemoryHostReadChar(t *testing.T) {
	h := zhost.NewMemoryHost()
	h.Chars = []rune{'x', 'y'}

	c, err := h.ReadChar()
	assert.NoError(t, err)
	assert.Equal(t, 'x', c)

	c, err = h.ReadChar()
	assert.NoError(t, err)
	assert.Equal(t, 'y', c)

	c, err = h.ReadChar()
	assert.NoError(t, err)
	assert.Equal(t, rune(0), c)
}

func TestMemoryHostRandomNextCyclesScriptedValues(t *testing.T) {
	h := zhost.NewMemoryHost()
	h.RandomValues = []int{1, 2, 1}

	assert.Equal(t, 1, h.RandomNext(6))
	assert.Equal(t, 2, h.RandomNext(6))
	assert.Equal(t, 1, h.RandomNext(6))
	assert.Equal(t, 1, h.RandomNext(6)) // wraps around

	h.RandomSeed(99)
	assert.Equal(t, 1, h.RandomNext(6), "seeding resets the cursor")
}

func TestMemoryHostRandomNextCountsUpWithoutScript(t *testing.T) {
	h := zhost.NewMemoryHost()
	assert.Equal(t, 1, h.RandomNext(3))
	assert.Equal(t, 2, h.RandomNext(3))
	assert.Equal(t, 3, h.RandomNext(3))
	assert.Equal(t, 1, h.RandomNext(3))
}

func TestMemoryHostSaveRestore(t *testing.T) {
	h := zhost.NewMemoryHost()
	h.SaveOK = true

	ok, err := h.Save([]byte{1, 2, 3})
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, h.SaveData)

	h.RestoreData = []byte{4, 5}
	h.RestoreOK = true
	data, ok, err := h.Restore()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{4, 5}, data)
}

func TestMemoryHostWarnfAndQuit(t *testing.T) {
	h := zhost.NewMemoryHost()
	h.Warnf("stack underflow at %#x", 0x100)
	assert.Equal(t, []string{"stack underflow at 0x100"}, h.Warnings)

	assert.False(t, h.QuitCalled)
	h.Quit()
	assert.True(t, h.QuitCalled)
}

func TestStandardColor(t *testing.T) {
	c, ok := zhost.StandardColor(2)
	assert.True(t, ok)
	assert.Equal(t, zhost.Color{R: 0, G: 0, B: 0}, c)

	_, ok = zhost.StandardColor(0)
	assert.False(t, ok)
	_, ok = zhost.StandardColor(99)
	assert.False(t, ok)
}
