package zvm

import "github.com/kestrelgames/zfic/zhost"

// resolveColour turns a set_colour/set_true_colour operand into a
// concrete colour: 0 means "current" and 1 "default", both of which this
// core can't distinguish without a screen model of its own, so both fall
// back to black - the Host is free to interpret them more richly since it
// owns the actual screen state.
func (vm *VM) resolveColour(n uint16) zhost.Color {
	if c, ok := zhost.StandardColor(n); ok {
		return c
	}
	return zhost.Color{}
}
