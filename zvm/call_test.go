package zvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zinstr"
)

// TestCallReturnAdvancesCallerPC exercises a full call/return cycle through
// Step, guarding against the caller's frame PC never being advanced past
// the call instruction (which would re-execute the same call forever).
func TestCallReturnAdvancesCallerPC(t *testing.T) {
	vm, _ := newFixtureVM(t)

	// The routine lives just past the caller's instruction: no locals,
	// then `rtrue`.
	routineAddr := zaddr.ByteAddr(fixtureCodeBase + 0x20)
	require.NoError(t, vm.Core.WriteByteAt(routineAddr, 0)) // 0 locals
	require.NoError(t, vm.Core.WriteByteAt(routineAddr.Add(1), 0xb0))

	callInstr := zinstr.Instruction{
		PC:       fixtureCodeBase,
		Count:    zinstr.VAR,
		Opcode:   0, // call
		Operands: []zinstr.Operand{operandConst(uint16(routineAddr) / 2), operandConst(0)},
		Stores:   true,
		StoreVar: 16,
		NextPC:   fixtureCodeBase + 10,
	}

	frame := vm.currentFrame()
	frame.PC = fixtureCodeBase

	action, err := vm.dispatch(callInstr)
	require.NoError(t, err)
	ok, err := vm.applyAction(frame, callInstr, action)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, zaddr.ByteAddr(fixtureCodeBase+10), frame.PC)
	assert.Len(t, vm.frames, 2)

	// Executing the callee's `rtrue` should pop back to the caller and
	// store 1 into its result variable, leaving exactly one frame whose
	// PC is still where the call instruction left it.
	calleeFrame := vm.currentFrame()
	retInstr := zinstr.Instruction{Count: zinstr.OP0, Opcode: 0, NextPC: calleeFrame.PC.Add(1)}
	retAction, err := vm.dispatch(retInstr)
	require.NoError(t, err)
	ok, err = vm.applyAction(calleeFrame, retInstr, retAction)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Len(t, vm.frames, 1)
	assert.Equal(t, zaddr.ByteAddr(fixtureCodeBase+10), vm.currentFrame().PC)
	result, err := vm.readVariable(16, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), result)
}

func TestDoCallTargetZero(t *testing.T) {
	vm, _ := newFixtureVM(t)
	err := vm.doCall(ActionCall{Target: 0, HasReturn: true, ReturnVar: 16})
	require.NoError(t, err)
	v, err := vm.readVariable(16, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v)
	assert.Len(t, vm.frames, 1)
}

func TestDoReturnUnderflow(t *testing.T) {
	vm, _ := newFixtureVM(t)
	// Push one extra frame so the first return has somewhere to land;
	// the second pops the outermost routine, which is the underflow case.
	vm.frames = append(vm.frames, &Frame{PC: fixtureCodeBase})
	require.NoError(t, vm.doReturn(1))
	err := vm.doReturn(1)
	assert.ErrorIs(t, err, ErrCallStackUnderflow)
}
