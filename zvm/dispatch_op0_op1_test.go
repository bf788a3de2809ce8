package zvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgames/zfic/zinstr"
)

func TestDispatchOP0ReturnValues(t *testing.T) {
	vm, _ := newFixtureVM(t)

	action, err := vm.dispatchOP0(zinstr.Instruction{Count: zinstr.OP0, Opcode: 0})
	require.NoError(t, err)
	assert.Equal(t, ActionReturn{Value: 1}, action)

	action, err = vm.dispatchOP0(zinstr.Instruction{Count: zinstr.OP0, Opcode: 1})
	require.NoError(t, err)
	assert.Equal(t, ActionReturn{Value: 0}, action)
}

func TestDispatchOP0Quit(t *testing.T) {
	vm, _ := newFixtureVM(t)
	action, err := vm.dispatchOP0(zinstr.Instruction{Count: zinstr.OP0, Opcode: 10})
	require.NoError(t, err)
	assert.Equal(t, ActionQuit{}, action)
}

func TestDispatchOP0NewLine(t *testing.T) {
	vm, host := newFixtureVM(t)
	_, err := vm.dispatchOP0(zinstr.Instruction{Count: zinstr.OP0, Opcode: 11, NextPC: 0x300})
	require.NoError(t, err)
	assert.Equal(t, []string{"\n"}, host.Output)
}

func TestDispatchOP0Verify(t *testing.T) {
	vm, _ := newFixtureVM(t)
	// The fixture's declared file length is 0, so the checksummed region
	// is empty and the computed checksum trivially matches the stored 0.
	action, err := vm.dispatchOP0(zinstr.Instruction{
		Count:    zinstr.OP0,
		Opcode:   13,
		Branches: true,
		Branch:   zinstr.Branch{OnTrue: true, Target: 0x999},
		NextPC:   0x300,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionContinue{PC: 0x999}, action)
}

func TestDispatchOP0UnsupportedOpcode(t *testing.T) {
	vm, _ := newFixtureVM(t)
	_, err := vm.dispatchOP0(zinstr.Instruction{Count: zinstr.OP0, Opcode: 14})
	assert.ErrorIs(t, err, ErrUnsupportedOpcode)
}

func TestDispatchOP1ObjectLinks(t *testing.T) {
	vm, _ := newFixtureVM(t)

	getChild := zinstr.Instruction{
		Count:    zinstr.OP1,
		Opcode:   2,
		Operands: []zinstr.Operand{operandConst(1)},
		Stores:   true,
		StoreVar: 16,
		Branches: true,
		Branch:   zinstr.Branch{OnTrue: true, Target: 0x999},
		NextPC:   0x300,
	}
	action, err := vm.dispatchOP1(getChild)
	require.NoError(t, err)
	assert.Equal(t, ActionContinue{PC: 0x999}, action)
	v, err := vm.readVariable(16, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), v)

	getParent := zinstr.Instruction{
		Count:    zinstr.OP1,
		Opcode:   3,
		Operands: []zinstr.Operand{operandConst(2)},
		Stores:   true,
		StoreVar: 16,
		NextPC:   0x300,
	}
	_, err = vm.dispatchOP1(getParent)
	require.NoError(t, err)
	v, err = vm.readVariable(16, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), v)
}

func TestDispatchOP1IncDec(t *testing.T) {
	vm, _ := newFixtureVM(t)
	require.NoError(t, vm.writeVariable(16, 5, false))

	inc := zinstr.Instruction{
		Count:    zinstr.OP1,
		Opcode:   5,
		Operands: []zinstr.Operand{operandConst(16)},
		NextPC:   0x300,
	}
	_, err := vm.dispatchOP1(inc)
	require.NoError(t, err)
	v, err := vm.readVariable(16, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(6), v)

	dec := zinstr.Instruction{
		Count:    zinstr.OP1,
		Opcode:   6,
		Operands: []zinstr.Operand{operandConst(16)},
		NextPC:   0x300,
	}
	_, err = vm.dispatchOP1(dec)
	require.NoError(t, err)
	v, err = vm.readVariable(16, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(5), v)
}

func TestDispatchOP1Jz(t *testing.T) {
	vm, _ := newFixtureVM(t)
	jzTrue := zinstr.Instruction{
		Count:    zinstr.OP1,
		Opcode:   0,
		Operands: []zinstr.Operand{operandConst(0)},
		Branches: true,
		Branch:   zinstr.Branch{OnTrue: true, Target: 0x999},
		NextPC:   0x300,
	}
	action, err := vm.dispatchOP1(jzTrue)
	require.NoError(t, err)
	assert.Equal(t, ActionContinue{PC: 0x999}, action)

	jzFalse := zinstr.Instruction{
		Count:    zinstr.OP1,
		Opcode:   0,
		Operands: []zinstr.Operand{operandConst(1)},
		Branches: true,
		Branch:   zinstr.Branch{OnTrue: true, Target: 0x999},
		NextPC:   0x300,
	}
	action, err = vm.dispatchOP1(jzFalse)
	require.NoError(t, err)
	assert.Equal(t, ActionContinue{PC: 0x300}, action)
}

func TestDispatchOP1RemoveObj(t *testing.T) {
	vm, _ := newFixtureVM(t)
	remove := zinstr.Instruction{
		Count:    zinstr.OP1,
		Opcode:   9,
		Operands: []zinstr.Operand{operandConst(2)},
		NextPC:   0x300,
	}
	_, err := vm.dispatchOP1(remove)
	require.NoError(t, err)

	obj2, err := vm.Objects.Object(2)
	require.NoError(t, err)
	parent, err := obj2.Parent()
	require.NoError(t, err)
	assert.Equal(t, uint16(0), parent)

	obj1, err := vm.Objects.Object(1)
	require.NoError(t, err)
	child, err := obj1.Child()
	require.NoError(t, err)
	assert.Equal(t, uint16(0), child)
}
