package zinstr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
	"github.com/kestrelgames/zfic/zinstr"
)

func newCore(t *testing.T, version uint8, code []uint8, codeBase int) *zcore.Core {
	t.Helper()
	image := make([]uint8, 0x200)
	image[0x00] = version
	for i, b := range code {
		image[codeBase+i] = b
	}
	c, err := zcore.Load(image)
	require.NoError(t, err)
	return c
}

func TestDecodeLongFormOP2Add(t *testing.T) {
	// Long form, both operands small constants: opcode byte 0x14 (add),
	// followed by 3 and 4.
	core := newCore(t, 3, []uint8{0x14, 3, 4}, 0x40)
	instr, err := zinstr.Decode(core, zaddr.V3, 0x40)
	require.NoError(t, err)

	assert.Equal(t, zinstr.LongForm, instr.Form)
	assert.Equal(t, zinstr.OP2, instr.Count)
	assert.Equal(t, uint8(0x14), instr.Opcode)
	require.Len(t, instr.Operands, 2)
	assert.Equal(t, zinstr.SmallConstant, instr.Operands[0].Type)
	assert.Equal(t, uint16(3), instr.Operands[0].Value)
	assert.Equal(t, uint16(4), instr.Operands[1].Value)
	assert.True(t, instr.Stores)
	assert.Equal(t, zaddr.ByteAddr(0x44), instr.NextPC) // +3 opcode/operands, +1 store byte
}

func TestDecodeShortFormOP0Rtrue(t *testing.T) {
	core := newCore(t, 3, []uint8{0xb0}, 0x40) // rtrue
	instr, err := zinstr.Decode(core, zaddr.V3, 0x40)
	require.NoError(t, err)

	assert.Equal(t, zinstr.ShortForm, instr.Form)
	assert.Equal(t, zinstr.OP0, instr.Count)
	assert.Equal(t, uint8(0), instr.Opcode)
	assert.Empty(t, instr.Operands)
	assert.False(t, instr.Stores)
	assert.False(t, instr.Branches)
	assert.Equal(t, zaddr.ByteAddr(0x41), instr.NextPC)
}

func TestDecodeShortFormOP1JzBranch(t *testing.T) {
	// jz (1OP:0) on a small-constant operand 0, branch-on-true, single
	// byte offset 10: 0b11_001010 = 0xca. Opcode byte 0x90 selects short
	// form, small-constant operand, opcode 0.
	core := newCore(t, 3, []uint8{0x90, 0, 0xca}, 0x40)
	instr, err := zinstr.Decode(core, zaddr.V3, 0x40)
	require.NoError(t, err)

	assert.Equal(t, zinstr.OP1, instr.Count)
	assert.Equal(t, uint8(0), instr.Opcode)
	require.Len(t, instr.Operands, 1)
	assert.Equal(t, zinstr.SmallConstant, instr.Operands[0].Type)
	assert.True(t, instr.Branches)
	assert.True(t, instr.Branch.OnTrue)
	assert.False(t, instr.Branch.Special)
	assert.Equal(t, zaddr.ByteAddr(0x40+3+10-2), instr.Branch.Target)
}

func TestDecodeVariableFormCall(t *testing.T) {
	// Variable form, opcode 0 (call): 0b111_00000 = 0xe0, types byte
	// 0b00_01_11_11 (large const, small const, omitted, omitted) = 0x1f,
	// then a 2-byte routine address and a 1-byte arg, then a store byte.
	core := newCore(t, 3, []uint8{0xe0, 0x1f, 0x01, 0x00, 7, 16}, 0x40)
	instr, err := zinstr.Decode(core, zaddr.V3, 0x40)
	require.NoError(t, err)

	assert.Equal(t, zinstr.VarForm, instr.Form)
	assert.Equal(t, zinstr.VAR, instr.Count)
	assert.Equal(t, uint8(0), instr.Opcode)
	require.Len(t, instr.Operands, 2)
	assert.Equal(t, zinstr.LargeConstant, instr.Operands[0].Type)
	assert.Equal(t, uint16(0x0100), instr.Operands[0].Value)
	assert.Equal(t, zinstr.SmallConstant, instr.Operands[1].Type)
	assert.Equal(t, uint16(7), instr.Operands[1].Value)
	assert.True(t, instr.Stores)
	assert.Equal(t, uint8(16), instr.StoreVar)
}

func TestDecodeOP2FormWithVariableOperands(t *testing.T) {
	// Variable-form encoding of a 2OP opcode: je (opcode 1), top two bits
	// 11, bit 5 clear -> OP2: 0b11_000001 = 0xc1. Types byte: both
	// small constants, then omitted: 0b01_01_11_11 = 0x5f.
	core := newCore(t, 3, []uint8{0xc1, 0x5f, 5, 5}, 0x40)
	instr, err := zinstr.Decode(core, zaddr.V3, 0x40)
	require.NoError(t, err)

	assert.Equal(t, zinstr.OP2, instr.Count)
	assert.Equal(t, uint8(1), instr.Opcode)
	require.Len(t, instr.Operands, 2)
	assert.True(t, instr.Branches)
}

func TestDecodeBranchTwoByteOffset(t *testing.T) {
	// jz with a 2-byte branch: first byte bit7=1 (on true), bit6=0 (two
	// byte form); second byte completes a 14-bit offset of 300.
	raw := uint16(300)
	first := uint8(0x80) | uint8(raw>>8)
	second := uint8(raw)
	core := newCore(t, 3, []uint8{0x90, 0, first, second}, 0x40)
	instr, err := zinstr.Decode(core, zaddr.V3, 0x40)
	require.NoError(t, err)

	assert.True(t, instr.Branches)
	assert.Equal(t, zaddr.ByteAddr(0x40+4+300-2), instr.Branch.Target)
}

func TestDecodeBranchSpecialReturnFalse(t *testing.T) {
	// Offset 0 is the "branch means return false" special case.
	core := newCore(t, 3, []uint8{0x90, 0, 0x80}, 0x40)
	instr, err := zinstr.Decode(core, zaddr.V3, 0x40)
	require.NoError(t, err)

	assert.True(t, instr.Branch.Special)
	assert.Equal(t, uint16(0), instr.Branch.Value)
}

func TestDecodeNotVsCall1nVersionGate(t *testing.T) {
	// 1OP:15 short form with a small-constant operand: 0x9f.
	code := []uint8{0x9f, 5}

	v3Core := newCore(t, 3, code, 0x40)
	v3Instr, err := zinstr.Decode(v3Core, zaddr.V3, 0x40)
	require.NoError(t, err)
	assert.True(t, v3Instr.Stores, "not (V1-4) stores its result")

	v5Core := newCore(t, 5, code, 0x40)
	v5Instr, err := zinstr.Decode(v5Core, zaddr.V5, 0x40)
	require.NoError(t, err)
	assert.False(t, v5Instr.Stores, "call_1n (V5+) doesn't store")
}

func TestDecodeSreadStoreVersionGate(t *testing.T) {
	// VAR:4 (sread/aread), variable form, types byte all omitted after
	// one operand: 0xe4 opcode byte, 0x3f types (one small const, rest
	// omitted would need 0b01_11_11_11 = 0x7f); keep it simple with two
	// small-constant operands: 0b01_01_11_11 = 0x5f.
	code := []uint8{0xe4, 0x5f, 10, 20}

	v3Core := newCore(t, 3, code, 0x40)
	v3Instr, err := zinstr.Decode(v3Core, zaddr.V3, 0x40)
	require.NoError(t, err)
	assert.False(t, v3Instr.Stores, "sread has no store byte before V5")

	v5Core := newCore(t, 5, code, 0x40)
	v5Instr, err := zinstr.Decode(v5Core, zaddr.V5, 0x40)
	require.NoError(t, err)
	assert.True(t, v5Instr.Stores, "aread stores the terminating character")
}

func TestDecodeExtendedForm(t *testing.T) {
	// 0xbe prefix, ext opcode 9 (save_undo), no operands (types 0xff).
	code := []uint8{0xbe, 0x09, 0xff}
	core := newCore(t, 5, code, 0x40)
	instr, err := zinstr.Decode(core, zaddr.V5, 0x40)
	require.NoError(t, err)

	assert.Equal(t, zinstr.ExtForm, instr.Form)
	assert.Equal(t, zinstr.EXT, instr.Count)
	assert.Equal(t, uint8(9), instr.Opcode)
	assert.Empty(t, instr.Operands)
	assert.True(t, instr.Stores)
}
