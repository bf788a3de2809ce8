package zinstr

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
)

// Form is the opcode encoding shape a first opcode octet selects.
type Form int

const (
	LongForm Form = iota
	ShortForm
	VarForm
	ExtForm
)

// OperandCount groups opcodes by how many operands their form admits, which
// is also how the dispatch table in zvm is keyed (alongside Form).
type OperandCount int

const (
	OP0 OperandCount = iota
	OP1
	OP2
	VAR
	EXT
)

// OperandType is the 2-bit tag preceding each operand in variable/extended
// form, or implied by the opcode byte itself in long/short form.
type OperandType int

const (
	LargeConstant OperandType = 0b00
	SmallConstant OperandType = 0b01
	Variable      OperandType = 0b10
	Omitted       OperandType = 0b11
)

// Operand is one decoded operand: its type tag and raw 16-bit value. For
// Variable operands, Value holds the variable number (0 = stack, 1-15 =
// local, 16-255 = global), not the variable's contents - resolving that
// requires the call-frame state that only zvm has.
type Operand struct {
	Type  OperandType
	Value uint16
}

// Instruction is the fully decoded shape of one opcode: its form, operand
// count family, opcode number, operands, and (when present) the store
// variable and branch descriptor that follow the operands. PC is the byte
// address the opcode started at; NextPC is the address immediately after
// everything this instruction consumed (operands, store byte, branch
// bytes) - dispatch may still move the program counter further (jumps,
// calls, returns).
type Instruction struct {
	PC           zaddr.ByteAddr
	NextPC       zaddr.ByteAddr
	Form         Form
	Count        OperandCount
	Opcode       uint8
	Operands     []Operand
	Stores       bool
	StoreVar     uint8
	Branches     bool
	Branch       Branch
}

// Branch is the decoded 1- or 2-octet branch postfix. A branch with Special
// set is the "return false"/"return true" form (target 0 or 1), not a jump.
type Branch struct {
	OnTrue  bool
	Special bool
	Value   uint16 // meaningful only when Special is set: 0 or 1
	Target  zaddr.ByteAddr
}

// storeOps and branchOps classify every opcode that consumes a
// store-variable or branch postfix, keyed the same way the dispatch table
// in zvm is: (count, opcode). This table is the Z-Machine Standard's
// "store"/"branch" column, reproduced directly rather than inferred.
type opKey struct {
	count  OperandCount
	opcode uint8
}

var storeOps = map[opKey]bool{
	{OP1, 1}: true, {OP1, 2}: true, {OP1, 3}: true, {OP1, 4}: true, {OP1, 8}: true,
	{OP1, 14}: true, {OP1, 15}: true,
	{OP2, 8}: true, {OP2, 9}: true, {OP2, 15}: true, {OP2, 16}: true,
	{OP2, 17}: true, {OP2, 18}: true, {OP2, 19}: true, {OP2, 20}: true,
	{OP2, 21}: true, {OP2, 22}: true, {OP2, 23}: true, {OP2, 24}: true,
	{OP2, 25}: true,
	{VAR, 0}: true, {VAR, 7}: true, {VAR, 12}: true, {VAR, 22}: true,
	{VAR, 23}: true, {VAR, 24}: true,
}

var branchOps = map[opKey]bool{
	{OP0, 5}: true, {OP0, 6}: true, {OP0, 13}: true, {OP0, 15}: true,
	{OP1, 0}: true, {OP1, 1}: true, {OP1, 2}: true,
	{OP2, 1}: true, {OP2, 2}: true, {OP2, 3}: true, {OP2, 4}: true,
	{OP2, 5}: true, {OP2, 6}: true, {OP2, 7}: true, {OP2, 10}: true,
	{VAR, 23}: true, {VAR, 31}: true,
}

// extStoreOps and extBranchOps cover the EXT (0xbe-prefixed) family, keyed
// purely by opcode number since EXT opcodes don't overlap any VAR numbers
// in this table.
var extStoreOps = map[uint8]bool{
	0x00: true, 0x01: true, 0x02: true, 0x03: true, 0x04: true,
	0x09: true, 0x0a: true, 0x0c: true, 0x10: true, 0x11: true,
	0x12: true, 0x13: true, 0x14: true, 0x15: true, 0x16: true, 0x19: true,
}

var extBranchOps = map[uint8]bool{
	0x06: true, 0x18: true, 0x1b: true,
}

// Decode reads one instruction at pc: the opcode byte, its form, operands,
// and any store/branch postfix. It does not resolve Variable operands or
// act on the branch/store - that is dispatch's job.
func Decode(core *zcore.Core, version zaddr.Version, pc zaddr.ByteAddr) (Instruction, error) {
	d := &decoder{core: core, version: version, pc: pc}
	instr, err := d.decode()
	if err != nil {
		return Instruction{}, err
	}
	instr.PC = pc
	instr.NextPC = d.pc
	return instr, nil
}

type decoder struct {
	core    *zcore.Core
	version zaddr.Version
	pc      zaddr.ByteAddr
}

func (d *decoder) readByte() (uint8, error) {
	b, err := d.core.ByteAt(d.pc)
	if err != nil {
		return 0, fmt.Errorf("zinstr: %w", err)
	}
	d.pc = d.pc.Add(1)
	return b, nil
}

func (d *decoder) readWord() (uint16, error) {
	w, err := d.core.WordAt(d.pc)
	if err != nil {
		return 0, fmt.Errorf("zinstr: %w", err)
	}
	d.pc = d.pc.Add(2)
	return w, nil
}

func (d *decoder) decode() (Instruction, error) {
	opcodeByte, err := d.readByte()
	if err != nil {
		return Instruction{}, err
	}

	var instr Instruction

	switch {
	case opcodeByte == 0xbe && d.version >= zaddr.V5:
		ext, err := d.readByte()
		if err != nil {
			return Instruction{}, err
		}
		instr.Form = ExtForm
		instr.Count = EXT
		instr.Opcode = ext
		if err := d.readVariableOperands(&instr); err != nil {
			return Instruction{}, err
		}
		instr.Stores = extStoreOps[instr.Opcode]
		instr.Branches = extBranchOps[instr.Opcode]

	case opcodeByte>>6 == 0b11: // variable form
		instr.Form = VarForm
		instr.Opcode = opcodeByte & 0b1_1111
		if (opcodeByte>>5)&1 == 0 {
			instr.Count = OP2
		} else {
			instr.Count = VAR
		}
		if err := d.readVariableOperands(&instr); err != nil {
			return Instruction{}, err
		}
		instr.Stores = storeOps[opKey{instr.Count, instr.Opcode}]
		instr.Branches = branchOps[opKey{instr.Count, instr.Opcode}]
		if instr.Count == VAR && instr.Opcode == 4 && d.version >= zaddr.V5 {
			// sread/aread gained a store (the terminating character)
			// in V5+; V1-4 have no store byte at all.
			instr.Stores = true
		}

	case opcodeByte>>6 == 0b10: // short form
		instr.Form = ShortForm
		instr.Opcode = opcodeByte & 0b1111
		operandType := OperandType((opcodeByte >> 4) & 0b11)
		if operandType == Omitted {
			instr.Count = OP0
		} else {
			instr.Count = OP1
			operand, err := d.readOperand(operandType)
			if err != nil {
				return Instruction{}, err
			}
			instr.Operands = append(instr.Operands, operand)
		}
		instr.Stores = storeOps[opKey{instr.Count, instr.Opcode}]
		instr.Branches = branchOps[opKey{instr.Count, instr.Opcode}]
		if instr.Count == OP1 && instr.Opcode == 15 && d.version >= zaddr.V5 {
			// 1OP:15 is "not" (stores) on V1-4 but "call_1n" (doesn't
			// store) on V5+ - the one opcode number the standard
			// overloads across versions for this family.
			instr.Stores = false
		}

	default: // long form, top bit of opcodeByte is 0
		instr.Form = LongForm
		instr.Count = OP2
		instr.Opcode = opcodeByte & 0b1_1111

		op1Type := SmallConstant
		if (opcodeByte>>6)&1 == 1 {
			op1Type = Variable
		}
		op2Type := SmallConstant
		if (opcodeByte>>5)&1 == 1 {
			op2Type = Variable
		}
		for _, t := range []OperandType{op1Type, op2Type} {
			operand, err := d.readOperand(t)
			if err != nil {
				return Instruction{}, err
			}
			instr.Operands = append(instr.Operands, operand)
		}
		instr.Stores = storeOps[opKey{OP2, instr.Opcode}]
		instr.Branches = branchOps[opKey{OP2, instr.Opcode}]
	}

	if instr.Stores {
		v, err := d.readByte()
		if err != nil {
			return Instruction{}, err
		}
		instr.StoreVar = v
	}

	if instr.Branches {
		branch, err := d.readBranch()
		if err != nil {
			return Instruction{}, err
		}
		instr.Branch = branch
	}

	return instr, nil
}

func (d *decoder) readOperand(t OperandType) (Operand, error) {
	switch t {
	case LargeConstant:
		v, err := d.readWord()
		return Operand{Type: t, Value: v}, err
	case SmallConstant, Variable:
		v, err := d.readByte()
		return Operand{Type: t, Value: uint16(v)}, err
	default:
		return Operand{Type: t}, nil
	}
}

// readVariableOperands decodes the operand-types octet(s) preceding the
// operands of a VAR/EXT-form instruction. call_vs2/call_vn2 (VAR opcodes 12
// and 26) take a second types octet supporting up to 8 operands; every
// other VAR/EXT opcode takes one types octet and up to 4 operands.
func (d *decoder) readVariableOperands(instr *Instruction) error {
	typesByte, err := d.readByte()
	if err != nil {
		return err
	}

	extendedCall := instr.Form != ExtForm && (instr.Opcode == 12 || instr.Opcode == 26) && instr.Count == VAR
	maxOperands := 4
	var typesByte2 uint8
	if extendedCall {
		typesByte2, err = d.readByte()
		if err != nil {
			return err
		}
		maxOperands = 8
	}

	for i := 0; i < maxOperands; i++ {
		var t OperandType
		if i < 4 {
			t = OperandType((typesByte >> (2 * (3 - i))) & 0b11)
		} else {
			t = OperandType((typesByte2 >> (2 * (7 - i))) & 0b11)
		}
		if t == Omitted {
			break
		}
		operand, err := d.readOperand(t)
		if err != nil {
			return err
		}
		instr.Operands = append(instr.Operands, operand)
	}
	return nil
}

// readBranch decodes the 1- or 2-octet branch postfix. Target is only
// meaningful when Special is false; the caller applies the jump formula
// (pc_after_branch_bytes + offset - 2) using NextPC, since Decode hasn't
// finished building NextPC until after this returns.
func (d *decoder) readBranch() (Branch, error) {
	first, err := d.readByte()
	if err != nil {
		return Branch{}, err
	}

	b := Branch{OnTrue: (first>>7)&1 == 1}
	singleByte := (first>>6)&1 == 1
	var offset int32

	if singleByte {
		offset = int32(first & 0b0011_1111)
	} else {
		second, err := d.readByte()
		if err != nil {
			return Branch{}, err
		}
		raw := uint16(first&0b0011_1111)<<8 | uint16(second)
		// sign-extend the 14-bit field
		offset = int32(int16(raw<<2) >> 2)
	}

	if offset == 0 || offset == 1 {
		b.Special = true
		b.Value = uint16(offset)
		return b, nil
	}

	b.Target = d.pc.Add(uint32(offset - 2))
	return b, nil
}
