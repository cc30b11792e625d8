package wasm

import "bytes"

// Instruction represents one instruction in a function body, ready to
// be encoded to bytecode. There is no decoder: this backend only ever
// builds instructions itself, in codegen, and encodes them — it never
// reads an instruction stream back out of a module.
type Instruction struct {
	Imm    interface{}
	Opcode byte
}

// CallImm holds the function index for call.
type CallImm struct {
	FuncIdx uint32
}

// LocalImm holds the local index for local.get, local.set, local.tee.
type LocalImm struct {
	LocalIdx uint32
}

// GlobalImm holds the global index for global.get and global.set.
type GlobalImm struct {
	GlobalIdx uint32
}

// MemoryImm holds the alignment hint and offset for a load or store.
type MemoryImm struct {
	Offset uint64
	Align  uint32
}

// I32Imm holds the constant value for i32.const.
type I32Imm struct {
	Value int32
}

// I64Imm holds the constant value for i64.const.
type I64Imm struct {
	Value int64
}

// F32Imm holds the constant value for f32.const.
type F32Imm struct {
	Value float32
}

// F64Imm holds the constant value for f64.const.
type F64Imm struct {
	Value float64
}

// MiscImm holds the bulk-memory sub-opcode and its operands for a
// 0xFC-prefixed instruction. Operands holds whatever index operands
// that sub-opcode takes, in encoding order — for memory.copy, the
// destination and source memory indices (always 0,0 for this
// single-memory backend).
type MiscImm struct {
	Operands  []uint32
	SubOpcode uint32
}

// EncodeInstructions encodes a sequence of instructions to raw
// bytecode, the form a FuncBody.Code expects.
func EncodeInstructions(instrs []Instruction) []byte {
	var buf bytes.Buffer
	for _, instr := range instrs {
		encodeInstruction(&buf, instr)
	}
	return buf.Bytes()
}

func encodeInstruction(buf *bytes.Buffer, instr Instruction) {
	buf.WriteByte(instr.Opcode)
	switch instr.Opcode {
	case OpCall:
		imm := instr.Imm.(CallImm)
		WriteLEB128u(buf, imm.FuncIdx)
	case OpLocalGet, OpLocalSet, OpLocalTee:
		imm := instr.Imm.(LocalImm)
		WriteLEB128u(buf, imm.LocalIdx)
	case OpGlobalGet, OpGlobalSet:
		imm := instr.Imm.(GlobalImm)
		WriteLEB128u(buf, imm.GlobalIdx)
	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store:
		imm := instr.Imm.(MemoryImm)
		WriteLEB128u(buf, imm.Align)
		WriteLEB128u64(buf, imm.Offset)
	case OpMemorySize, OpMemoryGrow:
		buf.WriteByte(0x00) // single-memory backend: memory index is always 0
	case OpI32Const:
		WriteLEB128s(buf, instr.Imm.(I32Imm).Value)
	case OpI64Const:
		WriteLEB128s64(buf, instr.Imm.(I64Imm).Value)
	case OpF32Const:
		WriteFloat32(buf, instr.Imm.(F32Imm).Value)
	case OpF64Const:
		WriteFloat64(buf, instr.Imm.(F64Imm).Value)
	case OpPrefixMisc:
		encodeMisc(buf, instr.Imm.(MiscImm))
	default:
		// Unreachable, Nop, End, Return, Drop, Select, and every
		// comparison/arithmetic opcode are bare — no immediate follows
		// the opcode byte.
	}
}

func encodeMisc(buf *bytes.Buffer, imm MiscImm) {
	WriteLEB128u(buf, imm.SubOpcode)
	switch imm.SubOpcode {
	case MiscMemoryInit:
		WriteLEB128u(buf, imm.Operands[0]) // data index
		buf.WriteByte(0x00)                // memory index
	case MiscDataDrop:
		WriteLEB128u(buf, imm.Operands[0]) // data index
	case MiscMemoryCopy, MiscMemoryFill:
		for _, op := range imm.Operands {
			WriteLEB128u(buf, op)
		}
	}
}
