package main

import (
	"go.bytecodealliance.org/wit"

	"github.com/wasmdb/wasmexec/plan"
)

// witType maps a column type to the wit.Type this backend's own type most
// closely corresponds to, purely so -describe can print a vocabulary a
// component-model reader would recognize instead of this backend's internal
// enum names. Date and DateTime have no wit equivalent; they map to the
// integer width their on-disk encoding actually uses.
func witType(c plan.ColumnType) wit.Type {
	switch c {
	case plan.TypeBool:
		return wit.Bool{}
	case plan.TypeI8:
		return wit.S8{}
	case plan.TypeI16:
		return wit.S16{}
	case plan.TypeI32, plan.TypeDate:
		return wit.S32{}
	case plan.TypeI64, plan.TypeDateTime:
		return wit.S64{}
	case plan.TypeF32:
		return wit.F32{}
	case plan.TypeF64:
		return wit.F64{}
	case plan.TypeString:
		return wit.String{}
	default:
		return wit.String{}
	}
}

// witTypeStr renders t the same way the interactive function browser this
// package's -describe flag is modeled on does.
func witTypeStr(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	default:
		return "unknown"
	}
}
