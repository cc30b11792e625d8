package wasm_test

import (
	"bytes"
	"testing"

	"github.com/wasmdb/wasmexec/wasm"
)

func TestEncode_MagicAndVersion(t *testing.T) {
	data := (&wasm.Module{}).Encode()
	want := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(data, want) {
		t.Errorf("empty module encoded as %x, want %x", data, want)
	}
}

func TestEncode_TypeSection(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
		},
	}
	data := m.Encode()
	// section id 1, byte length 6: count=1, func byte, 1 param i32, 1 result i32
	want := []byte{wasm.SectionType, 0x06, 0x01, wasm.FuncTypeByte, 0x01, byte(wasm.ValI32), 0x01, byte(wasm.ValI32)}
	if !bytes.Contains(data, want) {
		t.Errorf("encoded module %x does not contain expected type section %x", data, want)
	}
}

func TestEncode_ImportSection(t *testing.T) {
	m := &wasm.Module{
		Types:   []wasm.FuncType{{}},
		Imports: []wasm.Import{{Module: "env", Name: "throw", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 0}}},
	}
	data := m.Encode()
	if !bytes.Contains(data, []byte("env")) || !bytes.Contains(data, []byte("throw")) {
		t.Errorf("encoded module missing import module/name strings: %x", data)
	}
}

func TestEncode_MemorySection(t *testing.T) {
	m := &wasm.Module{
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
	}
	data := m.Encode()
	want := []byte{wasm.SectionMemory, 0x03, 0x01, wasm.LimitsNoMax, 0x01}
	if !bytes.Contains(data, want) {
		t.Errorf("encoded module %x does not contain expected memory section %x", data, want)
	}
}

func TestEncode_MemorySectionWithMax(t *testing.T) {
	max := uint64(4)
	m := &wasm.Module{
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1, Max: &max}}},
	}
	data := m.Encode()
	want := []byte{wasm.SectionMemory, 0x04, 0x01, wasm.LimitsHasMax, 0x01, 0x04}
	if !bytes.Contains(data, want) {
		t.Errorf("encoded module %x does not contain expected memory section %x", data, want)
	}
}

func TestEncode_ExportSection(t *testing.T) {
	m := &wasm.Module{
		Exports: []wasm.Export{{Name: "memory", Kind: wasm.KindMemory, Idx: 0}},
	}
	data := m.Encode()
	if !bytes.Contains(data, []byte("memory")) {
		t.Errorf("encoded module missing export name: %x", data)
	}
}

func TestEncode_CodeSection(t *testing.T) {
	code := wasm.EncodeInstructions([]wasm.Instruction{
		{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: 1}},
	})
	code = append(code, wasm.OpEnd)
	m := &wasm.Module{
		Types: []wasm.FuncType{{Results: []wasm.ValType{wasm.ValI32}}},
		Funcs: []uint32{0},
		Code: []wasm.FuncBody{
			{Locals: []wasm.LocalEntry{{Count: 2, ValType: wasm.ValI32}}, Code: code},
		},
	}
	data := m.Encode()
	if !bytes.Contains(data, code) {
		t.Errorf("encoded module does not contain generated function body bytes")
	}
}

func TestEncode_OmitsEmptySections(t *testing.T) {
	data := (&wasm.Module{}).Encode()
	if len(data) != 8 {
		t.Errorf("empty module encoded to %d bytes, want 8 (just magic+version)", len(data))
	}
}
