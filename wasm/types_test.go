package wasm_test

import (
	"testing"

	"github.com/wasmdb/wasmexec/wasm"
)

func TestValTypeString(t *testing.T) {
	tests := []struct {
		want string
		v    wasm.ValType
	}{
		{"i32", wasm.ValI32},
		{"i64", wasm.ValI64},
		{"f32", wasm.ValF32},
		{"f64", wasm.ValF64},
		{"unknown", wasm.ValType(0x00)},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("ValType(%x).String() = %q, want %q", byte(tt.v), got, tt.want)
		}
	}
}

func TestModule_NumImportedFuncs(t *testing.T) {
	m := &wasm.Module{
		Imports: []wasm.Import{
			{Module: "env", Name: "insist", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 0}},
			{Module: "env", Name: "throw", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 0}},
		},
	}
	if got := m.NumImportedFuncs(); got != 2 {
		t.Errorf("NumImportedFuncs() = %d, want 2", got)
	}
}

func TestModule_GetFuncType_Imported(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32}, Results: nil},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "insist", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 0}},
		},
	}
	ft := m.GetFuncType(0)
	if ft == nil || len(ft.Params) != 1 || ft.Params[0] != wasm.ValI32 {
		t.Fatalf("GetFuncType(0) = %+v, want single i32 param", ft)
	}
}

func TestModule_GetFuncType_Local(t *testing.T) {
	m := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: nil, Results: []wasm.ValType{wasm.ValI32}},
		},
		Funcs: []uint32{0},
	}
	ft := m.GetFuncType(0)
	if ft == nil || len(ft.Results) != 1 || ft.Results[0] != wasm.ValI32 {
		t.Fatalf("GetFuncType(0) = %+v, want single i32 result", ft)
	}
}

func TestModule_GetFuncType_OutOfRange(t *testing.T) {
	m := &wasm.Module{}
	if ft := m.GetFuncType(0); ft != nil {
		t.Errorf("GetFuncType(0) on empty module = %+v, want nil", ft)
	}
}
