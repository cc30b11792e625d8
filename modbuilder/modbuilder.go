// Package modbuilder accumulates the pieces a query's generated module is
// made of — imports, exports, string literals, base-table placements, the
// message table, and the function bodies codegen emits — and
// turns them into validated Wasm bytes.
package modbuilder

import (
	"sort"

	"github.com/wasmdb/wasmexec/config"
	"github.com/wasmdb/wasmexec/errors"
	"github.com/wasmdb/wasmexec/wasm"
	"github.com/wasmdb/wasmexec/wasmctx"
)

// hostImport is one function the generated module imports from "env".
type hostImport struct {
	name    string
	params  []wasm.ValType
	results []wasm.ValType
}

// Builder accumulates module contents during code generation.
type Builder struct {
	imports []hostImport
	funcs   []funcDef

	literals     map[string]uint32 // set of deduplicated literals; PlaceLiterals computes their offsets
	literalOrder []string

	tables map[string]uint32 // table name -> arena offset, filled by the caller via MapTable

	messages []wasmctx.Message
}

type funcDef struct {
	name    string
	params  []wasm.ValType
	results []wasm.ValType
	locals  []wasm.ValType
	code    []wasm.Instruction
	export  bool
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{
		literals: make(map[string]uint32),
		tables:   make(map[string]uint32),
	}
}

// ImportHostFunc declares an import from the "env" module with the given
// signature. Re-declaring the same name is a no-op.
func (b *Builder) ImportHostFunc(name string, params, results []wasm.ValType) {
	for _, im := range b.imports {
		if im.name == name {
			return
		}
	}
	b.imports = append(b.imports, hostImport{name: name, params: params, results: results})
}

// FuncIndex returns the function-index-space slot a previously imported or
// defined function occupies: imported functions first in declaration order,
// then local functions, matching the layout Build assigns.
func (b *Builder) FuncIndex(name string) (uint32, error) {
	for i, im := range b.imports {
		if im.name == name {
			return uint32(i), nil
		}
	}
	for i, fn := range b.funcs {
		if fn.name == name {
			return uint32(len(b.imports) + i), nil
		}
	}
	return 0, errors.NotFound(errors.PhaseModuleBuild, "function", name)
}

// DefineFunc appends a function body. If export is true it is exported
// under name.
func (b *Builder) DefineFunc(name string, params, results, locals []wasm.ValType, code []wasm.Instruction, export bool) {
	b.funcs = append(b.funcs, funcDef{name: name, params: params, results: results, locals: locals, code: code, export: export})
}

// AddMessage appends a {file,line,msg} entry and returns its id, matching
// the id space insist/throw address into at runtime.
func (b *Builder) AddMessage(file string, line uint32, msg string) int64 {
	b.messages = append(b.messages, wasmctx.Message{File: file, Line: line, Msg: msg})
	return int64(len(b.messages) - 1)
}

// Messages returns the accumulated message table, to be installed on the
// query's wasmctx.Context before instantiation.
func (b *Builder) Messages() []wasmctx.Message { return b.messages }

// InternLiteral records occurrence of a constant string, once per distinct
// value. Arena placement happens later in PlaceLiterals, since the offsets
// depend on how much of the arena the table mapper already used.
func (b *Builder) InternLiteral(s string) {
	if _, ok := b.literals[s]; ok {
		return
	}
	b.literals[s] = 0
	b.literalOrder = append(b.literalOrder, s)
}

// MapTable records a base table's arena placement, readable back through
// TableOffset. Codegen does not consult it: it takes table offsets and row
// counts from the query's wasmctx.Context.
func (b *Builder) MapTable(name string, offset uint32) {
	b.tables[name] = offset
}

// TableOffset returns a previously mapped table's arena offset.
func (b *Builder) TableOffset(name string) (uint32, bool) {
	off, ok := b.tables[name]
	return off, ok
}

// PlaceLiterals bump-allocates each deduplicated literal NUL-terminated into
// the arena starting at base, returning the literal->offset map and the
// concatenated bytes to write at base (§4.4's "Constant reuse").
func (b *Builder) PlaceLiterals(base uint32) (map[string]uint32, []byte) {
	offsets := make(map[string]uint32, len(b.literalOrder))

	// Deterministic order keeps generated modules reproducible across
	// runs for the same plan.
	order := append([]string(nil), b.literalOrder...)
	sort.Strings(order)

	var data []byte
	cursor := base
	for _, lit := range order {
		offsets[lit] = cursor
		data = append(data, []byte(lit)...)
		data = append(data, 0)
		cursor += uint32(len(lit)) + 1
	}
	return offsets, data
}

// Literals returns the interned literals in first-seen order.
func (b *Builder) Literals() []string { return b.literalOrder }

// Build assembles the accumulated imports/functions/exports into a
// wasm.Module with a single local memory export (aliased onto the query's
// arena by the engine driver at instantiation time), validates it, and
// returns the encoded bytes.
func (b *Builder) Build(cfg config.Options) ([]byte, error) {
	m := &wasm.Module{}

	// Type section: one entry per distinct signature, shared between
	// imports and local functions by index.
	typeOf := func(params, results []wasm.ValType) uint32 {
		for i, t := range m.Types {
			if sameTypes(t.Params, params) && sameTypes(t.Results, results) {
				return uint32(i)
			}
		}
		m.Types = append(m.Types, wasm.FuncType{Params: params, Results: results})
		return uint32(len(m.Types) - 1)
	}

	// The generated module owns its memory as a local declaration, exported
	// as "memory": wazero's experimental.MemoryAllocator hook only fires for
	// memories the instantiated module itself defines, letting the engine
	// driver alias the query's arena bytes onto it directly at instantiation
	// rather than importing a pre-existing one.
	m.Memories = append(m.Memories, wasm.MemoryType{Limits: wasm.Limits{Min: 1}})
	m.Exports = append(m.Exports, wasm.Export{Name: "memory", Kind: wasm.KindMemory, Idx: 0})

	for _, im := range b.imports {
		ti := typeOf(im.params, im.results)
		m.Imports = append(m.Imports, wasm.Import{
			Module: "env",
			Name:   im.name,
			Desc:   wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: ti},
		})
	}

	for _, fn := range b.funcs {
		ti := typeOf(fn.params, fn.results)
		m.Funcs = append(m.Funcs, ti)

		var locals []wasm.LocalEntry
		for _, lt := range fn.locals {
			locals = append(locals, wasm.LocalEntry{Count: 1, ValType: lt})
		}
		code := wasm.EncodeInstructions(fn.code)
		code = append(code, 0x0B) // end
		m.Code = append(m.Code, wasm.FuncBody{Locals: locals, Code: code})

		if fn.export {
			funcIdx := uint32(m.NumImportedFuncs() + len(m.Code) - 1)
			m.Exports = append(m.Exports, wasm.Export{Name: fn.name, Kind: wasm.KindFunc, Idx: funcIdx})
		}
	}

	if err := m.Validate(); err != nil {
		dumpModule(m)
		return nil, errors.ValidationFailed(err.Error())
	}

	data := m.Encode()

	if cfg.WasmDump {
		dumpModule(m)
	}

	return data, nil
}

func sameTypes(a, b []wasm.ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
