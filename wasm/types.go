package wasm

// Module represents a WebAssembly module under construction. Only the
// sections modbuilder ever populates are represented — a generated
// module always has exactly one local memory, some host function
// imports, and the functions codegen emitted; it never declares a
// table, a global, a start function, an element segment, or a data
// segment, so those sections have no home here.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // type indices for declared functions, parallel to Code
	Memories []MemoryType
	Exports  []Export
	Code     []FuncBody
}

// FuncType represents a WebAssembly function signature with parameter
// and result types.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ValType represents a WebAssembly value type.
// See constants.go for ValI32, ValI64, ValF32, ValF64.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "unknown"
	}
}

// Import represents an imported function. Every host function hostabi
// exposes becomes one of these; this backend never imports a table,
// memory, or global.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported function's signature.
type ImportDesc struct {
	TypeIdx uint32
	Kind    byte // always KindFunc
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes a memory's minimum and (optional) maximum size in
// pages.
type Limits struct {
	Max *uint64
	Min uint64
}

// Export describes an exported item. Kind is KindFunc for every
// exported function and KindMemory for the module's own memory export.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// FuncBody represents a function's local declarations and bytecode.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte // raw code bytes including the trailing end opcode
}

// LocalEntry represents a group of local variables with the same type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// NumImportedFuncs returns the number of imported functions. Every
// import this backend builds is a function import, so this is
// len(m.Imports), but it stays a predicate over Desc.Kind rather than a
// bare length so a future table or memory import wouldn't silently
// miscount.
func (m *Module) NumImportedFuncs() int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindFunc {
			count++
		}
	}
	return count
}

// GetFuncType returns the signature of the function at funcIdx in the
// flat function index space (imports first, then locally defined
// functions).
func (m *Module) GetFuncType(funcIdx uint32) *FuncType {
	numImported := uint32(m.NumImportedFuncs())
	if funcIdx < numImported {
		return m.typeAt(m.Imports[funcIdx].Desc.TypeIdx)
	}
	localIdx := funcIdx - numImported
	if int(localIdx) >= len(m.Funcs) {
		return nil
	}
	return m.typeAt(m.Funcs[localIdx])
}

func (m *Module) typeAt(idx uint32) *FuncType {
	if int(idx) >= len(m.Types) {
		return nil
	}
	return &m.Types[idx]
}
