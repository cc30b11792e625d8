// Package wasm provides the WebAssembly binary format layer the rest of
// this backend builds on: modbuilder assembles a Module in memory and
// calls Encode to produce the bytes the engine driver hands to wazero.
// codegen emits Instruction values directly into function bodies rather
// than going through any higher-level IR.
//
// This is an encoder only, scoped to the instruction and section surface
// this backend's own code generator actually emits: core value types
// (i32, i64, f32, f64), scalar locals, calls, linear memory including
// bulk memory's memory.copy (the unrolled row-copy codegen relies on
// it), and function import/export. Nothing in this backend parses a
// Wasm module back from bytes — the only module this package ever sees
// is the one modbuilder just built — so there is no decoder here, and
// none of the GC, SIMD, exception-handling, tail-call, or threads
// proposals are represented: this backend's generated modules never use
// them, and carrying their opcode tables and immediate encodings would
// just be dead weight validated by nothing.
//
// # Module Structure
//
//	module.Types      []FuncType    // Function signatures
//	module.Funcs      []uint32      // Type indices for functions
//	module.Memories    []MemoryType // Memory definitions
//	module.Imports    []Import      // Imported definitions
//	module.Exports    []Export      // Exported definitions
//	module.Code       []FuncBody    // Function bodies
//
// # Encoding
//
//	data := module.Encode()
//
// # Validation
//
// Validate checks the structural invariants Encode assumes hold: type
// indices in range, export names unique, code/function counts matched,
// memory limits within range.
//
//	if err := module.Validate(); err != nil {
//	    log.Printf("invalid module: %v", err)
//	}
//
// # Instructions
//
// Instruction values build function bodies; EncodeInstructions turns a
// slice of them into raw bytecode ready to drop into a FuncBody:
//
//	body := wasm.EncodeInstructions(instrs)
package wasm
