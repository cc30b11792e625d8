// Package wasmexec bridges a query planner's operator tree to a sandboxed
// WebAssembly execution engine.
//
// A query plan is lowered to a Wasm module by codegen, built by modbuilder,
// and run to completion inside a wazero-backed engine by enginedriver, with
// the guest and host sharing linear memory through an aliased arena instead
// of copying data across the sandbox boundary.
//
// # Architecture Overview
//
//	wasmexec/            root package: documentation only
//	├── arena/           VM memory reservation, bump allocation, guard pages
//	├── wasmctx/         per-query contexts and the registry of live ones
//	├── hostabi/         host callback table (print, insist, throw, index scans, ...)
//	├── modbuilder/      accumulates imports/exports/functions and encodes a module
//	├── codegen/         lowers a plan.Operator tree into a module body
//	├── enginedriver/    wraps wazero: compile, alias memory, instantiate, call, dispose
//	├── resultset/       decodes rows out of the aliased result buffer
//	├── inspector/       optional Chrome DevTools Protocol debug channel
//	├── config/          runtime options (optimization level, guard pages, CDT port, ...)
//	├── plan/            operator tree interfaces consumed from the planner
//	├── catalog/         catalog interfaces consumed from the storage layer
//	├── wasm/            low-level Wasm binary encoding primitives
//	└── errors/          structured error types shared by every package
//
// # Query Lifecycle
//
//	qctx := wasmctx.New(id, a, p, cfg, layout)
//	qctx.MapTable(name, tableOffset, rows)
//
//	mb := modbuilder.New()
//	if _, err := codegen.Generate(mb, qctx); err != nil { ... }
//
//	registry := wasmctx.NewRegistry()
//	driver, err := enginedriver.New(ctx, cfg, registry, resultset.New(), logger)
//	if err != nil { ... }
//	defer driver.Close(ctx)
//
//	// Execute registers qctx, runs main, and disposes qctx again.
//	result, err := driver.Execute(ctx, registry, enginedriver.Query{Context: qctx, Builder: mb})
//
// # Memory Model
//
// The host reserves a single virtual memory region per query context and
// exposes it to the guest as Wasm linear memory via wazero's
// experimental.MemoryAllocator, so host and guest read and write the same
// bytes with no copy at the call boundary. See arena for the bump allocator
// and guard-page policy.
//
// # Concurrency
//
// One query occupies the engine exclusively for the lifetime of its call:
// compile, instantiate, and the guest's main entry point all run under a
// single held lock. There is no cross-query concurrency within one backend
// instance and no cancellation once main has started.
package wasmexec
