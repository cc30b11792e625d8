// Package hostabi implements the host-side half of the guest/host ABI: the
// callback table a generated module imports for tracing, assertions,
// exceptions, result emission, and indexed lookups.
//
// Each callback receives only the module id; it recovers per-query state
// through a wasmctx.Registry. Index callbacks are dispatched through a
// tagged table keyed by (catalog.IndexKind, catalog.KeyType) rather than an
// open-ended runtime type switch, per the polymorphic-callback design note.
package hostabi

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wasmdb/wasmexec/catalog"
	"github.com/wasmdb/wasmexec/errors"
	"github.com/wasmdb/wasmexec/wasmctx"
)

// ModuleName is the import module name every guest-visible host function is
// registered under.
const ModuleName = "env"

// ResultSetSink is implemented by the result-set reader; read_result_set
// dispatches into it without hostabi importing the resultset package (which
// itself depends on plan/catalog, not hostabi).
type ResultSetSink interface {
	ReadResultSet(ctx *wasmctx.Context, offset, count uint32) error
}

// Table builds and installs the host callback table into a wazero
// HostModuleBuilder.
type Table struct {
	Registry  *wasmctx.Registry
	ResultSet ResultSetSink
}

// New constructs a Table bound to registry and sink.
func New(registry *wasmctx.Registry, sink ResultSetSink) *Table {
	return &Table{Registry: registry, ResultSet: sink}
}

// Install registers every host callback under ModuleName in rt.
func (t *Table) Install(ctx context.Context, rt wazero.Runtime) error {
	b := rt.NewHostModuleBuilder(ModuleName)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(t.print), []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI32}, nil).
		Export("print")
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(t.insist), []api.ValueType{api.ValueTypeI32, api.ValueTypeI64}, nil).
		Export("insist")
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(t.throw), []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI64}, nil).
		Export("throw")
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(t.printMemoryConsumption), []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil).
		Export("print_memory_consumption")
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(t.setWasmInstanceRawMemory), []api.ValueType{api.ValueTypeI32}, nil).
		Export("set_wasm_instance_raw_memory")
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(t.readResultSet), []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}, nil).
		Export("read_result_set")

	for _, kind := range []catalog.IndexKind{catalog.IndexArray, catalog.IndexRecursiveModel} {
		for _, kt := range allKeyTypes {
			if !kind.SupportsKeyType(kt) {
				continue
			}
			suffix := kind.Suffix() + "_" + kt.Suffix()
			kind, kt := kind, kt // capture
			b.NewFunctionBuilder().
				WithGoModuleFunction(
					api.GoModuleFunc(t.makeLowerBound(kind, kt)),
					[]api.ValueType{api.ValueTypeI32, api.ValueTypeI64, keyValueType(kt)},
					[]api.ValueType{api.ValueTypeI32},
				).
				Export("idx_lower_bound_" + suffix)
			b.NewFunctionBuilder().
				WithGoModuleFunction(
					api.GoModuleFunc(t.makeUpperBound(kind, kt)),
					[]api.ValueType{api.ValueTypeI32, api.ValueTypeI64, keyValueType(kt)},
					[]api.ValueType{api.ValueTypeI32},
				).
				Export("idx_upper_bound_" + suffix)
			b.NewFunctionBuilder().
				WithGoModuleFunction(
					api.GoModuleFunc(t.makeScan(kind, kt)),
					[]api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
					nil,
				).
				Export("idx_scan_" + suffix)
		}
	}

	_, err := b.Instantiate(ctx)
	if err != nil {
		return errors.InstantiateFailed(err)
	}
	return nil
}

var allKeyTypes = []catalog.KeyType{
	catalog.KeyBool, catalog.KeyI8, catalog.KeyI16, catalog.KeyI32,
	catalog.KeyI64, catalog.KeyF32, catalog.KeyF64, catalog.KeyString,
}

// contextByID recovers the query's wasmctx.Context from the ctx-id every
// callback of this ABI receives as its leading stack parameter.
func (t *Table) contextByID(id int32) (*wasmctx.Context, error) {
	return t.Registry.Get(id)
}

func readCString(mem api.Memory, addr uint32) (string, bool) {
	limit := uint32(1 << 20)
	for n := uint32(0); n < limit; n++ {
		b, ok := mem.ReadByte(addr + n)
		if !ok {
			return "", false
		}
		if b == 0 {
			data, ok := mem.Read(addr, n)
			if !ok {
				return "", false
			}
			return string(data), true
		}
	}
	return "", false
}

// print(ctx_id: i32, kind: i32, value: i64, str_addr: i32) — kind selects
// whether value is rendered as an integer or as a NUL-terminated string
// address; this mirrors the guest's own variadic trace call, lowered to a
// single fixed-shape import per call site by codegen.
func (t *Table) print(ctx context.Context, mod api.Module, stack []uint64) {
	ctxID := api.DecodeI32(stack[0])
	kind := api.DecodeI32(stack[1])
	value := int64(stack[2])
	strAddr := api.DecodeU32(stack[3])

	qctx, err := t.contextByID(ctxID)
	if err != nil {
		return
	}
	_ = qctx

	if kind == 0 {
		fmt.Println(value)
		return
	}
	if s, ok := readCString(mod.Memory(), strAddr); ok {
		fmt.Println(s)
	}
}

// insist(ctx_id: i32, message_id: i64) never returns control to the guest:
// it reports file:line[+msg] and panics with a GuestInsist error, which the
// engine driver catches and converts into a fatal query abort.
func (t *Table) insist(ctx context.Context, mod api.Module, stack []uint64) {
	ctxID := api.DecodeI32(stack[0])
	msgID := int64(stack[1])

	qctx, err := t.contextByID(ctxID)
	if err != nil {
		panic(err)
	}
	msg, merr := qctx.MessageAt(msgID)
	if merr != nil {
		panic(merr)
	}
	panic(errors.GuestInsist(msg.File, msg.Line, msg.Msg))
}

// throw(ctx_id: i32, kind: i64, message_id: i64) raises a typed guest
// exception that unwinds the engine back to the driver.
func (t *Table) throw(ctx context.Context, mod api.Module, stack []uint64) {
	ctxID := api.DecodeI32(stack[0])
	kind := errors.GuestExceptionKind(int64(stack[1]))
	msgID := int64(stack[2])

	qctx, err := t.contextByID(ctxID)
	if err != nil {
		panic(err)
	}
	msg, merr := qctx.MessageAt(msgID)
	if merr != nil {
		panic(merr)
	}
	panic(errors.NewGuestException(kind, msg.File, msg.Line, msg.Msg))
}

// print_memory_consumption(total_mib: i32, peak_mib: i32)
func (t *Table) printMemoryConsumption(ctx context.Context, mod api.Module, stack []uint64) {
	total := api.DecodeU32(stack[0])
	peak := api.DecodeU32(stack[1])
	fmt.Printf("memory: %d MiB (peak %d MiB)\n", total, peak)
}

// set_wasm_instance_raw_memory(ctx_id: i32) — a no-op at the callback level
// in this implementation: the aliasing happens once at instantiation time
// via arena.WazeroAllocator, so there is no separate re-pointing step the
// guest needs to trigger. The import is still exported so generated modules
// that call it (mirroring the source ABI) link successfully.
func (t *Table) setWasmInstanceRawMemory(ctx context.Context, mod api.Module, stack []uint64) {}

// read_result_set(ctx_id: i32, offset: i32, count: i32)
func (t *Table) readResultSet(ctx context.Context, mod api.Module, stack []uint64) {
	ctxID := api.DecodeI32(stack[0])
	offset := api.DecodeU32(stack[1])
	count := api.DecodeU32(stack[2])

	qctx, err := t.contextByID(ctxID)
	if err != nil {
		panic(err)
	}
	if t.ResultSet == nil {
		panic(errors.Invariant(errors.PhaseResultSet, "no result-set sink installed"))
	}
	if err := t.ResultSet.ReadResultSet(qctx, offset, count); err != nil {
		panic(err)
	}
}
