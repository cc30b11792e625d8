// Package enginedriver owns the wazero runtime and drives one query at a
// time through it: configure the isolate, install the host ABI, build and
// instantiate the generated module aliasing the query's arena as its linear
// memory, invoke main, and report the row count.
package enginedriver

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wasmdb/wasmexec/arena"
	"github.com/wasmdb/wasmexec/config"
	"github.com/wasmdb/wasmexec/errors"
	"github.com/wasmdb/wasmexec/hostabi"
	"github.com/wasmdb/wasmexec/inspector"
	"github.com/wasmdb/wasmexec/modbuilder"
	"github.com/wasmdb/wasmexec/plan"
	"github.com/wasmdb/wasmexec/resultset"
	"github.com/wasmdb/wasmexec/wasmctx"
)

// Driver owns the wazero runtime, the host ABI table, and the exclusive lock
// a query holds across compile, instantiate, and main — per §5's
// single-isolate-at-a-time concurrency model.
type Driver struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	hosts   *hostabi.Table
	config  config.Options
	log     *zap.Logger
}

// New configures a wazero runtime per cfg's flag policy and installs the host
// ABI table under the shared registry. sink handles read_result_set; it is
// typically the resultset package's reader.
func New(ctx context.Context, cfg config.Options, registry *wasmctx.Registry, sink hostabi.ResultSetSink, log *zap.Logger) (*Driver, error) {
	if log == nil {
		log = zap.NewNop()
	}

	runtimeCfg := newRuntimeConfig(cfg)
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	hosts := hostabi.New(registry, sink)
	if err := hosts.Install(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	return &Driver{runtime: rt, hosts: hosts, config: cfg, log: log}, nil
}

// newRuntimeConfig implements the driver's flag policy (§4.6, §9): bounds and
// stack checks are never relaxed while the inspector is attached, so in that
// case (or when adaptive tiering is off) the interpreter backend is used,
// which wazero always bounds-checks. Otherwise the ahead-of-time compiler
// backend runs, approximating the source's "tier up" behavior — wazero has
// no separate baseline/optimizing tiers to select between.
func newRuntimeConfig(cfg config.Options) wazero.RuntimeConfig {
	var runtimeCfg wazero.RuntimeConfig
	if cfg.EffectiveBoundsChecks() || !cfg.WasmAdaptive {
		runtimeCfg = wazero.NewRuntimeConfigInterpreter()
	} else {
		runtimeCfg = wazero.NewRuntimeConfig()
	}

	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	if cfg.WasmCompilationCache {
		runtimeCfg = runtimeCfg.WithCompilationCache(wazero.NewCompilationCache())
	}
	return runtimeCfg
}

// Close releases the underlying wazero runtime. All queries must have
// finished before calling Close.
func (d *Driver) Close(ctx context.Context) error {
	return d.runtime.Close(ctx)
}

// Result reports what a single query execution produced.
type Result struct {
	RowCount uint32
}

// Query pairs the per-query Wasm Context codegen already populated (table
// offsets, row counts, indexes, arena) with the module builder codegen used
// to emit main, so Execute never has to reconstruct state Generate already
// derived. Callback supplies the row function a Callback root delivers to;
// it is ignored for any other root kind.
type Query struct {
	Context  *wasmctx.Context
	Builder  *modbuilder.Builder
	Callback resultset.CallbackFunc
}

// assignSink installs the plan.RowSink matching the root's kind onto qctx,
// per §4.7's three emission modes — so the result-set reader, installed once
// at Driver construction, always has somewhere to deliver a decoded row. A
// Print root keeps a sink the caller already set on qctx (for example a
// print sink writing to a buffer); otherwise it prints to stdout.
func assignSink(qctx *wasmctx.Context, q Query) error {
	root := qctx.Plan.GetMatchedRoot()
	if root == nil {
		return errors.InvalidInput(errors.PhaseEngine, "plan has no matched root")
	}
	switch root.Kind() {
	case plan.OpPrint:
		if qctx.Sink == nil {
			qctx.Sink = resultset.NewPrintSink(nil)
		}
	case plan.OpCallback:
		if q.Callback == nil {
			return errors.InvalidInput(errors.PhaseEngine, "a Callback root requires Query.Callback")
		}
		qctx.Sink = resultset.CallbackSink{Fn: q.Callback}
	case plan.OpNoOp:
		qctx.Sink = resultset.NoOpSink{}
	}
	return nil
}

// Execute drives one query through the isolate per §4.6's per-query sequence:
// register the Wasm Context, place its message table and string literals,
// build and validate the module, instantiate it aliasing the context's arena
// as linear memory, call main, print the row trailer for a print-sink root,
// and dispose the context — always, even on error.
func (d *Driver) Execute(ctx context.Context, registry *wasmctx.Registry, q Query) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	qctx := q.Context
	if err := assignSink(qctx, q); err != nil {
		return Result{}, err
	}
	for _, m := range q.Builder.Messages() {
		qctx.AddMessage(m.File, m.Line, m.Msg)
	}

	if len(q.Builder.Literals()) > 0 {
		_, sized := q.Builder.PlaceLiterals(0)
		base, err := qctx.Arena.Alloc(uint32(len(sized)), 1)
		if err != nil {
			return Result{}, err
		}
		offsets, data := q.Builder.PlaceLiterals(base)
		if err := qctx.Arena.Write(base, data); err != nil {
			return Result{}, err
		}
		qctx.Literals = offsets
	}

	if err := registry.Create(qctx); err != nil {
		return Result{}, err
	}
	defer registry.Dispose(qctx.ID)

	data, err := q.Builder.Build(d.config)
	if err != nil {
		return Result{}, err
	}

	var rows uint32
	if insp := inspector.New(d.config, d.log); insp != nil {
		bootstrap := inspector.BuildBootstrap(qctx, data)
		_ = bootstrap // synthesized for the attached devtools frontend to read; the actual call still runs natively below, once the debugger resumes it
		err = insp.Run(ctx, func() error {
			var runErr error
			rows, runErr = d.compileAndRun(ctx, qctx, data)
			return runErr
		})
	} else {
		rows, err = d.compileAndRun(ctx, qctx, data)
	}
	if err != nil {
		return Result{}, err
	}

	root := qctx.Plan.GetMatchedRoot()
	if root != nil && root.Kind() == plan.OpPrint && !d.config.Quiet {
		fmt.Printf("%d rows\n", rows)
	}

	return Result{RowCount: rows}, nil
}

// compileAndRun performs the actual compile/instantiate/call sequence
// shared by the plain and inspector-attached paths.
func (d *Driver) compileAndRun(ctx context.Context, qctx *wasmctx.Context, data []byte) (uint32, error) {
	compiled, err := d.runtime.CompileModule(ctx, data)
	if err != nil {
		return 0, errors.CompileFailed(err)
	}
	defer compiled.Close(ctx)

	allocator := arena.NewWazeroAllocator(qctx.Arena)
	instCtx := allocator.WithContext(ctx)

	modConfig := wazero.NewModuleConfig().WithName("")
	instance, err := d.runtime.InstantiateModule(instCtx, compiled, modConfig)
	if err != nil {
		return 0, errors.InstantiateFailed(err)
	}
	defer instance.Close(ctx)

	return d.callMain(instCtx, instance, qctx.ID)
}

// callMain invokes exports.main(ctx_id) and recovers guest panics raised by
// insist/throw/unknown-context, converting them into the structured errors
// the caller propagates per §7's taxonomy.
func (d *Driver) callMain(ctx context.Context, instance api.Module, id int32) (rows uint32, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errors.Invariant(errors.PhaseEngine, "guest panicked: %v", r)
		}
	}()

	main := instance.ExportedFunction("main")
	if main == nil {
		return 0, errors.NotFound(errors.PhaseEngine, "export", "main")
	}

	results, callErr := main.Call(ctx, uint64(uint32(id)))
	if callErr != nil {
		return 0, errors.InstantiateFailed(callErr)
	}
	if len(results) != 1 {
		return 0, errors.Invariant(errors.PhaseEngine, "main returned %d results, want 1", len(results))
	}
	return uint32(results[0]), nil
}
