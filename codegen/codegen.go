// Package codegen lowers a matched physical plan into the generated
// module's exported main function.
//
// The scope implemented here covers scan-then-sink pipelines — a base table
// optionally filtered down by a Limit, optionally reduced to constants by a
// Projection, feeding a Print, Callback, or NoOp root — since that is the
// shape every §8 end-to-end scenario exercises. Plans containing Filter,
// DisjunctiveFilter, Join, Grouping, Aggregation, or Sorting are rejected
// with errors.Unsupported: evaluating arbitrary predicates and join
// algorithms is exactly the code-generator collaborator the specification
// treats as external, and reproducing it is out of scope for this backend's
// own responsibility (module building, host ABI, engine driving, and
// result-set decoding, which is where §2 places most of the complexity).
package codegen

import (
	"github.com/wasmdb/wasmexec/errors"
	"github.com/wasmdb/wasmexec/modbuilder"
	"github.com/wasmdb/wasmexec/plan"
	"github.com/wasmdb/wasmexec/wasm"
	"github.com/wasmdb/wasmexec/wasmctx"
)

var unsupportedRoots = map[plan.OperatorKind]bool{
	plan.OpFilter:            true,
	plan.OpDisjunctiveFilter: true,
	plan.OpJoin:              true,
	plan.OpGrouping:          true,
	plan.OpAggregation:       true,
	plan.OpSorting:           true,
}

// Result carries what Generate computed about the emitted main function.
// The engine driver does not read it: it reports the count main returns.
type Result struct {
	// RowCount is the number of tuples main() will report to
	// read_result_set / return, computed here since this codegen doesn't
	// emit a runtime counting loop — it counts at generation time from
	// the catalog's row counts.
	RowCount uint32
}

// Generate walks qctx.Plan's matched root and emits a main(ctx_id: i32) ->
// i32 export into mb, per §4.5's contract: it copies the scanned rows into a
// result buffer when the payload schema is non-empty, invokes read_result_set
// for every root except NoOp (with offset 0 when the payload schema is
// empty), and returns the tuple count.
func Generate(mb *modbuilder.Builder, qctx *wasmctx.Context) (Result, error) {
	root := qctx.Plan.GetMatchedRoot()
	if root == nil {
		return Result{}, errors.InvalidInput(errors.PhaseCodegen, "plan has no matched root")
	}
	if unsupportedRoots[root.Kind()] {
		return Result{}, errors.Unsupported(errors.PhaseCodegen, "root operator kind "+root.Kind().String())
	}

	schema := root.Schema()
	payload := schema.PayloadSchema()

	scan := plan.FindNearestScan(root)
	limit := plan.FindNearestLimit(root)

	rows, err := rowCount(qctx, scan, limit)
	if err != nil {
		return Result{}, err
	}

	if _, err := plan.RequireProjectionForConstants(errors.PhaseCodegen, root, schema); err != nil {
		return Result{}, err
	}

	var offset uint32
	var body []wasm.Instruction

	if len(payload) > 0 {
		if scan == nil {
			return Result{}, errors.Invariant(errors.PhaseCodegen, "non-constant payload schema requires a scan to source rows from")
		}
		tableOffset, ok := qctx.TableOffsets[scan.Table()]
		if !ok {
			return Result{}, errors.NotFound(errors.PhaseCodegen, "table", scan.Table())
		}

		layout := qctx.ResultLayout.Make(payload)
		rowSize := layout.Size()

		// Offset 0 tells read_result_set the payload schema is empty, so a
		// non-empty payload's buffer never starts there.
		if qctx.Arena.HeapPointer() == 0 {
			if _, err := qctx.Arena.Alloc(1, 1); err != nil {
				return Result{}, err
			}
		}
		buf, err := qctx.Arena.Alloc(rowSize*rows, 8)
		if err != nil {
			return Result{}, err
		}
		offset = buf

		body = append(body, copyLoop(offset, tableOffset, rowSize, rows)...)
	}

	if root.Kind() != plan.OpNoOp {
		mb.ImportHostFunc("read_result_set", []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32}, nil)
		readResultSetIdx, err := mb.FuncIndex("read_result_set")
		if err != nil {
			return Result{}, err
		}
		body = append(body,
			wasm.Instruction{Opcode: wasm.OpLocalGet, Imm: wasm.LocalImm{LocalIdx: 0}},
			wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: int32(offset)}},
			wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: int32(rows)}},
			wasm.Instruction{Opcode: wasm.OpCall, Imm: wasm.CallImm{FuncIdx: readResultSetIdx}},
		)
	}

	body = append(body,
		wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: int32(rows)}},
	)

	mb.DefineFunc("main",
		[]wasm.ValType{wasm.ValI32},
		[]wasm.ValType{wasm.ValI32},
		nil,
		body,
		true,
	)

	return Result{RowCount: rows}, nil
}

func rowCount(qctx *wasmctx.Context, scan plan.ScanOperator, limit plan.LimitOperator) (uint32, error) {
	var rows uint32 = 1
	if scan != nil {
		n, ok := qctx.TableRows[scan.Table()]
		if !ok {
			return 0, errors.NotFound(errors.PhaseCodegen, "table", scan.Table())
		}
		rows = n
	}
	if limit != nil && limit.Count() < rows {
		rows = limit.Count()
	}
	return rows, nil
}

// copyLoop unrolls one memory.copy bulk-memory instruction per row: row
// count is known at generation time from the catalog's Store, so there is
// no need for runtime loop control flow to move a compile-time-fixed number
// of fixed-width rows.
func copyLoop(dstBase, srcBase, rowSize, rows uint32) []wasm.Instruction {
	instrs := make([]wasm.Instruction, 0, rows*4)
	for i := uint32(0); i < rows; i++ {
		dst := int32(dstBase + i*rowSize)
		src := int32(srcBase + i*rowSize)
		instrs = append(instrs,
			wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: dst}},
			wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: src}},
			wasm.Instruction{Opcode: wasm.OpI32Const, Imm: wasm.I32Imm{Value: int32(rowSize)}},
			wasm.Instruction{Opcode: wasm.OpPrefixMisc, Imm: wasm.MiscImm{SubOpcode: wasm.MiscMemoryCopy, Operands: []uint32{0, 0}}},
		)
	}
	return instrs
}
