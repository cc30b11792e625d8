// Package resultset implements the host-side result-set reader: the
// read_result_set callback that decodes the payload rows a query's generated
// module copied into the arena, reassembles each output row by splicing in
// projection constants, and hands the result to whichever plan.RowSink the
// root operator selected (Print, Callback, or — never invoked — NoOp).
package resultset

import (
	"math"

	"github.com/wasmdb/wasmexec/arena"
	"github.com/wasmdb/wasmexec/catalog"
	"github.com/wasmdb/wasmexec/errors"
	"github.com/wasmdb/wasmexec/plan"
	"github.com/wasmdb/wasmexec/wasmctx"
)

// Reader implements hostabi.ResultSetSink. It carries no state of its own;
// everything it needs travels on the wasmctx.Context passed to
// ReadResultSet.
type Reader struct{}

// New returns a Reader.
func New() *Reader { return &Reader{} }

// rowSlot is one schema position's source: either a projection constant or
// an index into the decoded payload row. Precomputing this once per call
// (rather than per row) is what lets a single emission path cover every
// combination of constants, payload columns, and repeated identifiers
// without special-casing dedup or fan-out.
type rowSlot struct {
	constant bool
	value    plan.Value
	payload  int
}

// ReadResultSet decodes count rows starting at the arena byte offset the
// generated module copied its payload rows to, and delivers each one to
// qctx.Sink in root schema order.
//
// Required invariants: offset is zero if and only if the payload schema
// (dedup, constants dropped) is empty, and — when any schema entry is
// constant — exactly one projection on the root's single-child chain
// supplies it, with matching identifiers in order. Both are enforced here
// even though codegen already checked the second one at generation time,
// since this callback has no way to know codegen ran against the same plan
// it is now being asked to decode.
func (r *Reader) ReadResultSet(qctx *wasmctx.Context, offset, count uint32) error {
	root := qctx.Plan.GetMatchedRoot()
	if root == nil {
		return errors.Invariant(errors.PhaseResultSet, "plan has no matched root")
	}

	schema := root.Schema()
	payload := schema.PayloadSchema()

	if (offset == 0) != (len(payload) == 0) {
		return errors.Invariant(errors.PhaseResultSet, "offset %d is inconsistent with a payload schema of length %d", offset, len(payload))
	}

	proj, err := plan.RequireProjectionForConstants(errors.PhaseResultSet, root, schema)
	if err != nil {
		return err
	}
	var constants map[string]plan.Value
	if proj != nil {
		constants = proj.Constants()
	}

	slots, err := buildRowPlan(schema, payload, constants)
	if err != nil {
		return err
	}

	if qctx.Sink == nil {
		return errors.Invariant(errors.PhaseResultSet, "no row sink installed on context")
	}

	var layout catalog.DataLayout
	if len(payload) > 0 {
		layout = qctx.ResultLayout.Make(payload)
	}

	for row := uint32(0); row < count; row++ {
		var decoded []plan.Value
		if len(payload) > 0 {
			base := offset + row*layout.Size()
			decoded = make([]plan.Value, len(payload))
			for i, e := range payload {
				v, err := decodeColumn(qctx.Arena, base+layout.OffsetOf(i), e.Type)
				if err != nil {
					return err
				}
				decoded[i] = v
			}
		}

		out := make([]plan.Value, len(slots))
		for i, slot := range slots {
			if slot.constant {
				out[i] = slot.value
			} else {
				out[i] = decoded[slot.payload]
			}
		}
		if err := qctx.Sink.Row(schema, out); err != nil {
			return err
		}
	}
	return nil
}

// buildRowPlan resolves each root schema position to its source, once per
// call rather than once per row.
func buildRowPlan(schema, payload plan.Schema, constants map[string]plan.Value) ([]rowSlot, error) {
	payloadIdx := make(map[string]int, len(payload))
	for i, e := range payload {
		payloadIdx[e.Identifier] = i
	}

	slots := make([]rowSlot, len(schema))
	for i, e := range schema {
		if e.Constant {
			v, ok := constants[e.Identifier]
			if !ok {
				return nil, errors.Invariant(errors.PhaseResultSet, "no constant value supplied for identifier %q", e.Identifier)
			}
			slots[i] = rowSlot{constant: true, value: v}
			continue
		}
		idx, ok := payloadIdx[e.Identifier]
		if !ok {
			return nil, errors.Invariant(errors.PhaseResultSet, "schema entry %q is not constant and not present in the payload schema", e.Identifier)
		}
		slots[i] = rowSlot{payload: idx}
	}
	return slots, nil
}

// decodeColumn reads one payload column at off per its type's fixed-width
// encoding. Payload columns are never NULL in this backend: the storage
// layer's DataLayout exposes no NULL-bitmap offset alongside OffsetOf/Size
// for this reader to locate, so only projection-supplied constants (whose
// plan.Value already carries Null) can render as NULL. Scanned columns that
// need NULL support are a gap to close alongside a richer DataLayout, not
// something this reader can invent a bit position for.
func decodeColumn(a *arena.Arena, off uint32, t plan.ColumnType) (plan.Value, error) {
	switch t {
	case plan.TypeBool:
		b, err := a.ReadU8(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, Bool: b != 0}, nil
	case plan.TypeI8:
		b, err := a.ReadU8(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, Int: int64(int8(b))}, nil
	case plan.TypeI16:
		v, err := a.ReadU16(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, Int: int64(int16(v))}, nil
	case plan.TypeI32:
		v, err := a.ReadU32(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, Int: int64(int32(v))}, nil
	case plan.TypeI64:
		v, err := a.ReadU64(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, Int: int64(v)}, nil
	case plan.TypeF32:
		v, err := a.ReadU32(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, F32: math.Float32frombits(v)}, nil
	case plan.TypeF64:
		v, err := a.ReadU64(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, F64: math.Float64frombits(v)}, nil
	case plan.TypeString:
		strOff, err := a.ReadU32(off)
		if err != nil {
			return plan.Value{}, err
		}
		length, err := a.ReadU32(off + 4)
		if err != nil {
			return plan.Value{}, err
		}
		data, err := a.Read(strOff, length)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, Str: string(data)}, nil
	case plan.TypeDate:
		v, err := a.ReadU32(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, Int: int64(int32(v))}, nil
	case plan.TypeDateTime:
		v, err := a.ReadU64(off)
		if err != nil {
			return plan.Value{}, err
		}
		return plan.Value{Type: t, Int: int64(v)}, nil
	default:
		return plan.Value{}, errors.Invariant(errors.PhaseResultSet, "unsupported column type %d", t)
	}
}
