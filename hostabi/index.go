package hostabi

import (
	"github.com/tetratelabs/wazero/api"
	"context"

	"github.com/wasmdb/wasmexec/catalog"
	"github.com/wasmdb/wasmexec/errors"
)

// keyValueType reports the wasm api.ValueType a key of kt travels as on the
// stack, matching decodeKey's wire representation below.
func keyValueType(kt catalog.KeyType) api.ValueType {
	switch kt {
	case catalog.KeyF32:
		return api.ValueTypeF32
	case catalog.KeyF64:
		return api.ValueTypeF64
	case catalog.KeyString:
		return api.ValueTypeI32
	default:
		return api.ValueTypeI64
	}
}

// decodeKey reads the key argument off the stack at position idx according
// to kt's wire representation: integers and bool travel widened to i64,
// f32/f64 travel as their own bit patterns, and string keys travel as a u32
// offset into the arena that the host resolves to a Go string.
func decodeKey(mod api.Module, stack []uint64, idx int, kt catalog.KeyType) (any, error) {
	switch kt {
	case catalog.KeyBool:
		return stack[idx] != 0, nil
	case catalog.KeyI8, catalog.KeyI16, catalog.KeyI32, catalog.KeyI64:
		return int64(stack[idx]), nil
	case catalog.KeyF32:
		return float64(api.DecodeF32(stack[idx])), nil
	case catalog.KeyF64:
		return api.DecodeF64(stack[idx]), nil
	case catalog.KeyString:
		s, ok := readCString(mod.Memory(), api.DecodeU32(stack[idx]))
		if !ok {
			return nil, errors.OutOfBounds(errors.PhaseIndex, []string{"string key"}, int(api.DecodeU32(stack[idx])), 0)
		}
		return s, nil
	default:
		return nil, errors.Unsupported(errors.PhaseIndex, "unknown key type")
	}
}

// idx_lower_bound_{array,rmi}_{suffix}(ctx_id: i32, idx_id: i64, key) -> u32
func (t *Table) makeLowerBound(kind catalog.IndexKind, kt catalog.KeyType) func(context.Context, api.Module, []uint64) {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		ctxID := api.DecodeI32(stack[0])
		idxID := int64(stack[1])

		qctx, err := t.contextByID(ctxID)
		if err != nil {
			panic(err)
		}
		idx, err := qctx.Index(int(idxID))
		if err != nil {
			panic(err)
		}
		key, err := decodeKey(mod, stack, 2, kt)
		if err != nil {
			panic(err)
		}
		stack[0] = api.EncodeU32(idx.LowerBound(key))
	}
}

// idx_upper_bound_{array,rmi}_{suffix}(ctx_id: i32, idx_id: i64, key) -> u32
func (t *Table) makeUpperBound(kind catalog.IndexKind, kt catalog.KeyType) func(context.Context, api.Module, []uint64) {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		ctxID := api.DecodeI32(stack[0])
		idxID := int64(stack[1])

		qctx, err := t.contextByID(ctxID)
		if err != nil {
			panic(err)
		}
		idx, err := qctx.Index(int(idxID))
		if err != nil {
			panic(err)
		}
		key, err := decodeKey(mod, stack, 2, kt)
		if err != nil {
			panic(err)
		}
		stack[0] = api.EncodeU32(idx.UpperBound(key))
	}
}

// idx_scan_{array,rmi}_{suffix}(ctx_id: i32, idx_id: i64, entry_offset: u32, out_addr: u32, batch: u32)
// writes batch consecutive tuple ids starting at entry_offset into guest
// memory at out_addr.
func (t *Table) makeScan(kind catalog.IndexKind, kt catalog.KeyType) func(context.Context, api.Module, []uint64) {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		ctxID := api.DecodeI32(stack[0])
		idxID := int64(stack[1])
		entryOffset := api.DecodeU32(stack[2])
		outAddr := api.DecodeU32(stack[3])
		batch := api.DecodeU32(stack[4])

		qctx, err := t.contextByID(ctxID)
		if err != nil {
			panic(err)
		}
		idx, err := qctx.Index(int(idxID))
		if err != nil {
			panic(err)
		}

		for i := uint32(0); i < batch; i++ {
			tid := idx.TupleIDAt(entryOffset + i)
			if !mod.Memory().WriteUint32Le(outAddr+i*4, tid) {
				panic(errors.OutOfBounds(errors.PhaseIndex, []string{"scan output"}, int(outAddr+i*4), int(mod.Memory().Size())))
			}
		}
	}
}
