package resultset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmdb/wasmexec/arena"
	"github.com/wasmdb/wasmexec/catalog/catalogfakes"
	"github.com/wasmdb/wasmexec/config"
	"github.com/wasmdb/wasmexec/plan"
	"github.com/wasmdb/wasmexec/plan/planfakes"
	"github.com/wasmdb/wasmexec/wasmctx"
)

// recordingSink collects every row handed to it, in call order.
type recordingSink struct {
	schema plan.Schema
	rows   [][]plan.Value
}

func (s *recordingSink) Row(schema plan.Schema, row []plan.Value) error {
	s.schema = schema
	s.rows = append(s.rows, row)
	return nil
}

func newContext(t *testing.T, root plan.Operator, sink plan.RowSink) *wasmctx.Context {
	a, err := arena.New(arena.Options{InitialPages: 1})
	require.NoError(t, err)
	qctx := wasmctx.New(1, a, &planfakes.Plan{Root: root}, config.New(), catalogfakes.DataLayoutFactory{})
	qctx.Sink = sink
	return qctx
}

// Case A: every schema entry is constant, no payload rows, offset is zero —
// the reader never touches the arena for row data.
func TestReadResultSet_AllConstant(t *testing.T) {
	proj := &planfakes.Projection{
		Operator: planfakes.Operator{
			OpKind:   plan.OpProjection,
			OpSchema: plan.Schema{{Identifier: "one", Type: plan.TypeI32, Constant: true}},
		},
		Consts: map[string]plan.Value{"one": {Type: plan.TypeI32, Int: 1}},
	}
	scan := &planfakes.Scan{Operator: planfakes.Operator{OpKind: plan.OpScan}, TableName: "t"}
	proj.Kids = []plan.Operator{scan}
	root := &planfakes.Operator{
		OpKind:   plan.OpPrint,
		OpSchema: plan.Schema{{Identifier: "one", Type: plan.TypeI32, Constant: true}},
		Kids:     []plan.Operator{proj},
	}

	sink := &recordingSink{}
	qctx := newContext(t, root, sink)

	r := New()
	require.NoError(t, r.ReadResultSet(qctx, 0, 3))

	require.Len(t, sink.rows, 3)
	for _, row := range sink.rows {
		require.Equal(t, plan.Value{Type: plan.TypeI32, Int: 1}, row[0])
	}
}

// Case B: a non-constant payload schema read directly from the arena, no
// duplicate identifiers to fan out.
func TestReadResultSet_DirectRead(t *testing.T) {
	root := &planfakes.Operator{
		OpKind: plan.OpPrint,
		OpSchema: plan.Schema{
			{Identifier: "id", Type: plan.TypeI32},
			{Identifier: "ok", Type: plan.TypeBool},
		},
	}

	sink := &recordingSink{}
	qctx := newContext(t, root, sink)

	// Offset 0 is reserved for an empty payload schema, so the buffer sits
	// past a leading allocation.
	_, err := qctx.Arena.Alloc(8, 8)
	require.NoError(t, err)
	layout := catalogfakes.NewDataLayout(root.OpSchema)
	base, err := qctx.Arena.Alloc(layout.Size()*2, 8)
	require.NoError(t, err)

	require.NoError(t, qctx.Arena.WriteU32(base+layout.OffsetOf(0), 7))
	require.NoError(t, qctx.Arena.WriteU8(base+layout.OffsetOf(1), 1))
	row2 := base + layout.Size()
	require.NoError(t, qctx.Arena.WriteU32(row2+layout.OffsetOf(0), 8))
	require.NoError(t, qctx.Arena.WriteU8(row2+layout.OffsetOf(1), 0))

	r := New()
	require.NoError(t, r.ReadResultSet(qctx, base, 2))

	require.Len(t, sink.rows, 2)
	require.Equal(t, int64(7), sink.rows[0][0].Int)
	require.True(t, sink.rows[0][1].Bool)
	require.Equal(t, int64(8), sink.rows[1][0].Int)
	require.False(t, sink.rows[1][1].Bool)
}

// Case C: the root schema repeats an identifier already present in the
// payload schema once, fanning the same decoded value out to two positions
// without a second arena read.
func TestReadResultSet_DedupFanOut(t *testing.T) {
	root := &planfakes.Operator{
		OpKind: plan.OpPrint,
		OpSchema: plan.Schema{
			{Identifier: "id", Type: plan.TypeI32},
			{Identifier: "id", Type: plan.TypeI32},
		},
	}

	sink := &recordingSink{}
	qctx := newContext(t, root, sink)

	payload := root.OpSchema.PayloadSchema()
	require.Len(t, payload, 1, "dedup collapses the repeated identifier to one payload column")

	// Offset 0 is reserved for an empty payload schema, so the buffer sits
	// past a leading allocation.
	_, err := qctx.Arena.Alloc(8, 8)
	require.NoError(t, err)
	layout := catalogfakes.NewDataLayout(payload)
	base, err := qctx.Arena.Alloc(layout.Size(), 8)
	require.NoError(t, err)
	require.NoError(t, qctx.Arena.WriteU32(base, 42))

	r := New()
	require.NoError(t, r.ReadResultSet(qctx, base, 1))

	require.Len(t, sink.rows, 1)
	require.Equal(t, int64(42), sink.rows[0][0].Int)
	require.Equal(t, sink.rows[0][0], sink.rows[0][1])
}

func TestReadResultSet_OffsetPayloadMismatch(t *testing.T) {
	root := &planfakes.Operator{
		OpKind:   plan.OpPrint,
		OpSchema: plan.Schema{{Identifier: "id", Type: plan.TypeI32}},
	}
	qctx := newContext(t, root, &recordingSink{})

	r := New()
	err := r.ReadResultSet(qctx, 0, 1)
	require.Error(t, err, "a non-empty payload schema must not be read from offset zero")
}

func TestReadResultSet_MissingProjection(t *testing.T) {
	agg := &planfakes.Operator{OpKind: plan.OpAggregation}
	root := &planfakes.Operator{
		OpKind:   plan.OpCallback,
		OpSchema: plan.Schema{{Identifier: "total", Type: plan.TypeI64, Constant: true}},
		Kids:     []plan.Operator{agg},
	}
	qctx := newContext(t, root, &recordingSink{})

	r := New()
	err := r.ReadResultSet(qctx, 0, 1)
	require.Error(t, err)
}

func TestReadResultSet_NoSinkInstalled(t *testing.T) {
	root := &planfakes.Operator{OpKind: plan.OpPrint}
	qctx := newContext(t, root, nil)

	r := New()
	err := r.ReadResultSet(qctx, 0, 1)
	require.Error(t, err)
}
