package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmdb/wasmexec/arena"
	"github.com/wasmdb/wasmexec/catalog/catalogfakes"
	"github.com/wasmdb/wasmexec/config"
	"github.com/wasmdb/wasmexec/modbuilder"
	"github.com/wasmdb/wasmexec/plan"
	"github.com/wasmdb/wasmexec/plan/planfakes"
	"github.com/wasmdb/wasmexec/wasmctx"
)

func newQueryContext(t *testing.T, root plan.Operator) *wasmctx.Context {
	a, err := arena.New(arena.Options{InitialPages: 1})
	require.NoError(t, err)
	p := &planfakes.Plan{Root: root}
	return wasmctx.New(1, a, p, config.New(), catalogfakes.DataLayoutFactory{})
}

func TestGenerate_ConstantOnlyQuery(t *testing.T) {
	proj := &planfakes.Projection{
		Operator: planfakes.Operator{
			OpKind: plan.OpProjection,
			OpSchema: plan.Schema{
				{Identifier: "one", Type: plan.TypeI32, Constant: true},
			},
		},
		Consts: map[string]plan.Value{"one": {Type: plan.TypeI32, Int: 1}},
	}
	scan := &planfakes.Scan{
		Operator:  planfakes.Operator{OpKind: plan.OpScan, Kids: nil},
		TableName: "t",
	}
	proj.Kids = []plan.Operator{scan}
	root := &planfakes.Operator{
		OpKind: plan.OpPrint,
		OpSchema: plan.Schema{
			{Identifier: "one", Type: plan.TypeI32, Constant: true},
		},
		Kids: []plan.Operator{proj},
	}

	qctx := newQueryContext(t, root)
	qctx.MapTable("t", 4096, 3)

	mb := modbuilder.New()
	result, err := Generate(mb, qctx)
	require.NoError(t, err)
	require.Equal(t, uint32(3), result.RowCount)

	data, err := mb.Build(config.New())
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestGenerate_ScanPassthrough(t *testing.T) {
	scan := &planfakes.Scan{
		Operator: planfakes.Operator{
			OpKind: plan.OpScan,
			OpSchema: plan.Schema{
				{Identifier: "id", Type: plan.TypeI32},
			},
		},
		TableName: "t",
	}
	root := &planfakes.Operator{
		OpKind:   plan.OpPrint,
		OpSchema: plan.Schema{{Identifier: "id", Type: plan.TypeI32}},
		Kids:     []plan.Operator{scan},
	}

	qctx := newQueryContext(t, root)
	qctx.MapTable("t", 0, 2)

	mb := modbuilder.New()
	result, err := Generate(mb, qctx)
	require.NoError(t, err)
	require.Equal(t, uint32(2), result.RowCount)
}

func TestGenerate_LimitClampsRowCount(t *testing.T) {
	scan := &planfakes.Scan{
		Operator:  planfakes.Operator{OpKind: plan.OpScan, OpSchema: plan.Schema{{Identifier: "id", Type: plan.TypeI32}}},
		TableName: "t",
	}
	limit := &planfakes.Limit{
		Operator: planfakes.Operator{OpKind: plan.OpLimit, OpSchema: scan.OpSchema, Kids: []plan.Operator{scan}},
		Cap:      1,
	}
	root := &planfakes.Operator{OpKind: plan.OpPrint, OpSchema: limit.OpSchema, Kids: []plan.Operator{limit}}

	qctx := newQueryContext(t, root)
	qctx.MapTable("t", 0, 10)

	mb := modbuilder.New()
	result, err := Generate(mb, qctx)
	require.NoError(t, err)
	require.Equal(t, uint32(1), result.RowCount)
}

func TestGenerate_UnsupportedRootKind(t *testing.T) {
	root := &planfakes.Operator{OpKind: plan.OpJoin}
	qctx := newQueryContext(t, root)

	_, err := Generate(modbuilder.New(), qctx)
	require.Error(t, err)
}

func TestGenerate_MissingProjectionForConstants(t *testing.T) {
	agg := &planfakes.Operator{OpKind: plan.OpAggregation}
	root := &planfakes.Operator{
		OpKind: plan.OpCallback,
		OpSchema: plan.Schema{
			{Identifier: "total", Type: plan.TypeI64, Constant: true},
		},
		Kids: []plan.Operator{agg},
	}
	qctx := newQueryContext(t, root)

	_, err := Generate(modbuilder.New(), qctx)
	require.Error(t, err, "an aggregation feeding a callback has no projection to source constants from")
}

func TestGenerate_NoOpRootSkipsReadResultSet(t *testing.T) {
	root := &planfakes.Operator{OpKind: plan.OpNoOp}
	qctx := newQueryContext(t, root)

	mb := modbuilder.New()
	_, err := Generate(mb, qctx)
	require.NoError(t, err)

	_, err = mb.FuncIndex("read_result_set")
	require.Error(t, err, "NoOp root must not import read_result_set")
}
