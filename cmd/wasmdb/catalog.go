package main

import (
	"github.com/wasmdb/wasmexec/catalog"
	"github.com/wasmdb/wasmexec/plan"
)

// demoStore is a tiny fixed in-memory table, standing in for the catalog
// collaborator this backend only ever consumes (spec explicitly places
// storage-layer internals out of scope). It exists so the CLI has
// something to run a generated module against without a real storage
// engine wired in.
type demoStore struct {
	name string
	rows uint32
	size uint32
	data []byte
}

func (s *demoStore) Name() string    { return s.name }
func (s *demoStore) NumRows() uint32 { return s.rows }
func (s *demoStore) RowSize() uint32 { return s.size }
func (s *demoStore) Bytes() []byte   { return s.data }

// demoLayout packs schema columns back-to-back in declaration order, no
// padding, matching the byte widths decodeColumn in the resultset package
// expects.
type demoLayout struct {
	schema  plan.Schema
	offsets []uint32
	size    uint32
}

func newDemoLayout(schema plan.Schema) *demoLayout {
	offsets := make([]uint32, len(schema))
	var off uint32
	for i, e := range schema {
		offsets[i] = off
		off += columnWidth(e.Type)
	}
	return &demoLayout{schema: schema, offsets: offsets, size: off}
}

func (l *demoLayout) Schema() plan.Schema   { return l.schema }
func (l *demoLayout) OffsetOf(i int) uint32 { return l.offsets[i] }
func (l *demoLayout) Size() uint32          { return l.size }

func columnWidth(t plan.ColumnType) uint32 {
	switch t {
	case plan.TypeBool, plan.TypeI8:
		return 1
	case plan.TypeI16:
		return 2
	case plan.TypeI32, plan.TypeF32, plan.TypeDate:
		return 4
	default:
		return 8
	}
}

type demoLayoutFactory struct{}

func (demoLayoutFactory) Make(schema plan.Schema) catalog.DataLayout {
	return newDemoLayout(schema)
}

// demoTable is one seeded table's schema plus its typed rows, encoded to
// demoStore.Bytes lazily by encodeTable.
type demoTable struct {
	name   string
	schema plan.Schema
	rows   [][]plan.Value
}

var demoTables = []demoTable{
	{
		name: "users",
		schema: plan.Schema{
			{Identifier: "id", Type: plan.TypeI32},
			{Identifier: "active", Type: plan.TypeBool},
		},
		rows: [][]plan.Value{
			{{Type: plan.TypeI32, Int: 1}, {Type: plan.TypeBool, Bool: true}},
			{{Type: plan.TypeI32, Int: 2}, {Type: plan.TypeBool, Bool: false}},
			{{Type: plan.TypeI32, Int: 3}, {Type: plan.TypeBool, Bool: true}},
		},
	},
	{
		name: "events",
		schema: plan.Schema{
			{Identifier: "code", Type: plan.TypeI32},
		},
		rows: [][]plan.Value{
			{{Type: plan.TypeI32, Int: 100}},
			{{Type: plan.TypeI32, Int: 404}},
		},
	},
}

// encodeTable packs t's rows using the same fixed-width, no-padding layout
// demoLayout describes, so a Scan reading straight out of this Bytes()
// image decodes identically to how the result-set reader will later decode
// the copied rows.
func encodeTable(t demoTable) *demoStore {
	layout := newDemoLayout(t.schema)
	data := make([]byte, layout.Size()*uint32(len(t.rows)))
	for r, row := range t.rows {
		base := uint32(r) * layout.Size()
		for i, v := range row {
			off := base + layout.OffsetOf(i)
			putValue(data, off, v)
		}
	}
	return &demoStore{name: t.name, rows: uint32(len(t.rows)), size: layout.Size(), data: data}
}

func putValue(buf []byte, off uint32, v plan.Value) {
	switch v.Type {
	case plan.TypeBool:
		if v.Bool {
			buf[off] = 1
		}
	case plan.TypeI8:
		buf[off] = byte(v.Int)
	case plan.TypeI16:
		buf[off], buf[off+1] = byte(v.Int), byte(v.Int>>8)
	case plan.TypeI32, plan.TypeDate:
		for i := 0; i < 4; i++ {
			buf[off+uint32(i)] = byte(v.Int >> (8 * i))
		}
	default:
		for i := 0; i < 8; i++ {
			buf[off+uint32(i)] = byte(v.Int >> (8 * i))
		}
	}
}
