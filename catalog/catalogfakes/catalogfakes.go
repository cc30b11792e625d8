// Package catalogfakes provides hand-written in-memory implementations of
// the catalog interfaces for tests.
package catalogfakes

import (
	"sort"

	"github.com/wasmdb/wasmexec/catalog"
	"github.com/wasmdb/wasmexec/plan"
)

// Store is a fake catalog.Store backed by a plain byte slice.
type Store struct {
	TableName string
	Rows      uint32
	RowBytes  uint32
	Data      []byte
}

func (s *Store) Name() string     { return s.TableName }
func (s *Store) NumRows() uint32  { return s.Rows }
func (s *Store) RowSize() uint32  { return s.RowBytes }
func (s *Store) Bytes() []byte    { return s.Data }

// DataLayout is a fake catalog.DataLayout with fixed-width columns packed
// in schema order, no padding — sufficient for deterministic tests.
type DataLayout struct {
	Sch     plan.Schema
	Offsets []uint32
	Width   uint32
}

// NewDataLayout packs schema entries back-to-back using ColumnWidth.
func NewDataLayout(schema plan.Schema) *DataLayout {
	offsets := make([]uint32, len(schema))
	var off uint32
	for i, e := range schema {
		offsets[i] = off
		off += ColumnWidth(e.Type)
	}
	return &DataLayout{Sch: schema, Offsets: offsets, Width: off}
}

func (d *DataLayout) Schema() plan.Schema    { return d.Sch }
func (d *DataLayout) OffsetOf(i int) uint32  { return d.Offsets[i] }
func (d *DataLayout) Size() uint32           { return d.Width }

// ColumnWidth returns the fixed encoded width of a column type.
func ColumnWidth(t plan.ColumnType) uint32 {
	switch t {
	case plan.TypeBool, plan.TypeI8:
		return 1
	case plan.TypeI16:
		return 2
	case plan.TypeI32, plan.TypeF32, plan.TypeDate:
		return 4
	case plan.TypeI64, plan.TypeF64, plan.TypeDateTime, plan.TypeString:
		return 8
	default:
		return 8
	}
}

// DataLayoutFactory is a fake catalog.DataLayoutFactory.
type DataLayoutFactory struct{}

func (DataLayoutFactory) Make(schema plan.Schema) catalog.DataLayout {
	return NewDataLayout(schema)
}

// Index is a fake catalog.Index over a sorted []int64 key slice, paired
// with parallel tuple ids.
type Index struct {
	IndexID  uint64
	IdxKind  catalog.IndexKind
	Type     catalog.KeyType
	Keys     []int64
	TupleIDs []uint32
}

func (i *Index) ID() uint64              { return i.IndexID }
func (i *Index) Kind() catalog.IndexKind { return i.IdxKind }
func (i *Index) KeyType() catalog.KeyType { return i.Type }

func (i *Index) LowerBound(key any) uint32 {
	k := key.(int64)
	return uint32(sort.Search(len(i.Keys), func(j int) bool { return i.Keys[j] >= k }))
}

func (i *Index) UpperBound(key any) uint32 {
	k := key.(int64)
	return uint32(sort.Search(len(i.Keys), func(j int) bool { return i.Keys[j] > k }))
}

func (i *Index) TupleIDAt(offset uint32) uint32 {
	return i.TupleIDs[offset]
}

var (
	_ catalog.Store             = (*Store)(nil)
	_ catalog.DataLayout        = (*DataLayout)(nil)
	_ catalog.DataLayoutFactory = DataLayoutFactory{}
	_ catalog.Index             = (*Index)(nil)
)
