// Package catalog declares the storage-and-planning-side interfaces this
// backend consumes: table stores, data layouts, index handles, and the
// handful of catalog services the engine driver needs at query setup time.
package catalog

import "github.com/wasmdb/wasmexec/plan"

// Timer provides wall-clock timestamps for query timing diagnostics.
type Timer interface {
	NowUnixNano() int64
}

// Allocator is the catalog-side memory allocator consumed for out-of-arena
// bookkeeping (distinct from arena.Allocator, which serves the query's own
// linear memory).
type Allocator interface {
	Alloc(size int) []byte
	Free([]byte)
}

// Store is a mapped base table: a contiguous row-major byte image plus its
// row count.
type Store interface {
	Name() string
	NumRows() uint32
	RowSize() uint32
	// Bytes returns the table's backing image; the engine driver copies or
	// aliases it into the query arena depending on whether the store
	// already lives in shared memory.
	Bytes() []byte
}

// DataLayout describes the byte layout the result-set reader must use to
// decode tuples matching a given schema: each entry's byte offset, width,
// and alignment.
type DataLayout interface {
	Schema() plan.Schema
	// OffsetOf returns the byte offset of the schema entry at index i
	// within one encoded tuple.
	OffsetOf(i int) uint32
	// Size is the total encoded width of one tuple, including any
	// alignment padding and NULL bitmap.
	Size() uint32
}

// DataLayoutFactory builds a DataLayout for a given schema, mirroring the
// storage layer's own layout calculator.
type DataLayoutFactory interface {
	Make(schema plan.Schema) DataLayout
}

// IndexKind distinguishes the two index implementations named in §3.
type IndexKind int

const (
	IndexArray IndexKind = iota
	IndexRecursiveModel
)

// KeyType is the closed set of key types an index can be built over.
// RecursiveModel indexes support only the numeric members of this set;
// Array indexes support all of them, including Bool and String.
type KeyType int

const (
	KeyBool KeyType = iota
	KeyI8
	KeyI16
	KeyI32
	KeyI64
	KeyF32
	KeyF64
	KeyString
)

func (k KeyType) Suffix() string {
	switch k {
	case KeyBool:
		return "b"
	case KeyI8:
		return "i1"
	case KeyI16:
		return "i2"
	case KeyI32:
		return "i4"
	case KeyI64:
		return "i8"
	case KeyF32:
		return "f"
	case KeyF64:
		return "d"
	case KeyString:
		return "p"
	default:
		return "?"
	}
}

func (k IndexKind) Suffix() string {
	switch k {
	case IndexArray:
		return "array"
	case IndexRecursiveModel:
		return "rmi"
	default:
		return "?"
	}
}

// SupportsKeyType reports whether kind can be built over key type kt.
// RecursiveModel indexes are numeric-only: bool and string keys have no
// ordering a regression model can interpolate over.
func (kind IndexKind) SupportsKeyType(kt KeyType) bool {
	if kind == IndexArray {
		return true
	}
	switch kt {
	case KeyI8, KeyI16, KeyI32, KeyI64, KeyF32, KeyF64:
		return true
	default:
		return false
	}
}

// Index is an opaque, ordered-lookup handle over tuple ids.
type Index interface {
	ID() uint64
	Kind() IndexKind
	KeyType() KeyType
	// LowerBound returns the offset from Begin of the first entry not
	// less than key.
	LowerBound(key any) uint32
	// UpperBound returns the offset from Begin of the first entry
	// greater than key.
	UpperBound(key any) uint32
	// TupleIDAt returns the tuple id stored at the given offset from
	// Begin.
	TupleIDAt(offset uint32) uint32
}

// PlanEnumerator produces candidate physical plans for a logical query; the
// execution backend only calls into it via the catalog handle, never
// implements it.
type PlanEnumerator interface {
	Enumerate(query string) (plan.Plan, error)
}

// ArgParser is the generic CLI argument registration surface the backend's
// flags (config.Options) are registered against by the host application.
type ArgParser interface {
	Add(name string, defaultValue any, help string)
	Parse(args []string) error
}

// Catalog is the aggregate interface the engine driver receives at
// construction time.
type Catalog interface {
	Timer() Timer
	Allocator() Allocator
	CreateStore(table string) (Store, error)
	DataLayout() DataLayoutFactory
	PlanEnumerator(name string) (PlanEnumerator, error)
	Pool(s string) string
	ArgParser() ArgParser
	RegisterWasmBackend(name, desc string) error
}
