// Package wasmctx implements the per-query Wasm Context and the registry
// host callbacks use to recover it by module id.
package wasmctx

import (
	"sync"

	"github.com/wasmdb/wasmexec/arena"
	"github.com/wasmdb/wasmexec/catalog"
	"github.com/wasmdb/wasmexec/config"
	"github.com/wasmdb/wasmexec/errors"
	"github.com/wasmdb/wasmexec/plan"
)

// Context is the per-query host-side state a module id maps to in the
// Registry: the arena backing linear memory, table/index mappings, the
// matched plan, and the config in effect for this query.
type Context struct {
	ID     int32
	Arena  *arena.Arena
	Config config.Options
	Plan   plan.Plan

	// TableOffsets maps a base table name to its byte offset within the
	// arena.
	TableOffsets map[string]uint32
	// TableRows mirrors each table's row count, from which codegen
	// computes the number of tuples main reports.
	TableRows map[string]uint32

	// Indexes are addressable by integer id, assigned in registration
	// order.
	Indexes []catalog.Index

	// Literals maps each deduplicated string literal to its NUL-terminated
	// offset within the arena.
	Literals map[string]uint32

	// ResultLayout is the data layout factory used by the result-set
	// reader to decode the payload schema.
	ResultLayout catalog.DataLayoutFactory

	// Messages is the message table insist/throw index into by MessageID,
	// copied from the module builder's table by the engine driver.
	Messages []Message

	// Sink receives decoded rows during read_result_set. The engine driver
	// installs a NoOpSink for a NoOp root, whose module never calls it.
	Sink plan.RowSink
}

// Message is one {file, line, msg} entry the guest's insist/throw calls
// address by integer id, rendered as "file:line[: msg]" on failure.
type Message struct {
	File string
	Line uint32
	Msg  string
}

// New allocates a fresh Context. The caller still must register it with a
// Registry before any guest code can reach it through a host callback.
func New(id int32, a *arena.Arena, p plan.Plan, cfg config.Options, layout catalog.DataLayoutFactory) *Context {
	return &Context{
		ID:           id,
		Arena:        a,
		Config:       cfg,
		Plan:         p,
		TableOffsets: make(map[string]uint32),
		TableRows:    make(map[string]uint32),
		Literals:     make(map[string]uint32),
		ResultLayout: layout,
	}
}

// AddMessage appends a message table entry and returns its id.
func (c *Context) AddMessage(file string, line uint32, msg string) int64 {
	c.Messages = append(c.Messages, Message{File: file, Line: line, Msg: msg})
	return int64(len(c.Messages) - 1)
}

// MessageAt returns the message registered at id.
func (c *Context) MessageAt(id int64) (Message, error) {
	if id < 0 || int(id) >= len(c.Messages) {
		return Message{}, errors.OutOfBounds(errors.PhaseHost, []string{"messages"}, int(id), len(c.Messages))
	}
	return c.Messages[id], nil
}

// MapTable records a base table's arena offset and row count.
func (c *Context) MapTable(name string, offset, rows uint32) {
	c.TableOffsets[name] = offset
	c.TableRows[name] = rows
}

// RegisterIndex appends idx and returns its integer id.
func (c *Context) RegisterIndex(idx catalog.Index) int {
	c.Indexes = append(c.Indexes, idx)
	return len(c.Indexes) - 1
}

// Index returns the index registered at id, or an error if id is out of
// range.
func (c *Context) Index(id int) (catalog.Index, error) {
	if id < 0 || id >= len(c.Indexes) {
		return nil, errors.OutOfBounds(errors.PhaseIndex, []string{"indexes"}, id, len(c.Indexes))
	}
	return c.Indexes[id], nil
}

// Registry is the module-id → Context map host callbacks use
// to recover per-query state. Mutated only at query start (Create) and end
// (Dispose), per the concurrency model's single-query-at-a-time contract.
type Registry struct {
	mu   sync.Mutex
	byID map[int32]*Context
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int32]*Context)}
}

// Create registers ctx under its own ID. It is an error to register an ID
// already live.
func (r *Registry) Create(ctx *Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[ctx.ID]; exists {
		return errors.Invariant(errors.PhaseRegistry, "context id %d already registered", ctx.ID)
	}
	r.byID[ctx.ID] = ctx
	return nil
}

// Get recovers the Context for id. Per §7, a miss is always fatal: it
// indicates registry corruption, not a recoverable user error.
func (r *Registry) Get(id int32) (*Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, ok := r.byID[id]
	if !ok {
		return nil, errors.UnknownContext(id)
	}
	return ctx, nil
}

// Dispose removes ctx from the registry. Disposing an id not present is a
// no-op, matching idempotent teardown on the error path.
func (r *Registry) Dispose(id int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// Len reports the number of live contexts, used by tests asserting the
// registry returns to its pre-query size after every query (§8 invariant 2).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
