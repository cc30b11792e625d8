package arena

import (
	"context"

	"github.com/tetratelabs/wazero/experimental"
)

// WazeroAllocator adapts an Arena to wazero's experimental.MemoryAllocator,
// so the engine's linear memory is backed by the exact same bytes the host
// reads and writes through Memory — no copy at the call boundary.
type WazeroAllocator struct {
	arena *Arena
}

// NewWazeroAllocator wraps arena for installation via WithContext.
func NewWazeroAllocator(a *Arena) *WazeroAllocator {
	return &WazeroAllocator{arena: a}
}

// WithContext installs the allocator into ctx per wazero's
// experimental.WithMemoryAllocator contract.
func (w *WazeroAllocator) WithContext(ctx context.Context) context.Context {
	return experimental.WithMemoryAllocator(ctx, w)
}

// Allocate satisfies experimental.MemoryAllocator. The arena was already
// sized by New, so Allocate just hands back a LinearMemory backed by the
// arena's bytes. cap/max describe the module's declared memory limits: an
// arena smaller than cap is grown to cap first, and max is not consulted.
func (w *WazeroAllocator) Allocate(cap, max uint64) experimental.LinearMemory {
	if uint64(len(w.arena.buf)) < cap {
		w.arena.Grow(cap)
	}
	return &wazeroLinearMemory{arena: w.arena}
}

var _ experimental.MemoryAllocator = (*WazeroAllocator)(nil)

// wazeroLinearMemory adapts Arena to wazero's experimental.LinearMemory
// contract.
type wazeroLinearMemory struct {
	arena *Arena
}

// Reallocate satisfies experimental.LinearMemory by delegating to Arena.Grow.
func (l *wazeroLinearMemory) Reallocate(size uint64) []byte {
	return l.arena.Grow(size)
}

// Free satisfies experimental.LinearMemory. The arena's storage is released
// when the query context disposes it, not here.
func (l *wazeroLinearMemory) Free() {}

var _ experimental.LinearMemory = (*wazeroLinearMemory)(nil)
