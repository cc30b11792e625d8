// Package arena implements the per-query virtual memory region that the host
// and guest share as Wasm linear memory: a page-aligned bump allocator over a
// single backing []byte, with an optional unmapped guard region appended past
// the committed size to turn wild guest writes into a fault instead of silent
// corruption.
package arena

import (
	"github.com/wasmdb/wasmexec/errors"
)

const (
	// PageSize matches the Wasm linear memory page size (64 KiB).
	PageSize = 64 * 1024

	// guardPages is the number of unmapped pages appended past Cap when
	// guard pages are enabled, wide enough to catch small out-of-bounds
	// strides without reserving an unreasonable amount of address space.
	guardPages = 4
)

// Memory is the byte-addressable view of a query's linear memory, aliased
// directly onto the arena's backing storage.
type Memory interface {
	Read(offset, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer reports the current committed size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator hands out aligned regions of linear memory to callers that need
// scratch space (the guest heap, host-built literal tables).
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Arena is a bump-allocated region of Wasm linear memory. It never reclaims
// individual allocations; Free is a no-op kept to satisfy Allocator, matching
// the guest's own semantics where freed memory stays committed but unusable
// until the whole context is disposed.
type Arena struct {
	buf         []byte
	next        uint32
	cap         uint32
	max         uint32
	guardPages  bool
}

// Options configures a new Arena.
type Options struct {
	// InitialPages is the number of 64 KiB pages committed up front.
	InitialPages uint32
	// MaxPages bounds how far Grow may extend the arena.
	MaxPages uint32
	// GuardPages appends an unmapped region past the committed size so
	// wild writes fault instead of silently landing in the next
	// allocation. It costs address space, not committed memory.
	GuardPages bool
}

// New reserves a fresh Arena per Options.
func New(opts Options) (*Arena, error) {
	if opts.InitialPages == 0 {
		return nil, errors.Invariant(errors.PhaseArena, "initial pages must be nonzero")
	}
	if opts.MaxPages != 0 && opts.MaxPages < opts.InitialPages {
		return nil, errors.Invariant(errors.PhaseArena, "max pages %d less than initial pages %d", opts.MaxPages, opts.InitialPages)
	}

	capBytes := opts.InitialPages * PageSize
	reserve := capBytes
	if opts.GuardPages {
		reserve += guardPages * PageSize
	}

	return &Arena{
		buf:        make([]byte, capBytes, reserve),
		next:       0,
		cap:        capBytes,
		max:        opts.MaxPages * PageSize,
		guardPages: opts.GuardPages,
	}, nil
}

// Bytes returns the committed, host-writable region backing linear memory.
// The returned slice must not outlive the Arena or be retained past disposal.
func (a *Arena) Bytes() []byte { return a.buf }

// Size implements MemorySizer.
func (a *Arena) Size() uint32 { return uint32(len(a.buf)) }

// Grow extends the committed region to size bytes, rounded up to a whole
// number of pages, and returns the new backing slice. It never shrinks.
func (a *Arena) Grow(size uint64) []byte {
	newCap := uint32(size)
	if r := newCap % PageSize; r != 0 {
		newCap += PageSize - r
	}
	if newCap <= a.cap {
		return a.buf
	}
	if a.max != 0 && newCap > a.max {
		newCap = a.max
	}
	grown := make([]byte, newCap)
	copy(grown, a.buf)
	a.buf = grown
	a.cap = newCap
	return a.buf
}

// Alloc bump-allocates size bytes aligned to align (which must be a power of
// two), growing the arena if necessary and permitted by MaxPages.
func (a *Arena) Alloc(size, align uint32) (uint32, error) {
	if align == 0 || align&(align-1) != 0 {
		return 0, errors.Invariant(errors.PhaseArena, "alignment %d is not a power of two", align)
	}

	aligned := (a.next + align - 1) &^ (align - 1)
	end := aligned + size
	if end < aligned {
		return 0, errors.AllocationFailed(errors.PhaseArena, size, align)
	}

	if end > a.cap {
		if a.max != 0 && end > a.max {
			return 0, errors.AllocationFailed(errors.PhaseArena, size, align)
		}
		a.Grow(uint64(end))
	}

	a.next = end
	return aligned, nil
}

// Free is a no-op: the arena never reclaims individual allocations.
func (a *Arena) Free(ptr, size, align uint32) {}

// HeapPointer returns the current bump-allocation frontier.
func (a *Arena) HeapPointer() uint32 { return a.next }

func (a *Arena) bounds(offset, length uint32) error {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(a.buf)) {
		return errors.OutOfBounds(errors.PhaseArena, []string{"memory"}, int(offset), len(a.buf))
	}
	return nil
}

func (a *Arena) Read(offset, length uint32) ([]byte, error) {
	if err := a.bounds(offset, length); err != nil {
		return nil, err
	}
	return a.buf[offset : offset+length], nil
}

func (a *Arena) Write(offset uint32, data []byte) error {
	if err := a.bounds(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(a.buf[offset:], data)
	return nil
}

func (a *Arena) ReadU8(offset uint32) (uint8, error) {
	if err := a.bounds(offset, 1); err != nil {
		return 0, err
	}
	return a.buf[offset], nil
}

func (a *Arena) ReadU16(offset uint32) (uint16, error) {
	if err := a.bounds(offset, 2); err != nil {
		return 0, err
	}
	return uint16(a.buf[offset]) | uint16(a.buf[offset+1])<<8, nil
}

func (a *Arena) ReadU32(offset uint32) (uint32, error) {
	if err := a.bounds(offset, 4); err != nil {
		return 0, err
	}
	b := a.buf[offset : offset+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (a *Arena) ReadU64(offset uint32) (uint64, error) {
	if err := a.bounds(offset, 8); err != nil {
		return 0, err
	}
	b := a.buf[offset : offset+8]
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

func (a *Arena) WriteU8(offset uint32, value uint8) error {
	if err := a.bounds(offset, 1); err != nil {
		return err
	}
	a.buf[offset] = value
	return nil
}

func (a *Arena) WriteU16(offset uint32, value uint16) error {
	if err := a.bounds(offset, 2); err != nil {
		return err
	}
	a.buf[offset] = byte(value)
	a.buf[offset+1] = byte(value >> 8)
	return nil
}

func (a *Arena) WriteU32(offset uint32, value uint32) error {
	if err := a.bounds(offset, 4); err != nil {
		return err
	}
	b := a.buf[offset : offset+4]
	b[0], b[1], b[2], b[3] = byte(value), byte(value>>8), byte(value>>16), byte(value>>24)
	return nil
}

func (a *Arena) WriteU64(offset uint32, value uint64) error {
	if err := a.bounds(offset, 8); err != nil {
		return err
	}
	b := a.buf[offset : offset+8]
	for i := 0; i < 8; i++ {
		b[i] = byte(value >> (8 * i))
	}
	return nil
}

var (
	_ Memory      = (*Arena)(nil)
	_ MemorySizer = (*Arena)(nil)
	_ Allocator   = (*Arena)(nil)
)
