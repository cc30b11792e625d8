// Package errors provides structured error types for the wasm execution backend.
//
// Errors are categorized by Phase (which subsystem raised the error) and Kind
// (the general shape of the failure). The taxonomy mirrors the backend's own
// error handling design: config/invariant violations, guest assertion
// failures, typed guest exceptions, module validation failures, engine
// compile/instantiate failures, and unknown-context-id corruption are all
// distinguishable by Kind so callers can decide which are recoverable (none,
// per policy — the backend never retries) and which need a diagnostic dump.
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseResultSet, errors.KindInvariant).
//		Path("root", "schema").
//		Detail("offset=0 but payload schema has %d entries", n).
//		Build()
//
// Or the convenience constructors for the common cases:
//
//	err := errors.UnknownContext(id)
//	err := errors.NewGuestException(kind, file, line, msg)
package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which subsystem raised the error.
type Phase string

const (
	PhaseArena      Phase = "arena"       // VM reservation and bump allocation
	PhaseRegistry   Phase = "registry"    // Wasm Context Registry
	PhaseHost       Phase = "host"        // host callback dispatch
	PhaseModuleBuild Phase = "modbuild"   // Module Builder accumulation/encoding
	PhaseCodegen    Phase = "codegen"     // pipeline code generation
	PhaseEngine     Phase = "engine"      // engine compile/instantiate/call
	PhaseResultSet  Phase = "resultset"   // result-set decoding
	PhaseIndex      Phase = "index"       // index lookup/scan
	PhaseInspector  Phase = "inspector"   // remote debug channel
)

// Kind categorizes the failure, independent of which phase raised it.
type Kind string

const (
	KindInvariant      Kind = "invariant"       // a documented invariant was violated
	KindGuestInsist    Kind = "guest_insist"     // guest called insist() and it failed
	KindGuestException Kind = "guest_exception"  // guest called throw()
	KindValidation     Kind = "validation"       // generated module failed to validate
	KindCompile        Kind = "compile"          // engine failed to compile the module
	KindInstantiate    Kind = "instantiate"      // engine failed to instantiate the module
	KindUnknownContext Kind = "unknown_context"  // callback referenced an unregistered context id
	KindOutOfBounds    Kind = "out_of_bounds"
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
	KindUnsupported    Kind = "unsupported"
	KindAllocation     Kind = "allocation"
)

// Error is the structured error type used throughout the backend.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Value  any
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// Invariant reports a violated invariant from spec §3/§7 (e.g. heap not
// page-aligned, offset=0 without an empty payload schema).
func Invariant(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindInvariant).Detail(detail, args...).Build()
}

// UnknownContext reports a callback that referenced an unregistered module id.
// Per §7 this is always fatal: it indicates registry corruption.
func UnknownContext(id int32) *Error {
	return New(PhaseRegistry, KindUnknownContext).
		Detail("no live Wasm context for module id %d", id).
		Value(id).
		Build()
}

// GuestInsist reports a failed guest-side insist() call.
func GuestInsist(file string, line uint32, msg string) *Error {
	detail := fmt.Sprintf("%s:%d: Wasm_insist failed", file, line)
	if msg != "" {
		detail += ": " + msg
	}
	return New(PhaseHost, KindGuestInsist).Detail("%s", detail).Build()
}

// GuestExceptionKind enumerates the typed exceptions the guest can raise via
// throw().
type GuestExceptionKind int64

const (
	ExcOutOfRange GuestExceptionKind = iota
	ExcDivByZero
	ExcTypeMismatch
	ExcConstraintViolation
	ExcUser
)

func (k GuestExceptionKind) String() string {
	switch k {
	case ExcOutOfRange:
		return "out_of_range"
	case ExcDivByZero:
		return "div_by_zero"
	case ExcTypeMismatch:
		return "type_mismatch"
	case ExcConstraintViolation:
		return "constraint_violation"
	case ExcUser:
		return "user"
	default:
		return fmt.Sprintf("exception(%d)", int64(k))
	}
}

// GuestException carries the {kind, file, line, msg} tuple a guest throw()
// call raises, propagated through the engine to the caller per §7.
type GuestException struct {
	Kind GuestExceptionKind
	File string
	Msg  string
	Line uint32
}

func (e *GuestException) Error() string {
	detail := fmt.Sprintf("%s:%d: exception `%s` thrown", e.File, e.Line, e.Kind)
	if e.Msg != "" {
		detail += ": " + e.Msg
	}
	return detail
}

func NewGuestException(kind GuestExceptionKind, file string, line uint32, msg string) *GuestException {
	return &GuestException{Kind: kind, File: file, Line: line, Msg: msg}
}

func ValidationFailed(dump string) *Error {
	return New(PhaseModuleBuild, KindValidation).Detail("module failed validation:\n%s", dump).Build()
}

func CompileFailed(cause error) *Error {
	return New(PhaseEngine, KindCompile).Cause(cause).Detail("compile module").Build()
}

func InstantiateFailed(cause error) *Error {
	return New(PhaseEngine, KindInstantiate).Cause(cause).Detail("instantiate module").Build()
}

func NotFound(phase Phase, what, name string) *Error {
	return New(phase, KindNotFound).Detail("%s %q not found", what, name).Build()
}

func InvalidInput(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindInvalidInput).Detail(detail, args...).Build()
}

func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return New(phase, KindOutOfBounds).Path(path...).
		Detail("index %d out of bounds (length %d)", index, length).
		Value(index).Build()
}

func Unsupported(phase Phase, what string) *Error {
	return New(phase, KindUnsupported).Detail("%s", what).Build()
}

func AllocationFailed(phase Phase, size, align uint32) *Error {
	return New(phase, KindAllocation).Detail("failed to allocate %d bytes (align %d)", size, align).Build()
}
