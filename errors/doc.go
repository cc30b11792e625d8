// Package errors provides structured error types for the wasm execution
// backend.
//
// Errors are categorized by Phase (where in the backend the error occurred)
// and Kind (the shape of the failure). The Error type carries a field path,
// an optional value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResultSet, errors.KindInvariant).
//		Path("root", "schema").
//		Detail("offset=0 but payload schema has %d entries", n).
//		Build()
//
// Or use the convenience constructors for common cases:
//
//	err := errors.UnknownContext(id)
//	err := errors.CompileFailed(cause)
//
// All errors implement the standard error interface and support
// errors.Is/errors.As/errors.Unwrap.
package errors
