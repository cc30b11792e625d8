package resultset

import (
	"fmt"
	"io"
	"os"

	"github.com/wasmdb/wasmexec/errors"
	"github.com/wasmdb/wasmexec/plan"
)

// CallbackFunc is invoked once per row for a Callback root.
type CallbackFunc func(schema plan.Schema, row []plan.Value) error

// CallbackSink adapts a CallbackFunc to plan.RowSink.
type CallbackSink struct {
	Fn CallbackFunc
}

func (s CallbackSink) Row(schema plan.Schema, row []plan.Value) error {
	return s.Fn(schema, row)
}

// PrintSink renders each row in print-mode format, one per line, to Writer.
type PrintSink struct {
	Writer io.Writer
}

// NewPrintSink returns a PrintSink writing to w, defaulting to os.Stdout
// when w is nil.
func NewPrintSink(w io.Writer) *PrintSink {
	if w == nil {
		w = os.Stdout
	}
	return &PrintSink{Writer: w}
}

func (s *PrintSink) Row(schema plan.Schema, row []plan.Value) error {
	_, err := fmt.Fprintln(s.Writer, FormatRow(row))
	return err
}

// NoOpSink satisfies plan.RowSink for a NoOp root, which the code generator
// guarantees never calls read_result_set in the first place. Row existing at
// all is a contract violation, so it errors rather than silently discarding.
type NoOpSink struct{}

func (NoOpSink) Row(schema plan.Schema, row []plan.Value) error {
	return errors.Invariant(errors.PhaseResultSet, "NoOp root must never receive a row")
}

var (
	_ plan.RowSink = CallbackSink{}
	_ plan.RowSink = (*PrintSink)(nil)
	_ plan.RowSink = NoOpSink{}
)
