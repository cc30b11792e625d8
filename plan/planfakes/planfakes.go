// Package planfakes provides lightweight, hand-written plan.Operator and
// plan.Plan implementations for tests, in place of a generated mock: real
// struct literals wired together the way a matched plan actually nests.
package planfakes

import "github.com/wasmdb/wasmexec/plan"

// Operator is a plain struct implementing plan.Operator.
type Operator struct {
	OpKind   plan.OperatorKind
	OpSchema plan.Schema
	Kids     []plan.Operator
}

func (o *Operator) Kind() plan.OperatorKind    { return o.OpKind }
func (o *Operator) Schema() plan.Schema        { return o.OpSchema }
func (o *Operator) Children() []plan.Operator  { return o.Kids }

// Projection additionally carries constant values, implementing
// plan.ProjectionOperator.
type Projection struct {
	Operator
	Consts map[string]plan.Value
}

func (p *Projection) Constants() map[string]plan.Value { return p.Consts }

// Scan additionally names a source table, implementing plan.ScanOperator.
type Scan struct {
	Operator
	TableName string
}

func (s *Scan) Table() string { return s.TableName }

// Limit additionally caps row count, implementing plan.LimitOperator.
type Limit struct {
	Operator
	Cap uint32
}

func (l *Limit) Count() uint32 { return l.Cap }

// Plan is a fake plan.Plan wrapping a single matched root.
type Plan struct {
	Root plan.Operator
}

func (p *Plan) GetMatchedRoot() plan.Operator { return p.Root }

func (p *Plan) Execute(setup, pipeline, teardown func()) error {
	if setup != nil {
		setup()
	}
	if pipeline != nil {
		pipeline()
	}
	if teardown != nil {
		teardown()
	}
	return nil
}

var (
	_ plan.Operator           = (*Operator)(nil)
	_ plan.ProjectionOperator = (*Projection)(nil)
	_ plan.ScanOperator       = (*Scan)(nil)
	_ plan.LimitOperator      = (*Limit)(nil)
	_ plan.Plan               = (*Plan)(nil)
)
