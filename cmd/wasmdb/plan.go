package main

import "github.com/wasmdb/wasmexec/plan"

// node is a minimal plan.Operator, mirroring the shape the planner's own
// matched-plan nodes carry. The CLI builds plans directly rather than
// through a planner — there is no SQL parser in scope — so it only ever
// needs Scan and Print, chained the same way a real matched plan nests
// them.
type node struct {
	kind   plan.OperatorKind
	schema plan.Schema
	table  string
	kids   []plan.Operator
}

func (n *node) Kind() plan.OperatorKind   { return n.kind }
func (n *node) Schema() plan.Schema       { return n.schema }
func (n *node) Children() []plan.Operator { return n.kids }
func (n *node) Table() string             { return n.table }

var _ plan.ScanOperator = (*node)(nil)

// scanPrintPlan wires a Scan directly under Print over tbl's own schema,
// the simplest plan shape codegen recognizes: §4.7 case B, no projection,
// every column read straight from the payload.
type scanPrintPlan struct {
	root plan.Operator
}

func newScanPrintPlan(tbl demoTable) *scanPrintPlan {
	scan := &node{kind: plan.OpScan, schema: tbl.schema, table: tbl.name}
	root := &node{kind: plan.OpPrint, schema: tbl.schema, kids: []plan.Operator{scan}}
	return &scanPrintPlan{root: root}
}

func (p *scanPrintPlan) GetMatchedRoot() plan.Operator { return p.root }

func (p *scanPrintPlan) Execute(setup, pipeline, teardown func()) error {
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

var _ plan.Plan = (*scanPrintPlan)(nil)
