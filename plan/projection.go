package plan

import "github.com/wasmdb/wasmexec/errors"

// FindNearestProjection walks from root down the single-child chain (an
// operator with more than one child ends the search) looking for the
// nearest ProjectionOperator. It returns nil if none is found, which the
// caller must treat as an unchecked precondition violation rather than
// synthesize a default for — e.g. an Aggregation feeding straight into a
// Callback has no projection to source constant values from.
func FindNearestProjection(root Operator) ProjectionOperator {
	for op := root; op != nil; {
		if p, ok := op.(ProjectionOperator); ok {
			return p
		}
		children := op.Children()
		if len(children) != 1 {
			return nil
		}
		op = children[0]
	}
	return nil
}

// RequireProjectionForConstants enforces the two projection-lookup invariants
// codegen and the result-set reader both depend on: when schema carries any
// constant-marked entry, exactly one projection must exist on root's
// single-child chain, and its output identifiers must match schema's, in
// order. Returns a nil ProjectionOperator and nil error when schema has no
// constants — there is nothing to look up. phase attributes the error to
// whichever caller detected it.
func RequireProjectionForConstants(phase errors.Phase, root Operator, schema Schema) (ProjectionOperator, error) {
	hasConstant := false
	for _, e := range schema {
		if e.Constant {
			hasConstant = true
			break
		}
	}
	if !hasConstant {
		return nil, nil
	}

	proj := FindNearestProjection(root)
	if proj == nil {
		return nil, errors.Invariant(phase, "root schema has constant entries but no projection was found on the single-child chain")
	}
	if kids := proj.Children(); len(kids) == 1 && FindNearestProjection(kids[0]) != nil {
		return nil, errors.Invariant(phase, "more than one projection found on the single-child chain")
	}

	projSchema := proj.Schema()
	if len(projSchema) != len(schema) {
		return nil, errors.Invariant(phase, "projection schema length %d does not match root schema length %d", len(projSchema), len(schema))
	}
	for i := range schema {
		if projSchema[i].Identifier != schema[i].Identifier {
			return nil, errors.Invariant(phase, "projection entry %d identifier %q does not match root entry %q", i, projSchema[i].Identifier, schema[i].Identifier)
		}
	}
	return proj, nil
}
