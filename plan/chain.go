package plan

// FindNearestScan walks the single-child chain from root looking for the
// nearest ScanOperator, the same traversal FindNearestProjection uses.
func FindNearestScan(root Operator) ScanOperator {
	for op := root; op != nil; {
		if s, ok := op.(ScanOperator); ok {
			return s
		}
		children := op.Children()
		if len(children) != 1 {
			return nil
		}
		op = children[0]
	}
	return nil
}

// FindNearestLimit walks the single-child chain from root looking for the
// nearest LimitOperator.
func FindNearestLimit(root Operator) LimitOperator {
	for op := root; op != nil; {
		if l, ok := op.(LimitOperator); ok {
			return l
		}
		children := op.Children()
		if len(children) != 1 {
			return nil
		}
		op = children[0]
	}
	return nil
}
