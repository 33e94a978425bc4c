package hir

// TypeLoopInductionVariables types loop induction phis and backward
// propagates the specialization into their use-def chain (§4.7), ported
// from pass/loop-induction.cc's LoopIVTyper.
//
// A loop induction variable is a two-operand phi (start, increment) whose
// increment is an arithmetic expression referencing the phi itself. Once
// both the start value and the non-self operand of the increment are
// known to be numbers, the phi is retagged LoopIVInt64 or LoopIVFloat64
// and every use reachable by walking forward through Unary/Binary/Box/
// Unbox nodes is re-specialized to the matching unboxed arithmetic,
// stopping once a use can no longer be typed.
func TypeLoopInductionVariables(g *Graph) {
	t := &loopIVTyper{g: g, visited: make(map[ID]bool)}
	forest := BuildLoopForest(g)
	for _, ln := range forest.InnerFirst() {
		t.runLoop(ln)
	}
}

type loopIVTyper struct {
	g       *Graph
	visited map[ID]bool
}

// runLoop repeatedly scans the phis attached to the loop's header region
// until a full pass makes no further progress (mirrors RunLoop's
// has_change loop: typing one phi can make a sibling phi's increment
// typeable on a later pass).
func (t *loopIVTyper) runLoop(ln *LoopNode) {
	for {
		changed := false
		for _, id := range t.phisOf(ln.Header) {
			if t.visited[id] {
				continue
			}
			n := t.g.node(id)
			if n.Kind != KindPhi {
				continue
			}
			if t.typeLoopIV(n) != InvalidID {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// phisOf collects every Phi node whose control region is the given
// header (phi nodes are control-dependent expr nodes per §3.2).
func (t *loopIVTyper) phisOf(header ID) []ID {
	var out []ID
	for id := ID(0); int(id) < t.g.MaxID(); id++ {
		n := t.g.node(id)
		if n.Kind == KindPhi && n.Region == header {
			out = append(out, id)
		}
	}
	return out
}

// linearIVComponents recognizes the single induction-variable shape this
// pass specializes: phi(start, incr) where incr is a Binary arithmetic
// expression with one operand identical to the phi itself. Anything else
// is left alone (conservatively unknown), matching
// GetLinearLoopIVComponent's single recognized pattern.
func linearIVComponents(g *Graph, iv *Node) (start, incr, target ID, ok bool) {
	if len(iv.Args) != 2 {
		return InvalidID, InvalidID, InvalidID, false
	}
	start = iv.Args[0]
	incrID := iv.Args[1]
	incrNode := g.node(incrID)
	if incrNode.Kind != KindBinary || !incrNode.BinaryOp.IsArithmetic() {
		return InvalidID, InvalidID, InvalidID, false
	}
	if incrNode.Args[0] == iv.ID {
		return start, incrID, incrNode.Args[1], true
	}
	if incrNode.Args[1] == iv.ID {
		return start, incrID, incrNode.Args[0], true
	}
	return InvalidID, InvalidID, InvalidID, false
}

// typeLoopIV types one induction phi: if it isn't a linear IV it is
// marked visited and skipped for good; if its start/target types aren't
// both numbers yet, it's left for a later pass (the target may become
// typeable once its own producer is specialized); otherwise the phi is
// retagged and its uses backward-propagated.
func (t *loopIVTyper) typeLoopIV(iv *Node) ID {
	g := t.g
	start, incr, target, ok := linearIVComponents(g, iv)
	if !ok {
		t.visited[iv.ID] = true
		return InvalidID
	}

	startKind, ok := inferNumericRepr(g, start)
	if !ok {
		return InvalidID
	}
	targetKind, ok := inferNumericRepr(g, target)
	if !ok {
		return InvalidID
	}

	kind := KindLoopIVFloat64
	if startKind == TypeUnboxedInt64 && targetKind == TypeUnboxedInt64 {
		kind = KindLoopIVInt64
	}

	newIV := g.newNode(kind)
	nn := g.node(newIV)
	nn.Region = iv.Region
	g.addArg(newIV, start)
	g.addArg(newIV, incr)

	g.Replace(iv.ID, newIV)
	t.visited[newIV] = true

	t.propagate(newIV)
	return newIV
}

// propagate walks forward through every use reachable from root (a
// breadth-first use-def traversal, per Enqueue/the TypeLoopIV worklist
// loop), re-specializing each Unary/Binary/Box/Unbox use it can type and
// stopping at whatever it cannot.
func (t *loopIVTyper) propagate(root ID) {
	g := t.g
	marker := map[ID]bool{root: true}
	queue := []ID{}
	enqueue := func(id ID) {
		if id == InvalidID {
			return
		}
		for _, r := range g.node(id).Refs {
			if marker[r.User] {
				continue
			}
			u := g.node(r.User)
			if u.IsExpr() {
				marker[r.User] = true
				queue = append(queue, r.User)
			}
		}
	}
	enqueue(root)

	for len(queue) > 0 {
		top := queue[0]
		queue = queue[1:]
		t.visited[top] = true

		n := g.node(top)
		var nn ID = InvalidID
		switch n.Kind {
		case KindUnary:
			nn = t.typeUnary(n)
		case KindBinary:
			switch {
			case n.BinaryOp.IsArithmetic():
				nn = t.typeArithmetic(n)
			case n.BinaryOp.IsComparison():
				nn = t.typeCompare(n)
			default:
				nn = t.typeLogical(n)
			}
		case KindBox:
			nn = foldBoxNode(g, n)
		case KindUnbox:
			nn = foldUnboxNode(g, n)
		}
		if nn != InvalidID {
			enqueue(nn)
		}
	}
}

func (t *loopIVTyper) box(value ID, kind TypeKind) ID {
	id := t.g.NewExpr(KindBox, value)
	t.g.node(id).TypeKind = kind
	return id
}

func (t *loopIVTyper) unbox(value ID, kind TypeKind) ID {
	id := t.g.NewExpr(KindUnbox, value)
	t.g.node(id).TypeKind = kind
	return id
}

func (t *loopIVTyper) toFloat64(value ID) ID {
	id := t.g.NewExpr(KindInt64ToFloat64, value)
	return id
}

// typeUnary tries a plain fold first, then specializes a numeric negate
// into the unboxed Float64Negate form (int64 negate always widens to
// float64, matching the ported TypeUnary: there is no Int64Negate kind).
func (t *loopIVTyper) typeUnary(n *Node) ID {
	g := t.g
	opr := n.Args[0]
	if folded := (arithFolder{}).foldUnary(g, n.UnaryOp, opr); folded != InvalidID {
		g.Replace(n.ID, folded)
		return folded
	}
	if n.UnaryOp != UnaryMinus {
		return InvalidID
	}
	kind, ok := inferNumericRepr(g, opr)
	if !ok {
		return InvalidID
	}

	var operand ID
	if kind == TypeUnboxedFloat64 {
		operand = t.unbox(opr, TypeUnboxedFloat64)
	} else {
		operand = t.toFloat64(t.unbox(opr, TypeUnboxedInt64))
	}
	neg := g.NewExpr(KindFloat64Negate, operand)
	boxed := t.box(neg, TypeUnboxedFloat64)
	g.Replace(n.ID, boxed)
	return boxed
}

// typeArithmetic specializes a Binary arithmetic node into
// Int64Arithmetic when both sides are int64, Float64Arithmetic when both
// are float64, and Float64Arithmetic-with-widening when the two sides
// disagree (the int64 side is cast up to float64 first).
func (t *loopIVTyper) typeArithmetic(n *Node) ID {
	g := t.g
	lhsID, rhsID := n.Args[0], n.Args[1]
	if folded := (arithFolder{}).foldBinary(g, n.BinaryOp, lhsID, rhsID); folded != InvalidID {
		g.Replace(n.ID, folded)
		return folded
	}

	lhsKind, ok := inferNumericRepr(g, lhsID)
	if !ok {
		return InvalidID
	}
	rhsKind, ok := inferNumericRepr(g, rhsID)
	if !ok {
		return InvalidID
	}

	var lhs, rhs ID
	var kind Kind
	var boxKind TypeKind
	switch {
	case lhsKind == TypeUnboxedFloat64 && rhsKind == TypeUnboxedFloat64:
		lhs, rhs = t.unbox(lhsID, TypeUnboxedFloat64), t.unbox(rhsID, TypeUnboxedFloat64)
		kind, boxKind = KindFloat64Arithmetic, TypeUnboxedFloat64
	case lhsKind == TypeUnboxedInt64 && rhsKind == TypeUnboxedInt64:
		lhs, rhs = t.unbox(lhsID, TypeUnboxedInt64), t.unbox(rhsID, TypeUnboxedInt64)
		kind, boxKind = KindInt64Arithmetic, TypeUnboxedInt64
	case lhsKind == TypeUnboxedInt64:
		lhs = t.toFloat64(t.unbox(lhsID, TypeUnboxedInt64))
		rhs = t.unbox(rhsID, TypeUnboxedFloat64)
		kind, boxKind = KindFloat64Arithmetic, TypeUnboxedFloat64
	default:
		lhs = t.unbox(lhsID, TypeUnboxedFloat64)
		rhs = t.toFloat64(t.unbox(rhsID, TypeUnboxedInt64))
		kind, boxKind = KindFloat64Arithmetic, TypeUnboxedFloat64
	}

	spec := g.NewExpr(kind, lhs, rhs)
	g.node(spec).BinaryOp = n.BinaryOp
	boxed := t.box(spec, boxKind)
	g.Replace(n.ID, boxed)
	return boxed
}

// typeCompare mirrors typeArithmetic for the comparison operators,
// producing a boolean-typed Float64Compare/Int64Compare.
func (t *loopIVTyper) typeCompare(n *Node) ID {
	g := t.g
	lhsID, rhsID := n.Args[0], n.Args[1]
	if folded := (arithFolder{}).foldBinary(g, n.BinaryOp, lhsID, rhsID); folded != InvalidID {
		g.Replace(n.ID, folded)
		return folded
	}

	lhsKind, ok := inferNumericRepr(g, lhsID)
	if !ok {
		return InvalidID
	}
	rhsKind, ok := inferNumericRepr(g, rhsID)
	if !ok {
		return InvalidID
	}

	var lhs, rhs ID
	var kind Kind
	switch {
	case lhsKind == TypeUnboxedInt64 && rhsKind == TypeUnboxedInt64:
		lhs, rhs = t.unbox(lhsID, TypeUnboxedInt64), t.unbox(rhsID, TypeUnboxedInt64)
		kind = KindInt64Compare
	case lhsKind == TypeUnboxedFloat64 && rhsKind == TypeUnboxedFloat64:
		lhs, rhs = t.unbox(lhsID, TypeUnboxedFloat64), t.unbox(rhsID, TypeUnboxedFloat64)
		kind = KindFloat64Compare
	case lhsKind == TypeUnboxedInt64:
		lhs = t.toFloat64(t.unbox(lhsID, TypeUnboxedInt64))
		rhs = t.unbox(rhsID, TypeUnboxedFloat64)
		kind = KindFloat64Compare
	default:
		lhs = t.unbox(lhsID, TypeUnboxedFloat64)
		rhs = t.toFloat64(t.unbox(rhsID, TypeUnboxedInt64))
		kind = KindFloat64Compare
	}

	spec := g.NewExpr(kind, lhs, rhs)
	g.node(spec).BinaryOp = n.BinaryOp
	boxed := t.box(spec, TypeBoolean)
	g.Replace(n.ID, boxed)
	return boxed
}

// typeLogical only ever tries the plain fold: && / || don't have a
// numeric-specialized form, matching TypeLogical's fold-only body.
func (t *loopIVTyper) typeLogical(n *Node) ID {
	g := t.g
	if folded := (arithFolder{}).foldBinary(g, n.BinaryOp, n.Args[0], n.Args[1]); folded != InvalidID {
		g.Replace(n.ID, folded)
		return folded
	}
	return InvalidID
}

// inferNumericRepr is the local, intentionally narrow stand-in for a full
// type-inference pass: it reports the unboxed numeric representation a
// node's value is already known to have, by looking only at its
// producer's Kind (constants, already-specialized arithmetic, and
// Box/Unbox wrappers already tagged with a representation). Anything
// else is reported unknown rather than guessed.
func inferNumericRepr(g *Graph, id ID) (TypeKind, bool) {
	n := g.node(id)
	switch n.Kind {
	case KindInt64, KindInt64Arithmetic, KindInt64Compare, KindFloat64ToInt64, KindLoopIVInt64:
		return TypeUnboxedInt64, true
	case KindFloat64, KindFloat64Arithmetic, KindFloat64Compare, KindFloat64Negate,
		KindInt64ToFloat64, KindLoopIVFloat64:
		return TypeUnboxedFloat64, true
	case KindBox:
		if n.TypeKind == TypeUnboxedInt64 || n.TypeKind == TypeUnboxedFloat64 {
			return n.TypeKind, true
		}
	case KindUnbox:
		return inferNumericRepr(g, n.Args[0])
	case KindTypeGuard:
		if n.TypeKind == TypeUnboxedInt64 || n.TypeKind == TypeUnboxedFloat64 {
			return n.TypeKind, true
		}
	}
	return TypeReal, false
}
