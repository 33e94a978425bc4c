package hir

import "math"

// arithFolder implements the arithmetic and logic folder described in
// spec §4.6 (ported from fold-arith.cc's ArithFolder): constant folding
// over float64/string/nil/boolean, the float64 reassociation rules,
// logical short-circuit simplifications, the type(x)=="name" pattern
// match, and ternary folding.
type arithFolder struct{}

func (arithFolder) Name() string { return "arith" }

func (arithFolder) CanFold(req FoldRequest) bool {
	switch req.Tag {
	case ReqUnary, ReqBinary, ReqTernary:
		return true
	}
	return false
}

func (f arithFolder) Fold(g *Graph, req FoldRequest) ID {
	switch req.Tag {
	case ReqUnary:
		return f.foldUnary(g, req.Op, req.Operand)
	case ReqBinary:
		return f.foldBinary(g, req.BinOp, req.Lhs, req.Rhs)
	case ReqTernary:
		return f.foldTernary(g, req.Cond, req.Lhs, req.Rhs)
	}
	return InvalidID
}

func (f arithFolder) foldUnary(g *Graph, op UnaryOp, operand ID) ID {
	x := g.node(operand)

	switch op {
	case UnaryMinus:
		if x.Kind == KindFloat64 {
			return g.Float64(-x.AuxFloat)
		}
		if x.Kind == KindInt64 {
			return g.Int64(-x.AuxInt)
		}
		// - - x -> x
		if x.Kind == KindUnary && x.UnaryOp == UnaryMinus {
			return x.Args[0]
		}
	case UnaryNot:
		if x.Kind == KindBoolean {
			return g.Boolean(!x.AuxBool)
		}
		if x.Kind == KindNil {
			return g.Boolean(true)
		}
		// NOT of any list/object/string/number yields false.
		switch x.Kind {
		case KindIRList, KindIRObject, KindSmallString, KindLongString, KindFloat64, KindInt64:
			return g.Boolean(false)
		}
	}
	return InvalidID
}

func (f arithFolder) foldBinary(g *Graph, op BinaryOp, lhsID, rhsID ID) ID {
	lhs, rhs := g.node(lhsID), g.node(rhsID)

	if fold := f.foldConstBinary(g, op, lhs, rhs); fold != InvalidID {
		return fold
	}
	if fold := f.foldNilCompare(g, op, lhs, rhs); fold != InvalidID {
		return fold
	}
	if fold := f.reassociate(g, op, lhsID, rhsID); fold != InvalidID {
		return fold
	}
	if fold := f.simplifyLogic(g, op, lhsID, rhsID); fold != InvalidID {
		return fold
	}
	if fold := f.simplifyBooleanCompare(g, op, lhsID, rhsID); fold != InvalidID {
		return fold
	}
	if fold := f.matchTestType(g, op, lhsID, rhsID); fold != InvalidID {
		return fold
	}
	return InvalidID
}

// foldConstBinary folds float64/string constant operands over the full
// arithmetic/comparison/logical operator set. mod by zero yields no fold
// (left to the runtime, per spec §4.6).
func (f arithFolder) foldConstBinary(g *Graph, op BinaryOp, lhs, rhs *Node) ID {
	if lhs.Kind == KindFloat64 && rhs.Kind == KindFloat64 {
		a, b := lhs.AuxFloat, rhs.AuxFloat
		switch op {
		case BinAdd:
			return g.Float64(a + b)
		case BinSub:
			return g.Float64(a - b)
		case BinMul:
			return g.Float64(a * b)
		case BinDiv:
			return g.Float64(a / b)
		case BinMod:
			if b == 0 {
				return InvalidID
			}
			return g.Float64(math.Mod(a, b))
		case BinPow:
			return g.Float64(math.Pow(a, b))
		case BinEQ:
			return g.Boolean(a == b)
		case BinNE:
			return g.Boolean(a != b)
		case BinLT:
			return g.Boolean(a < b)
		case BinLE:
			return g.Boolean(a <= b)
		case BinGT:
			return g.Boolean(a > b)
		case BinGE:
			return g.Boolean(a >= b)
		case BinAnd:
			return g.Boolean(a != 0 && b != 0)
		case BinOr:
			return g.Boolean(a != 0 || b != 0)
		}
		return InvalidID
	}

	isStr := func(n *Node) bool { return n.Kind == KindSmallString || n.Kind == KindLongString }
	if isStr(lhs) && isStr(rhs) && op.IsComparison() {
		a, b := lhs.AuxString, rhs.AuxString
		switch op {
		case BinEQ:
			return g.Boolean(a == b)
		case BinNE:
			return g.Boolean(a != b)
		case BinLT:
			return g.Boolean(a < b)
		case BinLE:
			return g.Boolean(a <= b)
		case BinGT:
			return g.Boolean(a > b)
		case BinGE:
			return g.Boolean(a >= b)
		}
	}
	return InvalidID
}

// foldNilCompare folds EQ/NE when either operand is nil; any other
// operator on a nil operand is not foldable here.
func (f arithFolder) foldNilCompare(g *Graph, op BinaryOp, lhs, rhs *Node) ID {
	if lhs.Kind != KindNil && rhs.Kind != KindNil {
		return InvalidID
	}
	if op != BinEQ && op != BinNE {
		return InvalidID
	}
	bothNil := lhs.Kind == KindNil && rhs.Kind == KindNil
	if op == BinEQ {
		return g.Boolean(bothNil)
	}
	return g.Boolean(!bothNil)
}

// reassociate implements the float64 reassociation rules of §4.6:
//   (-a) + b -> b - a       a + (-b) -> a - b
//   (-a) - b -> (-b) - a    a - (-b) -> a + b
//   a / 1 -> a              a / -1 -> -a
//   (-a) * (-b) -> a * b
//   a - a -> 0
func (f arithFolder) reassociate(g *Graph, op BinaryOp, lhsID, rhsID ID) ID {
	lhs, rhs := g.node(lhsID), g.node(rhsID)
	isNeg := func(n *Node) (ID, bool) {
		if n.Kind == KindUnary && n.UnaryOp == UnaryMinus {
			return n.Args[0], true
		}
		return InvalidID, false
	}

	switch op {
	case BinAdd:
		if a, ok := isNeg(lhs); ok {
			return g.NewExpr(KindBinary, rhsID, a).withBinOp(g, BinSub)
		}
		if b, ok := isNeg(rhs); ok {
			return g.NewExpr(KindBinary, lhsID, b).withBinOp(g, BinSub)
		}
	case BinSub:
		if gvnEqual(g, lhs, rhs) {
			return g.Float64(0)
		}
		if a, ok := isNeg(lhs); ok {
			negB := g.NewExpr(KindUnary, rhsID)
			g.node(negB).UnaryOp = UnaryMinus
			return g.NewExpr(KindBinary, negB, a).withBinOp(g, BinSub)
		}
		if b, ok := isNeg(rhs); ok {
			return g.NewExpr(KindBinary, lhsID, b).withBinOp(g, BinAdd)
		}
	case BinDiv:
		if rhs.Kind == KindFloat64 {
			if rhs.AuxFloat == 1 {
				return lhsID
			}
			if rhs.AuxFloat == -1 {
				neg := g.NewExpr(KindUnary, lhsID)
				g.node(neg).UnaryOp = UnaryMinus
				return neg
			}
		}
	case BinMul:
		if a, ok := isNeg(lhs); ok {
			if b, ok2 := isNeg(rhs); ok2 {
				return g.NewExpr(KindBinary, a, b).withBinOp(g, BinMul)
			}
		}
	}
	return InvalidID
}

// withBinOp stamps the BinaryOp tag on a just-created Binary node and
// returns its id; a small helper so reassociate reads like the rules it
// implements rather than three statements per case.
func (id ID) withBinOp(g *Graph, op BinaryOp) ID {
	g.node(id).BinaryOp = op
	return id
}

// simplifyLogic implements:
//
//	false && x -> false; true && x -> x; a && a -> a; !a && a -> false
//	true || x -> true;  false || x -> x; a || a -> a; !a || a -> true
func (f arithFolder) simplifyLogic(g *Graph, op BinaryOp, lhsID, rhsID ID) ID {
	lhs, rhs := g.node(lhsID), g.node(rhsID)
	isNot := func(n *Node, of ID) bool {
		return n.Kind == KindUnary && n.UnaryOp == UnaryNot && gvnEqual(g, g.node(n.Args[0]), g.node(of))
	}

	switch op {
	case BinAnd:
		if lhs.Kind == KindBoolean {
			if !lhs.AuxBool {
				return g.Boolean(false)
			}
			return rhsID
		}
		if gvnEqual(g, lhs, rhs) {
			return lhsID
		}
		if isNot(lhs, rhsID) {
			return g.Boolean(false)
		}
	case BinOr:
		if lhs.Kind == KindBoolean {
			if lhs.AuxBool {
				return g.Boolean(true)
			}
			return rhsID
		}
		if gvnEqual(g, lhs, rhs) {
			return lhsID
		}
		if isNot(lhs, rhsID) {
			return g.Boolean(true)
		}
	}
	return InvalidID
}

// simplifyBooleanCompare implements `a == true -> a`, `a == false -> !a`.
func (f arithFolder) simplifyBooleanCompare(g *Graph, op BinaryOp, lhsID, rhsID ID) ID {
	if op != BinEQ {
		return InvalidID
	}
	rhs := g.node(rhsID)
	if rhs.Kind != KindBoolean {
		return InvalidID
	}
	if rhs.AuxBool {
		return lhsID
	}
	notNode := g.NewExpr(KindUnary, lhsID)
	g.node(notNode).UnaryOp = UnaryNot
	return notNode
}

// matchTestType folds `type(x) == "<name>"` into TestType(<kind>, x) over
// the closed set {real, boolean, null, list, object, closure, iterator,
// extension}.
func (f arithFolder) matchTestType(g *Graph, op BinaryOp, lhsID, rhsID ID) ID {
	if op != BinEQ {
		return InvalidID
	}
	lhs, rhs := g.node(lhsID), g.node(rhsID)
	call, lit := lhs, rhs
	if lit.Kind != KindSmallString && lit.Kind != KindLongString {
		call, lit = rhs, lhs
	}
	if call.Kind != KindICall || call.AuxString != "type" {
		return InvalidID
	}
	if lit.Kind != KindSmallString && lit.Kind != KindLongString {
		return InvalidID
	}
	kind, ok := LookupTypeKind(lit.AuxString)
	if !ok || len(call.Args) == 0 {
		return InvalidID
	}
	tt := g.NewExpr(KindTestType, call.Args[0])
	g.node(tt).TypeKind = kind
	return tt
}

// foldTernary implements §4.6's ternary rules: constant cond selects the
// matching branch; identical lhs/rhs collapses; `cond ? true : false`
// becomes ConvBoolean(cond) (here: cond itself, already boolean-shaped);
// `cond ? false : true` becomes the logical negation of cond.
func (f arithFolder) foldTernary(g *Graph, condID, lhsID, rhsID ID) ID {
	cond := g.node(condID)
	if cond.Kind == KindBoolean {
		if cond.AuxBool {
			return lhsID
		}
		return rhsID
	}
	if gvnEqual(g, g.node(lhsID), g.node(rhsID)) {
		return lhsID
	}
	lhs, rhs := g.node(lhsID), g.node(rhsID)
	if lhs.Kind == KindBoolean && rhs.Kind == KindBoolean {
		if lhs.AuxBool && !rhs.AuxBool {
			return condID
		}
		if !lhs.AuxBool && rhs.AuxBool {
			notNode := g.NewExpr(KindUnary, condID)
			g.node(notNode).UnaryOp = UnaryNot
			return notNode
		}
	}
	return InvalidID
}
