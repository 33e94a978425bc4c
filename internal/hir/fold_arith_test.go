package hir

import "testing"

// TestArithFolderConstBinaryFoldsFloat64 checks plain constant folding
// over the float64 arithmetic operators.
func TestArithFolderConstBinaryFoldsFloat64(t *testing.T) {
	g := NewGraph()
	a := g.Float64(2)
	b := g.Float64(3)

	got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinAdd, Lhs: a, Rhs: b})
	if got == InvalidID || g.node(got).Kind != KindFloat64 || g.node(got).AuxFloat != 5 {
		t.Fatalf("expected 2+3 to fold to Float64(5), got %v", got)
	}
}

// TestArithFolderSelfSubtractFoldsToZero checks the `a - a -> 0`
// reassociation rule fires on a non-constant, structurally identical
// pair of operands.
func TestArithFolderSelfSubtractFoldsToZero(t *testing.T) {
	g := NewGraph()
	a := g.newNode(KindArg)

	got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinSub, Lhs: a, Rhs: a})
	if got == InvalidID || g.node(got).Kind != KindFloat64 || g.node(got).AuxFloat != 0 {
		t.Fatalf("expected a-a to fold to Float64(0), got %v", got)
	}
}

// TestArithFolderReassociatesNegatedAdd checks `(-a) + b -> b - a`.
func TestArithFolderReassociatesNegatedAdd(t *testing.T) {
	g := NewGraph()
	a := g.newNode(KindArg)
	b := g.newNode(KindArg)
	negA := g.NewExpr(KindUnary, a)
	g.node(negA).UnaryOp = UnaryMinus

	got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinAdd, Lhs: negA, Rhs: b})
	if got == InvalidID {
		t.Fatalf("expected (-a)+b to reassociate, got no fold")
	}
	n := g.node(got)
	if n.Kind != KindBinary || n.BinaryOp != BinSub || n.Args[0] != b || n.Args[1] != a {
		t.Fatalf("expected (-a)+b to fold to Binary(Sub, b, a), got kind=%v op=%v args=%v", n.Kind, n.BinaryOp, n.Args)
	}
}

// TestArithFolderBooleanCompareCanonicalizes checks `a == true -> a` and
// `a == false -> !a`.
func TestArithFolderBooleanCompareCanonicalizes(t *testing.T) {
	g := NewGraph()
	a := g.newNode(KindArg)

	if got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinEQ, Lhs: a, Rhs: g.Boolean(true)}); got != a {
		t.Fatalf("expected a==true to fold to a, got %v", got)
	}

	got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinEQ, Lhs: a, Rhs: g.Boolean(false)})
	if got == InvalidID {
		t.Fatalf("expected a==false to fold, got no fold")
	}
	n := g.node(got)
	if n.Kind != KindUnary || n.UnaryOp != UnaryNot || n.Args[0] != a {
		t.Fatalf("expected a==false to fold to Unary(Not, a), got kind=%v op=%v args=%v", n.Kind, n.UnaryOp, n.Args)
	}
}

// TestArithFolderMatchesTestTypePattern checks `type(x) == "list"` folds
// to TestType(TypeList, x).
func TestArithFolderMatchesTestTypePattern(t *testing.T) {
	g := NewGraph()
	x := g.newNode(KindArg)
	call := icall(g, "type", x)
	lit := g.SmallString("list")

	got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinEQ, Lhs: call, Rhs: lit})
	if got == InvalidID {
		t.Fatalf("expected type(x)==\"list\" to fold, got no fold")
	}
	n := g.node(got)
	if n.Kind != KindTestType || n.TypeKind != TypeList || n.Args[0] != x {
		t.Fatalf("expected fold to TestType(TypeList, x), got kind=%v typeKind=%v args=%v", n.Kind, n.TypeKind, n.Args)
	}
}

// TestArithFolderMatchesTestTypePatternOperandOrderIndependent checks the
// pattern also fires with the literal on the left, `"list" == type(x)`.
func TestArithFolderMatchesTestTypePatternOperandOrderIndependent(t *testing.T) {
	g := NewGraph()
	x := g.newNode(KindArg)
	call := icall(g, "type", x)
	lit := g.SmallString("object")

	got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinEQ, Lhs: lit, Rhs: call})
	if got == InvalidID || g.node(got).Kind != KindTestType || g.node(got).TypeKind != TypeObject {
		t.Fatalf("expected \"object\"==type(x) to fold to TestType(TypeObject, x), got %v", got)
	}
}

// TestArithFolderFoldTernary checks the constant-condition and
// identical-branch ternary rules.
func TestArithFolderFoldTernary(t *testing.T) {
	g := NewGraph()
	thenV := g.Int64(1)
	elseV := g.Int64(2)

	if got := Drive(g, FoldRequest{Tag: ReqTernary, Cond: g.Boolean(true), Lhs: thenV, Rhs: elseV}); got != thenV {
		t.Fatalf("expected a true constant cond to select the then-branch, got %v", got)
	}
	if got := Drive(g, FoldRequest{Tag: ReqTernary, Cond: g.Boolean(false), Lhs: thenV, Rhs: elseV}); got != elseV {
		t.Fatalf("expected a false constant cond to select the else-branch, got %v", got)
	}

	cond := g.newNode(KindArg)
	if got := Drive(g, FoldRequest{Tag: ReqTernary, Cond: cond, Lhs: thenV, Rhs: thenV}); got != thenV {
		t.Fatalf("expected identical branches to collapse regardless of cond, got %v", got)
	}
}

// TestArithFolderSimplifyLogic checks the short-circuit rules for && and
// ||: a constant lhs selects or short-circuits, per §4.6.
func TestArithFolderSimplifyLogic(t *testing.T) {
	g := NewGraph()
	x := g.newNode(KindArg)

	got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinAnd, Lhs: g.Boolean(false), Rhs: x})
	if got == InvalidID || g.node(got).Kind != KindBoolean || g.node(got).AuxBool {
		t.Fatalf("expected false && x to fold to Boolean(false), got %v", got)
	}
	if got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinAnd, Lhs: g.Boolean(true), Rhs: x}); got != x {
		t.Fatalf("expected true && x to fold to x, got %v", got)
	}
	if got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinOr, Lhs: g.Boolean(true), Rhs: x}); got == InvalidID || g.node(got).Kind != KindBoolean || !g.node(got).AuxBool {
		t.Fatalf("expected true || x to fold to Boolean(true), got %v", got)
	}
	if got := Drive(g, FoldRequest{Tag: ReqBinary, BinOp: BinOr, Lhs: g.Boolean(false), Rhs: x}); got != x {
		t.Fatalf("expected false || x to fold to x, got %v", got)
	}
}
