package hir

import "testing"

// TestBoxFolderElidesRoundTrip checks Box(Unbox(x, k), k) and
// Unbox(Box(x, k), k) both elide to x when the TypeKind tag matches,
// the pattern the loop-induction typer relies on to avoid re-boxing a
// value it just unboxed for arithmetic.
func TestBoxFolderElidesRoundTrip(t *testing.T) {
	g := NewGraph()
	x := g.Int64(5)

	unbox := g.NewExpr(KindUnbox, x)
	g.node(unbox).TypeKind = TypeUnboxedInt64
	box := g.NewExpr(KindBox, unbox)
	g.node(box).TypeKind = TypeUnboxedInt64

	if got := Drive(g, FoldRequest{Tag: ReqExpr, Node: box}); got != x {
		t.Fatalf("expected Box(Unbox(x, k), k) to fold to x, got %v", got)
	}

	box2 := g.NewExpr(KindBox, x)
	g.node(box2).TypeKind = TypeUnboxedFloat64
	unbox2 := g.NewExpr(KindUnbox, box2)
	g.node(unbox2).TypeKind = TypeUnboxedFloat64

	if got := Drive(g, FoldRequest{Tag: ReqExpr, Node: unbox2}); got != x {
		t.Fatalf("expected Unbox(Box(x, k), k) to fold to x, got %v", got)
	}
}

// TestBoxFolderMismatchedTypeKindDoesNotFold checks that a Box/Unbox
// pair whose TypeKind tags disagree (e.g. an int64 unbox feeding a
// float64 box) is left unfolded — collapsing it would silently change
// which raw representation the value is claimed to hold.
func TestBoxFolderMismatchedTypeKindDoesNotFold(t *testing.T) {
	g := NewGraph()
	x := g.Int64(5)

	unbox := g.NewExpr(KindUnbox, x)
	g.node(unbox).TypeKind = TypeUnboxedInt64
	box := g.NewExpr(KindBox, unbox)
	g.node(box).TypeKind = TypeUnboxedFloat64

	if got := Drive(g, FoldRequest{Tag: ReqExpr, Node: box}); got != InvalidID {
		t.Fatalf("expected mismatched TypeKind Box/Unbox to not fold, got %v", got)
	}
}

// TestBoxFolderNonBoxUnboxInputReturnsNoFold checks SPEC_FULL §13.1's
// decision: Unbox of a non-Box input (or Box of a non-Unbox input)
// returns InvalidID rather than the input node itself.
func TestBoxFolderNonBoxUnboxInputReturnsNoFold(t *testing.T) {
	g := NewGraph()
	x := g.Int64(5)

	unbox := g.NewExpr(KindUnbox, x)
	g.node(unbox).TypeKind = TypeUnboxedInt64

	if got := Drive(g, FoldRequest{Tag: ReqExpr, Node: unbox}); got != InvalidID {
		t.Fatalf("expected Unbox of a non-Box input to not fold, got %v", got)
	}
}
