package hir

import "testing"

func icall(g *Graph, name string, args ...ID) ID {
	n := g.NewExpr(KindICall, args...)
	g.node(n).AuxString = name
	return n
}

// TestIntrinsicFolderMathBuiltins checks a sample of the constant-folded
// math intrinsics against their Go math equivalents.
func TestIntrinsicFolderMathBuiltins(t *testing.T) {
	g := NewGraph()

	sqrt := icall(g, "sqrt", g.Float64(9.0))
	got := Drive(g, FoldRequest{Tag: ReqExpr, Node: sqrt})
	if got == InvalidID || g.node(got).Kind != KindFloat64 || g.node(got).AuxFloat != 3.0 {
		t.Fatalf("expected sqrt(9) to fold to Float64(3), got %v", got)
	}

	maxc := icall(g, "max", g.Float64(2.0), g.Float64(5.0))
	got = Drive(g, FoldRequest{Tag: ReqExpr, Node: maxc})
	if got == InvalidID || g.node(got).AuxFloat != 5.0 {
		t.Fatalf("expected max(2,5) to fold to Float64(5), got %v", got)
	}
}

// TestIntrinsicFolderBitwiseOps checks the 32-bit bitwise/shift intrinsics
// truncate through asUint32/asUint8 as fold-intrinsic.cc does.
func TestIntrinsicFolderBitwiseOps(t *testing.T) {
	g := NewGraph()

	lsh := icall(g, "lshift", g.Float64(1.0), g.Float64(4.0))
	got := Drive(g, FoldRequest{Tag: ReqExpr, Node: lsh})
	if got == InvalidID || g.node(got).AuxFloat != 16.0 {
		t.Fatalf("expected lshift(1,4) to fold to Float64(16), got %v", got)
	}

	band := icall(g, "band", g.Float64(6.0), g.Float64(3.0))
	got = Drive(g, FoldRequest{Tag: ReqExpr, Node: band})
	if got == InvalidID || g.node(got).AuxFloat != 2.0 {
		t.Fatalf("expected band(6,3) to fold to Float64(2), got %v", got)
	}
}

// TestIntrinsicFolderCoercions checks int/real/string coercion intrinsics
// across all three dynamic source kinds (real, string, boolean).
func TestIntrinsicFolderCoercions(t *testing.T) {
	g := NewGraph()

	toInt := icall(g, "int", g.Float64(3.9))
	got := Drive(g, FoldRequest{Tag: ReqExpr, Node: toInt})
	if got == InvalidID || g.node(got).AuxFloat != 3.0 {
		t.Fatalf("expected int(3.9) to truncate-fold to Float64(3), got %v", got)
	}

	toReal := icall(g, "real", g.LongString("2.5"))
	got = Drive(g, FoldRequest{Tag: ReqExpr, Node: toReal})
	if got == InvalidID || g.node(got).AuxFloat != 2.5 {
		t.Fatalf("expected real(\"2.5\") to fold to Float64(2.5), got %v", got)
	}

	toStr := icall(g, "string", g.Boolean(true))
	got = Drive(g, FoldRequest{Tag: ReqExpr, Node: toStr})
	if got == InvalidID || g.node(got).AuxString != "true" {
		t.Fatalf("expected string(true) to fold to SmallString(\"true\"), got %v", got)
	}
}

// TestIntrinsicFolderPushPopOnConstantList checks push/pop on a constant
// list literal clone-and-extend/truncate rather than mutate in place.
func TestIntrinsicFolderPushPopOnConstantList(t *testing.T) {
	g := NewGraph()
	list := g.NewExpr(KindIRList, g.Int64(1), g.Int64(2))

	push := icall(g, "push", list, g.Int64(3))
	got := Drive(g, FoldRequest{Tag: ReqExpr, Node: push})
	if got == InvalidID || len(g.node(got).Args) != 3 {
		t.Fatalf("expected push to fold to a 3-element list, got %v", got)
	}
	if len(g.node(list).Args) != 2 {
		t.Fatalf("expected the original list literal to be left untouched by push")
	}

	pop := icall(g, "pop", list)
	got = Drive(g, FoldRequest{Tag: ReqExpr, Node: pop})
	if got == InvalidID || len(g.node(got).Args) != 1 {
		t.Fatalf("expected pop to fold to a 1-element list, got %v", got)
	}
}

// TestIntrinsicFolderUnknownNameDoesNotFold checks a call name outside
// the recognized intrinsic set is left unfolded.
func TestIntrinsicFolderUnknownNameDoesNotFold(t *testing.T) {
	g := NewGraph()
	call := icall(g, "print", g.Int64(1))

	if got := Drive(g, FoldRequest{Tag: ReqExpr, Node: call}); got != InvalidID {
		t.Fatalf("expected an unrecognized intrinsic name to not fold, got %v", got)
	}
}
