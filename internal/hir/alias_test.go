package hir

import "testing"

// TestQueryFieldRefExactMatch checks the cheap identity shortcut: the same
// object/component/kind triple always answers Must without needing GVN.
func TestQueryFieldRefExactMatch(t *testing.T) {
	g := NewGraph()
	list := g.NewExpr(KindIRList)
	idx := g.Int64(0)
	ref := FieldRef{Object: list, Comp: idx, Kind: RefList}

	if got := QueryFieldRef(g, ref, ref); got != AliasMust {
		t.Fatalf("expected Must for an identical field ref, got %v", got)
	}
}

// TestQueryFieldRefKindMismatch checks that a list-typed ref and an
// object-typed ref into the same slot never alias, regardless of object
// or component equality.
func TestQueryFieldRefKindMismatch(t *testing.T) {
	g := NewGraph()
	list := g.NewExpr(KindIRList)
	idx := g.Int64(0)
	l := FieldRef{Object: list, Comp: idx, Kind: RefList}
	o := FieldRef{Object: list, Comp: idx, Kind: RefObject}

	if got := QueryFieldRef(g, l, o); got != AliasNot {
		t.Fatalf("expected Not for mismatched ref kinds, got %v", got)
	}
}

// TestQueryFieldRefSameObjectDifferentIntIndex checks that two integer
// constant indices into the same container answer May, not Not: the
// analysis is conservative for non-float/non-string components (the
// design notes call this out as an accepted precision loss, not a bug).
func TestQueryFieldRefSameObjectDifferentIntIndex(t *testing.T) {
	g := NewGraph()
	list := g.NewExpr(KindIRList)
	idx0 := g.Int64(0)
	idx1 := g.Int64(1)
	a := FieldRef{Object: list, Comp: idx0, Kind: RefList}
	b := FieldRef{Object: list, Comp: idx1, Kind: RefList}

	if got := QueryFieldRef(g, a, b); got != AliasMay {
		t.Fatalf("expected May for distinct integer indices into the same object, got %v", got)
	}
}

// TestQueryFieldRefSameObjectDifferentFloatIndex checks the precise case:
// two distinct float constant indices into the same object can never
// alias (floats are exact literal values, not runtime-computed keys).
func TestQueryFieldRefSameObjectDifferentFloatIndex(t *testing.T) {
	g := NewGraph()
	list := g.NewExpr(KindIRList)
	idx0 := g.Float64(0)
	idx1 := g.Float64(1)
	a := FieldRef{Object: list, Comp: idx0, Kind: RefList}
	b := FieldRef{Object: list, Comp: idx1, Kind: RefList}

	if got := QueryFieldRef(g, a, b); got != AliasNot {
		t.Fatalf("expected Not for distinct float indices into the same object, got %v", got)
	}
}

// TestQueryFieldRefDistinctContainerLiterals checks that two distinct
// literal containers never alias, even when indexed identically.
func TestQueryFieldRefDistinctContainerLiterals(t *testing.T) {
	g := NewGraph()
	listA := g.NewExpr(KindIRList)
	listB := g.NewExpr(KindIRList)
	idx := g.Int64(0)
	a := FieldRef{Object: listA, Comp: idx, Kind: RefList}
	b := FieldRef{Object: listB, Comp: idx, Kind: RefList}

	if got := QueryFieldRef(g, a, b); got != AliasNot {
		t.Fatalf("expected Not for two distinct container literals, got %v", got)
	}
}

// TestQueryFieldRefParamVsLiteral checks that a literal container can
// never alias a function argument (a fresh allocation can't be the
// caller-supplied object).
func TestQueryFieldRefParamVsLiteral(t *testing.T) {
	g := NewGraph()
	list := g.NewExpr(KindIRList)
	arg := g.newNode(KindArg)
	idx := g.Int64(0)
	a := FieldRef{Object: list, Comp: idx, Kind: RefList}
	b := FieldRef{Object: arg, Comp: idx, Kind: RefList}

	if got := QueryFieldRef(g, a, b); got != AliasNot {
		t.Fatalf("expected Not for a literal container vs. a function argument, got %v", got)
	}
}

// TestQueryBarrierMatchingResize checks that a list-resize barrier reports
// Must against the exact object it resizes, and Not when typeHint asks
// about the disjoint (object) ref family.
func TestQueryBarrierMatchingResize(t *testing.T) {
	g := NewGraph()
	list := g.NewExpr(KindIRList)
	resize := g.NewEffect(KindListResize, g.start, list)

	if got := QueryListBarrier(g, list, resize); got != AliasMust {
		t.Fatalf("expected Must for the resized list against its own resize barrier, got %v", got)
	}
	if got := QueryObjectBarrier(g, list, resize); got != AliasNot {
		t.Fatalf("expected Not when querying a list-resize barrier under the object ref kind, got %v", got)
	}
}

// TestQueryBarrierUnrelatedObject checks that a resize barrier on one
// object doesn't claim Must (or Not) against an unrelated object — the
// conservative May answer.
func TestQueryBarrierUnrelatedObject(t *testing.T) {
	g := NewGraph()
	listA := g.NewExpr(KindIRList)
	listB := g.NewExpr(KindIRList)
	resize := g.NewEffect(KindListResize, g.start, listA)

	if got := QueryListBarrier(g, listB, resize); got != AliasMay {
		t.Fatalf("expected May for an unrelated object against a resize barrier, got %v", got)
	}
}
