package hir

import "testing"

// TestBuildDominatorsDiamond builds a bare Start -> If -> {IfTrue, IfFalse}
// -> Region diamond by hand (no builder involved) and checks both the
// dominator set and the immediate dominator at the merge point, which is
// the case that exposed the timestamp-direction bug in the immediate-
// dominator selection (picking Start instead of the nearest ancestor).
func TestBuildDominatorsDiamond(t *testing.T) {
	g := NewGraph()
	ifNode := g.NewControlFlow(KindIf, g.start)
	thenBranch := g.NewControlFlow(KindIfTrue, ifNode)
	elseBranch := g.NewControlFlow(KindIfFalse, ifNode)
	merge := g.NewControlFlow(KindRegion, thenBranch, elseBranch)

	d := BuildDominators(g)

	if !d.Dominates(merge, g.start) {
		t.Fatalf("expected Start to dominate merge")
	}
	if !d.Dominates(merge, ifNode) {
		t.Fatalf("expected If to dominate merge")
	}
	if d.Dominates(merge, thenBranch) {
		t.Fatalf("did not expect IfTrue to dominate merge (only one of two paths)")
	}
	if d.Dominates(merge, elseBranch) {
		t.Fatalf("did not expect IfFalse to dominate merge (only one of two paths)")
	}

	if got := d.ImmediateDominator(merge); got != ifNode {
		t.Fatalf("expected If to be merge's immediate dominator, got %v", got)
	}
	if got := d.ImmediateDominator(thenBranch); got != ifNode {
		t.Fatalf("expected If to be IfTrue's immediate dominator, got %v", got)
	}
	if got := d.ImmediateDominator(ifNode); got != g.start {
		t.Fatalf("expected Start to be If's immediate dominator, got %v", got)
	}
	if got := d.ImmediateDominator(g.start); got != InvalidID {
		t.Fatalf("expected Start to have no immediate dominator, got %v", got)
	}
}

// TestCommonDominators checks that the two branches' nearest shared
// dominator is the If node itself, the query the scheduler relies on to
// place a node no earlier than both of its uses allow.
func TestCommonDominators(t *testing.T) {
	g := NewGraph()
	ifNode := g.NewControlFlow(KindIf, g.start)
	thenBranch := g.NewControlFlow(KindIfTrue, ifNode)
	elseBranch := g.NewControlFlow(KindIfFalse, ifNode)

	d := BuildDominators(g)
	common := d.CommonDominators(thenBranch, elseBranch)

	foundIf := false
	for _, id := range common {
		if id == thenBranch || id == elseBranch {
			t.Fatalf("common dominators should not include either branch itself, got %v", id)
		}
		if id == ifNode {
			foundIf = true
		}
	}
	if !foundIf {
		t.Fatalf("expected If in the common dominator set of its two branches")
	}
}
