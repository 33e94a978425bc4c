package hir

import "testing"

// TestBuildLoopForestNestedLoops builds two hand-wired LoopHeader/LoopExit
// pairs, one lexically inside the other's body, and checks BuildLoopForest
// both pairs them correctly and nests the inner loop as a child of the
// outer one.
func TestBuildLoopForestNestedLoops(t *testing.T) {
	g := NewGraph()

	outerHeader := g.NewControlFlow(KindLoopHeader, g.start)
	outerIf := g.newNode(KindIf)
	g.addArg(outerIf, g.Boolean(true))
	g.addArg(outerIf, outerHeader)
	outerExitHead := g.NewControlFlow(KindIfFalse, outerIf)
	outerExit := g.NewControlFlow(KindLoopExit, outerExitHead)
	outerBodyHead := g.NewControlFlow(KindIfTrue, outerIf)

	innerHeader := g.NewControlFlow(KindLoopHeader, outerBodyHead)
	innerIf := g.newNode(KindIf)
	g.addArg(innerIf, g.Boolean(true))
	g.addArg(innerIf, innerHeader)
	innerExitHead := g.NewControlFlow(KindIfFalse, innerIf)
	innerExit := g.NewControlFlow(KindLoopExit, innerExitHead)
	g.NewControlFlow(KindIfTrue, innerIf)

	forest := BuildLoopForest(g)

	if len(forest.Roots) != 1 {
		t.Fatalf("expected exactly one root loop, got %d", len(forest.Roots))
	}
	outer := forest.Roots[0]
	if outer.Header != outerHeader || outer.Exit != outerExit {
		t.Fatalf("expected outer loop header/exit %v/%v, got %v/%v", outerHeader, outerExit, outer.Header, outer.Exit)
	}
	if len(outer.Children) != 1 {
		t.Fatalf("expected outer loop to have exactly one nested child, got %d", len(outer.Children))
	}
	inner := outer.Children[0]
	if inner.Header != innerHeader || inner.Exit != innerExit {
		t.Fatalf("expected inner loop header/exit %v/%v, got %v/%v", innerHeader, innerExit, inner.Header, inner.Exit)
	}
	if inner.Parent != outer {
		t.Fatalf("expected inner loop's parent to be the outer loop node")
	}

	order := forest.InnerFirst()
	if len(order) != 2 || order[0] != inner || order[1] != outer {
		t.Fatalf("expected InnerFirst to yield [inner, outer], got %v", order)
	}
}
