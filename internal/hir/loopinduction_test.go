package hir

import "testing"

// TestTypeLoopInductionVariablesInt64 builds a minimal loop scaffold by
// hand (header/if/exit, no body bytecode involved) with a two-operand
// phi(start=0, incr=phi+1) at the header — the exact linear-IV shape
// linearIVComponents recognizes — and checks that the phi is retagged to
// a LoopIVInt64 node and its increment re-specialized to unboxed int64
// arithmetic.
func TestTypeLoopInductionVariablesInt64(t *testing.T) {
	g := NewGraph()
	header := g.NewControlFlow(KindLoopHeader, g.start)
	ifNode := g.newNode(KindIf)
	g.addArg(ifNode, g.Boolean(true))
	g.addArg(ifNode, header)
	exitHead := g.NewControlFlow(KindIfFalse, ifNode)
	loopExit := g.NewControlFlow(KindLoopExit, exitHead)
	g.NewControlFlow(KindIfTrue, ifNode)

	start := g.Int64(0)
	step := g.Int64(1)
	phi := g.newNode(KindPhi)
	g.node(phi).Region = header
	g.addArg(phi, start)
	g.addArg(phi, start) // placeholder backedge operand, patched below
	incr := g.NewExpr(KindBinary, phi, step)
	g.node(incr).BinaryOp = BinAdd
	g.patchArg(phi, 1, incr)

	forest := BuildLoopForest(g)
	if len(forest.Roots) != 1 || forest.Roots[0].Header != header || forest.Roots[0].Exit != loopExit {
		t.Fatalf("scaffold invariant broken: expected one root loop pairing header/exit")
	}

	TypeLoopInductionVariables(g)

	if !g.node(phi).dead {
		t.Fatalf("expected the original phi to have been replaced")
	}

	var iv *Node
	for _, n := range g.arena {
		if n.Kind == KindLoopIVInt64 {
			if iv != nil {
				t.Fatalf("expected exactly one LoopIVInt64 node, found a second")
			}
			iv = n
		}
	}
	if iv == nil {
		t.Fatalf("expected the phi to be retagged to a LoopIVInt64 node")
	}
	if iv.Args[0] != start {
		t.Fatalf("expected the retagged node's start operand to be unchanged, got %v", iv.Args[0])
	}
}
