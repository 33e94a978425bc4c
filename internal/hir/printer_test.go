package hir

import (
	"strings"
	"testing"
)

// TestPrinterRendersControlFlowAndConstants checks that Print emits a DOT
// document naming both control-flow nodes and the constant operands
// reachable from them, and that the dominator overlay only appears when
// requested.
func TestPrinterRendersControlFlowAndConstants(t *testing.T) {
	g := NewGraph()
	ifNode := g.NewControlFlow(KindIf, g.start)
	g.addArg(ifNode, g.Boolean(true))
	g.NewControlFlow(KindIfTrue, ifNode)
	g.NewControlFlow(KindIfFalse, ifNode)

	out := NewPrinter(AllChains()).Print(g)

	if !strings.Contains(out, "digraph") {
		t.Fatalf("expected a DOT digraph document, got: %s", out)
	}
	if !strings.Contains(out, "If_") {
		t.Fatalf("expected the If control-flow node to be rendered, got: %s", out)
	}
	if !strings.Contains(out, "Boolean(true)") {
		t.Fatalf("expected the Boolean(true) operand to be rendered, got: %s", out)
	}
	if strings.Contains(out, "idom") {
		t.Fatalf("did not expect a dominator overlay without RenderDominate, got: %s", out)
	}
}

// TestPrinterDominatorOverlay checks WithDominators + RenderDominate adds
// immediate-dominator edges to the output.
func TestPrinterDominatorOverlay(t *testing.T) {
	g := NewGraph()
	ifNode := g.NewControlFlow(KindIf, g.start)
	g.NewControlFlow(KindIfTrue, ifNode)

	dom := BuildDominators(g)
	opt := AllChains()
	opt.RenderDominate = true
	out := NewPrinter(opt).WithDominators(dom).Print(g)

	if !strings.Contains(out, "idom") {
		t.Fatalf("expected the dominator overlay to render idom-labeled edges, got: %s", out)
	}
}
