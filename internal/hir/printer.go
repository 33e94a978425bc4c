package hir

import (
	"fmt"

	"github.com/emicklei/dot"
)

// PrinterOption controls which edge families Print renders, mirroring
// GraphPrinter::Option's EFFECT_CHAIN/OPERAND_CHAIN/ALL_CHAIN modes.
type PrinterOption struct {
	RenderOperand  bool
	RenderEffect   bool
	RenderDominate bool // overlay immediate-dominator edges, per SPEC_FULL §12.4
}

// AllChains is the default option: render both operand and effect edges,
// no dominator overlay.
func AllChains() PrinterOption {
	return PrinterOption{RenderOperand: true, RenderEffect: true}
}

// Printer renders a Graph to Graphviz DOT for visual debugging, ported
// from graph-printer.cc's DotPrinter.
type Printer struct {
	opt PrinterOption
	dom *Dominators
}

// NewPrinter builds a Printer with the given rendering options.
func NewPrinter(opt PrinterOption) *Printer { return &Printer{opt: opt} }

// WithDominators attaches a precomputed Dominators so Print can overlay
// immediate-dominator edges (dashed, distinct color) alongside the
// control-flow graph.
func (p *Printer) WithDominators(d *Dominators) *Printer {
	p.dom = d
	return p
}

// Print renders the whole graph to a DOT document string.
func (p *Printer) Print(g *Graph) string {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	nodes := make(map[ID]dot.Node)
	get := func(id ID) dot.Node {
		if n, ok := nodes[id]; ok {
			return n
		}
		n := g.node(id)
		dn := graph.Node(nodeName(n)).Label(nodeLabel(n))
		styleNode(dn, n)
		nodes[id] = dn
		return dn
	}

	for _, id := range g.GetControlFlowNode() {
		cf := get(id)
		n := g.node(id)
		for _, pred := range g.Predecessors(id) {
			graph.Edge(get(pred), cf)
		}
		if p.opt.RenderOperand {
			p.renderOperandChain(graph, g, nodes, n)
		}
		if p.opt.RenderEffect && n.Effect != InvalidID {
			graph.Edge(get(n.Effect), cf).Attr("color", "red").Attr("style", "dashed")
		}
	}

	if p.opt.RenderDominate && p.dom != nil {
		for _, id := range g.GetControlFlowNode() {
			if idom := p.dom.ImmediateDominator(id); idom != InvalidID {
				graph.Edge(get(idom), get(id)).Attr("color", "blue").Attr("style", "dotted").Attr("label", "idom")
			}
		}
	}

	return graph.String()
}

// renderOperandChain walks the pure-expression operand DFS rooted at
// every operand of a control-flow node (its condition, phis, etc.),
// emitting one edge per operand slot.
func (p *Printer) renderOperandChain(graph *dot.Graph, g *Graph, nodes map[ID]dot.Node, cf *Node) {
	get := func(id ID) dot.Node {
		if n, ok := nodes[id]; ok {
			return n
		}
		n := g.node(id)
		dn := graph.Node(nodeName(n)).Label(nodeLabel(n))
		styleNode(dn, n)
		nodes[id] = dn
		return dn
	}
	for _, a := range cf.Args {
		if a == InvalidID || g.node(a).IsControlFlow() {
			continue
		}
		g.ExprOperandsDFS(a, func(id ID) {
			n := g.node(id)
			self := get(id)
			for _, operand := range n.Args {
				if operand == InvalidID {
					continue
				}
				graph.Edge(get(operand), self)
			}
		})
	}
}

func nodeName(n *Node) string {
	return fmt.Sprintf("%s_%d", kindNames[n.Kind], n.ID)
}

func nodeLabel(n *Node) string {
	switch n.Kind {
	case KindFloat64:
		return fmt.Sprintf("Float64(%v)", n.AuxFloat)
	case KindInt64:
		return fmt.Sprintf("Int64(%v)", n.AuxInt)
	case KindSmallString, KindLongString:
		return fmt.Sprintf("%s(%q)", kindNames[n.Kind], n.AuxString)
	case KindBoolean:
		return fmt.Sprintf("Boolean(%v)", n.AuxBool)
	}
	return nodeName(n)
}

func styleNode(dn dot.Node, n *Node) {
	switch n.Kind.Family() {
	case FamilyControlFlow:
		dn.Attr("shape", "box").Attr("style", "bold")
	case FamilyEffect:
		dn.Attr("shape", "ellipse").Attr("color", "red")
	default:
		if n.IsConstant() {
			dn.Attr("shape", "plaintext")
		} else {
			dn.Attr("shape", "ellipse")
		}
	}
}
