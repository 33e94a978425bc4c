package hir

// boxFolder elides Box(Unbox(x, k), k) and Unbox(Box(x, k), k) when the
// type kind matches, ported from fold-box.cc's FoldBoxNode/FoldUnboxNode.
//
// FoldUnboxNode's decision on a non-Box input: the original leaves both
// branches of its if/IsUnboxNode() check empty, with no return value —
// undefined by the source (spec §9 Open Question). We return InvalidID
// ("no fold") rather than the input node, per SPEC_FULL §13.1: every
// other folder's contract treats InvalidID as "no rewrite, caller keeps
// the built node", and returning the input here would be indistinguishable
// from "folded to itself", breaking the idempotence property of spec §8.
type boxFolder struct{}

func (boxFolder) Name() string { return "box" }

func (boxFolder) CanFold(req FoldRequest) bool {
	return req.Tag == ReqExpr
}

func (boxFolder) Fold(g *Graph, req FoldRequest) ID {
	n := g.node(req.Node)
	switch n.Kind {
	case KindBox:
		return foldBoxNode(g, n)
	case KindUnbox:
		return foldUnboxNode(g, n)
	}
	return InvalidID
}

func foldBoxNode(g *Graph, box *Node) ID {
	inner := g.node(box.Args[0])
	if inner.Kind == KindUnbox && inner.TypeKind == box.TypeKind {
		return inner.Args[0]
	}
	return InvalidID
}

func foldUnboxNode(g *Graph, unbox *Node) ID {
	inner := g.node(unbox.Args[0])
	if inner.Kind == KindBox && inner.TypeKind == unbox.TypeKind {
		return inner.Args[0]
	}
	return InvalidID
}
