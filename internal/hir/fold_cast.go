package hir

// castFolder implements the one cast-folding rule in spec §4.6:
//
//	Float64ToInt64(Unbox(Float64 const)) -> Int64(const)
//
// when the value is exactly representable as an int64, ported from
// fold-cast.cc's CastFolder (TryCastReal).
type castFolder struct{}

func (castFolder) Name() string { return "cast" }

func (castFolder) CanFold(req FoldRequest) bool {
	return req.Tag == ReqExpr
}

func (castFolder) Fold(g *Graph, req FoldRequest) ID {
	n := g.node(req.Node)
	if n.Kind != KindFloat64ToInt64 {
		return InvalidID
	}
	unbox := g.node(n.Args[0])
	if unbox.Kind != KindUnbox {
		return InvalidID
	}
	cst := g.node(unbox.Args[0])
	if cst.Kind != KindFloat64 {
		return InvalidID
	}
	iv := int64(cst.AuxFloat)
	if float64(iv) != cst.AuxFloat {
		return InvalidID // not exactly representable; leave the cast as written
	}
	return g.Int64(iv)
}
