package hir

// AliasResult is the three-valued answer alias queries produce (§4.4).
type AliasResult uint8

const (
	AliasMust AliasResult = iota
	AliasMay
	AliasNot
)

// FieldRef identifies a container slot: the object expression and the
// component (key or index) selecting a slot within it, typed by RefKind.
type FieldRef struct {
	Object ID
	Comp   ID
	Kind   RefKind
}

// QueryFieldRef answers the field-reference-vs-field-reference alias
// query, ported rule-for-rule from AA::Query(FieldRefNode, FieldRefNode)
// in aa.cc.
func QueryFieldRef(g *Graph, l, r FieldRef) AliasResult {
	if l.Object == r.Object && l.Comp == r.Comp && l.Kind == r.Kind {
		return AliasMust
	}
	if l.Kind != r.Kind {
		return AliasNot
	}

	lobj, robj := g.node(l.Object), g.node(r.Object)
	lcomp, rcomp := g.node(l.Comp), g.node(r.Comp)

	if gvnEqual(g, lobj, robj) {
		if gvnEqual(g, lcomp, rcomp) {
			return AliasMust
		}
		bothFloat := lcomp.Kind == KindFloat64 && rcomp.Kind == KindFloat64
		bothString := (lcomp.Kind == KindSmallString || lcomp.Kind == KindLongString) &&
			(rcomp.Kind == KindSmallString || rcomp.Kind == KindLongString)
		if bothFloat || bothString {
			return AliasNot
		}
		return AliasMay
	}

	isContainerLiteral := func(n *Node) bool { return n.Kind == KindIRList || n.Kind == KindIRObject }
	isParamLike := func(n *Node) bool { return n.Kind == KindArg || n.Kind == KindUGet }

	if isContainerLiteral(lobj) && (isParamLike(robj) || isContainerLiteral(robj)) {
		return AliasNot
	}
	if isContainerLiteral(robj) && (isParamLike(lobj) || isContainerLiteral(lobj)) {
		return AliasNot
	}
	return AliasMay
}

// QueryBarrier answers the memory-object-vs-effect-barrier alias query
// (typed), ported from AA::Query(Expr*, EffectBarrier*, TypeKind).
func QueryBarrier(g *Graph, object ID, barrier ID, typeHint RefKind) AliasResult {
	b := g.node(barrier)
	switch b.Kind {
	case KindListResize:
		if typeHint == RefObject {
			return AliasNot
		}
		resizerObj := b.Args[0]
		if gvnEqual(g, g.node(resizerObj), g.node(object)) {
			return AliasMust
		}
	case KindObjectResize:
		if typeHint == RefList {
			return AliasNot
		}
		resizerObj := b.Args[0]
		if gvnEqual(g, g.node(resizerObj), g.node(object)) {
			return AliasMust
		}
	}
	return AliasMay
}

func QueryObjectBarrier(g *Graph, object, barrier ID) AliasResult {
	return QueryBarrier(g, object, barrier, RefObject)
}

func QueryListBarrier(g *Graph, list, barrier ID) AliasResult {
	return QueryBarrier(g, list, barrier, RefList)
}
