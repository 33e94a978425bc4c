package hir

// memoryFolder is the most intricate folder (§4.6): it numbers field
// references, forwards loads across a chain of writes, and collapses a
// new write into an existing one when safe, crossing control-flow joins
// via a conservative branch alias-analysis helper. Ported from
// fold-memory.cc's MemoryFolder.
type memoryFolder struct{}

func (memoryFolder) Name() string { return "memory" }

func (memoryFolder) CanFold(req FoldRequest) bool {
	switch req.Tag {
	case ReqObjectFind, ReqObjectRefGet, ReqObjectRefSet,
		ReqListIndex, ReqListRefGet, ReqListRefSet:
		return true
	}
	return false
}

func (f memoryFolder) Fold(g *Graph, req FoldRequest) ID {
	switch req.Tag {
	case ReqObjectFind:
		return f.findRef(g, req.Object, req.Key, RefObject, req.Effect)
	case ReqListIndex:
		return f.findRef(g, req.Object, req.Key, RefList, req.Effect)
	case ReqObjectRefGet:
		return f.storeForward(g, req.Ref, req.Effect)
	case ReqListRefGet:
		return f.storeForward(g, req.Ref, req.Effect)
	case ReqObjectRefSet:
		return f.storeCollapse(g, req.Ref, req.Value, req.Effect)
	case ReqListRefSet:
		return f.storeCollapse(g, req.Ref, req.Value, req.Effect)
	}
	return InvalidID
}

// refKey is FindRef's numbering-table key: {object, key, barrier, kind}
// under structural operand/effect equality (§4.6).
type refKey struct {
	object  ID
	key     ID
	barrier ID
	kind    RefKind
}

func fieldRefOf(g *Graph, ref ID) FieldRef {
	n := g.node(ref)
	return FieldRef{Object: n.Args[0], Comp: n.Args[1], Kind: n.RefKind}
}

// mostRecentHardBarrier walks the effect chain from pos back to the
// nearest EffectBarrierHard or EffectPhi, returning InvalidID if the
// chain runs out first (reached the NoWriteEffect sentinel / Start).
func mostRecentHardBarrier(g *Graph, pos ID) ID {
	cur := pos
	for cur != InvalidID {
		n := g.node(cur)
		if n.Kind == KindEffectBarrierHard || n.Kind == KindEffectPhi {
			return cur
		}
		cur = n.Effect
	}
	return InvalidID
}

// findRef implements reference numbering: walk barriers back to the most
// recent hard barrier; if a matching entry exists in the numbering table,
// reuse it; otherwise, if some intervening barrier MAY/MUST alias the
// object, give up. On acceptance, the new reference is registered keyed
// by its first barrier.
func (f memoryFolder) findRef(g *Graph, object, key ID, kind RefKind, effect ID) ID {
	barrier := mostRecentHardBarrier(g, effect)
	if g.refTable == nil {
		g.refTable = make(map[refKey]ID)
	}

	cur := effect
	for cur != barrier && cur != InvalidID {
		n := g.node(cur)
		aa := QueryBarrier(g, object, cur, kind)
		if n.Kind == KindEffectBarrierHard || n.Kind == KindListResize || n.Kind == KindObjectResize {
			if aa != AliasNot {
				return InvalidID // give up: an intervening barrier may touch this object
			}
		}
		cur = n.Effect
	}

	// structural lookup: two keys with structurally-equal object/key under
	// the same barrier denote the same reference (GVN over field refs).
	for k, id := range g.refTable {
		if k.barrier != barrier || k.kind != kind {
			continue
		}
		if gvnEqual(g, g.node(k.object), g.node(object)) && gvnEqual(g, g.node(k.key), g.node(key)) {
			return id
		}
	}
	// No existing entry and nothing aliased it away: InvalidID here means
	// "no fold", same as every other folder — the builder proceeds with
	// a freshly built ObjectFind/ListIndex node and numbers it itself via
	// RegisterRef right after.
	return InvalidID
}

// RegisterRef numbers a freshly built ObjectFind/ListIndex node into the
// table keyed by its first (most recent) hard barrier, so a later
// FindRef for the same {object,key} reuses it.
func (f memoryFolder) RegisterRef(g *Graph, ref ID, object, key ID, kind RefKind, effect ID) {
	barrier := mostRecentHardBarrier(g, effect)
	if g.refTable == nil {
		g.refTable = make(map[refKey]ID)
	}
	g.refTable[refKey{object: object, key: key, barrier: barrier, kind: kind}] = ref
}

// branchAA walks an EffectPhi's incoming writes and reports MUST/MAY/NOT
// against ref, requiring every branch to agree on NOT before the phi can
// be crossed. Per spec §9's flagged conservatism (kept intentionally, see
// SPEC_FULL §13.2): MUST on every branch is *not* treated as crossable —
// it is degraded to MAY, since forwarding/collapsing across a join needs
// NOT on every branch, not just agreement.
func branchAA(g *Graph, phi ID, ref FieldRef) AliasResult {
	n := g.node(phi)
	allNot := true
	for _, branch := range n.Args {
		res := aliasAlongChain(g, branch, ref)
		if res != AliasNot {
			allNot = false
		}
	}
	if allNot {
		return AliasNot
	}
	return AliasMay
}

// aliasAlongChain answers whether the single write node w aliases ref,
// used as the per-branch query inside branchAA.
func aliasAlongChain(g *Graph, w ID, ref FieldRef) AliasResult {
	if w == InvalidID {
		return AliasNot
	}
	n := g.node(w)
	switch n.Kind {
	case KindObjectRefSet, KindListRefSet:
		other := fieldRefOf(g, n.Args[0])
		return QueryFieldRef(g, ref, other)
	case KindListResize, KindObjectResize:
		return QueryBarrier(g, ref.Object, w, ref.Kind)
	}
	return AliasMay
}

// storeForward implements §4.6's store-forwarding primitive: walk the
// write chain from newest to older, forwarding the load's value when a
// write MUST-aliases ref, aborting on MAY, skipping past NOT writes and
// past EffectPhi/BranchStartEffect joins where every branch agrees NOT.
func (f memoryFolder) storeForward(g *Graph, ref, effect ID) ID {
	target := fieldRefOf(g, ref)
	cur := effect
	for cur != InvalidID {
		n := g.node(cur)
		switch n.Kind {
		case KindObjectRefSet, KindListRefSet:
			other := fieldRefOf(g, n.Args[0])
			switch QueryFieldRef(g, target, other) {
			case AliasMust:
				return n.Args[1]
			case AliasMay:
				return InvalidID
			}
			// NOT: continue past this write.
		case KindIRList, KindIRObject:
			if gvnEqual(g, g.node(n.Args[0]), g.node(target.Object)) {
				if v := loadFromContainer(g, n, target); v != InvalidID {
					return v
				}
			}
		case KindEffectPhi:
			if branchAA(g, cur, target) != AliasNot {
				return InvalidID
			}
			cur = skipPastBranchStart(g, cur)
			continue
		case KindBranchStartEffect:
			// reached end-marker directly; keep walking past it
		case KindEffectBarrierHard:
			return InvalidID
		}
		cur = n.Effect
	}
	return InvalidID
}

// storeCollapse implements §4.6's store-collapsing primitive: walk the
// write chain, abort if any read on the way aliases ref, overwrite an
// existing MUST-aliasing write's value in place (dropping the new write),
// or fold into a whole-container rebuild when possible.
func (f memoryFolder) storeCollapse(g *Graph, ref, value, effect ID) ID {
	target := fieldRefOf(g, ref)
	cur := effect
	for cur != InvalidID {
		n := g.node(cur)
		for _, r := range n.Refs {
			if r.Slot != -1 {
				continue // not a read dependency edge (AddRead records Slot: -1)
			}
			read := g.node(r.User)
			if read.Kind != KindObjectRefGet && read.Kind != KindListRefGet {
				continue
			}
			other := fieldRefOf(g, read.Args[0])
			if QueryFieldRef(g, target, other) != AliasNot {
				return InvalidID // a read observes the old value; cannot collapse
			}
		}
		switch n.Kind {
		case KindObjectRefSet, KindListRefSet:
			other := fieldRefOf(g, n.Args[0])
			if QueryFieldRef(g, target, other) == AliasMust {
				n.Args[1] = value
				return cur
			}
		case KindIRList, KindIRObject:
			if gvnEqual(g, g.node(n.Args[0]), g.node(target.Object)) {
				if rebuilt := storeIntoContainer(g, n, target, value); rebuilt != InvalidID {
					return rebuilt
				}
			}
		case KindEffectPhi:
			if branchAA(g, cur, target) != AliasNot {
				return InvalidID
			}
			cur = skipPastBranchStart(g, cur)
			continue
		case KindBranchStartEffect:
		case KindEffectBarrierHard:
			return InvalidID
		}
		cur = n.Effect
	}
	return InvalidID
}

func skipPastBranchStart(g *Graph, phi ID) ID {
	n := g.node(phi)
	for _, ref := range n.Refs {
		u := g.node(ref.User)
		if u.Kind == KindBranchStartEffect {
			return u.Effect
		}
	}
	return InvalidID
}

// loadFromContainer mirrors T.Load(component): reading a constant slot
// out of a just-built list/object literal.
func loadFromContainer(g *Graph, container *Node, ref FieldRef) ID {
	if container.Kind != KindIRList {
		return InvalidID
	}
	idx := g.node(ref.Comp)
	if idx.Kind != KindFloat64 {
		return InvalidID
	}
	i := int(idx.AuxFloat)
	if i < 0 || i >= len(container.Args) {
		return InvalidID
	}
	return container.Args[i]
}

// storeIntoContainer mirrors T.Store(component, V): rebuilding a
// list literal with one slot replaced.
func storeIntoContainer(g *Graph, container *Node, ref FieldRef, value ID) ID {
	if container.Kind != KindIRList {
		return InvalidID
	}
	idx := g.node(ref.Comp)
	if idx.Kind != KindFloat64 {
		return InvalidID
	}
	i := int(idx.AuxFloat)
	if i < 0 || i >= len(container.Args) {
		return InvalidID
	}
	elems := append([]ID(nil), container.Args...)
	elems[i] = value
	return g.NewExpr(KindIRList, elems...)
}
