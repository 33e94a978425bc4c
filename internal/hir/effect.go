package hir

// EffectGroup tracks the current write effect for one memory region
// during construction (§4.5). There are three groups live at any time:
// Root (arbitrary/unknown memory), List (a specific tracked list) and
// Object (a specific tracked object) — matching the {list_root,
// object_root} pair hanging off the root described in the spec.
type EffectGroup struct {
	kind        RefKind // meaningful only for leaf groups
	isRoot      bool
	currentWrite ID // InvalidID means "NoWriteEffect" sentinel: nothing written yet
}

// EffectState is the builder's construction-time effect bookkeeping: one
// root group plus one list and one object leaf group. It is copied
// (shallow COW) whenever a new lexical scope is entered, and discarded at
// graph-construction end (§3.4).
type EffectState struct {
	Root   EffectGroup
	List   EffectGroup
	Object EffectGroup
}

// NewEffectState returns a fresh state with every group holding the
// NoWriteEffect sentinel (InvalidID).
func NewEffectState() *EffectState {
	return &EffectState{
		Root:   EffectGroup{isRoot: true, currentWrite: InvalidID},
		List:   EffectGroup{kind: RefList, currentWrite: InvalidID},
		Object: EffectGroup{kind: RefObject, currentWrite: InvalidID},
	}
}

// Clone performs the "copy on scope entry" COW duplication described in
// §4.5 / SPEC_FULL §10 design notes: cheap because a snapshot is three
// small value structs.
func (s *EffectState) Clone() *EffectState {
	clone := *s
	return &clone
}

// group returns the leaf group matching kind, or the root group for
// queries against arbitrary/unknown memory.
func (s *EffectState) group(kind RefKind, leaf bool) *EffectGroup {
	if !leaf {
		return &s.Root
	}
	if kind == RefList {
		return &s.List
	}
	return &s.Object
}

// AddRead attaches a read's dependency on a group's current write. The
// read itself is not otherwise changed (§4.5).
func (s *EffectState) AddRead(g *Graph, read ID, kind RefKind, leaf bool) {
	grp := s.group(kind, leaf)
	n := g.node(read)
	n.Effect = grp.currentWrite
	if grp.currentWrite != InvalidID {
		ge := g.node(grp.currentWrite)
		ge.Refs = append(ge.Refs, Ref{User: read, Slot: -1})
	}
}

// AddWrite installs a new write as happens-after the group's previous
// write, advances the group's current write, and propagates to the
// enclosing root (leaf write) or to both leaves (root write) — a write to
// the whole region aliases everything inside it (§4.5).
func (s *EffectState) AddWrite(g *Graph, write ID, kind RefKind, leaf bool) {
	n := g.node(write)
	grp := s.group(kind, leaf)
	n.Effect = grp.currentWrite
	grp.currentWrite = write

	if leaf {
		s.Root.currentWrite = write
	} else {
		s.List.currentWrite = write
		s.Object.currentWrite = write
	}
}

// Merge joins two branches' effect states at a control-flow region,
// creating an EffectPhi per group whose operands are the two sides'
// current writes. If both sides carry the NoWriteEffect sentinel for a
// group, the sentinel is kept rather than manufacturing a phi (§4.5).
func Merge(g *Graph, lhs, rhs *EffectState, region ID) *EffectState {
	out := NewEffectState()
	mergeGroup := func(l, r EffectGroup) ID {
		if l.currentWrite == InvalidID && r.currentWrite == InvalidID {
			return InvalidID
		}
		if l.currentWrite == r.currentWrite {
			return l.currentWrite
		}
		phi := g.newNode(KindEffectPhi)
		pn := g.node(phi)
		pn.Region = region
		g.addArg(phi, l.currentWrite)
		g.addArg(phi, r.currentWrite)
		return phi
	}
	out.Root.currentWrite = mergeGroup(lhs.Root, rhs.Root)
	out.List.currentWrite = mergeGroup(lhs.List, rhs.List)
	out.Object.currentWrite = mergeGroup(lhs.Object, rhs.Object)
	return out
}
