package hir

// Graph roots the start/end regions of one compiled function, owns the
// node arena and hands out dense monotonically increasing ids. A Graph is
// single-owner: one worker builds and optimizes it at a time (§5).
type Graph struct {
	arena []*Node // indexed by ID; the arena, dropped wholesale with the Graph
	start ID
	end   ID

	// constPool deduplicates literal nodes created directly (not through
	// the folder chain), mirroring NodeFactory's constant pool in ir.h.
	constPool map[constKey]ID

	// refTable is the memory folder's numbering table (FindRef in
	// fold-memory.cc). It lives on the graph rather than on the folder
	// instance because the folder registry is shared, read-only, global
	// state (§5); the numbering table is per-compile-job mutable state.
	refTable map[refKey]ID
}

type constKey struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// NewGraph allocates an empty graph with its Start and End control-flow
// nodes already installed.
func NewGraph() *Graph {
	g := &Graph{constPool: make(map[constKey]ID)}
	g.start = g.newNode(KindStart)
	g.end = g.newNode(KindEnd)
	return g
}

func (g *Graph) Start() ID { return g.start }
func (g *Graph) End() ID   { return g.end }

// MaxID returns one past the highest id ever allocated; side-tables sized
// to this bound never need to be resized mid-pass.
func (g *Graph) MaxID() int { return len(g.arena) }

func (g *Graph) node(id ID) *Node {
	if id == InvalidID {
		return nil
	}
	return g.arena[id]
}

// Node exposes the node for id to external passes (dominators, printer,
// loop forest) without handing out the arena itself.
func (g *Graph) Node(id ID) *Node { return g.node(id) }

// newNode allocates a bare node of the given kind, stamps its id, zeroes
// its edge lists, and appends it to the arena. No public operation frees a
// node; replacement only rewires references (§4.1/§4.2).
func (g *Graph) newNode(kind Kind) ID {
	n := &Node{ID: ID(len(g.arena)), Kind: kind, Effect: InvalidID, Region: InvalidID}
	g.arena = append(g.arena, n)
	return n.ID
}

// NewControlFlow allocates a control-flow region node with the given
// predecessor edges recorded as operands (so dominator/loop-forest passes
// can walk backward_edge() the way the original's iterators do).
func (g *Graph) NewControlFlow(kind Kind, preds ...ID) ID {
	id := g.newNode(kind)
	for _, p := range preds {
		g.addArg(id, p)
	}
	return id
}

// NewEffect allocates an effect/barrier marker node.
func (g *Graph) NewEffect(kind Kind, region ID, deps ...ID) ID {
	id := g.newNode(kind)
	n := g.node(id)
	n.Region = region
	for _, d := range deps {
		g.addArg(id, d)
	}
	return id
}

// addArg appends operand `arg` to `user` and records the back-reference,
// maintaining the reference-list invariant of §3.3.
func (g *Graph) addArg(user, arg ID) int {
	u := g.node(user)
	slot := len(u.Args)
	u.Args = append(u.Args, arg)
	if arg != InvalidID {
		a := g.node(arg)
		a.Refs = append(a.Refs, Ref{User: user, Slot: slot})
	}
	return slot
}

// NewExpr allocates an expression node of the given kind with the supplied
// operands. The caller is expected to run the folder chain against the
// matching FoldRequest afterward; NewExpr itself does not fold (Builder
// does, mirroring Graph::new_expr's documented contract in spec §6).
func (g *Graph) NewExpr(kind Kind, operands ...ID) ID {
	id := g.newNode(kind)
	for _, o := range operands {
		g.addArg(id, o)
	}
	return id
}

// constant helpers: literal nodes are deduplicated through constPool so
// that two occurrences of e.g. Float64(1.5) in the same graph share a
// single node, matching NodeFactory's constant pool.

func (g *Graph) Float64(v float64) ID {
	return g.internConst(constKey{kind: KindFloat64, f: v}, func() ID {
		id := g.newNode(KindFloat64)
		g.node(id).AuxFloat = v
		return id
	})
}

func (g *Graph) Int64(v int64) ID {
	return g.internConst(constKey{kind: KindInt64, i: v}, func() ID {
		id := g.newNode(KindInt64)
		g.node(id).AuxInt = v
		return id
	})
}

func (g *Graph) SmallString(s string) ID {
	return g.internConst(constKey{kind: KindSmallString, s: s}, func() ID {
		id := g.newNode(KindSmallString)
		g.node(id).AuxString = s
		return id
	})
}

func (g *Graph) LongString(s string) ID {
	return g.internConst(constKey{kind: KindLongString, s: s}, func() ID {
		id := g.newNode(KindLongString)
		g.node(id).AuxString = s
		return id
	})
}

func (g *Graph) Boolean(b bool) ID {
	return g.internConst(constKey{kind: KindBoolean, b: b}, func() ID {
		id := g.newNode(KindBoolean)
		g.node(id).AuxBool = b
		return id
	})
}

func (g *Graph) Nil() ID {
	return g.internConst(constKey{kind: KindNil}, func() ID {
		return g.newNode(KindNil)
	})
}

func (g *Graph) internConst(key constKey, create func() ID) ID {
	if id, ok := g.constPool[key]; ok {
		return id
	}
	id := create()
	g.constPool[key] = id
	return id
}

// Replace rewires every use of old to point at replacement, transferring
// old's effect edge if it had one. It does not delete old: the node stays
// in the arena but becomes unreachable from any live operand list (§3.4).
// Replacing a pure node with an effectful one is a contract violation the
// folder chain must never attempt (§4.2); Replace panics rather than
// silently corrupting the effect chain.
func (g *Graph) Replace(old, replacement ID) {
	if old == replacement {
		return
	}
	o := g.node(old)
	r := g.node(replacement)
	if o.isPureForGVN() && !r.isPureForGVN() {
		panic("hir: replace: cannot replace a pure node with an effectful one")
	}
	for _, ref := range o.Refs {
		user := g.node(ref.User)
		user.Args[ref.Slot] = replacement
		r.Refs = append(r.Refs, ref)
	}
	if o.Effect != InvalidID && r.Effect == InvalidID {
		r.Effect = o.Effect
	}
	o.Refs = nil
	o.dead = true
}

// patchArg rewrites user's operand at slot to point at newArg, updating
// both sides' Refs bookkeeping. Used by the builder to back-patch a loop
// header phi's backedge operand once the loop body has been built, after
// the phi was first created with a self-loop placeholder (§4.3's two-pass
// phi construction for loop headers).
func (g *Graph) patchArg(user ID, slot int, newArg ID) {
	u := g.node(user)
	old := u.Args[slot]
	if old == newArg {
		return
	}
	if old != InvalidID {
		o := g.node(old)
		for i, ref := range o.Refs {
			if ref.User == user && ref.Slot == slot {
				o.Refs = append(o.Refs[:i], o.Refs[i+1:]...)
				break
			}
		}
	}
	u.Args[slot] = newArg
	if newArg != InvalidID {
		n := g.node(newArg)
		n.Refs = append(n.Refs, Ref{User: user, Slot: slot})
	}
}

// --- Iterators ---
//
// All iterators use explicit visit-marker bitsets sized to the id ceiling
// rather than recursive DFS, bounding stack usage on deep graphs (§4.1).

type visitSet struct{ seen []bool }

func newVisitSet(n int) *visitSet { return &visitSet{seen: make([]bool, n)} }

func (v *visitSet) mark(id ID) bool {
	if v.seen[id] {
		return false
	}
	v.seen[id] = true
	return true
}

// controlFlowSuccessors returns the forward control-flow edges out of a
// region: every other control-flow node whose operand list contains it.
func (g *Graph) controlFlowSuccessors(id ID) []ID {
	var out []ID
	for _, ref := range g.node(id).Refs {
		u := g.node(ref.User)
		if u.IsControlFlow() {
			out = append(out, ref.User)
		}
	}
	return out
}

// ControlFlowPostOrder visits every control-flow region reachable from
// Start in post-order (used to assign DFS timestamps for dominators).
func (g *Graph) ControlFlowPostOrder() []ID {
	visited := newVisitSet(g.MaxID())
	var order []ID
	var walk func(ID)
	walk = func(id ID) {
		if !visited.mark(id) {
			return
		}
		for _, s := range g.controlFlowSuccessors(id) {
			walk(s)
		}
		order = append(order, id)
	}
	walk(g.start)
	return order
}

// ControlFlowReversePostOrder visits every control-flow region reachable
// from Start such that every node appears after all of its ancestors —
// the order the dominator computation and loop-forest builder iterate in.
func (g *Graph) ControlFlowReversePostOrder() []ID {
	post := g.ControlFlowPostOrder()
	rpo := make([]ID, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}
	return rpo
}

// GetControlFlowNode collects every control-flow node in the arena
// (mirrors Graph::GetControlFlowNode used to seed the dominator-set
// data-flow with the full universe of regions).
func (g *Graph) GetControlFlowNode() []ID {
	var out []ID
	for _, n := range g.arena {
		if n.IsControlFlow() {
			out = append(out, n.ID)
		}
	}
	return out
}

// ExprOperandsDFS performs a depth-first walk over the operand edges of an
// expression subgraph rooted at id, calling visit once per reachable
// node (used by printing and marker passes per §4.1).
func (g *Graph) ExprOperandsDFS(root ID, visit func(ID)) {
	visited := newVisitSet(g.MaxID())
	var walk func(ID)
	walk = func(id ID) {
		if id == InvalidID || !visited.mark(id) {
			return
		}
		n := g.node(id)
		for _, a := range n.Args {
			walk(a)
		}
		visit(id)
	}
	walk(root)
}

// Predecessors returns the control-flow operand list of a region — the
// "backward_edge()" forward iterator in the original source.
func (g *Graph) Predecessors(id ID) []ID {
	n := g.node(id)
	var preds []ID
	for _, a := range n.Args {
		if a != InvalidID && g.node(a).IsControlFlow() {
			preds = append(preds, a)
		}
	}
	return preds
}
