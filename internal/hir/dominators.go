package hir

import "sort"

// Dominators computes, for every control-flow region, its dominator set
// and immediate dominator via the classical iterative data-flow algorithm
// (ported from dominators.cc's Dominators::Build).
type Dominators struct {
	sets map[ID][]ID // ordered by timestamp, for linear set_intersection
	imm  map[ID]ID
	ts   map[ID]int
}

// BuildDominators runs the fixpoint computation described in spec §4.3:
// initialize Start's set to {Start}, everything else to the universe of
// regions; iterate in reverse-post-order intersecting predecessors' sets
// until nothing changes; the immediate dominator is the set member (other
// than self) with the largest reverse-post-order timestamp — the nearest
// one to n, not the nearest one to Start.
func BuildDominators(g *Graph) *Dominators {
	d := &Dominators{sets: make(map[ID][]ID), imm: make(map[ID]ID), ts: make(map[ID]int)}

	cur := 0
	for _, n := range g.ControlFlowReversePostOrder() {
		cur++
		d.ts[n] = cur
	}

	allCF := g.GetControlFlowNode()
	rpo := g.ControlFlowReversePostOrder()

	getSet := func(n ID) []ID {
		if s, ok := d.sets[n]; ok {
			return s
		}
		var s []ID
		if n == g.start {
			s = []ID{n}
		} else {
			s = append([]ID(nil), allCF...)
			sortIDs(s)
		}
		d.sets[n] = s
		return s
	}

	changed := true
	for changed {
		changed = false
		for _, n := range rpo {
			preds := g.Predecessors(n)
			var temp []ID
			for i, p := range preds {
				if i == 0 {
					temp = append([]ID(nil), getSet(p)...)
				} else {
					temp = intersectIDs(temp, getSet(p))
				}
			}
			temp = addSorted(temp, n)
			old := getSet(n)
			if !equalIDs(old, temp) {
				d.sets[n] = temp
				changed = true
			}
		}
	}

	for n, set := range d.sets {
		if n == g.start {
			continue
		}
		var imm ID = InvalidID
		for _, dom := range set {
			if dom == n {
				continue
			}
			if imm == InvalidID || d.ts[dom] > d.ts[imm] {
				imm = dom
			}
		}
		if imm != InvalidID {
			d.imm[n] = imm
		}
	}
	return d
}

// DominatorSet returns the (sorted-by-id) set of regions that dominate n.
func (d *Dominators) DominatorSet(n ID) []ID { return d.sets[n] }

// ImmediateDominator returns n's immediate dominator, or InvalidID for
// Start (which has none).
func (d *Dominators) ImmediateDominator(n ID) ID {
	if imm, ok := d.imm[n]; ok {
		return imm
	}
	return InvalidID
}

// Dominates reports whether dom dominates n (reflexive: Dominates(n, n)).
func (d *Dominators) Dominates(n, dom ID) bool {
	set := d.sets[n]
	i := sort.Search(len(set), func(i int) bool { return set[i] >= dom })
	return i < len(set) && set[i] == dom
}

// CommonDominators returns the intersection of n1's and n2's dominator
// sets (used by the scheduler to find the latest common dominating region).
func (d *Dominators) CommonDominators(n1, n2 ID) []ID {
	return intersectIDs(d.sets[n1], d.sets[n2])
}

func sortIDs(s []ID) { sort.Slice(s, func(i, j int) bool { return s[i] < s[j] }) }

func intersectIDs(a, b []ID) []ID {
	var out []ID
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func addSorted(s []ID, n ID) []ID {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= n })
	if i < len(s) && s[i] == n {
		return s
	}
	s = append(s, InvalidID)
	copy(s[i+1:], s[i:])
	s[i] = n
	return s
}

func equalIDs(a, b []ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
