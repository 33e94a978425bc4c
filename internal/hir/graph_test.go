package hir

import "testing"

// TestReplaceRewiresUsersAndInheritsEffect checks Replace's documented
// contract: every use of the old node is rewired to the replacement, and
// if the old node carried an effect edge the replacement inherits it
// when it doesn't already have one of its own.
func TestReplaceRewiresUsersAndInheritsEffect(t *testing.T) {
	g := NewGraph()
	oldV := g.Int64(1)
	newV := g.Int64(2)
	g.node(oldV).Effect = g.start

	user := g.NewExpr(KindUnary, oldV)
	g.node(user).UnaryOp = UnaryMinus

	g.Replace(oldV, newV)

	if user2 := g.node(user).Args[0]; user2 != newV {
		t.Fatalf("expected user's operand to be rewired to the replacement, got %v", user2)
	}
	if !g.node(oldV).dead {
		t.Fatalf("expected the old node to be marked dead")
	}
	if g.node(newV).Effect != g.start {
		t.Fatalf("expected the replacement to inherit the old node's effect edge")
	}

	found := false
	for _, ref := range g.node(newV).Refs {
		if ref.User == user {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the replacement's Refs to record the rewired user")
	}
}

// TestReplacePureWithEffectfulPanics checks the contract violation guard:
// replacing a pure node with an effectful one must panic rather than
// silently corrupt the effect chain.
func TestReplacePureWithEffectfulPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Replace to panic when replacing a pure node with an effectful one")
		}
	}()

	g := NewGraph()
	pure := g.Int64(1)
	effectful := g.NewExpr(KindObjectSet, g.newNode(KindArg), g.LongString("k"), g.Int64(1))

	g.Replace(pure, effectful)
}

// TestReplaceSameIDIsNoOp checks that replacing a node with itself does
// nothing (no panic, no self-referencing Refs entry added).
func TestReplaceSameIDIsNoOp(t *testing.T) {
	g := NewGraph()
	v := g.Int64(1)
	before := len(g.node(v).Refs)

	g.Replace(v, v)

	if g.node(v).dead {
		t.Fatalf("expected a self-replace to leave the node alive")
	}
	if len(g.node(v).Refs) != before {
		t.Fatalf("expected a self-replace to leave Refs unchanged")
	}
}
