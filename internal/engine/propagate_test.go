package engine

import (
	"testing"

	"bibliograph/internal/graph"
	"bibliograph/pkg/types"
)

func TestPropagate_ReachesWholeSubtree(t *testing.T) {
	_, warns := newTestLogger(t)
	g := graph.New()

	root := addExpression(g, "A")
	b := addExpression(g, "B")
	c := addExpression(g, "C")
	d := addExpression(g, "D")
	addComponent(g, root, b)
	addComponent(g, root, c)
	addComponent(g, b, d)

	p := NewPropagator(g, warns)
	p.Propagate(root, types.RelHasComponent, types.RelWrittenBy, "E21_P1", types.RelWasCreatedBy)

	for _, suffix := range []string{"B", "C", "D"} {
		if !g.Has("F28_"+suffix, types.RelWrittenBy, "E21_P1") {
			t.Fatalf("creation event of %s missing the propagated author", suffix)
		}
	}
	// The start node itself is not touched.
	if g.Has("F28_A", types.RelWrittenBy, "E21_P1") {
		t.Fatal("start node should be excluded from propagation")
	}
}

func TestPropagate_WithoutVia(t *testing.T) {
	_, warns := newTestLogger(t)
	g := graph.New()
	root := addExpression(g, "A")
	b := addExpression(g, "B")
	addComponent(g, root, b)

	NewPropagator(g, warns).Propagate(root, types.RelHasComponent, types.RelHasLanguage, "E56_pol", "")
	if !g.Has(b, types.RelHasLanguage, "E56_pol") {
		t.Fatal("value should attach directly to the visited node")
	}
}

func TestPropagate_SecondSweepIsNoOp(t *testing.T) {
	_, warns := newTestLogger(t)
	g := graph.New()
	root := addExpression(g, "A")
	b := addExpression(g, "B")
	d := addExpression(g, "D")
	addComponent(g, root, b)
	addComponent(g, b, d)

	p := NewPropagator(g, warns)
	p.Propagate(root, types.RelHasComponent, types.RelWrittenBy, "E21_P1", types.RelWasCreatedBy)
	before := g.RelationCount()
	p.Propagate(root, types.RelHasComponent, types.RelWrittenBy, "E21_P1", types.RelWasCreatedBy)
	if g.RelationCount() != before {
		t.Fatal("repeated sweep must not add relations")
	}
}

func TestPropagate_MissingViaTargetWarnsAndContinues(t *testing.T) {
	_, warns := newTestLogger(t)
	g := graph.New()
	root := addExpression(g, "A")
	// B has no creation event; its child D does.
	b := "F2_B"
	g.AddEntity(&types.Entity{ID: b, Kind: types.KindExpression})
	d := addExpression(g, "D")
	addComponent(g, root, b)
	addComponent(g, b, d)

	NewPropagator(g, warns).Propagate(root, types.RelHasComponent, types.RelWrittenBy, "E21_P1", types.RelWasCreatedBy)

	if warns.Count() == 0 {
		t.Fatal("expected a missing-entity warning")
	}
	// The subtree below the defective node is still swept.
	if !g.Has("F28_D", types.RelWrittenBy, "E21_P1") {
		t.Fatal("descendants of the defective node should still receive the value")
	}
}

func TestPropagate_TerminatesOnCycle(t *testing.T) {
	_, warns := newTestLogger(t)
	g := graph.New()
	a := addExpression(g, "A")
	b := addExpression(g, "B")
	// Contract violation: a part/whole cycle.
	addComponent(g, a, b)
	addComponent(g, b, a)

	NewPropagator(g, warns).Propagate(a, types.RelHasComponent, types.RelWrittenBy, "E21_P1", types.RelWasCreatedBy)
	if !g.Has("F28_B", types.RelWrittenBy, "E21_P1") {
		t.Fatal("B should be reached before the cycle closes")
	}
}
