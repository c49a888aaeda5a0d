package engine

import (
	"testing"

	"bibliograph/internal/graph"
	"bibliograph/internal/ident"
	"bibliograph/pkg/types"
)

func runWorkInference(t *testing.T, g *graph.Store) *graph.Store {
	t.Helper()
	log, warns := newTestLogger(t)
	alloc := ident.New()
	if err := alloc.Resume(g); err != nil {
		t.Fatal(err)
	}
	closure := NewClosure(g, warns, 0)
	return NewWorkInference(g, alloc, closure, warns, log).Run()
}

func TestWorkInference_CapturesCluster(t *testing.T) {
	g := graph.New()
	root := addExpression(g, "NFPL1")
	deriv := addExpression(g, "NFPL2")
	trans := addExpression(g, "NFRU3")
	g.AddRelation(deriv, types.RelIsDerivativeOf, root)
	g.AddRelation(trans, types.RelIsTranslationOf, deriv)

	overlay := runWorkInference(t, g)

	work, ok := overlay.Entity("F1_NFPL1")
	if !ok {
		t.Fatal("work for the cluster root not created")
	}
	if work.Kind != types.KindWork || !work.HasOrder {
		t.Fatalf("malformed work entity: %+v", work)
	}
	for _, exp := range []string{root, deriv, trans} {
		if !overlay.Has("F1_NFPL1", types.RelIsRealisedIn, exp) {
			t.Fatalf("work should be realised in %s", exp)
		}
		if !overlay.Has(exp, types.RelRealises, "F1_NFPL1") {
			t.Fatalf("inverse realises link missing for %s", exp)
		}
	}
	// Only the root's cluster produces a work: derivatives are not roots.
	if _, ok := overlay.Entity("F1_NFPL2"); ok {
		t.Fatal("derivative expression must not get its own work")
	}

	// The creation-event side of the realization.
	if !overlay.Has("F28_NFRU3", types.RelCreatedRealisationOf, "F1_NFPL1") {
		t.Fatal("derivative creation event should create a realisation of the work")
	}
	if !overlay.Has("F27_NFPL1", types.RelCreated, "F1_NFPL1") {
		t.Fatal("work creation event missing")
	}
}

func TestWorkInference_CopiesRootProperties(t *testing.T) {
	g := graph.New()
	root := addExpression(g, "NFPL1")
	e, _ := g.Entity(root)
	e.Label = "Story"
	e.SearchKey = "Collected / Story"
	g.AddRelationPair(root, types.RelHasTitle, "E35_0")
	g.AddRelationPair(root, types.RelIdentifiedBy, "E42_0")
	g.AddRelation(root, types.RelHasLanguage, "E56_pol")
	g.AddRelation("F28_NFPL1", types.RelWrittenBy, "E21_P1")

	overlay := runWorkInference(t, g)

	work, _ := overlay.Entity("F1_NFPL1")
	if work.Label != "Story" || work.SearchKey != "Collected / Story" {
		t.Fatalf("labels not carried over: %+v", work)
	}
	if !overlay.Has("F1_NFPL1", types.RelHasTitle, "E35_0") {
		t.Fatal("title link not carried over")
	}
	if !overlay.Has("F1_NFPL1", types.RelIdentifiedBy, "E42_0") {
		t.Fatal("identifier link not carried over")
	}
	if !overlay.Has("F1_NFPL1", types.RelHasLanguage, "E56_pol") {
		t.Fatal("language link not carried over")
	}
	if !overlay.Has("F27_NFPL1", types.RelWrittenBy, "E21_P1") {
		t.Fatal("authorship not carried onto the work creation event")
	}
}

func TestWorkInference_SkipMarkerExcludes(t *testing.T) {
	g := graph.New()
	root := addExpression(g, "NFPL1")
	e, _ := g.Entity(root)
	e.SetAttr(types.AttrSkip, "true")

	overlay := runWorkInference(t, g)
	if overlay.EntityCount() != 0 {
		t.Fatal("citation-only expressions must not produce works")
	}
}

func TestWorkInference_SecondRunIsNoOp(t *testing.T) {
	g := graph.New()
	root := addExpression(g, "NFPL1")
	deriv := addExpression(g, "NFPL2")
	g.AddRelation(deriv, types.RelIsDerivativeOf, root)

	g.Merge(runWorkInference(t, g))
	entities, relations := g.EntityCount(), g.RelationCount()

	overlay := runWorkInference(t, g)
	if overlay.EntityCount() != 0 {
		t.Fatalf("second run created %d entities", overlay.EntityCount())
	}
	g.Merge(overlay)
	if g.EntityCount() != entities || g.RelationCount() != relations {
		t.Fatal("second run changed the graph")
	}
}

func TestWorkInference_ExistingRealizationGuards(t *testing.T) {
	g := graph.New()
	root := addExpression(g, "NFPL1")
	// The root is already realized (e.g. by a monograph work).
	g.AddRelationPair("F1_MON1", types.RelIsRealisedIn, root)

	overlay := runWorkInference(t, g)
	if _, ok := overlay.Entity("F1_NFPL1"); ok {
		t.Fatal("an already-realized root must not get a second work")
	}
}
