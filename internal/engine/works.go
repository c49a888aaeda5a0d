package engine

import (
	"strings"

	"github.com/sirupsen/logrus"

	"bibliograph/internal/graph"
	"bibliograph/internal/ident"
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// WorkInference materializes the abstract works implied by the derivative
// structure. Every expression with no derivative source is the root of a
// cluster; the cluster's work realizes the root and every expression
// transitively derived from it.
//
// The pass writes into a separate overlay graph so the inferred subgraph
// can be inspected on its own before being folded into the main store.
type WorkInference struct {
	g       *graph.Store
	alloc   *ident.Allocator
	closure *Closure
	warns   *warn.Collector
	log     *logrus.Logger
}

// NewWorkInference creates the inference pass over g. The allocator is
// used for work ordering keys and must already be resumed against g.
func NewWorkInference(g *graph.Store, alloc *ident.Allocator, closure *Closure, warns *warn.Collector, log *logrus.Logger) *WorkInference {
	return &WorkInference{g: g, alloc: alloc, closure: closure, warns: warns, log: log}
}

// Run infers works for every uncaptured cluster root and returns the
// overlay graph holding them. Roots are snapshotted before any mutation,
// then re-checked live so a root captured by an earlier cluster in the
// same run is not processed twice. Re-running over a graph whose works
// already exist is a no-op.
func (wi *WorkInference) Run() *graph.Store {
	overlay := graph.New()

	var roots []*types.Entity
	for _, e := range wi.g.Entities(types.KindExpression) {
		if !wi.g.HasAny(e.ID, types.DerivativeKinds...) {
			roots = append(roots, e)
		}
	}

	works := 0
	for _, root := range roots {
		if wi.g.HasAny(root.ID, types.RelRealises) || overlay.HasAny(root.ID, types.RelRealises) {
			continue
		}
		if root.Attr(types.AttrSkip) != "" {
			continue
		}
		wi.inferOne(overlay, root)
		works++
	}
	wi.log.WithFields(logrus.Fields{"roots": len(roots), "works": works}).Info("work inference complete")
	return overlay
}

// inferOne builds the work, its creation event, and the realization links
// for one cluster root.
func (wi *WorkInference) inferOne(overlay *graph.Store, root *types.Entity) {
	suffix := strings.TrimPrefix(root.ID, types.KindExpression.Prefix()+"_")
	workID := types.KindWork.Prefix() + "_" + suffix

	work := &types.Entity{
		ID:        workID,
		Kind:      types.KindWork,
		Label:     root.Label,
		OrderKey:  float64(wi.alloc.NextNumber(types.KindWork.Prefix())),
		HasOrder:  true,
		SearchKey: root.SearchKey,
	}
	overlay.AddEntity(work)

	// The work shares the root's descriptive links.
	for _, title := range wi.g.Objects(root.ID, types.RelHasTitle) {
		overlay.AddRelationPair(workID, types.RelHasTitle, title)
	}
	for _, id := range wi.g.Objects(root.ID, types.RelIdentifiedBy) {
		overlay.AddRelationPair(workID, types.RelIdentifiedBy, id)
	}
	for _, lang := range wi.g.Objects(root.ID, types.RelHasLanguage) {
		overlay.AddRelation(workID, types.RelHasLanguage, lang)
	}

	// Work creation event, with authorship carried over from the root
	// expression's creation event.
	creationID := types.KindWorkCreation.Prefix() + "_" + suffix
	overlay.AddEntity(&types.Entity{ID: creationID, Kind: types.KindWorkCreation, Label: "creation of " + root.Label})
	overlay.AddRelationPair(creationID, types.RelCreated, workID)
	if rootCreation, ok := wi.g.Object(root.ID, types.RelWasCreatedBy); ok {
		for _, k := range types.AuthorshipKinds {
			for _, agent := range wi.g.Objects(rootCreation, k) {
				overlay.AddRelation(creationID, k, agent)
			}
		}
	} else {
		wi.warns.Warnf(warn.MissingEntity, "work inference: root %s has no creation event, authorship not carried", root.ID)
	}

	// Realization links for the whole cluster: root first, then every
	// transitive derivative.
	wi.realize(overlay, workID, root.ID)
	for _, desc := range wi.closure.Descendants(root.ID) {
		wi.realize(overlay, workID, desc)
	}
}

func (wi *WorkInference) realize(overlay *graph.Store, workID, exprID string) {
	overlay.AddRelationPair(workID, types.RelIsRealisedIn, exprID)
	creation, ok := wi.g.Object(exprID, types.RelWasCreatedBy)
	if !ok {
		wi.warns.Warnf(warn.MissingEntity, "work inference: %s has no creation event, realization link incomplete", exprID)
		return
	}
	overlay.AddRelationPair(creation, types.RelCreatedRealisationOf, workID)
}
