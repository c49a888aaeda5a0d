package engine

import (
	"github.com/sirupsen/logrus"

	"bibliograph/internal/graph"
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// maxInferenceDepth bounds the recursion of composite derivative
// inference. Expression hierarchies are a handful of levels deep in
// practice; deeper nesting indicates a part/whole cycle.
const maxInferenceDepth = 64

// DerivativeInference lifts derivative relations from components to their
// containers: when every component of expression A derives from a
// component of one common expression B, then A derives from B. The lifted
// relation kinds are the intersection of the component kinds; disjoint
// kinds across components are not consistent evidence and lift nothing.
type DerivativeInference struct {
	g     *graph.Store
	warns *warn.Collector
	log   *logrus.Logger
}

// NewDerivativeInference creates the inference pass over g.
func NewDerivativeInference(g *graph.Store, warns *warn.Collector, log *logrus.Logger) *DerivativeInference {
	return &DerivativeInference{g: g, warns: warns, log: log}
}

// Run infers container-level derivative relations bottom-up, starting
// from every top-level composite expression. It returns the number of
// relations asserted.
func (di *DerivativeInference) Run() int {
	added := 0
	for _, e := range di.g.Entities(types.KindExpression) {
		if !di.g.HasAny(e.ID, types.RelHasComponent) {
			continue
		}
		if _, hasParent := di.g.Object(e.ID, types.RelIsComponentOf); hasParent {
			continue
		}
		_, _, _, n := di.infer(e.ID, 0)
		added += n
	}
	if added > 0 {
		di.log.WithField("relations", added).Info("inferred container-level derivative relations")
	}
	return added
}

// infer resolves the derivative target of node. For a leaf, the target
// is the single expression its direct derivative edges point at (multiple
// targets mean the leaf has no unambiguous source). For a composite, the
// children are resolved first and their results combined. It returns the
// relation kinds toward the target, the target itself, whether a result
// exists, and how many relations were newly asserted in the subtree.
func (di *DerivativeInference) infer(node string, depth int) (kinds map[types.RelationKind]bool, target string, ok bool, added int) {
	if depth > maxInferenceDepth {
		di.warns.Warnf(warn.TraversalBudget, "derivative inference below %s exceeded depth %d, subtree skipped", node, maxInferenceDepth)
		return nil, "", false, 0
	}

	children := di.g.Objects(node, types.RelHasComponent)
	if len(children) == 0 {
		return di.direct(node)
	}

	// All children must resolve, and every child's target must sit under
	// one common container; that container is the node's own target.
	parent := ""
	common := map[types.RelationKind]bool(nil)
	for _, child := range children {
		ck, ct, cok, n := di.infer(child, depth+1)
		added += n
		if !cok {
			return nil, "", false, added
		}
		p, hasParent := di.g.Object(ct, types.RelIsComponentOf)
		if !hasParent {
			return nil, "", false, added
		}
		if parent == "" {
			parent = p
			common = ck
		} else if p != parent {
			return nil, "", false, added
		} else {
			common = intersectKinds(common, ck)
		}
	}
	if parent == node {
		di.warns.Warnf(warn.MissingEntity, "derivative inference: %s would derive from itself, skipped", node)
		return nil, "", false, added
	}

	if len(common) == 0 {
		return nil, "", false, added
	}
	for _, k := range types.DerivativeKinds {
		if !common[k] {
			continue
		}
		if di.g.Has(parent, k, node) {
			di.warns.Warnf(warn.MissingEntity, "derivative inference: %s %s %s would be symmetric, skipped", node, k, parent)
			continue
		}
		if di.g.AddRelation(node, k, parent) {
			added++
		}
	}
	return common, parent, true, added
}

// direct resolves a leaf: its existing derivative edges, provided they
// all point at one expression.
func (di *DerivativeInference) direct(node string) (map[types.RelationKind]bool, string, bool, int) {
	target := ""
	kinds := make(map[types.RelationKind]bool)
	for _, k := range types.DerivativeKinds {
		for _, obj := range di.g.Objects(node, k) {
			if target == "" {
				target = obj
			} else if obj != target {
				return nil, "", false, 0
			}
			kinds[k] = true
		}
	}
	if target == "" {
		return nil, "", false, 0
	}
	return kinds, target, true, 0
}

func intersectKinds(a, b map[types.RelationKind]bool) map[types.RelationKind]bool {
	out := make(map[types.RelationKind]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}
