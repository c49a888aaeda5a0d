package engine

import (
	"bibliograph/internal/graph"
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// maxPropagationVisits bounds one propagation sweep. The hierarchy is a
// tree by contract; hitting the ceiling indicates a cycle in the
// part/whole data.
const maxPropagationVisits = 100000

// Propagator sweeps a value through the expression hierarchy: starting
// from a node, it walks every node reachable along a hierarchy relation
// and attaches (target, relation, value) at each one. An optional via
// relation redirects the attachment to a neighbor of the visited node
// (e.g. its creation event), which is how authorship lands on creation
// events while the walk itself follows expressions.
type Propagator struct {
	g     *graph.Store
	warns *warn.Collector
}

// NewPropagator creates a propagator over g.
func NewPropagator(g *graph.Store, warns *warn.Collector) *Propagator {
	return &Propagator{g: g, warns: warns}
}

// Propagate walks from start along hierarchy edges and adds
// (node, relation, value) at every reached node, excluding start itself.
// When via is non-empty the triple is attached to the node's via-object
// instead of the node. A node whose attachment point already carries the
// triple is not re-expanded: the value is assumed to have been swept
// through its subtree before.
func (p *Propagator) Propagate(start string, hierarchy types.RelationKind, relation types.RelationKind, value string, via types.RelationKind) {
	queue := p.g.Objects(start, hierarchy)
	visited := map[string]struct{}{start: {}}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if _, seen := visited[node]; seen {
			continue
		}
		visited[node] = struct{}{}
		if len(visited) > maxPropagationVisits {
			p.warns.Warnf(warn.TraversalBudget, "propagation from %s along %s hit the visit ceiling, hierarchy truncated", start, hierarchy)
			return
		}

		anchor := node
		if via != "" {
			redirected, ok := p.g.Object(node, via)
			if !ok {
				p.warns.Warnf(warn.MissingEntity, "propagation: %s has no %s target, value not attached", node, via)
				queue = append(queue, p.g.Objects(node, hierarchy)...)
				continue
			}
			anchor = redirected
		}
		if p.g.Has(anchor, relation, value) {
			// Already swept through here on an earlier pass.
			continue
		}
		p.g.AddRelation(anchor, relation, value)
		queue = append(queue, p.g.Objects(node, hierarchy)...)
	}
}
