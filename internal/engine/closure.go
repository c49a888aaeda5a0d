package engine

import (
	"bibliograph/internal/graph"
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// Closure answers transitive derivative queries over the graph, with the
// visit ceiling surfaced as a data-quality warning instead of an error.
type Closure struct {
	g     *graph.Store
	warns *warn.Collector
	limit int
}

// NewClosure creates a closure engine over g. limit <= 0 uses the
// default visit ceiling.
func NewClosure(g *graph.Store, warns *warn.Collector, limit int) *Closure {
	if limit <= 0 {
		limit = graph.DefaultClosureLimit
	}
	return &Closure{g: g, warns: warns, limit: limit}
}

// Ancestors returns every expression the given one transitively derives
// from, following any derivative relation.
func (c *Closure) Ancestors(id string) []string {
	ids, truncated := c.g.ObjectsClosure(id, types.DerivativeKinds, c.limit)
	if truncated {
		c.warns.Warnf(warn.TraversalBudget, "derivative ancestor closure of %s truncated at %d nodes", id, c.limit)
	}
	return ids
}

// Descendants returns every expression transitively derived from the
// given one, following any derivative relation backwards.
func (c *Closure) Descendants(id string) []string {
	ids, truncated := c.g.SubjectsClosure(id, types.DerivativeKinds, c.limit)
	if truncated {
		c.warns.Warnf(warn.TraversalBudget, "derivative descendant closure of %s truncated at %d nodes", id, c.limit)
	}
	return ids
}
