package graph

import (
	"bibliograph/pkg/types"
)

// DefaultClosureLimit bounds the number of nodes a closure query may
// visit. Derivative chains in real catalogs are shallow; hitting the
// ceiling indicates a cycle or corrupt hierarchy and is surfaced to the
// caller as truncation, never as an infinite loop or a stack overflow.
const DefaultClosureLimit = 100000

// ObjectsClosure returns every node reachable from start by following any
// of the given predicates one or more times. Results are unique: repeated
// paths to the same node collapse to one entry. The traversal keeps an
// explicit visited set, so it terminates even when the input violates the
// acyclicity contract; truncated reports that the visit ceiling was hit.
func (s *Store) ObjectsClosure(start string, predicates []types.RelationKind, limit int) (ids []string, truncated bool) {
	return s.closure(start, predicates, limit, s.Objects)
}

// SubjectsClosure is ObjectsClosure with every edge reversed: all nodes
// that reach start by following any of the given predicates one or more
// times.
func (s *Store) SubjectsClosure(start string, predicates []types.RelationKind, limit int) (ids []string, truncated bool) {
	step := func(id string, preds ...types.RelationKind) []string {
		return s.Subjects(id, preds...)
	}
	return s.closure(start, predicates, limit, step)
}

func (s *Store) closure(start string, predicates []types.RelationKind, limit int, step func(string, ...types.RelationKind) []string) ([]string, bool) {
	if limit <= 0 {
		limit = DefaultClosureLimit
	}
	visited := map[string]struct{}{start: {}}
	var out []string
	queue := step(start, predicates...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		out = append(out, id)
		if len(visited) > limit {
			return out, true
		}
		queue = append(queue, step(id, predicates...)...)
	}
	return out, false
}
