// Package graph implements the in-memory entity graph store: a mutable
// multigraph of typed entities and directed, typed relations.
//
// Relations are kept in two ordered indexes (subject-predicate-object and
// object-predicate-subject) so both directions support exact triple lookup
// and deterministic ordered scans. Insertion is idempotent: adding an
// existing triple is a no-op.
package graph

import (
	"sort"

	"github.com/google/btree"

	"bibliograph/pkg/types"
)

// btreeDegree matches the default used for medium-sized in-memory indexes.
const btreeDegree = 32

// Store is the mutable entity graph. It is not safe for concurrent use;
// a batch run owns it exclusively (see the single-threaded execution
// model).
type Store struct {
	entities map[string]*types.Entity
	spo      *btree.BTreeG[types.Relation]
	ops      *btree.BTreeG[types.Relation]
}

func lessSPO(a, b types.Relation) bool {
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	if a.Predicate != b.Predicate {
		return a.Predicate < b.Predicate
	}
	return a.Object < b.Object
}

func lessOPS(a, b types.Relation) bool {
	if a.Object != b.Object {
		return a.Object < b.Object
	}
	if a.Predicate != b.Predicate {
		return a.Predicate < b.Predicate
	}
	return a.Subject < b.Subject
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entities: make(map[string]*types.Entity),
		spo:      btree.NewG(btreeDegree, lessSPO),
		ops:      btree.NewG(btreeDegree, lessOPS),
	}
}

// AddEntity registers an entity. It returns false when an entity with the
// same ID already exists; the existing entity is kept unchanged
// (first-seen wins, callers surface the duplicate as a warning).
func (s *Store) AddEntity(e *types.Entity) bool {
	if _, exists := s.entities[e.ID]; exists {
		return false
	}
	s.entities[e.ID] = e
	return true
}

// Entity returns the entity with the given ID.
func (s *Store) Entity(id string) (*types.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// EntityCount returns the number of registered entities.
func (s *Store) EntityCount() int {
	return len(s.entities)
}

// RelationCount returns the number of distinct relation triples.
func (s *Store) RelationCount() int {
	return s.spo.Len()
}

// Entities returns all entities of the given kind, ordered by OrderKey
// where assigned, then by ID. The slice is a snapshot: mutating the store
// while iterating it is safe.
func (s *Store) Entities(kind types.Kind) []*types.Entity {
	var out []*types.Entity
	for _, e := range s.entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasOrder && b.HasOrder && a.OrderKey != b.OrderKey {
			return a.OrderKey < b.OrderKey
		}
		if a.HasOrder != b.HasOrder {
			return a.HasOrder
		}
		return a.ID < b.ID
	})
	return out
}

// AddRelation inserts the triple (subject, predicate, object). It returns
// true when the triple was new and false when it was already present.
func (s *Store) AddRelation(subject string, predicate types.RelationKind, object string) bool {
	rel := types.Relation{Subject: subject, Predicate: predicate, Object: object}
	if _, present := s.spo.Get(rel); present {
		return false
	}
	s.spo.ReplaceOrInsert(rel)
	s.ops.ReplaceOrInsert(rel)
	return true
}

// AddRelationPair inserts the triple and, when the predicate has a modeled
// inverse, the inverse triple as well.
func (s *Store) AddRelationPair(subject string, predicate types.RelationKind, object string) {
	s.AddRelation(subject, predicate, object)
	if inv, ok := predicate.Inverse(); ok {
		s.AddRelation(object, inv, subject)
	}
}

// Has reports whether the exact triple is present.
func (s *Store) Has(subject string, predicate types.RelationKind, object string) bool {
	_, present := s.spo.Get(types.Relation{Subject: subject, Predicate: predicate, Object: object})
	return present
}

// Objects returns the distinct objects reachable from subject along any of
// the given predicates, in index order.
func (s *Store) Objects(subject string, predicates ...types.RelationKind) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range predicates {
		pivot := types.Relation{Subject: subject, Predicate: p}
		s.spo.AscendGreaterOrEqual(pivot, func(r types.Relation) bool {
			if r.Subject != subject || r.Predicate != p {
				return false
			}
			if _, dup := seen[r.Object]; !dup {
				seen[r.Object] = struct{}{}
				out = append(out, r.Object)
			}
			return true
		})
	}
	return out
}

// Object returns the first object for (subject, predicate), or false when
// no such triple exists. Use for predicates that are functional in
// practice (a single parent, a single creation event).
func (s *Store) Object(subject string, predicate types.RelationKind) (string, bool) {
	objs := s.Objects(subject, predicate)
	if len(objs) == 0 {
		return "", false
	}
	return objs[0], true
}

// Subjects returns the distinct subjects pointing at object along any of
// the given predicates, in index order.
func (s *Store) Subjects(object string, predicates ...types.RelationKind) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range predicates {
		pivot := types.Relation{Object: object, Predicate: p}
		s.ops.AscendGreaterOrEqual(pivot, func(r types.Relation) bool {
			if r.Object != object || r.Predicate != p {
				return false
			}
			if _, dup := seen[r.Subject]; !dup {
				seen[r.Subject] = struct{}{}
				out = append(out, r.Subject)
			}
			return true
		})
	}
	return out
}

// Predicates returns the distinct predicates on edges from subject to
// object, in index order.
func (s *Store) Predicates(subject, object string) []types.RelationKind {
	var out []types.RelationKind
	pivot := types.Relation{Subject: subject}
	s.spo.AscendGreaterOrEqual(pivot, func(r types.Relation) bool {
		if r.Subject != subject {
			return false
		}
		if r.Object == object {
			if len(out) == 0 || out[len(out)-1] != r.Predicate {
				out = append(out, r.Predicate)
			}
		}
		return true
	})
	return out
}

// HasAny reports whether subject has at least one outgoing edge with any
// of the given predicates.
func (s *Store) HasAny(subject string, predicates ...types.RelationKind) bool {
	found := false
	for _, p := range predicates {
		pivot := types.Relation{Subject: subject, Predicate: p}
		s.spo.AscendGreaterOrEqual(pivot, func(r types.Relation) bool {
			found = r.Subject == subject && r.Predicate == p
			return false
		})
		if found {
			return true
		}
	}
	return false
}

// Ascend visits every relation triple in (subject, predicate, object)
// order until the visitor returns false.
func (s *Store) Ascend(visit func(types.Relation) bool) {
	s.spo.Ascend(visit)
}

// Merge copies every entity and relation from other into s. Entities
// already present keep their first-seen value. Used to fold diagnostic
// overlay graphs (inferred works, monographs) into the main store.
func (s *Store) Merge(other *Store) {
	for _, e := range other.entities {
		s.AddEntity(e)
	}
	other.Ascend(func(r types.Relation) bool {
		s.AddRelation(r.Subject, r.Predicate, r.Object)
		return true
	})
}

// StripAttr removes the named literal attribute from every entity and
// returns how many entities carried it. Used to drop transient skip
// markers before the terminal snapshot.
func (s *Store) StripAttr(key string) int {
	n := 0
	for _, e := range s.entities {
		if _, ok := e.Attrs[key]; ok {
			delete(e.Attrs, key)
			n++
		}
	}
	return n
}
