// Package ident issues resumable, prefix-scoped auto-increment local IDs.
//
// An Allocator is owned by one graph-construction session and passed to
// every component that mints IDs; there is no package-level counter state,
// so independent runs and tests never interfere.
package ident

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bibliograph/internal/graph"
	"bibliograph/pkg/types"
)

// ErrMalformedID indicates an existing entity ID whose numeric suffix
// cannot be parsed during resume. This aborts the run before any
// mutation: silently skipping the entity could let the allocator reissue
// its number and corrupt the graph.
var ErrMalformedID = errors.New("malformed entity id")

// suffixKinds resume their counters by parsing the numeric tail of each
// entity ID (letters before the number, as in "E21_P12", are allowed).
var suffixKinds = []types.Kind{
	types.KindAppellation,
	types.KindIdentifier,
	types.KindTitle,
	types.KindTimeSpan,
	types.KindPerson,
	types.KindPlace,
	types.KindCorporateBody,
}

// orderKinds carry semantic (non-numeric) IDs; their counters resume from
// the ordering key instead.
var orderKinds = []types.Kind{
	types.KindWork,
	types.KindExpression,
	types.KindManifestation,
}

// Allocator issues per-prefix auto-increment IDs of the form
// "<prefix>_<n>", with n starting at 0.
type Allocator struct {
	next map[string]int
}

// New creates an allocator with all counters at zero.
func New() *Allocator {
	return &Allocator{next: make(map[string]int)}
}

// Next returns the next ID for prefix and advances its counter.
func (a *Allocator) Next(prefix string) string {
	n := a.next[prefix]
	a.next[prefix]++
	return fmt.Sprintf("%s_%d", prefix, n)
}

// NextNumber returns the next bare counter value for prefix. Used for
// ordering keys, where only the number is wanted.
func (a *Allocator) NextNumber(prefix string) int {
	n := a.next[prefix]
	a.next[prefix]++
	return n
}

// Peek returns the value Next would use for prefix, without advancing.
func (a *Allocator) Peek(prefix string) int {
	return a.next[prefix]
}

// Resume scans an existing graph and raises every prefix counter above the
// highest value already present, so IDs minted afterwards never collide
// with loaded ones. A malformed ID is a fatal error.
func (a *Allocator) Resume(g *graph.Store) error {
	for _, kind := range suffixKinds {
		prefix := kind.Prefix()
		for _, e := range g.Entities(kind) {
			n, err := numericSuffix(e.ID)
			if err != nil {
				return fmt.Errorf("resume %s: %w", prefix, err)
			}
			a.raise(prefix, n+1)
		}
	}
	for _, kind := range orderKinds {
		prefix := kind.Prefix()
		for _, e := range g.Entities(kind) {
			if !e.HasOrder {
				return fmt.Errorf("resume %s: %w: entity %s has no ordering key", prefix, ErrMalformedID, e.ID)
			}
			a.raise(prefix, int(e.OrderKey)+1)
		}
	}
	return nil
}

func (a *Allocator) raise(prefix string, floor int) {
	if a.next[prefix] < floor {
		a.next[prefix] = floor
	}
}

// numericSuffix extracts the trailing counter from an ID such as "E42_17"
// or "E21_P12" (a letter run before the number is tolerated).
func numericSuffix(id string) (int, error) {
	i := strings.LastIndex(id, "_")
	if i < 0 || i == len(id)-1 {
		return 0, fmt.Errorf("%w: %q has no suffix", ErrMalformedID, id)
	}
	suffix := strings.TrimLeft(id[i+1:], "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("%w: %q has non-numeric suffix", ErrMalformedID, id)
	}
	return n, nil
}
