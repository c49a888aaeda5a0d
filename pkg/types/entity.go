// Package types defines the core data structures for the bibliograph system:
// typed entities, directed typed relations, canonical references, and the
// pre-cleaned tabular records the batch builder consumes.
package types

import (
	"strings"
)

// Kind identifies the class of an entity. The set is closed; every entity
// in the graph belongs to exactly one kind, and its local ID carries the
// kind's prefix.
type Kind string

// Entity kind constants. Prefixes follow the CIDOC-CRM / LRMoo class
// numbering so identifiers remain meaningful to domain experts.
const (
	// Bibliographic core
	KindWork          Kind = "work"          // abstract creative work (inferred)
	KindExpression    Kind = "expression"    // a concrete textual realization
	KindManifestation Kind = "manifestation" // a published embodiment

	// Agents
	KindPerson        Kind = "person"
	KindCorporateBody Kind = "corporate_body" // publishers and similar bodies

	// Names and identifiers
	KindAppellation Kind = "appellation" // a name form
	KindIdentifier  Kind = "identifier"  // a formal identifier value
	KindTitle       Kind = "title"       // a title of a work/expression

	// Context
	KindTimeSpan Kind = "timespan"
	KindPlace    Kind = "place"
	KindLanguage Kind = "language"
	KindCategory Kind = "category" // controlled type vocabulary entries

	// Creation events
	KindWorkCreation          Kind = "work_creation"
	KindExpressionCreation    Kind = "expression_creation"
	KindManifestationCreation Kind = "manifestation_creation"
)

// Kinds lists every entity kind in a stable order, for code that iterates
// the whole entity set deterministically.
var Kinds = []Kind{
	KindWork,
	KindExpression,
	KindManifestation,
	KindPerson,
	KindCorporateBody,
	KindAppellation,
	KindIdentifier,
	KindTitle,
	KindTimeSpan,
	KindPlace,
	KindLanguage,
	KindCategory,
	KindWorkCreation,
	KindExpressionCreation,
	KindManifestationCreation,
}

// kindPrefixes maps each kind to the ID prefix it mints under.
var kindPrefixes = map[Kind]string{
	KindWork:                  "F1",
	KindExpression:            "F2",
	KindManifestation:         "F3",
	KindPerson:                "E21",
	KindCorporateBody:         "F11",
	KindAppellation:           "E41",
	KindIdentifier:            "E42",
	KindTitle:                 "E35",
	KindTimeSpan:              "E52",
	KindPlace:                 "E53",
	KindLanguage:              "E56",
	KindCategory:              "E55",
	KindWorkCreation:          "F27",
	KindExpressionCreation:    "F28",
	KindManifestationCreation: "F30",
}

// Prefix returns the ID prefix entities of this kind are minted under,
// e.g. "F2" for expressions. Unknown kinds return an empty string.
func (k Kind) Prefix() string {
	return kindPrefixes[k]
}

// KindForID returns the kind encoded in a local ID's prefix, matching the
// text before the first underscore. Returns an empty Kind when the prefix
// is not recognized.
func KindForID(id string) Kind {
	prefix, _, ok := strings.Cut(id, "_")
	if !ok {
		return ""
	}
	for kind, p := range kindPrefixes {
		if p == prefix {
			return kind
		}
	}
	return ""
}

// Attribute keys for literal-valued entity properties. The graph keeps
// entity-to-entity links as relations; scalar values live in Entity.Attrs.
const (
	// AttrContent is the symbolic content of an appellation, identifier,
	// or title entity (the actual name/number/title string).
	AttrContent = "content"

	// AttrBegin and AttrEnd bound a timespan (years, as decimal strings).
	AttrBegin = "begin"
	AttrEnd   = "end"

	// AttrSkip is the transient citation-only marker. Expressions carrying
	// it are excluded from Work inference. Stripped before the terminal
	// snapshot.
	AttrSkip = "skip"
)

// Entity is a node in the bibliographic graph.
type Entity struct {
	// ID is the globally unique local identifier. Its prefix encodes the
	// kind (e.g. "F2_NFPL355.9.1", "E21_P5").
	ID string `json:"id"`

	// Kind is the entity class.
	Kind Kind `json:"kind"`

	// Label is the display label.
	Label string `json:"label,omitempty"`

	// OrderKey is a sortable numeric key used for stable iteration and
	// query order. Zero when HasOrder is false.
	OrderKey float64 `json:"order_key,omitempty"`

	// HasOrder reports whether OrderKey was assigned.
	HasOrder bool `json:"has_order,omitempty"`

	// SearchKey is free text used by downstream search surfaces.
	SearchKey string `json:"search_key,omitempty"`

	// Attrs holds literal-valued properties (see Attr* constants).
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Attr returns the named literal attribute, or "" when absent.
func (e *Entity) Attr(key string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[key]
}

// SetAttr sets a literal attribute, allocating the map on first use.
func (e *Entity) SetAttr(key, value string) {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[key] = value
}
