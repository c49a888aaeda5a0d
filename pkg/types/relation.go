package types

// RelationKind is the type of a directed edge between two entities.
// The enumeration is closed: the engine never invents new kinds at runtime.
type RelationKind string

// Relation kind constants.
const (
	// Hierarchy (expression part/whole tree)
	RelHasComponent  RelationKind = "has_component"
	RelIsComponentOf RelationKind = "is_component_of"

	// Derivative relations between expressions. All are asymmetric and
	// irreflexive by contract: an expression is never its own derivative,
	// and (A,p,B) excludes (B,p,A).
	RelIsDerivativeOf   RelationKind = "is_derivative_of"
	RelIsTranslationOf  RelationKind = "is_translation_of"
	RelIsReducedFormOf  RelationKind = "is_reduced_form_of"
	RelIsExtendedFormOf RelationKind = "is_extended_form_of"
	RelIsAlteredFormOf  RelationKind = "is_altered_form_of"

	// Creative / authorship (creation event -> agent)
	RelComposedBy   RelationKind = "composed_by"
	RelWrittenBy    RelationKind = "written_by"
	RelTranslatedBy RelationKind = "translated_by"
	RelEditedBy     RelationKind = "edited_by"
	RelPublishedBy  RelationKind = "published_by"

	// Realization (work <-> expression)
	RelIsRealisedIn RelationKind = "is_realised_in"
	RelRealises     RelationKind = "realises"

	// Creation events
	RelCreated      RelationKind = "created"        // creation event -> created entity
	RelWasCreatedBy RelationKind = "was_created_by" // created entity -> creation event

	// Realization creation (creation event <-> work)
	RelCreatedRealisationOf RelationKind = "created_a_realisation_of"
	RelWasRealisedThrough   RelationKind = "was_realised_through"

	// Embodiment (manifestation <-> expression)
	RelEmbodies     RelationKind = "embodies"
	RelIsEmbodiedIn RelationKind = "is_embodied_in"

	// Descriptive
	RelHasTitle     RelationKind = "has_title"
	RelIsTitleOf    RelationKind = "is_title_of"
	RelIdentifiedBy RelationKind = "identified_by"
	RelIdentifies   RelationKind = "identifies"
	RelHasLanguage  RelationKind = "has_language"
	RelHasTimespan  RelationKind = "has_timespan"
	RelHasCategory  RelationKind = "has_category"
	RelHasResidence RelationKind = "has_residence" // corporate body -> place
	RelHasAltForm   RelationKind = "has_alternative_form"
)

// inverses pairs relation kinds that are always asserted together.
// Kinds without an entry have no modeled inverse.
var inverses = map[RelationKind]RelationKind{
	RelHasComponent:         RelIsComponentOf,
	RelIsComponentOf:        RelHasComponent,
	RelIsRealisedIn:         RelRealises,
	RelRealises:             RelIsRealisedIn,
	RelCreated:              RelWasCreatedBy,
	RelWasCreatedBy:         RelCreated,
	RelCreatedRealisationOf: RelWasRealisedThrough,
	RelWasRealisedThrough:   RelCreatedRealisationOf,
	RelEmbodies:             RelIsEmbodiedIn,
	RelIsEmbodiedIn:         RelEmbodies,
	RelHasTitle:             RelIsTitleOf,
	RelIsTitleOf:            RelHasTitle,
	RelIdentifiedBy:         RelIdentifies,
	RelIdentifies:           RelIdentifiedBy,
	RelHasAltForm:           RelHasAltForm,
}

// Inverse returns the inverse relation kind and true when one is modeled.
func (k RelationKind) Inverse() (RelationKind, bool) {
	inv, ok := inverses[k]
	return inv, ok
}

// DerivativeKinds lists every derivative-type relation, generic first.
// Closure queries alternate over exactly this set.
var DerivativeKinds = []RelationKind{
	RelIsDerivativeOf,
	RelIsTranslationOf,
	RelIsReducedFormOf,
	RelIsExtendedFormOf,
	RelIsAlteredFormOf,
}

// AuthorshipKinds lists the creative relations copied from an expression's
// creation event onto an inferred work's creation event.
var AuthorshipKinds = []RelationKind{
	RelComposedBy,
	RelWrittenBy,
	RelTranslatedBy,
	RelEditedBy,
}

// IsDerivative reports whether k is one of the derivative-type relations.
func (k RelationKind) IsDerivative() bool {
	for _, d := range DerivativeKinds {
		if k == d {
			return true
		}
	}
	return false
}

// IsAuthorship reports whether k is one of the authorship relations.
func (k RelationKind) IsAuthorship() bool {
	for _, a := range AuthorshipKinds {
		if k == a {
			return true
		}
	}
	return false
}

// Relation is a directed, typed edge (subject, predicate, object).
// Subject and Object are entity IDs; the referenced entities need not
// exist in the store at link time.
type Relation struct {
	Subject   string       `json:"subject"`
	Predicate RelationKind `json:"predicate"`
	Object    string       `json:"object"`
}
