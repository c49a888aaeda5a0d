package engine

import (
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// addAuthorships attaches persons to the creation events of the
// expressions they authored, then sweeps each attachment through the
// part/whole hierarchy in both directions so containers and components
// share their authors.
func (b *Builder) addAuthorships(input types.BatchInput) {
	prop := NewPropagator(b.g, b.warns)

	// The principal's authorship was attached per citation row; here it
	// only needs the hierarchy sweep.
	for _, expID := range b.byPrincipal {
		b.sweep(prop, expID, types.RelWrittenBy, b.principalURI)
	}

	for _, rec := range input.Authorships {
		person := types.KindPerson.Prefix() + "_P" + rec.PersonID
		if _, ok := b.g.Entity(person); !ok {
			b.warns.Warnf(warn.MissingEntity, "authorship references unknown person %s", person)
			continue
		}
		for _, token := range rec.RawRefs {
			for _, ref := range b.resolver.Resolve(token, input.DefaultSheet) {
				b.attachAuthor(prop, person, ref)
			}
		}
	}
}

func (b *Builder) attachAuthor(prop *Propagator, person string, ref types.Reference) {
	expID := types.KindExpression.Prefix() + "_" + ref.Canonical
	creation, ok := b.g.Object(expID, types.RelWasCreatedBy)
	if !ok {
		// Dangling reference: the creation event is addressed by naming
		// convention and the link is recorded anyway.
		creation = types.KindExpressionCreation.Prefix() + "_" + ref.Canonical
		b.warns.Warnf(warn.MissingEntity, "authorship: %s has no creation event, person %s linked to %s by convention", expID, person, creation)
	}

	// A non-principal author on a translated expression is its translator.
	rel := types.RelWrittenBy
	if person != b.principalURI && b.g.HasAny(expID, types.RelIsTranslationOf) {
		rel = types.RelTranslatedBy
	}
	b.g.AddRelation(creation, rel, person)
	b.sweep(prop, expID, rel, person)
}

// sweep propagates an authorship relation from an expression through its
// components and its containers, attaching it at each creation event.
func (b *Builder) sweep(prop *Propagator, expID string, rel types.RelationKind, person string) {
	prop.Propagate(expID, types.RelHasComponent, rel, person, types.RelWasCreatedBy)
	prop.Propagate(expID, types.RelIsComponentOf, rel, person, types.RelWasCreatedBy)
}
