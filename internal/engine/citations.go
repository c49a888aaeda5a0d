package engine

import (
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// addCitations turns each citation record into an expression with its
// creation event, hierarchy links, derivative references, and (for
// standalone and issue publications) a manifestation.
func (b *Builder) addCitations(recs []types.CitationRecord) {
	for _, rec := range recs {
		b.addCitation(rec)
	}
}

func (b *Builder) addCitation(rec types.CitationRecord) {
	canon := b.resolver.Canonical(rec.Sheet, rec.LocalID)
	expID := types.KindExpression.Prefix() + "_" + canon

	search := rec.ExpandedTitle
	if search == "" {
		search = rec.Title
	}
	exp := &types.Entity{
		ID:        expID,
		Kind:      types.KindExpression,
		Label:     rec.Title,
		OrderKey:  float64(b.alloc.NextNumber(types.KindExpression.Prefix())),
		HasOrder:  true,
		SearchKey: search,
	}
	if !b.g.AddEntity(exp) {
		// Two rows normalized to the same canonical ID; first one wins.
		b.warns.Warnf(warn.DuplicateIdentifier, "citation %s/%s duplicates %s, row skipped", rec.Sheet, rec.LocalID, expID)
		return
	}

	langID := b.langByCode[rec.Language]
	if rec.Language != "" && langID == "" {
		b.warns.Warnf(warn.MissingEntity, "citation %s: unknown language code %q", expID, rec.Language)
	}
	if langID != "" {
		b.g.AddRelation(expID, types.RelHasLanguage, langID)
	}
	if rec.Title != "" {
		b.addAppellation(b.g, expID, rec.Title, types.KindTitle, langID)
	}
	b.addAppellation(b.g, expID, canon, types.KindIdentifier, "", catYID)

	creation := types.KindExpressionCreation.Prefix() + "_" + canon
	b.g.AddEntity(&types.Entity{ID: creation, Kind: types.KindExpressionCreation, Label: "creation of " + rec.Title})
	b.g.AddRelationPair(creation, types.RelCreated, expID)
	if rec.ByPrincipal && b.principalURI != "" {
		b.g.AddRelation(creation, types.RelWrittenBy, b.principalURI)
		b.byPrincipal = append(b.byPrincipal, expID)
	}

	for _, comp := range rec.Components {
		b.g.AddRelationPair(expID, types.RelHasComponent, types.KindExpression.Prefix()+"_"+comp)
	}
	if rec.PartOf != "" {
		b.g.AddRelationPair(expID, types.RelIsComponentOf, types.KindExpression.Prefix()+"_"+rec.PartOf)
	}

	for _, token := range rec.RawRefs {
		for _, ref := range b.resolver.Resolve(token, rec.Sheet) {
			b.linkReference(exp, rec.Sheet, ref)
		}
	}

	b.addManifestation(rec, canon, expID)
}

// linkReference asserts the derivative edge one resolved reference
// implies. A citation-only reference asserts nothing and marks the
// expression for exclusion from work inference instead.
func (b *Builder) linkReference(exp *types.Entity, sheet string, ref types.Reference) {
	if ref.Suffix == types.SuffixCitationOnly {
		exp.SetAttr(types.AttrSkip, "true")
		return
	}

	target := types.KindExpression.Prefix() + "_" + ref.Canonical
	if target == exp.ID {
		b.warns.Warnf(warn.MalformedReference, "citation %s references itself, edge dropped", exp.ID)
		return
	}

	var kinds []types.RelationKind
	if rel, ok := ref.Suffix.Relation(); ok {
		kinds = append(kinds, rel)
	}
	if !ref.Other && ref.Sheet != sheet {
		// Cross-sheet references into another recognized language sheet
		// are translations.
		kinds = append(kinds, types.RelIsTranslationOf)
	}
	if len(kinds) == 0 {
		kinds = append(kinds, types.RelIsDerivativeOf)
	}

	for _, k := range kinds {
		if b.g.Has(target, k, exp.ID) {
			b.warns.Warnf(warn.MalformedReference, "citation %s %s %s would be symmetric, edge dropped", exp.ID, k, target)
			continue
		}
		b.g.AddRelation(exp.ID, k, target)
	}
}

// addManifestation attaches the publication side of a citation. Component
// rows inherit their parent's manifestation and get none of their own.
func (b *Builder) addManifestation(rec types.CitationRecord, canon, expID string) {
	if rec.PartOf != "" {
		return
	}

	if rec.Number != "" {
		issueID, ok := b.issueByKey[issueKey(rec.PubName, rec.PubYear, rec.Number)]
		if !ok {
			b.warns.Warnf(warn.MissingEntity, "citation %s: no issue for %s %s, %s", expID, rec.PubName, rec.PubYear, rec.Number)
			return
		}
		b.g.AddRelationPair(issueID, types.RelEmbodies, expID)
		return
	}

	if rec.PubName == "" && rec.PubYear == "" {
		return
	}

	manifID := types.KindManifestation.Prefix() + "_" + canon
	b.g.AddEntity(&types.Entity{
		ID:       manifID,
		Kind:     types.KindManifestation,
		Label:    rec.Title,
		OrderKey: float64(b.alloc.NextNumber(types.KindManifestation.Prefix())),
		HasOrder: true,
	})
	b.g.AddRelationPair(manifID, types.RelEmbodies, expID)

	creation := types.KindManifestationCreation.Prefix() + "_" + canon
	b.g.AddEntity(&types.Entity{ID: creation, Kind: types.KindManifestationCreation, Label: "publication of " + rec.Title})
	b.g.AddRelationPair(creation, types.RelCreated, manifID)
	if rec.PubName != "" {
		if pub, ok := b.pubByName[rec.PubName]; ok {
			b.g.AddRelation(creation, types.RelPublishedBy, pub)
		} else {
			b.warns.Warnf(warn.MissingEntity, "citation %s: unknown publisher %q", expID, rec.PubName)
		}
	}
	if rec.PubYear != "" {
		b.addTimespan(creation, rec.PubYear, rec.PubYear)
	}
}
