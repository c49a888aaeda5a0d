package engine

import (
	"strings"

	"bibliograph/internal/graph"
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// buildMonographs materializes the monograph index: each record is an
// abstract work realized by its original edition and every derivative
// edition. A multi-volume edition gets an umbrella expression grouping
// the volumes, ordered just before its first volume. The pass writes into
// an overlay graph that the caller merges into the main store.
func (b *Builder) buildMonographs(input types.BatchInput) *graph.Store {
	overlay := graph.New()
	for _, rec := range input.Monographs {
		b.buildMonograph(overlay, rec, input.DefaultSheet)
	}
	return overlay
}

func (b *Builder) buildMonograph(overlay *graph.Store, rec types.MonographRecord, defaultSheet string) {
	suffix := "MON" + rec.ID
	workID := types.KindWork.Prefix() + "_" + suffix
	langID := b.langByCode[rec.Language]

	overlay.AddEntity(&types.Entity{
		ID:        workID,
		Kind:      types.KindWork,
		Label:     rec.Title,
		OrderKey:  float64(b.alloc.NextNumber(types.KindWork.Prefix())),
		HasOrder:  true,
		SearchKey: rec.Title,
	})
	if langID != "" {
		overlay.AddRelation(workID, types.RelHasLanguage, langID)
	}
	b.addAppellation(overlay, workID, rec.Title, types.KindTitle, langID)

	creationID := types.KindWorkCreation.Prefix() + "_" + suffix
	overlay.AddEntity(&types.Entity{ID: creationID, Kind: types.KindWorkCreation, Label: "creation of " + rec.Title})
	overlay.AddRelationPair(creationID, types.RelCreated, workID)
	if b.principalURI != "" {
		overlay.AddRelation(creationID, types.RelWrittenBy, b.principalURI)
	}

	editions := append([][]string{rec.Original}, rec.Derivatives...)
	for _, edition := range editions {
		expID, expCreation, ok := b.resolveEdition(overlay, edition, defaultSheet)
		if !ok {
			b.warns.Warnf(warn.MissingEntity, "monograph %s: edition %v has no resolvable volumes", workID, edition)
			continue
		}
		overlay.AddRelationPair(workID, types.RelIsRealisedIn, expID)
		if expCreation != "" {
			overlay.AddRelationPair(expCreation, types.RelCreatedRealisationOf, workID)
		}
	}
}

// resolveEdition resolves one edition's volume tokens to a single
// expression: the volume itself for a one-volume edition, an umbrella
// expression otherwise. It returns the expression, its creation event
// ("" when none exists), and whether the edition resolved at all.
func (b *Builder) resolveEdition(overlay *graph.Store, tokens []string, defaultSheet string) (string, string, bool) {
	var vols []string
	for _, token := range tokens {
		for _, ref := range b.resolver.Resolve(token, defaultSheet) {
			volID := types.KindExpression.Prefix() + "_" + ref.Canonical
			if _, ok := b.g.Entity(volID); !ok {
				b.warns.Warnf(warn.MissingEntity, "monograph volume %s not in graph, skipped", volID)
				continue
			}
			vols = append(vols, volID)
		}
	}
	switch len(vols) {
	case 0:
		return "", "", false
	case 1:
		creation, ok := b.g.Object(vols[0], types.RelWasCreatedBy)
		if !ok {
			b.warns.Warnf(warn.MissingEntity, "monograph volume %s has no creation event", vols[0])
			return vols[0], "", true
		}
		return vols[0], creation, true
	}
	return b.umbrella(overlay, vols)
}

// umbrella groups multi-volume editions under one expression whose ID
// joins the volume IDs. The umbrella sorts just before its first volume
// and inherits its language; authorship is the union over all volumes.
func (b *Builder) umbrella(overlay *graph.Store, vols []string) (string, string, bool) {
	parts := make([]string, len(vols))
	var labels []string
	for i, vol := range vols {
		parts[i] = strings.TrimPrefix(vol, types.KindExpression.Prefix()+"_")
		if e, ok := b.g.Entity(vol); ok && e.Label != "" {
			labels = append(labels, e.Label)
		}
	}
	suffix := "u_" + strings.Join(parts, "_")
	umbID := types.KindExpression.Prefix() + "_" + suffix
	creationID := types.KindExpressionCreation.Prefix() + "_" + suffix

	first, _ := b.g.Entity(vols[0])
	umb := &types.Entity{
		ID:    umbID,
		Kind:  types.KindExpression,
		Label: strings.Join(labels, "; "),
	}
	if first.HasOrder {
		umb.OrderKey = first.OrderKey - 0.5
		umb.HasOrder = true
	}
	if !overlay.AddEntity(umb) {
		// Same volume set appeared in an earlier edition.
		return umbID, creationID, true
	}
	for _, lang := range b.g.Objects(vols[0], types.RelHasLanguage) {
		overlay.AddRelation(umbID, types.RelHasLanguage, lang)
	}

	overlay.AddEntity(&types.Entity{ID: creationID, Kind: types.KindExpressionCreation, Label: "creation of " + umb.Label})
	overlay.AddRelationPair(creationID, types.RelCreated, umbID)
	for _, vol := range vols {
		overlay.AddRelationPair(umbID, types.RelHasComponent, vol)
		if volCreation, ok := b.g.Object(vol, types.RelWasCreatedBy); ok {
			for _, k := range types.AuthorshipKinds {
				for _, agent := range b.g.Objects(volCreation, k) {
					overlay.AddRelation(creationID, k, agent)
				}
			}
		}
	}
	return umbID, creationID, true
}
