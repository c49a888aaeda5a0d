package engine

import (
	"strconv"
	"strings"

	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// attrSameAs carries external authority identifiers on places and
// languages, ";"-joined when there are several.
const attrSameAs = "same_as"

func (b *Builder) addLanguages(recs []types.LanguageRecord) {
	for _, rec := range recs {
		code := rec.ISO6393
		if code == "" {
			code = strings.ToLower(rec.Code)
		}
		id := types.KindLanguage.Prefix() + "_" + code
		e := &types.Entity{ID: id, Kind: types.KindLanguage, Label: rec.Name}
		if rec.SameAsID != "" {
			e.SetAttr(attrSameAs, rec.SameAsID)
		}
		if !b.g.AddEntity(e) {
			b.warns.Warnf(warn.DuplicateIdentifier, "language %s already present, record for %q ignored", id, rec.Code)
			continue
		}
		if rec.ISO6391 != "" {
			b.addAppellation(b.g, id, rec.ISO6391, types.KindIdentifier, "", catISO6391)
		}
		if rec.ISO6393 != "" {
			b.addAppellation(b.g, id, rec.ISO6393, types.KindIdentifier, "", catISO6393)
		}
		b.langByCode[rec.Code] = id
		if rec.ISO6393 != "" {
			b.langByCode[rec.ISO6393] = id
		}
	}
}

func (b *Builder) addCategories(recs []types.CategoryRecord) {
	for _, rec := range recs {
		id := types.KindCategory.Prefix() + "_" + rec.Code
		if !b.g.AddEntity(&types.Entity{ID: id, Kind: types.KindCategory, Label: rec.Label}) {
			b.warns.Warnf(warn.DuplicateIdentifier, "category %s already present, record %q ignored", id, rec.Code)
		}
	}
}

func (b *Builder) addPlaces(recs []types.PlaceRecord) {
	for _, rec := range recs {
		id := types.KindPlace.Prefix() + "_" + rec.ID
		e := &types.Entity{ID: id, Kind: types.KindPlace, Label: rec.Name}
		if len(rec.SameAsIDs) > 0 {
			e.SetAttr(attrSameAs, strings.Join(rec.SameAsIDs, ";"))
		}
		if rec.Country != "" {
			e.SetAttr("country", rec.Country)
		}
		if !b.g.AddEntity(e) {
			b.warns.Warnf(warn.DuplicateIdentifier, "place %s already present, record %q ignored", id, rec.Name)
			continue
		}
		b.addAppellation(b.g, id, rec.Name, types.KindAppellation, "")
		if rec.LocalName != "" && rec.LocalName != rec.Name {
			b.addAppellation(b.g, id, rec.LocalName, types.KindAppellation, "")
		}
		b.placeByID[rec.ID] = id
	}
}

func (b *Builder) addPeople(recs []types.PersonRecord) {
	for _, rec := range recs {
		id := types.KindPerson.Prefix() + "_P" + rec.ID
		e := &types.Entity{ID: id, Kind: types.KindPerson, Label: rec.MainName, SearchKey: rec.Search}
		if n, err := strconv.Atoi(strings.TrimLeft(rec.ID, "Pp")); err == nil {
			e.OrderKey = float64(n)
			e.HasOrder = true
		}
		if !b.g.AddEntity(e) {
			b.warns.Warnf(warn.DuplicateIdentifier, "person %s already present, record %q ignored", id, rec.MainName)
			continue
		}
		b.addAppellation(b.g, id, "P"+rec.ID, types.KindIdentifier, "", catYID)

		// Name forms, grouped by language. Forms inside one group are
		// alternative spellings of the same name and get cross-linked.
		for lang, groups := range rec.Names {
			langID := b.langByCode[lang]
			for _, group := range groups {
				var ids []string
				for _, form := range group {
					ids = append(ids, b.addAppellation(b.g, id, form, types.KindAppellation, langID))
				}
				for i := 1; i < len(ids); i++ {
					b.g.AddRelationPair(ids[0], types.RelHasAltForm, ids[i])
				}
			}
		}
	}
}

func (b *Builder) addPublishers(recs []types.PublisherRecord) {
	for _, rec := range recs {
		id := types.KindCorporateBody.Prefix() + "_C" + rec.ID
		e := &types.Entity{ID: id, Kind: types.KindCorporateBody, Label: rec.Name}
		if n, err := strconv.Atoi(strings.TrimLeft(rec.ID, "Cc")); err == nil {
			e.OrderKey = float64(n)
			e.HasOrder = true
		}
		if !b.g.AddEntity(e) {
			b.warns.Warnf(warn.DuplicateIdentifier, "publisher %s already present, record %q ignored", id, rec.Name)
			continue
		}
		b.addAppellation(b.g, id, rec.Name, types.KindAppellation, "")
		for _, placeID := range rec.PlaceIDs {
			target, ok := b.placeByID[placeID]
			if !ok {
				b.warns.Warnf(warn.MissingEntity, "publisher %q references unknown place %q", rec.Name, placeID)
				continue
			}
			b.g.AddRelation(id, types.RelHasResidence, target)
		}
		b.pubByName[rec.Name] = id
	}
}

func (b *Builder) addIssues(recs []types.IssueRecord) {
	for _, rec := range recs {
		id := types.KindManifestation.Prefix() + "_J" + rec.ID
		label := rec.Journal + " " + rec.Year
		if rec.Number != "" {
			label += ", " + rec.Number
		}
		e := &types.Entity{
			ID:       id,
			Kind:     types.KindManifestation,
			Label:    label,
			OrderKey: float64(b.alloc.NextNumber(types.KindManifestation.Prefix())),
			HasOrder: true,
		}
		if !b.g.AddEntity(e) {
			b.warns.Warnf(warn.DuplicateIdentifier, "issue %s already present, record %q ignored", id, label)
			continue
		}
		b.addAppellation(b.g, id, rec.Journal, types.KindAppellation, "", catJournalName)
		if rec.Number != "" {
			b.addAppellation(b.g, id, rec.Number, types.KindIdentifier, "", catJournalNumber)
		}

		creation := types.KindManifestationCreation.Prefix() + "_J" + rec.ID
		b.g.AddEntity(&types.Entity{ID: creation, Kind: types.KindManifestationCreation, Label: "publication of " + label})
		b.g.AddRelationPair(creation, types.RelCreated, id)
		if pub, ok := b.pubByName[rec.Journal]; ok {
			b.g.AddRelation(creation, types.RelPublishedBy, pub)
		}
		if rec.Year != "" {
			b.addTimespan(creation, rec.Year, rec.Year)
		}
		b.issueByKey[issueKey(rec.Journal, rec.Year, rec.Number)] = id
	}
}
