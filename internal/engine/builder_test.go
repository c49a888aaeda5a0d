package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bibliograph/internal/graph"
	"bibliograph/internal/ident"
	"bibliograph/internal/refs"
	"bibliograph/pkg/types"
)

func testInput() types.BatchInput {
	return types.BatchInput{
		PrincipalPersonID: "1",
		DefaultSheet:      "PL",
		Languages: []types.LanguageRecord{
			{Code: "PL", Name: "Polish", ISO6391: "pl", ISO6393: "pol"},
			{Code: "RU", Name: "Russian", ISO6391: "ru", ISO6393: "rus"},
		},
		Categories: []types.CategoryRecord{
			{Code: "YID", Label: "Catalog identifier"},
		},
		Places: []types.PlaceRecord{
			{ID: "1", Name: "Warsaw", LocalName: "Warszawa", Country: "Poland"},
		},
		People: []types.PersonRecord{
			{ID: "1", MainName: "Principal Author"},
			{ID: "2", MainName: "The Translator", Names: map[string][][]string{
				"RU": {{"Переводчик", "Perevodchik"}},
			}},
		},
		Publishers: []types.PublisherRecord{
			{ID: "1", Name: "Dom Wydawniczy", PlaceIDs: []string{"1"}},
		},
		Issues: []types.IssueRecord{
			{ID: "1", Journal: "Gazeta", Year: "1905", Number: "12"},
		},
		Citations: []types.CitationRecord{
			{LocalID: "1", Sheet: "PL", Title: "Story", Language: "PL", ByPrincipal: true,
				PubName: "Gazeta", PubYear: "1905", Number: "12"},
			{LocalID: "2", Sheet: "PL", Title: "Story, shortened", Language: "PL",
				RawRefs: []string{"1>"}},
			{LocalID: "3", Sheet: "RU", Title: "Рассказ", Language: "RU",
				RawRefs: []string{"PL:1"}},
			{LocalID: "4", Sheet: "PL", Title: "Mentioned only", Language: "PL",
				RawRefs: []string{"1-"}},
			{LocalID: "5", Sheet: "PL", Title: "Novel, volume one", Language: "PL", ByPrincipal: true,
				PubName: "Dom Wydawniczy", PubYear: "1906"},
			{LocalID: "6", Sheet: "PL", Title: "Novel, volume two", Language: "PL", ByPrincipal: true,
				PubName: "Dom Wydawniczy", PubYear: "1906"},
		},
		Authorships: []types.AuthorshipRecord{
			{PersonID: "2", RawRefs: []string{"RU:3"}},
		},
		Monographs: []types.MonographRecord{
			{ID: "1", Title: "The Novel", Language: "PL",
				Original: []string{"5+6"}, Derivatives: [][]string{{"2"}}},
		},
	}
}

func runBuild(t *testing.T, input types.BatchInput) *Result {
	t.Helper()
	log, warns := newTestLogger(t)
	g := graph.New()
	resolver := refs.NewResolver([]string{"PL", "RU"}, "NF", "OTH", warns)
	b := NewBuilder(g, ident.New(), resolver, warns, log)
	result, err := b.Build(input)
	require.NoError(t, err)
	return result
}

func TestBuild_EndToEnd(t *testing.T) {
	result := runBuild(t, testInput())
	g := result.Graph

	// Expressions with language, title, and identifier.
	story, ok := g.Entity("F2_NFPL1")
	require.True(t, ok, "expression for PL row 1 missing")
	assert.Equal(t, "Story", story.Label)
	assert.True(t, g.Has("F2_NFPL1", types.RelHasLanguage, "E56_pol"))
	assert.NotEmpty(t, g.Objects("F2_NFPL1", types.RelHasTitle))
	assert.NotEmpty(t, g.Objects("F2_NFPL1", types.RelIdentifiedBy))

	// Derivative links from the citation tokens.
	assert.True(t, g.Has("F2_NFPL2", types.RelIsReducedFormOf, "F2_NFPL1"),
		"'>' suffix should assert a reduced-form relation")
	assert.True(t, g.Has("F2_NFRU3", types.RelIsTranslationOf, "F2_NFPL1"),
		"a cross-sheet reference should assert a translation relation")

	// The citation-only row gets no derivative edge.
	assert.False(t, g.HasAny("F2_NFPL4", types.DerivativeKinds...))

	// Issue embodiment for the journal row; standalone manifestation with
	// publisher and timespan for the book rows.
	assert.True(t, g.Has("F3_J1", types.RelEmbodies, "F2_NFPL1"))
	assert.True(t, g.Has("F3_NFPL5", types.RelEmbodies, "F2_NFPL5"))
	assert.True(t, g.Has("F30_NFPL5", types.RelPublishedBy, "F11_C1"))
	assert.NotEmpty(t, g.Objects("F30_NFPL5", types.RelHasTimespan))

	// Authorship: the principal on their own rows, the translator on the
	// translated one.
	assert.True(t, g.Has("F28_NFPL1", types.RelWrittenBy, "E21_P1"))
	assert.True(t, g.Has("F28_NFRU3", types.RelTranslatedBy, "E21_P2"))
	assert.False(t, g.Has("F28_NFRU3", types.RelWrittenBy, "E21_P2"))
}

func TestBuild_WorkInferencePicksUncapturedRoots(t *testing.T) {
	result := runBuild(t, testInput())
	g := result.Graph

	// Row 1 is a cluster root not owned by any monograph: it gets a work
	// realized in itself and its derivatives.
	require.True(t, g.Has("F1_NFPL1", types.RelIsRealisedIn, "F2_NFPL1"))
	assert.True(t, g.Has("F1_NFPL1", types.RelIsRealisedIn, "F2_NFRU3"))

	// Row 4 carries the citation-only marker: no work.
	_, ok := g.Entity("F1_NFPL4")
	assert.False(t, ok, "citation-only root must not produce a work")

	// The umbrella expression is realized by the monograph work, so it
	// gets no work of its own; the volumes under it are uncaptured roots
	// and still do.
	_, ok = g.Entity("F1_u_NFPL5_NFPL6")
	assert.False(t, ok)
	_, ok = g.Entity("F1_NFPL5")
	assert.True(t, ok)

	// Skip markers are stripped before the terminal snapshot.
	row4, _ := g.Entity("F2_NFPL4")
	assert.Empty(t, row4.Attr(types.AttrSkip))
}

func TestBuild_MonographUmbrella(t *testing.T) {
	result := runBuild(t, testInput())
	g := result.Graph

	// The two-volume original edition is grouped under an umbrella
	// expression ordered just before volume one.
	umbrella := "F2_u_NFPL5_NFPL6"
	umb, ok := g.Entity(umbrella)
	require.True(t, ok, "umbrella expression missing")
	assert.True(t, g.Has(umbrella, types.RelHasComponent, "F2_NFPL5"))
	assert.True(t, g.Has(umbrella, types.RelHasComponent, "F2_NFPL6"))
	vol1, _ := g.Entity("F2_NFPL5")
	require.True(t, umb.HasOrder)
	assert.Equal(t, vol1.OrderKey-0.5, umb.OrderKey)

	// The monograph work realizes the umbrella and the derivative edition.
	require.True(t, g.Has("F1_MON1", types.RelIsRealisedIn, umbrella))
	assert.True(t, g.Has("F1_MON1", types.RelIsRealisedIn, "F2_NFPL2"))
	assert.True(t, g.Has("F27_MON1", types.RelWrittenBy, "E21_P1"))

	// Umbrella authorship is the union over its volumes.
	assert.True(t, g.Has("F28_u_NFPL5_NFPL6", types.RelWrittenBy, "E21_P1"))
}

func TestBuild_DuplicateCitationFirstWins(t *testing.T) {
	input := testInput()
	input.Citations = append(input.Citations, types.CitationRecord{
		LocalID: "1", Sheet: "PL", Title: "Story again", Language: "PL",
	})

	log, warns := newTestLogger(t)
	g := graph.New()
	resolver := refs.NewResolver([]string{"PL", "RU"}, "NF", "OTH", warns)
	_, err := NewBuilder(g, ident.New(), resolver, warns, log).Build(input)
	require.NoError(t, err)

	e, _ := g.Entity("F2_NFPL1")
	assert.Equal(t, "Story", e.Label, "first row must win")

	found := false
	for _, w := range warns.Warnings() {
		if w.Category == "duplicate_identifier" {
			found = true
		}
	}
	assert.True(t, found, "duplicate should be reported")
}

func TestBuild_AuthorshipToUncitedExpressionStillLinks(t *testing.T) {
	input := testInput()
	input.Authorships = append(input.Authorships, types.AuthorshipRecord{
		PersonID: "2", RawRefs: []string{"99"},
	})

	log, warns := newTestLogger(t)
	g := graph.New()
	resolver := refs.NewResolver([]string{"PL", "RU"}, "NF", "OTH", warns)
	_, err := NewBuilder(g, ident.New(), resolver, warns, log).Build(input)
	require.NoError(t, err)

	// Row 99 was never cited: the creation event is addressed by naming
	// convention and the authorship link survives.
	assert.True(t, g.Has("F28_NFPL99", types.RelWrittenBy, "E21_P2"),
		"a dangling authorship reference must still be linked")

	found := false
	for _, w := range warns.Warnings() {
		if w.Category == "missing_entity" {
			found = true
		}
	}
	assert.True(t, found, "the dangling target should be reported")
}

func TestBuild_VocabularyEntities(t *testing.T) {
	result := runBuild(t, testInput())
	g := result.Graph

	lang, ok := g.Entity("E56_pol")
	require.True(t, ok)
	assert.Equal(t, "Polish", lang.Label)

	place, ok := g.Entity("E53_1")
	require.True(t, ok)
	assert.Equal(t, "Warsaw", place.Label)
	assert.True(t, g.Has("F11_C1", types.RelHasResidence, "E53_1"))

	// Translator name forms are cross-linked as alternatives.
	forms := g.Objects("E21_P2", types.RelIdentifiedBy)
	assert.GreaterOrEqual(t, len(forms), 3, "identifier plus two name forms")
}
