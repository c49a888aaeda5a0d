package types

// The record types below form the input contract of the batch builder.
// Upstream collaborators (spreadsheet ingestion, geocoding, language
// detection) hand the engine pre-cleaned records; the engine never touches
// raw spreadsheets or external services.

// LanguageRecord describes one language of the controlled vocabulary.
type LanguageRecord struct {
	Code     string // sheet prefix and internal code, e.g. "PL"
	Name     string // display name, e.g. "Polish"
	ISO6391  string // two-letter ISO 639-1 code, lowercase
	ISO6393  string // three-letter ISO 639-3 code, lowercase
	SameAsID string // external authority identifier, optional
}

// CategoryRecord describes one entry of the controlled type vocabulary.
type CategoryRecord struct {
	Code  string // stable code, e.g. "YID", "Journal_Name"
	Label string
}

// PlaceRecord describes a resolved place (geocoding happens upstream).
type PlaceRecord struct {
	ID        string // pre-assigned local place identifier suffix
	Name      string // primary (English) name
	LocalName string // name in the catalog's language
	Country   string
	SameAsIDs []string // external authority identifiers, optional
}

// PersonRecord describes a person with name forms grouped by language.
// Names maps a language code (or "" for unlabeled) to groups of
// alternative forms; forms within one group are alternative spellings of
// the same name and get cross-linked in the graph.
type PersonRecord struct {
	ID       string // local person identifier suffix, e.g. "5"
	MainName string
	Names    map[string][][]string
	Search   string // precomputed search text, optional
}

// PublisherRecord describes a publishing body.
type PublisherRecord struct {
	ID       string // local publisher identifier suffix
	Name     string
	PlaceIDs []string // resolved place entity IDs, optional
}

// IssueRecord describes one journal issue (a manifestation shared by all
// expressions printed in it).
type IssueRecord struct {
	ID      string // local issue identifier suffix
	Journal string
	Year    string
	Number  string
}

// CitationRecord is one normalized row of a source sheet: a single
// expression with its title, hierarchy markers, and raw citation tokens.
type CitationRecord struct {
	// LocalID is the numeric path within the sheet, e.g. "355.9.1".
	LocalID string

	// Sheet is the source-sheet prefix, e.g. "PL".
	Sheet string

	Title string

	// ExpandedTitle is the full hierarchical title, components joined
	// top-down; used as the search key.
	ExpandedTitle string

	// RawRefs holds unparsed citation tokens referencing source
	// expressions (each token may expand to several references).
	RawRefs []string

	// Components lists canonical reference strings of child expressions
	// (e.g. "NFPL355.9"), PartOf the canonical reference of the parent
	// (at most one).
	Components []string
	PartOf     string

	// Language is the expression's language code.
	Language string

	// ByPrincipal reports that the catalog's principal author created
	// this expression.
	ByPrincipal bool

	// Publication details. When Number is set the expression appeared in
	// a journal issue; otherwise it is a standalone publication.
	PubName string
	PubYear string
	Number  string
}

// AuthorshipRecord relates a person to the expressions they created,
// by raw citation tokens resolved at build time.
type AuthorshipRecord struct {
	PersonID string
	RawRefs  []string
}

// MonographRecord describes one entry of the monograph index: an abstract
// work with its original edition and derivative editions, each edition a
// list of raw volume references.
type MonographRecord struct {
	ID       string // local monograph identifier suffix
	Title    string
	Language string

	// Original is the principal edition (one or more volumes).
	Original []string

	// Derivatives lists further editions, each a list of volume tokens.
	Derivatives [][]string
}

// BatchInput bundles every record set one batch run consumes.
type BatchInput struct {
	Languages   []LanguageRecord
	Categories  []CategoryRecord
	Places      []PlaceRecord
	People      []PersonRecord
	Publishers  []PublisherRecord
	Issues      []IssueRecord
	Citations   []CitationRecord
	Authorships []AuthorshipRecord
	Monographs  []MonographRecord

	// PrincipalPersonID names the catalog's principal author (authorship
	// rows without refs attach to expressions flagged ByPrincipal).
	PrincipalPersonID string

	// DefaultSheet is the sheet prefix assumed for bare numeric citation
	// tokens outside the per-sheet citation records (authorship and
	// monograph references).
	DefaultSheet string
}
