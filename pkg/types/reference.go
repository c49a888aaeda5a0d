package types

// RelationSuffix encodes the trailing punctuation of a raw citation token
// as a closed variant type. The resolver produces it exactly once; no code
// downstream re-parses suffix characters from strings.
type RelationSuffix int

// Relation suffix variants.
const (
	// SuffixNone marks a plain reference with no qualifying suffix.
	SuffixNone RelationSuffix = iota

	// SuffixCitationOnly ("-") marks a bare citation: the reference is kept
	// for provenance but must not produce a derivative link or a Work.
	SuffixCitationOnly

	// SuffixReducedForm (">") marks the referencing expression as a reduced
	// form of the referenced one.
	SuffixReducedForm

	// SuffixExtendedForm ("<") marks an extended form.
	SuffixExtendedForm

	// SuffixAlteredForm ("!") marks an altered form.
	SuffixAlteredForm
)

// Relation returns the derivative relation kind this suffix encodes and
// true when it encodes one. SuffixNone and SuffixCitationOnly return false.
func (s RelationSuffix) Relation() (RelationKind, bool) {
	switch s {
	case SuffixReducedForm:
		return RelIsReducedFormOf, true
	case SuffixExtendedForm:
		return RelIsExtendedFormOf, true
	case SuffixAlteredForm:
		return RelIsAlteredFormOf, true
	}
	return "", false
}

func (s RelationSuffix) String() string {
	switch s {
	case SuffixCitationOnly:
		return "citation-only"
	case SuffixReducedForm:
		return "reduced-form"
	case SuffixExtendedForm:
		return "extended-form"
	case SuffixAlteredForm:
		return "altered-form"
	}
	return "none"
}

// Reference is a parsed, canonical pointer to an expression, produced by
// the reference resolver from one raw citation sub-token.
type Reference struct {
	// Sheet is the source-sheet prefix the reference resolved under
	// (e.g. "PL", "RU").
	Sheet string

	// Path is the numeric local identifier within the sheet, dots
	// included (e.g. "355.9.1").
	Path string

	// Canonical is the fully prefixed identifier: namespace prefix +
	// sheet + path (e.g. "NFPL355.9.1" or "OTHB12").
	Canonical string

	// Suffix is the relation suffix carried by the raw token.
	Suffix RelationSuffix

	// Other reports that the sheet prefix was not in the recognized set
	// and the reference was routed into the "other" namespace. Callers
	// typically exclude such references from derivative linking.
	Other bool
}
