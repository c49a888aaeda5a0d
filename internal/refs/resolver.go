// Package refs parses raw citation tokens into canonical, typed entity
// references.
//
// A raw token can be a single reference ("355.9.1"), a list
// ("PL:2039,2041"), a range ("9.1÷9.4"), a sub-chapter list ("44.1;2;3"),
// or a composite joined with "+". Trailing punctuation encodes a semantic
// relation and is parsed exactly once here, into types.RelationSuffix;
// nothing downstream re-reads suffix characters from strings.
package refs

import (
	"fmt"
	"strconv"
	"strings"

	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

// suffixChars maps trailing token characters to their relation suffix.
var suffixChars = map[byte]types.RelationSuffix{
	'-': types.SuffixCitationOnly,
	'>': types.SuffixReducedForm,
	'<': types.SuffixExtendedForm,
	'!': types.SuffixAlteredForm,
}

// Resolver turns raw citation tokens into canonical references.
type Resolver struct {
	recognized map[string]bool
	nsKnown    string // namespace prefix for recognized sheets
	nsOther    string // namespace prefix for unrecognized sheets
	warns      *warn.Collector
}

// NewResolver creates a resolver. recognized is the set of valid sheet
// prefixes; nsKnown and nsOther are the output namespace prefixes for
// recognized and unrecognized sheets.
func NewResolver(recognized []string, nsKnown, nsOther string, warns *warn.Collector) *Resolver {
	set := make(map[string]bool, len(recognized))
	for _, p := range recognized {
		set[p] = true
	}
	return &Resolver{recognized: set, nsKnown: nsKnown, nsOther: nsOther, warns: warns}
}

// Canonical builds the canonical identifier for a sheet-local path without
// parsing, for callers that already hold structured input.
func (r *Resolver) Canonical(sheet, path string) string {
	if r.recognized[sheet] {
		return r.nsKnown + sheet + path
	}
	return r.nsOther + sheet + path
}

// Resolve parses one raw citation token into zero or more canonical
// references, in source order. defaultSheet applies to sub-tokens that
// start with a digit and carry no prefix of their own. Uncertain
// references (trailing "?") are excluded; malformed sub-tokens are
// dropped with a warning; empty sub-tokens are skipped silently.
// Duplicates are preserved: callers deduplicate where needed.
func (r *Resolver) Resolve(token, defaultSheet string) []types.Reference {
	var out []types.Reference

	// A leading citation arrow and trailing commentary are not part of
	// the reference proper.
	token = strings.TrimPrefix(strings.TrimSpace(token), "↑")
	if cut := strings.Index(token, " ("); cut >= 0 {
		token = token[:cut]
	}

	prevSheet := defaultSheet
	var prevPath string
	for _, listPart := range strings.Split(token, ", ") {
		for _, sub := range strings.Split(listPart, "+") {
			ref, ok := r.resolveOne(sub, prevSheet, prevPath)
			if !ok {
				continue
			}
			prevSheet = ref.sheet
			prevPath = ref.path
			out = append(out, ref.expand(r)...)
		}
	}
	return out
}

// subToken is one parsed sub-token before range/sub-list expansion.
type subToken struct {
	sheet     string
	path      string
	suffix    types.RelationSuffix
	other     bool
	canonical func(path string) string
}

func (r *Resolver) resolveOne(sub, prevSheet, prevPath string) (subToken, bool) {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return subToken{}, false
	}

	// Pop trailing suffix characters. "?" marks the reference uncertain
	// and excludes it entirely.
	suffix := types.SuffixNone
	uncertain := false
	for len(sub) > 0 && !isDigit(sub[len(sub)-1]) {
		c := sub[len(sub)-1]
		if c == '?' {
			uncertain = true
		} else if s, known := suffixChars[c]; known {
			// Citation-only suppresses linking and wins over any other
			// suffix on the same token.
			if suffix != types.SuffixCitationOnly {
				suffix = s
			}
		} else {
			r.warns.Warnf(warn.MalformedReference, "reference %q: unrecognized trailing character %q", sub, string(c))
			return subToken{}, false
		}
		sub = sub[:len(sub)-1]
	}
	if uncertain {
		return subToken{}, false
	}
	if sub == "" {
		r.warns.Warnf(warn.MalformedReference, "reference reduced to empty token after suffix characters")
		return subToken{}, false
	}

	// A sub-token starting with "." continues the previous sub-token's
	// path with the last segment replaced ("2358.2-+.22-" style).
	if sub[0] == '.' {
		if prevPath == "" {
			r.warns.Warnf(warn.MalformedReference, "reference %q: no preceding path to continue", sub)
			return subToken{}, false
		}
		base := prevPath
		if i := strings.LastIndex(base, "."); i >= 0 {
			base = base[:i]
		}
		sub = base + sub
	}

	sheet := prevSheet
	path := sub
	if !isDigit(sub[0]) {
		letters := leadingLetters(sub)
		if letters == "" {
			r.warns.Warnf(warn.MalformedReference, "reference %q: cannot determine sheet prefix", sub)
			return subToken{}, false
		}
		sheet = letters
		path = strings.TrimPrefix(sub[len(letters):], ":")
		if path == "" {
			r.warns.Warnf(warn.MalformedReference, "reference %q: prefix without a number", sub)
			return subToken{}, false
		}
	}

	st := subToken{sheet: sheet, path: path, suffix: suffix}
	if r.recognized[sheet] {
		st.canonical = func(p string) string { return r.nsKnown + sheet + p }
	} else {
		st.other = true
		st.canonical = func(p string) string { return r.nsOther + sheet + p }
		r.warns.Warnf(warn.UnknownSheetPrefix, "reference %s%s: sheet %q not in recognized set", sheet, path, sheet)
	}
	return st, true
}

// expand applies range ("÷") and sub-chapter (";") notation and builds the
// final references. Each expanded ID carries the sub-token's suffix.
func (st subToken) expand(r *Resolver) []types.Reference {
	paths, err := expandPath(st.path)
	if err != nil {
		r.warns.Warnf(warn.MalformedReference, "reference %s%s: %v", st.sheet, st.path, err)
		return nil
	}
	out := make([]types.Reference, 0, len(paths))
	for _, p := range paths {
		out = append(out, types.Reference{
			Sheet:     st.sheet,
			Path:      p,
			Canonical: st.canonical(p),
			Suffix:    st.suffix,
			Other:     st.other,
		})
	}
	return out
}

// ExpandRange expands range notation into the enumerated sequence of
// trailing-segment integers, holding the leading path fixed:
//
//	ExpandRange("355.9.1÷9.4") == ["355.9.1", "355.9.2", "355.9.3", "355.9.4"]
//
// An upper bound without "." is the bare trailing integer, so "44.2÷5"
// runs to 44.5. A path without "÷" is returned as-is.
func ExpandRange(src string) ([]string, error) {
	first, last, found := strings.Cut(src, "÷")
	if !found {
		return []string{src}, nil
	}
	base, lo, err := splitTail(first)
	if err != nil {
		return nil, err
	}
	hi, err := boundTail(last)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, fmt.Errorf("descending range %d÷%d", lo, hi)
	}
	out := make([]string, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, fmt.Sprintf("%s.%d", base, n))
	}
	return out, nil
}

// expandPath handles both range and sub-chapter list notation on a
// sheet-local path.
func expandPath(path string) ([]string, error) {
	if strings.Contains(path, "÷") {
		// A ";" tail after the range bound lists extra sub-chapters:
		// "9.1÷9.3;7" expands the range, then appends "9.7".
		rangePart, extra, hasExtra := strings.Cut(path, ";")
		out, err := ExpandRange(rangePart)
		if err != nil {
			return nil, err
		}
		if hasExtra {
			base, _, err := splitTail(rangePart[:strings.Index(rangePart, "÷")])
			if err != nil {
				return nil, err
			}
			for _, part := range strings.Split(extra, ";") {
				if _, err := strconv.Atoi(part); err != nil {
					return nil, fmt.Errorf("non-numeric sub-chapter %q", part)
				}
				out = append(out, base+"."+part)
			}
		}
		return out, nil
	}
	if strings.Contains(path, ";") {
		// "44.1;2;3" shares the leading segment: 44.1, 44.2, 44.3.
		head, tail, found := strings.Cut(path, ".")
		if !found {
			return nil, fmt.Errorf("sub-chapter list %q has no leading segment", path)
		}
		parts := strings.Split(tail, ";")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part == "" {
				return nil, fmt.Errorf("empty sub-chapter in %q", path)
			}
			out = append(out, head+"."+part)
		}
		return out, nil
	}
	return []string{path}, nil
}

// splitTail splits a path into its leading base and trailing integer
// segment: "355.9.1" -> ("355.9", 1).
func splitTail(path string) (string, int, error) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return "", 0, fmt.Errorf("path %q has no trailing segment", path)
	}
	n, err := strconv.Atoi(path[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("non-numeric trailing segment in %q", path)
	}
	return path[:i], n, nil
}

// boundTail reads the trailing integer of a range's upper bound; a bound
// with no "." is the bare integer itself.
func boundTail(path string) (int, error) {
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	n, err := strconv.Atoi(path)
	if err != nil {
		return 0, fmt.Errorf("non-numeric trailing segment in %q", path)
	}
	return n, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func leadingLetters(s string) string {
	i := 0
	for i < len(s) && (s[i] >= 'A' && s[i] <= 'Z' || s[i] >= 'a' && s[i] <= 'z') {
		i++
	}
	return s[:i]
}
