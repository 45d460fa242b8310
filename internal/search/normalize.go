// Package search provides a simple, deterministic, concurrency-safe matcher
// over the active sound catalog. It is intentionally small and library-like:
//
//   - No logging in the library (callers decide how/what to log)
//   - Immutable engine after construction (safe for concurrent use)
//   - Deterministic, catalog-order results with early termination at the cap
//
// Matching is literal substring containment between the normalized query and
// each sound's normalized tags. There is no relevance scoring and no fuzzy
// matching; two strings a user would consider "the same modulo accents, case
// and punctuation" normalize identically and therefore match identically.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks decomposes to NFD, drops combining marks (diacritics), and
// recomposes. "Café" becomes "Cafe".
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes free text for comparison: diacritics are removed,
// the result is lower-cased, and every rune that is not a letter or digit
// (punctuation, whitespace, symbols) is dropped. A string consisting only of
// stripped characters normalizes to "".
func Normalize(s string) string {
	folded, _, err := transform.String(foldMarks, s)
	if err != nil {
		// Malformed UTF-8: fall back to the raw input, the rune filter
		// below still bounds what we compare against.
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
