package table

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes text and removes combining diacritical marks, so
// "Alícia" and "alicia" canonicalize to the same form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the canonical form of text used for all matching:
// lower-cased, diacritics stripped, runs of whitespace and punctuation
// collapsed to single spaces, trimmed. It is total over any input and
// idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded := strings.ToLower(text)
	stripped, _, err := transform.String(stripMarks, folded)
	if err != nil {
		// Malformed UTF-8 still matches on its folded form.
		stripped = folded
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	for _, r := range stripped {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Match reports whether the normalized query occurs as a substring of the
// normalized haystack. An empty query matches everything.
func Match(query, haystack string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	return strings.Contains(Normalize(haystack), q)
}

// MatchWord is Match restricted to token boundaries: the query tokens must
// appear as whole words in the haystack.
func MatchWord(query, haystack string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	h := Normalize(haystack)
	return strings.Contains(" "+h+" ", " "+q+" ")
}
