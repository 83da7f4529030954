// Package textnorm canonicalizes raw transaction descriptions before
// alias matching and classification.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NumToken replaces runs of four or more digits. Long numeric runs
// (invoice numbers, card suffixes) are noise; short ones may carry
// signal (store numbers) and are kept verbatim.
const NumToken = "num"

var (
	longDigitRun = regexp.MustCompile(`\d{4,}`)
	nonAlnumRun  = regexp.MustCompile(`[^\p{L}\p{N}]+`)

	// NFKD then strip combining marks, so "café" folds to "cafe".
	unicodeFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
)

// Normalize maps a raw transaction string to its canonical form:
// Unicode-folded, lowercased, long digit runs collapsed to NumToken,
// punctuation runs collapsed to single spaces, trimmed. It is a pure
// total function; the empty string maps to itself.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s, _, err := transform.String(unicodeFold, raw)
	if err != nil {
		// Malformed UTF-8 still normalizes; fold is best-effort.
		s = raw
	}
	s = strings.ToLower(s)
	s = longDigitRun.ReplaceAllString(s, " "+NumToken+" ")
	s = nonAlnumRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
