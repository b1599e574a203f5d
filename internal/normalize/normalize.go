// Package normalize implements the single normalization contract used
// throughout collegematch. No other package is allowed to re-implement
// normalization — every place that used to have its own ad-hoc string
// cleanup in the source now calls here instead.
package normalize

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	whitespaceRE   = regexp.MustCompile(`\s+`)
	punctuationRE  = regexp.MustCompile(`[^A-Z0-9 ]+`)
	exactKeepRE    = regexp.MustCompile(`[^A-Z0-9 ,()/&]+`)
	sixDigitCodeRE = regexp.MustCompile(`\b\d{6}\b`)
)

// stopWords are dropped by Tokenize. Kept lowercase-free (tokens are always
// upper-cased before comparison).
var stopWords = map[string]bool{
	"OF": true, "AND": true, "THE": true, "FOR": true, "WITH": true,
	"A": true, "AN": true, "IN": true, "AT": true, "TO": true, "ON": true,
}

// Normalize upper-cases, folds punctuation, collapses whitespace, and
// expands known abbreviations. Used for display-free comparison everywhere
// except the strongest identity key (see NormalizeForExact).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = unidecode.Unidecode(s)
	s = strings.ToUpper(s)
	s = punctuationRE.ReplaceAllString(s, " ")
	s = whitespaceRE.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = ExpandAbbreviations(s)
	return s
}

// NormalizeForExact is the conservative variant that preserves commas,
// brackets, slashes, and ampersands — used to build composite_key, the
// strongest identity key in the master catalogue (§3).
func NormalizeForExact(s string) string {
	if s == "" {
		return ""
	}
	s = unidecode.Unidecode(s)
	s = strings.ToUpper(s)
	s = exactKeepRE.ReplaceAllString(s, " ")
	s = whitespaceRE.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return s
}

// CompositeKey builds the `"{name}, {address}"` identity key per §3.
func CompositeKey(name, address string) string {
	n := NormalizeForExact(name)
	a := NormalizeForExact(address)
	if a == "" {
		return n
	}
	return n + ", " + a
}

// ExtractPrimary returns the text before the first "(" — used to split
// `"X COLLEGE (Y CAMPUS)"` into a primary name and a secondary qualifier.
func ExtractPrimary(s string) string {
	if idx := strings.IndexByte(s, '('); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

// ExtractSecondary returns the text inside the first "(...)", or "" if none.
func ExtractSecondary(s string) string {
	start := strings.IndexByte(s, '(')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start:], ')')
	if end < 0 {
		return strings.TrimSpace(s[start+1:])
	}
	return strings.TrimSpace(s[start+1 : start+end])
}

// Tokenize splits on whitespace/punctuation, drops stop words, and drops
// tokens of length <= 2. The input is assumed already upper-cased (callers
// typically tokenize the output of Normalize).
func Tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(punctuationRE.ReplaceAllString(strings.ToUpper(s), " ")) {
		if len(tok) <= 2 || stopWords[tok] {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

// ExtractSixDigitCodes returns every run of exactly six digits found in s —
// used to spot a PIN/area code embedded in a free-text address.
func ExtractSixDigitCodes(s string) []string {
	return sixDigitCodeRE.FindAllString(s, -1)
}
