package normalize

import "strings"

// phoneticReplacements maps a lower-case rune to a digit code tuned for
// Indian-English college names: vowels and semivowels collapse to '0',
// consonant groups that sound alike share a digit.
var phoneticReplacements = map[rune]byte{
	'a': '0', 'e': '0', 'i': '0', 'o': '0', 'u': '0',
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
	'h': '0', 'w': '0', 'y': '0',
}

// PhoneticKey returns a Soundex-style key for a single word: first letter
// preserved, then up to 5 collapsed consonant-group digits, padded to a
// minimum length of 4.
func PhoneticKey(word string) string {
	if word == "" {
		return ""
	}
	word = strings.ToLower(word)

	var result strings.Builder
	runes := []rune(word)
	result.WriteByte(byte(runes[0]))

	lastCode := byte('0')
	if code, ok := phoneticReplacements[runes[0]]; ok {
		lastCode = code
	}

	for _, r := range runes[1:] {
		code, ok := phoneticReplacements[r]
		if !ok {
			continue
		}
		if code != '0' && code != lastCode {
			result.WriteByte(code)
			lastCode = code
		}
		if code != '0' {
			lastCode = code
		}
		if result.Len() >= 6 {
			break
		}
	}

	for result.Len() < 4 {
		result.WriteByte('0')
	}
	return result.String()
}

// PhoneticKeys returns the per-token phonetic key set for a normalized,
// whitespace-separated string.
func PhoneticKeys(s string) []string {
	fields := strings.Fields(s)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, PhoneticKey(f))
	}
	return keys
}

// PhoneticSimilarity returns the Jaccard overlap of the multisets of
// per-token phonetic keys of a and b, in [0,1]. Empty inputs score 0.
func PhoneticSimilarity(a, b string) float64 {
	ka := PhoneticKeys(a)
	kb := PhoneticKeys(b)
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}

	counts := make(map[string]int, len(ka))
	for _, k := range ka {
		counts[k]++
	}

	var intersection int
	used := make(map[string]int, len(kb))
	for _, k := range kb {
		if counts[k] > used[k] {
			intersection++
			used[k]++
		}
	}

	union := len(ka) + len(kb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
