package scorer

import "github.com/sbvh/collegematch/internal/normalize"

// collegeLevelTokens are dropped from address comparison because they
// describe the institution, not its location, and would otherwise
// inflate overlap between two different towns' hospitals (§4.6).
var collegeLevelTokens = map[string]bool{
	"COLLEGE": true, "HOSPITAL": true, "MEDICAL": true, "DENTAL": true,
	"INSTITUTE": true, "GOVERNMENT": true, "CENTRE": true, "CENTER": true,
}

// addressScore is the keyword-overlap Jaccard of the two tokenized
// addresses, normalized by the smaller side, excluding stop-words
// (already dropped by Tokenize) and college/hospital-level tokens.
func addressScore(seatAddress, masterAddress string) float64 {
	a := filteredTokens(seatAddress)
	b := filteredTokens(masterAddress)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	overlap := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			overlap++
		}
	}

	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	if smaller == 0 {
		return 0
	}
	return float64(overlap) / float64(smaller)
}

func filteredTokens(s string) map[string]struct{} {
	tokens := normalize.Tokenize(s)
	out := make(map[string]struct{}, len(tokens))
	for tok := range tokens {
		if collegeLevelTokens[tok] {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}
