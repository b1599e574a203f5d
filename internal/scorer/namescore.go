package scorer

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/sbvh/collegematch/internal/normalize"
)

// levenshteinRatio turns an edit distance into a [0,1] similarity, the
// same transform the booth matcher uses (1 - distance/maxLen).
func levenshteinRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := 1 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

// tokenSetRatio is the fuzzywuzzy-style token-set ratio: tokens are
// sorted and deduped on each side, then the shared tokens and the two
// per-side remainders are compared, taking the best of the three
// levenshtein ratios. This makes word order and repeated/extra
// qualifier tokens ("... (CAMPUS)") not count against a match.
func tokenSetRatio(a, b string) float64 {
	ta := sortedTokenSet(a)
	tb := sortedTokenSet(b)

	inter, onlyA, onlyB := splitTokenSets(ta, tb)

	interStr := strings.Join(inter, " ")
	sortedA := strings.Join(append(append([]string{}, inter...), onlyA...), " ")
	sortedB := strings.Join(append(append([]string{}, inter...), onlyB...), " ")

	best := levenshteinRatio(interStr, sortedA)
	if r := levenshteinRatio(interStr, sortedB); r > best {
		best = r
	}
	if r := levenshteinRatio(sortedA, sortedB); r > best {
		best = r
	}
	return best
}

func sortedTokenSet(s string) []string {
	set := normalize.Tokenize(s)
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func splitTokenSets(a, b []string) (inter, onlyA, onlyB []string) {
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}
	seenInter := make(map[string]bool)
	for _, t := range a {
		if setB[t] {
			inter = append(inter, t)
			seenInter[t] = true
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range b {
		if !seenInter[t] {
			onlyB = append(onlyB, t)
		}
	}
	return
}

// fuzzyMatchScore gives credit for a being a fuzzy subsequence of b (or
// vice versa), the same signal fzf-style tools use to catch abbreviated
// or truncated names. RankMatch returns -1 when no subsequence match
// exists; otherwise the returned rank is roughly an edit distance, which
// we fold into [0,1] the same way levenshteinRatio does.
func fuzzyMatchScore(a, b string) float64 {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	rank := fuzzy.RankMatchNormalizedFold(shorter, longer)
	if rank < 0 {
		return 0
	}
	maxLen := len(longer)
	if maxLen == 0 {
		return 0
	}
	score := 1 - float64(rank)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

// tfidfCosine scores the cosine similarity of two token sets weighted by
// idf, using the same token weighting CandidateGenerator's FTS pass uses.
func tfidfCosine(a, b string, idf idfSource) float64 {
	ta := normalize.Tokenize(a)
	tb := normalize.Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for tok := range ta {
		w := idf.IDF(tok)
		normA += w * w
		if _, ok := tb[tok]; ok {
			dot += w * w
		}
	}
	for tok := range tb {
		w := idf.IDF(tok)
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// nameScore is the max of fuzzy ratio, token-set ratio, phonetic
// similarity, and TF-IDF cosine (§4.6).
func nameScore(a, b string, idf idfSource) float64 {
	scores := []float64{
		levenshteinRatio(a, b),
		tokenSetRatio(a, b),
		normalize.PhoneticSimilarity(a, b),
		fuzzyMatchScore(a, b),
	}
	if idf != nil {
		scores = append(scores, tfidfCosine(a, b, idf))
	}
	best := 0.0
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	return best
}
