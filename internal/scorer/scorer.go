// Package scorer implements Scorer (§4.6): the composite match score for
// one (request, candidate) pair, combining name/address/pincode/NER
// signals under configurable, redistributing weights, with a hard
// state-mismatch reject and an ultra-generic address-overlap gate.
package scorer

import (
	"fmt"
	"strings"

	"github.com/sbvh/collegematch/internal/candidate"
	"github.com/sbvh/collegematch/internal/config"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/normalize"
	"github.com/sbvh/collegematch/internal/statealias"
)

// idfSource is the narrow seam nameScore needs for its TF-IDF term — any
// MasterIndex satisfies it without Scorer depending on the concrete type.
type idfSource interface {
	IDF(token string) float64
}

// Scorer holds the configured weights and optional idf source.
type Scorer struct {
	weights config.WeightsConfig
	idf     idfSource
	states  *statealias.Aliaser
}

// New returns a Scorer. idf may be nil, in which case the TF-IDF term of
// name_score is simply omitted from the max (§4.6 graceful degradation).
// states may be nil, in which case the hard state gate never fires (every
// row is treated as StateUnresolved, matching §7's non-fatal policy).
func New(weights config.WeightsConfig, idf idfSource, states *statealias.Aliaser) *Scorer {
	return &Scorer{weights: weights, idf: idf, states: states}
}

// Score implements the full §4.6 contract for one request/candidate pair.
func (s *Scorer) Score(req model.MatchRequest, cand model.Candidate) model.ScoredMatch {
	college := cand.College
	breakdown := model.ScoreBreakdown{}

	if s.states != nil {
		if canonicalState, resolved := s.states.Canonicalize(req.State); resolved && !strings.EqualFold(college.StateName, canonicalState) {
			breakdown.StateMismatch = true
			return model.ScoredMatch{Candidate: cand, Score: 0, Components: breakdown, Method: "state_mismatch_reject"}
		}
	}

	normalizedReqCollege := normalize.Normalize(req.College)
	ultraGeneric := candidate.IsUltraGeneric(normalizedReqCollege)
	breakdown.UltraGeneric = ultraGeneric

	addrScore := addressScore(normalize.NormalizeForExact(req.Address), college.NormalizedAddress)
	breakdown.AddressScore = addrScore

	requiredThreshold := 0.25
	if ultraGeneric {
		requiredThreshold = 0.75
	}
	addressPresent := req.Address != "" && college.NormalizedAddress != ""
	if addressPresent && addrScore < requiredThreshold {
		return model.ScoredMatch{Candidate: cand, Score: 0, Components: breakdown, Method: "address_threshold_reject"}
	}

	breakdown.NameScore = nameScore(normalizedReqCollege, college.NormalizedName, s.idf)
	breakdown.PincodeBoost = pincodeBoost(firstSixDigitCode(req.Address), college.Pincode)
	breakdown.NERBoost = nerBoost(req.Address, college.LocationKeywords)
	breakdown.PrescoreWeight = cand.Prescore

	score, dominant := s.combine(breakdown, addressPresent, college.Pincode != "")
	method := buildMethodLabel(cand.Provenance, dominant)

	return model.ScoredMatch{Candidate: cand, Score: score, Components: breakdown, Method: method}
}

// combine applies the configured weights with proportional redistribution
// across whichever fields actually have input (§4.6), and reports which
// component contributed the most to the final score for the method label.
func (s *Scorer) combine(b model.ScoreBreakdown, addressPresent, pincodePresent bool) (float64, string) {
	type term struct {
		name   string
		weight float64
		value  float64
		active bool
	}
	terms := []term{
		{"name", s.weights.Name, b.NameScore, true},
		{"address", s.weights.Address, b.AddressScore, addressPresent},
		{"pincode", s.weights.Pincode, normalizeBoost(b.PincodeBoost), pincodePresent},
		{"ner", s.weights.NER, normalizeBoost(b.NERBoost), b.NERBoost != 0},
		{"prescore", s.weights.Prescore, b.PrescoreWeight, true},
	}

	var totalWeight float64
	for _, t := range terms {
		if t.active {
			totalWeight += t.weight
		}
	}
	if totalWeight == 0 {
		return 0, "no_signal"
	}

	var score float64
	dominant := terms[0].name
	dominantContribution := -1.0
	for _, t := range terms {
		if !t.active {
			continue
		}
		contribution := (t.weight / totalWeight) * t.value
		score += contribution
		if contribution > dominantContribution {
			dominantContribution = contribution
			dominant = t.name
		}
	}

	// Raw boosts (pincode/ner) can push the weighted sum above 1 or below
	// 0 when they disagree sharply with name/address; clamp to [0,1].
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score, dominant
}

// normalizeBoost maps a +/-0.25-scale boost into roughly [0,1] so it
// blends sensibly against the [0,1]-scale name/address/prescore terms.
func normalizeBoost(boost float64) float64 {
	v := 0.5 + boost*2
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func firstSixDigitCode(address string) string {
	codes := normalize.ExtractSixDigitCodes(address)
	if len(codes) == 0 {
		return ""
	}
	return codes[0]
}

// nerBoost stands in for a location-entity recognizer: college.
// LocationKeywords is the gazetteer of location tokens extracted from the
// master address at index time (§4.4). When a college carries none, the
// boost degrades to 0 exactly as if no NER model were installed (§4.6).
func nerBoost(seatAddress string, locationKeywords map[string]struct{}) float64 {
	if len(locationKeywords) == 0 {
		return 0
	}
	seatTokens := normalize.Tokenize(normalize.NormalizeForExact(seatAddress))
	for tok := range seatTokens {
		if _, ok := locationKeywords[tok]; ok {
			return 0.15
		}
	}
	return 0
}

func buildMethodLabel(provenance model.CandidateProvenance, dominant string) string {
	return fmt.Sprintf("%s+%s", provenanceTag(provenance), dominant)
}

func provenanceTag(p model.CandidateProvenance) string {
	switch p {
	case model.ProvenanceCompositeExact:
		return "composite_exact"
	case model.ProvenanceCodeInAddress:
		return "code_in_address"
	case model.ProvenanceExactName:
		return "exact_name"
	case model.ProvenanceFTS:
		return "fts_phonetic_tfidf"
	case model.ProvenancePhonetic:
		return "phonetic"
	default:
		return "unknown"
	}
}
