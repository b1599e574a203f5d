// Package verify implements the two-stage Verifier (§4.8): a rule-based
// guardian (Stage A) that every proposed match must clear, and an
// optional LLM consensus vote (Stage B) for matches Stage A passes with
// a score below the review threshold.
package verify

import (
	"strings"

	"github.com/sbvh/collegematch/internal/candidate"
	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/normalize"
	"github.com/sbvh/collegematch/internal/statealias"
)

// GuardianResult is Stage A's verdict plus the reason when it rejects.
type GuardianResult struct {
	Approved bool
	Reason   string
}

// Guardian runs Stage A's five conditions against a proposed match,
// grounded on the same credibility-gate shape as the teacher's
// ats/ax/classification.SmartClassifier (a fixed ordered set of checks,
// the first failing one wins), but rule-based rather than LLM-driven —
// Stage A exists specifically so these checks never cost an LLM call.
type Guardian struct {
	streams *coursestream.Mapper
	states  *statealias.Aliaser
}

func NewGuardian(streams *coursestream.Mapper, states *statealias.Aliaser) *Guardian {
	return &Guardian{streams: streams, states: states}
}

// Check runs the five Stage A conditions in order (§4.8):
//  1. canonical states equal
//  2. streams compatible per CourseStreamMapper
//  3. if ultra-generic, address-keyword Jaccard >= 0.75 and >= 1 shared keyword
//  4. pincode consistent (or absent on either side)
//  5. name score >= 0.80 or composite-key exact
func (g *Guardian) Check(req model.MatchRequest, match model.ScoredMatch) GuardianResult {
	college := match.Candidate.College

	if g.states != nil {
		if canonicalState, resolved := g.states.Canonicalize(req.State); resolved && !strings.EqualFold(college.StateName, canonicalState) {
			return GuardianResult{Reason: "state_mismatch"}
		}
	}

	streams := g.streams.StreamsFor(req.Course)
	if !streamCompatible(college.Stream, streams) {
		return GuardianResult{Reason: "stream_incompatible"}
	}

	normalizedCollege := normalize.Normalize(req.College)
	if candidate.IsUltraGeneric(normalizedCollege) {
		if match.Components.AddressScore < 0.75 {
			return GuardianResult{Reason: "ultra_generic_address_overlap_too_low"}
		}
		if !sharesLocationKeyword(req.Address, college.LocationKeywords) {
			return GuardianResult{Reason: "ultra_generic_no_shared_keyword"}
		}
	}

	if match.Components.PincodeBoost < 0 {
		return GuardianResult{Reason: "pincode_inconsistent"}
	}

	compositeExact := strings.Contains(match.Method, "composite_exact")
	if match.Components.NameScore < 0.80 && !compositeExact {
		return GuardianResult{Reason: "name_score_below_threshold"}
	}

	return GuardianResult{Approved: true}
}

func streamCompatible(collegeStream coursestream.Stream, compatible []coursestream.Stream) bool {
	for _, s := range compatible {
		if s == collegeStream {
			return true
		}
	}
	return false
}

func sharesLocationKeyword(address string, keywords map[string]struct{}) bool {
	if len(keywords) == 0 {
		return false
	}
	tokens := normalize.Tokenize(normalize.NormalizeForExact(address))
	for tok := range tokens {
		if _, ok := keywords[tok]; ok {
			return true
		}
	}
	return false
}
