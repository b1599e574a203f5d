package pipeline

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/sbvh/collegematch/internal/candidate"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/normalize"
	"github.com/sbvh/collegematch/internal/scorer"
)

// passOutcome is what one pass attempt produced for a group.
type passOutcome struct {
	match     *model.ScoredMatch
	ambiguous bool
	passName  string
	aliasRule string
}

func scoreAndRank(s *scorer.Scorer, req model.MatchRequest, candidates []model.Candidate) []model.ScoredMatch {
	out := make([]model.ScoredMatch, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, s.Score(req, c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Candidate.Prescore != b.Candidate.Prescore {
			return a.Candidate.Prescore > b.Candidate.Prescore
		}
		da := editDistanceToRequest(req, a.Candidate.College)
		db := editDistanceToRequest(req, b.Candidate.College)
		if da != db {
			return da < db
		}
		return a.Candidate.College.ID < b.Candidate.College.ID
	})
	return out
}

func editDistanceToRequest(req model.MatchRequest, college *model.MasterCollege) int {
	key := normalize.CompositeKey(req.College, req.Address)
	return levenshteinInt(key, college.CompositeKey)
}

// ambiguousTop reports whether the top two scores are within 0.01 of
// each other and both clear the accept threshold (§7 AmbiguousMatch).
func ambiguousTop(ranked []model.ScoredMatch, accept float64) bool {
	if len(ranked) < 2 {
		return false
	}
	if ranked[0].Score < accept || ranked[1].Score < accept {
		return false
	}
	return ranked[0].Score-ranked[1].Score <= 0.01
}

// runPass1 runs CandidateGenerator once and accepts the highest scorer at
// or above thresholds.Accept (§4.7 Pass 1). The generator picks the
// stream: the first in priority order whose best prescore reaches its
// accept threshold, else the last stream. Lower-priority streams are not
// tried again when that stream's candidates all score below Accept.
func (o *Orchestrator) runPass1(req model.MatchRequest) passOutcome {
	candidates := o.gen.Generate(req)
	if len(candidates) == 0 {
		return passOutcome{passName: "pass1"}
	}
	ranked := scoreAndRank(o.scorer, req, candidates)
	if ambiguousTop(ranked, o.thresholds.Accept) {
		return passOutcome{ambiguous: true, passName: "pass1"}
	}
	if ranked[0].Score >= o.thresholds.Accept {
		m := ranked[0]
		return passOutcome{match: &m, passName: "pass1"}
	}
	return passOutcome{passName: "pass1"}
}

// runPass2 substitutes the seat college name through the alias table
// (longest-match-wins) then reruns Pass 1 logic (§4.7 Pass 2).
func (o *Orchestrator) runPass2(req model.MatchRequest) passOutcome {
	resolved, rule, ok := o.aliases.Resolve(req.College)
	if !ok {
		return passOutcome{passName: "pass2"}
	}
	aliasedReq := req
	aliasedReq.College = resolved

	out := o.runPass1(aliasedReq)
	out.passName = "pass2"
	out.aliasRule = rule
	return out
}

// runPass3 requires a PIN/area code in the address, or >= 2 shared
// location keywords with a candidate's master address — the guard
// ultra-generic names need (§4.7 Pass 3).
func (o *Orchestrator) runPass3(req model.MatchRequest) passOutcome {
	candidates := o.gen.Generate(req)
	if len(candidates) == 0 {
		return passOutcome{passName: "pass3"}
	}

	codes := normalize.ExtractSixDigitCodes(req.Address)
	seatTokens := normalize.Tokenize(normalize.NormalizeForExact(req.Address))

	var guarded []model.Candidate
	for _, c := range candidates {
		if len(codes) > 0 && c.College.Pincode != "" && contains(codes, c.College.Pincode) {
			guarded = append(guarded, c)
			continue
		}
		shared := 0
		for kw := range c.College.LocationKeywords {
			if _, ok := seatTokens[kw]; ok {
				shared++
			}
		}
		if shared >= 2 {
			guarded = append(guarded, c)
		}
	}
	if len(guarded) == 0 {
		return passOutcome{passName: "pass3"}
	}

	ranked := scoreAndRank(o.scorer, req, guarded)
	if ambiguousTop(ranked, o.thresholds.Accept) {
		return passOutcome{ambiguous: true, passName: "pass3"}
	}
	if ranked[0].Score >= o.thresholds.Accept {
		m := ranked[0]
		return passOutcome{match: &m, passName: "pass3"}
	}
	return passOutcome{passName: "pass3"}
}

// runPass4 accepts a candidate scoring in [0.75, accept) when its phonetic
// similarity is at least thresholds.Pass4Phonetic and it is the unique survivor in its
// state+stream pool after the address guard; never fires for
// ultra-generic names (§4.7 Pass 4).
func (o *Orchestrator) runPass4(req model.MatchRequest) passOutcome {
	normalizedCollege := normalize.Normalize(req.College)
	if candidate.IsUltraGeneric(normalizedCollege) {
		return passOutcome{passName: "pass4"}
	}

	candidates := o.gen.Generate(req)
	if len(candidates) == 0 {
		return passOutcome{passName: "pass4"}
	}
	ranked := scoreAndRank(o.scorer, req, candidates)

	var survivors []model.ScoredMatch
	for _, m := range ranked {
		phon := normalize.PhoneticSimilarity(normalizedCollege, m.Candidate.College.NormalizedName)
		if phon >= o.thresholds.Pass4Phonetic && m.Score >= 0.75 && m.Score < o.thresholds.Accept {
			survivors = append(survivors, m)
		}
	}
	if len(survivors) != 1 {
		return passOutcome{passName: "pass4"}
	}
	m := survivors[0]
	return passOutcome{match: &m, passName: "pass4"}
}

func contains(codes []string, v string) bool {
	for _, c := range codes {
		if c == v {
			return true
		}
	}
	return false
}

// levenshteinInt is the raw edit distance used for tie-break ordering
// (§4.7); scorer's name_score term wants a normalized ratio instead, so
// it isn't reused directly here.
func levenshteinInt(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}
