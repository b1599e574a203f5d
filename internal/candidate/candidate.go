// Package candidate implements CandidateGenerator (§4.5): it produces a
// bounded, ordered candidate list for a normalized MatchRequest,
// respecting state and stream filters and the ultra-generic-name guard.
package candidate

import (
	"sort"
	"strings"

	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/normalize"
	"github.com/sbvh/collegematch/internal/statealias"
)

// DefaultK is the default bound on a generated candidate list (§4.5).
const DefaultK = 25

// Generator produces candidates for a MatchRequest.
type Generator struct {
	index   Index
	states  *statealias.Aliaser
	streams *coursestream.Mapper
	k       int

	// AcceptThreshold returns the prescore an early-exit requires for a
	// given stream, per §4.5 step 2 ("attempt generation; return as soon
	// as a stream yields any candidate whose prescore >= accept_threshold").
	AcceptThreshold func(stream coursestream.Stream) float64
}

// New returns a Generator bounded to k candidates (DefaultK if k <= 0).
func New(index Index, states *statealias.Aliaser, streams *coursestream.Mapper, k int) *Generator {
	if k <= 0 {
		k = DefaultK
	}
	return &Generator{
		index:           index,
		states:          states,
		streams:         streams,
		k:               k,
		AcceptThreshold: func(coursestream.Stream) float64 { return 0.9 },
	}
}

// Generate implements the full §4.5 algorithm.
func (g *Generator) Generate(req model.MatchRequest) []model.Candidate {
	canonicalState, stateResolved := g.states.Canonicalize(req.State)
	statePenalty := 0.0
	if !stateResolved {
		statePenalty = -0.1
	}

	streams := g.streams.StreamsFor(req.Course)

	for _, stream := range streams {
		candidates := g.generateForStream(req, canonicalState, stream, statePenalty)
		if len(candidates) == 0 {
			continue
		}
		best := candidates[0].Prescore
		for _, c := range candidates[1:] {
			if c.Prescore > best {
				best = c.Prescore
			}
		}
		if best >= g.AcceptThreshold(stream) {
			return candidates
		}
		// Keep searching lower-priority streams only if this one produced
		// nothing strong enough; but still return what we have if it's the
		// last stream in priority order.
		if stream == streams[len(streams)-1] {
			return candidates
		}
	}
	return nil
}

func (g *Generator) generateForStream(req model.MatchRequest, canonicalState string, stream coursestream.Stream, statePenalty float64) []model.Candidate {
	var out []model.Candidate
	seen := make(map[model.CollegeID]bool)

	add := func(college *model.MasterCollege, provenance model.CandidateProvenance, prescore float64) bool {
		if seen[college.ID] {
			return false
		}
		seen[college.ID] = true
		out = append(out, model.Candidate{College: college, Provenance: provenance, Prescore: prescore + statePenalty})
		return len(out) >= g.k
	}

	normalizedCollege := normalize.Normalize(req.College)
	ultraGeneric := IsUltraGeneric(normalizedCollege)

	// a. Composite-key exact lookup.
	compositeKey := normalize.CompositeKey(req.College, req.Address)
	if college, ok := g.index.LookupCompositeKey(compositeKey); ok && collegeMatchesStateStream(college, canonicalState, stream) {
		if add(college, model.ProvenanceCompositeExact, 1.0) {
			return out
		}
	}

	// Ultra-generic guard: generators b-e require a shared location keyword.
	if ultraGeneric && !hasSharedLocationKeyword(req, g.index, canonicalState, stream) {
		return out
	}

	// b. Code-in-address lookup.
	for _, code := range normalize.ExtractSixDigitCodes(req.Address) {
		for _, college := range g.index.LookupCodeInAddress(code) {
			if !collegeMatchesStateStream(college, canonicalState, stream) {
				continue
			}
			if add(college, model.ProvenanceCodeInAddress, 0.95) {
				return out
			}
		}
	}

	// c. Exact normalized name within state+stream pool.
	statePool := make(map[model.CollegeID]bool)
	for _, college := range g.index.StatePool(canonicalState, stream) {
		statePool[college.ID] = true
	}
	for _, college := range g.index.LookupNormalizedName(normalizedCollege) {
		if !statePool[college.ID] {
			continue
		}
		if add(college, model.ProvenanceExactName, 0.9) {
			return out
		}
	}

	// d. FTS intersection, restricted to state+stream pool, top K.
	hits, _ := g.index.SearchFTS(normalizedCollege, g.k)
	for _, hit := range hits {
		if !statePool[hit.College.ID] {
			continue
		}
		prescore := 0.5 + 0.4*normalizeWeight(hit.WeightedScore)
		if add(hit.College, model.ProvenanceFTS, prescore) {
			return out
		}
	}

	// e. Phonetic bucket, restricted to state+stream pool.
	for _, tok := range normalize.PhoneticKeys(normalizedCollege) {
		for _, college := range g.index.LookupPhoneticBucket(tok) {
			if !statePool[college.ID] {
				continue
			}
			if add(college, model.ProvenancePhonetic, 0.4) {
				return out
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Prescore > out[j].Prescore })
	return out
}

// normalizeWeight squashes an unbounded idf-weighted score into [0,1] for
// blending into the [0.5,0.9] FTS prescore band (§4.5.3d).
func normalizeWeight(w float64) float64 {
	if w <= 0 {
		return 0
	}
	v := w / (w + 3)
	if v > 1 {
		return 1
	}
	return v
}

func collegeMatchesStateStream(college *model.MasterCollege, canonicalState string, stream coursestream.Stream) bool {
	if canonicalState != "" && !strings.EqualFold(college.StateName, canonicalState) {
		return false
	}
	return college.Stream == stream
}

// hasSharedLocationKeyword implements the ultra-generic guard condition:
// at least one location keyword from a master address in the candidate
// pool also appears in the seat address.
func hasSharedLocationKeyword(req model.MatchRequest, index Index, canonicalState string, stream coursestream.Stream) bool {
	seatTokens := normalize.Tokenize(normalize.NormalizeForExact(req.Address))
	if len(seatTokens) == 0 {
		return false
	}
	for _, college := range index.StatePool(canonicalState, stream) {
		for kw := range college.LocationKeywords {
			if _, ok := seatTokens[kw]; ok {
				return true
			}
		}
	}
	return false
}
