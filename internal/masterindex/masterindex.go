// Package masterindex builds and holds every lookup structure over the
// master catalogue (§4.4). All structures are rebuilt atomically whenever
// CacheLayer detects a new master_version_hash, and are read-only
// afterwards — the immutability is what lets CandidateGenerator share one
// Index across all pipeline workers without locking.
package masterindex

import (
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"

	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/matcherr"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/normalize"
)

// streamPool is the per-(state,stream) view of the catalogue.
type streamPool struct {
	colleges []*model.MasterCollege
}

// Index holds every structure of §4.4, keyed by stream where the spec
// calls for per-stream structures.
type Index struct {
	colleges []*model.MasterCollege
	courses  []*model.MasterCourse
	states   []*model.MasterState

	compositeKey   map[string]*model.MasterCollege
	normalizedName map[string][]*model.MasterCollege
	statePool      map[statePoolKey]*streamPool
	codeInAddress  map[string][]*model.MasterCollege
	phoneticBucket map[string][]*model.MasterCollege

	fts       bleve.Index
	ftsDocIDs map[string]*model.MasterCollege

	idf map[string]float64 // per-token inverse document frequency, across all colleges

	versionHash string
}

type statePoolKey struct {
	state  string
	stream coursestream.Stream
}

// Build constructs an Index from a master snapshot. Called once per
// import (or whenever CacheLayer detects master_version_hash drift).
func Build(colleges []*model.MasterCollege, courses []*model.MasterCourse, states []*model.MasterState, versionHash string) (*Index, error) {
	idx := &Index{
		colleges:       colleges,
		courses:        courses,
		states:         states,
		compositeKey:   make(map[string]*model.MasterCollege, len(colleges)),
		normalizedName: make(map[string][]*model.MasterCollege),
		statePool:      make(map[statePoolKey]*streamPool),
		codeInAddress:  make(map[string][]*model.MasterCollege),
		phoneticBucket: make(map[string][]*model.MasterCollege),
		ftsDocIDs:      make(map[string]*model.MasterCollege),
		versionHash:    versionHash,
	}

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = "standard"
	indexMapping.DefaultMapping.AddFieldMappingsAt("Name", textField)
	fts, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, matcherr.Wrap(err, "build in-memory FTS index")
	}
	idx.fts = fts

	docFreq := make(map[string]int)

	for _, c := range colleges {
		idx.compositeKey[c.CompositeKey] = c
		idx.normalizedName[c.NormalizedName] = append(idx.normalizedName[c.NormalizedName], c)

		key := statePoolKey{state: c.StateName, stream: c.Stream}
		pool := idx.statePool[key]
		if pool == nil {
			pool = &streamPool{}
			idx.statePool[key] = pool
		}
		pool.colleges = append(pool.colleges, c)

		codeSeen := make(map[string]struct{})
		for _, code := range append(normalize.ExtractSixDigitCodes(c.Address), c.Pincode) {
			if code == "" {
				continue
			}
			if _, dup := codeSeen[code]; dup {
				continue
			}
			codeSeen[code] = struct{}{}
			idx.codeInAddress[code] = append(idx.codeInAddress[code], c)
		}

		seen := make(map[string]struct{})
		for _, tok := range normalize.PhoneticKeys(c.NormalizedName) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			idx.phoneticBucket[tok] = append(idx.phoneticBucket[tok], c)
		}

		docID := docIDFor(c.ID)
		idx.ftsDocIDs[docID] = c
		if err := fts.Index(docID, struct{ Name string }{Name: c.NormalizedName}); err != nil {
			return nil, matcherr.Wrapf(err, "index college %d into FTS", c.ID)
		}

		tokenSeen := make(map[string]struct{})
		for tok := range normalize.Tokenize(c.NormalizedName) {
			if _, dup := tokenSeen[tok]; dup {
				continue
			}
			tokenSeen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	idx.idf = make(map[string]float64, len(docFreq))
	n := float64(len(colleges))
	if n > 0 {
		for tok, df := range docFreq {
			idx.idf[tok] = idfScore(n, float64(df))
		}
	}

	return idx, nil
}

func idfScore(n, df float64) float64 {
	if df <= 0 {
		return 0
	}
	// Smoothed idf approximating log10(N/df) + 1: one log10(2) step per
	// halving of N/df, rounded up; never below 1.
	ratio := n / df
	score := 1.0
	for ratio > 1 {
		score += 0.30103 // log10(2) per halving, close enough for ranking purposes
		ratio /= 2
	}
	return score
}

func docIDFor(id model.CollegeID) string {
	return strconv.FormatInt(int64(id), 10)
}

// VersionHash reports the master_version_hash this Index was built from.
func (idx *Index) VersionHash() string { return idx.versionHash }

// CollegeCount reports how many colleges this Index was built over, for
// CLI/log summaries after a reindex.
func (idx *Index) CollegeCount() int { return len(idx.colleges) }

// LookupCompositeKey implements CompositeKeyMap (§4.4.1).
func (idx *Index) LookupCompositeKey(key string) (*model.MasterCollege, bool) {
	c, ok := idx.compositeKey[key]
	return c, ok
}

// LookupNormalizedName implements NormalizedNameMap (§4.4.2).
func (idx *Index) LookupNormalizedName(name string) []*model.MasterCollege {
	return idx.normalizedName[name]
}

// StatePool implements StatePool (§4.4.4): all colleges for a canonical
// state + stream.
func (idx *Index) StatePool(state string, stream coursestream.Stream) []*model.MasterCollege {
	pool := idx.statePool[statePoolKey{state: state, stream: stream}]
	if pool == nil {
		return nil
	}
	return pool.colleges
}

// LookupCodeInAddress implements CodeInAddressIndex (§4.4.5).
func (idx *Index) LookupCodeInAddress(code string) []*model.MasterCollege {
	return idx.codeInAddress[code]
}

// LookupPhoneticBucket implements PhoneticBuckets (§4.4.7).
func (idx *Index) LookupPhoneticBucket(phoneticKey string) []*model.MasterCollege {
	return idx.phoneticBucket[phoneticKey]
}

// IDF returns the inverse document frequency of a token across all
// college names, or 0 if the token never occurs.
func (idx *Index) IDF(token string) float64 {
	return idx.idf[token]
}

// FTSResult is one ranked hit from SearchFTS.
type FTSResult struct {
	College        *model.MasterCollege
	MatchedTokens  int
	WeightedScore  float64
}

// SearchFTS implements the FTSKeywordIndex intersection query (§4.4.3,
// §4.5.3d): tokenize the query, retrieve postings via bleve, and rank by
// count of intersected tokens weighted by idf.
func (idx *Index) SearchFTS(query string, limit int) ([]FTSResult, error) {
	tokens := normalize.Tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	var disjuncts []bleve.Query
	for tok := range tokens {
		q := bleve.NewMatchQuery(tok)
		q.SetField("Name")
		disjuncts = append(disjuncts, q)
	}
	search := bleve.NewDisjunctionQuery(disjuncts...)
	req := bleve.NewSearchRequest(search)
	req.Size = limit * 4 // overfetch, then re-rank by our own weighting below
	if req.Size < 50 {
		req.Size = 50
	}

	res, err := idx.fts.Search(req)
	if err != nil {
		return nil, matcherr.Wrap(err, "FTS search")
	}

	out := make([]FTSResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		college, ok := idx.ftsDocIDs[hit.ID]
		if !ok {
			continue
		}
		collegeTokens := normalize.Tokenize(college.NormalizedName)
		matched := 0
		weighted := 0.0
		for tok := range tokens {
			if _, ok := collegeTokens[tok]; ok {
				matched++
				weighted += idx.IDF(tok)
			}
		}
		if matched == 0 {
			continue
		}
		out = append(out, FTSResult{College: college, MatchedTokens: matched, WeightedScore: weighted})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WeightedScore != out[j].WeightedScore {
			return out[i].WeightedScore > out[j].WeightedScore
		}
		return out[i].MatchedTokens > out[j].MatchedTokens
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close releases the in-memory FTS index.
func (idx *Index) Close() error {
	if idx.fts == nil {
		return nil
	}
	return idx.fts.Close()
}
