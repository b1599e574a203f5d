package candidate

import (
	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/masterindex"
	"github.com/sbvh/collegematch/internal/model"
)

// FTSHit is the candidate package's own view of a ranked FTS result —
// kept separate from masterindex.FTSResult so CandidateGenerator depends
// on a small contract rather than the concrete index implementation. A
// future CGO- or remote-backed search engine only needs to satisfy Index,
// not reimplement masterindex.
type FTSHit struct {
	College       *model.MasterCollege
	MatchedTokens int
	WeightedScore float64
}

// Index is the exact lookup surface CandidateGenerator needs from
// MasterIndex (§4.4). Mirrors the teacher's CGO-wrapper-behind-interface
// seam (fuzzy-ax's FuzzyEngine): a pure-Go implementation today,
// swappable later without touching CandidateGenerator.
type Index interface {
	LookupCompositeKey(key string) (*model.MasterCollege, bool)
	LookupNormalizedName(name string) []*model.MasterCollege
	StatePool(state string, stream coursestream.Stream) []*model.MasterCollege
	LookupCodeInAddress(code string) []*model.MasterCollege
	LookupPhoneticBucket(phoneticKey string) []*model.MasterCollege
	SearchFTS(query string, limit int) ([]FTSHit, error)
}

// IndexAdapter wraps a *masterindex.Index to satisfy Index.
type IndexAdapter struct {
	Inner *masterindex.Index
}

func (a IndexAdapter) LookupCompositeKey(key string) (*model.MasterCollege, bool) {
	return a.Inner.LookupCompositeKey(key)
}

func (a IndexAdapter) LookupNormalizedName(name string) []*model.MasterCollege {
	return a.Inner.LookupNormalizedName(name)
}

func (a IndexAdapter) StatePool(state string, stream coursestream.Stream) []*model.MasterCollege {
	return a.Inner.StatePool(state, stream)
}

func (a IndexAdapter) LookupCodeInAddress(code string) []*model.MasterCollege {
	return a.Inner.LookupCodeInAddress(code)
}

func (a IndexAdapter) LookupPhoneticBucket(phoneticKey string) []*model.MasterCollege {
	return a.Inner.LookupPhoneticBucket(phoneticKey)
}

func (a IndexAdapter) SearchFTS(query string, limit int) ([]FTSHit, error) {
	results, err := a.Inner.SearchFTS(query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]FTSHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, FTSHit{College: r.College, MatchedTokens: r.MatchedTokens, WeightedScore: r.WeightedScore})
	}
	return hits, nil
}
