package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/aliastable"
	"github.com/sbvh/collegematch/internal/candidate"
	"github.com/sbvh/collegematch/internal/config"
	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/scorer"
	"github.com/sbvh/collegematch/internal/statealias"
)

type fakeIndex struct {
	composite map[string]*model.MasterCollege
	byName    map[string][]*model.MasterCollege
	byState   map[string][]*model.MasterCollege
	byCode    map[string][]*model.MasterCollege
}

func (f *fakeIndex) LookupCompositeKey(key string) (*model.MasterCollege, bool) {
	c, ok := f.composite[key]
	return c, ok
}
func (f *fakeIndex) LookupNormalizedName(name string) []*model.MasterCollege { return f.byName[name] }
func (f *fakeIndex) StatePool(state string, stream coursestream.Stream) []*model.MasterCollege {
	return f.byState[state+"|"+string(stream)]
}
func (f *fakeIndex) LookupCodeInAddress(code string) []*model.MasterCollege { return f.byCode[code] }
func (f *fakeIndex) LookupPhoneticBucket(string) []*model.MasterCollege    { return nil }
func (f *fakeIndex) SearchFTS(string, int) ([]candidate.FTSHit, error)     { return nil, nil }

type fakeStore struct {
	groups   []model.GroupEntry
	updates  []model.GroupMatchUpdate
	reviews  []model.ReviewEntry
}

func (f *fakeStore) Groups() ([]model.GroupEntry, error) { return f.groups, nil }
func (f *fakeStore) FetchGroup(key model.GroupKey) (model.GroupEntry, error) {
	for _, g := range f.groups {
		if g.Key == key {
			return g, nil
		}
	}
	return model.GroupEntry{}, nil
}
func (f *fakeStore) UpdateGroupMatch(u model.GroupMatchUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}
func (f *fakeStore) QueueForReview(e model.ReviewEntry) error {
	f.reviews = append(f.reviews, e)
	return nil
}

type fakeCourseResolver struct{}

func (fakeCourseResolver) ResolveCourse(string, coursestream.Stream) (model.CourseID, bool) {
	return 1, true
}

type fakeStateResolver struct{ id model.StateID }

func (f fakeStateResolver) ResolveState(string) (model.StateID, bool) { return f.id, true }

func defaultWeights() config.WeightsConfig {
	return config.WeightsConfig{Name: 0.50, Address: 0.15, Pincode: 0.20, NER: 0.10, Prescore: 0.05}
}

func defaultThresholds() config.ThresholdsConfig {
	return config.ThresholdsConfig{Accept: 0.85, UltraGenericAddress: 0.75, Pass4Phonetic: 0.70, LLMReviewBelow: 0.95}
}

func newTestOrchestrator(idx *fakeIndex, store *fakeStore) *Orchestrator {
	states := statealias.New()
	streams := coursestream.New()
	gen := candidate.New(idx, states, streams, 0)
	sc := scorer.New(defaultWeights(), nil, states)
	aliases := aliastable.New(model.AliasCollege)
	return New(store, gen, sc, aliases, states, streams, fakeCourseResolver{}, fakeStateResolver{id: 1}, nil, defaultThresholds(), zap.NewNop().Sugar())
}

func TestProcessGroupCommitsOnExactMatch(t *testing.T) {
	college := &model.MasterCollege{
		ID: 1, StateName: "KERALA", Stream: coursestream.Medical,
		NormalizedName: "GOVERNMENT MEDICAL COLLEGE",
	}
	key := model.GroupKey{NormalizedState: "KERALA", NormalizedCollege: "GOVERNMENT MEDICAL COLLEGE", NormalizedAddress: "TRIVANDRUM", CourseType: "MBBS"}
	idx := &fakeIndex{
		composite: map[string]*model.MasterCollege{"GOVERNMENT MEDICAL COLLEGE, TRIVANDRUM": college},
		byState:   map[string][]*model.MasterCollege{"KERALA|MEDICAL": {college}},
	}
	store := &fakeStore{groups: []model.GroupEntry{{Key: key, RowIDs: []string{"r1"}}}}
	orch := newTestOrchestrator(idx, store)

	stats, err := orch.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Committed)
	require.Len(t, store.updates, 1)
	require.NotNil(t, store.updates[0].CollegeID)
	assert.Equal(t, model.CollegeID(1), *store.updates[0].CollegeID)
}

func TestProcessGroupCommitsOnAliasedStateMatch(t *testing.T) {
	college := &model.MasterCollege{
		ID: 1, StateName: "KERALA", Stream: coursestream.Medical,
		NormalizedName: "GOVERNMENT MEDICAL COLLEGE",
	}
	key := model.GroupKey{NormalizedState: "KL", NormalizedCollege: "GOVERNMENT MEDICAL COLLEGE", NormalizedAddress: "TRIVANDRUM", CourseType: "MBBS"}
	idx := &fakeIndex{
		composite: map[string]*model.MasterCollege{"GOVERNMENT MEDICAL COLLEGE, TRIVANDRUM": college},
		byState:   map[string][]*model.MasterCollege{"KERALA|MEDICAL": {college}},
	}
	store := &fakeStore{groups: []model.GroupEntry{{Key: key, RowIDs: []string{"r1"}}}}
	orch := newTestOrchestrator(idx, store)

	stats, err := orch.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Committed)
}

func TestProcessGroupQueuesForReviewWhenNoPassAccepts(t *testing.T) {
	key := model.GroupKey{NormalizedState: "KERALA", NormalizedCollege: "SOME UNKNOWN PLACE", NormalizedAddress: "NOWHERE", CourseType: "MBBS"}
	idx := &fakeIndex{}
	store := &fakeStore{groups: []model.GroupEntry{{Key: key, RowIDs: []string{"r1"}}}}
	orch := newTestOrchestrator(idx, store)

	stats, err := orch.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.QueuedForReview)
	assert.Len(t, store.reviews, 1)
}

func TestProcessGroupRoutesAmbiguousMatchesToReview(t *testing.T) {
	a := &model.MasterCollege{ID: 1, StateName: "KERALA", Stream: coursestream.Medical, NormalizedName: "GOVERNMENT MEDICAL COLLEGE A"}
	b := &model.MasterCollege{ID: 2, StateName: "KERALA", Stream: coursestream.Medical, NormalizedName: "GOVERNMENT MEDICAL COLLEGE B"}
	key := model.GroupKey{NormalizedState: "KERALA", NormalizedCollege: "GOVERNMENT MEDICAL COLLEGE", NormalizedAddress: "", CourseType: "MBBS"}
	idx := &fakeIndex{
		byName:  map[string][]*model.MasterCollege{"GOVERNMENT MEDICAL COLLEGE": {a, b}},
		byState: map[string][]*model.MasterCollege{"KERALA|MEDICAL": {a, b}},
	}
	store := &fakeStore{groups: []model.GroupEntry{{Key: key, RowIDs: []string{"r1"}}}}
	orch := newTestOrchestrator(idx, store)

	stats, err := orch.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.QueuedForReview)
}
