package masterindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/normalize"
)

func sampleColleges() []*model.MasterCollege {
	mk := func(id int64, name, address, state string, stream coursestream.Stream, pin string) *model.MasterCollege {
		return &model.MasterCollege{
			ID:                model.CollegeID(id),
			Name:              name,
			Address:           address,
			StateName:         state,
			Stream:            stream,
			NormalizedName:    normalize.Normalize(name),
			NormalizedAddress: normalize.NormalizeForExact(address),
			CompositeKey:      normalize.CompositeKey(name, address),
			Pincode:           pin,
		}
	}
	return []*model.MasterCollege{
		mk(1, "Government Medical College", "Thiruvananthapuram", "KERALA", coursestream.Medical, "695011"),
		mk(2, "Government Medical College", "Kozhikode", "KERALA", coursestream.Medical, "673008"),
		mk(3, "Area Hospital", "Adoni 518301", "ANDHRA PRADESH", coursestream.DNB, "518301"),
	}
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Build(sampleColleges(), nil, nil, "test-hash")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestCompositeKeyLookup(t *testing.T) {
	idx := buildTestIndex(t)
	key := normalize.CompositeKey("Government Medical College", "Thiruvananthapuram")
	college, ok := idx.LookupCompositeKey(key)
	require.True(t, ok)
	assert.Equal(t, model.CollegeID(1), college.ID)
}

func TestNormalizedNameListsEveryCollegeWithThatName(t *testing.T) {
	idx := buildTestIndex(t)
	matches := idx.LookupNormalizedName(normalize.Normalize("Government Medical College"))
	assert.Len(t, matches, 2)
}

func TestStatePoolRestrictsToStreamAndState(t *testing.T) {
	idx := buildTestIndex(t)
	pool := idx.StatePool("KERALA", coursestream.Medical)
	assert.Len(t, pool, 2)
	assert.Empty(t, idx.StatePool("KERALA", coursestream.Dental))
}

func TestCodeInAddressIndex(t *testing.T) {
	idx := buildTestIndex(t)
	matches := idx.LookupCodeInAddress("518301")
	require.Len(t, matches, 1)
	assert.Equal(t, model.CollegeID(3), matches[0].ID)
}

func TestSearchFTSRanksByTokenOverlap(t *testing.T) {
	idx := buildTestIndex(t)
	results, err := idx.SearchFTS("MEDICAL COLLEGE GOVERNMENT", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}
