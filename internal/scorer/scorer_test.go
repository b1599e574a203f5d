package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbvh/collegematch/internal/config"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/normalize"
	"github.com/sbvh/collegematch/internal/statealias"
)

func defaultWeights() config.WeightsConfig {
	return config.WeightsConfig{Name: 0.50, Address: 0.15, Pincode: 0.20, NER: 0.10, Prescore: 0.05}
}

func TestScoreStateMismatchHardRejects(t *testing.T) {
	s := New(defaultWeights(), nil, statealias.New())
	college := &model.MasterCollege{StateName: "KERALA", NormalizedName: "GOVERNMENT MEDICAL COLLEGE"}
	req := model.MatchRequest{College: "Government Medical College", State: "TAMIL NADU"}
	cand := model.Candidate{College: college, Prescore: 1.0}

	out := s.Score(req, cand)
	assert.Equal(t, 0.0, out.Score)
	assert.True(t, out.Components.StateMismatch)
	assert.Equal(t, "state_mismatch_reject", out.Method)
}

func TestScoreCanonicalizesAliasedStateBeforeRejecting(t *testing.T) {
	s := New(defaultWeights(), nil, statealias.New())
	college := &model.MasterCollege{StateName: "KERALA", NormalizedName: "GOVERNMENT MEDICAL COLLEGE"}
	req := model.MatchRequest{College: "Government Medical College", State: "KL"}
	cand := model.Candidate{College: college, Prescore: 1.0}

	out := s.Score(req, cand)
	assert.False(t, out.Components.StateMismatch)
	assert.NotEqual(t, "state_mismatch_reject", out.Method)
}

func TestScoreDoesNotHardRejectOnUnresolvedState(t *testing.T) {
	s := New(defaultWeights(), nil, statealias.New())
	college := &model.MasterCollege{StateName: "KERALA", NormalizedName: "GOVERNMENT MEDICAL COLLEGE"}
	req := model.MatchRequest{College: "Government Medical College", State: "NOWHERESTAN"}
	cand := model.Candidate{College: college, Prescore: 1.0}

	out := s.Score(req, cand)
	assert.False(t, out.Components.StateMismatch)
	assert.NotEqual(t, "state_mismatch_reject", out.Method)
}

func TestScoreUltraGenericRequiresHighAddressOverlap(t *testing.T) {
	s := New(defaultWeights(), nil, statealias.New())
	college := &model.MasterCollege{
		StateName: "ANDHRA PRADESH", NormalizedName: "AREA HOSPITAL",
		NormalizedAddress: normalize.NormalizeForExact("Adoni Kurnool District"),
	}
	req := model.MatchRequest{College: "Area Hospital", State: "Andhra Pradesh", Address: "Some Unrelated Town"}
	cand := model.Candidate{College: college, Prescore: 0.4}

	out := s.Score(req, cand)
	assert.Equal(t, 0.0, out.Score)
	assert.Equal(t, "address_threshold_reject", out.Method)
}

func TestScoreExactNameMatchScoresHigh(t *testing.T) {
	s := New(defaultWeights(), nil, statealias.New())
	college := &model.MasterCollege{
		StateName: "KERALA", NormalizedName: "GOVERNMENT MEDICAL COLLEGE",
		NormalizedAddress: normalize.NormalizeForExact("Thiruvananthapuram"),
		Pincode:           "695011",
		LocationKeywords:  map[string]struct{}{"THIRUVANANTHAPURAM": {}},
	}
	req := model.MatchRequest{
		College: "Government Medical College", State: "Kerala",
		Address: "Thiruvananthapuram 695011", Course: "MBBS",
	}
	cand := model.Candidate{College: college, Provenance: model.ProvenanceExactName, Prescore: 0.9}

	out := s.Score(req, cand)
	require.Greater(t, out.Score, 0.8)
	assert.Equal(t, 1.0, out.Components.NameScore)
	assert.Equal(t, 0.25, out.Components.PincodeBoost)
	assert.Contains(t, out.Method, "exact_name")
}

func TestScoreMissingAddressRedistributesWeight(t *testing.T) {
	s := New(defaultWeights(), nil, statealias.New())
	college := &model.MasterCollege{StateName: "KERALA", NormalizedName: "GOVERNMENT MEDICAL COLLEGE"}
	req := model.MatchRequest{College: "Government Medical College", State: "Kerala"}
	cand := model.Candidate{College: college, Provenance: model.ProvenanceExactName, Prescore: 0.9}

	out := s.Score(req, cand)
	require.Greater(t, out.Score, 0.0)
	assert.Equal(t, 0.0, out.Components.AddressScore)
}

func TestPincodeBoostRules(t *testing.T) {
	assert.Equal(t, 0.25, pincodeBoost("695011", "695011"))
	assert.Equal(t, 0.10, pincodeBoost("695011", "695014"))
	assert.Equal(t, -0.10, pincodeBoost("695011", "110001"))
	assert.Equal(t, 0.0, pincodeBoost("", "695011"))
}

func TestNameScoreTakesMaxOfSignals(t *testing.T) {
	a := normalize.Normalize("Govt Medical College")
	b := normalize.Normalize("Government Medical College")
	score := nameScore(a, b, nil)
	assert.Greater(t, score, 0.7)
}
