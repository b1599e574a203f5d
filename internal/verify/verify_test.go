package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbvh/collegematch/internal/config"
	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/llmconsensus"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/statealias"
)

func thresholds() config.ThresholdsConfig {
	return config.ThresholdsConfig{Accept: 0.85, UltraGenericAddress: 0.75, Pass4Phonetic: 0.70, LLMReviewBelow: 0.95}
}

func TestGuardianRejectsStateMismatch(t *testing.T) {
	g := NewGuardian(coursestream.New(), statealias.New())
	req := model.MatchRequest{College: "X", State: "KERALA", Course: "MBBS"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{StateName: "GUJARAT", Stream: coursestream.Medical}},
		Score:     0.9,
		Components: model.ScoreBreakdown{NameScore: 0.9},
	}

	result := g.Check(req, match)
	assert.False(t, result.Approved)
	assert.Equal(t, "state_mismatch", result.Reason)
}

func TestGuardianCanonicalizesAliasedStateBeforeComparing(t *testing.T) {
	g := NewGuardian(coursestream.New(), statealias.New())
	req := model.MatchRequest{College: "X", State: "ORISSA", Course: "MBBS"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{StateName: "ODISHA", Stream: coursestream.Medical}},
		Score:     0.9,
		Components: model.ScoreBreakdown{NameScore: 0.9},
	}

	result := g.Check(req, match)
	assert.True(t, result.Approved)
}

func TestGuardianDoesNotHardRejectOnUnresolvedState(t *testing.T) {
	g := NewGuardian(coursestream.New(), statealias.New())
	req := model.MatchRequest{College: "X", State: "NOWHERESTAN", Course: "MBBS"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{StateName: "KERALA", Stream: coursestream.Medical}},
		Score:     0.9,
		Components: model.ScoreBreakdown{NameScore: 0.9},
	}

	result := g.Check(req, match)
	assert.NotEqual(t, "state_mismatch", result.Reason)
}

func TestGuardianRejectsStreamMismatch(t *testing.T) {
	g := NewGuardian(coursestream.New(), statealias.New())
	req := model.MatchRequest{College: "X", State: "KERALA", Course: "BDS"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{StateName: "KERALA", Stream: coursestream.Medical}},
		Score:     0.9,
		Components: model.ScoreBreakdown{NameScore: 0.9},
	}

	result := g.Check(req, match)
	assert.False(t, result.Approved)
	assert.Equal(t, "stream_incompatible", result.Reason)
}

func TestGuardianRejectsUltraGenericWithoutSharedKeyword(t *testing.T) {
	g := NewGuardian(coursestream.New(), statealias.New())
	req := model.MatchRequest{College: "District Hospital", State: "KERALA", Course: "MBBS", Address: "Kozhikode"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{
			StateName: "KERALA", Stream: coursestream.Medical,
			LocationKeywords: map[string]struct{}{"WAYANAD": {}},
		}},
		Score:      0.9,
		Components: model.ScoreBreakdown{NameScore: 0.9, AddressScore: 0.8},
	}

	result := g.Check(req, match)
	assert.False(t, result.Approved)
	assert.Equal(t, "ultra_generic_no_shared_keyword", result.Reason)
}

func TestGuardianApprovesCompositeExactDespiteLowNameScore(t *testing.T) {
	g := NewGuardian(coursestream.New(), statealias.New())
	req := model.MatchRequest{College: "X", State: "KERALA", Course: "MBBS"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{StateName: "KERALA", Stream: coursestream.Medical}},
		Score:     0.9,
		Method:    "composite_exact+name",
		Components: model.ScoreBreakdown{NameScore: 0.5},
	}

	result := g.Check(req, match)
	assert.True(t, result.Approved)
}

type stubProvider struct {
	id      string
	verdict llmconsensus.Verdict
}

func (s stubProvider) ID() string { return s.id }
func (s stubProvider) Verify(ctx context.Context, fields llmconsensus.PromptFields) (llmconsensus.Verdict, string, error) {
	return s.verdict, "", nil
}

func TestVerifySkipsStageBAboveReviewGate(t *testing.T) {
	v := New(NewGuardian(coursestream.New(), statealias.New()), nil, thresholds(), true)
	req := model.MatchRequest{College: "X", State: "KERALA", Course: "MBBS"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{StateName: "KERALA", Stream: coursestream.Medical, ID: 1}},
		Score:     0.97,
		Components: model.ScoreBreakdown{NameScore: 0.95},
	}

	decision := v.Verify(context.Background(), model.GroupKey{}, req, match)
	assert.True(t, decision.Approved)
	assert.True(t, decision.Verified)
	assert.Equal(t, "stage_a", decision.Stage)
}

func TestVerifyEscalatesToStageBBelowReviewGate(t *testing.T) {
	providers := []llmconsensus.Provider{
		stubProvider{"a", llmconsensus.VerdictApprove},
		stubProvider{"b", llmconsensus.VerdictApprove},
		stubProvider{"c", llmconsensus.VerdictApprove},
	}
	engine := llmconsensus.NewEngine(providers, llmconsensus.Config{Enabled: true, TimeoutSoft: time.Second, TimeoutHard: 2 * time.Second}, llmconsensus.NewCache(nil, "v1", nil))
	v := New(NewGuardian(coursestream.New(), statealias.New()), engine, thresholds(), true)

	req := model.MatchRequest{College: "X", State: "KERALA", Course: "MBBS"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{StateName: "KERALA", Stream: coursestream.Medical, ID: 1}},
		Score:     0.85,
		Components: model.ScoreBreakdown{NameScore: 0.9},
	}

	decision := v.Verify(context.Background(), model.GroupKey{NormalizedCollege: "X"}, req, match)
	require.Equal(t, "stage_b", decision.Stage)
	assert.True(t, decision.Approved)
}

func TestVerifyRejectsWhenStageBConsensusFails(t *testing.T) {
	providers := []llmconsensus.Provider{
		stubProvider{"a", llmconsensus.VerdictReject},
		stubProvider{"b", llmconsensus.VerdictAbstain},
		stubProvider{"c", llmconsensus.VerdictAbstain},
	}
	engine := llmconsensus.NewEngine(providers, llmconsensus.Config{Enabled: true, TimeoutSoft: time.Second, TimeoutHard: 2 * time.Second}, llmconsensus.NewCache(nil, "v1", nil))
	v := New(NewGuardian(coursestream.New(), statealias.New()), engine, thresholds(), true)

	req := model.MatchRequest{College: "X", State: "KERALA", Course: "MBBS"}
	match := model.ScoredMatch{
		Candidate: model.Candidate{College: &model.MasterCollege{StateName: "KERALA", Stream: coursestream.Medical, ID: 1}},
		Score:     0.85,
		Components: model.ScoreBreakdown{NameScore: 0.9},
	}

	decision := v.Verify(context.Background(), model.GroupKey{NormalizedCollege: "X"}, req, match)
	assert.False(t, decision.Approved)
	assert.False(t, decision.Verified)
}
