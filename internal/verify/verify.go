package verify

import (
	"context"
	"fmt"

	"github.com/sbvh/collegematch/internal/config"
	"github.com/sbvh/collegematch/internal/llmconsensus"
	"github.com/sbvh/collegematch/internal/model"
)

// Decision is the Verifier's final word on a proposed match: only an
// Approved decision may set verified = true on the row store (§4.8
// "Propagation").
type Decision struct {
	Approved bool
	Verified bool
	Reason   string
	Stage    string // "stage_a" or "stage_b"
	Votes    []llmconsensus.Vote
}

// Verifier runs Stage A against every proposal and, when it passes with
// a score below the configured review threshold, escalates to Stage B.
type Verifier struct {
	guardian   *Guardian
	consensus  *llmconsensus.Engine
	llmEnabled bool
	reviewGate float64
}

func New(guardian *Guardian, consensus *llmconsensus.Engine, thresholds config.ThresholdsConfig, llmEnabled bool) *Verifier {
	return &Verifier{guardian: guardian, consensus: consensus, llmEnabled: llmEnabled, reviewGate: thresholds.LLMReviewBelow}
}

// Verify applies Stage A then, conditionally, Stage B (§4.8).
func (v *Verifier) Verify(ctx context.Context, groupKey model.GroupKey, req model.MatchRequest, match model.ScoredMatch) Decision {
	stageA := v.guardian.Check(req, match)
	if !stageA.Approved {
		return Decision{Approved: false, Reason: stageA.Reason, Stage: "stage_a"}
	}

	if !v.llmEnabled || v.consensus == nil || match.Score >= v.reviewGate {
		return Decision{Approved: true, Verified: true, Stage: "stage_a"}
	}

	fields := llmconsensus.PromptFields{
		SeatCollege:   req.College,
		SeatState:     req.State,
		SeatAddress:   req.Address,
		SeatCourse:    req.Course,
		MasterCollege: match.Candidate.College.Name,
		MasterState:   match.Candidate.College.StateName,
		MasterAddress: match.Candidate.College.Address,
		MasterStream:  string(match.Candidate.College.Stream),
		Score:         match.Score,
		Method:        match.Method,
	}
	key := llmconsensus.CacheKey{GroupSignature: GroupSignature(groupKey), MasterCollege: match.Candidate.College.ID}
	result := v.consensus.Decide(ctx, key, fields)

	if !result.Approved {
		reason := result.Reason
		if reason == "" {
			reason = "llm_consensus_rejected"
		}
		return Decision{Approved: false, Reason: reason, Stage: "stage_b", Votes: result.Votes}
	}
	return Decision{Approved: true, Verified: true, Stage: "stage_b", Votes: result.Votes}
}

// GroupSignature is the stable identifier an LLM cache entry is keyed by
// alongside the candidate college id (§4.8).
func GroupSignature(key model.GroupKey) string {
	return fmt.Sprintf("%s|%s|%s|%s", key.NormalizedState, key.NormalizedCollege, key.NormalizedAddress, key.CourseType)
}
