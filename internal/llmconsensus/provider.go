// Package llmconsensus implements Stage B of the Verifier (§4.8): querying
// N independent LLM providers for a verdict on a surviving match and
// combining their votes, with a persistent cache keyed by
// (group_signature, master_college_id).
package llmconsensus

import (
	"context"
)

// Verdict is one provider's opinion on a proposed match.
type Verdict string

const (
	VerdictApprove Verdict = "APPROVE"
	VerdictReject  Verdict = "REJECT"
	VerdictAbstain Verdict = "ABSTAIN"
)

// PromptFields is the information handed to a provider about the proposed
// match, enough for it to render a prompt without depending on internal
// model types directly.
type PromptFields struct {
	SeatCollege   string
	SeatState     string
	SeatAddress   string
	SeatCourse    string
	MasterCollege string
	MasterState   string
	MasterAddress string
	MasterStream  string
	Score         float64
	Method        string
}

// Vote is one provider's response, ready to feed into the consensus rule.
type Vote struct {
	ProviderID string
	Verdict    Verdict
	Rationale  string
	Err        error
}

// Provider mirrors the teacher's ai/provider.AIClient seam (a
// context-bound Chat call returning a single response), narrowed to the
// one operation Stage B needs: judge a proposed match and return a
// verdict plus rationale. Each concrete provider (HTTP to a local model
// server, a hosted API) implements this once.
type Provider interface {
	// ID is the stable identifier written into the verdict cache
	// alongside the vote (§4.8 "each provider... keyed by a stable
	// identifier").
	ID() string
	Verify(ctx context.Context, fields PromptFields) (Verdict, string, error)
}
