package llmconsensus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	id      string
	verdict Verdict
	reason  string
	err     error
}

func (f fakeProvider) ID() string { return f.id }
func (f fakeProvider) Verify(ctx context.Context, fields PromptFields) (Verdict, string, error) {
	return f.verdict, f.reason, f.err
}

func testCfg() Config {
	return Config{Enabled: true, TimeoutSoft: 100 * time.Millisecond, TimeoutHard: 200 * time.Millisecond}
}

func TestDecideApprovesOnUnanimousApproval(t *testing.T) {
	providers := []Provider{
		fakeProvider{id: "a", verdict: VerdictApprove},
		fakeProvider{id: "b", verdict: VerdictApprove},
		fakeProvider{id: "c", verdict: VerdictApprove},
	}
	engine := NewEngine(providers, testCfg(), NewCache(nil, "v1", nil))

	result := engine.Decide(context.Background(), CacheKey{GroupSignature: "g1", MasterCollege: 1}, PromptFields{})
	assert.True(t, result.Approved)
	require.Len(t, result.Votes, 3)
}

func TestDecideRejectsOnExplicitStateMismatch(t *testing.T) {
	providers := []Provider{
		fakeProvider{id: "a", verdict: VerdictApprove},
		fakeProvider{id: "b", verdict: VerdictApprove},
		fakeProvider{id: "c", verdict: VerdictReject, reason: "clear state mismatch between seat and master"},
	}
	engine := NewEngine(providers, testCfg(), NewCache(nil, "v1", nil))

	result := engine.Decide(context.Background(), CacheKey{GroupSignature: "g2", MasterCollege: 2}, PromptFields{})
	assert.False(t, result.Approved)
	assert.Equal(t, "reject_state_or_stream_mismatch", result.Reason)
}

func TestDecideRejectsOnInsufficientApprovals(t *testing.T) {
	providers := []Provider{
		fakeProvider{id: "a", verdict: VerdictApprove},
		fakeProvider{id: "b", verdict: VerdictAbstain},
		fakeProvider{id: "c", verdict: VerdictAbstain},
	}
	engine := NewEngine(providers, testCfg(), NewCache(nil, "v1", nil))

	result := engine.Decide(context.Background(), CacheKey{GroupSignature: "g3", MasterCollege: 3}, PromptFields{})
	assert.False(t, result.Approved)
	assert.Equal(t, "insufficient_approvals", result.Reason)
}

func TestDecideHonorsConfiguredQuorum(t *testing.T) {
	providers := []Provider{
		fakeProvider{id: "a", verdict: VerdictApprove},
		fakeProvider{id: "b", verdict: VerdictAbstain},
		fakeProvider{id: "c", verdict: VerdictAbstain},
	}
	cfg := testCfg()
	cfg.ConsensusRequiredApprove = 1
	engine := NewEngine(providers, cfg, NewCache(nil, "v1", nil))

	result := engine.Decide(context.Background(), CacheKey{GroupSignature: "g5", MasterCollege: 5}, PromptFields{})
	assert.True(t, result.Approved)
}

func TestDecideUsesCacheOnSecondCall(t *testing.T) {
	calls := 0
	providers := []Provider{
		countingProvider{fakeProvider{id: "a", verdict: VerdictApprove}, &calls},
		countingProvider{fakeProvider{id: "b", verdict: VerdictApprove}, &calls},
		countingProvider{fakeProvider{id: "c", verdict: VerdictApprove}, &calls},
	}
	engine := NewEngine(providers, testCfg(), NewCache(nil, "v1", nil))
	key := CacheKey{GroupSignature: "g4", MasterCollege: 4}

	engine.Decide(context.Background(), key, PromptFields{})
	engine.Decide(context.Background(), key, PromptFields{})

	assert.Equal(t, 3, calls)
}

type countingProvider struct {
	fakeProvider
	calls *int
}

func (c countingProvider) Verify(ctx context.Context, fields PromptFields) (Verdict, string, error) {
	*c.calls++
	return c.fakeProvider.Verify(ctx, fields)
}
