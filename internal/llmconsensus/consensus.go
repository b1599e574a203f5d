package llmconsensus

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"
)

// Config controls Stage B's consensus behaviour (§6 llm.* keys).
type Config struct {
	Enabled                  bool
	ConsensusRequiredApprove int // 0 means derive from ceil(N/2)+1
	TimeoutSoft              time.Duration
	TimeoutHard              time.Duration
}

// Result is the outcome of running consensus once for a proposed match.
type Result struct {
	Approved bool
	Votes    []Vote
	Reason   string
}

// Engine runs N providers concurrently and applies §4.8's consensus rule.
type Engine struct {
	providers []Provider
	cfg       Config
	cache     *Cache
}

func NewEngine(providers []Provider, cfg Config, cache *Cache) *Engine {
	if cfg.TimeoutSoft == 0 {
		cfg.TimeoutSoft = 30 * time.Second
	}
	if cfg.TimeoutHard == 0 {
		cfg.TimeoutHard = 2 * cfg.TimeoutSoft
	}
	if cache != nil {
		cache.SetConsensusConfig(cfg)
	}
	return &Engine{providers: providers, cfg: cfg, cache: cache}
}

// Decide queries every configured provider (via the cache first) and
// applies the consensus rule: approve iff approve_votes >= ceil(N/2)+1
// (or Config.ConsensusRequiredApprove, when set above zero) and no REJECT
// carries an explicit state-or-stream-mismatch rationale.
func (e *Engine) Decide(ctx context.Context, sig CacheKey, fields PromptFields) Result {
	if cached, ok := e.cache.Get(sig); ok {
		return evaluate(cached, e.cfg)
	}

	votes := e.collectVotes(ctx, fields)
	e.cache.Put(sig, votes)
	return evaluate(votes, e.cfg)
}

func (e *Engine) collectVotes(ctx context.Context, fields PromptFields) []Vote {
	votes := make([]Vote, len(e.providers))
	var wg sync.WaitGroup
	for i, p := range e.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			votes[i] = e.callWithTimeouts(ctx, p, fields)
		}(i, p)
	}
	wg.Wait()
	return votes
}

// callWithTimeouts enforces §5's soft/hard timeout pair: the call is
// hard-aborted at TimeoutHard; a call still running past TimeoutSoft is
// allowed to finish but would already have been logged upstream as slow
// by the caller's own instrumentation (the Engine itself only owns the
// hard deadline, since a Vote has no partial-progress state to report).
func (e *Engine) callWithTimeouts(ctx context.Context, p Provider, fields PromptFields) Vote {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.TimeoutHard)
	defer cancel()

	verdict, rationale, err := p.Verify(callCtx, fields)
	if err != nil {
		return Vote{ProviderID: p.ID(), Verdict: VerdictAbstain, Rationale: rationale, Err: err}
	}
	return Vote{ProviderID: p.ID(), Verdict: verdict, Rationale: rationale}
}

func evaluate(votes []Vote, cfg Config) Result {
	required := cfg.ConsensusRequiredApprove
	if required <= 0 {
		required = requiredApprovals(len(votes))
	}

	approve := 0
	for _, v := range votes {
		if v.Verdict == VerdictApprove {
			approve++
		}
	}

	for _, v := range votes {
		if v.Verdict == VerdictReject && isMismatchRationale(v.Rationale) {
			return Result{Approved: false, Votes: votes, Reason: "reject_state_or_stream_mismatch"}
		}
	}

	if approve >= required {
		return Result{Approved: true, Votes: votes}
	}
	return Result{Approved: false, Votes: votes, Reason: "insufficient_approvals"}
}

func requiredApprovals(n int) int {
	if n == 0 {
		return 1
	}
	return int(math.Ceil(float64(n)/2)) + 1
}

func isMismatchRationale(rationale string) bool {
	lower := strings.ToLower(rationale)
	return strings.Contains(lower, "state mismatch") || strings.Contains(lower, "stream mismatch") ||
		strings.Contains(lower, "different state") || strings.Contains(lower, "wrong stream")
}
