// Package pipeline implements PipelineOrchestrator (§4.7): it groups seat
// rows, runs the five ordered passes against each unmatched group exactly
// once, and propagates the decision to every row in the group atomically.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/aliastable"
	"github.com/sbvh/collegematch/internal/candidate"
	"github.com/sbvh/collegematch/internal/config"
	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/matcherr"
	"github.com/sbvh/collegematch/internal/model"
	"github.com/sbvh/collegematch/internal/scorer"
	"github.com/sbvh/collegematch/internal/statealias"
	"github.com/sbvh/collegematch/internal/verify"
)

// Orchestrator runs the five-pass matching algorithm over a GroupStore's
// groups, one worker pool iteration at a time.
type Orchestrator struct {
	store   GroupStore
	gen     *candidate.Generator
	scorer  *scorer.Scorer
	aliases *aliastable.Table
	states  *statealias.Aliaser
	streams *coursestream.Mapper

	courses CourseResolver
	stateID StateResolver
	verify  *verify.Verifier

	thresholds config.ThresholdsConfig
	log        *zap.SugaredLogger
}

// New assembles an Orchestrator from its already-constructed collaborators.
// verifier may be nil, in which case every match a pass accepts is
// committed unverified, with no Stage A check (useful for tests exercising pass logic in
// isolation); production wiring always supplies one (internal/appctx).
func New(
	store GroupStore,
	gen *candidate.Generator,
	sc *scorer.Scorer,
	aliases *aliastable.Table,
	states *statealias.Aliaser,
	streams *coursestream.Mapper,
	courses CourseResolver,
	stateID StateResolver,
	verifier *verify.Verifier,
	thresholds config.ThresholdsConfig,
	log *zap.SugaredLogger,
) *Orchestrator {
	return &Orchestrator{
		store: store, gen: gen, scorer: sc, aliases: aliases, states: states,
		streams: streams, courses: courses, stateID: stateID, verify: verifier,
		thresholds: thresholds, log: log,
	}
}

// Run fetches every group and processes it with workers concurrent workers
// (§5 "batch, worker-pool"), returning accumulated RunStats. A context
// cancellation is observed at group boundaries (§5 "Cancellation").
func (o *Orchestrator) Run(ctx context.Context, workers int) (*RunStats, error) {
	groups, err := o.store.Groups()
	if err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "listing groups"), matcherr.KindRowStoreError)
	}

	pool := newWorkerPool(o, workers, o.log)
	return pool.run(ctx, groups)
}

// processGroup runs all five passes in order against a single group,
// verifies any match a pass accepts, and writes the resulting decision
// (or review entry) atomically (§4.7, §4.8).
func (o *Orchestrator) processGroup(ctx context.Context, group model.GroupEntry) (passResult, error) {
	req := model.MatchRequest{
		College: group.Key.NormalizedCollege,
		State:   group.Key.NormalizedState,
		Address: group.Key.NormalizedAddress,
		Course:  group.Key.CourseType,
	}

	canonicalState, _ := o.states.Canonicalize(req.State)

	passFns := []func(model.MatchRequest) passOutcome{o.runPass1, o.runPass2, o.runPass3, o.runPass4}
	for _, fn := range passFns {
		outcome := fn(req)
		if outcome.ambiguous {
			if err := o.queueReview(group, req); err != nil {
				return passResult{}, err
			}
			return passResult{group: group, pass: outcome.passName, queuedForReview: true, reason: "ambiguous_match"}, nil
		}
		if outcome.match != nil {
			decision := o.verifyMatch(ctx, group.Key, req, *outcome.match)
			if !decision.Approved {
				if err := o.queueReview(group, req); err != nil {
					return passResult{}, err
				}
				return passResult{group: group, pass: outcome.passName, queuedForReview: true, reason: "guardian_reject:" + decision.Reason}, nil
			}
			if err := o.commit(group, req, canonicalState, *outcome.match, outcome.passName, outcome.aliasRule, decision.Verified); err != nil {
				return passResult{}, err
			}
			return passResult{group: group, pass: outcome.passName, score: outcome.match.Score, committed: true}, nil
		}
	}

	// Pass 5 — human queue.
	if err := o.queueReview(group, req); err != nil {
		return passResult{}, err
	}
	return passResult{group: group, pass: "pass5", queuedForReview: true, reason: "no_pass_accepted"}, nil
}

// verifyMatch runs the Verifier when one is configured; with none wired
// (tests exercising pass logic in isolation) every match is approved
// unverified.
func (o *Orchestrator) verifyMatch(ctx context.Context, key model.GroupKey, req model.MatchRequest, match model.ScoredMatch) verify.Decision {
	if o.verify == nil {
		return verify.Decision{Approved: true, Verified: false}
	}
	return o.verify.Verify(ctx, key, req, match)
}

func (o *Orchestrator) queueReview(group model.GroupEntry, req model.MatchRequest) error {
	candidates := o.gen.Generate(req)
	ranked := scoreAndRank(o.scorer, req, candidates)
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}
	err := o.store.QueueForReview(model.ReviewEntry{Key: group.Key, TopCandidates: top})
	if err != nil {
		return matcherr.WithKind(matcherr.Wrap(err, "queuing group for review"), matcherr.KindRowStoreError)
	}
	return nil
}

// commit resolves the cascading master_state_id/master_course_id fields
// and writes the group's match atomically (§4.7 "Cascading fields").
// master_state_id comes from the matched college's state; the row is
// flagged when the seat row's canonical state disagrees with it.
// verified is only true when the Verifier approved the match (§4.8
// "Propagation"); a nil Verifier always commits unverified.
func (o *Orchestrator) commit(group model.GroupEntry, req model.MatchRequest, canonicalState string, match model.ScoredMatch, pass, aliasRule string, verified bool) error {
	update := model.GroupMatchUpdate{
		Key:      group.Key,
		Score:    match.Score,
		Method:   methodWithPass(pass, aliasRule, match.Method),
		Verified: verified,
	}

	collegeID := match.Candidate.College.ID
	update.CollegeID = &collegeID

	collegeState := match.Candidate.College.StateName
	if collegeState == "" {
		collegeState = canonicalState
	}
	if sid, ok := o.stateID.ResolveState(collegeState); ok {
		update.StateID = &sid
	}
	update.StateMismatchFlagged = canonicalState != "" && canonicalState != match.Candidate.College.StateName

	stream := match.Candidate.College.Stream
	if cid, ok := o.courses.ResolveCourse(req.Course, stream); ok {
		update.CourseID = &cid
	}

	if err := o.store.UpdateGroupMatch(update); err != nil {
		return matcherr.WithKind(matcherr.Wrap(err, "updating group match"), matcherr.KindRowStoreError)
	}
	return nil
}

func methodWithPass(pass, aliasRule, scorerMethod string) string {
	if aliasRule != "" {
		return fmt.Sprintf("%s_alias[%s]+%s", pass, aliasRule, scorerMethod)
	}
	return fmt.Sprintf("%s+%s", pass, scorerMethod)
}

// passResult is one group's outcome, consumed by RunStats.
type passResult struct {
	group           model.GroupEntry
	pass            string
	score           float64
	committed       bool
	queuedForReview bool
	reason          string
}
