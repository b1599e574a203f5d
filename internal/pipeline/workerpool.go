package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/matcherr"
	"github.com/sbvh/collegematch/internal/model"
)

// pulseLogger mirrors the teacher's pulse/async visual-distinction
// wrapper (STARTING/CLOSING/PULSE), kept here because RunStats progress
// wants the same at-a-glance log shape a long batch run benefits from.
type pulseLogger struct {
	*zap.SugaredLogger
}

func (l pulseLogger) starting(msg string, kv ...interface{}) { l.Debugw("✿ "+msg, kv...) }
func (l pulseLogger) closing(msg string, kv ...interface{})  { l.Warnw("❀ "+msg, kv...) }
func (l pulseLogger) pulse(msg string, kv ...interface{})    { l.Infow(msg, kv...) }

// workerPool fans a batch of groups out across a fixed set of goroutines.
// Unlike pulse/async's WorkerPool, this isn't a persistent job-queue
// daemon: it processes one bounded Groups() slice to completion and
// returns, which is all a batch matching run (§5 "Scheduling model")
// needs — no orphaned-job recovery and no budget/rate gating.
type workerPool struct {
	orch    *Orchestrator
	workers int
	log     pulseLogger
}

func newWorkerPool(orch *Orchestrator, workers int, log *zap.SugaredLogger) *workerPool {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &workerPool{orch: orch, workers: workers, log: pulseLogger{log.Named("pipeline")}}
}

// run processes every group with wp.workers concurrent workers, making up
// to 3 attempts with exponential backoff on a RowStoreError (§7) before
// counting the group as a persistent failure. A context cancellation is
// observed between groups (§5 "Cancellation": cancelled groups are left
// in their pre-pass state) and is returned as the run's error.
func (wp *workerPool) run(ctx context.Context, groups []model.GroupEntry) (*RunStats, error) {
	wp.log.starting("pipeline run starting", "groups", len(groups), "workers", wp.workers)

	jobs := make(chan model.GroupEntry)
	results := make(chan passResult)
	failures := make(chan error, wp.workers)

	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			wp.worker(ctx, id, jobs, results, failures)
		}(i)
	}

	go func() {
		defer close(jobs)
		for _, g := range groups {
			select {
			case <-ctx.Done():
				return
			case jobs <- g:
			}
		}
	}()

	stats := newRunStats()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			stats.record(r)
		}
	}()

	wg.Wait()
	close(results)
	<-done

	select {
	case err := <-failures:
		wp.log.closing("pipeline run aborted", "error", err)
		return stats, err
	default:
	}
	if err := ctx.Err(); err != nil {
		wp.log.closing("pipeline run cancelled", "error", err)
		return stats, err
	}

	wp.log.pulse("pipeline run complete", "groups", len(groups), "committed", stats.Committed, "queued", stats.QueuedForReview)
	return stats, nil
}

func (wp *workerPool) worker(ctx context.Context, id int, jobs <-chan model.GroupEntry, results chan<- passResult, failures chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case group, ok := <-jobs:
			if !ok {
				return
			}
			result, err := wp.processWithRetry(ctx, group)
			if err != nil {
				if matcherr.IsKind(err, matcherr.KindMasterIndexCorruption) {
					select {
					case failures <- err:
					default:
					}
					return
				}
				wp.log.SugaredLogger.Errorw("group failed after retries", "worker_id", id, "group", group.Key, "error", err)
				continue
			}
			select {
			case results <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

// processWithRetry implements §7's RowStoreError policy: 3 attempts with
// exponential backoff, persistent failure given back to the caller.
func (wp *workerPool) processWithRetry(ctx context.Context, group model.GroupEntry) (passResult, error) {
	const maxAttempts = 3
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := wp.orch.processGroup(ctx, group)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !matcherr.IsKind(err, matcherr.KindRowStoreError) {
			return passResult{}, err
		}
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return passResult{}, lastErr
}
