package pipeline

import "sync"

// RunStats accumulates realtime analytics counters over one Run: per-pass
// hit counts and a coarse score histogram, so an operator watching a
// batch run can see where groups are landing without re-querying the row
// store (a supplemented feature; the distilled spec only asks for the
// per-row outcome, not run-level telemetry).
type RunStats struct {
	mu sync.Mutex

	Committed       int
	QueuedForReview int
	PassHits        map[string]int
	RejectReasons   map[string]int
	ScoreHistogram  [10]int // buckets of width 0.1: [0,0.1) ... [0.9,1.0]
}

func newRunStats() *RunStats {
	return &RunStats{
		PassHits:      make(map[string]int),
		RejectReasons: make(map[string]int),
	}
}

func (s *RunStats) record(r passResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.PassHits[r.pass]++
	if r.committed {
		s.Committed++
		bucket := int(r.score * 10)
		if bucket > 9 {
			bucket = 9
		}
		if bucket < 0 {
			bucket = 0
		}
		s.ScoreHistogram[bucket]++
	}
	if r.queuedForReview {
		s.QueuedForReview++
		if r.reason != "" {
			s.RejectReasons[r.reason]++
		}
	}
}

// Snapshot returns a copy of the counters safe to read after Run returns.
func (s *RunStats) Snapshot() RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := RunStats{
		Committed:       s.Committed,
		QueuedForReview: s.QueuedForReview,
		PassHits:        make(map[string]int, len(s.PassHits)),
		RejectReasons:   make(map[string]int, len(s.RejectReasons)),
		ScoreHistogram:  s.ScoreHistogram,
	}
	for k, v := range s.PassHits {
		out.PassHits[k] = v
	}
	for k, v := range s.RejectReasons {
		out.RejectReasons[k] = v
	}
	return out
}
