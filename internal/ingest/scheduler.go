// Package ingest drives messages through the extraction pipeline and
// into storage, with at-most-one ingestion job per account.
package ingest

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultStaleAfter is how long a job may hold an account before another
// caller is allowed to take it over. Parses are short-lived; a job older
// than this has been abandoned by its caller.
const DefaultStaleAfter = 10 * time.Minute

type job struct {
	startedAt time.Time
}

// Scheduler serializes ingestion per account with an account-keyed lock
// map and an injected clock. It holds no global state: callers share one
// instance by reference.
type Scheduler struct {
	clock      func() time.Time
	jobs       map[int64]*job
	staleAfter time.Duration
	mu         sync.Mutex
}

// NewScheduler creates a scheduler. A nil clock means time.Now; a
// non-positive staleness window means DefaultStaleAfter.
func NewScheduler(clock func() time.Time, staleAfter time.Duration) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Scheduler{
		clock:      clock,
		jobs:       make(map[int64]*job),
		staleAfter: staleAfter,
	}
}

// Acquire claims the ingestion slot for an account. It reports false
// when a non-stale job already holds the account. A stale job is taken
// over: its slot is replaced and the previous holder's release becomes a
// no-op for the new job.
func (s *Scheduler) Acquire(accountID int64) (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if running, exists := s.jobs[accountID]; exists {
		if s.clock().Sub(running.startedAt) < s.staleAfter {
			return nil, false
		}
		slog.Warn("taking over stale ingestion job",
			"account_id", accountID,
			"started_at", running.startedAt)
	}

	claimed := &job{startedAt: s.clock()}
	s.jobs[accountID] = claimed

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.jobs[accountID] == claimed {
			delete(s.jobs, accountID)
		}
	}, true
}
