// Package schedule runs the daily inventory job.
//
// A Scheduler is either armed or disarmed. Arming runs the job at once and
// then every Period until disarmed. At most one firing is ever pending.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Period between scheduled runs.
const Period = 24 * time.Hour

// Job is the work performed on each firing.
type Job func(ctx context.Context)

// Scheduler fires a Job now and then once per Period while armed.
type Scheduler struct {
	job    Job
	clock  clockwork.Clock
	logger *slog.Logger

	mu    sync.Mutex
	armed bool
	epoch uint64
	next  time.Time
	timer clockwork.Timer
}

// New returns a disarmed scheduler. A nil clock means the wall clock.
func New(job Job, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{job: job, clock: clock, logger: logger}
}

// Enable arms the scheduler. It returns false, and changes nothing, if a
// firing is already pending.
func (s *Scheduler) Enable() bool {
	s.mu.Lock()
	if s.armed {
		s.mu.Unlock()
		return false
	}
	s.armed = true
	s.epoch++
	epoch := s.epoch
	s.next = s.clock.Now()
	s.mu.Unlock()

	s.logger.Info("scheduler armed", "period", Period)
	go s.run(epoch)
	return true
}

// Disable disarms the scheduler. A run already in progress completes but
// does not schedule another. It returns false if the scheduler was not armed.
func (s *Scheduler) Disable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return false
	}
	s.armed = false
	s.epoch++
	s.next = time.Time{}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.logger.Info("scheduler disarmed")
	return true
}

// Armed reports whether a firing is pending or in progress.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Next returns the time of the pending firing.
func (s *Scheduler) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next, s.armed
}

func (s *Scheduler) run(epoch uint64) {
	if !s.current(epoch) {
		return
	}

	s.job(context.Background())

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed || s.epoch != epoch {
		return
	}
	s.next = s.clock.Now().Add(Period)
	s.timer = s.clock.AfterFunc(Period, func() { go s.run(epoch) })
}

func (s *Scheduler) current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed && s.epoch == epoch
}
