package scheduler

import (
	"time"

	"github.com/vnykmshr/taskloop/pkg/scheduling/periodic"
)

// Stats is a point-in-time snapshot of scheduler counters.
type Stats struct {
	State State

	// Scheduled counts accepted one-shot tasks plus registered periodic entries.
	Scheduled int64
	// Executed counts every callback invocation, failed ones included.
	Executed int64
	// Failed counts executions that returned an error or panicked.
	Failed int64
	// PeriodicFires counts executions of periodic and cron entries.
	PeriodicFires int64
	// Canceled counts periodic entries removed after their handle finished.
	Canceled int64
	Ticks    int64

	QueueLength     int
	PeriodicEntries int

	Uptime time.Duration
}

// Stats returns current counters. Values are read individually and may be
// mutually inconsistent while the worker is running.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	state, started := s.state, s.started
	s.mu.Unlock()

	var uptime time.Duration
	if state == StateRunning {
		uptime = s.clock().Sub(started)
	}

	return Stats{
		State:           state,
		Scheduled:       s.scheduled.Load(),
		Executed:        s.executed.Load(),
		Failed:          s.failed.Load(),
		PeriodicFires:   s.periodicFires.Load(),
		Canceled:        s.canceled.Load(),
		Ticks:           s.ticks.Load(),
		QueueLength:     s.queue.Len(),
		PeriodicEntries: s.registry.Len(),
		Uptime:          uptime,
	}
}

// List describes the registered periodic entries in firing order.
// Entries whose handle has finished stay listed until the next scan.
func (s *Scheduler) List() []periodic.EntryInfo {
	return s.registry.Snapshot()
}
