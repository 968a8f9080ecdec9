package periodic

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/taskloop/pkg/common/validation"
	"github.com/vnykmshr/taskloop/pkg/scheduling/task"
)

// Entry is one registered periodic task.
// Its timing fields are owned by the registry; read them through Info.
type Entry struct {
	handle   *Handle
	task     task.Task
	interval time.Duration
	schedule cron.Schedule
	spec     string
	created  time.Time

	// guarded by Registry.mu
	fired     bool
	lastFired time.Time
	next      time.Time
	fires     int64
}

// Handle returns the entry's cancellation handle.
func (e *Entry) Handle() *Handle { return e.handle }

// Task returns the callback.
func (e *Entry) Task() task.Task { return e.task }

// Kind reports whether the entry is interval or cron driven.
func (e *Entry) Kind() task.Kind {
	if e.schedule != nil {
		return task.KindCron
	}
	return task.KindPeriodic
}

// due reports whether the entry should fire at now. Must hold Registry.mu.
func (e *Entry) due(now time.Time) bool {
	if e.schedule != nil {
		return !now.Before(e.next)
	}
	// Never fired: immediately eligible.
	return !e.fired || now.Sub(e.lastFired) >= e.interval
}

// markFired moves the baseline to the actual fire time. Must hold Registry.mu.
func (e *Entry) markFired(now time.Time, loc *time.Location) {
	e.fired = true
	e.lastFired = now
	e.fires++
	if e.schedule != nil {
		e.next = e.schedule.Next(now.In(loc))
	}
}

// EntryInfo is a point-in-time view of an entry.
type EntryInfo struct {
	ID        string
	Kind      task.Kind
	Interval  time.Duration // zero for cron entries
	Spec      string        // cron expression; empty for interval entries
	Created   time.Time
	LastFired time.Time // zero until the first firing
	Next      time.Time // cron entries only
	Fires     int64
	Finished  bool
}

// ScanResult summarizes one registry scan.
type ScanResult struct {
	Fired   int
	Removed int
}

// Registry holds periodic entries and decides, once per scan, which are due.
type Registry struct {
	mu       sync.Mutex
	clock    func() time.Time
	location *time.Location
	entries  []*Entry
}

// NewRegistry creates an empty registry. A nil clock uses time.Now; a nil
// location uses time.Local for cron evaluation.
func NewRegistry(clock func() time.Time, location *time.Location) *Registry {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &Registry{clock: clock, location: location}
}

// Register adds an interval entry that is due on the next scan and then
// every interval measured from its previous actual firing.
func (r *Registry) Register(interval time.Duration, t task.Task) (*Handle, error) {
	if err := validation.ValidatePositiveDuration("periodic", "interval", interval); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotNil("periodic", "task", t); err != nil {
		return nil, err
	}

	e := &Entry{
		handle:   newHandle(),
		task:     t,
		interval: interval,
		created:  r.clock(),
	}
	r.add(e)
	return e.handle, nil
}

// RegisterSchedule adds an entry driven by a cron schedule. spec is kept
// for reporting only. The first firing is the schedule's next activation
// after registration.
func (r *Registry) RegisterSchedule(spec string, schedule cron.Schedule, t task.Task) (*Handle, error) {
	if err := validation.ValidateNotNil("periodic", "schedule", schedule); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotNil("periodic", "task", t); err != nil {
		return nil, err
	}

	now := r.clock()
	e := &Entry{
		handle:   newHandle(),
		task:     t,
		schedule: schedule,
		spec:     spec,
		created:  now,
		next:     schedule.Next(now.In(r.location)),
	}
	r.add(e)
	return e.handle, nil
}

func (r *Registry) add(e *Entry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

// Scan performs one pass over the entries in insertion order. A finished
// entry is removed without being evaluated. A due entry is passed to fire
// synchronously and its baseline moves to the scan time. fire runs without
// the registry lock held, so it may register or finish entries; entries
// added during the scan are first considered by the next one.
func (r *Registry) Scan(fire func(*Entry)) ScanResult {
	var res ScanResult

	r.mu.Lock()
	snapshot := append([]*Entry(nil), r.entries...)
	r.mu.Unlock()

	now := r.clock()
	finished := false
	for _, e := range snapshot {
		if e.handle.IsFinished() {
			finished = true
			continue
		}

		r.mu.Lock()
		due := e.due(now)
		if due {
			e.markFired(now, r.location)
		}
		r.mu.Unlock()

		if due {
			fire(e)
			res.Fired++
		}
	}

	if finished {
		res.Removed = r.removeFinished()
	}
	return res
}

func (r *Registry) removeFinished() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	removed := 0
	for _, e := range r.entries {
		if e.handle.IsFinished() {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	clear(r.entries[len(kept):])
	r.entries = kept
	return removed
}

// Len returns the number of registered entries, including finished ones
// that have not been scanned out yet.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// FinishAll finishes every registered handle and returns how many were active.
func (r *Registry) FinishAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if !e.handle.IsFinished() {
			e.handle.Finish()
			n++
		}
	}
	return n
}

// Snapshot returns the current entries in insertion order.
func (r *Registry) Snapshot() []EntryInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]EntryInfo, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, EntryInfo{
			ID:        e.handle.ID(),
			Kind:      e.Kind(),
			Interval:  e.interval,
			Spec:      e.spec,
			Created:   e.created,
			LastFired: e.lastFired,
			Next:      e.next,
			Fires:     e.fires,
			Finished:  e.handle.IsFinished(),
		})
	}
	return out
}
