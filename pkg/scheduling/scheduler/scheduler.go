package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	tlcontext "github.com/vnykmshr/taskloop/pkg/common/context"
	tlerrors "github.com/vnykmshr/taskloop/pkg/common/errors"
	"github.com/vnykmshr/taskloop/pkg/common/validation"
	"github.com/vnykmshr/taskloop/pkg/logx"
	"github.com/vnykmshr/taskloop/pkg/metrics"
	"github.com/vnykmshr/taskloop/pkg/scheduling/periodic"
	"github.com/vnykmshr/taskloop/pkg/scheduling/queue"
	"github.com/vnykmshr/taskloop/pkg/scheduling/task"
)

const (
	// DefaultTickInterval is the pause between worker ticks.
	DefaultTickInterval = 5 * time.Millisecond
	// MinTickInterval and MaxTickInterval bound Config.TickInterval.
	MinTickInterval = time.Millisecond
	MaxTickInterval = 10 * time.Millisecond

	defaultName          = "default"
	defaultErrorLogRate  = 10
	defaultErrorLogBurst = 20
)

// Config holds scheduler configuration.
type Config struct {
	// Name labels metrics and log lines (default: "default").
	Name string

	// TickInterval is the pause between ticks, 1ms to 10ms (default: 5ms).
	TickInterval time.Duration

	// Logger receives lifecycle and task failure logs. The zero value discards them.
	Logger logx.Logger

	// OnError is the error sink, called on the worker for every task that
	// returned an error or panicked. A panic inside OnError is recovered.
	OnError func(task.Result)

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry

	// Location is used to evaluate cron expressions (default: time.Local).
	Location *time.Location

	// ErrorLogRate limits task failure log lines per second (default: 10).
	// A negative value disables the limit. OnError is never throttled.
	ErrorLogRate float64

	// ErrorLogBurst is the burst allowed above ErrorLogRate (default: 20).
	ErrorLogBurst int

	// Clock replaces time.Now for due checks. Intended for tests.
	Clock func() time.Time
}

// State is the scheduler lifecycle state.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Scheduler runs one-shot and periodic tasks on a single background worker.
//
// All callbacks execute sequentially on that worker, so they never race with
// each other. Schedule, SchedulePeriodic and ScheduleCron are safe to call
// from any goroutine, including from inside a running task.
type Scheduler struct {
	name         string
	tickInterval time.Duration
	clock        func() time.Time
	log          logx.Logger
	onError      func(task.Result)
	metrics      *metrics.Registry
	cronParser   cron.Parser

	queue    *queue.Queue
	registry *periodic.Registry

	errLimiter *rate.Limiter
	suppressed atomic.Int64

	mu      sync.Mutex
	state   State
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}

	scheduled     atomic.Int64
	executed      atomic.Int64
	failed        atomic.Int64
	periodicFires atomic.Int64
	canceled      atomic.Int64
	ticks         atomic.Int64
}

// New creates a scheduler with default configuration.
func New() *Scheduler {
	s, err := NewWithConfig(Config{})
	if err != nil {
		// The zero Config is always valid.
		panic(err)
	}
	return s
}

// NewWithConfig creates a scheduler with custom configuration.
// The scheduler does not run tasks until Start is called.
func NewWithConfig(cfg Config) (*Scheduler, error) {
	tickInterval := cfg.TickInterval
	if tickInterval == 0 {
		tickInterval = DefaultTickInterval
	}
	if err := validation.ValidateDurationRange("scheduler", "tick_interval", tickInterval, MinTickInterval, MaxTickInterval); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = defaultName
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	limit := rate.Limit(cfg.ErrorLogRate)
	switch {
	case cfg.ErrorLogRate < 0:
		limit = rate.Inf
	case cfg.ErrorLogRate == 0:
		limit = defaultErrorLogRate
	}
	burst := cfg.ErrorLogBurst
	if err := validation.ValidateNonNegative("scheduler", "error_log_burst", burst); err != nil {
		return nil, err
	}
	if burst == 0 {
		burst = defaultErrorLogBurst
	}

	return &Scheduler{
		name:         name,
		tickInterval: tickInterval,
		clock:        clock,
		log:          cfg.Logger.With(logx.String("scheduler", name)),
		onError:      cfg.OnError,
		metrics:      cfg.Metrics,
		// SecondOptional allows both 5-field and 6-field (with seconds) specs.
		cronParser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		queue:      queue.New(),
		registry:   periodic.NewRegistry(clock, location),
		errLimiter: rate.NewLimiter(limit, burst),
	}, nil
}

// Name returns the configured scheduler name.
func (s *Scheduler) Name() string { return s.name }

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the background worker.
// It returns ErrAlreadyRunning if the worker is already running and
// ErrStopped once Stop has been called; a stopped scheduler cannot restart.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateRunning:
		return tlerrors.ErrAlreadyRunning
	case StateStopping, StateStopped:
		return tlerrors.ErrStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.state = StateRunning
	s.started = s.clock()
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)

	s.log.Info("scheduler started",
		logx.Duration("tick", s.tickInterval),
		logx.Int("queued", s.queue.Len()),
		logx.Int("periodic", s.registry.Len()))
	return nil
}

// Stop signals the worker to exit after its current tick and waits until it
// has. Once Stop returns no task or periodic callback runs again. Tasks still
// queued are discarded. Calling Stop again, or concurrently, is safe.
//
// Stop must not be called from inside a task: the worker would wait for itself.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	switch s.state {
	case StateCreated:
		s.state = StateStopped
		s.mu.Unlock()
		s.discardQueued()
		return nil
	case StateStopping:
		done := s.done
		s.mu.Unlock()
		<-done
		return nil
	case StateStopped:
		s.mu.Unlock()
		return nil
	}

	s.state = StateStopping
	cancel, done, started := s.cancel, s.done, s.started
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	dropped := s.discardQueued()
	s.log.Info("scheduler stopped",
		logx.Duration("uptime", s.clock().Sub(started)),
		logx.Int("discarded", dropped),
		logx.Int64("executed", s.executed.Load()))
	return nil
}

func (s *Scheduler) discardQueued() int {
	n := s.queue.Clear()
	if s.metrics != nil {
		s.metrics.QueueDepth.WithLabelValues(s.name).Set(0)
	}
	return n
}

// Schedule enqueues a one-shot task. It never blocks on task execution.
// Tasks scheduled before Start run on the first tick.
func (s *Scheduler) Schedule(t task.Task) error {
	if err := validation.ValidateNotNil("scheduler", "task", t); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state >= StateStopping {
		s.mu.Unlock()
		return tlerrors.ErrStopped
	}
	s.queue.Push(t)
	s.mu.Unlock()

	s.scheduled.Add(1)
	if s.metrics != nil {
		s.metrics.TasksScheduled.WithLabelValues(s.name, metrics.KindOneShot).Inc()
		s.metrics.QueueDepth.WithLabelValues(s.name).Set(float64(s.queue.Len()))
	}
	return nil
}

// ScheduleFunc is Schedule for a plain callback.
func (s *Scheduler) ScheduleFunc(fn func()) error {
	return s.Schedule(task.Func(fn))
}

// SchedulePeriodic registers t to run every interval, starting with the
// first tick after registration. The interval is measured from the previous
// actual run, so a stalled worker causes one late run rather than a burst.
// Call Finish on the returned handle to stop it.
func (s *Scheduler) SchedulePeriodic(interval time.Duration, t task.Task) (*periodic.Handle, error) {
	s.mu.Lock()
	if s.state >= StateStopping {
		s.mu.Unlock()
		return nil, tlerrors.ErrStopped
	}
	h, err := s.registry.Register(interval, t)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.registered(h, metrics.KindPeriodic, logx.Duration("interval", interval))
	return h, nil
}

// SchedulePeriodicFunc is SchedulePeriodic for a plain callback.
func (s *Scheduler) SchedulePeriodicFunc(interval time.Duration, fn func()) (*periodic.Handle, error) {
	return s.SchedulePeriodic(interval, task.Func(fn))
}

func (s *Scheduler) registered(h *periodic.Handle, kind string, fields ...logx.Field) {
	s.scheduled.Add(1)
	if s.metrics != nil {
		s.metrics.TasksScheduled.WithLabelValues(s.name, kind).Inc()
		s.metrics.PeriodicTasks.WithLabelValues(s.name).Set(float64(s.registry.Len()))
	}
	s.log.Debug("periodic task registered",
		append([]logx.Field{logx.String("handle", h.ID()), logx.String("kind", kind)}, fields...)...)
}

// CancelAll finishes every registered periodic task and returns how many
// were still active. One-shot tasks already queued are unaffected.
func (s *Scheduler) CancelAll() int {
	return s.registry.FinishAll()
}

// run is the worker loop.
func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		if tlcontext.IsCanceled(ctx) {
			return
		}
		s.tick(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// tick drains the queue to exhaustion, then scans the periodic registry once.
func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()

	s.queue.Drain(func(t task.Task) {
		s.execute(ctx, t, task.KindOneShot, "")
	})

	res := s.registry.Scan(func(e *periodic.Entry) {
		s.periodicFires.Add(1)
		s.execute(ctx, e.Task(), e.Kind(), e.Handle().ID())
	})
	if res.Removed > 0 {
		s.canceled.Add(int64(res.Removed))
		s.log.Debug("periodic tasks removed", logx.Int("count", res.Removed))
	}

	s.ticks.Add(1)
	if s.metrics != nil {
		s.metrics.TickDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
		s.metrics.QueueDepth.WithLabelValues(s.name).Set(float64(s.queue.Len()))
		s.metrics.PeriodicTasks.WithLabelValues(s.name).Set(float64(s.registry.Len()))
		if res.Removed > 0 {
			s.metrics.PeriodicCanceled.WithLabelValues(s.name).Add(float64(res.Removed))
		}
	}
}

// execute runs one callback on the worker and records its outcome.
func (s *Scheduler) execute(ctx context.Context, t task.Task, kind task.Kind, handleID string) {
	r := task.Run(ctx, t, kind)
	r.HandleID = handleID

	s.executed.Add(1)
	if s.metrics != nil {
		s.metrics.TasksExecuted.WithLabelValues(s.name, string(kind)).Inc()
		s.metrics.TaskExecutionDuration.WithLabelValues(s.name, string(kind)).Observe(r.Duration.Seconds())
	}

	if r.Failed() {
		s.failed.Add(1)
		if s.metrics != nil {
			s.metrics.TasksFailed.WithLabelValues(s.name, string(kind)).Inc()
		}
		s.report(r)
	}
}
