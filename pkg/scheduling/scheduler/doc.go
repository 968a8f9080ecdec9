/*
Package scheduler runs one-shot and recurring tasks on a single background worker.

Every callback executes sequentially on that one goroutine, so tasks never race
with each other and need no locking among themselves. Submission is safe from
any goroutine, including from inside a running task.

Basic Usage:

	s := scheduler.New()
	if err := s.Start(); err != nil {
		log.Fatal(err)
	}
	defer s.Stop()

	// One-shot work runs on the next tick, in submission order
	s.ScheduleFunc(func() { fmt.Println("hello") })

	// Recurring work runs every interval until its handle is finished
	h, _ := s.SchedulePeriodicFunc(time.Second, func() { fmt.Println("tick") })
	...
	h.Finish()

The Worker Tick:

Each tick the worker:
  - drains the one-shot queue to exhaustion, including tasks enqueued by the
    tasks it is running;
  - scans the periodic registry once, in registration order, removing entries
    whose handle is finished and firing those that are due;
  - waits TickInterval (default 5ms) or the stop signal.

Periodic timing is best-effort: an entry fires at the first tick on which its
interval has elapsed since its previous actual run. A worker stalled by a slow
task produces one late run, never a burst of catch-up runs.

Cron Scheduling:

	h, err := s.ScheduleCron("0 0/15 * * * *", reportTask) // every 15 minutes
	h, err := s.ScheduleCron("@every 30s", pingTask)

Expressions are parsed with robfig/cron and evaluated in Config.Location.

Configuration:

	s, err := scheduler.NewWithConfig(scheduler.Config{
		Name:         "billing",
		TickInterval: 2 * time.Millisecond,
		Logger:       logx.NewConsole("info"),
		Metrics:      metrics.Default(),
		OnError: func(r task.Result) {
			alerting.Notify(r.HandleID, r.Error)
		},
	})

Error Handling:

A task that returns an error or panics never stops the worker. The failure is
passed to Config.OnError as a task.Result, logged at error level (rate limited
by ErrorLogRate and ErrorLogBurst), and counted in Stats and metrics.

Lifecycle:

A scheduler moves through Created, Running, Stopping and Stopped, and cannot be
restarted. Stop waits for the worker to exit; once it returns no callback runs
again and queued one-shot tasks are discarded. The context handed to tasks is
canceled when Stop is called, so long-running tasks can return early.

Calling Stop from inside a task deadlocks, because the worker would wait for
itself.
*/
package scheduler
