/*
Package scheduling groups the components of the taskloop scheduler:

  - task: the Task interface, adapters, and Run, which executes a task and
    converts a panic into a failed Result
  - queue: the unbounded FIFO holding one-shot tasks until the worker drains it
  - periodic: the Handle used to cancel recurring work and the Registry the
    worker scans once per tick
  - scheduler: the single worker goroutine and the API used to submit work

Task Scheduler:

	s := scheduler.New()
	s.Start()
	defer s.Stop()

	// One-shot task, run on the next tick
	s.Schedule(task.TaskFunc(func(ctx context.Context) error {
		return refreshCache(ctx)
	}))

	// Recurring task
	h, _ := s.SchedulePeriodic(time.Minute, flushTask)

	// Cron-style scheduling
	s.ScheduleCron("0 9 * * MON-FRI", reportTask) // Weekdays at 9 AM

	h.Finish()

All callbacks run on the worker goroutine one at a time. Submission and
cancellation are safe from any goroutine.
*/
package scheduling
