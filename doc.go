/*
Package taskloop provides an in-process task scheduler that runs one-shot and
recurring work on a single background worker.

Task Scheduling (pkg/scheduling):
  - task: Task interface and panic-isolated execution
  - queue: Unbounded FIFO of pending one-shot tasks
  - periodic: Registry of recurring entries and their cancellation handles
  - scheduler: Worker loop and public API

Support (pkg):
  - logx: Structured logging over zerolog
  - metrics: Prometheus collectors for scheduler activity

Example usage:

	import "github.com/vnykmshr/taskloop/pkg/scheduling/scheduler"

	s := scheduler.New()
	s.Start()
	defer s.Stop()

	s.ScheduleFunc(func() { fmt.Println("once") })
	h, _ := s.SchedulePeriodicFunc(time.Second, func() { fmt.Println("every second") })
	defer h.Finish()
*/
package taskloop
