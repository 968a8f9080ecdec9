// Package task defines the unit of work accepted by the scheduler and the
// panic-isolated runner the worker uses to execute it.
//
//	t := task.TaskFunc(func(ctx context.Context) error {
//		return refreshCache(ctx)
//	})
//
//	r := task.Run(ctx, t, task.KindOneShot)
//	if r.Failed() {
//		log.Printf("task failed after %v: %v", r.Duration, r.Error)
//	}
//
// Plain callbacks are adapted with Func:
//
//	s.Schedule(task.Func(func() { data = append(data, 5) }))
package task
