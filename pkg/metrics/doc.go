// Package metrics provides Prometheus instrumentation for the taskloop scheduler.
//
// # Quick Start
//
//	reg := prometheus.NewRegistry()
//	s, err := scheduler.NewWithConfig(scheduler.Config{
//		Name:    "jobs",
//		Metrics: metrics.NewRegistry(reg),
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// All collectors carry a "scheduler" label; task collectors also carry "kind"
// (oneshot, periodic, cron).
//
//   - taskloop_scheduler_tasks_scheduled_total
//   - taskloop_scheduler_tasks_executed_total
//   - taskloop_scheduler_tasks_failed_total
//   - taskloop_scheduler_task_duration_seconds
//   - taskloop_scheduler_queue_depth
//   - taskloop_scheduler_periodic_tasks
//   - taskloop_scheduler_periodic_canceled_total
//   - taskloop_scheduler_tick_duration_seconds
//
// Registering two registries on the same custom Registerer panics, as with any
// duplicate Prometheus collector. Default() and DefaultWithNamespace() share
// one registry per namespace on the process-wide registerer.
package metrics
