// Package periodic implements the registry of recurring tasks and the
// cancellation Handle callers use to deregister them.
//
// An interval entry is due on the first scan after registration and then
// whenever at least its interval has elapsed since it last actually fired.
// The baseline is the real fire time, so a worker stall produces a single
// late firing rather than a burst of catch-up firings.
//
// A cron entry (RegisterSchedule) is due when the scan time reaches the
// schedule's next activation, which is recomputed from the fire time.
//
// Handles are the only way to remove an entry:
//
//	h, _ := reg.Register(50*time.Millisecond, t)
//	...
//	h.Finish() // removed by the next Scan, never fires again
package periodic
