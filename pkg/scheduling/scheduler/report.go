package scheduler

import (
	"github.com/vnykmshr/taskloop/pkg/logx"
	"github.com/vnykmshr/taskloop/pkg/scheduling/task"
)

// report forwards a failed execution to the error sink and the log.
func (s *Scheduler) report(r task.Result) {
	s.notify(r)

	if !s.errLimiter.Allow() {
		s.suppressed.Add(1)
		return
	}

	fields := []logx.Field{
		logx.Err(r.Error),
		logx.String("kind", string(r.Kind)),
		logx.Duration("duration", r.Duration),
	}
	if r.HandleID != "" {
		fields = append(fields, logx.String("handle", r.HandleID))
	}
	if n := s.suppressed.Swap(0); n > 0 {
		fields = append(fields, logx.Int64("suppressed", n))
	}
	if r.Panicked() {
		fields = append(fields, logx.Stack(string(r.Stack)))
		s.log.Error("task panicked", fields...)
		return
	}
	s.log.Error("task failed", fields...)
}

// notify calls OnError, isolating the worker from a panicking sink.
func (s *Scheduler) notify(r task.Result) {
	if s.onError == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("error handler panicked", logx.Any("panic", p))
		}
	}()
	s.onError(r)
}
