package scheduler

import (
	"github.com/robfig/cron/v3"

	tlerrors "github.com/vnykmshr/taskloop/pkg/common/errors"
	"github.com/vnykmshr/taskloop/pkg/common/validation"
	"github.com/vnykmshr/taskloop/pkg/logx"
	"github.com/vnykmshr/taskloop/pkg/metrics"
	"github.com/vnykmshr/taskloop/pkg/scheduling/periodic"
	"github.com/vnykmshr/taskloop/pkg/scheduling/task"
)

// ScheduleCron registers t to run whenever the cron expression matches.
// Both the standard 5-field format and a leading seconds field are accepted,
// as are descriptors:
//
//	"*/5 * * * * *"  - every 5 seconds
//	"0 */2 * * *"    - every 2 hours
//	"30 14 * * 1-5"  - 2:30 PM on weekdays
//	"@hourly"        - every hour
//	"@every 1m30s"   - every 90 seconds
//
// Expressions are evaluated in Config.Location. Matches are checked once per
// tick, and a match missed while the worker was busy fires once, late.
// Cancel the entry through the returned handle, as for SchedulePeriodic.
func (s *Scheduler) ScheduleCron(expr string, t task.Task) (*periodic.Handle, error) {
	schedule, err := s.parseCron(expr)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state >= StateStopping {
		s.mu.Unlock()
		return nil, tlerrors.ErrStopped
	}
	h, err := s.registry.RegisterSchedule(expr, schedule, t)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.registered(h, metrics.KindCron, logx.String("cron", expr))
	return h, nil
}

// ScheduleCronFunc is ScheduleCron for a plain callback.
func (s *Scheduler) ScheduleCronFunc(expr string, fn func()) (*periodic.Handle, error) {
	return s.ScheduleCron(expr, task.Func(fn))
}

// ValidateCronExpression reports whether expr would be accepted by ScheduleCron.
func (s *Scheduler) ValidateCronExpression(expr string) error {
	_, err := s.parseCron(expr)
	return err
}

func (s *Scheduler) parseCron(expr string) (cron.Schedule, error) {
	if err := validation.ValidateNotEmpty("scheduler", "cron", expr); err != nil {
		return nil, err
	}
	schedule, err := s.cronParser.Parse(expr)
	if err != nil {
		return nil, tlerrors.NewValidationError("scheduler", "cron", expr, err.Error())
	}
	return schedule, nil
}
