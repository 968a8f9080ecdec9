// Package config loads scheduler, logging and metrics settings from a YAML or
// JSON file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tlerrors "github.com/vnykmshr/taskloop/pkg/common/errors"
	"github.com/vnykmshr/taskloop/pkg/common/validation"
	"github.com/vnykmshr/taskloop/pkg/logx"
	"github.com/vnykmshr/taskloop/pkg/metrics"
	"github.com/vnykmshr/taskloop/pkg/scheduling/scheduler"
)

// File is the on-disk configuration document.
type File struct {
	Scheduler SchedulerSection `json:"scheduler"`
	Logging   LoggingSection   `json:"logging"`
	Metrics   MetricsSection   `json:"metrics"`
}

type SchedulerSection struct {
	Name         string          `json:"name"`
	TickInterval string          `json:"tick_interval"`
	Location     string          `json:"location"`
	ErrorLog     ErrorLogSection `json:"error_log"`
}

type ErrorLogSection struct {
	// Rate is log lines per second; negative disables the limit.
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

type LoggingSection struct {
	Level   string `json:"level"`
	Console *bool  `json:"console"`
	File    struct {
		Enabled bool   `json:"enabled"`
		Path    string `json:"path"`
	} `json:"file"`
}

type MetricsSection struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace"`
	Listen    string `json:"listen"`
}

// Load reads and strictly decodes the file at path. The format is chosen by
// extension: .yaml and .yml are YAML, anything else is JSON. Unknown fields
// are rejected.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, tlerrors.NewOperationError("config", "Load", err).WithContext(path)
	}
	f, err := Parse(path, b)
	if err != nil {
		return nil, tlerrors.NewOperationError("config", "Load", err).WithContext(path)
	}
	return f, nil
}

// Parse decodes data; path only selects the format.
func Parse(path string, data []byte) (*File, error) {
	jb, err := coerceToJSON(path, data)
	if err != nil {
		return nil, err
	}

	var f File
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if _, err := f.tickInterval(); err != nil {
		return err
	}
	if _, err := f.location(); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("config", "scheduler.error_log.burst", f.Scheduler.ErrorLog.Burst); err != nil {
		return err
	}
	if f.Logging.File.Enabled {
		if err := validation.ValidateNotEmpty("config", "logging.file.path", strings.TrimSpace(f.Logging.File.Path)); err != nil {
			return err
		}
	}
	return nil
}

// tickInterval parses scheduler.tick_interval. Empty means the scheduler
// default; anything else must fall inside the scheduler's accepted range.
func (f *File) tickInterval() (time.Duration, error) {
	raw := strings.TrimSpace(f.Scheduler.TickInterval)
	if raw == "" {
		return scheduler.DefaultTickInterval, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, tlerrors.NewValidationError("config", "scheduler.tick_interval", raw, err.Error()).
			WithHint("use a Go duration such as \"5ms\"")
	}
	if err := validation.ValidateDurationRange("config", "scheduler.tick_interval", d,
		scheduler.MinTickInterval, scheduler.MaxTickInterval); err != nil {
		return 0, err
	}
	return d, nil
}

// location resolves scheduler.location; empty leaves the scheduler default.
func (f *File) location() (*time.Location, error) {
	name := strings.TrimSpace(f.Scheduler.Location)
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, tlerrors.NewValidationError("config", "scheduler.location", name, err.Error()).
			WithHint("use an IANA zone name such as \"Europe/Berlin\" or \"UTC\"")
	}
	return loc, nil
}

// SchedulerConfig converts the scheduler section. Logger, Metrics and
// OnError are left for the caller to set.
func (f *File) SchedulerConfig() (scheduler.Config, error) {
	tick, err := f.tickInterval()
	if err != nil {
		return scheduler.Config{}, err
	}
	loc, err := f.location()
	if err != nil {
		return scheduler.Config{}, err
	}
	return scheduler.Config{
		Name:          f.Scheduler.Name,
		TickInterval:  tick,
		Location:      loc,
		ErrorLogRate:  f.Scheduler.ErrorLog.Rate,
		ErrorLogBurst: f.Scheduler.ErrorLog.Burst,
	}, nil
}

// LogConfig converts the logging section. Console output defaults to on.
func (f *File) LogConfig() logx.Config {
	console := true
	if f.Logging.Console != nil {
		console = *f.Logging.Console
	}
	return logx.Config{
		Level:   f.Logging.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled: f.Logging.File.Enabled,
			Path:    f.Logging.File.Path,
		},
	}
}

// MetricsConfig converts the metrics section. The registry is left nil,
// which selects the default Prometheus registerer.
func (f *File) MetricsConfig() metrics.Config {
	ns := f.Metrics.Namespace
	if ns == "" {
		ns = metrics.DefaultNamespace
	}
	return metrics.Config{
		Enabled:   f.Metrics.Enabled,
		Namespace: ns,
	}
}
