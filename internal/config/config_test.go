package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vnykmshr/taskloop/internal/testutil"
	tlerrors "github.com/vnykmshr/taskloop/pkg/common/errors"
	"github.com/vnykmshr/taskloop/pkg/metrics"
	"github.com/vnykmshr/taskloop/pkg/scheduling/scheduler"
)

const sampleYAML = `
scheduler:
  name: demo
  tick_interval: 2ms
  location: UTC
  error_log:
    rate: 5
    burst: 10
logging:
  level: debug
  console: false
  file:
    enabled: true
    path: /tmp/taskloop.log
metrics:
  enabled: true
  namespace: demo
  listen: ":9090"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	f, err := Load(writeFile(t, "taskloop.yaml", sampleYAML))
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, f.Scheduler.Name, "demo")
	testutil.AssertEqual(t, f.Metrics.Listen, ":9090")

	cfg, err := f.SchedulerConfig()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Name, "demo")
	testutil.AssertEqual(t, cfg.TickInterval, 2*time.Millisecond)
	testutil.AssertEqual(t, cfg.Location, time.UTC)
	testutil.AssertEqual(t, cfg.ErrorLogRate, 5.0)
	testutil.AssertEqual(t, cfg.ErrorLogBurst, 10)

	logCfg := f.LogConfig()
	testutil.AssertEqual(t, logCfg.Level, "debug")
	testutil.AssertEqual(t, logCfg.Console, false)
	testutil.AssertEqual(t, logCfg.File.Enabled, true)
	testutil.AssertEqual(t, logCfg.File.Path, "/tmp/taskloop.log")

	mCfg := f.MetricsConfig()
	testutil.AssertEqual(t, mCfg.Enabled, true)
	testutil.AssertEqual(t, mCfg.Namespace, "demo")
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "taskloop.json", `{"scheduler": {"tick_interval": "10ms"}, "logging": {"level": "warn"}}`)

	f, err := Load(path)
	testutil.AssertNoError(t, err)

	cfg, err := f.SchedulerConfig()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.TickInterval, 10*time.Millisecond)
	testutil.AssertEqual(t, f.LogConfig().Level, "warn")
}

func TestDefaults(t *testing.T) {
	f, err := Parse("empty.yaml", nil)
	testutil.AssertNoError(t, err)

	cfg, err := f.SchedulerConfig()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.TickInterval, scheduler.DefaultTickInterval)
	if cfg.Location != nil {
		t.Errorf("expected nil location, got %v", cfg.Location)
	}

	testutil.AssertEqual(t, f.LogConfig().Console, true)
	testutil.AssertEqual(t, f.MetricsConfig().Enabled, false)
	testutil.AssertEqual(t, f.MetricsConfig().Namespace, metrics.DefaultNamespace)

	// The converted config must be accepted as is.
	_, err = scheduler.NewWithConfig(cfg)
	testutil.AssertNoError(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		wantErr string
	}{
		{"unknown field", "c.yaml", "scheduler:\n  tick: 5ms\n", "unknown field"},
		{"unknown section", "c.json", `{"workers": 4}`, "unknown field"},
		{"bad duration", "c.yaml", "scheduler:\n  tick_interval: soon\n", "scheduler.tick_interval"},
		{"negative duration", "c.yaml", "scheduler:\n  tick_interval: -5ms\n", "scheduler.tick_interval"},
		{"tick out of range", "c.yaml", "scheduler:\n  tick_interval: 50ms\n", "scheduler.tick_interval"},
		{"blank file path", "c.yaml", "logging:\n  file:\n    enabled: true\n    path: \"  \"\n", "logging.file.path"},
		{"bad location", "c.yaml", "scheduler:\n  location: Mars/Olympus\n", "scheduler.location"},
		{"negative burst", "c.yaml", "scheduler:\n  error_log:\n    burst: -1\n", "scheduler.error_log.burst"},
		{"file without path", "c.yaml", "logging:\n  file:\n    enabled: true\n", "logging.file.path"},
		{"trailing json", "c.json", `{} {}`, "trailing data"},
		{"invalid yaml", "c.yml", "scheduler: [", "yaml unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path, []byte(tt.content))
			testutil.AssertError(t, err)
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertErrorIs(t, err, os.ErrNotExist)
	if !strings.Contains(err.Error(), "config.Load failed") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"", scheduler.DefaultTickInterval, false},
		{"  ", scheduler.DefaultTickInterval, false},
		{"1ms", time.Millisecond, false},
		{" 10ms ", 10 * time.Millisecond, false},
		{"0s", 0, true},
		{"20ms", 0, true},
		{"500us", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f := &File{Scheduler: SchedulerSection{TickInterval: tt.raw}}
			got, err := f.tickInterval()
			if tt.wantErr {
				testutil.AssertErrorIs(t, err, tlerrors.ErrInvalidConfiguration)
				if !strings.Contains(err.Error(), "scheduler.tick_interval") {
					t.Errorf("expected field path in %v", err)
				}
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, got, tt.want)
		})
	}
}
