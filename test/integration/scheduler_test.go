// Package integration contains integration tests that verify cross-package functionality.
// These tests ensure that different components work together correctly in realistic scenarios.
package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/taskloop/internal/config"
	"github.com/vnykmshr/taskloop/internal/testutil"
	"github.com/vnykmshr/taskloop/pkg/logx"
	"github.com/vnykmshr/taskloop/pkg/metrics"
	"github.com/vnykmshr/taskloop/pkg/scheduling/scheduler"
	"github.com/vnykmshr/taskloop/pkg/scheduling/task"
)

const configYAML = `
scheduler:
  name: integration
  tick_interval: 1ms
  error_log:
    rate: -1
logging:
  level: debug
  console: false
metrics:
  enabled: true
`

// newFromConfig builds a running scheduler the way an application would:
// file -> typed config -> logger, metrics and scheduler.
func newFromConfig(t *testing.T, w *testutil.MockWriter) (*scheduler.Scheduler, *metrics.Registry) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "taskloop.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	file, err := config.Load(path)
	testutil.AssertNoError(t, err)

	cfg, err := file.SchedulerConfig()
	testutil.AssertNoError(t, err)

	mc := file.MetricsConfig()
	mc.Registry = prometheus.NewRegistry()
	m := mc.Build()

	cfg.Metrics = m
	cfg.Logger = logx.NewJSON(w, file.LogConfig().Level)

	s, err := scheduler.NewWithConfig(cfg)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.Start())
	t.Cleanup(func() { s.Stop() })
	return s, m
}

// TestConsumerScenario runs the append/periodic/finish flow end to end.
func TestConsumerScenario(t *testing.T) {
	w := testutil.NewMockWriter()
	s, m := newFromConfig(t, w)

	// data is only touched on the worker.
	var data []float64
	var fires int32

	testutil.AssertNoError(t, s.ScheduleFunc(func() { data = append(data, 5) }))
	testutil.AssertNoError(t, s.ScheduleFunc(func() { data = append(data, 6) }))

	h, err := s.SchedulePeriodicFunc(20*time.Millisecond, func() {
		data = append(data, float64(len(data)))
		atomic.AddInt32(&fires, 1)
	})
	testutil.AssertNoError(t, err)

	testutil.WaitForInt32(t, &fires, 3, 2*time.Second)
	h.Finish()

	testutil.Eventually(t, func() bool {
		return s.Stats().PeriodicEntries == 0
	}, time.Second, time.Millisecond)

	done := make(chan []float64)
	s.ScheduleFunc(func() { done <- append([]float64(nil), data...) })
	got := <-done

	if len(got) < 5 {
		t.Fatalf("expected at least 5 values, got %v", got)
	}
	testutil.AssertEqual(t, got[0], 5.0)
	testutil.AssertEqual(t, got[1], 6.0)
	// Each periodic run appends the length before the append.
	for i := 2; i < len(got); i++ {
		testutil.AssertEqual(t, got[i], float64(i))
	}

	testutil.AssertEqual(t, promtest.ToFloat64(m.PeriodicCanceled.WithLabelValues("integration")), 1.0)
	testutil.AssertEqual(t, promtest.ToFloat64(m.TasksExecuted.WithLabelValues("integration", metrics.KindPeriodic)),
		float64(atomic.LoadInt32(&fires)))

	s.Stop()
	if !strings.Contains(w.String(), `"scheduler":"integration"`) {
		t.Errorf("expected scheduler field in logs, got %s", w.String())
	}
	if !strings.Contains(w.String(), "scheduler stopped") {
		t.Errorf("expected stop log line, got %s", w.String())
	}
}

// TestFailuresAreLoggedAndCounted verifies the error path across logging and metrics.
func TestFailuresAreLoggedAndCounted(t *testing.T) {
	w := testutil.NewMockWriter()
	s, m := newFromConfig(t, w)

	var after int32
	s.Schedule(task.TaskFunc(func(ctx context.Context) error { return errors.New("upstream unavailable") }))
	s.ScheduleFunc(func() { panic("nil map write") })
	s.ScheduleFunc(func() { atomic.AddInt32(&after, 1) })

	testutil.WaitForInt32(t, &after, 1, time.Second)
	s.Stop()

	testutil.AssertEqual(t, promtest.ToFloat64(m.TasksFailed.WithLabelValues("integration", metrics.KindOneShot)), 2.0)

	logs := w.String()
	for _, want := range []string{"task failed", "upstream unavailable", "task panicked", "nil map write", "stack"} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected %q in logs", want)
		}
	}
}

// TestManyProducers verifies ordering per producer with concurrent submitters.
func TestManyProducers(t *testing.T) {
	s, _ := newFromConfig(t, testutil.NewMockWriter())

	const producers, perProducer = 8, 200

	// Only the worker appends, so no lock is needed inside tasks; the
	// mutex guards the final read from the test goroutine.
	var mu sync.Mutex
	seen := make(map[int][]int)
	var total int64

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				i := i
				s.ScheduleFunc(func() {
					mu.Lock()
					seen[p] = append(seen[p], i)
					mu.Unlock()
					atomic.AddInt64(&total, 1)
				})
			}
		}(p)
	}
	wg.Wait()

	testutil.WaitForInt64(t, &total, producers*perProducer, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	for p, values := range seen {
		for i, v := range values {
			if v != i {
				t.Fatalf("producer %d: out of order at %d: got %d", p, i, v)
			}
		}
	}
}
