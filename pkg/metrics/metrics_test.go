package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistryWithNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistryWithNamespace(reg, "myapp")

	r.TasksExecuted.WithLabelValues("s", KindPeriodic).Inc()
	r.PeriodicCanceled.WithLabelValues("s").Inc()

	if got := testutil.ToFloat64(r.TasksExecuted.WithLabelValues("s", KindPeriodic)); got != 1 {
		t.Errorf("tasks_executed = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["myapp_scheduler_tasks_executed_total"] {
		t.Errorf("namespace not applied, got %v", names)
	}
}

func TestConfigBuild(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := Config{Enabled: true, Registry: reg}.Build()
	if r == nil {
		t.Fatal("expected registry")
	}
	r.QueueDepth.WithLabelValues("x").Set(4)
	if got := testutil.ToFloat64(r.QueueDepth.WithLabelValues("x")); got != 4 {
		t.Errorf("queue_depth = %v, want 4", got)
	}

	if (Config{}).Build() != nil {
		t.Error("disabled config should build nil registry")
	}
}

func TestDefaultIsShared(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same registry")
	}
	if (Config{Enabled: true}).Build() != Default() {
		t.Error("nil Registerer should resolve to Default()")
	}
}

func TestDefaultConfigBuildDoesNotCollide(t *testing.T) {
	// Both resolve to the shared default-registerer collectors; a second
	// registration would panic.
	built := DefaultConfig().Build()
	if built != Default() {
		t.Error("DefaultConfig().Build() should share Default()")
	}
	if DefaultConfig().Registry != nil {
		t.Error("DefaultConfig should leave Registry nil")
	}
}

func TestBuildKeepsNamespaceOnDefaultRegisterer(t *testing.T) {
	r := Config{Enabled: true, Namespace: "billing"}.Build()
	if r == Default() {
		t.Fatal("custom namespace must not resolve to the taskloop registry")
	}
	if again := (Config{Enabled: true, Namespace: "billing"}).Build(); again != r {
		t.Error("same namespace should be shared")
	}

	r.QueueDepth.WithLabelValues("ns-test").Set(2)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "billing_scheduler_queue_depth" {
			found = true
		}
	}
	if !found {
		t.Error("expected billing_scheduler_queue_depth on the default registry")
	}
}
