package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every collector name.
const DefaultNamespace = "taskloop"

// Task kinds used as the "kind" label value.
const (
	KindOneShot  = "oneshot"
	KindPeriodic = "periodic"
	KindCron     = "cron"
)

// Registry holds all Prometheus metrics for the scheduler.
type Registry struct {
	TasksScheduled        *prometheus.CounterVec
	TasksExecuted         *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	QueueDepth            *prometheus.GaugeVec
	PeriodicTasks         *prometheus.GaugeVec
	PeriodicCanceled      *prometheus.CounterVec
	TickDuration          *prometheus.HistogramVec
}

var (
	defaultMu         sync.Mutex
	defaultRegistries = map[string]*Registry{}
)

// Default returns the registry bound to prometheus.DefaultRegisterer,
// creating it on first use.
func Default() *Registry {
	return DefaultWithNamespace(DefaultNamespace)
}

// DefaultWithNamespace returns the registry for namespace on
// prometheus.DefaultRegisterer. Each namespace is registered once and shared
// by later calls.
func DefaultWithNamespace(namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()

	r, ok := defaultRegistries[namespace]
	if !ok {
		r = NewRegistryWithNamespace(prometheus.DefaultRegisterer, namespace)
		defaultRegistries[namespace] = r
	}
	return r
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithNamespace(reg, DefaultNamespace)
}

// NewRegistryWithNamespace is NewRegistry with a custom namespace.
func NewRegistryWithNamespace(reg prometheus.Registerer, namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Registry{
		TasksScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "tasks_scheduled_total",
				Help:      "Total number of tasks accepted by the scheduler",
			},
			[]string{"scheduler", "kind"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "tasks_executed_total",
				Help:      "Total number of task executions",
			},
			[]string{"scheduler", "kind"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "tasks_failed_total",
				Help:      "Total number of task executions that returned an error or panicked",
			},
			[]string{"scheduler", "kind"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing a task on the worker",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"scheduler", "kind"},
		),

		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "queue_depth",
				Help:      "Number of one-shot tasks waiting in the queue",
			},
			[]string{"scheduler"},
		),

		PeriodicTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "periodic_tasks",
				Help:      "Number of registered periodic tasks",
			},
			[]string{"scheduler"},
		),

		PeriodicCanceled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "periodic_canceled_total",
				Help:      "Total number of periodic tasks removed after their handle was finished",
			},
			[]string{"scheduler"},
		),

		TickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "tick_duration_seconds",
				Help:      "Time spent in one worker tick (queue drain plus periodic scan)",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"scheduler"},
		),
	}
}
