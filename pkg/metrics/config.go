package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registerer to use. If nil, the collectors are
	// registered once per namespace on prometheus.DefaultRegisterer and shared.
	Registry prometheus.Registerer

	// Namespace overrides the default "taskloop" namespace for metrics.
	Namespace string
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: DefaultNamespace,
	}
}

// Build returns the Registry described by c, or nil when metrics are disabled.
// A custom Registry gets fresh collectors and must not be built twice.
func (c Config) Build() *Registry {
	if !c.Enabled {
		return nil
	}
	if c.Registry == nil {
		return DefaultWithNamespace(c.Namespace)
	}
	return NewRegistryWithNamespace(c.Registry, c.Namespace)
}
