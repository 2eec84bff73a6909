// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control interface using control package primitives.

package adapters

import (
	"github.com/momentics/hioload-kv/api"
	"github.com/momentics/hioload-kv/control"
)

type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.Metrics
	debug   api.Debug
}

// NewControlAdapter combines a config store, metrics and debug probes.
func NewControlAdapter(cs *control.ConfigStore, m *control.Metrics, dp api.Debug) api.Control {
	return &ControlAdapter{
		config:  cs,
		metrics: m,
		debug:   dp,
	}
}

// Stats merges metric values with probe output under a "debug." prefix.
func (c *ControlAdapter) Stats() map[string]any {
	combined := make(map[string]any)
	if snap, err := c.metrics.Snapshot(); err == nil {
		for k, v := range snap {
			combined[k] = v
		}
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(func(control.Config) { fn() })
}

func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}
