package adapters_test

import (
	"testing"

	"github.com/momentics/hioload-kv/adapters"
	"github.com/momentics/hioload-kv/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlAdapterBasic(t *testing.T) {
	store := control.NewConfigStore(control.DefaultConfig())
	metrics := control.NewMetrics()
	ctrl := adapters.NewControlAdapter(store, metrics, control.NewDebugProbes())

	metrics.CommandsTotal.Add(3)
	ctrl.RegisterDebugProbe("test_probe", func() any { return "ok" })

	stats := ctrl.Stats()
	assert.Equal(t, 3.0, stats["hioloadkv_commands_processed_total"])
	assert.Equal(t, "ok", stats["debug.test_probe"])

	called := false
	ctrl.OnReload(func() { called = true })
	cfg := control.DefaultConfig()
	cfg.Port = 7777
	require.NoError(t, store.Set(cfg))
	assert.True(t, called, "reload hook not called")
}
