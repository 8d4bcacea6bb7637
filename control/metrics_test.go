package control_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/wsupgrade/control"
)

func TestMetricsRegistryCounters(t *testing.T) {
	mr := control.NewMetricsRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mr.Add(control.MetricHandshakeOK, 1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 800, mr.Counter(control.MetricHandshakeOK))
	require.False(t, mr.Updated().IsZero())

	mr.Set(control.MetricLastStatus, "upgraded")
	snap := mr.GetSnapshot()
	require.Equal(t, int64(800), snap[control.MetricHandshakeOK])
	require.Equal(t, "upgraded", snap[control.MetricLastStatus])
}

func TestMetricsRegistryNil(t *testing.T) {
	var mr *control.MetricsRegistry
	mr.Set("x", 1)
	require.Zero(t, mr.Add("x", 1))
	require.Zero(t, mr.Counter("x"))
}

func TestFailureKey(t *testing.T) {
	require.Equal(t, "handshake.failed.too_many_headers", control.FailureKey("too_many_headers"))
}

func TestDebugProbes(t *testing.T) {
	mr := control.NewMetricsRegistry()
	mr.Add(control.MetricLeftoverBytes, 7)

	dp := control.NewDebugProbes()
	dp.RegisterMetrics("metrics", mr)
	dp.RegisterProbe("custom", func() any { return 42 })

	require.Equal(t, []string{"custom", "metrics", "runtime.goroutines", "runtime.os"}, dp.Names())
	state := dp.DumpState()
	require.Equal(t, 42, state["custom"])
	require.Equal(t, int64(7), state["metrics"].(map[string]any)[control.MetricLeftoverBytes])
}
