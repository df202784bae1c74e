package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsRollingAverage(t *testing.T) {
	m := NewMetrics()
	require.Zero(t, m.FrameTime())

	for i := 0; i < AVG_COUNT; i++ {
		m.Update(0.010)
	}
	require.InDelta(t, 10.0, m.FrameTime(), 1e-6)

	// older samples fall out of the window
	for i := 0; i < AVG_COUNT; i++ {
		m.Update(0.020)
	}
	require.InDelta(t, 20.0, m.FrameTime(), 1e-6)
}

func TestMetricsFPSRollover(t *testing.T) {
	m := NewMetrics()
	rolled := false
	for i := 0; i < 60 && !rolled; i++ {
		rolled = m.Update(1.0 / 50)
	}
	require.True(t, rolled)
	require.Equal(t, 51.0, m.FPS())
}
