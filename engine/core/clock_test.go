package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := &Clock{now: func() time.Time { return now }}

	c.Update()
	require.Zero(t, c.Elapsed(), "a stopped clock does not move")

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	require.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	require.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}
