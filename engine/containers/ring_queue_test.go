package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingQueue(t *testing.T) {
	rq := NewRingQueue[int](2)
	require.True(t, rq.IsEmpty())

	_, err := rq.Dequeue()
	require.ErrorIs(t, err, ErrQueueEmpty)

	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.ErrorIs(t, rq.Enqueue(3), ErrQueueFull)
	require.Equal(t, 2, rq.Len())

	v, err := rq.Dequeue()
	require.NoError(t, err)
	require.Equal(t, 1, v)

	// wraps around
	require.NoError(t, rq.Enqueue(3))
	v, _ = rq.Peek()
	require.Equal(t, 2, v)
	v, _ = rq.Dequeue()
	require.Equal(t, 2, v)
	v, _ = rq.Dequeue()
	require.Equal(t, 3, v)
	require.True(t, rq.IsEmpty())
}
