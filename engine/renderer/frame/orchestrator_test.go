package frame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vkspin/engine/core"
)

func newTestOrchestrator(t *testing.T, gpu *fakeGPU, imageCount uint32) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(gpu, Config{
		FramesInFlight: uint32(len(gpu.fences)),
		ImageCount:     imageCount,
		FenceTimeout:   time.Second,
		AcquireTimeout: time.Second,
	})
	require.NoError(t, err)
	return o
}

func TestNewOrchestratorRejectsZeroFrames(t *testing.T) {
	_, err := NewOrchestrator(newFakeGPU(1, 0), Config{FramesInFlight: 0, ImageCount: 2})
	require.ErrorIs(t, err, core.ErrCreation)
	require.ErrorIs(t, err, core.ErrInvalidFrameConfig)
}

func TestCursorAdvancesModuloN(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		gpu := newFakeGPU(n, 0, 1, 2)
		o := newTestOrchestrator(t, gpu, 3)
		for f := 1; f <= 10; f++ {
			require.NoError(t, o.DrawFrame(context.Background(), float64(f)/60))
			require.Equal(t, uint32(f%n), o.CurrentFrame(), "N=%d F=%d", n, f)
			require.Equal(t, uint64(f), o.Frames())
			require.Equal(t, StateIdle, o.State())
		}
	}
}

func TestNoSlotWrittenWhileInFlight(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		images []uint32
	}{
		{"two slots three images", 2, []uint32{0, 1, 2}},
		{"two slots two images", 2, []uint32{0, 1}},
		{"three slots two images", 3, []uint32{0, 1}},
		{"images out of order", 2, []uint32{2, 0, 0, 1, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gpu := newFakeGPU(tt.n, tt.images...)
			o := newTestOrchestrator(t, gpu, 3)
			for f := 0; f < 24; f++ {
				require.NoError(t, o.DrawFrame(context.Background(), float64(f)))
			}
			require.Empty(t, gpu.violations)
			require.LessOrEqual(t, gpu.maxBusy, tt.n)
		})
	}
}

func TestImageMapHoldsLatestFence(t *testing.T) {
	images := []uint32{0, 1, 2, 2, 1, 0, 1}
	gpu := newFakeGPU(2, images...)
	o := newTestOrchestrator(t, gpu, 3)

	for _, img := range images {
		slot := o.CurrentFrame()
		require.NoError(t, o.DrawFrame(context.Background(), 0))
		require.Same(t, gpu.fences[slot], o.ImageFence(img))
	}
}

func TestScenarioImagesZeroOneZero(t *testing.T) {
	gpu := newFakeGPU(2, 0, 1, 0)
	o := newTestOrchestrator(t, gpu, 2)

	var cursors []uint32
	for i := 0; i < 3; i++ {
		if i == 2 {
			require.Same(t, gpu.fences[0], o.ImageFence(0), "image 0 last rendered by frame 1")
			gpu.events = nil
		}
		cursors = append(cursors, o.CurrentFrame())
		require.NoError(t, o.DrawFrame(context.Background(), 0))
	}

	require.Equal(t, []uint32{0, 1, 0}, cursors)
	require.Equal(t, []string{
		"wait:0",
		"acquire:0",
		"wait:0", // image 0 is still held by frame 1's fence
		"reset:0",
		"update:0",
		"record:0:0",
		"submit:0",
		"present:0",
	}, gpu.events)
	require.Empty(t, gpu.violations)
}

func TestWaitsOnOtherSlotsFenceBeforeImageReuse(t *testing.T) {
	// three slots, the third frame reuses image 0 from slot 0
	gpu := newFakeGPU(3, 0, 1, 0)
	o := newTestOrchestrator(t, gpu, 2)

	require.NoError(t, o.DrawFrame(context.Background(), 0))
	require.NoError(t, o.DrawFrame(context.Background(), 0))
	require.False(t, gpu.fences[0].signaled)

	gpu.events = nil
	require.NoError(t, o.DrawFrame(context.Background(), 0))
	require.Equal(t, []string{"wait:2", "acquire:0", "wait:0", "reset:2"}, gpu.events[:4])
	require.True(t, gpu.fences[0].signaled)
	require.Same(t, gpu.fences[2], o.ImageFence(0))
}

func TestAcquireStaleAbandonsFrame(t *testing.T) {
	gpu := newFakeGPU(2, 0, 1)
	o := newTestOrchestrator(t, gpu, 2)
	gpu.acquireErr = core.NewError(core.KindSwapchainStale, "acquire", nil)

	err := o.DrawFrame(context.Background(), 0)
	require.ErrorIs(t, err, core.ErrSwapchainStale)
	require.Equal(t, uint32(0), o.CurrentFrame())
	require.Equal(t, uint64(0), o.Frames())
	require.True(t, gpu.fences[0].signaled, "an abandoned frame keeps its fence signaled")
	require.NotContains(t, gpu.events, "reset:0")

	gpu.acquireErr = nil
	require.NoError(t, o.DrawFrame(context.Background(), 0))
	require.Equal(t, uint32(1), o.CurrentFrame())
}

func TestPresentStaleStillAdvances(t *testing.T) {
	gpu := newFakeGPU(2, 0, 1)
	o := newTestOrchestrator(t, gpu, 2)
	gpu.presentErr = core.NewError(core.KindSwapchainStale, "present", nil)

	err := o.DrawFrame(context.Background(), 0)
	require.ErrorIs(t, err, core.ErrSwapchainStale)
	require.Equal(t, uint32(1), o.CurrentFrame())
	require.Equal(t, uint64(1), o.Frames())
}

func TestOutOfRangeImageIndex(t *testing.T) {
	gpu := newFakeGPU(2, 5)
	o := newTestOrchestrator(t, gpu, 2)
	err := o.DrawFrame(context.Background(), 0)
	require.ErrorIs(t, err, core.ErrFrame)
	require.Equal(t, uint32(0), o.CurrentFrame())
}

func TestCancelledContext(t *testing.T) {
	gpu := newFakeGPU(2, 0)
	o := newTestOrchestrator(t, gpu, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := o.DrawFrame(ctx, 0)
	require.ErrorIs(t, err, core.ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, gpu.events)
}

func TestHungFenceTimesOut(t *testing.T) {
	gpu := newFakeGPU(1, 0)
	o, err := NewOrchestrator(gpu, Config{FramesInFlight: 1, ImageCount: 1, FenceTimeout: 30 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, o.DrawFrame(context.Background(), 0))
	gpu.fences[0].hung = true
	start := time.Now()
	err = o.DrawFrame(context.Background(), 0)
	require.ErrorIs(t, err, core.ErrTimeout)
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, uint32(0), o.CurrentFrame())
}

func TestHungFenceHonoursContextDeadline(t *testing.T) {
	gpu := newFakeGPU(1, 0)
	o, err := NewOrchestrator(gpu, Config{FramesInFlight: 1, ImageCount: 1})
	require.NoError(t, err)

	require.NoError(t, o.DrawFrame(context.Background(), 0))
	gpu.fences[0].hung = true
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = o.DrawFrame(ctx, 0)
	require.ErrorIs(t, err, core.ErrCancelled)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResetClearsImageMap(t *testing.T) {
	gpu := newFakeGPU(2, 0, 1)
	o := newTestOrchestrator(t, gpu, 2)
	require.NoError(t, o.DrawFrame(context.Background(), 0))
	require.NotNil(t, o.ImageFence(0))

	o.Reset(3)
	for i := uint32(0); i < 3; i++ {
		require.Nil(t, o.ImageFence(i))
	}
	require.Nil(t, o.ImageFence(3))
	require.Equal(t, uint32(1), o.CurrentFrame(), "cursor survives a reset")
}

func TestSameTimeProducesIdenticalFrames(t *testing.T) {
	gpu := newFakeGPU(2, 0, 1)
	o := newTestOrchestrator(t, gpu, 2)

	require.NoError(t, o.DrawFrame(context.Background(), 1.25))
	require.NoError(t, o.DrawFrame(context.Background(), 1.25))

	require.Len(t, gpu.mvps, 2)
	require.Equal(t, gpu.mvps[0], gpu.mvps[1])
	require.Equal(t, gpu.uniforms[0].Bytes(), gpu.uniforms[1].Bytes())
}
