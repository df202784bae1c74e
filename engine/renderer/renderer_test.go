package renderer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/spaghettifunk/vkspin/engine/math"
	"github.com/spaghettifunk/vkspin/engine/renderer/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signaledFence struct{}

func (signaledFence) Wait(time.Duration) error { return nil }
func (signaledFence) Reset() error             { return nil }

type fakeBackend struct {
	images     uint32
	initErr    error
	acquireErr []error // consumed one per acquire
	presentErr []error

	acquires  int
	presents  int
	recreated [][2]uint32
	reloads   int
	shutdowns int
	next      uint32
}

func (f *fakeBackend) InFlightFence(uint32) frame.Fence { return signaledFence{} }

func (f *fakeBackend) AcquireNextImage(uint32, time.Duration) (uint32, error) {
	f.acquires++
	if len(f.acquireErr) > 0 {
		err := f.acquireErr[0]
		f.acquireErr = f.acquireErr[1:]
		if err != nil {
			return 0, err
		}
	}
	idx := f.next
	f.next = (f.next + 1) % f.images
	return idx, nil
}

func (f *fakeBackend) UpdateUniforms(uint32, *frame.UniformBufferObject) error { return nil }
func (f *fakeBackend) RecordCommands(uint32, uint32, math.Mat4) error         { return nil }
func (f *fakeBackend) Submit(uint32) error                                    { return nil }

func (f *fakeBackend) Present(uint32, uint32) error {
	f.presents++
	if len(f.presentErr) > 0 {
		err := f.presentErr[0]
		f.presentErr = f.presentErr[1:]
		return err
	}
	return nil
}

func (f *fakeBackend) Extent() math.Extents2D { return math.Extents2D{Width: 800, Height: 600} }
func (f *fakeBackend) Initialize(_, _ []uint32) error { return f.initErr }
func (f *fakeBackend) ImageCount() uint32             { return f.images }

func (f *fakeBackend) RecreateSwapchain(width, height uint32) error {
	f.recreated = append(f.recreated, [2]uint32{width, height})
	f.next = 0
	return nil
}

func (f *fakeBackend) ReloadPipeline(_, _ []uint32) error {
	f.reloads++
	return nil
}

func (f *fakeBackend) WaitIdle() error { return nil }

func (f *fakeBackend) Shutdown() error {
	f.shutdowns++
	return nil
}

func staleErr() error {
	return core.Errorf(core.KindSwapchainStale, "vkAcquireNextImageKHR", "out of date")
}

func newRenderer(t *testing.T, backend *fakeBackend, size *[2]uint32) *Renderer {
	t.Helper()
	r := New(backend, func() (uint32, uint32) { return size[0], size[1] }, Config{FramesInFlight: 2})
	require.NoError(t, r.Initialize(nil, nil))
	return r
}

func TestDrawFrameBeforeInitialize(t *testing.T) {
	r := New(&fakeBackend{images: 3}, func() (uint32, uint32) { return 1, 1 }, Config{FramesInFlight: 2})
	require.ErrorIs(t, r.DrawFrame(context.Background(), 0), core.ErrNotInitialized)
}

func TestInitializeErrors(t *testing.T) {
	r := New(&fakeBackend{images: 3}, nil, Config{})
	err := r.Initialize(nil, nil)
	require.ErrorIs(t, err, core.ErrInvalidFrameConfig)

	boom := errors.New("boom")
	r = New(&fakeBackend{images: 3, initErr: boom}, nil, Config{FramesInFlight: 2})
	require.ErrorIs(t, r.Initialize(nil, nil), boom)

	backend := &fakeBackend{images: 0}
	r = New(backend, nil, Config{FramesInFlight: 2})
	require.Error(t, r.Initialize(nil, nil))
	assert.Equal(t, 1, backend.shutdowns, "backend is released when the orchestrator cannot be built")
}

func TestStaleAcquireRecreatesBeforeNextFrame(t *testing.T) {
	backend := &fakeBackend{images: 3, acquireErr: []error{nil, staleErr()}}
	size := [2]uint32{800, 600}
	r := newRenderer(t, backend, &size)
	ctx := context.Background()

	require.NoError(t, r.DrawFrame(ctx, 0))
	require.Equal(t, uint32(1), r.CurrentFrame())

	require.NoError(t, r.DrawFrame(ctx, 0.1), "stale swapchain is recoverable")
	assert.Equal(t, uint32(1), r.CurrentFrame(), "abandoned frame does not advance")
	assert.Empty(t, backend.recreated)

	var hooked []uint32
	r.OnSwapchainRecreated(func(w, h uint32) { hooked = append(hooked, w, h) })

	size = [2]uint32{1024, 768}
	require.NoError(t, r.DrawFrame(ctx, 0.2))
	assert.Equal(t, []uint32{800, 600}, hooked, "hook gets the backend extent")
	assert.Equal(t, [][2]uint32{{1024, 768}}, backend.recreated)
	assert.Equal(t, uint32(0), r.CurrentFrame())
	assert.Equal(t, uint64(2), r.Frames())
}

func TestStalePresentAdvancesAndRecreates(t *testing.T) {
	backend := &fakeBackend{images: 2, presentErr: []error{staleErr()}}
	size := [2]uint32{800, 600}
	r := newRenderer(t, backend, &size)
	ctx := context.Background()

	require.NoError(t, r.DrawFrame(ctx, 0))
	assert.Equal(t, uint32(1), r.CurrentFrame())

	require.NoError(t, r.DrawFrame(ctx, 0))
	assert.Len(t, backend.recreated, 1)
	assert.Equal(t, 2, backend.presents)
}

func TestZeroSizedFramebufferSkips(t *testing.T) {
	backend := &fakeBackend{images: 3}
	size := [2]uint32{0, 600}
	r := newRenderer(t, backend, &size)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.DrawFrame(ctx, float64(i)))
	}
	assert.Zero(t, backend.acquires)
	assert.Zero(t, r.Frames())

	size = [2]uint32{640, 480}
	require.NoError(t, r.DrawFrame(ctx, 4))
	assert.Equal(t, [][2]uint32{{640, 480}}, backend.recreated)
	assert.Equal(t, uint64(1), r.Frames())
}

func TestFatalFrameErrorPropagates(t *testing.T) {
	lost := core.Errorf(core.KindDeviceLost, "vkQueueSubmit", "device lost")
	backend := &fakeBackend{images: 3, acquireErr: []error{lost}}
	size := [2]uint32{800, 600}
	r := newRenderer(t, backend, &size)

	err := r.DrawFrame(context.Background(), 0)
	require.ErrorIs(t, err, core.ErrDeviceLost)
}

func TestReloadAndShutdown(t *testing.T) {
	backend := &fakeBackend{images: 3}
	size := [2]uint32{800, 600}
	r := newRenderer(t, backend, &size)

	require.NoError(t, r.ReloadShaders([]uint32{1}, []uint32{2}))
	assert.Equal(t, 1, backend.reloads)

	require.NoError(t, r.Shutdown())
	require.NoError(t, r.Shutdown())
	assert.Equal(t, 1, backend.shutdowns)
	require.ErrorIs(t, r.ReloadShaders(nil, nil), core.ErrNotInitialized)
}
