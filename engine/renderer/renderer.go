package renderer

import (
	"context"
	"errors"
	"time"

	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/spaghettifunk/vkspin/engine/renderer/frame"
)

type Config struct {
	FramesInFlight uint32
	FenceTimeout   time.Duration
	AcquireTimeout time.Duration
}

// FramebufferSizeFunc reports the drawable size of the window in pixels.
type FramebufferSizeFunc func() (width, height uint32)

// Renderer is the frontend the engine talks to. It owns the frame
// orchestrator and turns a stale swapchain into a rebuild before the next
// frame.
type Renderer struct {
	backend         RendererBackend
	framebufferSize FramebufferSizeFunc
	config          Config

	orchestrator    *frame.Orchestrator
	recreatePending bool
	skipped         bool
	onRecreate      func(width, height uint32)
}

func New(backend RendererBackend, framebufferSize FramebufferSizeFunc, cfg Config) *Renderer {
	return &Renderer{
		backend:         backend,
		framebufferSize: framebufferSize,
		config:          cfg,
	}
}

func (r *Renderer) Initialize(vert, frag []uint32) error {
	if r.config.FramesInFlight == 0 {
		return core.NewError(core.KindCreation, "renderer.initialize", core.ErrInvalidFrameConfig)
	}
	if err := r.backend.Initialize(vert, frag); err != nil {
		return err
	}
	orchestrator, err := frame.NewOrchestrator(r.backend, frame.Config{
		FramesInFlight: r.config.FramesInFlight,
		ImageCount:     r.backend.ImageCount(),
		FenceTimeout:   r.config.FenceTimeout,
		AcquireTimeout: r.config.AcquireTimeout,
	})
	if err != nil {
		_ = r.backend.Shutdown()
		return err
	}
	r.orchestrator = orchestrator
	core.LogInfo("Renderer initialized with %d frames in flight.", r.config.FramesInFlight)
	return nil
}

// DrawFrame renders one frame. A stale swapchain is not an error here: the
// swapchain is rebuilt before the next frame is drawn. Nothing is drawn
// while the framebuffer has no area.
func (r *Renderer) DrawFrame(ctx context.Context, seconds float64) error {
	if r.orchestrator == nil {
		return core.ErrNotInitialized
	}

	width, height := r.framebufferSize()
	if width == 0 || height == 0 {
		if !r.skipped {
			core.LogDebug("Framebuffer has no area, skipping frames.")
		}
		r.skipped = true
		return nil
	}
	if r.skipped {
		r.skipped = false
		r.recreatePending = true
	}

	if r.recreatePending {
		if err := r.RecreateSwapchain(width, height); err != nil {
			return err
		}
	}

	err := r.orchestrator.DrawFrame(ctx, seconds)
	if errors.Is(err, core.ErrSwapchainStale) {
		core.LogDebug("Swapchain is stale (%s), recreating before the next frame.", err)
		r.recreatePending = true
		return nil
	}
	return err
}

// RecreateSwapchain rebuilds the swapchain and forgets which fences were
// rendering to the old images.
func (r *Renderer) RecreateSwapchain(width, height uint32) error {
	if r.orchestrator == nil {
		return core.ErrNotInitialized
	}
	if err := r.backend.RecreateSwapchain(width, height); err != nil {
		return err
	}
	r.orchestrator.Reset(r.backend.ImageCount())
	r.recreatePending = false
	if r.onRecreate != nil {
		extent := r.backend.Extent()
		r.onRecreate(extent.Width, extent.Height)
	}
	return nil
}

// OnSwapchainRecreated registers fn to run after every rebuild with the new
// extent.
func (r *Renderer) OnSwapchainRecreated(fn func(width, height uint32)) {
	r.onRecreate = fn
}

// ReloadShaders is called between frames.
func (r *Renderer) ReloadShaders(vert, frag []uint32) error {
	if r.orchestrator == nil {
		return core.ErrNotInitialized
	}
	return r.backend.ReloadPipeline(vert, frag)
}

func (r *Renderer) CurrentFrame() uint32 {
	if r.orchestrator == nil {
		return 0
	}
	return r.orchestrator.CurrentFrame()
}

func (r *Renderer) Frames() uint64 {
	if r.orchestrator == nil {
		return 0
	}
	return r.orchestrator.Frames()
}

// Shutdown releases the backend. Calling it again is a no-op.
func (r *Renderer) Shutdown() error {
	if r.orchestrator == nil {
		return nil
	}
	r.orchestrator = nil
	return r.backend.Shutdown()
}
