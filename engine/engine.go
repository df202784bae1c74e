package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/spaghettifunk/vkspin/engine/assets"
	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/spaghettifunk/vkspin/engine/platform"
	"github.com/spaghettifunk/vkspin/engine/renderer"
	"github.com/spaghettifunk/vkspin/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting-down"
	}
	return "uninitialized"
}

type Engine struct {
	currentStage Stage
	config       *ApplicationConfig
	runID        string

	platform     *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	events       *core.EventBus

	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64

	isRunning     bool
	reloadPending bool
	shutdownOnce  sync.Once
	shutdownErr   error
}

func New(cfg *ApplicationConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := core.NewRunID()
	if err := core.LogInitialize(cfg.LogLevel, runID); err != nil {
		return nil, err
	}

	p := platform.New()
	backend := vulkan.New(p, vulkan.Config{
		AppName:        cfg.Name,
		FramesInFlight: cfg.Renderer.FramesInFlight,
		Validation:     cfg.Renderer.Validation,
		ClearColor:     cfg.Renderer.ClearColor,
		PreferMailbox:  cfg.Renderer.PreferMailbox,
	})

	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		runID:        runID,
		platform:     p,
		assetManager: assets.NewAssetManager(cfg.Assets.ShaderDir, cfg.Assets.Watch),
		renderer: renderer.New(backend, p.FramebufferSize, renderer.Config{
			FramesInFlight: cfg.Renderer.FramesInFlight,
			FenceTimeout:   cfg.Renderer.FenceTimeout.Duration,
			AcquireTimeout: cfg.Renderer.AcquireTimeout.Duration,
		}),
		events:  core.NewEventBus(),
		clock:   core.NewClock(),
		metrics: core.NewMetrics(),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	core.LogInfo("Initializing %s (run %s).", e.config.Name, e.runID)

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_SHADERS_CHANGED, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onEvent)
	e.renderer.OnSwapchainRecreated(func(width, height uint32) {
		e.events.Fire(core.EVENT_CODE_RESIZED, e.renderer, core.EventContext{U32: [4]uint32{width, height}})
	})

	if err := e.platform.Startup(e.config.Name,
		e.config.StartPosX,
		e.config.StartPosY,
		e.config.StartWidth,
		e.config.StartHeight); err != nil {
		return err
	}

	if err := e.assetManager.Initialize(); err != nil {
		return err
	}
	vert, frag, err := e.assetManager.LoadShaders(e.config.Assets.VertexShader, e.config.Assets.FragmentShader)
	if err != nil {
		return core.NewError(core.KindCreation, "load shaders", err)
	}

	if err := e.renderer.Initialize(vert, frag); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized.")
	return nil
}

// Run drives the main loop until the window closes or ctx is cancelled.
// Fatal renderer errors are returned.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return core.ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if ctx.Err() != nil {
			core.LogInfo("Shutdown requested.")
			break
		}

		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e.platform, core.EventContext{})
			continue
		}

		select {
		case <-e.assetManager.Changes():
			e.events.Fire(core.EVENT_CODE_SHADERS_CHANGED, e.assetManager, core.EventContext{})
		default:
		}
		if e.reloadPending {
			e.reloadShaders()
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		frames := e.renderer.Frames()
		if err := e.renderer.DrawFrame(ctx, currentTime); err != nil {
			if errors.Is(err, core.ErrCancelled) {
				core.LogInfo("Frame interrupted by shutdown.")
				break
			}
			core.LogError("DrawFrame failed, shutting down: %s", err)
			return err
		}

		if e.renderer.Frames() > frames && e.metrics.Update(delta) {
			fps, frameTime := e.metrics.Frame()
			core.LogDebug("FPS: %.0f, frame time: %.3fms", fps, frameTime)
		}
		e.lastTime = currentTime
	}
	e.clock.Stop()
	return nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Shutdown releases everything the engine created. It runs once; later
// calls return the first result.
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.currentStage = EngineStageShuttingDown
		e.isRunning = false

		var errs []error
		if err := e.renderer.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		if err := e.assetManager.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		if err := e.platform.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		e.events.Shutdown()
		e.shutdownErr = errors.Join(errs...)
		core.LogInfo("Engine shut down.")
	})
	return e.shutdownErr
}

func (e *Engine) reloadShaders() {
	e.reloadPending = false
	vert, frag, err := e.assetManager.LoadShaders(e.config.Assets.VertexShader, e.config.Assets.FragmentShader)
	if err != nil {
		core.LogError("Shader reload failed, keeping the current pipeline: %s", err)
		return
	}
	if err := e.renderer.ReloadShaders(vert, frag); err != nil {
		core.LogError("Pipeline rebuild failed, keeping the current pipeline: %s", err)
		return
	}
	core.LogInfo("Shaders reloaded from '%s'.", filepath.Clean(e.config.Assets.ShaderDir))
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	case core.EVENT_CODE_SHADERS_CHANGED:
		e.reloadPending = true
		return true
	case core.EVENT_CODE_RESIZED:
		core.LogDebug("Swapchain resized to %dx%d.", data.U32[0], data.U32[1])
		return false
	}
	return false
}
