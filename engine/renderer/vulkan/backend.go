package vulkan

import (
	"time"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/spaghettifunk/vkspin/engine/math"
	"github.com/spaghettifunk/vkspin/engine/renderer/frame"
)

// Surface is the window collaborator the renderer needs.
type Surface interface {
	RequiredInstanceExtensions() []string
	// CreateWindowSurface returns a VkSurfaceKHR for the given vk.Instance.
	CreateWindowSurface(instance interface{}) (uintptr, error)
	FramebufferSize() (width, height uint32)
	VulkanProcAddr() unsafe.Pointer
}

type Config struct {
	AppName        string
	FramesInFlight uint32
	Validation     bool
	ClearColor     [4]float32
	PreferMailbox  bool
}

// VulkanRenderer implements frame.Backend on top of goki/vulkan.
type VulkanRenderer struct {
	surface Surface
	config  Config
	context *VulkanContext

	initialized bool
}

var _ frame.Backend = (*VulkanRenderer)(nil)

func New(surface Surface, cfg Config) *VulkanRenderer {
	return &VulkanRenderer{
		surface: surface,
		config:  cfg,
		context: &VulkanContext{
			Allocator: nil,
			Device:    &VulkanDevice{},
			Locks:     NewVulkanLockPool(),
		},
	}
}

// Initialize builds every native object in dependency order. On failure
// whatever was created is torn down again before returning.
func (vr *VulkanRenderer) Initialize(vert, frag []uint32) (err error) {
	if vr.config.FramesInFlight == 0 {
		return core.NewError(core.KindCreation, "vulkan.initialize", core.ErrInvalidFrameConfig)
	}
	defer func() {
		if err != nil {
			core.LogError("Vulkan renderer initialization failed: %s", err)
			vr.destroy()
		}
	}()

	procAddr := vr.surface.VulkanProcAddr()
	if procAddr == nil {
		return core.Errorf(core.KindCapabilityMissing, "vulkan.initialize", "GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return core.NewError(core.KindCapabilityMissing, "vkInit", err)
	}

	width, height := vr.surface.FramebufferSize()
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height

	if err := InstanceCreate(vr.context, vr.config.AppName, vr.surface.RequiredInstanceExtensions(), vr.config.Validation); err != nil {
		return err
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.surface.CreateWindowSurface(vr.context.Instance)
	if err != nil {
		return core.NewError(core.KindCreation, "create window surface", err)
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	// The render pass needs the swapchain format, the framebuffers need the
	// render pass.
	sc, err := SwapchainCreate(vr.context, nil, width, height, vr.config.PreferMailbox)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(vr.context, sc.ImageFormat.Format, vr.config.ClearColor)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	if err := sc.RegenerateFramebuffers(vr.context, rp); err != nil {
		return err
	}

	if vr.context.DescriptorSetLayout, err = DescriptorSetLayoutCreate(vr.context); err != nil {
		return err
	}

	if vr.context.Pipeline, err = PipelineFromShaders(vr.context, vert, frag); err != nil {
		return err
	}

	if vr.context.Geometry, err = GeometryUpload(vr.context, frame.TetrahedronVertices()); err != nil {
		return err
	}

	if vr.context.Slots, err = FrameSlotSetCreate(vr.context, vr.config.FramesInFlight); err != nil {
		return err
	}

	vr.initialized = true
	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) InFlightFence(slot uint32) frame.Fence {
	return vr.context.Slots.Slot(slot).InFlight
}

func (vr *VulkanRenderer) AcquireNextImage(slot uint32, timeout time.Duration) (uint32, error) {
	s := vr.context.Slots.Slot(slot)
	return vr.context.Swapchain.AcquireNextImageIndex(vr.context, timeoutNS(timeout), s.ImageAvailable)
}

func (vr *VulkanRenderer) UpdateUniforms(slot uint32, ubo *frame.UniformBufferObject) error {
	return vr.context.Slots.Slot(slot).Uniform.Write(ubo.Bytes())
}

func (vr *VulkanRenderer) RecordCommands(slot uint32, imageIndex uint32, mvp math.Mat4) error {
	s := vr.context.Slots.Slot(slot)
	swapchain := vr.context.Swapchain
	pipeline := vr.context.Pipeline
	cb := s.CommandBuffer

	if err := cb.Reset(); err != nil {
		return err
	}
	if err := cb.Begin(false, false, false); err != nil {
		return err
	}

	vr.context.MainRenderpass.Begin(cb, swapchain.Framebuffers[imageIndex].Handle, swapchain.Extent)

	pipeline.Bind(cb, vk.PipelineBindPointGraphics)
	vr.context.Geometry.Bind(cb)

	vk.CmdPushConstants(cb.Handle, pipeline.PipelineLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, frame.PushConstantSize, unsafe.Pointer(&mvp.Data[0]))
	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, pipeline.PipelineLayout, 0, 1, []vk.DescriptorSet{s.DescriptorSet}, 1, []uint32{0})

	// Dynamic state
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(swapchain.Extent.Width),
		Height:   float32(swapchain.Extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: swapchain.Extent,
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.Geometry.Draw(cb)

	vr.context.MainRenderpass.End(cb)
	return cb.End()
}

func (vr *VulkanRenderer) Submit(slot uint32) error {
	s := vr.context.Slots.Slot(slot)

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{s.CommandBuffer.Handle},
		// Wait semaphore ensures that the operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s.ImageAvailable},
		// Vertex work may start early, colour attachment writes wait for
		// the image.
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{s.RenderFinished},
	}

	device := vr.context.Device
	if err := vr.context.Locks.SafeQueueCall(device.GraphicsQueueIndex, func() error {
		return check(core.KindFrame, "vkQueueSubmit", vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, s.InFlight.Handle))
	}); err != nil {
		return err
	}
	s.CommandBuffer.UpdateSubmitted()
	return nil
}

func (vr *VulkanRenderer) Present(slot uint32, imageIndex uint32) error {
	return vr.context.Swapchain.Present(vr.context, vr.context.Slots.Slot(slot).RenderFinished, imageIndex)
}

func (vr *VulkanRenderer) Extent() math.Extents2D {
	if vr.context.Swapchain == nil {
		return math.Extents2D{}
	}
	return vr.context.Swapchain.ExtentSize()
}

func (vr *VulkanRenderer) ImageCount() uint32 {
	if vr.context.Swapchain == nil {
		return 0
	}
	return vr.context.Swapchain.ImageCount
}

// RecreateSwapchain rebuilds the swapchain, its views and framebuffers for
// the given framebuffer size. The frame slots are kept. A zero sized
// framebuffer is left alone.
func (vr *VulkanRenderer) RecreateSwapchain(width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogDebug("RecreateSwapchain called when window is < 1 in a dimension. Booting.")
		return nil
	}
	return vr.context.Locks.SafeCall(SwapchainManagement, func() error {
		if err := vr.WaitIdle(); err != nil {
			return err
		}
		if vr.context.Swapchain != nil {
			vr.context.Swapchain.Destroy(vr.context)
			vr.context.Swapchain = nil
		}

		sc, err := SwapchainCreate(vr.context, vr.context.MainRenderpass, width, height, vr.config.PreferMailbox)
		if err != nil {
			return err
		}
		vr.context.Swapchain = sc
		vr.context.FramebufferWidth = sc.Extent.Width
		vr.context.FramebufferHeight = sc.Extent.Height
		core.LogInfo("Swapchain recreated: %dx%d.", width, height)
		return nil
	})
}

// ReloadPipeline swaps in a pipeline built from new shaders. The old
// pipeline is kept when the new one cannot be built.
func (vr *VulkanRenderer) ReloadPipeline(vert, frag []uint32) error {
	if err := vr.WaitIdle(); err != nil {
		return err
	}
	pipeline, err := PipelineFromShaders(vr.context, vert, frag)
	if err != nil {
		core.LogWarn("Keeping the current pipeline: %s", err)
		return err
	}
	if vr.context.Pipeline != nil {
		vr.context.Pipeline.Destroy(vr.context)
	}
	vr.context.Pipeline = pipeline
	core.LogInfo("Graphics pipeline reloaded.")
	return nil
}

// WaitIdle is the device idle barrier.
func (vr *VulkanRenderer) WaitIdle() error {
	return vr.context.Device.WaitIdle()
}

// Shutdown waits for the device and destroys everything in reverse order of
// creation. It is safe to call more than once.
func (vr *VulkanRenderer) Shutdown() error {
	if !vr.initialized {
		return nil
	}
	err := vr.WaitIdle()
	vr.destroy()
	vr.initialized = false
	core.LogInfo("Vulkan renderer shut down.")
	return err
}

func (vr *VulkanRenderer) destroy() {
	ctx := vr.context

	if ctx.Device.LogicalDevice != nil {
		if ctx.Slots != nil {
			ctx.Slots.Destroy(ctx)
			ctx.Slots = nil
		}
		if ctx.DescriptorSetLayout != nil {
			vk.DestroyDescriptorSetLayout(ctx.Device.LogicalDevice, ctx.DescriptorSetLayout, ctx.Allocator)
			ctx.DescriptorSetLayout = nil
		}
		if ctx.Geometry != nil {
			ctx.Geometry.Destroy(ctx)
			ctx.Geometry = nil
		}
		if ctx.Pipeline != nil {
			ctx.Pipeline.Destroy(ctx)
			ctx.Pipeline = nil
		}
		if ctx.Swapchain != nil {
			// Framebuffers go first, then the render pass they reference,
			// then views and swapchain.
			ctx.Swapchain.destroyFramebuffers(ctx)
		}
		if ctx.MainRenderpass != nil {
			ctx.MainRenderpass.Destroy(ctx)
			ctx.MainRenderpass = nil
		}
		if ctx.Swapchain != nil {
			ctx.Swapchain.Destroy(ctx)
			ctx.Swapchain = nil
		}
	}
	ctx.Device.Destroy(ctx)

	if ctx.Surface != vk.NullSurface {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = vk.NullSurface
	}
	InstanceDestroy(ctx)
}
