package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkspin/engine/core"
	kmath "github.com/spaghettifunk/vkspin/engine/math"
)

// VulkanSwapchain owns the swapchain together with one image view and one
// framebuffer per image. The three are created and destroyed as a unit.
type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	Handle      vk.Swapchain
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer

	// stale is set when acquire reported suboptimal but still handed out an
	// image; the next present reports it.
	stale bool
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// SwapchainCreate builds the swapchain, its views and, with a non-nil
// renderpass, its framebuffers. Nothing is retained on failure.
func SwapchainCreate(context *VulkanContext, renderpass *VulkanRenderpass, width, height uint32, preferMailbox bool) (*VulkanSwapchain, error) {
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}

	swapchain := &VulkanSwapchain{}
	if swapchain.ImageFormat, err = chooseSurfaceFormat(support.Formats); err != nil {
		return nil, err
	}
	swapchain.PresentMode = choosePresentMode(support.PresentModes, preferMailbox)
	swapchain.Extent = chooseExtent(support.Capabilities, width, height)
	imageCount := chooseImageCount(support.Capabilities)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			context.Device.GraphicsQueueIndex,
			context.Device.PresentQueueIndex,
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchainHandle vk.Swapchain
	if err := check(core.KindCreation, "vkCreateSwapchainKHR", vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle)); err != nil {
		return nil, err
	}
	swapchain.Handle = swapchainHandle

	if err := swapchain.createImageViews(context); err != nil {
		swapchain.Destroy(context)
		return nil, err
	}

	if renderpass != nil {
		if err := swapchain.RegenerateFramebuffers(context, renderpass); err != nil {
			swapchain.Destroy(context)
			return nil, err
		}
	}

	core.LogInfo("Swapchain created: %dx%d, %d images, present mode %d.", swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageCount, swapchain.PresentMode)
	return swapchain, nil
}

func (vs *VulkanSwapchain) createImageViews(context *VulkanContext) error {
	if err := check(core.KindCreation, "vkGetSwapchainImagesKHR", vk.GetSwapchainImages(context.Device.LogicalDevice, vs.Handle, &vs.ImageCount, nil)); err != nil {
		return err
	}
	vs.Images = make([]vk.Image, vs.ImageCount)
	if err := check(core.KindCreation, "vkGetSwapchainImagesKHR", vk.GetSwapchainImages(context.Device.LogicalDevice, vs.Handle, &vs.ImageCount, vs.Images)); err != nil {
		return err
	}

	vs.Views = make([]vk.ImageView, 0, vs.ImageCount)
	for i := 0; i < int(vs.ImageCount); i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    vs.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   vs.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		var view vk.ImageView
		if err := check(core.KindCreation, "vkCreateImageView", vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &view)); err != nil {
			return err
		}
		vs.Views = append(vs.Views, view)
	}
	return nil
}

// RegenerateFramebuffers replaces every framebuffer with one targeting the
// current views.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.destroyFramebuffers(context)
	vs.Framebuffers = make([]*VulkanFramebuffer, 0, len(vs.Views))
	for _, view := range vs.Views {
		fb, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height, []vk.ImageView{view})
		if err != nil {
			vs.destroyFramebuffers(context)
			return err
		}
		vs.Framebuffers = append(vs.Framebuffers, fb)
	}
	return nil
}

// AcquireNextImageIndex returns core.ErrSwapchainStale when the surface is
// out of date. A suboptimal acquire hands out a usable image and defers
// the stale report to Present.
func (vs *VulkanSwapchain) AcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS, imageAvailableSemaphore, vk.NullFence, &imageIndex)
	switch result {
	case vk.Success:
		return imageIndex, nil
	case vk.Suboptimal:
		vs.stale = true
		return imageIndex, nil
	case vk.ErrorOutOfDate:
		return 0, NewError(core.KindSwapchainStale, "vkAcquireNextImageKHR", result)
	case vk.Timeout, vk.NotReady:
		return 0, NewError(core.KindTimeout, "vkAcquireNextImageKHR", result)
	}
	return 0, check(core.KindFrame, "vkAcquireNextImageKHR", result)
}

func (vs *VulkanSwapchain) Present(context *VulkanContext, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	var result vk.Result
	_ = context.Locks.SafeQueueCall(context.Device.PresentQueueIndex, func() error {
		result = vk.QueuePresent(context.Device.PresentQueue, &presentInfo)
		return nil
	})

	stale := vs.stale
	vs.stale = false
	switch {
	case result == vk.ErrorOutOfDate || result == vk.Suboptimal:
		return NewError(core.KindSwapchainStale, "vkQueuePresentKHR", result)
	case result != vk.Success:
		return check(core.KindFrame, "vkQueuePresentKHR", result)
	case stale:
		return NewError(core.KindSwapchainStale, "vkAcquireNextImageKHR", vk.Suboptimal)
	}
	return nil
}

func (vs *VulkanSwapchain) ExtentSize() kmath.Extents2D {
	return kmath.Extents2D{Width: vs.Extent.Width, Height: vs.Extent.Height}
}

func (vs *VulkanSwapchain) destroyFramebuffers(context *VulkanContext) {
	for _, fb := range vs.Framebuffers {
		fb.Destroy(context)
	}
	vs.Framebuffers = nil
}

// Destroy releases framebuffers, views and the swapchain. The images are
// owned by the swapchain and go with it. The caller guarantees the device
// is idle.
func (vs *VulkanSwapchain) Destroy(context *VulkanContext) {
	vs.destroyFramebuffers(context)
	for _, view := range vs.Views {
		vk.DestroyImageView(context.Device.LogicalDevice, view, context.Allocator)
	}
	vs.Views = nil
	vs.Images = nil
	vs.ImageCount = 0

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}

// chooseSurfaceFormat prefers 8 bit BGRA sRGB and falls back to the first
// advertised format.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, core.Errorf(core.KindCapabilityMissing, "choose surface format", "surface advertises no formats")
	}
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format, nil
		}
	}
	return formats[0], nil
}

// choosePresentMode returns mailbox when allowed and advertised, otherwise
// FIFO, which every implementation supports.
func choosePresentMode(modes []vk.PresentMode, preferMailbox bool) vk.PresentMode {
	if preferMailbox {
		for _, mode := range modes {
			if mode == vk.PresentModeMailbox {
				return mode
			}
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent verbatim unless the
// surface reports the adaptive marker, in which case the requested size is
// clamped to the supported range.
func chooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  kmath.Clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: kmath.Clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum. A maximum of
// zero means unbounded.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}
	return imageCount
}
