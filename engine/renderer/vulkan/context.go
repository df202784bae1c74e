package vulkan

import (
	vk "github.com/goki/vulkan"
)

// VulkanContext holds every native object the renderer owns. Device owns
// the swapchain, the swapchain owns its views and framebuffers, and the
// slot set owns the per-frame resources.
type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	DescriptorSetLayout vk.DescriptorSetLayout
	Pipeline            *VulkanPipeline
	Geometry            *VulkanGeometry

	Slots *FrameSlotSet

	Locks *VulkanLockPool
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has every requested property flag.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	return findMemoryIndex(vc.Device.Memory, typeFilter, propertyFlags)
}
