package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/spaghettifunk/vkspin/engine/renderer/frame"
)

// FrameSlot is one set of per-frame resources. The GPU may read any of them
// until InFlight signals.
type FrameSlot struct {
	Index uint32

	CommandBuffer  *VulkanCommandBuffer
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       *VulkanFence

	// Uniform stays mapped for the lifetime of the slot.
	Uniform       *VulkanBuffer
	DescriptorSet vk.DescriptorSet
}

// FrameSlotSet owns the slots and the descriptor pool their sets come from.
// It does not depend on the swapchain image count.
type FrameSlotSet struct {
	Slots          []*FrameSlot
	descriptorPool vk.DescriptorPool
}

func FrameSlotSetCreate(context *VulkanContext, count uint32) (*FrameSlotSet, error) {
	if count == 0 {
		return nil, core.NewError(core.KindCreation, "frame slot set", core.ErrInvalidFrameConfig)
	}

	set := &FrameSlotSet{}
	pool, err := DescriptorPoolCreate(context, count)
	if err != nil {
		return nil, err
	}
	set.descriptorPool = pool

	for i := uint32(0); i < count; i++ {
		slot, err := set.createSlot(context, i)
		if err != nil {
			set.Destroy(context)
			return nil, err
		}
		set.Slots = append(set.Slots, slot)
	}

	core.LogInfo("Created %d frame slots.", count)
	return set, nil
}

// createSlot appends nothing on failure; whatever part of the slot was made
// is released here.
func (fs *FrameSlotSet) createSlot(context *VulkanContext, index uint32) (_ *FrameSlot, err error) {
	slot := &FrameSlot{Index: index}
	defer func() {
		if err != nil {
			slot.destroy(context)
		}
	}()

	if slot.CommandBuffer, err = NewVulkanCommandBuffer(context, context.Device.GraphicsCommandPool, true); err != nil {
		return nil, err
	}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if err = check(core.KindCreation, "vkCreateSemaphore", vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &slot.ImageAvailable)); err != nil {
		return nil, err
	}
	if err = check(core.KindCreation, "vkCreateSemaphore", vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &slot.RenderFinished)); err != nil {
		return nil, err
	}

	// Create the fence in a signaled state, indicating that the first frame has already been "rendered".
	// This will prevent the application from waiting indefinitely for the first frame to render since it
	// cannot be rendered until a frame is "rendered" before it.
	if slot.InFlight, err = NewFence(context, true); err != nil {
		return nil, err
	}

	if slot.Uniform, err = BufferCreate(context, frame.UniformBufferSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)); err != nil {
		return nil, err
	}
	if err = slot.Uniform.Map(context); err != nil {
		return nil, err
	}

	if slot.DescriptorSet, err = DescriptorSetAllocate(context, fs.descriptorPool, context.DescriptorSetLayout, slot.Uniform); err != nil {
		return nil, err
	}
	return slot, nil
}

func (fs *FrameSlotSet) Slot(index uint32) *FrameSlot {
	return fs.Slots[index]
}

func (fs *FrameSlotSet) Len() uint32 {
	return uint32(len(fs.Slots))
}

// Destroy must only run after the device is idle. Descriptor sets go away
// with their pool.
func (fs *FrameSlotSet) Destroy(context *VulkanContext) {
	for _, slot := range fs.Slots {
		slot.destroy(context)
	}
	fs.Slots = nil

	if fs.descriptorPool != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, fs.descriptorPool, context.Allocator)
		fs.descriptorPool = nil
	}
}

func (s *FrameSlot) destroy(context *VulkanContext) {
	if s.InFlight != nil {
		s.InFlight.Destroy(context)
		s.InFlight = nil
	}
	if s.ImageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, s.ImageAvailable, context.Allocator)
		s.ImageAvailable = vk.NullSemaphore
	}
	if s.RenderFinished != vk.NullSemaphore {
		vk.DestroySemaphore(context.Device.LogicalDevice, s.RenderFinished, context.Allocator)
		s.RenderFinished = vk.NullSemaphore
	}
	if s.Uniform != nil {
		s.Uniform.Destroy(context)
		s.Uniform = nil
	}
	if s.CommandBuffer != nil {
		s.CommandBuffer.Free(context, context.Device.GraphicsCommandPool)
		s.CommandBuffer = nil
	}
	s.DescriptorSet = nil
}
