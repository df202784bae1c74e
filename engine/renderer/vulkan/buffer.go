package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkspin/engine/core"
)

// VulkanBuffer is a buffer bound to its own memory allocation.
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	Usage  vk.BufferUsageFlags

	memoryIndex uint32
	mapped      unsafe.Pointer
}

// findMemoryIndex returns the first memory type allowed by typeFilter whose
// property flags contain every requested flag.
func findMemoryIndex(memory vk.PhysicalDeviceMemoryProperties, typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < memory.MemoryTypeCount && i < vk.MaxMemoryTypes; i++ {
		if typeFilter&(1<<i) == 0 {
			continue
		}
		if memory.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return i, nil
		}
	}
	return 0, core.Errorf(core.KindAllocation, "find memory index", "no memory type for filter %#x with properties %#x", typeFilter, uint32(propertyFlags))
}

// BufferCreate creates a buffer of size bytes and binds it to fresh memory
// holding the requested properties. Nothing is retained on failure.
func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		Size:  size,
		Usage: usage,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // NOTE: Only used in one queue.
	}

	var handle vk.Buffer
	if err := check(core.KindCreation, "vkCreateBuffer", vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	buffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()

	index, err := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	buffer.memoryIndex = index

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: index,
	}

	var memory vk.DeviceMemory
	if err := check(core.KindAllocation, "vkAllocateMemory", vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory)); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	buffer.Memory = memory

	if err := check(core.KindAllocation, "vkBindBufferMemory", vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0)); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

// Map maps the whole buffer and keeps it mapped until Destroy.
func (b *VulkanBuffer) Map(context *VulkanContext) error {
	if b.mapped != nil {
		return nil
	}
	var data unsafe.Pointer
	if err := check(core.KindAllocation, "vkMapMemory", vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, vk.DeviceSize(b.Size), 0, &data)); err != nil {
		return err
	}
	b.mapped = data
	return nil
}

// Write copies data to the start of a mapped buffer.
func (b *VulkanBuffer) Write(data []byte) error {
	if b.mapped == nil {
		return core.Errorf(core.KindFrame, "buffer write", "buffer is not mapped")
	}
	if uint64(len(data)) > b.Size {
		return core.Errorf(core.KindFrame, "buffer write", "%d bytes do not fit in a %d byte buffer", len(data), b.Size)
	}
	copy(unsafe.Slice((*byte)(b.mapped), b.Size), data)
	return nil
}

// LoadData maps, copies and unmaps.
func (b *VulkanBuffer) LoadData(context *VulkanContext, data []byte) error {
	if err := b.Map(context); err != nil {
		return err
	}
	err := b.Write(data)
	b.Unmap(context)
	return err
}

func (b *VulkanBuffer) Unmap(context *VulkanContext) {
	if b.mapped == nil {
		return
	}
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	b.mapped = nil
}

// CopyTo records a single-use transfer of size bytes into dst and waits for
// the graphics queue to finish it.
func (b *VulkanBuffer) CopyTo(context *VulkanContext, dst *VulkanBuffer, size uint64) error {
	pool := context.Device.GraphicsCommandPool
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}

	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(cb.Handle, b.Handle, dst.Handle, 1, []vk.BufferCopy{region})

	return cb.EndSingleUse(context, pool, context.Device.GraphicsQueue, context.Device.GraphicsQueueIndex)
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	b.Unmap(context)
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = vk.NullBuffer
	}
	b.Size = 0
}
