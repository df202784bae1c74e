package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/spaghettifunk/vkspin/engine/renderer/frame"
)

// VulkanGeometry is a device local vertex buffer drawn without indices.
type VulkanGeometry struct {
	Buffer      *VulkanBuffer
	VertexCount uint32
}

// GeometryUpload stages vertices in host visible memory and copies them to a
// device local vertex buffer. The staging buffer is gone when this returns.
func GeometryUpload(context *VulkanContext, vertices []frame.Vertex) (*VulkanGeometry, error) {
	if len(vertices) == 0 {
		return nil, core.Errorf(core.KindCreation, "geometry upload", "no vertices")
	}
	data := frame.VerticesBytes(vertices)
	size := uint64(len(data))

	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, data); err != nil {
		return nil, err
	}

	vertexBuffer, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit|vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	if err := staging.CopyTo(context, vertexBuffer, size); err != nil {
		vertexBuffer.Destroy(context)
		return nil, err
	}

	core.LogDebug("Uploaded %d vertices (%d bytes).", len(vertices), size)
	return &VulkanGeometry{
		Buffer:      vertexBuffer,
		VertexCount: uint32(len(vertices)),
	}, nil
}

func (g *VulkanGeometry) Bind(commandBuffer *VulkanCommandBuffer) {
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{g.Buffer.Handle}, []vk.DeviceSize{0})
}

func (g *VulkanGeometry) Draw(commandBuffer *VulkanCommandBuffer) {
	vk.CmdDraw(commandBuffer.Handle, g.VertexCount, 1, 0, 0)
}

func (g *VulkanGeometry) Destroy(context *VulkanContext) {
	if g.Buffer != nil {
		g.Buffer.Destroy(context)
		g.Buffer = nil
	}
	g.VertexCount = 0
}
