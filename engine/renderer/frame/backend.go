package frame

import (
	"time"

	"github.com/spaghettifunk/vkspin/engine/math"
)

// Fence is a CPU observable completion signal for one submission.
type Fence interface {
	// Wait blocks until the fence is signaled or the timeout elapses. A
	// non-positive timeout waits forever. Timeouts are reported as
	// core.ErrTimeout.
	Wait(timeout time.Duration) error
	// Reset returns the fence to unsignaled.
	Reset() error
}

// Backend is the GPU side of the frame protocol. The slot argument is
// always the orchestrator's current frame; the backend owns the slot's
// command buffer, semaphores, fence, uniform buffer and descriptor set.
type Backend interface {
	// InFlightFence returns the fence signaled when the slot's last
	// submission retires. It is created signaled.
	InFlightFence(slot uint32) Fence
	// AcquireNextImage returns the next presentable image, arranging for
	// the slot's image available semaphore to be signaled when it is ready.
	AcquireNextImage(slot uint32, timeout time.Duration) (uint32, error)
	// UpdateUniforms overwrites the slot's uniform buffer.
	UpdateUniforms(slot uint32, ubo *UniformBufferObject) error
	// RecordCommands resets and re-records the slot's command buffer
	// against the framebuffer of imageIndex.
	RecordCommands(slot uint32, imageIndex uint32, mvp math.Mat4) error
	// Submit enqueues the slot's command buffer, waiting on image
	// available and signaling render finished plus the slot's fence.
	Submit(slot uint32) error
	// Present queues imageIndex for display once render finished signals.
	Present(slot uint32, imageIndex uint32) error
	Extent() math.Extents2D
}
