package renderer

import "github.com/spaghettifunk/vkspin/engine/renderer/frame"

// RendererBackend is a GPU API implementation. The frame protocol methods
// come from frame.Backend; the rest covers the lifecycle around it.
type RendererBackend interface {
	frame.Backend

	// Initialize creates every GPU object from the two SPIR-V binaries.
	Initialize(vert, frag []uint32) error
	ImageCount() uint32
	RecreateSwapchain(width, height uint32) error
	ReloadPipeline(vert, frag []uint32) error
	WaitIdle() error
	Shutdown() error
}

type RendererType uint8

const (
	Vulkan RendererType = iota
)

func (t RendererType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	}
	return "unknown"
}
