package frame

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/spaghettifunk/vkspin/engine/math"
)

// fakeGPU simulates the GPU timeline: a submission stays in flight until
// its fence is waited on, at which point it retires.
type fakeGPU struct {
	fences     []*fakeFence
	busy       []bool
	images     []uint32
	next       int
	events     []string
	violations []string
	maxBusy    int

	acquireErr error
	presentErr error

	uniforms []UniformBufferObject
	mvps     []math.Mat4
}

type fakeFence struct {
	gpu      *fakeGPU
	slot     uint32
	signaled bool
	hung     bool
}

func newFakeGPU(framesInFlight int, images ...uint32) *fakeGPU {
	g := &fakeGPU{
		busy:   make([]bool, framesInFlight),
		images: images,
	}
	for i := 0; i < framesInFlight; i++ {
		g.fences = append(g.fences, &fakeFence{gpu: g, slot: uint32(i), signaled: true})
	}
	return g
}

func (f *fakeFence) Wait(timeout time.Duration) error {
	f.gpu.logf("wait:%d", f.slot)
	if f.signaled {
		return nil
	}
	if f.hung {
		time.Sleep(timeout)
		return core.NewError(core.KindTimeout, "fake.wait", nil)
	}
	f.signaled = true
	f.gpu.busy[f.slot] = false
	return nil
}

func (f *fakeFence) Reset() error {
	f.gpu.logf("reset:%d", f.slot)
	if f.gpu.busy[f.slot] {
		f.gpu.violate("reset of slot %d while in flight", f.slot)
	}
	f.signaled = false
	return nil
}

func (g *fakeGPU) logf(format string, args ...interface{}) {
	g.events = append(g.events, fmt.Sprintf(format, args...))
}

func (g *fakeGPU) violate(format string, args ...interface{}) {
	g.violations = append(g.violations, fmt.Sprintf(format, args...))
}

func (g *fakeGPU) InFlightFence(slot uint32) Fence {
	return g.fences[slot]
}

func (g *fakeGPU) AcquireNextImage(slot uint32, timeout time.Duration) (uint32, error) {
	if g.acquireErr != nil {
		return 0, g.acquireErr
	}
	idx := g.images[g.next%len(g.images)]
	g.next++
	g.logf("acquire:%d", idx)
	return idx, nil
}

func (g *fakeGPU) UpdateUniforms(slot uint32, ubo *UniformBufferObject) error {
	g.logf("update:%d", slot)
	if g.busy[slot] {
		g.violate("uniform write to slot %d while in flight", slot)
	}
	g.uniforms = append(g.uniforms, *ubo)
	return nil
}

func (g *fakeGPU) RecordCommands(slot uint32, imageIndex uint32, mvp math.Mat4) error {
	g.logf("record:%d:%d", slot, imageIndex)
	if g.busy[slot] {
		g.violate("record into slot %d while in flight", slot)
	}
	g.mvps = append(g.mvps, mvp)
	return nil
}

func (g *fakeGPU) Submit(slot uint32) error {
	g.logf("submit:%d", slot)
	g.busy[slot] = true
	n := 0
	for _, b := range g.busy {
		if b {
			n++
		}
	}
	g.maxBusy = max(g.maxBusy, n)
	return nil
}

func (g *fakeGPU) Present(slot uint32, imageIndex uint32) error {
	g.logf("present:%d", imageIndex)
	return g.presentErr
}

func (g *fakeGPU) Extent() math.Extents2D {
	return math.Extents2D{Width: 800, Height: 600}
}
