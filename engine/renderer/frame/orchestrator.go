package frame

import (
	"context"
	"errors"
	"time"

	"github.com/spaghettifunk/vkspin/engine/core"
)

// State is the orchestrator's position within one frame.
type State uint8

const (
	StateIdle State = iota
	StateWaitSlot
	StateAcquire
	StateWaitImage
	StateUpdate
	StateRecord
	StateSubmit
	StatePresent
)

func (s State) String() string {
	switch s {
	case StateWaitSlot:
		return "wait-slot"
	case StateAcquire:
		return "acquire"
	case StateWaitImage:
		return "wait-image"
	case StateUpdate:
		return "update"
	case StateRecord:
		return "record"
	case StateSubmit:
		return "submit"
	case StatePresent:
		return "present"
	}
	return "idle"
}

// waitSlice bounds a single fence wait so cancellation is observed while
// the GPU is busy.
const waitSlice = 100 * time.Millisecond

type Config struct {
	// FramesInFlight is N, the number of per-frame slots. Must be >= 1.
	FramesInFlight uint32
	// ImageCount sizes the image-in-flight map.
	ImageCount uint32
	// FenceTimeout bounds each fence wait. Zero waits forever.
	FenceTimeout time.Duration
	// AcquireTimeout bounds the image acquire. Zero waits forever.
	AcquireTimeout time.Duration
}

// Orchestrator drives the acquire, wait, update, record, submit, present
// handshake for one frame at a time. It is not safe for concurrent use; a
// single thread owns the cursor and the image-in-flight map.
type Orchestrator struct {
	backend        Backend
	framesInFlight uint32
	fenceTimeout   time.Duration
	acquireTimeout time.Duration

	currentFrame   uint32
	imagesInFlight []Fence
	state          State
	frames         uint64
}

func NewOrchestrator(backend Backend, cfg Config) (*Orchestrator, error) {
	if cfg.FramesInFlight == 0 {
		return nil, core.NewError(core.KindCreation, "frame.orchestrator", core.ErrInvalidFrameConfig)
	}
	if cfg.ImageCount == 0 {
		return nil, core.Errorf(core.KindCreation, "frame.orchestrator", "swapchain has no images")
	}
	return &Orchestrator{
		backend:        backend,
		framesInFlight: cfg.FramesInFlight,
		fenceTimeout:   cfg.FenceTimeout,
		acquireTimeout: cfg.AcquireTimeout,
		imagesInFlight: make([]Fence, cfg.ImageCount),
	}, nil
}

// DrawFrame renders one frame for the given elapsed time. On success, or
// when the frame was submitted but could not be presented, the cursor
// advances by one. A frame abandoned before submission leaves the cursor
// and the slot's fence untouched.
func (o *Orchestrator) DrawFrame(ctx context.Context, seconds float64) error {
	defer func() { o.state = StateIdle }()

	slot := o.currentFrame
	fence := o.backend.InFlightFence(slot)

	o.state = StateWaitSlot
	if err := o.waitFence(ctx, "frame.wait-slot", fence); err != nil {
		return err
	}

	o.state = StateAcquire
	if err := o.checkContext(ctx, "frame.acquire"); err != nil {
		return err
	}
	imageIndex, err := o.backend.AcquireNextImage(slot, o.clip(ctx, o.acquireTimeout))
	if err != nil {
		return err
	}
	if int(imageIndex) >= len(o.imagesInFlight) {
		return core.Errorf(core.KindFrame, "frame.acquire", "image index %d out of range [0,%d)", imageIndex, len(o.imagesInFlight))
	}

	o.state = StateWaitImage
	if prev := o.imagesInFlight[imageIndex]; prev != nil {
		if err := o.waitFence(ctx, "frame.wait-image", prev); err != nil {
			return err
		}
	}
	o.imagesInFlight[imageIndex] = fence

	o.state = StateUpdate
	if err := fence.Reset(); err != nil {
		return err
	}
	t := ComputeTransforms(seconds, o.backend.Extent())
	ubo := t.Uniform()
	if err := o.backend.UpdateUniforms(slot, &ubo); err != nil {
		return err
	}

	o.state = StateRecord
	if err := o.backend.RecordCommands(slot, imageIndex, t.MVP()); err != nil {
		return err
	}

	o.state = StateSubmit
	if err := o.backend.Submit(slot); err != nil {
		return err
	}

	o.state = StatePresent
	err = o.backend.Present(slot, imageIndex)
	o.advance()
	return err
}

// Reset forgets every image-in-flight entry and resizes the map, used after
// the swapchain was rebuilt. The cursor is kept.
func (o *Orchestrator) Reset(imageCount uint32) {
	o.imagesInFlight = make([]Fence, imageCount)
}

func (o *Orchestrator) CurrentFrame() uint32 {
	return o.currentFrame
}

func (o *Orchestrator) FramesInFlight() uint32 {
	return o.framesInFlight
}

// Frames is the number of frames submitted so far.
func (o *Orchestrator) Frames() uint64 {
	return o.frames
}

func (o *Orchestrator) State() State {
	return o.state
}

// ImageFence returns the fence of the slot that last rendered imageIndex,
// or nil if the image was never rendered since the last Reset.
func (o *Orchestrator) ImageFence(imageIndex uint32) Fence {
	if int(imageIndex) >= len(o.imagesInFlight) {
		return nil
	}
	return o.imagesInFlight[imageIndex]
}

func (o *Orchestrator) advance() {
	o.currentFrame = (o.currentFrame + 1) % o.framesInFlight
	o.frames++
}

// waitFence waits in slices so that a cancelled context is noticed within
// waitSlice, while the total wait stays bounded by the fence timeout.
func (o *Orchestrator) waitFence(ctx context.Context, op string, f Fence) error {
	var deadline time.Time
	if o.fenceTimeout > 0 {
		deadline = time.Now().Add(o.fenceTimeout)
	}
	for {
		if err := o.checkContext(ctx, op); err != nil {
			return err
		}
		slice := waitSlice
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return core.Errorf(core.KindTimeout, op, "fence not signaled after %s", o.fenceTimeout)
			}
			slice = min(slice, remaining)
		}
		slice = o.clip(ctx, slice)

		err := f.Wait(slice)
		if err == nil {
			return nil
		}
		if !errors.Is(err, core.ErrTimeout) {
			return err
		}
	}
}

// clip shortens d so it never outlives the context deadline.
func (o *Orchestrator) clip(ctx context.Context, d time.Duration) time.Duration {
	dl, ok := ctx.Deadline()
	if !ok {
		return d
	}
	remaining := time.Until(dl)
	if remaining <= 0 {
		remaining = time.Nanosecond
	}
	if d <= 0 || remaining < d {
		return remaining
	}
	return d
}

func (o *Orchestrator) checkContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return core.NewError(core.KindCancelled, op, err)
	}
	return nil
}
