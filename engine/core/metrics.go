package core

import (
	"github.com/spaghettifunk/vkspin/engine/containers"
)

const AVG_COUNT int = 30

// Metrics keeps a rolling average of frame times and a frames per second
// counter refreshed once per accumulated second.
type Metrics struct {
	samples            *containers.RingQueue[float64]
	sum                float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewMetrics() *Metrics {
	return &Metrics{
		samples: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records one frame that took frameElapsed seconds. It reports true
// when the FPS counter rolled over, which is when callers log.
func (m *Metrics) Update(frameElapsed float64) bool {
	frameMS := frameElapsed * 1000.0
	if m.samples.IsFull() {
		oldest, _ := m.samples.Dequeue()
		m.sum -= oldest
	}
	_ = m.samples.Enqueue(frameMS)
	m.sum += frameMS

	m.frames++
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
		return true
	}
	return false
}

func (m *Metrics) FPS() float64 {
	return m.fps
}

// FrameTime is the average of the last AVG_COUNT frames, in milliseconds.
func (m *Metrics) FrameTime() float64 {
	if m.samples.IsEmpty() {
		return 0
	}
	return m.sum / float64(m.samples.Len())
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS(), m.FrameTime()
}
