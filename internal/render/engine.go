package render

import (
	"errors"
	"image"
	"time"
)

// Engine runs one frame through sampling and mapping into the StripBuffer.
// The StripBuffer is allocated once and never resized.
type Engine struct {
	Sampler Sampler
	Mapper  *Mapper

	ring  []Pixel  // SampleRing scratch, no state survives a frame
	strip []uint32 // StripBuffer

	// metrics (last durations in ms)
	Last struct {
		SampleMS float64
		MapMS    float64
	}
}

// NewEngine allocates the ring and strip buffers for count LEDs.
func NewEngine(s Sampler, m *Mapper, count int) (*Engine, error) {
	if count <= 0 {
		return nil, errors.New("invalid LED count")
	}
	if s == nil || m == nil {
		return nil, errors.New("sampler and mapper are required")
	}
	return &Engine{
		Sampler: s,
		Mapper:  m,
		ring:    make([]Pixel, count),
		strip:   make([]uint32, count),
	}, nil
}

// RenderFrame samples frame and maps it into the StripBuffer. On error the
// StripBuffer keeps the previous frame.
func (e *Engine) RenderFrame(frame image.Image) error {
	start := time.Now()
	if err := e.Sampler.Sample(frame, e.ring); err != nil {
		return err
	}
	e.Last.SampleMS = float64(time.Since(start).Microseconds()) / 1000.0

	mapStart := time.Now()
	e.Mapper.Map(e.ring, e.strip)
	e.Last.MapMS = float64(time.Since(mapStart).Microseconds()) / 1000.0
	return nil
}

// Clear sets every StripBuffer element to the all-off color.
func (e *Engine) Clear() {
	off := e.Mapper.Order.Pack(Off)
	for i := range e.strip {
		e.strip[i] = off
	}
}

// Strip returns the StripBuffer. Callers must not resize it.
func (e *Engine) Strip() []uint32 { return e.strip }

// Count returns the LED count.
func (e *Engine) Count() int { return len(e.strip) }
