package led

import (
	"errors"
	"sync"
)

// Sim is a headless sink. It keeps the last frame and a frame counter.
type Sim struct {
	mu     sync.Mutex
	count  int
	frames int
	last   []uint32
	closed bool
}

func NewSim(count int) *Sim {
	return &Sim{count: count, last: make([]uint32, count)}
}

func (s *Sim) Render(buf []uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("sim closed")
	}
	if err := checkLen(buf, s.count); err != nil {
		return err
	}
	copy(s.last, buf)
	s.frames++
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns how many frames were rendered.
func (s *Sim) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns a copy of the last rendered frame.
func (s *Sim) Last() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.last...)
}

// Closed reports whether Close was called.
func (s *Sim) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
