package app

import "sync/atomic"

// StopToken is the only state shared between the signal goroutine and the
// render loop. The loop polls it, it never blocks on it.
type StopToken struct {
	stopped atomic.Bool
}

func NewStopToken() *StopToken { return &StopToken{} }

// Stop requests shutdown. Safe to call from any goroutine, any number of times.
func (t *StopToken) Stop() { t.stopped.Store(true) }

func (t *StopToken) Stopped() bool { return t.stopped.Load() }
