package app

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/ambilight/internal/capture"
	"github.com/coreman2200/ambilight/internal/diagnostics"
	"github.com/coreman2200/ambilight/internal/led"
	"github.com/coreman2200/ambilight/internal/render"
)

type State int32

const (
	Starting State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// overrunWarnEvery rate-limits overrun warnings.
const overrunWarnEvery = 10 * time.Second

// Clock is injectable for tests. Now must carry a monotonic reading.
type Clock struct {
	Now   func() time.Time
	Sleep func(time.Duration)
}

var SystemClock = Clock{Now: time.Now, Sleep: time.Sleep}

// Observer sees every pushed StripBuffer. Publish runs on the loop goroutine
// and must not block or keep strip.
type Observer interface {
	Publish(strip []uint32, frames uint64)
}

type Stats struct {
	Frames   uint64
	Overruns uint64
}

// Loop paces capture -> render -> push at a fixed period. It runs on a
// single goroutine; only Stats and State may be read from elsewhere.
type Loop struct {
	Source   capture.Source
	Engine   *render.Engine
	Sink     led.Driver
	Period   time.Duration
	Clock    Clock
	Log      zerolog.Logger
	Diag     diagnostics.Sink
	Observer Observer

	state    atomic.Int32
	frames   atomic.Uint64
	overruns atomic.Uint64
	lastWarn time.Time
}

func NewLoop(src capture.Source, eng *render.Engine, sink led.Driver, period time.Duration, log zerolog.Logger) *Loop {
	return &Loop{
		Source: src,
		Engine: eng,
		Sink:   sink,
		Period: period,
		Clock:  SystemClock,
		Log:    log,
		Diag:   diagnostics.Discard,
	}
}

func (l *Loop) State() State { return State(l.state.Load()) }
func (l *Loop) setState(s State) { l.state.Store(int32(s)) }

func (l *Loop) Stats() Stats {
	return Stats{Frames: l.frames.Load(), Overruns: l.overruns.Load()}
}

// Run iterates until token is stopped (nil error) or a capture, sampling or
// push step fails. It does not tear anything down.
func (l *Loop) Run(token *StopToken) error {
	if l.Period <= 0 {
		return errors.New("loop period must be positive")
	}
	l.setState(Running)
	l.Log.Info().Dur("period", l.Period).Int("leds", l.Engine.Count()).Msg("render loop running")

	for {
		if token.Stopped() {
			return nil
		}
		start := l.Clock.Now()
		target := start.Add(l.Period)

		frame, err := l.Source.Next()
		if err != nil {
			l.Diag.Report(diagnostics.CaptureFailed(err))
			return fmt.Errorf("capture: %w", err)
		}
		if err := l.Engine.RenderFrame(frame); err != nil {
			l.Diag.Report(diagnostics.CaptureFailed(err))
			return fmt.Errorf("sample: %w", err)
		}
		strip := l.Engine.Strip()
		if err := l.Sink.Render(strip); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		n := l.frames.Add(1)
		if l.Observer != nil {
			l.Observer.Publish(strip, n)
		}

		end := l.Clock.Now()
		if end.Before(target) {
			l.Clock.Sleep(target.Sub(end))
			continue
		}
		l.overrun(end.Sub(start), n, end)
	}
}

// overrun proceeds immediately; no attempt is made to catch up.
func (l *Loop) overrun(elapsed time.Duration, frame uint64, now time.Time) {
	l.overruns.Add(1)
	last := l.Engine.Last
	l.Log.Debug().
		Dur("elapsed", elapsed).
		Uint64("frame", frame).
		Float64("sample_ms", last.SampleMS).
		Float64("map_ms", last.MapMS).
		Msg("frame overrun")
	if l.lastWarn.IsZero() || now.Sub(l.lastWarn) >= overrunWarnEvery {
		l.lastWarn = now
		l.Log.Warn().
			Dur("elapsed", elapsed).
			Dur("period", l.Period).
			Uint64("overruns", l.overruns.Load()).
			Float64("sample_ms", last.SampleMS).
			Float64("map_ms", last.MapMS).
			Msg("render loop cannot keep up")
		l.Diag.Report(diagnostics.Overrun(elapsed, l.Period, frame, last.SampleMS, last.MapMS))
	}
}
