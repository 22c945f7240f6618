package app

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ambilight/internal/calib"
	"github.com/coreman2200/ambilight/internal/capture"
	"github.com/coreman2200/ambilight/internal/config"
	"github.com/coreman2200/ambilight/internal/diagnostics"
	"github.com/coreman2200/ambilight/internal/led"
	"github.com/coreman2200/ambilight/internal/render"
)

type recordingSink struct {
	mu     sync.Mutex
	frames [][]uint32
	closed bool
	err    error
}

func (s *recordingSink) Render(buf []uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, append([]uint32(nil), buf...))
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// scriptedSource serves a solid frame; onNext runs before each frame and may
// return an error or panic.
type scriptedSource struct {
	frame  image.Image
	calls  int
	onNext func(call int) error
	closed bool
}

func (s *scriptedSource) Next() (image.Image, error) {
	s.calls++
	if s.onNext != nil {
		if err := s.onNext(s.calls); err != nil {
			return nil, err
		}
	}
	return s.frame, nil
}

func (s *scriptedSource) Close() error   { s.closed = true; return nil }
func (s *scriptedSource) String() string { return "scripted" }

type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1000, 0)} }

func (c *fakeClock) Clock() *Clock {
	return &Clock{
		Now: func() time.Time { return c.t },
		Sleep: func(d time.Duration) {
			c.sleeps = append(c.sleeps, d)
			c.t = c.t.Add(d)
		},
	}
}

type recordingDiag struct{ got []diagnostics.Diagnostic }

func (r *recordingDiag) Report(d diagnostics.Diagnostic) { r.got = append(r.got, d) }

func (r *recordingDiag) codes() []string {
	var out []string
	for _, d := range r.got {
		out = append(out, d.Code)
	}
	return out
}

func testConfig() *config.Config {
	c := config.Default()
	c.Strip.Driver = "sim"
	c.Strip.Count = 10
	c.Capture.Source = "solid"
	c.Capture.Width, c.Capture.Height = 24, 24
	c.Sampler.Cols, c.Sampler.Rows, c.Sampler.Border = 10, 10, 1
	c.Loop.FPS = 50
	return c
}

type harness struct {
	core  *Core
	sink  *recordingSink
	src   *scriptedSource
	clock *fakeClock
	diag  *recordingDiag
	token *StopToken
}

func newHarness(t *testing.T, onNext func(h *harness, call int) error) *harness {
	t.Helper()
	h := &harness{
		sink:  &recordingSink{},
		clock: newFakeClock(),
		diag:  &recordingDiag{},
		token: NewStopToken(),
	}
	img, err := capture.NewSolid(24, 24, color.RGBA{R: 255, A: 255}).Next()
	require.NoError(t, err)
	h.src = &scriptedSource{frame: img}
	if onNext != nil {
		h.src.onNext = func(call int) error { return onNext(h, call) }
	}
	core, err := Startup(testConfig(), zerolog.Nop(), Options{
		OpenSink:   func(config.Strip) (led.Driver, error) { return h.sink, nil },
		OpenSource: func(config.Capture, image.Point) (capture.Source, error) { return h.src, nil },
		Diag:       h.diag,
		Clock:      h.clock.Clock(),
	})
	require.NoError(t, err)
	h.core = core
	return h
}

func allOff(n int) []uint32 { return make([]uint32, n) }

func TestSignalStopsAfterNFrames(t *testing.T) {
	const n = 5
	h := newHarness(t, func(h *harness, call int) error {
		if call == n {
			h.token.Stop()
		}
		return nil
	})

	err := h.core.Run(h.token)
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))

	require.Len(t, h.sink.frames, n+1)
	red := render.GRB.Pack(render.Pixel{R: 255})
	for i := 0; i < n; i++ {
		for _, w := range h.sink.frames[i] {
			assert.Equal(t, red, w)
		}
	}
	assert.Equal(t, allOff(10), h.sink.frames[n])
	assert.True(t, h.sink.closed)
	assert.True(t, h.src.closed)
	assert.Equal(t, n, h.src.calls)
	assert.Equal(t, Stopped, h.core.Loop.State())
	assert.Equal(t, []string{diagnostics.LoopStopped}, h.diag.codes())
}

func TestCaptureFailureShutsDown(t *testing.T) {
	boom := errors.New("device gone")
	h := newHarness(t, func(h *harness, call int) error {
		if call == 3 {
			return boom
		}
		return nil
	})

	err := h.core.Run(h.token)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ExitCode(err))

	require.Len(t, h.sink.frames, 3)
	assert.Equal(t, allOff(10), h.sink.frames[2])
	assert.Equal(t, 3, h.src.calls)
	assert.True(t, h.sink.closed)
	assert.Equal(t, []string{diagnostics.CaptureLost, diagnostics.LoopStopped}, h.diag.codes())
}

func TestFirstCaptureFailurePushesOnlyAllOff(t *testing.T) {
	h := newHarness(t, func(h *harness, call int) error { return capture.ErrEmptyFrame })

	err := h.core.Run(h.token)
	assert.ErrorIs(t, err, capture.ErrEmptyFrame)
	require.Len(t, h.sink.frames, 1)
	assert.Equal(t, allOff(10), h.sink.frames[0])
	assert.Equal(t, 1, h.src.calls)
}

func TestSmallFrameIsFatal(t *testing.T) {
	h := newHarness(t, nil)
	small, err := capture.NewSolid(4, 4, color.RGBA{A: 255}).Next()
	require.NoError(t, err)
	h.src.frame = small

	err = h.core.Run(h.token)
	require.Error(t, err)
	require.Len(t, h.sink.frames, 1)
	assert.Equal(t, allOff(10), h.sink.frames[0])
}

func TestStoppedBeforeFirstFrame(t *testing.T) {
	h := newHarness(t, nil)
	h.token.Stop()
	require.NoError(t, h.core.Run(h.token))
	assert.Equal(t, 0, h.src.calls)
	require.Len(t, h.sink.frames, 1)
}

func TestPacingSleepsUntilTarget(t *testing.T) {
	h := newHarness(t, func(h *harness, call int) error {
		// 5ms of work per frame
		h.clock.t = h.clock.t.Add(5 * time.Millisecond)
		if call == 3 {
			h.token.Stop()
		}
		return nil
	})
	require.NoError(t, h.core.Run(h.token))
	assert.Equal(t, []time.Duration{15 * time.Millisecond, 15 * time.Millisecond, 15 * time.Millisecond}, h.clock.sleeps)
	assert.Equal(t, uint64(0), h.core.Loop.Stats().Overruns)
}

func TestOverrunProceedsWithoutSleeping(t *testing.T) {
	h := newHarness(t, func(h *harness, call int) error {
		h.clock.t = h.clock.t.Add(50 * time.Millisecond)
		if call == 4 {
			h.token.Stop()
		}
		return nil
	})
	require.NoError(t, h.core.Run(h.token))
	assert.Empty(t, h.clock.sleeps)
	st := h.core.Loop.Stats()
	assert.Equal(t, uint64(4), st.Frames)
	assert.Equal(t, uint64(4), st.Overruns)
	// one warning inside the rate-limit window
	assert.Equal(t, []string{diagnostics.LoopOverrun, diagnostics.LoopStopped}, h.diag.codes())
	ev := h.diag.got[0].Evidence
	assert.Contains(t, ev, "sample_ms")
	assert.Contains(t, ev, "map_ms")
	assert.IsType(t, float64(0), ev["sample_ms"])
}

func TestFaultIsRecoveredAndShutsDown(t *testing.T) {
	h := newHarness(t, func(h *harness, call int) error {
		if call == 2 {
			panic("sensor exploded")
		}
		return nil
	})
	err := h.core.Run(h.token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFault)
	require.Len(t, h.sink.frames, 2)
	assert.Equal(t, allOff(10), h.sink.frames[1])
	assert.True(t, h.sink.closed)
	require.Len(t, h.diag.got, 2)
	assert.Equal(t, diagnostics.LoopFault, h.diag.got[0].Code)
	assert.NotEmpty(t, h.diag.got[0].Detail)
}

func TestPushFailureShutsDown(t *testing.T) {
	h := newHarness(t, nil)
	h.sink.err = errors.New("bus error")
	err := h.core.Run(h.token)
	require.Error(t, err)
	assert.True(t, h.sink.closed)
	assert.True(t, h.src.closed)
}

func TestShutdownRunsOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.core.Shutdown(nil)
	h.core.Shutdown(nil)
	assert.Len(t, h.sink.frames, 1)
}

func TestStartupFailuresAbortBeforeRunning(t *testing.T) {
	sink := &recordingSink{}
	_, err := Startup(testConfig(), zerolog.Nop(), Options{
		OpenSink:   func(config.Strip) (led.Driver, error) { return sink, nil },
		OpenSource: func(config.Capture, image.Point) (capture.Source, error) { return nil, errors.New("no camera") },
	})
	require.Error(t, err)
	assert.True(t, sink.closed)
	assert.Empty(t, sink.frames)

	_, err = Startup(testConfig(), zerolog.Nop(), Options{
		OpenSink: func(config.Strip) (led.Driver, error) { return nil, errors.New("no dma") },
	})
	require.Error(t, err)

	bad := testConfig()
	bad.Loop.FPS = 0
	_, err = Startup(bad, zerolog.Nop(), Options{})
	require.Error(t, err)
}

func TestStartupWithSyntheticSourceAndSim(t *testing.T) {
	core, err := Startup(testConfig(), zerolog.Nop(), Options{})
	require.NoError(t, err)
	sim := core.Sink.(*led.Sim)
	core.Shutdown(nil)
	assert.True(t, sim.Closed())
	assert.Equal(t, 1, sim.Frames())
}

func TestBuildMapper(t *testing.T) {
	c := testConfig().Color
	m, err := BuildMapper("GRB", c, render.DefaultEffects())
	require.NoError(t, err)
	assert.Equal(t, render.Pixel{R: 1, G: 2, B: 3}, m.Transform(render.Pixel{R: 1, G: 2, B: 3}, 0))

	c.Effect = "sparkle"
	_, err = BuildMapper("GRB", c, render.DefaultEffects())
	assert.Error(t, err)

	_, err = BuildMapper("XYZ", testConfig().Color, render.DefaultEffects())
	assert.Error(t, err)
}

type publishRecorder struct{ frames []uint64 }

func (p *publishRecorder) Publish(_ []uint32, n uint64) { p.frames = append(p.frames, n) }

func TestObserverSeesEveryPush(t *testing.T) {
	h := newHarness(t, func(h *harness, call int) error {
		if call == 3 {
			h.token.Stop()
		}
		return nil
	})
	obs := &publishRecorder{}
	h.core.Loop.Observer = obs
	require.NoError(t, h.core.Run(h.token))
	assert.Equal(t, []uint64{1, 2, 3}, obs.frames)
}

func TestRunPattern(t *testing.T) {
	sink := &recordingSink{}
	clk := newFakeClock()
	r := calib.NewRunner(calib.Plan{Kind: calib.RGBChannels})
	err := RunPattern(NewStopToken(), sink, r, render.GRB, 2, 20*time.Millisecond, *clk.Clock())
	require.NoError(t, err)
	require.Len(t, sink.frames, 4)
	assert.Equal(t, []uint32{0x00FF00, 0x00FF00}, sink.frames[0])
	assert.Equal(t, allOff(2), sink.frames[3])
	assert.True(t, sink.closed)
	assert.Len(t, clk.sleeps, 3)
}

func TestRunPatternStopsOnToken(t *testing.T) {
	sink := &recordingSink{}
	tok := NewStopToken()
	tok.Stop()
	r := calib.NewRunner(calib.Plan{Kind: calib.IndexSweep})
	require.NoError(t, RunPattern(tok, sink, r, render.GRB, 3, time.Millisecond, *newFakeClock().Clock()))
	require.Len(t, sink.frames, 1)
	assert.Equal(t, allOff(3), sink.frames[0])
}

func TestStopToken(t *testing.T) {
	tok := NewStopToken()
	assert.False(t, tok.Stopped())
	tok.Stop()
	tok.Stop()
	assert.True(t, tok.Stopped())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
}
