package app

import (
	"errors"
	"fmt"
	"image"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/ambilight/internal/calib"
	"github.com/coreman2200/ambilight/internal/capture"
	"github.com/coreman2200/ambilight/internal/config"
	"github.com/coreman2200/ambilight/internal/diagnostics"
	"github.com/coreman2200/ambilight/internal/layout"
	"github.com/coreman2200/ambilight/internal/led"
	"github.com/coreman2200/ambilight/internal/render"
	"github.com/coreman2200/ambilight/internal/sample"
)

// ErrFault wraps a panic recovered from the render loop.
var ErrFault = errors.New("render loop fault")

// Options override the hardware openers and attach observers.
type Options struct {
	OpenSink   func(config.Strip) (led.Driver, error)
	OpenSource func(cfg config.Capture, min image.Point) (capture.Source, error)
	Diag       diagnostics.Sink
	Observer   Observer
	Clock      *Clock
}

type Core struct {
	Cfg    *config.Config
	Sink   led.Driver
	Source capture.Source
	Engine *render.Engine
	Loop   *Loop
	Log    zerolog.Logger
	Diag   diagnostics.Sink

	shutdown sync.Once
}

// Startup validates cfg, initializes the sink, builds the pipeline and opens
// the capture source, in that order. Any failure releases what was opened
// and is returned; the loop never reaches Running.
func Startup(cfg *config.Config, log zerolog.Logger, opts Options) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if opts.OpenSink == nil {
		opts.OpenSink = led.Open
	}
	if opts.OpenSource == nil {
		opts.OpenSource = capture.Open
	}
	if opts.Diag == nil {
		opts.Diag = diagnostics.Discard
	}

	sink, err := opts.OpenSink(cfg.Strip)
	if err != nil {
		return nil, fmt.Errorf("led sink %q: %w", cfg.Strip.Driver, err)
	}
	log.Info().Str("driver", cfg.Strip.Driver).Int("count", cfg.Strip.Count).Msg("led sink ready")

	eng, err := BuildEngine(cfg)
	if err != nil {
		_ = sink.Close()
		return nil, err
	}

	src, err := opts.OpenSource(cfg.Capture, image.Pt(cfg.WorkingSize()))
	if err != nil {
		_ = sink.Close()
		return nil, fmt.Errorf("capture %q: %w", cfg.Capture.Source, err)
	}
	log.Info().Str("source", src.String()).Msg("capture open")

	loop := NewLoop(src, eng, sink, cfg.Period(), log)
	loop.Diag = opts.Diag
	loop.Observer = opts.Observer
	if opts.Clock != nil {
		loop.Clock = *opts.Clock
	}

	return &Core{
		Cfg:    cfg,
		Sink:   sink,
		Source: src,
		Engine: eng,
		Loop:   loop,
		Log:    log,
		Diag:   opts.Diag,
	}, nil
}

// BuildEngine assembles sampler and mapper from cfg.
func BuildEngine(cfg *config.Config) (*render.Engine, error) {
	s, err := sample.New(sample.Config{
		Cols:   cfg.Sampler.Cols,
		Rows:   cfg.Sampler.Rows,
		Border: cfg.Sampler.Border,
		Ring: layout.Ring{
			Geometry:   layout.Geometry(cfg.Sampler.Geometry),
			Edge:       layout.Edge(cfg.Sampler.Edge),
			Count:      cfg.Strip.Count,
			Reverse:    cfg.Sampler.Reverse,
			RightInset: cfg.Sampler.RightInset,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}
	m, err := BuildMapper(cfg.Strip.ColorOrder, cfg.Color, render.DefaultEffects())
	if err != nil {
		return nil, err
	}
	return render.NewEngine(s, m, cfg.Strip.Count)
}

// BuildMapper wires the color stages. The HSV round trip is only inserted
// when asked for or when an effect needs it.
func BuildMapper(order string, c config.Color, effects *render.Registry) (*render.Mapper, error) {
	wo, err := render.ParseWireOrder(order)
	if err != nil {
		return nil, err
	}
	m := render.NewMapper(wo)

	g := render.BuildGamma(c.Gamma)
	m.Gamma = &g

	name := c.Effect
	if name == "" {
		name = "none"
	}
	e, ok := effects.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown effect %q (have %v)", name, effects.List())
	}
	if c.Space == "hsv" || name != "none" {
		m.Transform = render.ThroughHSV(e.Build(c.Amount))
	}

	m.Limiter = render.Limiter{
		WhiteCap: c.Power.WhiteCap,
		ChanMA:   c.Power.ChanMA,
		BudgetMA: c.Power.BudgetMA,
		Knee:     c.Power.Knee,
	}
	return m, nil
}

// Run drives the loop until the token stops it or a step fails, then always
// shuts down. Panics on the loop goroutine are reported and returned as
// ErrFault.
func (c *Core) Run(token *StopToken) (err error) {
	debug.SetPanicOnFault(true)
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			c.Log.Error().Interface("panic", r).Str("stack", string(stack)).Msg("render loop fault")
			c.Diag.Report(diagnostics.Fault(r, stack))
			err = fmt.Errorf("%w: %v", ErrFault, r)
		}
		c.Shutdown(err)
	}()

	err = c.Loop.Run(token)
	if err != nil {
		c.Log.Error().Err(err).Msg("render loop failed")
	}
	return err
}

// Shutdown writes all-off to the strip, pushes it once, then releases sink
// and source. Errors are logged. Only the first call does anything.
func (c *Core) Shutdown(cause error) {
	c.shutdown.Do(func() {
		c.Loop.setState(Stopping)
		c.Engine.Clear()
		if err := c.Sink.Render(c.Engine.Strip()); err != nil {
			c.Log.Warn().Err(err).Msg("clear strip")
		}
		if err := c.Sink.Close(); err != nil {
			c.Log.Warn().Err(err).Msg("close led sink")
		}
		if err := c.Source.Close(); err != nil {
			c.Log.Warn().Err(err).Msg("close capture")
		}
		c.Loop.setState(Stopped)

		st := c.Loop.Stats()
		c.Diag.Report(diagnostics.Stopped(st.Frames, st.Overruns, cause))
		c.Log.Info().Uint64("frames", st.Frames).Uint64("overruns", st.Overruns).Msg("render loop stopped")
	})
}

// RunPattern pushes a calibration pattern at period until it completes or
// token stops, then clears the strip and closes sink.
func RunPattern(token *StopToken, sink led.Driver, runner *calib.Runner, order render.WireOrder, count int, period time.Duration, clock Clock) (err error) {
	buf := make([]uint32, count)
	defer func() {
		for i := range buf {
			buf[i] = order.Pack(render.Off)
		}
		if cerr := sink.Render(buf); err == nil {
			err = cerr
		}
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
	}()

	for !token.Stopped() {
		target := clock.Now().Add(period)
		if !runner.Step(buf, order) {
			return nil
		}
		if err := sink.Render(buf); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		if d := target.Sub(clock.Now()); d > 0 {
			clock.Sleep(d)
		}
	}
	return nil
}

// ExitCode maps a run result to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
