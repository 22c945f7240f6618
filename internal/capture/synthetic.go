package capture

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync/atomic"
)

// Solid delivers the same uniform frame forever. Useful for bench testing a
// strip without a camera.
type Solid struct {
	frame  *image.RGBA
	closed atomic.Bool
}

func NewSolid(w, h int, c color.RGBA) *Solid {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 255
	}
	return &Solid{frame: img}
}

func (s *Solid) Next() (image.Image, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if s.frame.Rect.Empty() {
		return nil, ErrEmptyFrame
	}
	return s.frame, nil
}

func (s *Solid) Close() error { s.closed.Store(true); return nil }

func (s *Solid) String() string {
	return fmt.Sprintf("solid{%dx%d}", s.frame.Rect.Dx(), s.frame.Rect.Dy())
}

// Gradient renders a horizontal hue sweep that scrolls by speed (sweeps per
// frame). The left and right halves of the frame carry different hues, which
// makes the dual-edge split easy to check on hardware.
type Gradient struct {
	frame  *image.RGBA
	speed  float64
	phase  float64
	closed atomic.Bool
}

func NewGradient(w, h int, speed float64) *Gradient {
	return &Gradient{frame: image.NewRGBA(image.Rect(0, 0, w, h)), speed: speed}
}

func (g *Gradient) Next() (image.Image, error) {
	if g.closed.Load() {
		return nil, ErrClosed
	}
	b := g.frame.Rect
	if b.Empty() {
		return nil, ErrEmptyFrame
	}
	for x := 0; x < b.Dx(); x++ {
		v := float64(x)/float64(b.Dx()) + g.phase
		phase := v * 2 * math.Pi
		c := color.RGBA{
			R: uint8(255 * (0.5 + 0.5*math.Sin(phase))),
			G: uint8(255 * (0.5 + 0.5*math.Sin(phase+2*math.Pi/3))),
			B: uint8(255 * (0.5 + 0.5*math.Sin(phase+4*math.Pi/3))),
			A: 255,
		}
		for y := 0; y < b.Dy(); y++ {
			g.frame.SetRGBA(x, y, c)
		}
	}
	g.phase = math.Mod(g.phase+g.speed, 1)
	return g.frame, nil
}

func (g *Gradient) Close() error { g.closed.Store(true); return nil }

func (g *Gradient) String() string {
	return fmt.Sprintf("gradient{%dx%d}", g.frame.Rect.Dx(), g.frame.Rect.Dy())
}
