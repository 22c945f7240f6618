// Package sample extracts the LED ring from camera frames.
//
// A frame is first shrunk to a fixed working resolution with an
// area-averaging box filter, then a border margin is discarded and one pixel
// per LED is read from the remaining crop according to a layout.Ring.
package sample

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/coreman2200/ambilight/internal/layout"
	"github.com/coreman2200/ambilight/internal/render"
)

// ErrFrameTooSmall is returned for empty frames and frames below the working
// resolution. Callers treat it as a fatal capture error.
var ErrFrameTooSmall = errors.New("frame smaller than working resolution")

// box is an area-averaging filter: x/image/draw widens a kernel's support by
// the shrink factor, so a unit box covers every source pixel under the
// destination pixel.
var box = &draw.Kernel{
	Support: 0.5,
	At: func(t float64) float64 {
		if t < 0 {
			t = -t
		}
		if t < 0.5 {
			return 1
		}
		return 0
	},
}

// Config describes the working resolution and the ring geometry. Ring.Width
// and Ring.Height are taken from Cols and Rows.
type Config struct {
	Cols   int
	Rows   int
	Border int
	Ring   layout.Ring
}

// WorkingSize returns the resolution frames are shrunk to.
func (c Config) WorkingSize() image.Point {
	return image.Pt(c.Cols+2*c.Border, c.Rows+2*c.Border)
}

type Sampler struct {
	work *image.RGBA
	crop image.Rectangle
	pos  []image.Point

	scaler     draw.Scaler
	scalerFrom image.Point
}

// New validates cfg and allocates the working image.
func New(cfg Config) (*Sampler, error) {
	if cfg.Cols <= 0 || cfg.Rows <= 0 || cfg.Border < 0 {
		return nil, fmt.Errorf("invalid sampler size %dx%d border %d", cfg.Cols, cfg.Rows, cfg.Border)
	}
	ring := cfg.Ring
	ring.Width, ring.Height = cfg.Cols, cfg.Rows
	pos, err := ring.Positions()
	if err != nil {
		return nil, err
	}
	ws := cfg.WorkingSize()
	return &Sampler{
		work: image.NewRGBA(image.Rect(0, 0, ws.X, ws.Y)),
		crop: image.Rect(cfg.Border, cfg.Border, cfg.Border+cfg.Cols, cfg.Border+cfg.Rows),
		pos:  pos,
	}, nil
}

// Count returns the number of samples per frame.
func (s *Sampler) Count() int { return len(s.pos) }

// Sample fills dst, which must hold exactly Count() pixels.
func (s *Sampler) Sample(frame image.Image, dst []render.Pixel) error {
	if frame == nil {
		return fmt.Errorf("%w: empty frame", ErrFrameTooSmall)
	}
	b := frame.Bounds()
	ws := s.work.Rect.Size()
	if b.Empty() {
		return fmt.Errorf("%w: empty frame", ErrFrameTooSmall)
	}
	if b.Dx() < ws.X || b.Dy() < ws.Y {
		return fmt.Errorf("%w: got %dx%d, need %dx%d", ErrFrameTooSmall, b.Dx(), b.Dy(), ws.X, ws.Y)
	}
	if len(dst) != len(s.pos) {
		return fmt.Errorf("sample ring holds %d pixels, want %d", len(dst), len(s.pos))
	}

	if s.scaler == nil || s.scalerFrom != b.Size() {
		s.scaler = box.NewScaler(ws.X, ws.Y, b.Dx(), b.Dy())
		s.scalerFrom = b.Size()
	}
	s.scaler.Scale(s.work, s.work.Rect, frame, b, draw.Src, nil)

	for i, p := range s.pos {
		q := s.crop.Min.Add(p)
		off := s.work.PixOffset(q.X, q.Y)
		dst[i] = render.Pixel{R: s.work.Pix[off], G: s.work.Pix[off+1], B: s.work.Pix[off+2]}
	}
	return nil
}
