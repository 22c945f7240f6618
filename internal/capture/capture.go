// Package capture provides frame sources for the render loop.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/coreman2200/ambilight/internal/config"
)

var (
	// ErrEmptyFrame is returned when a device delivers a zero-length buffer.
	ErrEmptyFrame = errors.New("capture returned an empty frame")
	// ErrClosed is returned by Next after the source stopped streaming.
	ErrClosed = errors.New("capture source closed")
)

// Source delivers consecutive 3-channel 8-bit frames. Next blocks until a
// frame is available; it has no timeout, so a stalled device stalls the
// caller. Every error from Next is fatal to the run.
type Source interface {
	Next() (image.Image, error)
	Close() error
	String() string
}

// Open builds the source named by cfg.Source. Sources whose frames would be
// smaller than min are rejected here rather than on the first frame.
func Open(cfg config.Capture, min image.Point) (Source, error) {
	switch cfg.Source {
	case "v4l2", "":
		v, err := OpenV4L2(DevicePath(cfg.Device), cfg.Width, cfg.Height, cfg.FPS, cfg.Format, min)
		if err != nil {
			return nil, err
		}
		return v, nil
	case "solid":
		if err := checkSize(cfg.Source, cfg.Width, cfg.Height, min); err != nil {
			return nil, err
		}
		c, err := ParseHexColor(cfg.Color)
		if err != nil {
			return nil, err
		}
		return NewSolid(cfg.Width, cfg.Height, c), nil
	case "gradient":
		if err := checkSize(cfg.Source, cfg.Width, cfg.Height, min); err != nil {
			return nil, err
		}
		return NewGradient(cfg.Width, cfg.Height, cfg.Speed), nil
	default:
		return nil, fmt.Errorf("unknown capture source %q", cfg.Source)
	}
}

func checkSize(name string, w, h int, min image.Point) error {
	if w < min.X || h < min.Y {
		return fmt.Errorf("%s frames are %dx%d, below the working resolution %dx%d", name, w, h, min.X, min.Y)
	}
	return nil
}

// DevicePath maps a device index to its V4L2 node.
func DevicePath(index int) string {
	return "/dev/video" + strconv.Itoa(index)
}

// ParseHexColor parses "rrggbb" or "#rrggbb".
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
