package led

import (
	"fmt"

	"github.com/coreman2200/ambilight/internal/config"
	"github.com/coreman2200/ambilight/internal/render"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Render pushes one frame. buf holds one 24-bit word per LED, packed in
	// the strip's wire order, and must match the configured LED count.
	Render(buf []uint32) error
	// Close releases resources.
	Close() error
}

// Open initializes the sink named by cfg.Driver. Failures are returned as is;
// there is no fallback to another sink.
func Open(cfg config.Strip) (Driver, error) {
	order, err := render.ParseWireOrder(cfg.ColorOrder)
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case "ws2811":
		p, err := NewPWM(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "spidev":
		s, err := NewSPI(cfg.SPI.Dev, cfg.Count, cfg.Brightness, cfg.SPI.SpeedHz, cfg.SPI.ResetUs)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "nrzled":
		n, err := OpenNRZ(cfg.SPI.Port, cfg.Count, order, cfg.Brightness)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "console":
		return NewConsole(cfg.Count, order, cfg.Brightness), nil
	case "sim":
		return NewSim(cfg.Count), nil
	default:
		return nil, fmt.Errorf("unknown strip driver %q", cfg.Driver)
	}
}

// scale applies a 0..255 brightness to one channel; 255 is lossless.
func scale(v byte, brightness int) byte {
	return byte((uint16(v) * uint16(brightness+1)) >> 8)
}

func checkLen(buf []uint32, count int) error {
	if len(buf) != count {
		return fmt.Errorf("frame length %d does not match count %d", len(buf), count)
	}
	return nil
}
