package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/ambilight/internal/render"
)

// nrzFreq is the SPI bit clock nrzled requires: 3 SPI bits per data bit at
// the WS2812 800kHz data rate, plus margin.
const nrzFreq = (800*3 + 100) * physic.KiloHertz

// NRZ drives WS281x LEDs through periph's nrzled encoder on an SPI port.
// nrzled takes RGB bytes and always sends GRB, so only GRB strips are
// accepted and wire words are unpacked back to RGB first.
type NRZ struct {
	dev        *nrzled.Dev
	port       spi.PortCloser
	count      int
	order      render.WireOrder
	brightness int
	rgb        []byte
}

// OpenNRZ initializes the host and opens SPI port name ("" picks the first).
func OpenNRZ(name string, count int, order render.WireOrder, brightness int) (*NRZ, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", name, err)
	}
	n, err := NewNRZ(p, count, order, brightness)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	n.port = p
	return n, nil
}

// NewNRZ wraps an already opened port.
func NewNRZ(p spi.Port, count int, order render.WireOrder, brightness int) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if order != render.GRB {
		return nil, fmt.Errorf("nrzled sends GRB only, strip.color_order is %q", order)
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      nrzFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{
		dev:        d,
		count:      count,
		order:      order,
		brightness: brightness,
		rgb:        make([]byte, count*3),
	}, nil
}

func (n *NRZ) Render(buf []uint32) error {
	if err := checkLen(buf, n.count); err != nil {
		return err
	}
	for i, w := range buf {
		p := n.order.Unpack(w)
		n.rgb[i*3+0] = scale(p.R, n.brightness)
		n.rgb[i*3+1] = scale(p.G, n.brightness)
		n.rgb[i*3+2] = scale(p.B, n.brightness)
	}
	if _, err := n.dev.Write(n.rgb); err != nil {
		return fmt.Errorf("nrzled write: %w", err)
	}
	return nil
}

func (n *NRZ) Close() error {
	err := n.dev.Halt()
	if n.port != nil {
		if cerr := n.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (n *NRZ) String() string { return n.dev.String() }
