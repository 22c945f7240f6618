package render

import (
	"fmt"
	"strings"
)

// Bit offsets inside a packed 24-bit wire word. The first channel sent on the
// wire lives in the most significant byte.
const (
	FirstOffset  uint8 = 0x10
	SecondOffset uint8 = 0x08
	ThirdOffset  uint8 = 0x00
)

// WireOrder names the channel order the strip expects, e.g. "GRB".
type WireOrder string

const (
	RGB WireOrder = "RGB"
	RBG WireOrder = "RBG"
	GRB WireOrder = "GRB"
	GBR WireOrder = "GBR"
	BRG WireOrder = "BRG"
	BGR WireOrder = "BGR"
)

// ParseWireOrder validates s.
func ParseWireOrder(s string) (WireOrder, error) {
	switch o := WireOrder(strings.ToUpper(s)); o {
	case RGB, RBG, GRB, GBR, BRG, BGR:
		return o, nil
	}
	return "", fmt.Errorf("unknown color order %q", s)
}

func setchan(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getchan(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

func (o WireOrder) channel(p Pixel, pos int) uint8 {
	switch o[pos] {
	case 'R':
		return p.R
	case 'G':
		return p.G
	default:
		return p.B
	}
}

// Pack places p into a 24-bit word in wire order. An empty order packs GRB.
func (o WireOrder) Pack(p Pixel) uint32 {
	if len(o) != 3 {
		o = GRB
	}
	var w uint32
	w = setchan(w, o.channel(p, 0), FirstOffset)
	w = setchan(w, o.channel(p, 1), SecondOffset)
	w = setchan(w, o.channel(p, 2), ThirdOffset)
	return w
}

// Unpack is the inverse of Pack.
func (o WireOrder) Unpack(w uint32) Pixel {
	if len(o) != 3 {
		o = GRB
	}
	var p Pixel
	for i, off := range [3]uint8{FirstOffset, SecondOffset, ThirdOffset} {
		v := getchan(w, off)
		switch o[i] {
		case 'R':
			p.R = v
		case 'G':
			p.G = v
		default:
			p.B = v
		}
	}
	return p
}

// WireBytes returns the three bytes of w in transmission order.
func WireBytes(w uint32) (byte, byte, byte) {
	return getchan(w, FirstOffset), getchan(w, SecondOffset), getchan(w, ThirdOffset)
}
