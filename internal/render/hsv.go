package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ToHSV converts an 8-bit RGB pixel to hue/saturation/value.
func ToHSV(p Pixel) HSV {
	c := colorful.Color{
		R: float64(p.R) / 255.0,
		G: float64(p.G) / 255.0,
		B: float64(p.B) / 255.0,
	}
	h, s, v := c.Hsv()
	return HSV{H: h, S: s, V: v}
}

// FromHSV converts back to 8-bit RGB. Out-of-range inputs are wrapped (hue)
// or clamped (saturation, value).
func FromHSV(c HSV) Pixel {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsv(h, clamp(c.S, 0, 1), clamp(c.V, 0, 1)).Clamped().RGB255()
	return Pixel{R: r, G: g, B: b}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
