package render

import "math"

// Built-in HSV effects. Each takes a single amount parameter.
type (
	noneEffect     struct{}
	saturateEffect struct{}
	valueEffect    struct{}
	hueShiftEffect struct{}
)

func (noneEffect) Name() string { return "none" }
func (noneEffect) Build(float64) HSVTransform {
	return func(c HSV, _ int) HSV { return c }
}

// saturate scales saturation by amount (1 = unchanged).
func (saturateEffect) Name() string { return "saturate" }
func (saturateEffect) Build(amount float64) HSVTransform {
	return func(c HSV, _ int) HSV {
		c.S = math.Min(1, c.S*amount)
		return c
	}
}

// value scales value by amount (1 = unchanged). Hue and saturation are kept.
func (valueEffect) Name() string { return "value" }
func (valueEffect) Build(amount float64) HSVTransform {
	return func(c HSV, _ int) HSV {
		c.V = math.Min(1, c.V*amount)
		return c
	}
}

// hue_shift rotates hue by amount degrees.
func (hueShiftEffect) Name() string { return "hue_shift" }
func (hueShiftEffect) Build(amount float64) HSVTransform {
	return func(c HSV, _ int) HSV {
		c.H = math.Mod(c.H+amount+360, 360)
		return c
	}
}

// DefaultEffects returns a registry holding the built-in effects.
func DefaultEffects() *Registry {
	reg := NewRegistry()
	reg.Register(noneEffect{})
	reg.Register(saturateEffect{})
	reg.Register(valueEffect{})
	reg.Register(hueShiftEffect{})
	return reg
}
