package render

import (
	"image"
	"sort"
)

// Pixel is one 8-bit RGB sample.
type Pixel struct{ R, G, B uint8 }

// Off is the all-off color.
var Off = Pixel{}

// HSV holds hue in degrees [0,360) and saturation/value in [0,1].
type HSV struct{ H, S, V float64 }

// Transform adjusts one ring sample. index is the physical LED position.
type Transform func(p Pixel, index int) Pixel

// HSVTransform is a Transform expressed in hue/saturation/value space.
type HSVTransform func(c HSV, index int) HSV

// Identity returns p unchanged.
func Identity(p Pixel, _ int) Pixel { return p }

// ThroughHSV lifts f into a Transform that converts to HSV, applies f and
// converts back.
func ThroughHSV(f HSVTransform) Transform {
	if f == nil {
		f = func(c HSV, _ int) HSV { return c }
	}
	return func(p Pixel, index int) Pixel {
		return FromHSV(f(ToHSV(p), index))
	}
}

// Sampler fills dst with one sample per LED from a raw frame.
type Sampler interface {
	Sample(frame image.Image, dst []Pixel) error
}

// Effect builds an HSVTransform from a single amount parameter.
type Effect interface {
	Name() string
	Build(amount float64) HSVTransform
}

type Registry struct{ m map[string]Effect }

func NewRegistry() *Registry { return &Registry{m: map[string]Effect{}} }

func (r *Registry) Register(e Effect) {
	if e == nil {
		return
	}
	r.m[e.Name()] = e
}

func (r *Registry) Get(name string) (Effect, bool) { e, ok := r.m[name]; return e, ok }

func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
