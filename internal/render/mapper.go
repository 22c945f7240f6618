package render

// Mapper turns a SampleRing into wire-ordered, gamma-corrected words.
// Stages: Transform -> Limiter -> Gamma -> Pack. All are pure.
type Mapper struct {
	Transform Transform
	Limiter   Limiter
	Gamma     *GammaTable
	Order     WireOrder
}

// NewMapper returns a Mapper with an identity transform and DefaultGamma.
func NewMapper(order WireOrder) *Mapper {
	g := DefaultGamma
	return &Mapper{
		Transform: Identity,
		Gamma:     &g,
		Order:     order,
	}
}

// Map writes min(len(ring), len(out)) words into out. ring is used as scratch
// when a transform or limiter is active.
func (m *Mapper) Map(ring []Pixel, out []uint32) {
	n := len(ring)
	if len(out) < n {
		n = len(out)
	}
	if m.Transform != nil {
		for i := 0; i < n; i++ {
			ring[i] = m.Transform(ring[i], i)
		}
	}
	if m.Limiter.Enabled() {
		m.Limiter.Apply(ring[:n])
	}
	g := m.Gamma
	if g == nil {
		g = &DefaultGamma
	}
	for i := 0; i < n; i++ {
		out[i] = m.Order.Pack(g.CorrectPixel(ring[i]))
	}
}
