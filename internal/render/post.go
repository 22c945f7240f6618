package render

// Limiter caps the power a frame can draw.
//   - WhiteCap: fraction (0..1) of full white a single LED may reach; 0 disables.
//   - ChanMA: mA per channel at full scale (WS2812 is about 20).
//   - BudgetMA: total budget for the strip; 0 disables the global stage.
//   - Knee: fraction of budget where soft limiting begins (default 0.9).
type Limiter struct {
	WhiteCap float64
	ChanMA   float64
	BudgetMA float64
	Knee     float64
}

// Enabled reports whether either stage would do anything.
func (l Limiter) Enabled() bool { return l.WhiteCap > 0 || l.BudgetMA > 0 }

// Apply limits buf in place.
func (l Limiter) Apply(buf []Pixel) {
	if l.WhiteCap > 0 && l.WhiteCap < 1 {
		limit := l.WhiteCap * 3 * 255
		for i := range buf {
			s := float64(buf[i].R) + float64(buf[i].G) + float64(buf[i].B)
			if s > limit {
				scalePixel(&buf[i], limit/s)
			}
		}
	}

	if l.BudgetMA <= 0 {
		return
	}
	chanmA := l.ChanMA
	if chanmA <= 0 {
		chanmA = 20
	}
	knee := l.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}

	total := EstimateCurrent(buf, chanmA)
	if total <= 0 {
		return
	}
	ratio := total / l.BudgetMA
	if ratio <= knee {
		return
	}
	minS := l.BudgetMA / total
	if ratio <= 1 {
		// map ratio in [knee,1] to scale in [1, budget/total]
		t := (ratio - knee) / (1 - knee)
		applyGlobalScale(buf, 1-t*(1-minS))
		return
	}
	applyGlobalScale(buf, minS)
}

// EstimateCurrent returns the estimated draw of buf in mA.
func EstimateCurrent(buf []Pixel, chanmA float64) float64 {
	var sum float64
	for i := range buf {
		sum += float64(buf[i].R) + float64(buf[i].G) + float64(buf[i].B)
	}
	return sum / 255.0 * chanmA
}

func applyGlobalScale(buf []Pixel, s float64) {
	if s >= 1 {
		return
	}
	for i := range buf {
		scalePixel(&buf[i], s)
	}
}

// scalePixel truncates so the result never exceeds the limit.
func scalePixel(p *Pixel, s float64) {
	p.R = uint8(float64(p.R) * s)
	p.G = uint8(float64(p.G) * s)
	p.B = uint8(float64(p.B) * s)
}
