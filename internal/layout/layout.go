package layout

import (
	"fmt"
	"image"
)

// Geometry selects how LED indices map onto the cropped frame.
type Geometry string

const (
	// Single samples one edge, one LED per pixel along it.
	Single Geometry = "single"
	// Dual splits the strip: first half runs down the left column, second
	// half runs down a column inset from the right edge.
	Dual Geometry = "dual"
)

// Edge picks the sampled edge in Single mode.
type Edge string

const (
	Bottom Edge = "bottom"
	Top    Edge = "top"
	Left   Edge = "left"
	Right  Edge = "right"
)

// Ring describes the physical LED ring over a Width x Height crop.
type Ring struct {
	Geometry   Geometry
	Edge       Edge
	Count      int
	Width      int
	Height     int
	Reverse    bool // flip index order along the edge (Single only)
	RightInset int  // columns between the right edge and the sampled column (Dual only)
}

// Index maps LED i to a crop-relative coordinate. It does not validate.
func (r Ring) Index(i int) image.Point {
	switch r.Geometry {
	case Dual:
		half := r.Count / 2
		if i < half {
			return image.Pt(0, i)
		}
		return image.Pt(r.Width-1-r.RightInset, i-half)
	default:
		if r.Reverse {
			i = r.edgeLen() - 1 - i
		}
		switch r.Edge {
		case Top:
			return image.Pt(i, 0)
		case Left:
			return image.Pt(0, i)
		case Right:
			return image.Pt(r.Width-1, i)
		default:
			return image.Pt(i, r.Height-1)
		}
	}
}

func (r Ring) edgeLen() int {
	if r.Edge == Left || r.Edge == Right {
		return r.Height
	}
	return r.Width
}

// Validate checks that every LED lands inside the crop.
func (r Ring) Validate() error {
	if r.Count <= 0 {
		return fmt.Errorf("invalid LED count: %d", r.Count)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid crop %dx%d", r.Width, r.Height)
	}
	switch r.Geometry {
	case Dual:
		if r.RightInset < 0 || r.RightInset >= r.Width {
			return fmt.Errorf("right inset %d outside crop width %d", r.RightInset, r.Width)
		}
		if r.Width-1-r.RightInset == 0 {
			return fmt.Errorf("right column overlaps left column")
		}
		if n := r.Count - r.Count/2; n > r.Height {
			return fmt.Errorf("%d LEDs per side do not fit %d rows", n, r.Height)
		}
	case Single:
		switch r.Edge {
		case Bottom, Top, Left, Right:
		default:
			return fmt.Errorf("unknown edge %q", r.Edge)
		}
		if r.Count > r.edgeLen() {
			return fmt.Errorf("%d LEDs do not fit a %s edge of %d pixels", r.Count, r.Edge, r.edgeLen())
		}
	default:
		return fmt.Errorf("unknown geometry %q", r.Geometry)
	}
	return nil
}

// Positions returns the coordinate of every LED, in strip order.
func (r Ring) Positions() ([]image.Point, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := make([]image.Point, r.Count)
	for i := range out {
		out[i] = r.Index(i)
	}
	return out, nil
}
