package calib

import (
	"fmt"

	"github.com/coreman2200/ambilight/internal/render"
)

type Kind string

const (
	None        Kind = ""
	IndexSweep  Kind = "index_sweep"
	RGBChannels Kind = "rgb_channels"
	Halves      Kind = "halves"
)

// Kinds lists the supported patterns.
var Kinds = []Kind{IndexSweep, RGBChannels, Halves}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown calibration pattern %q", s)
}

// Plan selects a pattern. Hold is the number of frames each step stays lit.
type Plan struct {
	Kind Kind
	Hold int
}

type Runner struct {
	plan  Plan
	step  int
	frame int
}

func NewRunner(plan Plan) *Runner {
	if plan.Hold <= 0 {
		plan.Hold = 1
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Steps returns how many distinct frames the pattern has for n LEDs.
func (r *Runner) Steps(n int) int {
	switch r.plan.Kind {
	case IndexSweep:
		return n
	case RGBChannels:
		return 3
	case Halves:
		return 1
	}
	return 0
}

// Step fills buf with the next frame; returns false when complete.
func (r *Runner) Step(buf []uint32, order render.WireOrder) bool {
	n := len(buf)
	if r.step >= r.Steps(n) {
		return false
	}
	for i := range buf {
		buf[i] = 0
	}

	switch r.plan.Kind {
	case IndexSweep:
		buf[r.step] = order.Pack(render.Pixel{R: 255, G: 255, B: 255})
	case RGBChannels:
		var p render.Pixel
		switch r.step {
		case 0:
			p.R = 255
		case 1:
			p.G = 255
		case 2:
			p.B = 255
		}
		w := order.Pack(p)
		for i := range buf {
			buf[i] = w
		}
	case Halves:
		// dual-edge split: first half left column, second half right column
		left := order.Pack(render.Pixel{R: 255})
		right := order.Pack(render.Pixel{B: 255})
		for i := range buf {
			if i < n/2 {
				buf[i] = left
			} else {
				buf[i] = right
			}
		}
	}

	r.frame++
	if r.frame >= r.plan.Hold {
		r.frame = 0
		r.step++
	}
	return true
}
