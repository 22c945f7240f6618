package diagnostics

import "time"

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes emitted by the render loop.
const (
	LoopOverrun = "LOOP.OVERRUN"
	CaptureLost = "CAPTURE.LOST"
	LoopFault   = "LOOP.FAULT"
	LoopStopped = "LOOP.STOPPED"
)

type Diagnostic struct {
	Time           time.Time      `json:"time"`
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Sink receives diagnostics. Implementations must not block.
type Sink interface {
	Report(d Diagnostic)
}

// Discard drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}

// Overrun reports a late frame. sampleMS and mapMS are the engine stage
// timings of that frame.
func Overrun(elapsed, period time.Duration, frames uint64, sampleMS, mapMS float64) Diagnostic {
	return Diagnostic{
		Severity: Warn,
		Code:     LoopOverrun,
		Summary:  "Frame took longer than the frame period",
		LikelyCauses: []string{
			"capture device delivers fewer frames per second than loop.fps",
			"CPU contention",
		},
		SuggestedFixes: []string{"lower loop.fps", "lower capture resolution"},
		Evidence: map[string]any{
			"elapsed_ms": elapsed.Milliseconds(),
			"period_ms":  period.Milliseconds(),
			"frame":      frames,
			"sample_ms":  sampleMS,
			"map_ms":     mapMS,
		},
	}
}

func CaptureFailed(err error) Diagnostic {
	return Diagnostic{
		Severity:       Err,
		Code:           CaptureLost,
		Summary:        "Capture failed; stopping",
		Detail:         err.Error(),
		LikelyCauses:   []string{"camera unplugged", "device busy", "frame smaller than the working size"},
		SuggestedFixes: []string{"check capture.device", "raise capture.width/height"},
	}
}

func Fault(v any, stack []byte) Diagnostic {
	return Diagnostic{
		Severity: Err,
		Code:     LoopFault,
		Summary:  "Render loop fault",
		Detail:   string(stack),
		Evidence: map[string]any{"panic": v},
	}
}

func Stopped(frames, overruns uint64, err error) Diagnostic {
	d := Diagnostic{
		Severity: Info,
		Code:     LoopStopped,
		Summary:  "Render loop stopped",
		Evidence: map[string]any{"frames": frames, "overruns": overruns},
	}
	if err != nil {
		d.Severity = Warn
		d.Detail = err.Error()
	}
	return d
}
