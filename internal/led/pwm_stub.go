//go:build !linux || !ws2811

package led

import (
	"fmt"

	"github.com/coreman2200/ambilight/internal/config"
)

// PWM is only available on linux builds tagged ws2811 (needs libws2811).
type PWM struct{}

func NewPWM(cfg config.Strip) (*PWM, error) {
	return nil, fmt.Errorf("ws2811 driver not compiled in; rebuild with -tags ws2811 or pick another strip.driver")
}
func (p *PWM) Render(buf []uint32) error { return fmt.Errorf("ws2811 driver not compiled in") }
func (p *PWM) Close() error { return nil }
