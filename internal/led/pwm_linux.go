//go:build linux && ws2811

package led

/*
#cgo LDFLAGS: -lws2811
#include <stdlib.h>
#include <stdint.h>
#include <ws2811/ws2811.h>
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/coreman2200/ambilight/internal/config"
)

// PWM drives the strip through the rpi_ws281x DMA/PWM library.
type PWM struct {
	count int

	mu  sync.Mutex
	dev *C.ws2811_t
	buf unsafe.Pointer
}

// NewPWM initializes channel 0 from cfg. Channel 1 stays unused.
func NewPWM(cfg config.Strip) (*PWM, error) {
	p := &PWM{count: cfg.Count}

	p.dev = (*C.ws2811_t)(C.calloc(1, C.size_t(unsafe.Sizeof(*p.dev))))
	if p.dev == nil {
		return nil, fmt.Errorf("calloc ws2811_t failed")
	}

	freq := cfg.FreqHz
	if freq <= 0 {
		freq = 800000
	}
	p.dev.freq = C.uint32_t(freq)
	p.dev.dmanum = C.int(cfg.DMA)

	ch := &p.dev.channel[0]
	ch.gpionum = C.int(cfg.GPIO)
	ch.count = C.int(cfg.Count)
	if cfg.Invert {
		ch.invert = 1
	}
	ch.brightness = C.uint8_t(cfg.Brightness & 0xFF)
	// Words arrive already packed in wire order, so ask the library to send
	// them verbatim (first byte = bits 16-23).
	ch.strip_type = C.WS2811_STRIP_RGB

	if st := C.ws2811_init(p.dev); st != C.WS2811_SUCCESS {
		C.free(unsafe.Pointer(p.dev))
		p.dev = nil
		return nil, fmt.Errorf("ws2811_init failed: %s", C.GoString(C.ws2811_get_return_t_str(st)))
	}

	p.buf = unsafe.Pointer(ch.leds)
	return p, nil
}

func (p *PWM) Render(buf []uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return fmt.Errorf("pwm not initialized")
	}
	if err := checkLen(buf, p.count); err != nil {
		return err
	}
	leds := unsafe.Slice((*C.ws2811_led_t)(p.buf), p.count)
	for i, w := range buf {
		leds[i] = C.ws2811_led_t(w)
	}
	if st := C.ws2811_render(p.dev); st != C.WS2811_SUCCESS {
		return fmt.Errorf("ws2811_render failed: %s", C.GoString(C.ws2811_get_return_t_str(st)))
	}
	return nil
}

func (p *PWM) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev != nil {
		C.ws2811_fini(p.dev)
		C.free(unsafe.Pointer(p.dev))
		p.dev = nil
	}
	return nil
}
