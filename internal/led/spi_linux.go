//go:build linux

package led

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"github.com/coreman2200/ambilight/internal/render"
)

/*
Minimal spidev ioctl bindings. The nrzled driver covers the same hardware
through periph; this one has no host init and works on any spidev node.
*/

const (
	spiIOCWriteMode        = 0x40016b01
	spiIOCWriteBitsPerWord = 0x40016b03
	spiIOCWriteMaxSpeedHz  = 0x40046b04
)

type SPI struct {
	mu         sync.Mutex
	f          *os.File
	count      int
	brightness int
	resetUs    int
	enc        []byte
	zeros      []byte
	// byte -> 24-bit encoded (3 bytes) using 0b100 (0) / 0b110 (1)
	lut [256][3]byte
}

// NewSPI opens spidev (e.g. "/dev/spidev0.0") and prepares an encoder for WS2812-over-SPI.
// speedHz in the 2_400_000–3_200_000 range works well with this 3x expand scheme.
// resetUs is the latch (usually >= 280µs; 300–400 is safe).
func NewSPI(spiDev string, count int, brightness int, speedHz int, resetUs int) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if speedHz <= 0 {
		speedHz = 2400000
	}
	if resetUs <= 0 {
		resetUs = 300
	}
	f, err := os.OpenFile(spiDev, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open spidev: %w", err)
	}
	// mode 0
	mode := byte(0)
	if _, _, e := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), spiIOCWriteMode, uintptr(unsafe.Pointer(&mode))); e != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set mode: %v", e)
	}
	bpw := byte(8)
	if _, _, e := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), spiIOCWriteBitsPerWord, uintptr(unsafe.Pointer(&bpw))); e != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set bits-per-word: %v", e)
	}
	speed := uint32(speedHz)
	if _, _, e := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), spiIOCWriteMaxSpeedHz, uintptr(unsafe.Pointer(&speed))); e != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set speed: %v", e)
	}

	s := newSPIEncoder(count, brightness, resetUs)
	s.f = f
	return s, nil
}

func newSPIEncoder(count, brightness, resetUs int) *SPI {
	s := &SPI{
		count:      count,
		brightness: brightness,
		resetUs:    resetUs,
		enc:        make([]byte, count*9),
	}
	// At 2.4MHz one byte is ~3.3us; never send fewer than 128 zero bytes.
	resetBytes := (resetUs + 2) / 3
	if resetBytes < 128 {
		resetBytes = 128
	}
	s.zeros = make([]byte, resetBytes)

	// Expand each bit MSB->LSB to 3 SPI bits: 1 -> '110', 0 -> '100'.
	for v := 0; v < 256; v++ {
		out := uint32(0)
		for i := 7; i >= 0; i-- {
			if (v>>i)&1 == 1 {
				out = (out << 3) | 0b110
			} else {
				out = (out << 3) | 0b100
			}
		}
		s.lut[v][0] = byte(out >> 16)
		s.lut[v][1] = byte(out >> 8)
		s.lut[v][2] = byte(out)
	}
	return s
}

// encode expands buf into s.enc; words are already in wire order.
func (s *SPI) encode(buf []uint32) {
	for i, w := range buf {
		a, b, c := render.WireBytes(w)
		dst := s.enc[i*9 : i*9+9]
		for j, v := range [3]byte{a, b, c} {
			e := s.lut[scale(v, s.brightness)]
			dst[j*3+0], dst[j*3+1], dst[j*3+2] = e[0], e[1], e[2]
		}
	}
}

func (s *SPI) Render(buf []uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return fmt.Errorf("SPI closed")
	}
	if err := checkLen(buf, s.count); err != nil {
		return err
	}
	s.encode(buf)
	if _, err := s.f.Write(s.enc); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	// latch: hold the line low
	if _, err := s.f.Write(s.zeros); err != nil {
		return fmt.Errorf("spi latch: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f != nil {
		err := s.f.Close()
		s.f = nil
		return err
	}
	return nil
}
