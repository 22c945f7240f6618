package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "ambilight.yaml"

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0
	Port    string `yaml:"port"`     // periph port name for nrzled, "" = first
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
	ResetUs int    `yaml:"reset_us"` // e.g. 300
}

type Strip struct {
	Driver     string `yaml:"driver"` // "ws2811" | "spidev" | "nrzled" | "console" | "sim"
	Count      int    `yaml:"count"`
	GPIO       int    `yaml:"gpio"`
	DMA        int    `yaml:"dma"`
	FreqHz     int    `yaml:"freq_hz"` // ws2811 data rate
	Invert     bool   `yaml:"invert"`
	Brightness int    `yaml:"brightness"` // 0..255, applied by the sink
	ColorOrder string `yaml:"color_order"`
	SPI        SPI    `yaml:"spi,omitempty"`
}

type Capture struct {
	Source string  `yaml:"source"` // "v4l2" | "solid" | "gradient"
	Device int     `yaml:"device"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    int     `yaml:"fps"`
	Format string  `yaml:"format"` // "MJPEG" | "YUYV"
	Color  string  `yaml:"color,omitempty"`
	Speed  float64 `yaml:"speed,omitempty"`
}

type Sampler struct {
	Cols       int    `yaml:"cols"`
	Rows       int    `yaml:"rows"`
	Border     int    `yaml:"border"`
	Geometry   string `yaml:"geometry"` // "single" | "dual"
	Edge       string `yaml:"edge"`     // single only
	Reverse    bool   `yaml:"reverse"`
	RightInset int    `yaml:"right_inset"` // dual only
}

type PowerCfg struct {
	WhiteCap float64 `yaml:"white_cap"`
	ChanMA   float64 `yaml:"chan_ma"`
	BudgetMA float64 `yaml:"budget_ma"`
	Knee     float64 `yaml:"knee"`
}

type Color struct {
	Space  string   `yaml:"space"` // "rgb" | "hsv"
	Effect string   `yaml:"effect"`
	Amount float64  `yaml:"amount"`
	Gamma  float64  `yaml:"gamma"` // 0 = built-in table
	Power  PowerCfg `yaml:"power"`
}

type Loop struct {
	FPS int `yaml:"fps"`
}

type Monitor struct {
	Addr string `yaml:"addr"` // "" disables
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type Config struct {
	Strip   Strip   `yaml:"strip"`
	Capture Capture `yaml:"capture"`
	Sampler Sampler `yaml:"sampler"`
	Color   Color   `yaml:"color"`
	Loop    Loop    `yaml:"loop"`
	Monitor Monitor `yaml:"monitor"`
	Log     Log     `yaml:"log"`
}

// Default returns the built-in configuration: a 300 LED GRB strip on GPIO 18
// / DMA 10, fed from /dev/video0 at 30 FPS through a 300x300 crop with a 3
// pixel border.
func Default() *Config {
	return &Config{
		Strip: Strip{
			Driver:     "ws2811",
			Count:      300,
			GPIO:       18,
			DMA:        10,
			FreqHz:     800000,
			Invert:     false,
			Brightness: 255,
			ColorOrder: "GRB",
			SPI: SPI{
				Dev:     "/dev/spidev0.0",
				SpeedHz: 2400000,
				ResetUs: 300,
			},
		},
		Capture: Capture{
			Source: "v4l2",
			Device: 0,
			Width:  640,
			Height: 480,
			FPS:    30,
			Format: "MJPEG",
			Color:  "ff0000",
			Speed:  0.01,
		},
		Sampler: Sampler{
			Cols:     300,
			Rows:     300,
			Border:   3,
			Geometry: "dual",
			Edge:     "bottom",
		},
		Color: Color{
			Space:  "rgb",
			Effect: "none",
			Amount: 1,
			Power:  PowerCfg{ChanMA: 20, Knee: 0.9},
		},
		Loop: Loop{FPS: 30},
		Log:  Log{Level: "info", Pretty: true},
	}
}

// Load overlays the YAML file at path on Default(). A missing file at
// DefaultPath is not an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		path = DefaultPath
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return c, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Period is the frame period for the configured loop rate.
func (c *Config) Period() time.Duration {
	if c.Loop.FPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Loop.FPS)
}

// WorkingSize is the resolution frames are shrunk to before cropping.
func (c *Config) WorkingSize() (int, int) {
	return c.Sampler.Cols + 2*c.Sampler.Border, c.Sampler.Rows + 2*c.Sampler.Border
}

// Validate checks values that would otherwise fail deep inside startup.
// Geometry fit is checked again by the sampler.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if c.Strip.Count <= 0 {
		add("strip.count must be positive, got %d", c.Strip.Count)
	}
	if c.Strip.Brightness < 0 || c.Strip.Brightness > 255 {
		add("strip.brightness must be 0..255, got %d", c.Strip.Brightness)
	}
	switch c.Strip.Driver {
	case "ws2811", "spidev", "nrzled", "console", "sim":
	default:
		add("unknown strip.driver %q", c.Strip.Driver)
	}
	switch strings.ToUpper(c.Strip.ColorOrder) {
	case "RGB", "RBG", "GRB", "GBR", "BRG", "BGR":
	default:
		add("unknown strip.color_order %q", c.Strip.ColorOrder)
	}
	if c.Strip.Driver == "nrzled" && strings.ToUpper(c.Strip.ColorOrder) != "GRB" {
		add("strip.driver nrzled only supports color_order GRB, got %q", c.Strip.ColorOrder)
	}

	switch c.Capture.Source {
	case "v4l2", "solid", "gradient":
	default:
		add("unknown capture.source %q", c.Capture.Source)
	}
	ww, wh := c.WorkingSize()
	if c.Capture.Width < ww || c.Capture.Height < wh {
		add("capture %dx%d is smaller than working resolution %dx%d", c.Capture.Width, c.Capture.Height, ww, wh)
	}

	if c.Sampler.Cols <= 0 || c.Sampler.Rows <= 0 || c.Sampler.Border < 0 {
		add("invalid sampler size %dx%d border %d", c.Sampler.Cols, c.Sampler.Rows, c.Sampler.Border)
	}
	switch c.Sampler.Geometry {
	case "single", "dual":
	default:
		add("unknown sampler.geometry %q", c.Sampler.Geometry)
	}

	switch c.Color.Space {
	case "rgb", "hsv":
	default:
		add("unknown color.space %q", c.Color.Space)
	}
	if c.Color.Gamma < 0 {
		add("color.gamma must not be negative")
	}

	if c.Loop.FPS <= 0 {
		add("loop.fps must be positive, got %d", c.Loop.FPS)
	}
	return errors.Join(errs...)
}
