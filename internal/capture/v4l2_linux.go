//go:build linux

package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
)

// V4L2 streams frames from a Video4Linux2 device.
type V4L2 struct {
	path   string
	dev    *device.Device
	format v4l2.PixFormat
	frames <-chan []byte
	cancel context.CancelFunc
	yuyv   *image.YCbCr
}

// OpenV4L2 opens path, negotiates width x height at fps in the named pixel
// format (MJPEG or YUYV) and starts streaming. The granted size must be at
// least min.
func OpenV4L2(path string, width, height, fps int, format string, min image.Point) (*V4L2, error) {
	pf, err := pixelFormat(format)
	if err != nil {
		return nil, err
	}
	dev, err := device.Open(path,
		device.WithIOType(v4l2.IOTypeMMAP),
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: pf,
			Width:       uint32(width),
			Height:      uint32(height),
			Field:       v4l2.FieldNone,
		}),
		device.WithFPS(uint32(fps)),
	)
	if err != nil {
		return nil, fmt.Errorf("open capture device %s: %w", path, err)
	}

	got, err := dev.GetPixFormat()
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("query pixel format on %s: %w", path, err)
	}
	if err := checkFormat(got, pf, min); err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := dev.Start(ctx); err != nil {
		cancel()
		_ = dev.Close()
		return nil, fmt.Errorf("start streaming on %s: %w", path, err)
	}
	return &V4L2{
		path:   path,
		dev:    dev,
		format: got,
		frames: dev.GetOutput(),
		cancel: cancel,
	}, nil
}

// checkFormat validates what the driver granted against what streaming needs.
func checkFormat(got v4l2.PixFormat, want v4l2.FourCCType, min image.Point) error {
	if got.PixelFormat != want {
		return fmt.Errorf("pixel format 0x%08x not granted", uint32(want))
	}
	return checkSize("device", int(got.Width), int(got.Height), min)
}

func pixelFormat(name string) (v4l2.FourCCType, error) {
	switch strings.ToUpper(name) {
	case "", "MJPEG", "MJPG":
		return v4l2.PixelFmtMJPEG, nil
	case "YUYV":
		return v4l2.PixelFmtYUYV, nil
	default:
		return 0, fmt.Errorf("unsupported pixel format %q", name)
	}
}

// Next blocks until the device delivers a frame.
func (v *V4L2) Next() (image.Image, error) {
	buf, ok := <-v.frames
	if !ok {
		return nil, ErrClosed
	}
	if len(buf) == 0 {
		return nil, ErrEmptyFrame
	}
	if v.format.PixelFormat == v4l2.PixelFmtYUYV {
		return v.decodeYUYV(buf)
	}
	img, err := jpeg.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode mjpeg frame: %w", err)
	}
	return img, nil
}

// decodeYUYV de-interleaves packed 4:2:2 into a reused YCbCr image.
func (v *V4L2) decodeYUYV(buf []byte) (image.Image, error) {
	w, h := int(v.format.Width), int(v.format.Height)
	stride := int(v.format.BytesPerLine)
	if stride == 0 {
		stride = w * 2
	}
	if len(buf) < stride*h {
		return nil, fmt.Errorf("short yuyv frame: %d bytes, want %d", len(buf), stride*h)
	}
	if v.yuyv == nil {
		v.yuyv = image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio422)
	}
	img := v.yuyv
	for y := 0; y < h; y++ {
		row := buf[y*stride:]
		for x := 0; x+1 < w; x += 2 {
			i := x * 2
			img.Y[y*img.YStride+x] = row[i]
			img.Y[y*img.YStride+x+1] = row[i+2]
			ci := y*img.CStride + x/2
			img.Cb[ci] = row[i+1]
			img.Cr[ci] = row[i+3]
		}
	}
	return img, nil
}

func (v *V4L2) Close() error {
	v.cancel()
	return v.dev.Close()
}

func (v *V4L2) String() string {
	return fmt.Sprintf("v4l2{%s %dx%d}", v.path, v.format.Width, v.format.Height)
}
