//go:build !linux

package capture

import (
	"fmt"
	"image"
)

type V4L2 struct{}

func OpenV4L2(path string, width, height, fps int, format string, min image.Point) (*V4L2, error) {
	return nil, fmt.Errorf("v4l2 capture not supported on this platform")
}

func (v *V4L2) Next() (image.Image, error) { return nil, ErrClosed }
func (v *V4L2) Close() error { return nil }
func (v *V4L2) String() string { return "v4l2{unsupported}" }
