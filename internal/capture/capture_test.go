package capture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ambilight/internal/config"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, c)

	c, err = ParseHexColor("0000ff")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, c)

	for _, bad := range []string{"", "fff", "gg0000", "#12345678"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestDevicePath(t *testing.T) {
	assert.Equal(t, "/dev/video0", DevicePath(0))
	assert.Equal(t, "/dev/video2", DevicePath(2))
}

func TestSolidSource(t *testing.T) {
	s := NewSolid(64, 48, color.RGBA{R: 255, A: 255})
	img, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0}, []uint32{r, g, b})

	require.NoError(t, s.Close())
	_, err = s.Next()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEmptySolidSource(t *testing.T) {
	_, err := NewSolid(0, 0, color.RGBA{}).Next()
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestGradientScrolls(t *testing.T) {
	g := NewGradient(32, 4, 0.25)
	img, err := g.Next()
	require.NoError(t, err)
	first := img.At(0, 0)
	assert.Equal(t, first, img.At(0, 3), "columns are uniform")
	assert.NotEqual(t, img.At(0, 0), img.At(16, 0), "halves differ")

	img, err = g.Next()
	require.NoError(t, err)
	assert.NotEqual(t, first, img.At(0, 0))
}

func TestOpenSynthetic(t *testing.T) {
	src, err := Open(config.Capture{Source: "solid", Width: 8, Height: 8, Color: "00ff00"}, image.Pt(8, 8))
	require.NoError(t, err)
	assert.Equal(t, "solid{8x8}", src.String())

	src, err = Open(config.Capture{Source: "gradient", Width: 8, Height: 8}, image.Pt(4, 4))
	require.NoError(t, err)
	assert.Equal(t, "gradient{8x8}", src.String())

	_, err = Open(config.Capture{Source: "solid", Width: 8, Height: 8, Color: "nope"}, image.Point{})
	assert.Error(t, err)
	_, err = Open(config.Capture{Source: "rtsp"}, image.Point{})
	assert.Error(t, err)
}

func TestOpenRejectsFramesBelowWorkingSize(t *testing.T) {
	_, err := Open(config.Capture{Source: "solid", Width: 8, Height: 8, Color: "00ff00"}, image.Pt(8, 9))
	assert.Error(t, err)
	_, err = Open(config.Capture{Source: "gradient", Width: 320, Height: 240}, image.Pt(306, 306))
	assert.Error(t, err)
}
