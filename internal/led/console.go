package led

import (
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/ambilight/internal/render"
)

// Console prints the strip to the terminal with ANSI colors.
type Console struct {
	drawer     display.Drawer
	img        *image.NRGBA
	order      render.WireOrder
	brightness int
}

func NewConsole(count int, order render.WireOrder, brightness int) *Console {
	return newConsole(screen.New(count), count, order, brightness)
}

func newConsole(d display.Drawer, count int, order render.WireOrder, brightness int) *Console {
	return &Console{
		drawer:     d,
		img:        image.NewNRGBA(image.Rect(0, 0, count, 1)),
		order:      order,
		brightness: brightness,
	}
}

func (c *Console) Render(buf []uint32) error {
	if err := checkLen(buf, c.img.Rect.Dx()); err != nil {
		return err
	}
	for x, w := range buf {
		p := c.order.Unpack(w)
		c.img.SetNRGBA(x, 0, color.NRGBA{
			R: scale(p.R, c.brightness),
			G: scale(p.G, c.brightness),
			B: scale(p.B, c.brightness),
			A: 255,
		})
	}
	return c.drawer.Draw(c.drawer.Bounds(), c.img, image.Point{})
}

func (c *Console) Close() error { return c.drawer.Halt() }
