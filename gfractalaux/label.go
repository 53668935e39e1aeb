package gfractalaux

import (
	"image"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var goRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// DrawLabel draws text with a drop shadow on the bottom left corner of img using the Go regular font.
// size is the font size in points at 72 DPI, which equals pixels.
func DrawLabel(img draw.Image, text string, size float64) error {
	ttf, err := goRegular()
	if err != nil {
		return err
	}
	bb := img.Bounds()
	margin := int(size / 2)
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(ttf)
	c.SetFontSize(size)
	c.SetClip(bb)
	c.SetDst(img)
	baseline := freetype.Pt(bb.Min.X+margin, bb.Max.Y-margin)
	shadow := freetype.Pt(bb.Min.X+margin+1, bb.Max.Y-margin+1)
	c.SetSrc(image.Black)
	_, err = c.DrawString(text, shadow)
	if err != nil {
		return err
	}
	c.SetSrc(image.White)
	_, err = c.DrawString(text, baseline)
	return err
}
