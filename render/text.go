package render

import (
	"image"
	"image/draw"

	"github.com/echoflaresat/orrery/colors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	labelOpacity = 0.85
	titleTop     = 28
	titleScale   = 2
)

// drawLabels writes each visible planet name centred above the planet.
// Labels are drawn without a depth test.
func drawLabels(img *image.NRGBA, fb *frame, v View) {
	face := basicfont.Face7x13
	for _, p := range v.Scene.Planets {
		if !p.LabelVisible {
			continue
		}
		x, y, _, ok := v.Camera.Project(p.LabelPosition(), fb.w, fb.h)
		if !ok {
			continue
		}
		c := p.Body.Color().WithAlpha(labelOpacity)
		drawCentered(img, face, p.Body.Name, int(x), int(y), c)
	}
}

// drawTitle writes the focused body's name at the top of the frame, doubled
// in size.
func drawTitle(img *image.NRGBA, title string, c colors.Color4) {
	if title == "" {
		return
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, title).Ceil()
	h := face.Metrics().Height.Ceil()

	small := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(c.ToNRGBA()),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(title)

	bounds := img.Bounds()
	x0 := (bounds.Dx() - w*titleScale) / 2
	for y := 0; y < h*titleScale; y++ {
		for x := 0; x < w*titleScale; x++ {
			src := small.NRGBAAt(x/titleScale, y/titleScale)
			if src.A == 0 {
				continue
			}
			px, py := x0+x, titleTop+y
			if !image.Pt(px, py).In(bounds) {
				continue
			}
			dst := colors.FromStandardColor(img.NRGBAAt(px, py))
			img.SetNRGBA(px, py, dst.Over(colors.FromStandardColor(src)).ToNRGBA())
		}
	}
}

func drawCentered(img draw.Image, face font.Face, s string, cx, baseline int, c colors.Color4) {
	w := font.MeasureString(face, s).Ceil()
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c.ToNRGBA()),
		Face: face,
		Dot:  fixed.P(cx-w/2, baseline),
	}
	d.DrawString(s)
}
