package render

import (
	"image"
	"math"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/vectors"
)

// frame is a linear color buffer with per-pixel depth, so rasterised points
// and lines are hidden behind traced bodies.
type frame struct {
	w, h  int
	color []colors.Color4
	depth []float64
}

func newFrame(w, h int) *frame {
	return &frame{
		w:     w,
		h:     h,
		color: make([]colors.Color4, w*h),
		depth: make([]float64, w*h),
	}
}

func (f *frame) set(x, y int, c colors.Color4, depth float64) {
	i := y*f.w + x
	f.color[i] = c
	f.depth[i] = depth
}

// visible reports whether (x, y) is on screen and not occluded at depth.
func (f *frame) visible(x, y int, depth float64) (int, bool) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return 0, false
	}
	i := y*f.w + x
	return i, depth < f.depth[i]
}

// over alpha-blends c onto one pixel.
func (f *frame) over(x, y int, depth float64, c colors.Color4) {
	if i, ok := f.visible(x, y, depth); ok {
		f.color[i] = f.color[i].Over(c)
	}
}

// add blends c additively onto one pixel.
func (f *frame) add(x, y int, depth float64, c colors.Color4) {
	if i, ok := f.visible(x, y, depth); ok {
		f.color[i] = f.color[i].Additive(c)
	}
}

// splat draws a round point of the given pixel diameter centred on (cx, cy).
func (f *frame) splat(cx, cy, depth, size float64, c colors.Color4) {
	r := size / 2
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r*r+0.25 {
				f.over(x, y, depth, c)
			}
		}
	}
}

// line draws a world-space segment one pixel wide, interpolating depth.
func (f *frame) line(cam Camera, a, b vectors.Vec3, c colors.Color4) {
	ax, ay, ad, okA := cam.Project(a, f.w, f.h)
	bx, by, bd, okB := cam.Project(b, f.w, f.h)
	if !okA || !okB {
		return
	}
	steps := int(math.Ceil(math.Max(math.Abs(bx-ax), math.Abs(by-ay))))
	if steps == 0 {
		f.over(int(ax), int(ay), ad, c)
		return
	}
	if steps > 4*(f.w+f.h) {
		return
	}
	for s := 0; s < steps; s++ {
		t := float64(s) / float64(steps)
		x := ax + (bx-ax)*t
		y := ay + (by-ay)*t
		f.over(int(math.Floor(x)), int(math.Floor(y)), ad+(bd-ad)*t, c)
	}
}

func (f *frame) toImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.w, f.h))
	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			c := f.color[y*f.w+x].Clamp01()
			c.A = 1
			img.SetNRGBA(x, y, c.ToNRGBA())
		}
	}
	return img
}
