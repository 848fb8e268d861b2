package render

import (
	"context"
	"image"
	"math"
	"runtime"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/vectors"
	"golang.org/x/sync/errgroup"
)

// Theme holds the light and background colors of the scene.
type Theme struct {
	Background colors.Color4
	Ambient    colors.Color4
	SunLight   colors.Color4
	HeadLight  colors.Color4
	Exposure   float64
}

// DefaultTheme matches the scene's light rig: a dim blue ambient, a warm
// point light at the sun and a white light riding with the camera.
func DefaultTheme() Theme {
	return Theme{
		Background: colors.MustParseHex("#000005"),
		Ambient:    colors.MustParseHex("#334466").ScaleRGB(0.6),
		SunLight:   colors.MustParseHex("#fff5e0"),
		HeadLight:  colors.White().ScaleRGB(0.35),
		Exposure:   1.2,
	}
}

const (
	cloudOpacity  = 0.4
	ringOpacity   = 0.85
	starOpacity   = 0.9
	coronaOpacity = 0.4
	glowAlpha     = 0.6
)

// View is one frame to draw.
type View struct {
	Scene      *scene.Scene
	Camera     Camera
	Title      string
	TitleColor colors.Color4
}

// Renderer ray traces the bodies and rasterises stars, corona, orbit paths
// and text on top.
type Renderer struct {
	Width         int
	Height        int
	Supersampling int
	Workers       int
	Theme         Theme
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height, Supersampling: 1, Theme: DefaultTheme()}
}

// Smoothstep performs a Hermite interpolation between 0 and 1 across [edge0, edge1].
// Returns 0 if x < edge0, 1 if x > edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	// Avoid division by zero
	if edge0 == edge1 {
		if x < edge0 {
			return 0.0
		}
		return 1.0
	}

	t := (x - edge0) / (edge1 - edge0)
	if t < 0.0 {
		t = 0.0
	} else if t > 1.0 {
		t = 1.0
	}
	return t * t * (3.0 - 2.0*t)
}

// Clip clamps x into the inclusive range [min, max].
func Clip(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// GenerateSupersamplingOffsets returns n×n offsets in [-0.5, +0.5] for
// supersampling, as pairs (dx, dy) with pixel-center spacing.
func GenerateSupersamplingOffsets(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	step := 1.0 / float64(n)
	out := make([][2]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := (float64(i)+0.5)*step - 0.5
			dy := (float64(j)+0.5)*step - 0.5
			out = append(out, [2]float64{dx, dy})
		}
	}
	return out
}

// Render draws the view. Rows are traced in parallel; ctx cancels between rows.
func (r *Renderer) Render(ctx context.Context, v View) (*image.NRGBA, error) {
	W, H := r.Width, r.Height
	fb := newFrame(W, H)

	offsets := GenerateSupersamplingOffsets(max(1, r.Supersampling))
	N := float64(len(offsets))

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < H; y++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rc := NewRayContext(v.Camera.Position, v.Scene)
			for x := 0; x < W; x++ {
				colorAccum := colors.Color4{}
				depth := math.Inf(1)
				for _, off := range offsets {
					rayDir := v.Camera.ComputeRay(float64(x)+off[0], float64(y)+off[1], W, H)
					rc.SetRayDirection(rayDir)
					colorAccum = colorAccum.Add(r.shade(rc))
					if rc.Surface != Nothing {
						depth = math.Min(depth, rc.T*rayDir.Dot(v.Camera.Forward))
					}
				}
				fb.set(x, y, colorAccum.Scale(1.0/N), depth)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.drawStars(fb, v)
	r.drawCorona(fb, v)
	r.drawOrbits(fb, v)

	img := fb.toImage()
	drawLabels(img, fb, v)
	drawTitle(img, v.Title, v.TitleColor)
	return img, nil
}

// shade colors one ray: the opaque hit, then the cloud layer and the
// additive glow in front of it.
func (r *Renderer) shade(rc *RayContext) colors.Color4 {
	var c colors.Color4
	switch rc.Surface {
	case SunSurface:
		sun := rc.scene.Sun
		c = sun.Surface.Sample(sun.ToLocal(rc.SurfaceNormal))
		c = ToneMap(c, r.Theme.Exposure)
	case PlanetSurface:
		p := rc.Planet
		albedo := p.Surface.Sample(p.SurfaceLocal(rc.HitPoint))
		c = ToneMap(r.light(rc.HitPoint, rc.SurfaceNormal, albedo), r.Theme.Exposure)
	case RingSurface:
		p := rc.Planet
		u := (vectors.Distance(rc.HitPoint, p.WorldPosition()) - p.Body.Ring.Inner) / (p.Body.Ring.Outer - p.Body.Ring.Inner)
		tex := p.Ring.SampleRadial(u)
		lit := ToneMap(r.lightTwoSided(rc.HitPoint, rc.SurfaceNormal, tex), r.Theme.Exposure)
		c = r.Theme.Background.Mix(lit, tex.A*ringOpacity)
	default:
		c = r.Theme.Background
	}

	if rc.CloudPlanet != nil {
		p := rc.CloudPlanet
		cloud := p.Clouds.Sample(p.CloudLocal(rc.CloudPoint))
		light := Smoothstep(-0.1, 0.3, rc.CloudNormal.Dot(rc.CloudPoint.Scale(-1).Normalize()))
		c = BlendClouds(c, cloud, math.Max(light, 0.15), cloudOpacity)
	}

	if rc.GlowHit {
		sun := rc.scene.Sun
		k := sun.GlowIntensity(rc.GlowNormal)
		c = c.Additive(sun.Body.GlowColor().ScaleRGB(k * k * glowAlpha))
	}
	return c.Clamp01()
}

// light applies the ambient, sun and head lights to a front-facing surface.
func (r *Renderer) light(p, n vectors.Vec3, albedo colors.Color4) colors.Color4 {
	toSun := p.Scale(-1).Normalize()
	sun := Smoothstep(-0.05, 0.25, n.Dot(toSun)) * Clip(n.Dot(toSun), 0, 1)
	return r.illuminate(albedo, sun)
}

func (r *Renderer) lightTwoSided(p, n vectors.Vec3, albedo colors.Color4) colors.Color4 {
	toSun := p.Scale(-1).Normalize()
	return r.illuminate(albedo, math.Abs(n.Dot(toSun)))
}

func (r *Renderer) illuminate(albedo colors.Color4, sun float64) colors.Color4 {
	lightRGB := r.Theme.Ambient.
		Add(r.Theme.SunLight.ScaleRGB(sun)).
		Add(r.Theme.HeadLight)
	out := albedo.Mul(lightRGB)
	out.A = 1
	return out
}

// BlendClouds overlays cloud RGB texture onto the base surface color using inferred alpha.
// 'light' is the sunlight factor (0..1), 'opacity' the layer's maximum coverage.
func BlendClouds(C, CCloud colors.Color4, light, opacity float64) colors.Color4 {
	brightness := (CCloud.R + CCloud.G + CCloud.B) / 3.0
	cloudAlpha := Clip(brightness*opacity, 0, 1)

	r := C.R + (CCloud.R*light-C.R)*cloudAlpha
	g := C.G + (CCloud.G*light-C.G)*cloudAlpha
	b := C.B + (CCloud.B*light-C.B)*cloudAlpha
	a := C.A // preserve base alpha

	return colors.Color4{R: r, G: g, B: b, A: a}
}

// ToneMap applies exposure and the ACES filmic curve fit by Narkowicz.
func ToneMap(c colors.Color4, exposure float64) colors.Color4 {
	f := func(x float64) float64 {
		x *= exposure
		return Clip((x*(2.51*x+0.03))/(x*(2.43*x+0.59)+0.14), 0, 1)
	}
	return colors.Color4{R: f(c.R), G: f(c.G), B: f(c.B), A: c.A}
}

func (r *Renderer) drawStars(fb *frame, v View) {
	stars := v.Scene.Stars
	if stars == nil {
		return
	}
	pxPerUnit := float64(fb.h) / (2 * v.Camera.TanHalfFOV)
	for i := range stars.Positions {
		x, y, depth, ok := v.Camera.Project(stars.WorldPosition(i), fb.w, fb.h)
		if !ok || depth > FarPlane {
			continue
		}
		size := stars.Sizes[i] * pxPerUnit / depth
		c := stars.Colors[i].WithAlpha(starOpacity * Clip(size, 0, 1))
		fb.splat(x, y, depth, math.Max(1, size), c)
	}
}

func (r *Renderer) drawCorona(fb *frame, v View) {
	corona := v.Scene.Corona
	if corona == nil {
		return
	}
	c := scene.CoronaColor.WithAlpha(coronaOpacity)
	for i := range corona.Points {
		x, y, depth, ok := v.Camera.Project(corona.WorldPosition(i), fb.w, fb.h)
		if !ok {
			continue
		}
		fb.add(int(x), int(y), depth, c)
	}
}

func (r *Renderer) drawOrbits(fb *frame, v View) {
	for _, p := range v.Scene.Planets {
		c := p.OrbitColor()
		for i := 1; i < len(p.Orbit); i++ {
			fb.line(v.Camera, p.Orbit[i-1], p.Orbit[i], c)
		}
	}
}
