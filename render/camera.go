package render

import (
	"math"

	"github.com/echoflaresat/orrery/vectors"
)

const (
	DefaultFOVDeg = 60.0
	NearPlane     = 0.1
	FarPlane      = 2000.0
)

// Camera models a perspective camera looking at a point, +Y up. FOVDeg is
// the vertical field of view.
type Camera struct {
	FOVDeg     float64
	TanHalfFOV float64
	Aspect     float64
	Position   vectors.Vec3
	Forward    vectors.Vec3
	Right      vectors.Vec3
	Up         vectors.Vec3
}

// NewCamera places a camera at pos facing lookAt. aspect is width/height.
func NewCamera(pos, lookAt vectors.Vec3, fovDeg, aspect float64) Camera {
	fovRad := fovDeg * math.Pi / 180.0
	tanHalf := math.Tan(fovRad / 2.0)
	if aspect <= 0 {
		aspect = 1
	}

	// Basis vectors
	fwd := lookAt.Sub(pos)
	if fwd.Norm() < 1e-12 {
		fwd = vectors.Vec3{Z: -1}
	}
	fwd = fwd.Normalize()
	right := fwd.Cross(vectors.Up())
	if right.Norm() < 1e-6 {
		right = vectors.Vec3{X: 1} // fallback when looking straight up or down
	}
	right = right.Normalize()
	up := right.Cross(fwd).Normalize()

	return Camera{
		FOVDeg:     fovDeg,
		TanHalfFOV: tanHalf,
		Aspect:     aspect,
		Position:   pos,
		Forward:    fwd,
		Right:      right,
		Up:         up,
	}
}

// WithAspect returns the camera with a new width/height ratio, as after a
// viewport resize.
func (c Camera) WithAspect(aspect float64) Camera {
	if aspect > 0 {
		c.Aspect = aspect
	}
	return c
}

// RayFromNDC returns the normalized direction through normalized device
// coordinates x, y in [-1, +1], +y up.
func (c Camera) RayFromNDC(x, y float64) vectors.Vec3 {
	dir := c.Right.Scale(x * c.TanHalfFOV * c.Aspect).
		Add(c.Up.Scale(y * c.TanHalfFOV)).
		Add(c.Forward)
	return dir.Normalize()
}

// ComputeRay returns the normalized viewing direction for pixel (i,j)
// given the image dimensions (width,height). i,j can be fractional (for supersampling).
func (c Camera) ComputeRay(i, j float64, width, height int) vectors.Vec3 {
	w := float64(width)
	h := float64(height)

	// Pixel centres map onto NDC; flip Y to make +up in screen space.
	xNDC := (i+0.5)/w*2 - 1
	yNDC := -((j+0.5)/h*2 - 1)
	return c.RayFromNDC(xNDC, yNDC)
}

// Project maps a world point to continuous pixel coordinates. ok is false for
// points behind the near plane; depth is the distance along Forward.
func (c Camera) Project(p vectors.Vec3, width, height int) (x, y, depth float64, ok bool) {
	d := p.Sub(c.Position)
	depth = d.Dot(c.Forward)
	if depth <= NearPlane {
		return 0, 0, depth, false
	}
	xNDC := d.Dot(c.Right) / (depth * c.TanHalfFOV * c.Aspect)
	yNDC := d.Dot(c.Up) / (depth * c.TanHalfFOV)

	x = (xNDC + 1) / 2 * float64(width)
	y = (1 - yNDC) / 2 * float64(height)
	return x, y, depth, true
}
