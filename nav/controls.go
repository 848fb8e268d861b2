package nav

import (
	"math"

	"github.com/echoflaresat/orrery/vectors"
)

const polarEps = 1e-6

// Controls is a damped orbit controller: the camera circles Target at a
// distance clamped to Bounds. Input accumulates as pending deltas that Update
// applies, a DampingFactor fraction at a time.
type Controls struct {
	Target        vectors.Vec3
	Bounds        Bounds
	Enabled       bool
	DampingFactor float64
	RotateSpeed   float64
	ZoomSpeed     float64
	PanSpeed      float64

	dTheta float64 // pending azimuth change, radians
	dPhi   float64 // pending polar change, radians
	scale  float64 // pending radius multiplier
	pan    vectors.Vec3
}

func NewControls(target vectors.Vec3) *Controls {
	return &Controls{
		Target:        target,
		Bounds:        OverviewBounds(),
		Enabled:       true,
		DampingFactor: 0.05,
		RotateSpeed:   0.5,
		ZoomSpeed:     1.2,
		PanSpeed:      0.5,
		scale:         1,
	}
}

// Rotate orbits by a pointer drag of dx, dy pixels in a viewport of the
// given height. A full-height drag turns 2π·RotateSpeed.
func (c *Controls) Rotate(dx, dy float64, viewportHeight int) {
	if !c.Enabled || viewportHeight <= 0 {
		return
	}
	h := float64(viewportHeight)
	c.dTheta -= 2 * math.Pi * dx / h * c.RotateSpeed
	c.dPhi -= 2 * math.Pi * dy / h * c.RotateSpeed
}

// Zoom dollies toward the target for positive steps and away for negative.
func (c *Controls) Zoom(steps float64) {
	if !c.Enabled {
		return
	}
	c.scale *= math.Pow(0.95, c.ZoomSpeed*steps)
}

// Pan shifts the target in the camera's screen plane by a drag of dx, dy
// pixels, scaled so the point under the cursor follows it.
func (c *Controls) Pan(dx, dy float64, cameraPos vectors.Vec3, fovDeg float64, viewportHeight int) {
	if !c.Enabled || viewportHeight <= 0 {
		return
	}
	back := cameraPos.Sub(c.Target)
	dist := back.Norm() * math.Tan(fovDeg*math.Pi/360)
	right := vectors.Up().Cross(back).Normalize()
	up := back.Cross(right).Normalize()

	h := float64(viewportHeight)
	move := right.Scale(-2 * dx * dist / h * c.PanSpeed).
		Add(up.Scale(2 * dy * dist / h * c.PanSpeed))
	c.pan = c.pan.Add(move)
}

// Update applies pending input to the camera at pos and returns the new
// position. The result always lies within Bounds of Target and strictly off
// the vertical axis.
func (c *Controls) Update(pos vectors.Vec3) vectors.Vec3 {
	offset := pos.Sub(c.Target)

	radius := offset.Norm()
	theta := math.Atan2(offset.X, offset.Z)
	phi := 0.0
	if radius > 0 {
		phi = math.Acos(math.Max(-1, math.Min(1, offset.Y/radius)))
	}

	k := c.DampingFactor
	if k <= 0 {
		k = 1
	}
	theta += c.dTheta * k
	phi += c.dPhi * k
	phi = math.Max(polarEps, math.Min(math.Pi-polarEps, phi))

	scale := c.scale
	if scale == 0 {
		scale = 1
	}
	radius = c.Bounds.Clamp(radius * scale)

	c.Target = c.Target.Add(c.pan.Scale(k))

	sinPhi := math.Sin(phi)
	offset = vectors.Vec3{
		X: radius * sinPhi * math.Sin(theta),
		Y: radius * math.Cos(phi),
		Z: radius * sinPhi * math.Cos(theta),
	}

	if k < 1 {
		c.dTheta *= 1 - k
		c.dPhi *= 1 - k
		c.pan = c.pan.Scale(1 - k)
	} else {
		c.dTheta, c.dPhi = 0, 0
		c.pan = vectors.Zero()
	}
	c.scale = 1
	return c.Target.Add(offset)
}

// Settle drops pending motion, used when a flight hands control back.
func (c *Controls) Settle() {
	c.dTheta, c.dPhi = 0, 0
	c.pan = vectors.Zero()
	c.scale = 1
}
