package scene

import (
	"math"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/texture"
	"github.com/echoflaresat/orrery/vectors"
)

const (
	sunSpinRate     = 0.001
	glowScale       = 1.3
	cloudScale      = 1.02
	cloudSpinFactor = 1.1
	labelLift       = 1.5
	orbitSegments   = 128
	orbitOpacity    = 0.15
)

// Sun is the central body, its texture and its glow shell.
type Sun struct {
	Body    *bodies.CelestialBody
	Surface texture.Texture
	Spin    float64
	// ViewVector is the camera position relative to the sun, refreshed each
	// frame for the glow falloff.
	ViewVector vectors.Vec3
}

// GlowRadius is the radius of the additive glow shell.
func (s *Sun) GlowRadius() float64 {
	return s.Body.Radius * glowScale
}

// GlowIntensity is max(0, 0.7 - n·v)² for a glow-shell normal n and the
// current view vector.
func (s *Sun) GlowIntensity(normal vectors.Vec3) float64 {
	k := 0.7 - normal.Dot(s.ViewVector.Normalize())
	if k <= 0 {
		return 0
	}
	return k * k
}

func (s *Sun) Rotate() {
	s.Spin += sunSpinRate
}

// ToLocal maps a world point into the sun's texture frame.
func (s *Sun) ToLocal(p vectors.Vec3) vectors.Vec3 {
	return p.RotateY(-s.Spin)
}

// Object is one planet in the scene. Body is a back-reference into the data
// table; everything that changes per frame lives on the Object.
type Object struct {
	Body         *bodies.CelestialBody
	OrbitAngle   float64
	Spin         float64
	CloudSpin    float64
	Tilt         float64 // radians, about Z
	Surface      texture.Texture
	Clouds       *texture.Texture
	Ring         *texture.Texture
	LabelVisible bool
	Orbit        []vectors.Vec3
}

func (o *Object) ID() string {
	return o.Body.ID
}

// WorldPosition is the planet centre: the orbit group rotated by OrbitAngle
// about +Y carries the planet from (distance, 0, 0).
func (o *Object) WorldPosition() vectors.Vec3 {
	return vectors.Vec3{X: o.Body.Distance}.RotateY(o.OrbitAngle)
}

// Advance moves the planet one frame along its orbit at the given speed
// multiplier and spins it and its clouds at their nominal rates.
func (o *Object) Advance(multiplier float64) {
	o.OrbitAngle += o.Body.OrbitSpeed * multiplier
	o.Spin += o.Body.SpinSpeed
	if o.Clouds != nil {
		o.CloudSpin += o.Body.SpinSpeed * cloudSpinFactor
	}
}

// SurfaceLocal maps a world point on or near the planet into its texture
// frame, undoing orbit, spin and tilt.
func (o *Object) SurfaceLocal(p vectors.Vec3) vectors.Vec3 {
	return p.Sub(o.WorldPosition()).RotateY(-(o.OrbitAngle + o.Spin)).RotateZ(-o.Tilt)
}

func (o *Object) CloudLocal(p vectors.Vec3) vectors.Vec3 {
	return p.Sub(o.WorldPosition()).RotateY(-(o.OrbitAngle + o.CloudSpin)).RotateZ(-o.Tilt)
}

func (o *Object) CloudRadius() float64 {
	return o.Body.Radius * cloudScale
}

// RingNormal is the world normal of the ring plane: the mesh is laid flat by
// a -π/2 turn about X, tipped back by the axial tilt, then carried by the
// orbit rotation.
func (o *Object) RingNormal() vectors.Vec3 {
	n := vectors.Vec3{Y: math.Cos(o.Tilt), Z: math.Sin(o.Tilt)}
	return n.RotateY(o.OrbitAngle)
}

func (o *Object) LabelPosition() vectors.Vec3 {
	return o.WorldPosition().Add(vectors.Vec3{Y: o.Body.Radius + labelLift})
}

// OrbitColor is the faint line color of the orbit path.
func (o *Object) OrbitColor() colors.Color4 {
	return o.Body.Color().WithAlpha(orbitOpacity)
}

// OrbitPath samples the orbit circle of radius d in the XZ plane, closed: the
// last point repeats the first.
func OrbitPath(d float64) []vectors.Vec3 {
	pts := make([]vectors.Vec3, orbitSegments+1)
	for i := range pts {
		a := float64(i) / orbitSegments * 2 * math.Pi
		pts[i] = vectors.Vec3{X: math.Cos(a) * d, Z: math.Sin(a) * d}
	}
	return pts
}
