package render

import (
	"math"

	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/vectors"
)

// Surface identifies what a ray hit first.
type Surface int

const (
	Nothing Surface = iota
	SunSurface
	PlanetSurface
	RingSurface
)

// RayContext carries per-ray state: the nearest opaque hit plus the layers
// the ray passed through on the way (clouds, glow).
type RayContext struct {
	Origin       vectors.Vec3
	RayDirection vectors.Vec3
	scene        *scene.Scene

	Surface       Surface
	T             float64
	HitPoint      vectors.Vec3
	SurfaceNormal vectors.Vec3
	Planet        *scene.Object

	// Cloud shells crossed in front of the hit.
	CloudPlanet *scene.Object
	CloudPoint  vectors.Vec3
	CloudNormal vectors.Vec3

	// Glow shell entry normal when the ray passes through it.
	GlowHit    bool
	GlowNormal vectors.Vec3
}

func NewRayContext(origin vectors.Vec3, s *scene.Scene) *RayContext {
	return &RayContext{Origin: origin, scene: s}
}

// SetRayDirection casts the ray against the sun, every planet, cloud layer
// and ring, keeping the nearest opaque hit.
func (c *RayContext) SetRayDirection(rayDirection vectors.Vec3) {
	c.RayDirection = rayDirection
	c.Surface = Nothing
	c.T = math.Inf(1)
	c.Planet = nil
	c.CloudPlanet = nil
	c.GlowHit = false

	s := c.scene
	if s.Sun != nil {
		if t := IntersectSphere(c.Origin, rayDirection, vectors.Zero(), s.Sun.Body.Radius); t > 0 {
			c.setHit(SunSurface, t, vectors.Zero(), nil)
		}
	}
	for _, p := range s.Planets {
		center := p.WorldPosition()
		if t := IntersectSphere(c.Origin, rayDirection, center, p.Body.Radius); t > 0 && t < c.T {
			c.setHit(PlanetSurface, t, center, p)
		}
		if p.Ring != nil && p.Body.HasRing() {
			n := p.RingNormal()
			if t, ok := IntersectPlane(c.Origin, rayDirection, center, n); ok && t < c.T {
				hit := c.Origin.Add(rayDirection.Scale(t))
				r := vectors.Distance(hit, center)
				if r >= p.Body.Ring.Inner && r <= p.Body.Ring.Outer && ringOpaque(p, r) {
					c.Surface = RingSurface
					c.T = t
					c.HitPoint = hit
					c.SurfaceNormal = n
					c.Planet = p
				}
			}
		}
	}

	for _, p := range s.Planets {
		if p.Clouds == nil {
			continue
		}
		center := p.WorldPosition()
		if t := IntersectSphere(c.Origin, rayDirection, center, p.CloudRadius()); t > 0 && t < c.T {
			c.CloudPlanet = p
			c.CloudPoint = c.Origin.Add(rayDirection.Scale(t))
			c.CloudNormal = c.CloudPoint.Sub(center).Normalize()
		}
	}

	if s.Sun != nil {
		hit, tNear, _ := IntersectSphereFull(c.Origin, rayDirection, vectors.Zero(), s.Sun.GlowRadius())
		if hit && tNear > 0 && tNear < c.T {
			c.GlowHit = true
			c.GlowNormal = c.Origin.Add(rayDirection.Scale(tNear)).Normalize()
		}
	}
}

func (c *RayContext) setHit(surface Surface, t float64, center vectors.Vec3, p *scene.Object) {
	c.Surface = surface
	c.T = t
	c.HitPoint = c.Origin.Add(c.RayDirection.Scale(t))
	c.SurfaceNormal = c.HitPoint.Sub(center).Normalize()
	c.Planet = p
}

// ringOpaque drops ring hits where the texture is fully transparent so gaps
// between ringlets show what lies behind.
func ringOpaque(p *scene.Object, r float64) bool {
	u := (r - p.Body.Ring.Inner) / (p.Body.Ring.Outer - p.Body.Ring.Inner)
	return p.Ring.SampleRadial(u).A > 0.02
}

// IntersectSphere calculates the intersection of a ray (O + t*D) with a sphere
// of radius r around center. D must be unit length.
// Returns the closest positive t, or -1.0 if there is no intersection.
func IntersectSphere(O, D, center vectors.Vec3, r float64) float64 {
	hit, t1, t2 := IntersectSphereFull(O, D, center, r)
	if !hit {
		return -1.0
	}
	if t1 > 0 {
		return t1
	}
	if t2 > 0 {
		return t2
	}
	return -1.0
}

// IntersectSphereFull returns both roots, nearest first, when the ray's line
// meets the sphere.
func IntersectSphereFull(O, D, center vectors.Vec3, r float64) (bool, float64, float64) {
	// b = 2*L·D, c = L·L - r^2, solve t^2 + b t + c = 0
	L := O.Sub(center)
	b := 2.0 * L.Dot(D)
	c := L.Dot(L) - r*r

	discriminant := b*b - 4.0*c
	if discriminant < 0 {
		return false, 0, 0
	}

	sqrtDisc := math.Sqrt(discriminant)
	t1 := (-b - sqrtDisc) / 2.0
	t2 := (-b + sqrtDisc) / 2.0
	return true, t1, t2
}

// IntersectPlane returns the positive t at which the ray meets the plane
// through point with the given normal.
func IntersectPlane(O, D, point, normal vectors.Vec3) (float64, bool) {
	denom := normal.Dot(D)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := point.Sub(O).Dot(normal) / denom
	if t <= 0 {
		return 0, false
	}
	return t, true
}
