// Package pick maps pointer positions to the bodies under them.
package pick

import (
	"math"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/render"
	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/vectors"
)

// Kind says what a click landed on.
type Kind int

const (
	None Kind = iota
	Planet
	Sun
)

func (k Kind) String() string {
	switch k {
	case Planet:
		return "planet"
	case Sun:
		return "sun"
	default:
		return "none"
	}
}

// Selection is the outcome of a click. Body is nil for None.
type Selection struct {
	Kind     Kind
	Body     *bodies.CelestialBody
	Distance float64
}

// NDC converts a pointer position in a width×height viewport to normalized
// device coordinates, +y up.
func NDC(clientX, clientY float64, width, height int) (x, y float64) {
	x = clientX/float64(width)*2 - 1
	y = -(clientY/float64(height)*2 - 1)
	return x, y
}

// Click selects the nearest planet under the pointer; the sun is tested only
// when no planet is hit. Nothing is selected while busy, which callers set
// during a camera flight.
func Click(s *scene.Scene, cam render.Camera, ndcX, ndcY float64, busy bool) Selection {
	if busy || s == nil {
		return Selection{}
	}
	origin := cam.Position
	dir := cam.RayFromNDC(ndcX, ndcY)

	if p, t := nearestPlanet(s, origin, dir); p != nil {
		return Selection{Kind: Planet, Body: p.Body, Distance: t}
	}
	if t := hitSun(s, origin, dir); t > 0 {
		return Selection{Kind: Sun, Body: s.Sun.Body, Distance: t}
	}
	return Selection{}
}

// Hover reports whether any body, planet or sun, is under the pointer. It is
// used only for the cursor hint.
func Hover(s *scene.Scene, cam render.Camera, ndcX, ndcY float64, busy bool) bool {
	if busy || s == nil {
		return false
	}
	origin := cam.Position
	dir := cam.RayFromNDC(ndcX, ndcY)
	if p, _ := nearestPlanet(s, origin, dir); p != nil {
		return true
	}
	return hitSun(s, origin, dir) > 0
}

func nearestPlanet(s *scene.Scene, origin, dir vectors.Vec3) (*scene.Object, float64) {
	var best *scene.Object
	bestT := math.Inf(1)
	for _, p := range s.Planets {
		t := render.IntersectSphere(origin, dir, p.WorldPosition(), p.Body.Radius)
		if t > 0 && t < bestT {
			best, bestT = p, t
		}
	}
	return best, bestT
}

func hitSun(s *scene.Scene, origin, dir vectors.Vec3) float64 {
	if s.Sun == nil {
		return -1
	}
	return render.IntersectSphere(origin, dir, vectors.Zero(), s.Sun.Body.Radius)
}
