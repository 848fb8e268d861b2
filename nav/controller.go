package nav

import (
	"math"

	"github.com/echoflaresat/orrery/vectors"
)

const (
	PlanetFlight   = 2.5 // seconds
	SystemFlight   = 2.0 // seconds
	minViewDist    = 4.0
	viewDistPerR   = 3.0
	viewRaise      = 0.25
	focusMinPerR   = 1.2
	focusMaxPerR   = 20.0
	overviewMinDst = 2.0
	overviewMaxDst = 500.0
)

var (
	SunPose      = Pose{Position: vectors.Vec3{X: 0, Y: 10, Z: 25}}
	OverviewPose = Pose{Position: vectors.Vec3{X: 0, Y: 80, Z: 140}}
)

// Pose is a camera position and the point it orbits and looks at.
type Pose struct {
	Position vectors.Vec3
	Target   vectors.Vec3
}

// Bounds clamps the distance between the orbit camera and its target.
type Bounds struct {
	Min, Max float64
}

// OverviewBounds are the wide bounds used when nothing is focused.
func OverviewBounds() Bounds {
	return Bounds{Min: overviewMinDst, Max: overviewMaxDst}
}

// FocusBounds scales the bounds to a body of the given radius.
func FocusBounds(radius float64) Bounds {
	return Bounds{Min: radius * focusMinPerR, Max: radius * focusMaxPerR}
}

func (b Bounds) Clamp(d float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, d))
}

// Focusable is what the controller needs to know about a loaded body.
type Focusable struct {
	ID       string
	Radius   float64
	Position vectors.Vec3
}

// Locator finds loaded bodies by id. Before the scene finishes building it
// may know none of them.
type Locator interface {
	Locate(id string) (Focusable, bool)
}

// Action is what a fresh command asks the frame loop to do.
type Action struct {
	Kind Kind
	// Focus is the focused body id, or "" for none.
	Focus string
	// Bounds replaces the control bounds when non-nil.
	Bounds   *Bounds
	To       Pose
	Duration float64
}

// Controller remembers the last command id it acted on.
type Controller struct {
	last uint64
}

// Observe reports whether cmd is newer than anything seen so far and, if so,
// marks it seen. A command is acted on at most once.
func (c *Controller) Observe(cmd Command) bool {
	if cmd.ID <= c.last {
		return false
	}
	c.last = cmd.ID
	return true
}

// Last returns the highest id observed.
func (c *Controller) Last() uint64 {
	return c.last
}

// Resolve turns a command into an Action. It returns false when a planet
// command names a body the locator does not know yet; such commands are
// discarded by the caller.
func Resolve(cmd Command, loc Locator) (Action, bool) {
	switch cmd.Kind {
	case FocusPlanet:
		if loc == nil {
			return Action{}, false
		}
		body, ok := loc.Locate(cmd.Body)
		if !ok {
			return Action{}, false
		}
		bounds := FocusBounds(body.Radius)
		return Action{
			Kind:     FocusPlanet,
			Focus:    body.ID,
			Bounds:   &bounds,
			To:       PlanetViewpoint(body.Position, body.Radius),
			Duration: PlanetFlight,
		}, true
	case FocusSun:
		return Action{Kind: FocusSun, To: SunPose, Duration: SystemFlight}, true
	case Overview:
		bounds := OverviewBounds()
		return Action{Kind: Overview, Bounds: &bounds, To: OverviewPose, Duration: SystemFlight}, true
	default:
		return Action{}, false
	}
}

// PlanetViewpoint places the camera beyond the planet on the sun-to-body
// line, max(3r, 4) from the planet and raised by a quarter of that distance.
func PlanetViewpoint(pos vectors.Vec3, radius float64) Pose {
	dist := math.Max(radius*viewDistPerR, minViewDist)
	outward := pos.Sub(vectors.Zero())
	if outward.Norm() < 1e-9 {
		outward = vectors.Vec3{Z: 1}
	}
	cam := pos.Add(outward.Normalize().Scale(dist))
	cam.Y += dist * viewRaise
	return Pose{Position: cam, Target: pos}
}
