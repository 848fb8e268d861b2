package nav

import (
	"math"

	"github.com/echoflaresat/orrery/vectors"
)

// EaseInOutQuart is the power3.inOut curve: quartic acceleration to the
// midpoint, mirrored deceleration after it.
func EaseInOutQuart(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 8 * t * t * t * t
	default:
		return 1 - math.Pow(-2*t+2, 4)/2
	}
}

// Transition interpolates the camera position and the orbit target from one
// pose to another. While it runs the camera looks at the final target.
type Transition struct {
	From     Pose
	To       Pose
	Duration float64
	Elapsed  float64
}

func NewTransition(from, to Pose, duration float64) *Transition {
	return &Transition{From: from, To: to, Duration: duration}
}

// Step advances the transition by dt seconds and returns the interpolated
// pose. done is true once Elapsed reaches Duration, and the returned pose is
// then exactly To.
func (t *Transition) Step(dt float64) (pose Pose, done bool) {
	t.Elapsed += dt
	if t.Duration <= 0 || t.Elapsed >= t.Duration {
		t.Elapsed = t.Duration
		return t.To, true
	}
	k := EaseInOutQuart(t.Elapsed / t.Duration)
	return Pose{
		Position: t.From.Position.Lerp(t.To.Position, k),
		Target:   t.From.Target.Lerp(t.To.Target, k),
	}, false
}

// LookAt is the point the camera faces during the flight.
func (t *Transition) LookAt() vectors.Vec3 {
	return t.To.Target
}

// Progress is the unit fraction of elapsed time.
func (t *Transition) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return math.Min(1, t.Elapsed/t.Duration)
}
