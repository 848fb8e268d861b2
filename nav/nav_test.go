package nav

import (
	"math"
	"sync"
	"testing"

	"github.com/echoflaresat/orrery/vectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocator map[string]Focusable

func (f fakeLocator) Locate(id string) (Focusable, bool) {
	b, ok := f[id]
	return b, ok
}

var earth = Focusable{ID: "earth", Radius: 1.3, Position: vectors.Vec3{X: 35}}

func TestInboxKeepsLatest(t *testing.T) {
	var seq Sequencer
	in := NewInbox()

	_, ok := in.Take()
	assert.False(t, ok)

	assert.False(t, in.Publish(seq.Sun()))
	assert.True(t, in.Publish(seq.Overview()))

	cmd, ok := in.Take()
	require.True(t, ok)
	assert.Equal(t, Overview, cmd.Kind)
	assert.Equal(t, uint64(2), cmd.ID)

	_, ok = in.Take()
	assert.False(t, ok)
}

func TestInboxConcurrentPublish(t *testing.T) {
	var seq Sequencer
	in := NewInbox()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				in.Publish(seq.Sun())
			}
		}()
	}
	wg.Wait()

	_, ok := in.Take()
	assert.True(t, ok)
	_, ok = in.Take()
	assert.False(t, ok)
	assert.Equal(t, uint64(800), seq.Next()-1)
}

func TestControllerProcessesEachIDOnce(t *testing.T) {
	var c Controller
	cmds := []Command{
		{Kind: FocusSun, ID: 1},
		{Kind: FocusSun, ID: 1},
		{Kind: Overview, ID: 3},
		{Kind: FocusSun, ID: 2},
		{Kind: FocusPlanet, Body: "earth", ID: 4},
	}
	var acted []uint64
	for _, cmd := range cmds {
		if c.Observe(cmd) {
			acted = append(acted, cmd.ID)
		}
	}
	assert.Equal(t, []uint64{1, 3, 4}, acted)
	assert.Equal(t, uint64(4), c.Last())
}

func TestResolvePlanet(t *testing.T) {
	loc := fakeLocator{"earth": earth}

	act, ok := Resolve(Command{Kind: FocusPlanet, Body: "earth", ID: 1}, loc)
	require.True(t, ok)
	assert.Equal(t, "earth", act.Focus)
	assert.Equal(t, PlanetFlight, act.Duration)
	require.NotNil(t, act.Bounds)
	assert.InDelta(t, 1.56, act.Bounds.Min, 1e-9)
	assert.InDelta(t, 26.0, act.Bounds.Max, 1e-9)

	// viewDist = max(3.9, 4) = 4, away from the sun then raised by 1.
	assert.True(t, act.To.Position.ApproxEqual(vectors.Vec3{X: 39, Y: 1}, 1e-9), "%v", act.To.Position)
	assert.Greater(t, act.To.Position.Norm(), earth.Position.Norm())
	assert.Equal(t, earth.Position, act.To.Target)
}

func TestResolveLargePlanetUsesRadius(t *testing.T) {
	jupiter := Focusable{ID: "jupiter", Radius: 3.5, Position: vectors.Vec3{Z: -70}}
	act, ok := Resolve(Command{Kind: FocusPlanet, Body: "jupiter", ID: 1}, fakeLocator{"jupiter": jupiter})
	require.True(t, ok)
	assert.True(t, act.To.Position.ApproxEqual(vectors.Vec3{Y: 2.625, Z: -80.5}, 1e-9), "%v", act.To.Position)
}

func TestPlanetViewpointLooksBackTowardTheSun(t *testing.T) {
	pos := vectors.Vec3{X: 35}
	pose := PlanetViewpoint(pos, 1.3)
	assert.True(t, pose.Position.ApproxEqual(vectors.Vec3{X: 39, Y: 1}, 1e-9), "%v", pose.Position)
	assert.Equal(t, pos, pose.Target)

	// The camera is farther from the sun than the planet, on the same side.
	flat := vectors.Vec3{X: pose.Position.X, Z: pose.Position.Z}
	assert.Greater(t, flat.Norm(), pos.Norm())
	assert.Greater(t, flat.Dot(pos), 0.0)

	atOrigin := PlanetViewpoint(vectors.Zero(), 2)
	assert.True(t, atOrigin.Position.ApproxEqual(vectors.Vec3{Y: 1.5, Z: 6}, 1e-9), "%v", atOrigin.Position)
}

func TestResolveUnknownPlanetIsDropped(t *testing.T) {
	_, ok := Resolve(Command{Kind: FocusPlanet, Body: "pluto", ID: 1}, fakeLocator{"earth": earth})
	assert.False(t, ok)
	_, ok = Resolve(Command{Kind: FocusPlanet, Body: "earth", ID: 2}, nil)
	assert.False(t, ok)
}

func TestResolveSunAndOverview(t *testing.T) {
	act, ok := Resolve(Command{Kind: FocusSun, ID: 1}, nil)
	require.True(t, ok)
	assert.Empty(t, act.Focus)
	assert.Nil(t, act.Bounds)
	assert.Equal(t, SunPose, act.To)
	assert.Equal(t, SystemFlight, act.Duration)

	act, ok = Resolve(Command{Kind: Overview, ID: 2}, nil)
	require.True(t, ok)
	require.NotNil(t, act.Bounds)
	assert.Equal(t, OverviewBounds(), *act.Bounds)
	assert.Equal(t, OverviewPose, act.To)
}

func TestEaseInOutQuart(t *testing.T) {
	cases := map[float64]float64{
		-1:   0,
		0:    0,
		0.25: 8 * math.Pow(0.25, 4),
		0.5:  0.5,
		0.75: 1 - math.Pow(0.5, 4)/2,
		1:    1,
		2:    1,
	}
	for in, want := range cases {
		assert.InDelta(t, want, EaseInOutQuart(in), 1e-12, "t=%v", in)
	}

	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := EaseInOutQuart(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestTransitionReachesTarget(t *testing.T) {
	from := Pose{Position: vectors.Vec3{Y: 80, Z: 140}}
	to := Pose{Position: vectors.Vec3{X: 39, Y: 1}, Target: vectors.Vec3{X: 35}}
	tr := NewTransition(from, to, 2.5)

	pose, done := tr.Step(1.25)
	assert.False(t, done)
	assert.True(t, pose.Position.ApproxEqual(from.Position.Lerp(to.Position, 0.5), 1e-9))
	assert.True(t, pose.Target.ApproxEqual(vectors.Vec3{X: 17.5}, 1e-9))
	assert.Equal(t, to.Target, tr.LookAt())
	assert.InDelta(t, 0.5, tr.Progress(), 1e-12)

	pose, done = tr.Step(1.25)
	assert.True(t, done)
	assert.Equal(t, to, pose)

	pose, done = tr.Step(1)
	assert.True(t, done)
	assert.Equal(t, to, pose)
	assert.Equal(t, 1.0, tr.Progress())
}

func TestControlsClampDistance(t *testing.T) {
	c := NewControls(vectors.Zero())
	c.DampingFactor = 0

	pos := c.Update(vectors.Vec3{Z: 900})
	assert.InDelta(t, 500, pos.Norm(), 1e-9)

	c.Bounds = FocusBounds(1)
	pos = c.Update(pos)
	assert.InDelta(t, 20, pos.Norm(), 1e-9)

	c.Bounds = OverviewBounds()
	pos = c.Update(vectors.Vec3{X: 0.5})
	assert.InDelta(t, 2, pos.Norm(), 1e-9)
}

func TestControlsDampedRotationDecays(t *testing.T) {
	c := NewControls(vectors.Zero())
	start := vectors.Vec3{Z: 100}

	c.Rotate(100, 0, 500)
	pos := c.Update(start)
	first := math.Atan2(pos.X, pos.Z)
	assert.InDelta(t, -2*math.Pi*0.2*0.5*0.05, first, 1e-9)
	assert.InDelta(t, 100, pos.Norm(), 1e-9)

	pos2 := c.Update(pos)
	second := math.Atan2(pos2.X, pos2.Z) - first
	assert.InDelta(t, first*0.95, second, 1e-9)
}

func TestControlsPolarClamp(t *testing.T) {
	c := NewControls(vectors.Zero())
	c.DampingFactor = 0
	c.Rotate(0, 10000, 100)
	pos := c.Update(vectors.Vec3{Z: 10})
	assert.Greater(t, pos.Y, 9.99)
	assert.Less(t, pos.Y, 10.0)
}

func TestControlsIgnoreInputWhenDisabled(t *testing.T) {
	c := NewControls(vectors.Zero())
	c.Enabled = false
	c.Rotate(100, 100, 500)
	c.Zoom(10)
	c.Pan(50, 50, vectors.Vec3{Z: 100}, 60, 500)

	start := vectors.Vec3{X: 3, Y: 4, Z: 100}
	assert.True(t, c.Update(start).ApproxEqual(start, 1e-9))
	assert.Equal(t, vectors.Zero(), c.Target)
}

func TestControlsZoomAndPan(t *testing.T) {
	c := NewControls(vectors.Zero())
	c.DampingFactor = 0

	c.Zoom(1)
	pos := c.Update(vectors.Vec3{Z: 100})
	assert.InDelta(t, 100*math.Pow(0.95, 1.2), pos.Norm(), 1e-9)

	c.Pan(-10, 0, pos, 60, 500)
	c.Update(pos)
	assert.Greater(t, c.Target.X, 0.0)
	assert.InDelta(t, 0, c.Target.Y, 1e-9)
}
