package render

import (
	"context"
	"math"
	"testing"

	"github.com/echoflaresat/orrery/bodies"
	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/texture"
	"github.com/echoflaresat/orrery/vectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraCenterRayIsForward(t *testing.T) {
	cam := NewCamera(vectors.Vec3{Y: 80, Z: 140}, vectors.Zero(), 60, 16.0/9)
	dir := cam.ComputeRay(16, 16, 33, 33)
	assert.True(t, dir.ApproxEqual(cam.Forward, 1e-12), "%v vs %v", dir, cam.Forward)
	assert.InDelta(t, 0, cam.Right.Y, 1e-12)
	assert.Greater(t, cam.Up.Y, 0.0)
}

func TestCameraProjectInvertsComputeRay(t *testing.T) {
	cam := NewCamera(vectors.Vec3{X: 10, Y: 5, Z: 30}, vectors.Vec3{X: 2}, 60, 1.5)
	for _, px := range [][2]float64{{0, 0}, {37, 12}, {119, 79}} {
		dir := cam.ComputeRay(px[0], px[1], 120, 80)
		x, y, depth, ok := cam.Project(cam.Position.Add(dir.Scale(25)), 120, 80)
		require.True(t, ok)
		assert.InDelta(t, px[0]+0.5, x, 1e-9)
		assert.InDelta(t, px[1]+0.5, y, 1e-9)
		assert.Greater(t, depth, 0.0)
	}

	_, _, _, ok := cam.Project(cam.Position.Sub(cam.Forward), 120, 80)
	assert.False(t, ok)
}

func TestCameraLookingStraightDown(t *testing.T) {
	cam := NewCamera(vectors.Vec3{Y: 10}, vectors.Zero(), 60, 1)
	assert.True(t, cam.Forward.ApproxEqual(vectors.Vec3{Y: -1}, 1e-12))
	assert.InDelta(t, 1, cam.Right.Norm(), 1e-12)
	assert.InDelta(t, 1, cam.Up.Norm(), 1e-12)
}

func TestIntersectSphere(t *testing.T) {
	origin := vectors.Vec3{Z: 10}
	dir := vectors.Vec3{Z: -1}

	assert.InDelta(t, 8, IntersectSphere(origin, dir, vectors.Zero(), 2), 1e-12)
	assert.InDelta(t, 3, IntersectSphere(origin, dir, vectors.Vec3{Z: 5}, 2), 1e-12)
	assert.Equal(t, -1.0, IntersectSphere(origin, dir, vectors.Vec3{X: 5}, 2))
	assert.Equal(t, -1.0, IntersectSphere(origin, dir.Scale(-1), vectors.Zero(), 2))
	// From inside, the far wall.
	assert.InDelta(t, 2, IntersectSphere(vectors.Zero(), dir, vectors.Zero(), 2), 1e-12)
}

func TestIntersectPlane(t *testing.T) {
	tHit, ok := IntersectPlane(vectors.Vec3{Y: 5}, vectors.Vec3{Y: -1}, vectors.Zero(), vectors.Up())
	require.True(t, ok)
	assert.InDelta(t, 5, tHit, 1e-12)

	_, ok = IntersectPlane(vectors.Vec3{Y: 5}, vectors.Vec3{X: 1}, vectors.Zero(), vectors.Up())
	assert.False(t, ok)
	_, ok = IntersectPlane(vectors.Vec3{Y: 5}, vectors.Vec3{Y: 1}, vectors.Zero(), vectors.Up())
	assert.False(t, ok)
}

func flat(hex string) texture.Texture {
	return texture.Placeholder(colors.MustParseHex(hex), 4)
}

func testScene(t *testing.T) *scene.Scene {
	t.Helper()
	table, err := bodies.Parse([]byte(`
version: test
sun: {id: sun, name: Sun, radius: 8, texture: sun.png, color: "#FDB813", glowColor: "#ff8c00"}
planets:
  - {id: earth, name: Earth, radius: 2, distance: 20, orbitalSpeed: 0.01, rotationSpeed: 0.01, texture: earth.png, color: "#4169E1", glowColor: "#00BFFF"}
`))
	require.NoError(t, err)
	return &scene.Scene{
		Table: table,
		Sun:   &scene.Sun{Body: table.Sun, Surface: flat("#ff0000")},
	}
}

func TestRenderSunAndBackground(t *testing.T) {
	s := testScene(t)
	camPos := vectors.Vec3{Z: 50}
	s.Sun.ViewVector = camPos

	r := NewRenderer(32, 32)
	r.Workers = 2
	img, err := r.Render(context.Background(), View{Scene: s, Camera: NewCamera(camPos, vectors.Zero(), 60, 1)})
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())

	center := img.NRGBAAt(16, 16)
	assert.Greater(t, center.R, uint8(150))
	assert.Less(t, center.G, uint8(40))

	corner := img.NRGBAAt(0, 0)
	assert.Equal(t, uint8(0), corner.R)
	assert.Equal(t, uint8(5), corner.B)
	assert.Equal(t, uint8(255), corner.A)
}

func TestRenderPlanetOccludesSun(t *testing.T) {
	s := testScene(t)
	earth := &scene.Object{
		Body:       s.Table.Planets[0],
		OrbitAngle: -math.Pi / 2,
		Surface:    flat("#00ff00"),
	}
	s.Planets = []*scene.Object{earth}
	require.True(t, earth.WorldPosition().ApproxEqual(vectors.Vec3{Z: 20}, 1e-9))

	camPos := vectors.Vec3{Z: 50}
	s.Sun.ViewVector = camPos
	r := NewRenderer(32, 32)
	img, err := r.Render(context.Background(), View{Scene: s, Camera: NewCamera(camPos, vectors.Zero(), 60, 1)})
	require.NoError(t, err)

	center := img.NRGBAAt(16, 16)
	assert.Greater(t, center.G, center.R)
}

func TestRenderTitle(t *testing.T) {
	s := testScene(t)
	r := NewRenderer(200, 80)
	cam := NewCamera(vectors.Vec3{Z: 500}, vectors.Vec3{Z: 400}, 60, 2.5)

	plain, err := r.Render(context.Background(), View{Scene: s, Camera: cam})
	require.NoError(t, err)
	titled, err := r.Render(context.Background(), View{Scene: s, Camera: cam, Title: "Sun", TitleColor: colors.MustParseHex("#FDB813")})
	require.NoError(t, err)

	differs := 0
	for y := titleTop; y < titleTop+30; y++ {
		for x := 0; x < 200; x++ {
			if plain.NRGBAAt(x, y) != titled.NRGBAAt(x, y) {
				differs++
			}
		}
	}
	assert.Greater(t, differs, 20)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRenderer(8, 8).Render(ctx, View{Scene: testScene(t), Camera: NewCamera(vectors.Vec3{Z: 50}, vectors.Zero(), 60, 1)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToneMapAndSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, ToneMap(colors.Black(), 1.2).R)
	assert.InDelta(t, 0.8397, ToneMap(colors.New(1, 0, 0, 1), 1.2).R, 1e-3)
	assert.Equal(t, 0.0, Smoothstep(0, 1, -1))
	assert.Equal(t, 0.5, Smoothstep(0, 1, 0.5))
	assert.Equal(t, 1.0, Smoothstep(0, 1, 2))
	assert.Len(t, GenerateSupersamplingOffsets(3), 9)
}
