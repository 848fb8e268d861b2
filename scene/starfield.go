package scene

import (
	"math"
	"math/rand/v2"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/vectors"
)

const (
	DefaultStarCount = 15000
	starMinRadius    = 400.0
	starRadiusSpread = 600.0
	twinklePerFrame  = 100
	starfieldSpin    = 0.00003

	coronaCount     = 2000
	coronaThickness = 4.0
	coronaSpinY     = 0.0005
	coronaSpinX     = 0.0002
)

// CoronaColor is the tint of the particles around the sun.
var CoronaColor = colors.MustParseHex("#ffaa44")

// Starfield is a shell of point stars far outside the planetary system.
type Starfield struct {
	Positions []vectors.Vec3
	Colors    []colors.Color4
	Sizes     []float64
	Rotation  float64 // about +Y
}

// NewStarfield scatters n stars uniformly over directions at radii in
// [400, 1000): mostly white-blue, some warm, some cool.
func NewStarfield(rng *rand.Rand, n int) *Starfield {
	s := &Starfield{
		Positions: make([]vectors.Vec3, n),
		Colors:    make([]colors.Color4, n),
		Sizes:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		r := starMinRadius + rng.Float64()*starRadiusSpread
		s.Positions[i] = randomOnSphere(rng, r)

		switch c := rng.Float64(); {
		case c < 0.6:
			s.Colors[i] = colors.New(0.9+rng.Float64()*0.1, 0.9+rng.Float64()*0.1, 1, 1)
		case c < 0.85:
			s.Colors[i] = colors.New(1, 0.95, 0.8, 1)
		default:
			s.Colors[i] = colors.New(0.8, 0.85, 1, 1)
		}
		s.Sizes[i] = 0.5 + rng.Float64()*2
	}
	return s
}

// Twinkle resets the size of 100 random stars to 0.5 + sin(2·elapsed + idx).
func (s *Starfield) Twinkle(elapsed float64, rng *rand.Rand) {
	if len(s.Sizes) == 0 {
		return
	}
	for i := 0; i < twinklePerFrame; i++ {
		idx := rng.IntN(len(s.Sizes))
		s.Sizes[idx] = 0.5 + math.Sin(elapsed*2+float64(idx))
	}
}

func (s *Starfield) Rotate() {
	s.Rotation += starfieldSpin
}

// WorldPosition applies the field's rotation to star i.
func (s *Starfield) WorldPosition(i int) vectors.Vec3 {
	return s.Positions[i].RotateY(s.Rotation)
}

// Corona is a thin shell of particles hugging the sun's surface.
type Corona struct {
	Points []vectors.Vec3
	RotX   float64
	RotY   float64
}

func NewCorona(rng *rand.Rand, sunRadius float64) *Corona {
	c := &Corona{Points: make([]vectors.Vec3, coronaCount)}
	for i := range c.Points {
		c.Points[i] = randomOnSphere(rng, sunRadius+rng.Float64()*coronaThickness)
	}
	return c
}

func (c *Corona) Rotate() {
	c.RotY += coronaSpinY
	c.RotX += coronaSpinX
}

// WorldPosition applies the corona's Y then X rotation to particle i.
func (c *Corona) WorldPosition(i int) vectors.Vec3 {
	return c.Points[i].RotateY(c.RotY).RotateX(c.RotX)
}

func randomOnSphere(rng *rand.Rand, r float64) vectors.Vec3 {
	theta := rng.Float64() * 2 * math.Pi
	phi := math.Acos(2*rng.Float64() - 1)
	return vectors.Vec3{
		X: r * math.Sin(phi) * math.Cos(theta),
		Y: r * math.Sin(phi) * math.Sin(theta),
		Z: r * math.Cos(phi),
	}
}
