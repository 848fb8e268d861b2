package bodies

import (
	"github.com/echoflaresat/orrery/colors"
)

// Kind distinguishes the single central star from orbiting planets.
type Kind int

const (
	Planet Kind = iota
	Sun
)

func (k Kind) String() string {
	if k == Sun {
		return "sun"
	}
	return "planet"
}

// Fact is one labeled line of the info panel, e.g. {"Diameter", "12,742 km"}.
type Fact struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Ring describes an annulus around a planet, in scene units.
type Ring struct {
	Inner   float64 `yaml:"inner"`
	Outer   float64 `yaml:"outer"`
	Texture string  `yaml:"texture"`
}

// CelestialBody is an immutable record of the static data table. Scene
// objects point back at it; they never own or mutate it.
type CelestialBody struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Kind        Kind    `yaml:"-"`
	Radius      float64 `yaml:"radius"`
	Distance    float64 `yaml:"distance"`
	OrbitSpeed  float64 `yaml:"orbitalSpeed"`  // radians per frame at nominal speed
	SpinSpeed   float64 `yaml:"rotationSpeed"` // radians per frame
	TiltDeg     float64 `yaml:"tilt"`
	Texture     string  `yaml:"texture"`
	Clouds      string  `yaml:"clouds,omitempty"`
	Ring        *Ring   `yaml:"ring,omitempty"`
	ColorHex    string  `yaml:"color"`
	GlowHex     string  `yaml:"glowColor"`
	Description string  `yaml:"description"`
	Facts       []Fact  `yaml:"facts"`

	color colors.Color4
	glow  colors.Color4
}

// Color is the display color used for labels, orbit paths and the title.
func (b *CelestialBody) Color() colors.Color4 { return b.color }

// GlowColor is the body's accent color.
func (b *CelestialBody) GlowColor() colors.Color4 { return b.glow }

func (b *CelestialBody) IsSun() bool { return b.Kind == Sun }

// HasRing reports whether the ring record is complete enough to draw.
func (b *CelestialBody) HasRing() bool {
	return b.Ring != nil && b.Ring.Texture != "" && b.Ring.Inner > 0 && b.Ring.Outer > b.Ring.Inner
}

// TextureRefs lists the textures the scene builder loads for this body, main
// surface first.
func (b *CelestialBody) TextureRefs() []string {
	refs := []string{b.Texture}
	if b.Clouds != "" {
		refs = append(refs, b.Clouds)
	}
	if b.HasRing() {
		refs = append(refs, b.Ring.Texture)
	}
	return refs
}

// Fact returns the value of the fact with the given label.
func (b *CelestialBody) Fact(label string) (string, bool) {
	for _, f := range b.Facts {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}
