package bodies

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/echoflaresat/orrery/colors"
	"gopkg.in/yaml.v3"
)

//go:embed bodies.yaml
var defaultTable []byte

var (
	ErrUnknownBody  = errors.New("unknown body")
	ErrInvalidTable = errors.New("invalid body table")
)

// Table is the versioned static data feed: one sun and its planets in orbit
// order. It is built once and never mutated afterwards.
type Table struct {
	Version string           `yaml:"version"`
	Sun     *CelestialBody   `yaml:"sun"`
	Planets []*CelestialBody `yaml:"planets"`
}

// Default returns the embedded table.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// LoadFile reads a table from a YAML file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads a table from YAML.
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the table and resolves display colors. It is called by
// Parse; tables assembled in code must call it before use.
func (t *Table) Validate() error {
	if t.Sun == nil {
		return fmt.Errorf("%w: missing sun", ErrInvalidTable)
	}
	if len(t.Planets) == 0 {
		return fmt.Errorf("%w: no planets", ErrInvalidTable)
	}
	t.Sun.Kind = Sun
	if err := t.Sun.resolve(); err != nil {
		return err
	}

	seen := map[string]bool{t.Sun.ID: true}
	for i, p := range t.Planets {
		if p == nil {
			return fmt.Errorf("%w: planet %d is empty", ErrInvalidTable, i)
		}
		p.Kind = Planet
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidTable, p.ID)
		}
		seen[p.ID] = true
		if p.Distance <= t.Sun.Radius {
			return fmt.Errorf("%w: %s orbits inside the sun (distance %v)", ErrInvalidTable, p.ID, p.Distance)
		}
		if err := p.resolve(); err != nil {
			return err
		}
	}
	return nil
}

func (b *CelestialBody) resolve() error {
	if b.ID == "" {
		return fmt.Errorf("%w: body without id", ErrInvalidTable)
	}
	if b.Radius <= 0 {
		return fmt.Errorf("%w: %s has non-positive radius", ErrInvalidTable, b.ID)
	}
	if b.Texture == "" {
		return fmt.Errorf("%w: %s has no texture", ErrInvalidTable, b.ID)
	}
	if b.Name == "" {
		b.Name = b.ID
	}
	var err error
	if b.color, err = parseColor(b.ColorHex, "#ffffff"); err != nil {
		return fmt.Errorf("%w: %s color: %v", ErrInvalidTable, b.ID, err)
	}
	if b.glow, err = parseColor(b.GlowHex, b.ColorHex); err != nil {
		return fmt.Errorf("%w: %s glow color: %v", ErrInvalidTable, b.ID, err)
	}
	return nil
}

func parseColor(hex, fallback string) (colors.Color4, error) {
	if hex == "" {
		hex = fallback
	}
	if hex == "" {
		return colors.White(), nil
	}
	return colors.ParseHex(hex)
}

// Find looks a body up by id, the sun included. A linear scan is fine for a
// handful of bodies.
func (t *Table) Find(id string) (*CelestialBody, error) {
	if t.Sun != nil && t.Sun.ID == id {
		return t.Sun, nil
	}
	for _, p := range t.Planets {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBody, id)
}

// TextureCount is the number of textures a full scene build loads.
func (t *Table) TextureCount() int {
	n := len(t.Sun.TextureRefs())
	for _, p := range t.Planets {
		n += len(p.TextureRefs())
	}
	return n
}
