package bodies

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/planetelements"
)

// meeusIndex maps table ids onto the planet constants of planetelements.
var meeusIndex = map[string]int{
	"mercury": planetelements.Mercury,
	"venus":   planetelements.Venus,
	"earth":   planetelements.Earth,
	"mars":    planetelements.Mars,
	"jupiter": planetelements.Jupiter,
	"saturn":  planetelements.Saturn,
	"uranus":  planetelements.Uranus,
	"neptune": planetelements.Neptune,
}

// Phases maps planet ids to their initial orbital angle in [0, 2π).
type Phases map[string]float64

// RandomPhases spreads the planets uniformly around their orbits.
func RandomPhases(t *Table, rng *rand.Rand) Phases {
	out := make(Phases, len(t.Planets))
	for _, p := range t.Planets {
		out[p.ID] = rng.Float64() * 2 * math.Pi
	}
	return out
}

// EphemerisPhases places each planet at its mean heliocentric longitude at
// time at. Bodies unknown to the ephemeris fall back to phase 0.
func EphemerisPhases(t *Table, at time.Time) Phases {
	jde := julian.TimeToJD(at.UTC())
	out := make(Phases, len(t.Planets))
	for _, p := range t.Planets {
		idx, ok := meeusIndex[p.ID]
		if !ok {
			out[p.ID] = 0
			continue
		}
		var el planetelements.Elements
		planetelements.Mean(idx, jde, &el)
		out[p.ID] = normalizeAngle(el.Lon.Rad())
	}
	return out
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
