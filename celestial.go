package sailship

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.495978707e8
	// GaussK is the Gaussian gravitational constant (rad/day).
	GaussK = 0.01720209895
	// MuSun is the heliocentric gravitational parameter in AU³/day².
	MuSun = GaussK * GaussK
	// J2000 is the Julian date of the J2000 epoch.
	J2000 = 2451545.0
	// SunName identifies the star, i.e. the heliocentric frame.
	SunName = "Sun"
)

// Body defines a celestial object and its heliocentric orbit.
// The Sun has no elements and no sphere of influence: it is the origin of the heliocentric frame.
type Body struct {
	Name     string
	Elements OrbitalElements // Heliocentric orbit (zero for the Sun)
	RadiusKm float64         // Physical radius
	SOI      float64         // Sphere of influence radius (AU), zero if not applicable
	Mu       float64         // Gravitational parameter (AU³/day²)
}

// IsStar returns whether this body is the origin of the heliocentric frame.
func (b Body) IsStar() bool {
	return b.Elements.Mu == 0
}

// StateAt returns the heliocentric state of this body at the provided Julian date.
func (b Body) StateAt(t float64) (CartesianState, error) {
	if b.IsStar() {
		return CartesianState{}, nil
	}
	return ElementsToState(b.Elements, t)
}

// String implements the Stringer interface.
func (b Body) String() string {
	return b.Name + " body"
}

// BodyProvider is the read only body data the core consumes.
type BodyProvider interface {
	// Body returns the body of the provided name, and false if unknown.
	Body(name string) (Body, bool)
	// Bodies returns all known bodies, in a stable order.
	Bodies() []Body
}

// Catalog is an in-memory BodyProvider. It is safe for concurrent reads.
type Catalog struct {
	bodies []Body
	index  map[string]int
}

// NewCatalog returns a catalog of the provided bodies, looked up case insensitively.
func NewCatalog(bodies ...Body) *Catalog {
	c := &Catalog{bodies: make([]Body, len(bodies)), index: make(map[string]int, len(bodies))}
	copy(c.bodies, bodies)
	for i, b := range bodies {
		c.index[strings.ToLower(b.Name)] = i
	}
	return c
}

// Body implements the BodyProvider interface.
func (c *Catalog) Body(name string) (Body, bool) {
	i, ok := c.index[strings.ToLower(name)]
	if !ok {
		return Body{}, false
	}
	return c.bodies[i], true
}

// Bodies implements the BodyProvider interface.
func (c *Catalog) Bodies() []Body {
	out := make([]Body, len(c.bodies))
	copy(out, c.bodies)
	return out
}

// DefaultCatalog returns the Sun and the eight planets on their J2000 mean orbits.
func DefaultCatalog() *Catalog {
	return NewCatalog(Sun, Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune)
}

// newPlanet builds a planet from J2000 mean elements as tabulated by Standish: semi-major axis,
// eccentricity, inclination, mean longitude, longitude of perihelion and of the ascending node
// (in degrees), the Sun to planet mass ratio and the planet's radius in kilometers.
// The sphere of influence is Laplace's a(m/M)^(2/5).
func newPlanet(name string, a, e, i, L, ϖ, Ω, massRatio, radiusKm float64) Body {
	return Body{
		Name: name,
		Elements: OrbitalElements{
			A:       a,
			E:       e,
			I:       Deg2rad(i),
			RAAN:    Deg2rad(Ω),
			ArgPeri: Deg2rad(ϖ - Ω),
			M0:      Deg2rad(L - ϖ),
			Epoch:   J2000,
			Mu:      MuSun,
		},
		RadiusKm: radiusKm,
		SOI:      a * math.Pow(1/massRatio, 0.4),
		Mu:       MuSun / massRatio,
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = Body{Name: SunName, RadiusKm: 695700, Mu: MuSun}

// Mercury is fast.
var Mercury = newPlanet("Mercury", 0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593, 6023600, 2439.7)

// Venus is poisonous.
var Venus = newPlanet("Venus", 0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255, 408523.71, 6051.8)

// Earth is home (Earth-Moon barycenter orbit).
var Earth = newPlanet("Earth", 1.00000261, 0.01671123, 0, 100.46457166, 102.93768193, 0, 328900.56, 6378.1363)

// Mars is the vacation place.
var Mars = newPlanet("Mars", 1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891, 3098708, 3396.19)

// Jupiter is big.
var Jupiter = newPlanet("Jupiter", 5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909, 1047.3486, 71492.0)

// Saturn floats and that's really cool.
var Saturn = newPlanet("Saturn", 9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448, 3497.898, 60268.0)

// Uranus is no joke.
var Uranus = newPlanet("Uranus", 19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503, 22902.98, 25559.0)

// Neptune is the last one.
var Neptune = newPlanet("Neptune", 30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574, 19412.24, 24764.0)

// heliocentricOffset returns the heliocentric state of the provided body, or the zero state if unknown.
func heliocentricOffset(bodies BodyProvider, name string, t float64) (CartesianState, bool) {
	if name == SunName {
		return CartesianState{}, true
	}
	b, ok := bodies.Body(name)
	if !ok {
		return CartesianState{}, false
	}
	s, err := b.StateAt(t)
	if err != nil {
		return CartesianState{}, false
	}
	return s, true
}

func distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
