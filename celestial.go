package sailprop

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/planetposition"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// day is one day in seconds.
	day = 86400.0
	// μConv converts a gravitational parameter from km³/s² to AU³/day².
	μConv = day * day / (AU * AU * AU)
	// km2AU converts kilometers to astronomical units.
	km2AU = 1 / AU
)

// J2000 is the reference epoch of the built-in mean orbital elements.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// ErrUnknownBody is returned when a body lookup fails.
var ErrUnknownBody = errors.New("unknown celestial body")

// Body defines a celestial object in canonical units (AU, days).
// The zero SOI of the Sun is stored as -1, as a sentinel for "heliocentric".
type Body struct {
	Name   string
	Radius float64 // AU
	a      float64 // mean heliocentric semi-major axis, AU
	μ      float64 // AU³/day²
	SOI    float64 // AU, with respect to the Sun; -1 for the Sun itself
	// Mean J2000 ecliptic elements for the ephemeris fallback (degrees).
	meanE, meanI, meanΩ, meanϖ, meanL float64
	vsop                              int // meeus planet index + 1; 0 when VSOP87 has no series
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (b Body) GM() float64 { return b.μ }

// IsSun returns whether this body is the heliocentric sentinel.
func (b Body) IsSun() bool { return b.SOI == -1 }

// String implements the Stringer interface.
func (b Body) String() string { return b.Name + " body" }

// Equals returns whether the provided celestial object is the same.
func (b Body) Equals(o Body) bool {
	return b.Name == o.Name && b.Radius == o.Radius && b.a == o.a && b.μ == o.μ && b.SOI == o.SOI
}

/* Definitions. μ converted from km³/s², radii and SOI from km. */

// Sun is our closest star.
var Sun = Body{Name: "Sun", Radius: 695700 * km2AU, a: -1, μ: 1.32712440017987e11 * μConv, SOI: -1}

// Mercury is the one Mariner 10 visited.
var Mercury = Body{"Mercury", 2439.7 * km2AU, 0.38709927, 2.2032e4 * μConv, 0.112e6 * km2AU,
	0.20563593, 7.00497902, 48.33076593, 77.45779628, 252.25032350, int(planetposition.Mercury) + 1}

// Venus is poisonous.
var Venus = Body{"Venus", 6051.8 * km2AU, 0.72333566, 3.24858599e5 * μConv, 0.616e6 * km2AU,
	0.00677672, 3.39467605, 76.67984255, 131.60246718, 181.97909950, int(planetposition.Venus) + 1}

// Earth is home.
var Earth = Body{"Earth", 6378.1363 * km2AU, 1.00000261, 3.98600433e5 * μConv, 924645.0 * km2AU,
	0.01671123, 0.00001531, 0, 102.93768193, 100.46457166, int(planetposition.Earth) + 1}

// Mars is the vacation place.
var Mars = Body{"Mars", 3396.19 * km2AU, 1.52371034, 4.28283100e4 * μConv, 576000 * km2AU,
	0.09339410, 1.84969142, 49.55953891, 336.05637041, 355.44656795, int(planetposition.Mars) + 1}

// Jupiter is big.
var Jupiter = Body{"Jupiter", 71492.0 * km2AU, 5.20288700, 1.266865361e8 * μConv, 48.2e6 * km2AU,
	0.04838624, 1.30439695, 100.47390909, 14.72847983, 34.39644051, int(planetposition.Jupiter) + 1}

// Saturn floats and that's really cool.
var Saturn = Body{"Saturn", 60268.0 * km2AU, 9.53667594, 3.7931208e7 * μConv, 54.5e6 * km2AU,
	0.05386179, 2.48599187, 113.66242448, 92.59887831, 49.95424423, int(planetposition.Saturn) + 1}

// BodyFromString returns the built-in body from its name.
func BodyFromString(name string) (Body, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	default:
		return Body{}, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
}

// Ephemeris is the celestial catalog surface consumed by the SOI manager and
// the trajectory predictor. The host refreshes positions through it each tick.
type Ephemeris interface {
	// Body returns the catalog entry for the given name.
	Body(name string) (Body, error)
	// Bodies returns all planetary bodies (the Sun excluded), in a stable order.
	Bodies() []Body
	// HelioState returns the heliocentric state of the named body at dt.
	HelioState(name string, dt time.Time) (State, error)
}

// Catalog is the built-in Ephemeris. Planet states come from the VSOP87 series
// when enabled in the settings, otherwise from mean J2000 elements propagated
// with the engine's own Kepler solver.
type Catalog struct {
	bodies map[string]Body
	vsop   map[string]*planetposition.V87Planet
	cfg    Settings
}

// NewCatalog returns a catalog holding the built-in bodies.
func NewCatalog(cfg Settings) *Catalog {
	c := &Catalog{bodies: make(map[string]Body), vsop: make(map[string]*planetposition.V87Planet), cfg: cfg}
	for _, b := range []Body{Mercury, Venus, Earth, Mars, Jupiter, Saturn} {
		c.bodies[b.Name] = b
	}
	return c
}

// Body implements the Ephemeris interface.
func (c *Catalog) Body(name string) (Body, error) {
	if name == Sun.Name {
		return Sun, nil
	}
	b, found := c.bodies[name]
	if !found {
		return Body{}, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
	return b, nil
}

// Bodies implements the Ephemeris interface.
func (c *Catalog) Bodies() []Body {
	names := make([]string, 0, len(c.bodies))
	for name := range c.bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	bodies := make([]Body, len(names))
	for i, name := range names {
		bodies[i] = c.bodies[name]
	}
	return bodies
}

// HelioState implements the Ephemeris interface.
func (c *Catalog) HelioState(name string, dt time.Time) (State, error) {
	if name == Sun.Name {
		return State{R: []float64{0, 0, 0}, V: []float64{0, 0, 0}, Origin: Sun}, nil
	}
	b, found := c.bodies[name]
	if !found {
		return State{}, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
	if c.cfg.VSOP87 && b.vsop > 0 {
		if st, err := c.vsopState(b, dt); err == nil {
			return st, nil
		}
		// Fall through to mean elements when the series cannot be loaded.
	}
	return c.meanState(b, dt)
}

// vsopState computes the heliocentric state from the VSOP87 series. The
// velocity direction is approximated as circular prograde, which is plenty for
// SOI bookkeeping and frame conversions.
func (c *Catalog) vsopState(b Body, dt time.Time) (State, error) {
	pp, loaded := c.vsop[b.Name]
	if !loaded {
		planet, err := planetposition.LoadPlanetPath(b.vsop-1, c.cfg.VSOP87Dir)
		if err != nil {
			return State{}, fmt.Errorf("could not load VSOP87 series for %s: %w", b.Name, err)
		}
		c.vsop[b.Name] = planet
		pp = planet
	}
	l, lat, r := pp.Position2000(julian.TimeToJD(dt))
	v := math.Sqrt(2*Sun.μ/r - Sun.μ/b.a)
	R, V := make([]float64, 3), make([]float64, 3)
	sB, cB := math.Sincos(lat.Rad())
	sL, cL := math.Sincos(l.Rad())
	R[0] = r * cB * cL
	R[1] = r * cB * sL
	R[2] = r * sB
	vDir := unit(cross(R, []float64{0, 0, -1}))
	for i := 0; i < 3; i++ {
		V[i] = v * vDir[i]
	}
	return State{R: R, V: V, Origin: Sun}, nil
}

// meanState propagates the body's mean J2000 elements to dt.
func (c *Catalog) meanState(b Body, dt time.Time) (State, error) {
	ω := b.meanϖ - b.meanΩ
	M0 := b.meanL - b.meanϖ
	orbit, err := NewOrbit(b.a, b.meanE, b.meanI, b.meanΩ, ω, M0, J2000, Sun)
	if err != nil {
		return State{}, err
	}
	return orbit.StateAt(dt), nil
}
