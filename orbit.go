package sailprop

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 1e-7                         // AU, roughly 15 km
	velocityε     = 1e-9                         // AU/day
)

// Orbit defines an orbit via its Keplerian elements, anchored at an epoch by
// the mean anomaly M0. The Origin body is the frame tag: it carries the
// gravitational parameter and SOI radius of the frame center, so a frame
// change can never leave a stale μ behind.
type Orbit struct {
	a, e, i, Ω, ω, M0 float64
	Epoch             time.Time
	Origin            Body
}

// State is the Cartesian counterpart of an Orbit: position (AU) and velocity
// (AU/day), tagged with the same Origin body. Derived, never persisted.
type State struct {
	R, V   []float64
	Origin Body
}

// RNorm returns the norm of the position vector.
func (s State) RNorm() float64 { return norm(s.R) }

// VNorm returns the norm of the velocity vector.
func (s State) VNorm() float64 { return norm(s.V) }

// NewOrbit creates an orbit from its orbital elements and validates them.
// WARNING: Angles must be in degrees not radians.
func NewOrbit(a, e, i, Ω, ω, M0 float64, epoch time.Time, origin Body) (Orbit, error) {
	for name, val := range map[string]float64{"a": a, "e": e, "i": i, "Ω": Ω, "ω": ω, "M0": M0} {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return Orbit{}, fmt.Errorf("non-finite element %s=%f", name, val)
		}
	}
	if e < 0 {
		return Orbit{}, fmt.Errorf("negative eccentricity e=%f", e)
	}
	if e >= 1 && a >= 0 {
		return Orbit{}, fmt.Errorf("hyperbolic orbit requires a<0, got a=%f e=%f", a, e)
	}
	if e < 1 && a <= 0 {
		return Orbit{}, fmt.Errorf("closed orbit requires a>0, got a=%f e=%f", a, e)
	}
	if _, err := meanMotion(origin.μ, a); err != nil {
		return Orbit{}, err
	}
	return Orbit{a, e, Deg2rad(i), Deg2rad(Ω), Deg2rad(ω), Deg2rad(M0), epoch, origin}, nil
}

// Elements returns the six orbital elements (angles in radians).
func (o Orbit) Elements() (a, e, i, Ω, ω, M0 float64) {
	return o.a, o.e, o.i, o.Ω, o.ω, o.M0
}

// Hyperbolic returns whether this orbit is unbound.
func (o Orbit) Hyperbolic() bool { return o.e >= 1 }

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 { return -o.Origin.μ / (2 * o.a) }

// SemiParameter returns the semi-parameter p. Positive for hyperbolic orbits
// too, since a<0 and 1-e² < 0 cancel out.
func (o Orbit) SemiParameter() float64 { return o.a * (1 - o.e*o.e) }

// Apoapsis returns the apoapsis radius. Only meaningful for closed orbits.
func (o Orbit) Apoapsis() float64 { return o.a * (1 + o.e) }

// Periapsis returns the periapsis radius.
func (o Orbit) Periapsis() float64 { return o.a * (1 - o.e) }

// Tildeω returns the longitude of periapsis.
func (o Orbit) Tildeω() float64 { return math.Mod(o.ω+o.Ω, 2*math.Pi) }

// MeanMotion returns the mean motion in rad/day.
func (o Orbit) MeanMotion() float64 {
	n, _ := meanMotion(o.Origin.μ, o.a) // validated at construction
	return n
}

// Period returns the period of this orbit. Panics on hyperbolic orbits, which
// do not have one.
func (o Orbit) Period() time.Duration {
	if o.Hyperbolic() {
		panic("hyperbolic orbits have no period")
	}
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(o.a, 3)/o.Origin.μ) * day
	duration, _ := time.ParseDuration(fmt.Sprintf("%.6fs", seconds))
	return duration
}

// AnomalyAt returns the true anomaly at the given time. The returned error is
// only ever ErrNoConvergence, in which case ν is the best available iterate.
func (o Orbit) AnomalyAt(dt time.Time) (ν float64, err error) {
	n := o.MeanMotion()
	Δdays := dt.Sub(o.Epoch).Seconds() / day
	M := o.M0 + n*Δdays
	if o.Hyperbolic() {
		H, err := solveKeplerHyperbolic(M, o.e)
		return trueAnomalyFromHyperbolic(H, o.e), err
	}
	M = math.Mod(M, 2*math.Pi)
	if M < 0 {
		M += 2 * math.Pi
	}
	E, err := solveKeplerElliptic(M, o.e)
	return trueAnomalyFromEccentric(E, o.e), err
}

// StateAt returns the Cartesian state of this orbit at the given time. A
// non-converged Kepler iteration degrades precision but never fails.
func (o Orbit) StateAt(dt time.Time) State {
	ν, _ := o.AnomalyAt(dt)
	p := o.SemiParameter()
	sinν, cosν := math.Sincos(ν)
	r := p / (1 + o.e*cosν)
	R := []float64{r * cosν, r * sinν, 0}
	vFact := math.Sqrt(o.Origin.μ / p)
	V := []float64{-vFact * sinν, vFact * (o.e + cosν), 0}
	return State{
		R:      PQW2Inertial(o.i, o.ω, o.Ω, R),
		V:      PQW2Inertial(o.i, o.ω, o.Ω, V),
		Origin: o.Origin,
	}
}

// NewOrbitFromState returns orbital elements from the R and V vectors,
// anchored at dt. From Vallado's RV2COE, extended to hyperbolic orbits.
//
// Degenerate orbits never fail. The convention is: near-circular orbits get
// ω=0 and the anomaly is measured from the ascending node (from +X when also
// equatorial); near-equatorial orbits get Ω=0 and ω absorbs the longitude of
// periapsis.
func NewOrbitFromState(R, V []float64, origin Body, dt time.Time) Orbit {
	hVec := cross(R, V)
	nVec := cross([]float64{0, 0, 1}, hVec)
	v := norm(V)
	r := norm(R)
	n := norm(nVec)
	ξ := (v*v)/2 - origin.μ/r
	a := -origin.μ / (2 * ξ)
	eVec := make([]float64, 3)
	for j := 0; j < 3; j++ {
		eVec[j] = ((v*v-origin.μ/r)*R[j] - dot(R, V)*V[j]) / origin.μ
	}
	e := norm(eVec)
	i := math.Acos(clampAcos(hVec[2] / norm(hVec)))

	circular := e < eccentricityε
	equatorial := i < angleε

	var Ω, ω, ν float64
	switch {
	case circular && equatorial:
		// True longitude from +X.
		ν = math.Acos(clampAcos(R[0] / r))
		if R[1] < 0 {
			ν = 2*math.Pi - ν
		}
	case circular:
		Ω = math.Acos(clampAcos(nVec[0] / n))
		if nVec[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
		// Argument of latitude from the ascending node.
		ν = math.Acos(clampAcos(dot(nVec, R) / (n * r)))
		if R[2] < 0 {
			ν = 2*math.Pi - ν
		}
	case equatorial:
		// Longitude of periapsis from +X.
		ω = math.Acos(clampAcos(eVec[0] / e))
		if eVec[1] < 0 {
			ω = 2*math.Pi - ω
		}
		ν = math.Acos(clampAcos(dot(eVec, R) / (e * r)))
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	default:
		Ω = math.Acos(clampAcos(nVec[0] / n))
		if nVec[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
		ω = math.Acos(clampAcos(dot(nVec, eVec) / (n * e)))
		if math.IsNaN(ω) {
			ω = 0
		}
		if eVec[2] < 0 {
			ω = 2*math.Pi - ω
		}
		ν = math.Acos(clampAcos(dot(eVec, R) / (e * r)))
		if dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	}

	// Fix rounding errors.
	i = math.Mod(i, 2*math.Pi)
	Ω = math.Mod(Ω, 2*math.Pi)
	ω = math.Mod(ω, 2*math.Pi)
	ν = math.Mod(ν, 2*math.Pi)

	// Anchor the epoch via the matching mean anomaly.
	var M0 float64
	if e >= 1 {
		M0 = meanFromHyperbolic(hyperbolicFromTrueAnomaly(ν, e), e)
	} else {
		M0 = meanFromEccentric(eccentricFromTrueAnomaly(ν, e), e)
		M0 = math.Mod(M0, 2*math.Pi)
		if M0 < 0 {
			M0 += 2 * math.Pi
		}
	}
	return Orbit{a, e, i, Ω, ω, M0, dt, origin}
}

// clampAcos clamps a cosine into [-1, 1]. Roundoff in the dot products can
// push it marginally outside and turn math.Acos into NaN.
func clampAcos(cosx float64) float64 {
	if cosx > 1 {
		return 1
	}
	if cosx < -1 {
		return -1
	}
	return cosx
}

// String implements the stringer interface (hence the value receiver).
func (o Orbit) String() string {
	return fmt.Sprintf("a=%.4f e=%.4f i=%.3f Ω=%.3f ω=%.3f M0=%.3f @ %s (%s)",
		o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), Rad2deg(o.M0), o.Epoch.Format(time.RFC3339), o.Origin.Name)
}

// Equals returns whether two orbits are identical within tolerance, with free
// mean anomaly. The Ω/ω degeneracy near e≈0 or i≈0 is folded via the
// longitude of periapsis.
func (o Orbit) Equals(o1 Orbit) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, fmt.Errorf("different origin")
	}
	if !scalar.EqualWithinAbs(o.a, o1.a, distanceε) {
		return false, fmt.Errorf("semi major axis invalid")
	}
	if !scalar.EqualWithinAbs(o.e, o1.e, eccentricityε) {
		return false, fmt.Errorf("eccentricity invalid")
	}
	if !scalar.EqualWithinAbs(o.i, o1.i, angleε) {
		return false, fmt.Errorf("inclination invalid")
	}
	if o.i < angleε {
		// Equatorial: only the longitude of periapsis is well defined.
		if o.e > eccentricityε && !anglesEqualWithin(o.Tildeω(), o1.Tildeω(), angleε) {
			return false, fmt.Errorf("longitude of periapsis invalid")
		}
		return true, nil
	}
	if !anglesEqualWithin(o.Ω, o1.Ω, angleε) {
		return false, fmt.Errorf("RAAN invalid")
	}
	if o.e > eccentricityε && !anglesEqualWithin(o.ω, o1.ω, angleε) {
		return false, fmt.Errorf("argument of periapsis invalid")
	}
	return true, nil
}

// anglesEqualWithin compares two angles modulo 2π.
func anglesEqualWithin(α, β, tol float64) bool {
	diff := math.Mod(math.Abs(α-β), 2*math.Pi)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff <= tol
}
