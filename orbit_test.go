package sailprop

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestOrbitDefinition(t *testing.T) {
	o, err := NewOrbit(1, 0.0167, 0.5, 30, 60, 45, J2000, Sun)
	if err != nil {
		t.Fatalf("%s", err)
	}
	a, e, i, Ω, ω, M0 := o.Elements()
	if a != 1 || e != 0.0167 {
		t.Fatalf("a=%f e=%f", a, e)
	}
	for got, want := range map[float64]float64{i: 0.5, Ω: 30, ω: 60, M0: 45} {
		if ok, err := anglesEqual(got, Deg2rad(want)); !ok {
			t.Fatalf("angle not stored in radians: %s", err)
		}
	}
	if o.Hyperbolic() {
		t.Fatal("e=0.0167 orbit is not hyperbolic")
	}
	if o.Energyξ() >= 0 {
		t.Fatal("closed orbit must have negative energy")
	}
}

func TestOrbitValidation(t *testing.T) {
	cases := []struct {
		name             string
		a, e, i, Ω, ω, M float64
	}{
		{"NaN sma", math.NaN(), 0, 0, 0, 0, 0},
		{"negative ecc", 1, -0.1, 0, 0, 0, 0},
		{"hyperbolic with positive sma", 1, 1.5, 0, 0, 0, 0},
		{"closed with negative sma", -1, 0.5, 0, 0, 0, 0},
		{"zero sma", 0, 0.5, 0, 0, 0, 0},
		{"infinite inclination", 1, 0, math.Inf(1), 0, 0, 0},
	}
	for _, c := range cases {
		if _, err := NewOrbit(c.a, c.e, c.i, c.Ω, c.ω, c.M, J2000, Sun); err == nil {
			t.Fatalf("%s: expected an error", c.name)
		}
	}
	if _, err := NewOrbit(-2, 1.5, 10, 20, 30, 0, J2000, Sun); err != nil {
		t.Fatalf("valid hyperbolic orbit rejected: %s", err)
	}
}

func TestOrbitPeriod(t *testing.T) {
	o, err := NewOrbit(1, 0, 0, 0, 0, 0, J2000, Sun)
	if err != nil {
		t.Fatalf("%s", err)
	}
	days := o.Period().Hours() / 24
	if !scalar.EqualWithinAbs(days, 365.25, 0.05) {
		t.Fatalf("1 AU circular heliocentric period: %f days", days)
	}
	hyper, _ := NewOrbit(-1, 1.5, 0, 0, 0, 0, J2000, Sun)
	assertPanic(t, func() { hyper.Period() })
}

func TestOrbitSemiParameter(t *testing.T) {
	elliptic, _ := NewOrbit(2, 0.5, 0, 0, 0, 0, J2000, Sun)
	if p := elliptic.SemiParameter(); !scalar.EqualWithinAbs(p, 1.5, 1e-12) {
		t.Fatalf("p=%f", p)
	}
	hyper, _ := NewOrbit(-2, 1.5, 0, 0, 0, 0, J2000, Sun)
	if p := hyper.SemiParameter(); p <= 0 {
		t.Fatalf("hyperbolic semi-parameter must stay positive, got %f", p)
	}
	if ap := elliptic.Apoapsis(); !scalar.EqualWithinAbs(ap, 3, 1e-12) {
		t.Fatalf("apoapsis %f", ap)
	}
	if pe := elliptic.Periapsis(); !scalar.EqualWithinAbs(pe, 1, 1e-12) {
		t.Fatalf("periapsis %f", pe)
	}
}

// The element/state roundtrip is the backbone of the whole engine: thrust is
// applied through NewOrbitFromState, so a lossy conversion would corrupt every
// propagation step.
func TestOrbitStateRoundtrip(t *testing.T) {
	cases := []struct {
		name             string
		a, e, i, Ω, ω, M float64
	}{
		{"generic", 1.3, 0.2, 12, 40, 80, 110},
		{"low ecc", 0.9, 0.001, 5, 10, 20, 200},
		{"high inc", 2.5, 0.4, 88, 120, 300, 30},
		{"retrograde", 1.1, 0.1, 160, 45, 90, 270},
		{"hyperbolic", -1.5, 1.8, 25, 60, 120, 10},
	}
	for _, c := range cases {
		o, err := NewOrbit(c.a, c.e, c.i, c.Ω, c.ω, c.M, J2000, Sun)
		if err != nil {
			t.Fatalf("%s: %s", c.name, err)
		}
		st := o.StateAt(J2000)
		o1 := NewOrbitFromState(st.R, st.V, Sun, J2000)
		if ok, err := o.Equals(o1); !ok {
			t.Fatalf("%s: %s\n%s\n%s", c.name, err, o, o1)
		}
		// The reconstruction must also propagate identically.
		later := J2000.Add(37 * 24 * time.Hour)
		st0, st1 := o.StateAt(later), o1.StateAt(later)
		if !vectorsEqual(st0.R, st1.R) {
			t.Fatalf("%s: positions diverge at %s\n%+v\n%+v", c.name, later, st0.R, st1.R)
		}
		if !vectorsEqual(st0.V, st1.V) {
			t.Fatalf("%s: velocities diverge at %s\n%+v\n%+v", c.name, later, st0.V, st1.V)
		}
	}
}

func TestOrbitDegenerateConventions(t *testing.T) {
	dt := J2000
	// Circular equatorial: Ω and ω both undefined, both must come back zero.
	o, _ := NewOrbit(1, 0, 0, 0, 0, 75, dt, Sun)
	st := o.StateAt(dt)
	o1 := NewOrbitFromState(st.R, st.V, Sun, dt)
	_, _, _, Ω, ω, _ := o1.Elements()
	if Ω > angleε && 2*math.Pi-Ω > angleε {
		t.Fatalf("circular equatorial Ω=%f", Ω)
	}
	if ω > angleε && 2*math.Pi-ω > angleε {
		t.Fatalf("circular equatorial ω=%f", ω)
	}
	// Circular inclined: ω must be zero, the node line carries the geometry.
	o, _ = NewOrbit(1, 0, 30, 45, 0, 120, dt, Sun)
	st = o.StateAt(dt)
	o1 = NewOrbitFromState(st.R, st.V, Sun, dt)
	_, _, _, Ω, ω, _ = o1.Elements()
	if ω > angleε && 2*math.Pi-ω > angleε {
		t.Fatalf("circular inclined ω=%f", ω)
	}
	if ok, err := anglesEqual(Ω, Deg2rad(45)); !ok {
		t.Fatalf("circular inclined Ω: %s", err)
	}
	// Elliptic equatorial: Ω folds into the longitude of periapsis.
	o, _ = NewOrbit(1.2, 0.3, 0, 30, 40, 0, dt, Sun)
	st = o.StateAt(dt)
	o1 = NewOrbitFromState(st.R, st.V, Sun, dt)
	if ok, err := anglesEqual(o1.Tildeω(), Deg2rad(70)); !ok {
		t.Fatalf("elliptic equatorial Tildeω: %s", err)
	}
	// Either way the reconstructed orbit must re-generate the same state.
	if !vectorsEqual(o1.StateAt(dt).R, st.R) {
		t.Fatalf("degenerate reconstruction moved the ship:\n%+v\n%+v", o1.StateAt(dt).R, st.R)
	}
}

// A hyperbolic flyby must stay finite over its whole pass, and its true
// anomaly must never reach the asymptote limits.
func TestHyperbolicPropagation(t *testing.T) {
	o, err := NewOrbit(-0.8, 2.5, 15, 20, 30, 0, J2000, Sun)
	if err != nil {
		t.Fatalf("%s", err)
	}
	νMax := math.Acos(-1 / 2.5)
	for Δ := -200.0; Δ <= 200.0; Δ += 5 {
		dt := J2000.Add(time.Duration(Δ*24) * time.Hour)
		ν, err := o.AnomalyAt(dt)
		if err != nil {
			t.Fatalf("Δ=%f days: %s", Δ, err)
		}
		if math.Abs(ν) >= νMax {
			t.Fatalf("Δ=%f days: ν=%f beyond asymptote limit %f", Δ, ν, νMax)
		}
		st := o.StateAt(dt)
		for j := 0; j < 3; j++ {
			if math.IsNaN(st.R[j]) || math.IsNaN(st.V[j]) {
				t.Fatalf("Δ=%f days: NaN state %+v %+v", Δ, st.R, st.V)
			}
		}
	}
}

func TestStateAtCircularRadius(t *testing.T) {
	o, _ := NewOrbit(1, 0, 0, 0, 0, 0, J2000, Sun)
	for Δ := 0; Δ < 400; Δ += 10 {
		st := o.StateAt(J2000.Add(time.Duration(Δ) * 24 * time.Hour))
		if r := st.RNorm(); !scalar.EqualWithinAbs(r, 1, 1e-9) {
			t.Fatalf("Δ=%d days: r=%.12f", Δ, r)
		}
	}
}
