package sailprop

import (
	"time"
)

// thrustAccelFloor is the acceleration (AU/day²) below which a thrust step is
// skipped entirely, so numerical noise is never injected into what should be
// pure Keplerian motion.
const thrustAccelFloor = 1e-16

// ApplySailThrust applies one sail thrust step to the orbit via the
// state-vector method: the Cartesian state is computed at dt, the velocity
// receives accel·Δt along the thrust direction, and the elements are
// re-derived from the unchanged position and the bumped velocity. Holding the
// position fixed for the instant of the bump is a deliberate approximation —
// sail thrust is tiny relative to orbital velocity — and it guarantees
// position continuity regardless of thrust magnitude or step size.
//
// sunR is the ship's heliocentric position, which sets both the photon
// pressure and the anti-sunward thrust component; it equals the orbit's own
// position when the orbit is heliocentric. The returned orbit is anchored at
// dt. When the thrust is below the numerical floor the orbit is returned
// unchanged.
func ApplySailThrust(o Orbit, sail SailConfig, sunR []float64, mass float64, dt time.Time, step time.Duration) (Orbit, error) {
	accel, err := sail.Accel(norm(sunR), mass)
	if err != nil {
		return o, err
	}
	if accel < thrustAccelFloor {
		return o, nil
	}
	st := o.StateAt(dt)
	dir := sail.ThrustDirection(sunR, st.R, st.V)
	Δv := accel * step.Seconds() / day
	newV := make([]float64, 3)
	for i := 0; i < 3; i++ {
		newV[i] = st.V[i] + Δv*dir[i]
	}
	return NewOrbitFromState(st.R, newV, o.Origin, dt), nil
}
