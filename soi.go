package sailprop

import (
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// SOIState tracks which gravity well currently owns the ship. Only the
// SOIManager mutates it, and only on confirmed transitions.
type SOIState struct {
	InSOI         bool
	BodyName      string // owning body; the Sun sentinel when heliocentric
	CooldownUntil time.Time
}

// HeliocentricSOIState returns the initial, heliocentric state.
func HeliocentricSOIState() SOIState {
	return SOIState{InSOI: false, BodyName: Sun.Name}
}

// Transition describes one confirmed SOI boundary crossing.
type Transition struct {
	Entered bool // true on entry, false on exit
	Body    Body
	At      time.Time
}

// SOIManager detects sphere-of-influence transitions and converts orbits
// between the heliocentric and planetocentric frames. Exit hysteresis and a
// post-transition cooldown suppress boundary flicker from numerical noise.
type SOIManager struct {
	eph    Ephemeris
	cfg    Settings
	logger kitlog.Logger
}

// NewSOIManager returns a manager using the given catalog and settings.
func NewSOIManager(eph Ephemeris, cfg Settings, logger kitlog.Logger) *SOIManager {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "soi")
	return &SOIManager{eph: eph, cfg: cfg, logger: logger}
}

// Evaluate inspects the ship's heliocentric position at dt and returns the
// next SOI state, plus the transition if one was confirmed. During an active
// cooldown the state is returned untouched. An unknown body reference fails
// open to heliocentric and is logged, never fatal.
func (m *SOIManager) Evaluate(cur SOIState, helioR []float64, dt time.Time) (SOIState, *Transition) {
	if dt.Before(cur.CooldownUntil) {
		return cur, nil
	}
	if cur.InSOI {
		body, err := m.eph.Body(cur.BodyName)
		if err != nil {
			m.logger.Log("level", "warning", "err", err, "action", "fail open to heliocentric")
			return m.armed(HeliocentricSOIState(), dt), nil
		}
		pstate, err := m.eph.HelioState(cur.BodyName, dt)
		if err != nil {
			m.logger.Log("level", "warning", "err", err, "action", "fail open to heliocentric")
			return m.armed(HeliocentricSOIState(), dt), nil
		}
		rel := make([]float64, 3)
		for i := 0; i < 3; i++ {
			rel[i] = helioR[i] - pstate.R[i]
		}
		if norm(rel) >= body.SOI*m.cfg.SOIExitMultiplier {
			soiTransitionsTotal.WithLabelValues("exit").Inc()
			m.logger.Log("level", "info", "exited", body.Name, "dt", dt)
			return m.armed(HeliocentricSOIState(), dt), &Transition{Entered: false, Body: body, At: dt}
		}
		return cur, nil
	}

	nearest, dist, found := m.Containing(helioR, dt)
	if !found {
		return cur, nil
	}
	soiTransitionsTotal.WithLabelValues("enter").Inc()
	m.logger.Log("level", "info", "entered", nearest.Name, "dt", dt, "r", dist, "soi", nearest.SOI)
	next := SOIState{InSOI: true, BodyName: nearest.Name}
	return m.armed(next, dt), &Transition{Entered: true, Body: nearest, At: dt}
}

// Containing returns the nearest catalog body whose SOI contains the given
// heliocentric position at dt. Bodies() is lexicographically ordered and the
// comparison strict, so an exact distance tie deterministically keeps the
// earlier name.
func (m *SOIManager) Containing(helioR []float64, dt time.Time) (Body, float64, bool) {
	var nearest Body
	nearestDist := -1.0
	for _, body := range m.eph.Bodies() {
		if body.SOI <= 0 {
			continue
		}
		pstate, err := m.eph.HelioState(body.Name, dt)
		if err != nil {
			m.logger.Log("level", "warning", "err", err, "body", body.Name)
			continue
		}
		rel := make([]float64, 3)
		for i := 0; i < 3; i++ {
			rel[i] = helioR[i] - pstate.R[i]
		}
		if d := norm(rel); d < body.SOI && (nearestDist < 0 || d < nearestDist) {
			nearest = body
			nearestDist = d
		}
	}
	return nearest, nearestDist, nearestDist >= 0
}

// armed returns the state with the transition cooldown started at dt.
func (m *SOIManager) armed(s SOIState, dt time.Time) SOIState {
	s.CooldownUntil = dt.Add(m.cfg.SOICooldown)
	return s
}

// EnterSOI converts a heliocentric orbit to its planetocentric equivalent
// around body b: the parent's heliocentric state is subtracted and the
// elements are re-derived with the parent's μ. On an ephemeris failure the
// orbit is returned unchanged (the ship stays heliocentric) with the error.
func (m *SOIManager) EnterSOI(o Orbit, b Body, dt time.Time) (Orbit, error) {
	pstate, err := m.eph.HelioState(b.Name, dt)
	if err != nil {
		m.logger.Log("level", "warning", "err", err, "action", "staying heliocentric")
		return o, err
	}
	st := o.StateAt(dt)
	relR, relV := make([]float64, 3), make([]float64, 3)
	for i := 0; i < 3; i++ {
		relR[i] = st.R[i] - pstate.R[i]
		relV[i] = st.V[i] - pstate.V[i]
	}
	return NewOrbitFromState(relR, relV, b, dt), nil
}

// ExitSOI converts a planetocentric orbit back to heliocentric by adding the
// parent's heliocentric state and re-deriving the elements with the Sun's μ.
// If the parent cannot be resolved anymore the relative state is re-tagged
// heliocentric as-is: degraded output, never a crash.
func (m *SOIManager) ExitSOI(o Orbit, dt time.Time) (Orbit, error) {
	st := o.StateAt(dt)
	pstate, err := m.eph.HelioState(o.Origin.Name, dt)
	if err != nil {
		m.logger.Log("level", "warning", "err", err, "action", "re-tagging state heliocentric")
		return NewOrbitFromState(st.R, st.V, Sun, dt), err
	}
	helR, helV := make([]float64, 3), make([]float64, 3)
	for i := 0; i < 3; i++ {
		helR[i] = st.R[i] + pstate.R[i]
		helV[i] = st.V[i] + pstate.V[i]
	}
	return NewOrbitFromState(helR, helV, Sun, dt), nil
}
