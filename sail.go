package sailprop

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig wraps every configuration validation failure, so hosts can
// distinguish bad input from a degraded propagation regime.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// P0 is the solar radiation pressure on a perfect absorber at 1 AU, in
	// N/m² (solar constant 1361 W/m² over the speed of light).
	P0 = 4.56316e-6
	// pressureFloorRadius caps the inverse-square law near the origin so a
	// degenerate state cannot blow the pressure up to infinity.
	pressureFloorRadius = 0.01 // AU
)

// SolarPressure returns the photon pressure in N/m² at a heliocentric
// distance r in AU.
func SolarPressure(r float64) float64 {
	if r < pressureFloorRadius {
		r = pressureFloorRadius
	}
	return P0 / (r * r)
}

// SailConfig defines the state of a solar sail assembly. It is owned by the
// controlling entity (player or autopilot) and read-only to this engine.
type SailConfig struct {
	Area         float64 // total membrane area of one sail, m²
	Reflectivity float64 // [0, 1]
	Yaw          float64 // radians, signed from the sun line
	Pitch        float64 // radians, out of the orbital plane
	Deployment   float64 // percent [0, 100]
	Condition    float64 // percent [0, 100]
	Count        int     // number of sails, linear multiplier, ≥1
}

// Validate rejects non-finite or out-of-range configurations before they can
// reach the propagation math.
func (s SailConfig) Validate() error {
	for name, val := range map[string]float64{
		"area": s.Area, "reflectivity": s.Reflectivity, "yaw": s.Yaw,
		"pitch": s.Pitch, "deployment": s.Deployment, "condition": s.Condition,
	} {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%w: non-finite sail %s=%f", ErrInvalidConfig, name, val)
		}
	}
	if s.Area < 0 {
		return fmt.Errorf("%w: negative sail area %f", ErrInvalidConfig, s.Area)
	}
	if s.Reflectivity < 0 || s.Reflectivity > 1 {
		return fmt.Errorf("%w: reflectivity %f out of [0,1]", ErrInvalidConfig, s.Reflectivity)
	}
	if s.Deployment < 0 || s.Deployment > 100 {
		return fmt.Errorf("%w: deployment %f out of [0,100]", ErrInvalidConfig, s.Deployment)
	}
	if s.Condition < 0 || s.Condition > 100 {
		return fmt.Errorf("%w: condition %f out of [0,100]", ErrInvalidConfig, s.Condition)
	}
	return nil
}

// furled returns whether the sail cannot produce any thrust at all, so the
// trigonometry can be skipped entirely.
func (s SailConfig) furled() bool {
	return s.Deployment <= 0 || s.Condition <= 0 || s.Count < 1 || s.Area <= 0 || s.Reflectivity <= 0
}

// Force returns the sail force magnitude in newtons at a heliocentric
// distance r in AU.
func (s SailConfig) Force(r float64) float64 {
	if s.furled() {
		return 0
	}
	cosYaw := math.Cos(s.Yaw)
	cosPitch := math.Cos(s.Pitch)
	return 2 * SolarPressure(r) * s.Area * cosYaw * cosYaw * cosPitch * cosPitch *
		s.Reflectivity * (s.Deployment / 100) * (s.Condition / 100) * float64(s.Count)
}

// ThrustDirection returns the unit thrust direction: cos(yaw)·cos(pitch)
// along the anti-sunward line, sin(yaw) along the orbital velocity (its sign
// selecting pro- or retrograde), and sin(pitch) along the orbit normal. It
// uses the same radial / transverse / normal decomposition as classic
// low-thrust steering laws. sunR is the ship's heliocentric position; R and V
// are in the ship's current frame (identical to sunR when heliocentric).
// Returns the zero vector when the attitude leaves no resolvable direction.
func (s SailConfig) ThrustDirection(sunR, R, V []float64) []float64 {
	antiSun := unit(sunR)
	prograde := unit(V)
	normal := unit(cross(R, V))
	sinYaw, cosYaw := math.Sincos(s.Yaw)
	sinPitch, cosPitch := math.Sincos(s.Pitch)
	radial := cosYaw * cosPitch
	dir := make([]float64, 3)
	for i := 0; i < 3; i++ {
		dir[i] = radial*antiSun[i] + sinYaw*prograde[i] + sinPitch*normal[i]
	}
	return unit(dir)
}

// Accel returns the thrust acceleration magnitude in AU/day² for a vehicle of
// the given mass in kg at a heliocentric distance r in AU.
func (s SailConfig) Accel(r, mass float64) (float64, error) {
	if math.IsNaN(mass) || math.IsInf(mass, 0) || mass <= 0 {
		return 0, fmt.Errorf("invalid mass %f kg", mass)
	}
	return s.Force(r) / mass * accel2AUDay, nil
}

// accel2AUDay converts an acceleration from m/s² to AU/day².
const accel2AUDay = day * day / (AU * 1e3)
