package sailprop

import (
	"errors"
	"fmt"
	"math"
)

const (
	keplerTolerance = 1e-10
	keplerMaxIters  = 30
)

// ErrNoConvergence is returned when the Kepler iteration hits its cap. The
// accompanying anomaly is the last iterate and remains usable.
var ErrNoConvergence = errors.New("kepler iteration did not converge")

// meanMotion returns the mean motion n in rad/day for the given gravitational
// parameter (AU³/day²) and semi-major axis (AU, negative for hyperbolic).
func meanMotion(μ, a float64) (float64, error) {
	if math.IsNaN(μ) || math.IsInf(μ, 0) || μ <= 0 {
		return 0, fmt.Errorf("invalid gravitational parameter μ=%f", μ)
	}
	if math.IsNaN(a) || math.IsInf(a, 0) || a == 0 {
		return 0, fmt.Errorf("invalid semi-major axis a=%f", a)
	}
	return math.Sqrt(μ / math.Pow(math.Abs(a), 3)), nil
}

// solveKeplerElliptic solves M = E - e sin(E) for the eccentric anomaly E via
// Newton-Raphson. On iteration cap exhaustion the last iterate is returned
// along with ErrNoConvergence.
func solveKeplerElliptic(M, e float64) (float64, error) {
	E := M
	for iter := 0; iter < keplerMaxIters; iter++ {
		sinE, cosE := math.Sincos(E)
		f := E - e*sinE - M
		if math.Abs(f) < keplerTolerance {
			return E, nil
		}
		E -= f / (1 - e*cosE)
	}
	return E, ErrNoConvergence
}

// solveKeplerHyperbolic solves M = e sinh(H) - H for the hyperbolic anomaly H.
// The initial guess follows the usual logarithmic form so that large mean
// anomalies do not overflow sinh during the first iterations.
func solveKeplerHyperbolic(M, e float64) (float64, error) {
	H := math.Asinh(M / e)
	if math.Abs(M) > 3 {
		H = sign(M) * math.Log(2*math.Abs(M)/e+1.8)
	}
	for iter := 0; iter < keplerMaxIters; iter++ {
		f := e*math.Sinh(H) - H - M
		if math.Abs(f) < keplerTolerance {
			return H, nil
		}
		H -= f / (e*math.Cosh(H) - 1)
	}
	return H, ErrNoConvergence
}

// trueAnomalyFromEccentric converts the eccentric anomaly E to ν (elliptic).
func trueAnomalyFromEccentric(E, e float64) float64 {
	return 2 * math.Atan2(math.Sqrt(1+e)*math.Sin(E/2), math.Sqrt(1-e)*math.Cos(E/2))
}

// trueAnomalyFromHyperbolic converts the hyperbolic anomaly H to ν. The result
// always lies strictly within the asymptote limits ±acos(-1/e).
func trueAnomalyFromHyperbolic(H, e float64) float64 {
	return 2 * math.Atan2(math.Sqrt(e+1)*math.Sinh(H/2), math.Sqrt(e-1)*math.Cosh(H/2))
}

// eccentricFromTrueAnomaly converts ν to the eccentric anomaly E (elliptic).
func eccentricFromTrueAnomaly(ν, e float64) float64 {
	return 2 * math.Atan2(math.Sqrt(1-e)*math.Sin(ν/2), math.Sqrt(1+e)*math.Cos(ν/2))
}

// hyperbolicFromTrueAnomaly converts ν to the hyperbolic anomaly H.
func hyperbolicFromTrueAnomaly(ν, e float64) float64 {
	// tanh(H/2) = sqrt((e-1)/(e+1)) tan(ν/2)
	t := math.Sqrt((e-1)/(e+1)) * math.Tan(ν/2)
	// Roundoff may push t marginally outside (-1, 1) near the asymptotes.
	if t >= 1 {
		t = math.Nextafter(1, 0)
	} else if t <= -1 {
		t = math.Nextafter(-1, 0)
	}
	return 2 * math.Atanh(t)
}

// meanFromEccentric returns the mean anomaly matching an eccentric anomaly.
func meanFromEccentric(E, e float64) float64 {
	return E - e*math.Sin(E)
}

// meanFromHyperbolic returns the mean anomaly matching a hyperbolic anomaly.
func meanFromHyperbolic(H, e float64) float64 {
	return e*math.Sinh(H) - H
}
