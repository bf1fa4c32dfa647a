package sailprop

import (
	"fmt"
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// Sample is one time-stamped heliocentric point of a predicted trajectory.
// Samples are created once and never mutated; a returned sequence is immutable
// output.
type Sample struct {
	R         []float64 // heliocentric position, AU
	DT        time.Time
	Truncated bool // set on the last sample when the prediction stopped early
}

// PredictionRequest carries everything a trajectory prediction depends on.
// The Orbit's frame must match the SOI state: planetocentric elements around
// the SOI body when InSOI, heliocentric otherwise.
type PredictionRequest struct {
	Orbit         Orbit
	Sail          SailConfig
	Mass          float64 // kg
	Start         time.Time
	Duration      time.Duration
	Steps         int
	SOI           SOIState
	ExtremeRegime bool
}

// Predictor computes sustained-thrust trajectory predictions. It operates
// internally in the planetocentric frame while the ship is inside an SOI and
// always emits heliocentric samples, so callers never special-case frames.
type Predictor struct {
	eph    Ephemeris
	soi    *SOIManager
	cache  *TrajectoryCache
	cfg    Settings
	logger kitlog.Logger
}

// NewPredictor returns a predictor using the given collaborators. The cache is
// caller-owned; pass the same one across calls to benefit from memoization.
func NewPredictor(eph Ephemeris, soi *SOIManager, cache *TrajectoryCache, cfg Settings, logger kitlog.Logger) *Predictor {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "predict")
	return &Predictor{eph: eph, soi: soi, cache: cache, cfg: cfg, logger: logger}
}

// Predict returns the ordered heliocentric path of the ship under sustained
// sail thrust. Results are memoized in the cache. The only errors are
// boundary-validation ones; a degenerate regime degrades the output (linear
// extrapolation, truncation) instead of failing.
func (p *Predictor) Predict(req PredictionRequest) ([]Sample, error) {
	if req.Steps < 1 {
		return nil, fmt.Errorf("%w: prediction needs at least one step, got %d", ErrInvalidConfig, req.Steps)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("%w: non-positive prediction duration %s", ErrInvalidConfig, req.Duration)
	}
	if math.IsNaN(req.Mass) || math.IsInf(req.Mass, 0) || req.Mass <= 0 {
		return nil, fmt.Errorf("%w: invalid mass %f kg", ErrInvalidConfig, req.Mass)
	}
	if err := req.Sail.Validate(); err != nil {
		return nil, err
	}
	if p.cache == nil {
		return p.compute(req), nil
	}
	return p.cache.GetOrCompute(req, func() []Sample { return p.compute(req) }), nil
}

func (p *Predictor) compute(req PredictionRequest) []Sample {
	defer func(start time.Time) {
		predictionSeconds.Observe(time.Since(start).Seconds())
	}(time.Now())
	predictionsTotal.Inc()

	step := req.Duration / time.Duration(req.Steps)
	stepDays := step.Seconds() / day
	orbit := req.Orbit
	samples := make([]Sample, 0, req.Steps)

	// Linear escape hatch state, heliocentric.
	linear := false
	var linR, linV []float64

	dt := req.Start
	for s := 0; s < req.Steps; s++ {
		if linear {
			next := make([]float64, 3)
			for i := 0; i < 3; i++ {
				next[i] = linR[i] + linV[i]*stepDays
			}
			linR = next
			samples = append(samples, Sample{R: linR, DT: dt})
			if norm(linR) > p.cfg.MaxDistance {
				samples[len(samples)-1].Truncated = true
				return samples
			}
			dt = dt.Add(step)
			continue
		}

		st := orbit.StateAt(dt)
		helioR, helioV := st.R, st.V
		planetocentric := !orbit.Origin.IsSun()
		if planetocentric {
			pstate, err := p.eph.HelioState(orbit.Origin.Name, dt)
			if err != nil {
				// Unknown parent: fail open, treat the relative state as
				// heliocentric from here on.
				p.logger.Log("level", "warning", "err", err, "action", "fail open to heliocentric")
				orbit = NewOrbitFromState(st.R, st.V, Sun, dt)
				planetocentric = false
			} else {
				helioR = make([]float64, 3)
				helioV = make([]float64, 3)
				for i := 0; i < 3; i++ {
					helioR[i] = st.R[i] + pstate.R[i]
					helioV[i] = st.V[i] + pstate.V[i]
				}
			}
		}
		samples = append(samples, Sample{R: helioR, DT: dt})

		// Truncation: wandered too far, or hit an SOI boundary — this engine
		// does not continue propagation across a frame change mid-prediction.
		if norm(helioR) > p.cfg.MaxDistance {
			samples[len(samples)-1].Truncated = true
			return samples
		}
		if planetocentric {
			if st.RNorm() >= orbit.Origin.SOI*p.cfg.SOIExitMultiplier {
				samples[len(samples)-1].Truncated = true
				return samples
			}
		} else if _, _, found := p.soi.Containing(helioR, dt); found && s > 0 {
			// s > 0: a path starting right on a boundary (hysteresis keeps
			// the ship heliocentric for a while) should not truncate at once.
			samples[len(samples)-1].Truncated = true
			return samples
		}

		// Numerically unstable regime: give up on Keplerian math and
		// extrapolate in a straight line from the last stable state.
		if req.ExtremeRegime || orbit.e > p.cfg.ExtremeEccentricity {
			p.logger.Log("level", "debug", "linear fallback at", dt, "e", orbit.e)
			linear = true
			linR, linV = helioR, helioV
			dt = dt.Add(step)
			continue
		}

		next, err := ApplySailThrust(orbit, req.Sail, helioR, req.Mass, dt, step)
		if err != nil {
			p.logger.Log("level", "warning", "err", err, "action", "coasting this step")
		} else {
			orbit = next
		}
		dt = dt.Add(step)
	}
	return samples
}
