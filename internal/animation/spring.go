package animation

import (
	"math"
	"sync"
)

// SettleEpsilon bounds both displacement from the target and velocity (in
// normalized units per second) once a spring is considered settled.
const SettleEpsilon = 1e-3

const (
	criticalTolerance = 1e-9
	bisectIterations  = 60
)

// SpringConfig describes a damped harmonic oscillator pulled from 0 towards 1.
type SpringConfig struct {
	Mass      float64 `yaml:"mass" json:"mass"`
	Stiffness float64 `yaml:"stiffness" json:"stiffness"`
	Damping   float64 `yaml:"damping" json:"damping"`
}

// DefaultSpringConfig matches the spring used when a composition only
// overrides some of the parameters.
var DefaultSpringConfig = SpringConfig{Mass: 1, Stiffness: 100, Damping: 10}

// Validate rejects non-physical parameters.
func (c SpringConfig) Validate() error {
	switch {
	case !finite(c.Mass) || c.Mass <= 0:
		return NewConfigError(ErrInvalidSpringConfig, "mass", "must be > 0, got %v", c.Mass)
	case !finite(c.Stiffness) || c.Stiffness <= 0:
		return NewConfigError(ErrInvalidSpringConfig, "stiffness", "must be > 0, got %v", c.Stiffness)
	case !finite(c.Damping) || c.Damping < 0:
		return NewConfigError(ErrInvalidSpringConfig, "damping", "must be >= 0, got %v", c.Damping)
	}
	return nil
}

// DampingRatio returns ζ = damping / (2·√(stiffness·mass)).
func (c SpringConfig) DampingRatio() float64 {
	return c.Damping / (2 * math.Sqrt(c.Stiffness*c.Mass))
}

// NaturalFrequency returns ω₀ = √(stiffness/mass) in radians per second.
func (c SpringConfig) NaturalFrequency() float64 {
	return math.Sqrt(c.Stiffness / c.Mass)
}

// Position returns the closed-form displacement x(t) at t seconds after
// release. x(0) = 0 and x(∞) = 1 for any damped spring.
func (c SpringConfig) Position(t float64) float64 {
	if t <= 0 {
		return 0
	}
	zeta := c.DampingRatio()
	w0 := c.NaturalFrequency()

	switch {
	case math.Abs(zeta-1) < criticalTolerance:
		return 1 - math.Exp(-w0*t)*(1+w0*t)
	case zeta < 1:
		a := zeta * w0
		wd := w0 * math.Sqrt(1-zeta*zeta)
		return 1 - math.Exp(-a*t)*(math.Cos(wd*t)+(a/wd)*math.Sin(wd*t))
	default:
		r1, r2 := overdampedRoots(zeta, w0)
		return 1 - (r2*math.Exp(r1*t)-r1*math.Exp(r2*t))/(r2-r1)
	}
}

// Velocity returns dx/dt at t seconds after release.
func (c SpringConfig) Velocity(t float64) float64 {
	if t <= 0 {
		return 0
	}
	zeta := c.DampingRatio()
	w0 := c.NaturalFrequency()

	switch {
	case math.Abs(zeta-1) < criticalTolerance:
		return w0 * w0 * t * math.Exp(-w0*t)
	case zeta < 1:
		a := zeta * w0
		wd := w0 * math.Sqrt(1-zeta*zeta)
		return math.Exp(-a*t) * (w0 * w0 / wd) * math.Sin(wd*t)
	default:
		r1, r2 := overdampedRoots(zeta, w0)
		return r1 * r2 * (math.Exp(r2*t) - math.Exp(r1*t)) / (r2 - r1)
	}
}

// overdampedRoots returns the characteristic roots r1 > r2 (both negative).
// r1 is derived from r1·r2 = ω₀² to avoid cancellation for large ζ.
func overdampedRoots(zeta, w0 float64) (r1, r2 float64) {
	r2 = -w0 * (zeta + math.Sqrt(zeta*zeta-1))
	r1 = w0 * w0 / r2
	return r1, r2
}

// SpringRequest is one evaluation of a spring at a (possibly fractional) frame.
type SpringRequest struct {
	Frame  float64
	FPS    float64
	Config SpringConfig
	// DelayFrames holds the spring at rest until Frame reaches it.
	DelayFrames float64
	// DurationFrames, when > 0, rescales time so the spring settles after
	// exactly this many frames while keeping its shape.
	DurationFrames float64
	// ClampOvershoot caps the output at 1.
	ClampOvershoot bool
}

// Validate checks the request once, before any per-frame evaluation.
func (r SpringRequest) Validate() error {
	if err := r.Config.Validate(); err != nil {
		return err
	}
	switch {
	case !finite(r.FPS) || r.FPS <= 0:
		return NewConfigError(ErrInvalidSpringConfig, "fps", "must be > 0, got %v", r.FPS)
	case !finite(r.DelayFrames) || r.DelayFrames < 0:
		return NewConfigError(ErrInvalidSpringConfig, "delay", "must be >= 0, got %v", r.DelayFrames)
	case !finite(r.DurationFrames) || r.DurationFrames < 0:
		return NewConfigError(ErrInvalidSpringConfig, "durationFrames", "must be > 0 when set, got %v", r.DurationFrames)
	case r.DurationFrames > 0 && r.Config.Damping == 0:
		return NewConfigError(ErrInvalidSpringConfig, "durationFrames", "an undamped spring never settles and cannot be fit to a duration")
	}
	return nil
}

// EvaluateSpring returns the normalized spring progress for the request.
// Underdamped springs overshoot 1 transiently. The request is assumed to be
// valid; invalid timing yields 0 rather than an error.
func EvaluateSpring(r SpringRequest) float64 {
	if r.FPS <= 0 || r.Frame < r.DelayFrames {
		return 0
	}
	t := (r.Frame - r.DelayFrames) / r.FPS
	if r.DurationFrames > 0 {
		settle := SettleTime(r.Config)
		if settle > 0 && !math.IsInf(settle, 1) {
			t *= settle / (r.DurationFrames / r.FPS)
		}
	}
	x := r.Config.Position(t)
	if r.ClampOvershoot && x > 1 {
		return 1
	}
	return x
}

var settleCache sync.Map // SpringConfig -> float64

// SettleTime returns the time in seconds after which the spring stays within
// SettleEpsilon of its target with velocity below SettleEpsilon. Undamped
// springs return +Inf. Results are memoized per config; recomputation always
// yields the same value.
func SettleTime(c SpringConfig) float64 {
	if v, ok := settleCache.Load(c); ok {
		return v.(float64)
	}
	t := computeSettleTime(c)
	settleCache.Store(c, t)
	return t
}

func computeSettleTime(c SpringConfig) float64 {
	if c.Validate() != nil || c.Damping == 0 {
		return math.Inf(1)
	}
	zeta := c.DampingRatio()
	w0 := c.NaturalFrequency()

	unsettled := func(t float64) bool {
		return math.Abs(c.Position(t)-1) >= SettleEpsilon || math.Abs(c.Velocity(t)) >= SettleEpsilon
	}

	if zeta < 1-criticalTolerance {
		return underdampedSettle(c, zeta, w0)
	}

	// For ζ >= 1, 1-x decreases everywhere and the velocity is unimodal with a
	// single peak at tp, so the predicate is monotone on [lo, ∞).
	var tp float64
	if math.Abs(zeta-1) < criticalTolerance {
		tp = 1 / w0
	} else {
		r1, r2 := overdampedRoots(zeta, w0)
		tp = math.Log(r1/r2) / (r2 - r1)
	}
	lo := 0.0
	if c.Velocity(tp) >= SettleEpsilon {
		lo = tp
	}
	hi := math.Max(lo, 1/w0)
	for i := 0; unsettled(hi) && i < 64; i++ {
		hi *= 2
	}
	return bisect(lo, hi, unsettled)
}

// underdampedSettle finds the last threshold crossing of each criterion.
// |x-1| peaks at e^{-at} when t = kπ/ω_d and |v| peaks at ω₀·e^{-at} when
// ω_d·t = atan(ω_d/a) + kπ; each criterion decreases monotonically from its
// last peak above SettleEpsilon to the following zero, which brackets the
// bisection.
func underdampedSettle(c SpringConfig, zeta, w0 float64) float64 {
	a := zeta * w0
	wd := w0 * math.Sqrt(1-zeta*zeta)
	phi := math.Atan(wd / a)

	displaced := func(t float64) bool { return math.Abs(c.Position(t)-1) >= SettleEpsilon }
	moving := func(t float64) bool { return math.Abs(c.Velocity(t)) >= SettleEpsilon }

	kx := math.Floor(math.Log(1/SettleEpsilon) * wd / (a * math.Pi))
	tx := kx * math.Pi / wd
	settle := bisect(tx, tx+(math.Pi-phi)/wd, displaced)

	kv := math.Floor((wd*math.Log(w0/SettleEpsilon)/a - phi) / math.Pi)
	if kv >= 0 {
		tv := (phi + kv*math.Pi) / wd
		settle = math.Max(settle, bisect(tv, (kv+1)*math.Pi/wd, moving))
	}
	return settle
}

// bisect narrows [lo, hi] where unsettled(lo) and !unsettled(hi).
func bisect(lo, hi float64, unsettled func(float64) bool) float64 {
	for i := 0; i < bisectIterations; i++ {
		mid := (lo + hi) / 2
		if unsettled(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
