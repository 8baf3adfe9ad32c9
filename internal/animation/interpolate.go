package animation

import (
	"fmt"
	"math"
)

// Extrapolation controls how an interpolator behaves outside its input range.
type Extrapolation int

const (
	// Clamp holds the boundary output value.
	Clamp Extrapolation = iota
	// Extend continues the slope of the boundary segment.
	Extend
	// Identity returns the input unchanged.
	Identity
)

func (e Extrapolation) String() string {
	switch e {
	case Clamp:
		return "clamp"
	case Extend:
		return "extend"
	case Identity:
		return "identity"
	}
	return fmt.Sprintf("Extrapolation(%d)", int(e))
}

// ParseExtrapolation parses "clamp", "extend" or "identity". The empty
// string selects Extend, which is what an unconfigured interpolation does.
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch s {
	case "", "extend":
		return Extend, nil
	case "clamp":
		return Clamp, nil
	case "identity":
		return Identity, nil
	}
	return Extend, NewConfigError(ErrInvalidInterpolationRange, "extrapolate", "unknown policy %q", s)
}

// Keyframes is a validated piecewise-linear mapping from an input range to an
// output range. It is immutable after construction and safe for concurrent use.
type Keyframes struct {
	in     []float64
	out    []float64
	left   Extrapolation
	right  Extrapolation
	easing Easing
}

// KeyframeOption configures optional Keyframes behavior.
type KeyframeOption func(*Keyframes)

// WithExtrapolation sets the left and right extrapolation policies.
func WithExtrapolation(left, right Extrapolation) KeyframeOption {
	return func(k *Keyframes) {
		k.left = left
		k.right = right
	}
}

// WithEasing applies an easing curve to the position inside each segment.
func WithEasing(e Easing) KeyframeOption {
	return func(k *Keyframes) {
		k.easing = e
	}
}

// NewKeyframes validates the ranges and returns a reusable interpolator.
// Both extrapolation policies default to Extend.
func NewKeyframes(inputRange, outputRange []float64, opts ...KeyframeOption) (*Keyframes, error) {
	if len(inputRange) < 2 {
		return nil, NewConfigError(ErrInvalidInterpolationRange, "inputRange", "need at least 2 points, got %d", len(inputRange))
	}
	if len(inputRange) != len(outputRange) {
		return nil, NewConfigError(ErrInvalidInterpolationRange, "outputRange",
			"length %d does not match inputRange length %d", len(outputRange), len(inputRange))
	}
	for i, v := range inputRange {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, NewConfigError(ErrInvalidInterpolationRange, "inputRange", "value %d is not finite", i)
		}
		if i > 0 && v <= inputRange[i-1] {
			return nil, NewConfigError(ErrInvalidInterpolationRange, "inputRange",
				"must be strictly increasing, got %v after %v", v, inputRange[i-1])
		}
	}
	for i, v := range outputRange {
		if math.IsNaN(v) {
			return nil, NewConfigError(ErrInvalidInterpolationRange, "outputRange", "value %d is NaN", i)
		}
	}

	k := &Keyframes{
		in:    append([]float64(nil), inputRange...),
		out:   append([]float64(nil), outputRange...),
		left:  Extend,
		right: Extend,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Interpolate maps x through the keyframe table described by inputRange and
// outputRange. It validates on every call; hot paths should build Keyframes
// once and call At.
func Interpolate(x float64, inputRange, outputRange []float64, left, right Extrapolation) (float64, error) {
	k, err := NewKeyframes(inputRange, outputRange, WithExtrapolation(left, right))
	if err != nil {
		return 0, err
	}
	return k.At(x), nil
}

// At evaluates the mapping at x. It never fails.
func (k *Keyframes) At(x float64) float64 {
	last := len(k.in) - 1

	if x < k.in[0] {
		switch k.left {
		case Clamp:
			return k.out[0]
		case Identity:
			return x
		}
		return k.segment(0, x, false)
	}
	if x > k.in[last] {
		switch k.right {
		case Clamp:
			return k.out[last]
		case Identity:
			return x
		}
		return k.segment(last-1, x, false)
	}

	i := k.find(x)
	if x == k.in[i] {
		return k.out[i]
	}
	if x == k.in[i+1] {
		return k.out[i+1]
	}
	return k.segment(i, x, true)
}

// InputRange returns a copy of the input breakpoints.
func (k *Keyframes) InputRange() []float64 {
	return append([]float64(nil), k.in...)
}

// OutputRange returns a copy of the output values.
func (k *Keyframes) OutputRange() []float64 {
	return append([]float64(nil), k.out...)
}

// find returns the index i of the segment [in[i], in[i+1]] containing x,
// assuming in[0] <= x <= in[last].
func (k *Keyframes) find(x float64) int {
	lo, hi := 0, len(k.in)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if k.in[mid] <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (k *Keyframes) segment(i int, x float64, inside bool) float64 {
	t := (x - k.in[i]) / (k.in[i+1] - k.in[i])
	if inside && k.easing != nil {
		t = k.easing(t)
	}
	return k.out[i] + t*(k.out[i+1]-k.out[i])
}
