package animation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate_Midpoint(t *testing.T) {
	got, err := Interpolate(15, []float64{0, 30}, []float64{0, 100}, Clamp, Clamp)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got)
}

func TestInterpolate_Extrapolation(t *testing.T) {
	in := []float64{0, 30}
	out := []float64{0, 100}

	tests := []struct {
		name        string
		x           float64
		left, right Extrapolation
		want        float64
	}{
		{"clamp left", -5, Clamp, Clamp, 0},
		{"extend left", -5, Extend, Extend, -16.666666666666668},
		{"identity left", -5, Identity, Identity, -5},
		{"clamp right", 45, Clamp, Clamp, 100},
		{"extend right", 45, Extend, Extend, 150},
		{"identity right", 45, Extend, Identity, 45},
		{"mixed policies", -5, Clamp, Identity, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Interpolate(tt.x, in, out, tt.left, tt.right)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestKeyframes_BreakpointsExact(t *testing.T) {
	in := []float64{0, 0.1, 0.3, 7, 10.5}
	out := []float64{0.3, -2.7, 1e-9, 123.456, 0.1}

	for _, easing := range []string{"", "in-out-cubic", "out-back"} {
		e, ok := LookupEasing(easing)
		require.True(t, ok)
		k, err := NewKeyframes(in, out, WithExtrapolation(Clamp, Clamp), WithEasing(e))
		require.NoError(t, err)

		for i, x := range in {
			assert.Equal(t, out[i], k.At(x), "easing %q breakpoint %d", easing, i)
		}
	}
}

func TestKeyframes_MultiSegment(t *testing.T) {
	k, err := NewKeyframes([]float64{0, 10, 20, 40}, []float64{0, 1, 1, 0})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, k.At(5), 1e-12)
	assert.InDelta(t, 1.0, k.At(15), 1e-12)
	assert.InDelta(t, 0.5, k.At(30), 1e-12)
	// default extend continues the last slope
	assert.InDelta(t, -0.5, k.At(50), 1e-12)
	assert.InDelta(t, -0.5, k.At(-5), 1e-12)
}

func TestKeyframes_Easing(t *testing.T) {
	e, ok := LookupEasing("in-cubic")
	require.True(t, ok)
	k, err := NewKeyframes([]float64{0, 10}, []float64{0, 100}, WithEasing(e))
	require.NoError(t, err)

	assert.InDelta(t, 12.5, k.At(5), 1e-3)
	// easing only shapes the inside of segments
	assert.InDelta(t, 150, k.At(15), 1e-9)
}

func TestKeyframes_CopiesInput(t *testing.T) {
	in := []float64{0, 1}
	out := []float64{0, 10}
	k, err := NewKeyframes(in, out)
	require.NoError(t, err)

	in[1] = 100
	out[1] = -1
	assert.Equal(t, 5.0, k.At(0.5))
	assert.Equal(t, []float64{0, 1}, k.InputRange())
	assert.Equal(t, []float64{0, 10}, k.OutputRange())
}

func TestNewKeyframes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		in, out []float64
	}{
		{"single point", []float64{0}, []float64{1}},
		{"empty", nil, nil},
		{"length mismatch", []float64{0, 1, 2}, []float64{0, 1}},
		{"equal inputs", []float64{0, 1, 1}, []float64{0, 1, 2}},
		{"decreasing", []float64{0, 2, 1}, []float64{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKeyframes(tt.in, tt.out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInterpolationRange))

			_, err = Interpolate(0, tt.in, tt.out, Clamp, Clamp)
			assert.ErrorIs(t, err, ErrInvalidInterpolationRange)
		})
	}
}

func TestParseExtrapolation(t *testing.T) {
	for s, want := range map[string]Extrapolation{"": Extend, "extend": Extend, "clamp": Clamp, "identity": Identity} {
		got, err := ParseExtrapolation(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseExtrapolation("wrap")
	assert.ErrorIs(t, err, ErrInvalidInterpolationRange)
	assert.Equal(t, "clamp", Clamp.String())
}

func TestLookupEasing(t *testing.T) {
	e, ok := LookupEasing("in-out-cubic")
	require.True(t, ok)
	assert.InDelta(t, 0.0, e(0), 1e-6)
	assert.InDelta(t, 0.5, e(0.5), 1e-6)
	assert.InDelta(t, 1.0, e(1), 1e-6)

	none, ok := LookupEasing("")
	assert.True(t, ok)
	assert.Nil(t, none)

	_, ok = LookupEasing("wobble")
	assert.False(t, ok)

	names := EasingNames()
	assert.Contains(t, names, "linear")
	assert.IsIncreasing(t, names)
}
