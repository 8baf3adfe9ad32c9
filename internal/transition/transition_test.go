package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/framegen/internal/animation"
)

func fadeSpec() Spec {
	return Spec{
		Outgoing:     Window{ID: "a", Duration: 45},
		Incoming:     Window{ID: "b", Duration: 45},
		Duration:     15,
		FPS:          30,
		Timing:       LinearTiming(),
		Presentation: Presentation{Kind: Fade},
	}
}

func TestEvaluate_LinearFade(t *testing.T) {
	s := fadeSpec()
	require.NoError(t, s.Validate())
	assert.Equal(t, 75, s.CombinedDuration())

	r, ok := Evaluate(s, 37)
	require.True(t, ok)
	assert.Equal(t, 7, r.Frame)
	assert.InDelta(t, 7.0/15.0, r.Progress, 1e-12)
	assert.InDelta(t, 0.5333333, r.Outgoing.Opacity, 1e-6)
	assert.InDelta(t, 0.4666667, r.Incoming.Opacity, 1e-6)
}

func TestEvaluate_OutsideWindow(t *testing.T) {
	s := fadeSpec()
	for _, f := range []int{0, 29, 45, 74} {
		r, ok := Evaluate(s, f)
		assert.False(t, ok, "frame %d", f)
		assert.Equal(t, Identity, r.Outgoing)
		assert.Equal(t, Identity, r.Incoming)
	}
	_, ok := Evaluate(s, 30)
	assert.True(t, ok)
	_, ok = Evaluate(s, 44)
	assert.True(t, ok)
}

func TestPresent_Endpoints(t *testing.T) {
	presentations := []Presentation{{Kind: Fade}}
	for _, d := range []Direction{FromLeft, FromRight, FromTop, FromBottom} {
		presentations = append(presentations, Presentation{Kind: Slide, Direction: d}, Presentation{Kind: Wipe, Direction: d})
	}

	for _, pr := range presentations {
		t.Run(pr.Kind.String()+"/"+string(pr.Direction), func(t *testing.T) {
			out, in := Present(pr, 0)
			assert.Equal(t, Identity, out, "outgoing untouched at p=0")
			assert.True(t, hidden(in), "incoming hidden at p=0: %+v", in)

			out, in = Present(pr, 1)
			assert.Equal(t, Identity, in, "incoming untouched at p=1")
			if pr.Kind != Wipe {
				assert.True(t, hidden(out), "outgoing gone at p=1: %+v", out)
			}
		})
	}
}

// hidden reports whether a delta makes its sequence invisible in the frame.
func hidden(d Delta) bool {
	if d.Opacity == 0 {
		return true
	}
	if d.OffsetX <= -1 || d.OffsetX >= 1 || d.OffsetY <= -1 || d.OffsetY >= 1 {
		return true
	}
	return d.Clip.Left+d.Clip.Right >= 1 || d.Clip.Top+d.Clip.Bottom >= 1
}

func TestPresent_SlideDirections(t *testing.T) {
	out, in := Present(Presentation{Kind: Slide, Direction: FromLeft}, 0.25)
	assert.InDelta(t, -0.75, in.OffsetX, 1e-12)
	assert.InDelta(t, 0.25, out.OffsetX, 1e-12)
	assert.Zero(t, in.OffsetY)

	out, in = Present(Presentation{Kind: Slide, Direction: FromBottom}, 0.25)
	assert.InDelta(t, 0.75, in.OffsetY, 1e-12)
	assert.InDelta(t, -0.25, out.OffsetY, 1e-12)
	assert.Zero(t, in.OffsetX)
}

func TestPresent_Wipe(t *testing.T) {
	_, in := Present(Presentation{Kind: Wipe, Direction: FromLeft}, 0.3)
	assert.Equal(t, Inset{Right: 0.7}, in.Clip)
	assert.Equal(t, 1.0, in.Opacity)

	_, in = Present(Presentation{Kind: Wipe, Direction: FromTop}, 0.5)
	assert.Equal(t, Inset{Bottom: 0.5}, in.Clip)
}

func TestEvaluate_SpringOvershoot(t *testing.T) {
	bouncy := animation.SpringConfig{Mass: 1, Stiffness: 100, Damping: 5}

	slide := fadeSpec()
	slide.Duration = 30
	slide.Timing = SpringTiming(bouncy)
	slide.Presentation = Presentation{Kind: Slide, Direction: FromRight}
	require.NoError(t, slide.Validate())

	fade := slide
	fade.Presentation = Presentation{Kind: Fade}

	var maxProgress float64
	for f := slide.WindowStart(); f < slide.Outgoing.Duration; f++ {
		r, ok := Evaluate(slide, f)
		require.True(t, ok)
		if r.Progress > maxProgress {
			maxProgress = r.Progress
			// overshoot pushes the incoming scene past its resting place
			if r.Progress > 1 {
				assert.Less(t, r.Incoming.OffsetX, 0.0)
			}
		}

		fr, _ := Evaluate(fade, f)
		assert.GreaterOrEqual(t, fr.Incoming.Opacity, 0.0)
		assert.LessOrEqual(t, fr.Incoming.Opacity, 1.0)
		assert.GreaterOrEqual(t, fr.Outgoing.Opacity, 0.0)
	}
	assert.Greater(t, maxProgress, 1.0)
}

func TestEvaluate_Eased(t *testing.T) {
	s := fadeSpec()
	s.Timing = EasedTiming("in-cubic")
	require.NoError(t, s.Validate())

	r, ok := Evaluate(s, 30)
	require.True(t, ok)
	assert.InDelta(t, 0, r.Progress, 1e-6)

	linear, _ := Evaluate(fadeSpec(), 37)
	eased, _ := Evaluate(s, 37)
	assert.Less(t, eased.Progress, linear.Progress)
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		kind   error
	}{
		{"zero duration", func(s *Spec) { s.Duration = 0 }, animation.ErrInvalidSequenceWindow},
		{"longer than outgoing", func(s *Spec) { s.Outgoing.Duration = 10 }, animation.ErrInvalidSequenceWindow},
		{"longer than incoming", func(s *Spec) { s.Incoming.Duration = 14 }, animation.ErrInvalidSequenceWindow},
		{"slide without direction", func(s *Spec) { s.Presentation = Presentation{Kind: Slide} }, animation.ErrInvalidTransitionDirection},
		{"wipe bad direction", func(s *Spec) { s.Presentation = Presentation{Kind: Wipe, Direction: "diagonal"} }, animation.ErrInvalidTransitionDirection},
		{"unknown easing", func(s *Spec) { s.Timing = EasedTiming("wobble") }, animation.ErrInvalidInterpolationRange},
		{"undamped spring", func(s *Spec) {
			s.Timing = SpringTiming(animation.SpringConfig{Mass: 1, Stiffness: 100})
		}, animation.ErrInvalidSpringConfig},
		{"spring without fps", func(s *Spec) {
			s.Timing = SpringTiming(animation.DefaultSpringConfig)
			s.FPS = 0
		}, animation.ErrInvalidSpringConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fadeSpec()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), tt.kind)
		})
	}

	s := fadeSpec()
	s.Duration = 45
	assert.NoError(t, s.Validate(), "transition may span a whole scene")

	s.Timing = EasedTiming("wobble")
	assert.ErrorContains(t, s.Validate(), "want one of in-back, in-cubic")
}

func TestParsers(t *testing.T) {
	d, err := ParseDirection("from-top")
	require.NoError(t, err)
	assert.Equal(t, FromTop, d)
	_, err = ParseDirection("up")
	assert.ErrorIs(t, err, animation.ErrInvalidTransitionDirection)

	k, err := ParsePresentationKind("wipe")
	require.NoError(t, err)
	assert.Equal(t, Wipe, k)
	_, err = ParsePresentationKind("dissolve")
	assert.Error(t, err)
}
