package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/framegen/internal/animation"
	"github.com/ivlev/framegen/internal/timeline"
)

func threeScenes() []Scene {
	return []Scene{{ID: "intro", Duration: 45}, {ID: "body", Duration: 45}, {ID: "outro", Duration: 45}}
}

func TestSeries_Layout(t *testing.T) {
	s, err := NewSeries(30, threeScenes(), []*Link{
		{Duration: 15, Timing: LinearTiming(), Presentation: Presentation{Kind: Fade}},
		{Duration: 10, Timing: LinearTiming(), Presentation: Presentation{Kind: Wipe, Direction: FromLeft}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 0, s.Start(0))
	assert.Equal(t, 30, s.Start(1))
	assert.Equal(t, 65, s.Start(2))
	assert.Equal(t, 45*3-15-10, s.Duration())

	tree, err := timeline.Build(timeline.Node{ID: "series", Duration: s.Duration(), Children: s.Nodes()})
	require.NoError(t, err)
	assert.Equal(t, s.Duration(), tree.Duration())
}

func TestSeries_Cut(t *testing.T) {
	s, err := NewSeries(30, threeScenes(), []*Link{nil, {Duration: 5, Timing: LinearTiming()}})
	require.NoError(t, err)
	assert.Equal(t, 45, s.Start(1))
	assert.Nil(t, s.Transition(0))
	assert.NotNil(t, s.Transition(1))
	assert.Nil(t, s.Transition(7))
	assert.Equal(t, 130, s.Duration())
}

func TestSeries_Deltas(t *testing.T) {
	s, err := NewSeries(30, threeScenes(), []*Link{
		{Duration: 15, Timing: LinearTiming(), Presentation: Presentation{Kind: Fade}},
	})
	require.NoError(t, err)

	deltas := s.DeltasInto(37, nil)
	require.Len(t, deltas, 3)
	assert.InDelta(t, 0.5333333, deltas[0].Opacity, 1e-6)
	assert.InDelta(t, 0.4666667, deltas[1].Opacity, 1e-6)
	assert.Equal(t, Identity, deltas[2])

	active := s.Active(37)
	require.Len(t, active, 1)
	assert.Equal(t, 0, active[0].Index)
	assert.Equal(t, 7, active[0].Frame)

	assert.Empty(t, s.Active(10))
	assert.Equal(t, []Delta{Identity, Identity, Identity}, s.DeltasInto(10, deltas))
}

func TestNewSeries_Invalid(t *testing.T) {
	fade := &Link{Duration: 15, Timing: LinearTiming()}

	tests := []struct {
		name   string
		scenes []Scene
		links  []*Link
		kind   error
	}{
		{"no scenes", nil, nil, animation.ErrInvalidSequenceWindow},
		{"too many links", threeScenes()[:1], []*Link{fade}, animation.ErrInvalidSequenceWindow},
		{"zero scene", []Scene{{ID: "a", Duration: 0}}, nil, animation.ErrInvalidSequenceWindow},
		{"transition longer than scene", []Scene{{ID: "a", Duration: 10}, {ID: "b", Duration: 45}}, []*Link{fade}, animation.ErrInvalidSequenceWindow},
		{"overlapping transitions", []Scene{{ID: "a", Duration: 45}, {ID: "b", Duration: 20}, {ID: "c", Duration: 45}},
			[]*Link{fade, {Duration: 10, Timing: LinearTiming()}}, animation.ErrInvalidSequenceWindow},
		{"bad direction", threeScenes(), []*Link{{Duration: 5, Presentation: Presentation{Kind: Slide}}}, animation.ErrInvalidTransitionDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSeries(30, tt.scenes, tt.links)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
