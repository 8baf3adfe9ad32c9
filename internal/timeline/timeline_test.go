package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/framegen/internal/animation"
)

func nestedTree() Node {
	return Node{
		ID:       "root",
		Duration: 200,
		Children: []Node{
			{ID: "child", From: 30, Duration: 60, Children: []Node{
				{ID: "grandchild", From: 10, Duration: 20},
			}},
			{ID: "sibling", From: 40, Duration: 100},
		},
	}
}

func TestResolve_Nesting(t *testing.T) {
	tree, err := Build(nestedTree())
	require.NoError(t, err)

	states := tree.Resolve(50)
	child := states["child"]
	assert.Equal(t, 20, child.LocalFrame)
	assert.True(t, child.Visible)
	assert.True(t, child.Rendered)

	grand := states["grandchild"]
	assert.Equal(t, 10, grand.LocalFrame)
	assert.True(t, grand.Visible)
	assert.Equal(t, 2, grand.Depth)

	states = tree.Resolve(10)
	assert.Equal(t, -20, states["child"].LocalFrame)
	assert.False(t, states["child"].Visible)
	assert.False(t, states["grandchild"].Visible)
}

func TestResolve_WindowBounds(t *testing.T) {
	tree, err := Build(Node{ID: "root", Duration: 100, Children: []Node{{ID: "a", From: 10, Duration: 5}}})
	require.NoError(t, err)

	tests := []struct {
		frame   int
		local   int
		visible bool
	}{
		{9, -1, false},
		{10, 0, true},
		{14, 4, true},
		{15, 5, false},
	}
	for _, tt := range tests {
		s, ok := tree.Lookup("a", tt.frame)
		require.True(t, ok)
		assert.Equal(t, tt.local, s.LocalFrame, "frame %d", tt.frame)
		assert.Equal(t, tt.visible, s.Visible, "frame %d", tt.frame)
	}
}

func TestResolve_OverflowPolicies(t *testing.T) {
	tests := []struct {
		overflow      Overflow
		before, after State
	}{
		{Hide, State{LocalFrame: -10}, State{LocalFrame: 30}},
		{FreezeBefore, State{LocalFrame: 0, Visible: true}, State{LocalFrame: 30}},
		{FreezeAfter, State{LocalFrame: -10}, State{LocalFrame: 19, Visible: true}},
		{FreezeBoth, State{LocalFrame: 0, Visible: true}, State{LocalFrame: 19, Visible: true}},
	}

	for _, tt := range tests {
		t.Run(tt.overflow.String(), func(t *testing.T) {
			tree, err := Build(Node{ID: "root", Duration: 100, Children: []Node{
				{ID: "n", From: 20, Duration: 20, Overflow: tt.overflow},
			}})
			require.NoError(t, err)

			before, _ := tree.Lookup("n", 10)
			assert.Equal(t, tt.before.LocalFrame, before.LocalFrame)
			assert.Equal(t, tt.before.Visible, before.Visible)

			after, _ := tree.Lookup("n", 50)
			assert.Equal(t, tt.after.LocalFrame, after.LocalFrame)
			assert.Equal(t, tt.after.Visible, after.Visible)
		})
	}
}

func TestResolve_RenderedFollowsAncestors(t *testing.T) {
	tree, err := Build(Node{ID: "root", Duration: 100, Children: []Node{
		{ID: "scene", From: 0, Duration: 30, Children: []Node{
			{ID: "title", From: 20, Duration: 40, Overflow: FreezeBoth},
		}},
	}})
	require.NoError(t, err)

	// title freezes but its scene is gone
	s, _ := tree.Lookup("title", 50)
	assert.True(t, s.Visible)
	assert.False(t, s.Rendered)

	states := tree.Resolve(50)
	assert.Equal(t, s, states["title"])

	s, _ = tree.Lookup("title", 25)
	assert.True(t, s.Rendered)
}

func TestResolve_PaintOrder(t *testing.T) {
	tree, err := Build(nestedTree())
	require.NoError(t, err)

	assert.Equal(t, []string{"root", "child", "grandchild", "sibling"}, tree.IDs())
	states := tree.ResolveInto(60, nil)
	require.Len(t, states, 4)
	for i, s := range states {
		assert.Equal(t, i, s.Layer)
	}
	assert.Greater(t, states[3].Layer, states[1].Layer, "later sibling paints above earlier sibling")
}

func TestResolveInto_ReusesBuffer(t *testing.T) {
	tree, err := Build(nestedTree())
	require.NoError(t, err)

	buf := make([]State, 0, tree.Len())
	for frame := 0; frame < tree.Duration(); frame++ {
		out := tree.ResolveInto(frame, buf)
		require.Len(t, out, tree.Len())
		assert.Equal(t, tree.Resolve(frame)["sibling"], out[3])
		buf = out
	}
	assert.Equal(t, 200, tree.Duration())
}

func TestResolve_Deterministic(t *testing.T) {
	tree, err := Build(nestedTree())
	require.NoError(t, err)

	frames := []int{199, 3, 57, 57, 0, 120}
	first := make([]map[string]State, len(frames))
	for i, f := range frames {
		first[i] = tree.Resolve(f)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		assert.Equal(t, first[i], tree.Resolve(frames[i]))
	}
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name string
		root Node
	}{
		{"zero duration", Node{ID: "root", Duration: 0}},
		{"negative child duration", Node{ID: "root", Duration: 10, Children: []Node{{ID: "c", Duration: -1}}}},
		{"negative from", Node{ID: "root", Duration: 10, Children: []Node{{ID: "c", From: -5, Duration: 3}}}},
		{"duplicate id", Node{ID: "root", Duration: 10, Children: []Node{{ID: "root", Duration: 3}}}},
		{"empty id", Node{Duration: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.root)
			assert.ErrorIs(t, err, animation.ErrInvalidSequenceWindow)
		})
	}
}

func TestBuild_AllowNegativeFrom(t *testing.T) {
	tree, err := Build(Node{ID: "root", Duration: 10, Children: []Node{
		{ID: "pre", From: -5, Duration: 10, AllowNegativeFrom: true},
	}})
	require.NoError(t, err)

	s, _ := tree.Lookup("pre", 0)
	assert.Equal(t, 5, s.LocalFrame)
	off, ok := tree.Offset("pre")
	assert.True(t, ok)
	assert.Equal(t, -5, off)
}

func TestParseOverflow(t *testing.T) {
	for _, o := range []Overflow{Hide, FreezeBefore, FreezeAfter, FreezeBoth} {
		got, err := ParseOverflow(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	_, err := ParseOverflow("loop")
	assert.ErrorIs(t, err, animation.ErrInvalidSequenceWindow)
}
