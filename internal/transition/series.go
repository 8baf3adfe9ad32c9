package transition

import (
	"github.com/ivlev/framegen/internal/animation"
	"github.com/ivlev/framegen/internal/timeline"
)

// Scene is one entry of a Series.
type Scene struct {
	ID       string
	Duration int
	Overflow timeline.Overflow
}

// Link describes the transition between two consecutive scenes.
type Link struct {
	Duration     int
	Timing       Timing
	Presentation Presentation
}

// Series lays scenes out back to back. A linked pair overlaps by the link's
// duration, so the incoming scene starts that many frames before the
// outgoing one ends.
type Series struct {
	scenes []Scene
	starts []int
	specs  []*Spec
	end    int
}

// NewSeries validates the scenes and links. links[i] joins scenes[i] and
// scenes[i+1]; a nil link is a hard cut.
func NewSeries(fps float64, scenes []Scene, links []*Link) (*Series, error) {
	if len(scenes) == 0 {
		return nil, animation.NewConfigError(animation.ErrInvalidSequenceWindow, "scenes", "series needs at least one scene")
	}
	if len(links) > len(scenes)-1 {
		return nil, animation.NewConfigError(animation.ErrInvalidSequenceWindow, "transitions",
			"%d transitions for %d scenes", len(links), len(scenes))
	}

	s := &Series{
		scenes: append([]Scene(nil), scenes...),
		starts: make([]int, len(scenes)),
		specs:  make([]*Spec, len(scenes)-1),
	}
	for i, sc := range scenes {
		if sc.Duration <= 0 {
			return nil, animation.NewConfigError(animation.ErrInvalidSequenceWindow, sc.ID, "durationFrames must be > 0, got %d", sc.Duration)
		}
		if i == 0 {
			continue
		}
		s.starts[i] = s.starts[i-1] + scenes[i-1].Duration

		if i-1 >= len(links) || links[i-1] == nil {
			continue
		}
		l := links[i-1]
		spec := &Spec{
			Outgoing:     Window{ID: scenes[i-1].ID, Duration: scenes[i-1].Duration},
			Incoming:     Window{ID: sc.ID, Duration: sc.Duration},
			Duration:     l.Duration,
			FPS:          fps,
			Timing:       l.Timing,
			Presentation: l.Presentation,
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		// A scene can be incoming and outgoing, but not both at once.
		if i >= 2 && s.specs[i-2] != nil && s.specs[i-2].Duration+l.Duration > scenes[i-1].Duration {
			return nil, animation.NewConfigError(animation.ErrInvalidSequenceWindow, scenes[i-1].ID,
				"transitions of %d and %d frames overlap inside a %d frame scene",
				s.specs[i-2].Duration, l.Duration, scenes[i-1].Duration)
		}
		s.specs[i-1] = spec
		s.starts[i] -= l.Duration
	}
	last := len(scenes) - 1
	s.end = s.starts[last] + scenes[last].Duration
	return s, nil
}

// Len returns the number of scenes.
func (s *Series) Len() int { return len(s.scenes) }

// Duration is the sum of scene durations minus the sum of transition durations.
func (s *Series) Duration() int { return s.end }

// Start returns the global start frame of scene i.
func (s *Series) Start(i int) int { return s.starts[i] }

// Transition returns the spec joining scene i and i+1, or nil for a cut.
func (s *Series) Transition(i int) *Spec {
	if i < 0 || i >= len(s.specs) {
		return nil
	}
	return s.specs[i]
}

// Nodes returns one timeline node per scene, positioned at its start frame,
// for nesting under a parent sequence.
func (s *Series) Nodes() []timeline.Node {
	nodes := make([]timeline.Node, len(s.scenes))
	for i, sc := range s.scenes {
		nodes[i] = timeline.Node{ID: sc.ID, From: s.starts[i], Duration: sc.Duration, Overflow: sc.Overflow}
	}
	return nodes
}

// DeltasInto writes the delta of every scene at frame into dst[:0]. Scenes
// outside any transition get Identity. frame is relative to the series start.
func (s *Series) DeltasInto(frame int, dst []Delta) []Delta {
	dst = dst[:0]
	for range s.scenes {
		dst = append(dst, Identity)
	}
	for i, spec := range s.specs {
		if spec == nil {
			continue
		}
		r, ok := Evaluate(*spec, frame-s.starts[i])
		if !ok {
			continue
		}
		dst[i] = r.Outgoing
		dst[i+1] = r.Incoming
	}
	return dst
}

// Active returns the index and result of every transition running at frame.
func (s *Series) Active(frame int) []ActiveTransition {
	var active []ActiveTransition
	for i, spec := range s.specs {
		if spec == nil {
			continue
		}
		if r, ok := Evaluate(*spec, frame-s.starts[i]); ok {
			active = append(active, ActiveTransition{Index: i, Result: r})
		}
	}
	return active
}

// ActiveTransition pairs a running transition with its link index.
type ActiveTransition struct {
	Index int
	Result
}
