// Package transition blends two time-adjacent sequences over an overlap
// window. Timing curves produce a progress value; presentations turn that
// progress into paired visual deltas.
package transition

import (
	"fmt"
	"strings"

	"github.com/ivlev/framegen/internal/animation"
)

// TimingKind selects how progress advances over the transition window.
type TimingKind int

const (
	// Linear advances progress uniformly from 0 to 1.
	Linear TimingKind = iota
	// Spring fits a spring curve to the window; it may overshoot.
	Spring
	// Eased maps linear progress through a named easing.
	Eased
)

func (k TimingKind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Spring:
		return "spring"
	case Eased:
		return "eased"
	}
	return fmt.Sprintf("TimingKind(%d)", int(k))
}

// Timing is a tagged variant: Spring is read only for Kind == Spring and
// Easing only for Kind == Eased.
type Timing struct {
	Kind   TimingKind
	Spring animation.SpringConfig
	Easing string
}

// LinearTiming returns uniform progress.
func LinearTiming() Timing { return Timing{Kind: Linear} }

// SpringTiming returns progress driven by cfg, stretched to the window.
func SpringTiming(cfg animation.SpringConfig) Timing { return Timing{Kind: Spring, Spring: cfg} }

// EasedTiming returns linear progress mapped through the named easing.
func EasedTiming(name string) Timing { return Timing{Kind: Eased, Easing: name} }

// Direction is the side the incoming sequence enters from.
type Direction string

const (
	FromLeft   Direction = "from-left"
	FromRight  Direction = "from-right"
	FromTop    Direction = "from-top"
	FromBottom Direction = "from-bottom"
)

// ParseDirection validates a direction tag.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case FromLeft, FromRight, FromTop, FromBottom:
		return d, nil
	}
	return "", animation.NewConfigError(animation.ErrInvalidTransitionDirection, "direction", "unknown direction %q", s)
}

// PresentationKind selects the visual blending strategy.
type PresentationKind int

const (
	Fade PresentationKind = iota
	Slide
	Wipe
)

func (k PresentationKind) String() string {
	switch k {
	case Fade:
		return "fade"
	case Slide:
		return "slide"
	case Wipe:
		return "wipe"
	}
	return fmt.Sprintf("PresentationKind(%d)", int(k))
}

// ParsePresentationKind parses "fade", "slide" or "wipe". The empty string is Fade.
func ParsePresentationKind(s string) (PresentationKind, error) {
	switch s {
	case "", "fade":
		return Fade, nil
	case "slide":
		return Slide, nil
	case "wipe":
		return Wipe, nil
	}
	return Fade, animation.NewConfigError(animation.ErrInvalidTransitionDirection, "type", "unknown presentation %q", s)
}

// Presentation is a tagged variant; Direction is ignored for Fade.
type Presentation struct {
	Kind      PresentationKind
	Direction Direction
}

// Inset is a clip rectangle expressed as the fraction cut from each edge.
type Inset struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Delta is the visual change applied to one sequence. Offsets are in frame
// units: OffsetX = 1 moves the sequence one full frame width to the right.
type Delta struct {
	Opacity float64 `json:"opacity"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Clip    Inset   `json:"clip"`
}

// Identity leaves a sequence unmodified.
var Identity = Delta{Opacity: 1}

// Window identifies one side of a transition.
type Window struct {
	ID       string
	Duration int
}

// Spec binds a transition to its outgoing and incoming sequences.
type Spec struct {
	Outgoing     Window
	Incoming     Window
	Duration     int
	FPS          float64
	Timing       Timing
	Presentation Presentation
}

// Validate checks the spec once, before per-frame evaluation.
func (s Spec) Validate() error {
	switch {
	case s.Outgoing.Duration <= 0:
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, "outgoing", "duration must be > 0, got %d", s.Outgoing.Duration)
	case s.Incoming.Duration <= 0:
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, "incoming", "duration must be > 0, got %d", s.Incoming.Duration)
	case s.Duration <= 0:
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, "durationFrames", "must be > 0, got %d", s.Duration)
	case s.Duration > s.Outgoing.Duration:
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, "durationFrames",
			"%d exceeds outgoing %q duration %d", s.Duration, s.Outgoing.ID, s.Outgoing.Duration)
	case s.Duration > s.Incoming.Duration:
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, "durationFrames",
			"%d exceeds incoming %q duration %d", s.Duration, s.Incoming.ID, s.Incoming.Duration)
	}

	switch s.Presentation.Kind {
	case Fade:
	case Slide, Wipe:
		if _, err := ParseDirection(string(s.Presentation.Direction)); err != nil {
			return err
		}
	default:
		return animation.NewConfigError(animation.ErrInvalidTransitionDirection, "presentation", "unknown presentation %v", s.Presentation.Kind)
	}

	switch s.Timing.Kind {
	case Linear:
	case Spring:
		req := animation.SpringRequest{FPS: s.FPS, Config: s.Timing.Spring, DurationFrames: float64(s.Duration)}
		if err := req.Validate(); err != nil {
			return err
		}
	case Eased:
		if _, ok := animation.LookupEasing(s.Timing.Easing); !ok || s.Timing.Easing == "" {
			return animation.NewConfigError(animation.ErrInvalidInterpolationRange, "easing", "unknown easing %q, want one of %s",
				s.Timing.Easing, strings.Join(animation.EasingNames(), ", "))
		}
	default:
		return animation.NewConfigError(animation.ErrInvalidSequenceWindow, "timing", "unknown timing %v", s.Timing.Kind)
	}
	return nil
}

// CombinedDuration is the span covered by both sequences together.
func (s Spec) CombinedDuration() int {
	return s.Outgoing.Duration + s.Incoming.Duration - s.Duration
}

// WindowStart is the combined local frame at which the transition begins.
func (s Spec) WindowStart() int {
	return s.Outgoing.Duration - s.Duration
}

// Result is the state of a transition at one frame.
type Result struct {
	// Frame is the frame inside the transition window.
	Frame    int
	Progress float64
	Outgoing Delta
	Incoming Delta
}

// Evaluate returns the blended deltas at combinedLocalFrame, counted from the
// start of the outgoing sequence. The second result is false outside the
// transition window, where both sequences render unmodified.
func Evaluate(s Spec, combinedLocalFrame int) (Result, bool) {
	w := combinedLocalFrame - s.WindowStart()
	if w < 0 || w >= s.Duration {
		return Result{Outgoing: Identity, Incoming: Identity}, false
	}
	p := s.progress(w)
	out, in := Present(s.Presentation, p)
	return Result{Frame: w, Progress: p, Outgoing: out, Incoming: in}, true
}

func (s Spec) progress(w int) float64 {
	switch s.Timing.Kind {
	case Spring:
		return animation.EvaluateSpring(animation.SpringRequest{
			Frame:          float64(w),
			FPS:            s.FPS,
			Config:         s.Timing.Spring,
			DurationFrames: float64(s.Duration),
		})
	case Eased:
		p := float64(w) / float64(s.Duration)
		if e, ok := animation.LookupEasing(s.Timing.Easing); ok && e != nil {
			return e(p)
		}
		return p
	}
	return float64(w) / float64(s.Duration)
}
