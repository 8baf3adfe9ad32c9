// Package composition describes videos as YAML documents and compiles them
// into programs that can be evaluated frame by frame.
package composition

import (
	"errors"

	"github.com/ivlev/framegen/internal/animation"
)

// ErrInvalidComposition reports a structural problem in a composition file
// that is not covered by the engine's own configuration errors.
var ErrInvalidComposition = errors.New("invalid composition")

// Defaults applied to fields left empty in a composition file.
const (
	DefaultFPS        = 30
	DefaultWidth      = 1280
	DefaultHeight     = 720
	DefaultBackground = "#0f0f0f"
	DefaultColor      = "#6366f1"
)

// Defaults for a transition block that leaves fields out.
const (
	DefaultTransitionDuration  = 15
	DefaultTransitionDirection = "from-left"
)

// DefaultTransitionSpring is heavily overdamped so scenes blend without
// overshoot.
var DefaultTransitionSpring = animation.SpringConfig{Mass: 1, Stiffness: 100, Damping: 200}

// Composition is the root of a composition file.
type Composition struct {
	ID     string  `yaml:"id"`
	FPS    float64 `yaml:"fps,omitempty"`
	Width  int     `yaml:"width,omitempty"`
	Height int     `yaml:"height,omitempty"`
	Scenes []Scene `yaml:"scenes"`
}

// Scene is a full-frame panel played back to back with its neighbours.
type Scene struct {
	ID         string    `yaml:"id"`
	Duration   int       `yaml:"duration"` // frames
	Background string    `yaml:"background,omitempty"`
	Image      string    `yaml:"image,omitempty"` // image file or PDF used as backdrop
	Page       int       `yaml:"page,omitempty"`  // PDF page, 0-based
	Overflow   string    `yaml:"overflow,omitempty"`
	Elements   []Element `yaml:"elements,omitempty"`
	// Transition blends this scene into the next one. Empty means a hard cut.
	Transition *Transition `yaml:"transition,omitempty"`
}

// Element is an animated marker inside a scene.
type Element struct {
	ID       string   `yaml:"id"`
	From     int      `yaml:"from,omitempty"`
	Duration int      `yaml:"duration,omitempty"` // 0 runs to the end of the scene
	Overflow string   `yaml:"overflow,omitempty"`
	Color    string   `yaml:"color,omitempty"`
	Rect     *Rect    `yaml:"rect,omitempty"`
	Stagger  *Stagger `yaml:"stagger,omitempty"`
	Tracks   []Track  `yaml:"tracks,omitempty"`
}

// Rect is a box in frame fractions: {0, 0, 1, 1} covers the whole frame.
type Rect struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// DefaultRect is used for elements without an explicit box.
var DefaultRect = Rect{X: 0.4, Y: 0.4, W: 0.2, H: 0.2}

// Stagger expands one element into Count copies, copy i delayed by i*Delay
// frames and offset by i*Step in y.
type Stagger struct {
	Count int     `yaml:"count"`
	Delay int     `yaml:"delay"`
	Step  float64 `yaml:"step,omitempty"`
}

// Track animates one property of an element.
//
// With source "frame" the element's local frame is mapped through
// input/output. With source "spring" the spring progress is used directly,
// or mapped through input/output when they are given.
type Track struct {
	Property         string        `yaml:"property"`
	Source           string        `yaml:"source,omitempty"`
	Spring           *SpringParams `yaml:"spring,omitempty"`
	Delay            float64       `yaml:"delay,omitempty"`
	DurationFrames   float64       `yaml:"durationFrames,omitempty"`
	Clamp            bool          `yaml:"clamp,omitempty"`
	Input            []float64     `yaml:"input,omitempty,flow"`
	Output           []float64     `yaml:"output,omitempty,flow"`
	ExtrapolateLeft  string        `yaml:"extrapolateLeft,omitempty"`
	ExtrapolateRight string        `yaml:"extrapolateRight,omitempty"`
	Easing           string        `yaml:"easing,omitempty"`
}

// SpringParams overrides parts of animation.DefaultSpringConfig.
type SpringParams struct {
	Mass      *float64 `yaml:"mass,omitempty"`
	Stiffness *float64 `yaml:"stiffness,omitempty"`
	Damping   *float64 `yaml:"damping,omitempty"`
}

// Config fills unset parameters from animation.DefaultSpringConfig.
func (p *SpringParams) Config() animation.SpringConfig {
	return p.ConfigFrom(animation.DefaultSpringConfig)
}

// ConfigFrom fills unset parameters from base.
func (p *SpringParams) ConfigFrom(base animation.SpringConfig) animation.SpringConfig {
	cfg := base
	if p == nil {
		return cfg
	}
	if p.Mass != nil {
		cfg.Mass = *p.Mass
	}
	if p.Stiffness != nil {
		cfg.Stiffness = *p.Stiffness
	}
	if p.Damping != nil {
		cfg.Damping = *p.Damping
	}
	return cfg
}

// Transition joins a scene to the next one. Duration defaults to
// DefaultTransitionDuration, a slide or wipe without a direction enters
// from the left, and spring timing without parameters uses
// DefaultTransitionSpring.
type Transition struct {
	Type      string        `yaml:"type,omitempty"` // fade, slide, wipe
	Direction string        `yaml:"direction,omitempty"`
	Duration  int           `yaml:"duration,omitempty"`
	Timing    string        `yaml:"timing,omitempty"` // linear, spring, eased
	Spring    *SpringParams `yaml:"spring,omitempty"`
	Easing    string        `yaml:"easing,omitempty"`
}
