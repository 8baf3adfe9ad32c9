package composition

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ivlev/framegen/internal/animation"
	"github.com/ivlev/framegen/internal/timeline"
	"github.com/ivlev/framegen/internal/transition"
)

// SceneInfo is the static part of a compiled scene.
type SceneInfo struct {
	ID         string
	Start      int
	Duration   int
	Background color.NRGBA
	Image      string
	Page       int
}

// ElementInfo is the static part of a compiled element.
type ElementInfo struct {
	ID    string
	Scene int
	Color color.NRGBA
	Rect  Rect
}

type trackSource int

const (
	sourceFrame trackSource = iota
	sourceSpring
)

type track struct {
	property string
	source   trackSource
	spring   animation.SpringRequest
	curve    *animation.Keyframes
	// offset delays the track by a number of frames (stagger copies).
	offset int
}

func (t *track) value(localFrame int) float64 {
	if t.source == sourceSpring {
		r := t.spring
		r.Frame = float64(localFrame)
		r.DelayFrames += float64(t.offset)
		v := animation.EvaluateSpring(r)
		if t.curve == nil {
			return v
		}
		return t.curve.At(v)
	}
	return t.curve.At(float64(localFrame - t.offset))
}

type node struct {
	kind    LayerKind
	scene   int
	element int
	tracks  []track
}

// Program is a compiled composition. It is immutable and safe for concurrent
// use; every frame can be evaluated independently.
type Program struct {
	id       string
	fps      float64
	width    int
	height   int
	series   *transition.Series
	tree     *timeline.Tree
	nodes    []node // paint order, parallel to the tree
	scenes   []SceneInfo
	elements []ElementInfo
}

// Compile validates c and builds a Program.
func Compile(c *Composition) (*Program, error) {
	p := &Program{id: c.ID, fps: c.FPS, width: c.Width, height: c.Height}
	if p.id == "" {
		p.id = "composition"
	}
	if p.fps == 0 {
		p.fps = DefaultFPS
	}
	if p.width == 0 {
		p.width = DefaultWidth
	}
	if p.height == 0 {
		p.height = DefaultHeight
	}
	switch {
	case p.fps < 0:
		return nil, fmt.Errorf("%w: fps must be > 0, got %v", ErrInvalidComposition, p.fps)
	case p.width < 0 || p.height < 0:
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidComposition, p.width, p.height)
	}

	scenes := make([]transition.Scene, len(c.Scenes))
	var links []*transition.Link
	for i, sc := range c.Scenes {
		overflow, err := timeline.ParseOverflow(sc.Overflow)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", sc.ID, err)
		}
		scenes[i] = transition.Scene{ID: sc.ID, Duration: sc.Duration, Overflow: overflow}

		if i == len(c.Scenes)-1 {
			if sc.Transition != nil {
				return nil, fmt.Errorf("%w: last scene %q has a transition", ErrInvalidComposition, sc.ID)
			}
			break
		}
		var link *transition.Link
		if sc.Transition != nil {
			if link, err = compileTransition(sc.Transition); err != nil {
				return nil, fmt.Errorf("scene %q: %w", sc.ID, err)
			}
		}
		links = append(links, link)
	}

	series, err := transition.NewSeries(p.fps, scenes, links)
	if err != nil {
		return nil, err
	}
	p.series = series

	infos := make(map[string]node)
	sceneNodes := series.Nodes()
	for i, sc := range c.Scenes {
		info := SceneInfo{ID: sc.ID, Start: series.Start(i), Duration: sc.Duration, Image: sc.Image, Page: sc.Page}
		bg := sc.Background
		if bg == "" {
			bg = DefaultBackground
		}
		if info.Background, err = ParseColor(bg); err != nil {
			return nil, fmt.Errorf("scene %q: %w", sc.ID, err)
		}
		p.scenes = append(p.scenes, info)
		infos[sc.ID] = node{kind: SceneLayer, scene: i, element: -1}

		for _, el := range sc.Elements {
			children, err := p.compileElement(i, sc, el, infos)
			if err != nil {
				return nil, fmt.Errorf("scene %q element %q: %w", sc.ID, el.ID, err)
			}
			sceneNodes[i].Children = append(sceneNodes[i].Children, children...)
		}
	}

	tree, err := timeline.Build(timeline.Node{ID: p.id, Duration: series.Duration(), Children: sceneNodes})
	if err != nil {
		return nil, err
	}
	p.tree = tree

	p.nodes = make([]node, tree.Len())
	for i, id := range tree.IDs() {
		n, ok := infos[id]
		if !ok {
			n = node{kind: rootLayer, scene: -1, element: -1}
		}
		p.nodes[i] = n
	}
	return p, nil
}

func (p *Program) compileElement(scene int, sc Scene, el Element, infos map[string]node) ([]timeline.Node, error) {
	overflow, err := timeline.ParseOverflow(el.Overflow)
	if err != nil {
		return nil, err
	}
	col := el.Color
	if col == "" {
		col = DefaultColor
	}
	fill, err := ParseColor(col)
	if err != nil {
		return nil, err
	}
	rect := DefaultRect
	if el.Rect != nil {
		rect = *el.Rect
	}
	duration := el.Duration
	if duration == 0 {
		duration = sc.Duration - el.From
	}

	count, delay, step := 1, 0, 0.0
	if el.Stagger != nil {
		count, delay, step = el.Stagger.Count, el.Stagger.Delay, el.Stagger.Step
		if count < 1 || delay < 0 {
			return nil, fmt.Errorf("%w: stagger needs count >= 1 and delay >= 0", ErrInvalidComposition)
		}
	}

	base := make([]track, 0, len(el.Tracks))
	for _, tr := range el.Tracks {
		t, err := compileTrack(tr, p.fps)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", tr.Property, err)
		}
		base = append(base, t)
	}

	nodes := make([]timeline.Node, 0, count)
	for i := 0; i < count; i++ {
		id := sc.ID + "/" + el.ID
		if count > 1 {
			id = fmt.Sprintf("%s-%d", id, i+1)
		}
		tracks := make([]track, len(base))
		for j, t := range base {
			t.offset = i * delay
			tracks[j] = t
		}
		r := rect
		r.Y += float64(i) * step

		p.elements = append(p.elements, ElementInfo{ID: id, Scene: scene, Color: fill, Rect: r})
		infos[id] = node{kind: ElementLayer, scene: scene, element: len(p.elements) - 1, tracks: tracks}
		nodes = append(nodes, timeline.Node{ID: id, From: el.From, Duration: duration, Overflow: overflow})
	}
	return nodes, nil
}

func compileTrack(tr Track, fps float64) (track, error) {
	if tr.Property == "" {
		return track{}, fmt.Errorf("%w: track without property", ErrInvalidComposition)
	}
	t := track{property: tr.Property}

	switch tr.Source {
	case "", "frame":
		t.source = sourceFrame
	case "spring":
		t.source = sourceSpring
		t.spring = animation.SpringRequest{
			FPS:            fps,
			Config:         tr.Spring.Config(),
			DelayFrames:    tr.Delay,
			DurationFrames: tr.DurationFrames,
			ClampOvershoot: tr.Clamp,
		}
		if err := t.spring.Validate(); err != nil {
			return track{}, err
		}
	default:
		return track{}, fmt.Errorf("%w: unknown source %q", ErrInvalidComposition, tr.Source)
	}

	if t.source == sourceSpring && len(tr.Input) == 0 && len(tr.Output) == 0 {
		return t, nil
	}

	left, err := animation.ParseExtrapolation(tr.ExtrapolateLeft)
	if err != nil {
		return track{}, err
	}
	right, err := animation.ParseExtrapolation(tr.ExtrapolateRight)
	if err != nil {
		return track{}, err
	}
	easing, ok := animation.LookupEasing(tr.Easing)
	if !ok {
		return track{}, animation.NewConfigError(animation.ErrInvalidInterpolationRange, "easing", "unknown easing %q, want one of %s",
			tr.Easing, strings.Join(animation.EasingNames(), ", "))
	}
	curve, err := animation.NewKeyframes(tr.Input, tr.Output,
		animation.WithExtrapolation(left, right), animation.WithEasing(easing))
	if err != nil {
		return track{}, err
	}
	t.curve = curve
	return t, nil
}

func compileTransition(tr *Transition) (*transition.Link, error) {
	kind, err := transition.ParsePresentationKind(tr.Type)
	if err != nil {
		return nil, err
	}
	duration := tr.Duration
	if duration == 0 {
		duration = DefaultTransitionDuration
	}
	link := &transition.Link{Duration: duration, Presentation: transition.Presentation{Kind: kind}}
	if kind != transition.Fade {
		direction := tr.Direction
		if direction == "" {
			direction = DefaultTransitionDirection
		}
		link.Presentation.Direction, err = transition.ParseDirection(direction)
		if err != nil {
			return nil, err
		}
	}

	timing := tr.Timing
	if timing == "" {
		switch {
		case tr.Spring != nil:
			timing = "spring"
		case tr.Easing != "":
			timing = "eased"
		}
	}
	switch timing {
	case "", "linear":
		link.Timing = transition.LinearTiming()
	case "spring":
		link.Timing = transition.SpringTiming(tr.Spring.ConfigFrom(DefaultTransitionSpring))
	case "eased":
		link.Timing = transition.EasedTiming(tr.Easing)
	default:
		return nil, fmt.Errorf("%w: unknown timing %q", ErrInvalidComposition, tr.Timing)
	}
	return link, nil
}

// ID returns the composition ID.
func (p *Program) ID() string { return p.id }

// FPS returns the frame rate.
func (p *Program) FPS() float64 { return p.fps }

// Size returns the frame size in pixels.
func (p *Program) Size() (width, height int) { return p.width, p.height }

// Duration returns the total number of frames.
func (p *Program) Duration() int { return p.series.Duration() }

// Scenes returns the compiled scenes in playback order.
func (p *Program) Scenes() []SceneInfo {
	return append([]SceneInfo(nil), p.scenes...)
}

// Scene returns scene i; Layer.Scene indexes it.
func (p *Program) Scene(i int) SceneInfo { return p.scenes[i] }

// Element returns element i; Layer.Element indexes it.
func (p *Program) Element(i int) ElementInfo { return p.elements[i] }

// Elements returns every element copy in paint order within its scene.
func (p *Program) Elements() []ElementInfo {
	return append([]ElementInfo(nil), p.elements...)
}

// Transitions returns the number of scene pairs joined by a transition.
func (p *Program) Transitions() int {
	n := 0
	for i := 0; i+1 < len(p.scenes); i++ {
		if p.series.Transition(i) != nil {
			n++
		}
	}
	return n
}
