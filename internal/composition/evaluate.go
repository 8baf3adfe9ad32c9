package composition

import (
	"github.com/ivlev/framegen/internal/timeline"
	"github.com/ivlev/framegen/internal/transition"
)

// LayerKind tells scene panels from the elements drawn on them.
type LayerKind string

const (
	SceneLayer   LayerKind = "scene"
	ElementLayer LayerKind = "element"
	rootLayer    LayerKind = ""
)

// Layer is one drawable at one frame.
type Layer struct {
	ID         string    `json:"id"`
	Kind       LayerKind `json:"kind"`
	Scene      int       `json:"scene"`
	Element    int       `json:"-"`
	LocalFrame int       `json:"localFrame"`
	// Delta is the transition state of the layer's scene.
	Delta transition.Delta   `json:"delta"`
	Props map[string]float64 `json:"props,omitempty"`
}

// Frame lists the layers to paint, bottom first.
type Frame struct {
	Index  int     `json:"frame"`
	Layers []Layer `json:"layers"`
}

// Evaluate computes the frame at index. Frames past the end are empty.
func (p *Program) Evaluate(index int) Frame {
	states := p.tree.ResolveInto(index, make([]timeline.State, 0, p.tree.Len()))
	deltas := p.series.DeltasInto(index, make([]transition.Delta, 0, len(p.scenes)))

	f := Frame{Index: index, Layers: []Layer{}}
	for i, s := range states {
		n := &p.nodes[i]
		if n.kind == rootLayer || !s.Rendered {
			continue
		}
		l := Layer{
			ID:         s.ID,
			Kind:       n.kind,
			Scene:      n.scene,
			LocalFrame: s.LocalFrame,
			Delta:      deltas[n.scene],
		}
		if n.kind == ElementLayer {
			l.Element = n.element
			l.Props = make(map[string]float64, len(n.tracks))
			for j := range n.tracks {
				l.Props[n.tracks[j].property] = n.tracks[j].value(s.LocalFrame)
			}
		}
		f.Layers = append(f.Layers, l)
	}
	return f
}

// Prop returns a property of the layer or def when no track animates it.
func (l Layer) Prop(name string, def float64) float64 {
	if v, ok := l.Props[name]; ok {
		return v
	}
	return def
}
