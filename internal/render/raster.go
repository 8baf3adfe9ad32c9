package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"github.com/ivlev/framegen/internal/composition"
	"github.com/ivlev/framegen/internal/transition"
)

func (r *Renderer) renderFrame(index int) (*image.RGBA, error) {
	frame := r.program.Evaluate(index)

	img := r.frames.Get()
	draw.Draw(img, r.bounds, image.Black, image.Point{}, draw.Src)

	for _, l := range frame.Layers {
		switch l.Kind {
		case composition.SceneLayer:
			if err := r.drawScene(img, r.program.Scene(l.Scene), l.Delta); err != nil {
				r.frames.Put(img)
				return nil, err
			}
		case composition.ElementLayer:
			r.drawElement(img, r.program.Element(l.Element), l)
		}
	}

	if r.cfg.Debug {
		if err := r.stamp(img, index); err != nil {
			r.frames.Put(img)
			return nil, err
		}
	}
	return img, nil
}

// panelRect is where a scene lands after its transition offset.
func panelRect(bounds image.Rectangle, d transition.Delta) image.Rectangle {
	dx := int(math.Round(d.OffsetX * float64(bounds.Dx())))
	dy := int(math.Round(d.OffsetY * float64(bounds.Dy())))
	return bounds.Add(image.Pt(dx, dy))
}

// clipRect applies the transition insets to the panel and the frame.
func clipRect(bounds, panel image.Rectangle, d transition.Delta) image.Rectangle {
	w, h := float64(panel.Dx()), float64(panel.Dy())
	clip := image.Rect(
		panel.Min.X+int(math.Round(d.Clip.Left*w)),
		panel.Min.Y+int(math.Round(d.Clip.Top*h)),
		panel.Max.X-int(math.Round(d.Clip.Right*w)),
		panel.Max.Y-int(math.Round(d.Clip.Bottom*h)),
	)
	return clip.Intersect(panel).Intersect(bounds)
}

func alphaMask(a float64) *image.Uniform {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return image.NewUniform(color.Alpha{A: uint8(math.Round(a * 255))})
}

func (r *Renderer) drawScene(dst *image.RGBA, sc composition.SceneInfo, d transition.Delta) error {
	panel := panelRect(r.bounds, d)
	clip := clipRect(r.bounds, panel, d)
	if clip.Empty() || d.Opacity <= 0 {
		return nil
	}

	var src image.Image = image.NewUniform(sc.Background)
	if sc.Image != "" {
		backdrop, err := r.backdrops.Get(sc.Image, sc.Page)
		if err != nil {
			return err
		}
		src = backdrop
	}
	draw.DrawMask(dst, clip, src, clip.Min.Sub(panel.Min), alphaMask(d.Opacity), image.Point{}, draw.Over)
	return nil
}

func (r *Renderer) drawElement(dst *image.RGBA, el composition.ElementInfo, l composition.Layer) {
	panel := panelRect(r.bounds, l.Delta)
	clip := clipRect(r.bounds, panel, l.Delta)

	fw, fh := float64(r.bounds.Dx()), float64(r.bounds.Dy())
	scale := l.Prop("scale", 1)
	w := el.Rect.W * scale * fw
	h := el.Rect.H * scale * fh
	cx := float64(panel.Min.X) + (el.Rect.X+el.Rect.W/2+l.Prop("x", 0))*fw
	cy := float64(panel.Min.Y) + (el.Rect.Y+el.Rect.H/2+l.Prop("y", 0))*fh
	x0, y0 := cx-w/2, cy-h/2

	box := image.Rect(
		int(math.Round(x0)),
		int(math.Round(y0)),
		int(math.Round(x0+w*l.Prop("progress", 1))),
		int(math.Round(y0+h)),
	).Intersect(clip)
	if box.Empty() {
		return
	}

	alpha := l.Prop("opacity", 1) * l.Delta.Opacity * float64(el.Color.A) / 255
	fill := el.Color
	fill.A = 255
	draw.DrawMask(dst, box, image.NewUniform(fill), image.Point{}, alphaMask(alpha), image.Point{}, draw.Over)
}

// stamp draws a QR code of "<composition>@<frame>" in the bottom right
// corner so frames can be traced back from an encoded video.
func (r *Renderer) stamp(dst *image.RGBA, index int) error {
	q, err := qrcode.New(fmt.Sprintf("%s@%d", r.program.ID(), index), qrcode.Low)
	if err != nil {
		return fmt.Errorf("debug stamp: %w", err)
	}
	size := r.bounds.Dx()
	if r.bounds.Dy() < size {
		size = r.bounds.Dy()
	}
	size /= 6
	if size < 21 {
		return nil
	}
	code := q.Image(size)
	at := image.Rect(r.bounds.Max.X-size, r.bounds.Max.Y-size, r.bounds.Max.X, r.bounds.Max.Y)
	draw.Draw(dst, at, code, code.Bounds().Min, draw.Src)
	return nil
}
