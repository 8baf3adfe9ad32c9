package director

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/framegen/internal/analyzer"
	"github.com/ivlev/framegen/internal/composition"
)

type memorySource struct {
	pages []image.Image
}

func (s *memorySource) PageCount() int { return len(s.pages) }

func (s *memorySource) GetPageDimensions(i int) (float64, float64, error) {
	b := s.pages[i].Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (s *memorySource) RenderPage(i int, dpi int) (image.Image, error) {
	if i >= len(s.pages) {
		return nil, errors.New("no such page")
	}
	return s.pages[i], nil
}

func (s *memorySource) Close() error { return nil }

type fixedDetector []analyzer.Block

func (f fixedDetector) Detect(image.Image) ([]analyzer.Block, error) { return f, nil }

func blankPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

func TestPlanScene(t *testing.T) {
	d := NewDirector(1280, 720, 30)
	blocks := []analyzer.Block{
		{Rect: image.Rect(128, 400, 640, 500)},
		{Rect: image.Rect(128, 72, 640, 360)},
	}

	scene := d.PlanScene(0, "deck.pdf", image.Rect(0, 0, 1280, 720), blocks)
	assert.Equal(t, "page-1", scene.ID)
	assert.Equal(t, "deck.pdf", scene.Image)
	assert.Equal(t, 0, scene.Page)
	// 1s intro, two 1s blocks, 1s outro
	assert.Equal(t, 120, scene.Duration)

	require.Len(t, scene.Elements, 2)
	first := scene.Elements[0]
	assert.Equal(t, "block-1", first.ID)
	assert.Equal(t, 30, first.From)
	assert.Equal(t, 30, first.Duration)
	assert.InDelta(t, 0.1, first.Rect.X, 1e-9)
	assert.InDelta(t, 0.1, first.Rect.Y, 1e-9)
	assert.InDelta(t, 0.4, first.Rect.W, 1e-9)
	assert.InDelta(t, 0.4, first.Rect.H, 1e-9)
	assert.Equal(t, 60, scene.Elements[1].From)
	assert.InDelta(t, 400.0/720, scene.Elements[1].Rect.Y, 1e-9)
}

func TestPlanScene_NoBlocks(t *testing.T) {
	d := NewDirector(1280, 720, 30)
	scene := d.PlanScene(2, "deck.pdf", image.Rect(0, 0, 1280, 720), nil)
	assert.Equal(t, "page-3", scene.ID)
	assert.Empty(t, scene.Elements)
	assert.Equal(t, 120, scene.Duration)
}

func TestPlanScene_MaxBlocksAndDwell(t *testing.T) {
	d := NewDirector(100, 100, 10)
	d.MaxBlocks = 3
	var blocks []analyzer.Block
	for i := 0; i < 5; i++ {
		blocks = append(blocks, analyzer.Block{Rect: image.Rect(10, 10+i*15, 90, 20+i*15)})
	}

	scene := d.PlanScene(0, "p.png", image.Rect(0, 0, 100, 100), blocks)
	require.Len(t, scene.Elements, 3)
	// 2s available over 3 blocks is below MinDwell
	assert.Equal(t, 10, scene.Elements[0].Duration)
	assert.Equal(t, 10+3*10+10, scene.Duration)
}

func TestPlanScene_DefaultTransitionRoom(t *testing.T) {
	d := NewDirector(100, 100, 10)
	d.PageDuration = 1
	d.Transition = &composition.Transition{Type: "fade"}
	scene := d.PlanScene(0, "p.png", image.Rect(0, 0, 100, 100), nil)
	assert.Equal(t, 2*composition.DefaultTransitionDuration, scene.Duration)
}

func TestCoverRect(t *testing.T) {
	d := NewDirector(1000, 1000, 30)
	bounds := image.Rect(0, 0, 2000, 1000)

	_, ok := d.coverRect(bounds, image.Rect(0, 0, 400, 100))
	assert.False(t, ok, "block in the cropped margin")

	r, ok := d.coverRect(bounds, image.Rect(600, 100, 1100, 300))
	require.True(t, ok)
	assert.InDelta(t, 0.1, r.X, 1e-9)
	assert.InDelta(t, 0.1, r.Y, 1e-9)
	assert.InDelta(t, 0.5, r.W, 1e-9)
	assert.InDelta(t, 0.2, r.H, 1e-9)

	r, ok = d.coverRect(bounds, image.Rect(1400, 0, 1600, 50))
	require.True(t, ok)
	assert.InDelta(t, 0.9, r.X, 1e-9)
	assert.InDelta(t, 0.1, r.W, 1e-9, "clipped at the right edge")
}

func TestSortBlocks(t *testing.T) {
	blocks := []analyzer.Block{
		{Rect: image.Rect(300, 105, 400, 150)},
		{Rect: image.Rect(10, 300, 100, 350)},
		{Rect: image.Rect(10, 100, 100, 150)},
	}
	sorted := sortBlocks(blocks, 10)
	assert.Equal(t, image.Pt(10, 100), sorted[0].Rect.Min)
	assert.Equal(t, image.Pt(300, 105), sorted[1].Rect.Min)
	assert.Equal(t, image.Pt(10, 300), sorted[2].Rect.Min)
	assert.Equal(t, image.Pt(300, 105), blocks[0].Rect.Min, "input untouched")
}

func TestGenerate_Compiles(t *testing.T) {
	src := &memorySource{pages: []image.Image{blankPage(320, 180), blankPage(320, 180), blankPage(320, 180)}}
	d := NewDirector(320, 180, 30)
	d.Detector = fixedDetector{{Rect: image.Rect(32, 18, 160, 90)}}

	c, err := d.Generate(src, "input/slides")
	require.NoError(t, err)
	assert.Equal(t, "slides", c.ID)
	require.Len(t, c.Scenes, 3)
	assert.NotNil(t, c.Scenes[0].Transition)
	assert.NotNil(t, c.Scenes[1].Transition)
	assert.Nil(t, c.Scenes[2].Transition)
	assert.NotSame(t, c.Scenes[0].Transition, c.Scenes[1].Transition)

	p, err := composition.Compile(c)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Transitions())
	// each page: 30 intro + 60 dwell + 30 outro
	assert.Equal(t, 3*120-2*15, p.Duration())

	f := p.Evaluate(30 + 45)
	var highlighted bool
	for _, l := range f.Layers {
		if l.ID == "page-1/block-1" {
			highlighted = true
			assert.InDelta(t, 1, l.Prop("opacity", 0), 1e-9)
			assert.InDelta(t, 1, l.Prop("scale", 0), 0.01)
		}
	}
	assert.True(t, highlighted)
}

func TestGenerate_RoundTrip(t *testing.T) {
	page := blankPage(400, 300)
	draw.Draw(page, image.Rect(40, 40, 360, 80), image.NewUniform(color.Black), image.Point{}, draw.Src)
	src := &memorySource{pages: []image.Image{page}}

	d := NewDirector(400, 300, 24)
	c, err := d.Generate(src, "deck.png")
	require.NoError(t, err)
	require.Len(t, c.Scenes, 1)
	require.Len(t, c.Scenes[0].Elements, 1, "contrast detector finds the bar")

	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, composition.Write(c, path))
	back, err := composition.Read(path)
	require.NoError(t, err)
	_, err = composition.Compile(back)
	require.NoError(t, err)
	assert.Equal(t, c.Scenes[0].Elements[0].Tracks, back.Scenes[0].Elements[0].Tracks)
}

func TestGenerate_Errors(t *testing.T) {
	d := NewDirector(100, 100, 30)
	_, err := d.Generate(&memorySource{}, "empty")
	assert.ErrorContains(t, err, "no pages")
}

func TestCompositionPath(t *testing.T) {
	at := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, filepath.Join("input", "deck_2026-03-01_14-05-09.yaml"), CompositionPath("input", "pdfs/deck.pdf", at))
	assert.Equal(t, filepath.Join("out", "slides_2026-03-01_14-05-09.yaml"), CompositionPath("out", "input/slides/", at))
}
