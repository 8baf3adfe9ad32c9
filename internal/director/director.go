// Package director turns paged sources into compositions: one scene per page
// with a highlight stepping through the detected content blocks in reading
// order.
package director

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ivlev/framegen/internal/analyzer"
	"github.com/ivlev/framegen/internal/composition"
	"github.com/ivlev/framegen/internal/source"
)

// Director plans the scenes of a generated composition.
type Director struct {
	Width, Height int
	FPS           float64

	PageDuration float64 // seconds per page when no blocks are found
	MinDwell     float64 // seconds per block
	MaxDwell     float64
	Intro, Outro float64 // full-page time before the first and after the last block
	MaxBlocks    int

	Highlight  string
	Transition *composition.Transition // nil joins pages with hard cuts
	Detector   analyzer.Detector
	DPI        int
}

// NewDirector returns a Director with a contrast detector and fades between
// pages.
func NewDirector(width, height int, fps float64) *Director {
	return &Director{
		Width:        width,
		Height:       height,
		FPS:          fps,
		PageDuration: 4,
		MinDwell:     1,
		MaxDwell:     3,
		Intro:        1,
		Outro:        1,
		MaxBlocks:    6,
		Highlight:    "#facc1599",
		Transition:   &composition.Transition{Type: "fade", Duration: int(math.Round(fps / 2))},
		Detector:     analyzer.NewContrastDetector(),
		DPI:          100,
	}
}

// Generate renders every page of src, detects its blocks and returns the
// composition. input is stored as the scene backdrop and must be the path
// src was opened from.
func (d *Director) Generate(src source.Source, input string) (*composition.Composition, error) {
	pages := src.PageCount()
	if pages == 0 {
		return nil, fmt.Errorf("%s: no pages", input)
	}

	c := &composition.Composition{
		ID:     compositionID(input),
		FPS:    d.FPS,
		Width:  d.Width,
		Height: d.Height,
	}
	for page := 0; page < pages; page++ {
		img, err := src.RenderPage(page, d.DPI)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		blocks, err := d.Detector.Detect(img)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		slog.Debug("page analyzed", "page", page, "blocks", len(blocks))

		scene := d.PlanScene(page, input, img.Bounds(), blocks)
		if page < pages-1 && d.Transition != nil {
			tr := *d.Transition
			scene.Transition = &tr
		}
		c.Scenes = append(c.Scenes, scene)
	}
	return c, nil
}

// PlanScene lays out the highlights of one page. Blocks are given in page
// pixels within bounds; they are mapped through the same centre crop the
// renderer applies to backdrops.
func (d *Director) PlanScene(page int, input string, bounds image.Rectangle, blocks []analyzer.Block) composition.Scene {
	scene := composition.Scene{
		ID:    fmt.Sprintf("page-%d", page+1),
		Image: input,
		Page:  page,
	}

	var rects []composition.Rect
	for _, b := range sortBlocks(blocks, bounds.Dy()/50) {
		if len(rects) == d.MaxBlocks {
			break
		}
		if r, ok := d.coverRect(bounds, b.Rect); ok {
			rects = append(rects, r)
		}
	}

	minFrames := d.frames(d.Intro + d.Outro)
	if d.Transition != nil {
		// room for an incoming and an outgoing transition
		tr := d.Transition.Duration
		if tr == 0 {
			tr = composition.DefaultTransitionDuration
		}
		minFrames = max(minFrames, 2*tr)
	}

	if len(rects) == 0 {
		scene.Duration = max(minFrames, d.frames(d.PageDuration))
		return scene
	}

	dwell := d.dwell(len(rects))
	intro := d.frames(d.Intro)
	for i, r := range rects {
		scene.Elements = append(scene.Elements, composition.Element{
			ID:       fmt.Sprintf("block-%d", i+1),
			From:     intro + i*dwell,
			Duration: dwell,
			Color:    d.Highlight,
			Rect:     &r,
			Tracks:   d.highlightTracks(dwell),
		})
	}
	scene.Duration = max(minFrames, intro+len(rects)*dwell+d.frames(d.Outro))
	return scene
}

// dwell is the number of frames each block stays highlighted.
func (d *Director) dwell(blocks int) int {
	available := d.PageDuration - d.Intro - d.Outro
	if available <= 0 {
		available = d.PageDuration
	}
	sec := math.Min(math.Max(available/float64(blocks), d.MinDwell), d.MaxDwell)
	return max(4, d.frames(sec))
}

// highlightTracks fades the marker in and out and lets it spring to size.
// dwell is at least 4 frames so the fade keyframes stay strictly increasing.
func (d *Director) highlightTracks(dwell int) []composition.Track {
	fade := float64(max(1, min(d.frames(0.2), (dwell-1)/2)))
	return []composition.Track{
		{
			Property:         "opacity",
			Input:            []float64{0, fade, float64(dwell) - fade, float64(dwell)},
			Output:           []float64{0, 1, 1, 0},
			ExtrapolateLeft:  "clamp",
			ExtrapolateRight: "clamp",
		},
		{
			Property: "scale",
			Source:   "spring",
			Input:    []float64{0, 1},
			Output:   []float64{0.85, 1},
		},
	}
}

func (d *Director) frames(seconds float64) int {
	return int(math.Round(seconds * d.FPS))
}

// coverRect maps a block from page pixels into frame fractions. Blocks
// cropped away entirely are dropped.
func (d *Director) coverRect(bounds, block image.Rectangle) (composition.Rect, bool) {
	if bounds.Empty() || d.Width <= 0 || d.Height <= 0 {
		return composition.Rect{}, false
	}
	sw, sh := float64(bounds.Dx()), float64(bounds.Dy())
	scale := math.Max(float64(d.Width)/sw, float64(d.Height)/sh)
	cw := math.Min(float64(d.Width)/scale, sw)
	ch := math.Min(float64(d.Height)/scale, sh)
	x0 := float64(bounds.Min.X) + (sw-cw)/2
	y0 := float64(bounds.Min.Y) + (sh-ch)/2

	clamp := func(v float64) float64 { return math.Min(math.Max(v, 0), 1) }
	left := clamp((float64(block.Min.X) - x0) / cw)
	top := clamp((float64(block.Min.Y) - y0) / ch)
	right := clamp((float64(block.Max.X) - x0) / cw)
	bottom := clamp((float64(block.Max.Y) - y0) / ch)
	if right <= left || bottom <= top {
		return composition.Rect{}, false
	}
	return composition.Rect{X: left, Y: top, W: right - left, H: bottom - top}, true
}

// sortBlocks orders blocks top to bottom, then left to right within a row.
// Blocks whose tops differ by at most rowTolerance share a row.
func sortBlocks(blocks []analyzer.Block, rowTolerance int) []analyzer.Block {
	sorted := append([]analyzer.Block(nil), blocks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Rect.Min, sorted[j].Rect.Min
		if dy := a.Y - b.Y; dy > rowTolerance || dy < -rowTolerance {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return sorted
}

func compositionID(input string) string {
	base := filepath.Base(filepath.Clean(input))
	if id := strings.TrimSuffix(base, filepath.Ext(base)); id != "" && id != "." {
		return id
	}
	return "composition"
}
