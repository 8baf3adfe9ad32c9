package analyzer

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
)

// ContrastDetector finds blocks with a Sobel edge pass followed by dilation,
// so that the glyphs of a paragraph merge into one connected region.
type ContrastDetector struct {
	MinBlockArea     int     // pixels²
	EdgeThreshold    float64 // gradient magnitude
	DilateRadius     int
	DilateIterations int
}

func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:     500,
		EdgeThreshold:    30,
		DilateRadius:     2,
		DilateIterations: 2,
	}
}

// Detect returns blocks in page coordinates, largest first.
func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	mask := sobel(gray, d.EdgeThreshold)
	for i := 0; i < d.DilateIterations; i++ {
		mask = dilate(mask, b.Dx(), b.Dy(), d.DilateRadius)
	}

	var blocks []Block
	for _, r := range components(mask, b.Dx(), b.Dy()) {
		if r.Dx()*r.Dy() < d.MinBlockArea {
			continue
		}
		r = r.Add(b.Min)
		blocks = append(blocks, Block{Rect: r, Kind: classify(r), Confidence: 0.7})
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return area(blocks[i].Rect) > area(blocks[j].Rect)
	})
	return blocks, nil
}

func area(r image.Rectangle) int { return r.Dx() * r.Dy() }

// sobel marks pixels whose gradient magnitude exceeds threshold. The border
// row and column are never marked.
func sobel(g *image.Gray, threshold float64) []bool {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	out := make([]bool, w*h)
	px := func(x, y int) float64 { return float64(g.Pix[y*g.Stride+x]) }

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -px(x-1, y-1) + px(x+1, y-1) -
				2*px(x-1, y) + 2*px(x+1, y) -
				px(x-1, y+1) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)
			out[y*w+x] = math.Hypot(gx, gy) > threshold
		}
	}
	return out
}

// dilate grows marked pixels by a square of the given radius, as two
// separable passes.
func dilate(mask []bool, w, h, radius int) []bool {
	if radius <= 0 {
		return mask
	}
	rows := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for k := max(0, x-radius); k <= min(w-1, x+radius); k++ {
				rows[y*w+k] = true
			}
		}
	}
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !rows[y*w+x] {
				continue
			}
			for k := max(0, y-radius); k <= min(h-1, y+radius); k++ {
				out[k*w+x] = true
			}
		}
	}
	return out
}

// components returns the bounding box of every 4-connected marked region.
func components(mask []bool, w, h int) []image.Rectangle {
	visited := make([]bool, len(mask))
	var rects []image.Rectangle
	var stack []int

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		r := image.Rect(start%w, start/w, start%w+1, start/w+1)
		visited[start] = true
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			r = r.Union(image.Rect(x, y, x+1, y+1))

			push := func(j int) {
				if mask[j] && !visited[j] {
					visited[j] = true
					stack = append(stack, j)
				}
			}
			if x > 0 {
				push(i - 1)
			}
			if x < w-1 {
				push(i + 1)
			}
			if y > 0 {
				push(i - w)
			}
			if y < h-1 {
				push(i + w)
			}
		}
		rects = append(rects, r)
	}
	return rects
}
