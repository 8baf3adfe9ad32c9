// Package analyzer finds content blocks on backdrop pages so that generated
// compositions can highlight them one after another.
package analyzer

import "image"

// Block is a region of a page that holds content, in page pixels.
type Block struct {
	Rect       image.Rectangle
	Kind       string  // "text", "figure" or "unknown"
	Confidence float64 // 0.0-1.0
}

// Detector is the interface for page analysis strategies.
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}

// classify guesses the kind of a block from its shape. Text lines and
// paragraphs are much wider than tall.
func classify(r image.Rectangle) string {
	w, h := r.Dx(), r.Dy()
	switch {
	case h == 0:
		return "unknown"
	case w >= 3*h:
		return "text"
	case w*2 >= h && h*2 >= w:
		return "figure"
	}
	return "unknown"
}
