package analyzer

import (
	"fmt"
	"image"
)

// Variants lists the detector names accepted by NewDetector.
var Variants = []string{"contrast", "none"}

// NewDetector creates a detector by name. An empty name selects contrast.
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "contrast", "":
		return NewContrastDetector(), nil
	case "none":
		return noDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown detector variant %q (%v)", variant, Variants)
	}
}

// noDetector finds nothing; pages are shown without highlights.
type noDetector struct{}

func (noDetector) Detect(image.Image) ([]Block, error) { return nil, nil }
