package animation

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// Easing maps normalized progress t in [0,1] to eased progress.
type Easing func(t float64) float64

var easings = map[string]ease.TweenFunc{
	"linear":         ease.Linear,
	"in-quad":        ease.InQuad,
	"out-quad":       ease.OutQuad,
	"in-out-quad":    ease.InOutQuad,
	"in-cubic":       ease.InCubic,
	"out-cubic":      ease.OutCubic,
	"in-out-cubic":   ease.InOutCubic,
	"in-sine":        ease.InSine,
	"out-sine":       ease.OutSine,
	"in-out-sine":    ease.InOutSine,
	"in-expo":        ease.InExpo,
	"out-expo":       ease.OutExpo,
	"in-back":        ease.InBack,
	"out-back":       ease.OutBack,
	"in-out-back":    ease.InOutBack,
	"out-bounce":     ease.OutBounce,
	"out-elastic":    ease.OutElastic,
	"in-out-elastic": ease.InOutElastic,
}

// LookupEasing resolves an easing by name. The empty name resolves to nil,
// meaning "no easing".
func LookupEasing(name string) (Easing, bool) {
	if name == "" {
		return nil, true
	}
	fn, ok := easings[name]
	if !ok {
		return nil, false
	}
	return func(t float64) float64 {
		// gween evaluates fn(elapsed, begin, change, duration) in float32
		return float64(fn(float32(t), 0, 1, 1))
	}, true
}

// EasingNames lists the registered easing names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
