package source

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
)

// Backdrops loads scene backdrops once and scales them to the frame size.
// Concurrent requests for the same page share a single load.
type Backdrops struct {
	width, height int
	dpi           int

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*image.RGBA
}

func NewBackdrops(width, height, dpi int) *Backdrops {
	return &Backdrops{width: width, height: height, dpi: dpi, cache: make(map[string]*image.RGBA)}
}

// Get returns the backdrop for page of path. The returned image is shared
// and must not be modified.
func (b *Backdrops) Get(path string, page int) (*image.RGBA, error) {
	key := fmt.Sprintf("%s#%d", path, page)
	b.mu.RLock()
	img, ok := b.cache[key]
	b.mu.RUnlock()
	if ok {
		return img, nil
	}

	v, err, _ := b.group.Do(key, func() (any, error) {
		img, err := b.load(path, page)
		if err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.cache[key] = img
		b.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, fmt.Errorf("backdrop %s page %d: %w", path, page, err)
	}
	return v.(*image.RGBA), nil
}

func (b *Backdrops) load(path string, page int) (*image.RGBA, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if page < 0 || page >= src.PageCount() {
		return nil, fmt.Errorf("page out of range [0,%d)", src.PageCount())
	}
	img, err := src.RenderPage(page, b.dpi)
	if err != nil {
		return nil, err
	}
	return Cover(img, b.width, b.height), nil
}

// Cover scales img to fill a width×height frame, keeping its aspect ratio
// and cropping the centre.
func Cover(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	sb := img.Bounds()
	if sb.Empty() || width <= 0 || height <= 0 {
		return dst
	}

	scale := float64(width) / float64(sb.Dx())
	if s := float64(height) / float64(sb.Dy()); s > scale {
		scale = s
	}
	cw := int(float64(width)/scale + 0.5)
	ch := int(float64(height)/scale + 0.5)
	if cw > sb.Dx() {
		cw = sb.Dx()
	}
	if ch > sb.Dy() {
		ch = sb.Dy()
	}
	x0 := sb.Min.X + (sb.Dx()-cw)/2
	y0 := sb.Min.Y + (sb.Dy()-ch)/2
	crop := image.Rect(x0, y0, x0+cw, y0+ch)

	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	return dst
}
