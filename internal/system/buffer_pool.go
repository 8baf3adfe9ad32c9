package system

import (
	"image"
	"sync"
)

// FramePool recycles RGBA frames of one fixed size. A render allocates one
// pool for its output bounds and hands every finished frame back to it.
type FramePool struct {
	bounds image.Rectangle
	pool   sync.Pool
}

func NewFramePool(bounds image.Rectangle) *FramePool {
	p := &FramePool{bounds: bounds}
	p.pool.New = func() any { return image.NewRGBA(bounds) }
	return p
}

// Bounds is the size of every frame the pool returns.
func (p *FramePool) Bounds() image.Rectangle { return p.bounds }

// Get returns a frame. Its pixels are not cleared.
func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put hands a frame back. Frames of another size are left to the collector.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect != p.bounds {
		return
	}
	p.pool.Put(img)
}
