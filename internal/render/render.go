// Package render rasterizes compiled compositions. Frames are evaluated out
// of order on a worker pool and handed to a Sink strictly in order.
package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/framegen/internal/composition"
	"github.com/ivlev/framegen/internal/config"
	"github.com/ivlev/framegen/internal/source"
	"github.com/ivlev/framegen/internal/system"
)

// Sink consumes rendered frames in index order. The image is recycled after
// WriteFrame returns and must not be retained.
type Sink interface {
	WriteFrame(index int, img *image.RGBA) error
	Close() error
}

// Stats summarizes a finished render.
type Stats struct {
	ID      string        `json:"id"`
	Frames  int           `json:"frames"`
	Workers int           `json:"workers"`
	Elapsed time.Duration `json:"elapsed"`
}

// FPS is the effective rendering speed.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

type Renderer struct {
	program   *composition.Program
	cfg       *config.Config
	backdrops *source.Backdrops
	sink      Sink
	id        string
	logger    *slog.Logger
	bounds    image.Rectangle
	frames    *system.FramePool
}

func New(p *composition.Program, cfg *config.Config, sink Sink) *Renderer {
	w, h := p.Size()
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = 150
	}
	id := uuid.NewString()
	bounds := image.Rect(0, 0, w, h)
	return &Renderer{
		program:   p,
		cfg:       cfg,
		backdrops: source.NewBackdrops(w, h, dpi),
		sink:      sink,
		id:        id,
		logger:    slog.Default().With("render_id", id),
		bounds:    bounds,
		frames:    system.NewFramePool(bounds),
	}
}

// ID identifies this render in logs.
func (r *Renderer) ID() string { return r.id }

type frameResult struct {
	index int
	img   *image.RGBA
}

// Run renders every frame of the program into the sink. The sink is not
// closed.
func (r *Renderer) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	total := r.program.Duration()

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = system.DefaultWorkers()
	}
	inFlight := system.MaxInFlightFrames(r.bounds.Dx(), r.bounds.Dy())
	if inFlight < workers {
		inFlight = workers
	}

	r.logger.Info("render started",
		"composition", r.program.ID(),
		"frames", total,
		"size", fmt.Sprintf("%dx%d", r.bounds.Dx(), r.bounds.Dy()),
		"workers", workers,
		"in_flight", inFlight)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// A token is held from dispatch until the sink has consumed the frame,
	// which bounds the reorder buffer.
	tokens := make(chan struct{}, inFlight)
	results := make(chan frameResult, inFlight)

	type collectResult struct {
		written int
		err     error
	}
	collected := make(chan collectResult, 1)
	go func() {
		n, err := r.collect(results, tokens, total, cancel)
		collected <- collectResult{n, err}
	}()

dispatch:
	for i := 0; i < total; i++ {
		select {
		case tokens <- struct{}{}:
		case <-gctx.Done():
			break dispatch
		}
		index := i
		g.Go(func() error {
			img, err := r.renderFrame(index)
			if err != nil {
				return fmt.Errorf("frame %d: %w", index, err)
			}
			results <- frameResult{index: index, img: img}
			return nil
		})
	}

	err := g.Wait()
	close(results)
	c := <-collected
	switch {
	case c.err != nil:
		return Stats{}, c.err
	case err != nil:
		return Stats{}, err
	case ctx.Err() != nil:
		return Stats{}, ctx.Err()
	case c.written != total:
		return Stats{}, fmt.Errorf("rendered %d of %d frames", c.written, total)
	}

	stats := Stats{ID: r.id, Frames: total, Workers: workers, Elapsed: time.Since(start)}
	r.logger.Info("render finished", "frames", total, "elapsed", stats.Elapsed.Round(time.Millisecond), "fps", fmt.Sprintf("%.1f", stats.FPS()))
	return stats, nil
}

// collect reorders results and writes them to the sink. After a sink error
// it cancels the render and keeps draining so that workers never block.
func (r *Renderer) collect(results <-chan frameResult, tokens <-chan struct{}, total int, cancel context.CancelFunc) (int, error) {
	pending := make(map[int]*image.RGBA)
	next := 0
	var sinkErr error
	step := total / 10

	release := func(img *image.RGBA) {
		r.frames.Put(img)
		<-tokens
	}

	for res := range results {
		if sinkErr != nil {
			release(res.img)
			continue
		}
		pending[res.index] = res.img
		for {
			img, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			err := r.sink.WriteFrame(next, img)
			release(img)
			if err != nil {
				sinkErr = fmt.Errorf("write frame %d: %w", next, err)
				cancel()
				for i, img := range pending {
					delete(pending, i)
					release(img)
				}
				break
			}
			if step > 0 && next%step == 0 {
				r.logger.Debug("frame ready", "frame", next, "frames", total)
			}
			next++
		}
	}

	for _, img := range pending {
		r.frames.Put(img)
	}
	return next, sinkErr
}
