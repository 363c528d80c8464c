package engine

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ivlev/motion2video/internal/composition"
	"github.com/ivlev/motion2video/internal/config"
	"github.com/ivlev/motion2video/internal/renderer"
	"github.com/ivlev/motion2video/internal/source"
	"github.com/ivlev/motion2video/internal/system"
)

// Sink receives rendered frames in ascending order. img is only valid
// for the duration of the call.
type Sink func(frame int, img *image.RGBA) error

type rendered struct {
	frame int
	img   *image.RGBA
	took  time.Duration
}

// RenderFrames renders frames fr of comp on workers goroutines and hands
// them to sink strictly in order. At most 2*workers frames are in flight
// at once, finished or not. The first error from evaluation, drawing or
// the sink stops the run.
func RenderFrames(ctx context.Context, comp *composition.Composition, assets source.Assets, fr config.FrameRange, workers int, metrics *Metrics, sink Sink) error {
	workers = max(workers, 1)
	renderers := make(chan *renderer.Renderer, workers)
	defer func() {
		close(renderers)
		for r := range renderers {
			r.Close()
		}
	}()
	for i := 0; i < workers; i++ {
		r, err := renderer.New(assets)
		if err != nil {
			return err
		}
		renderers <- r
	}

	window := int64(2 * workers)
	sem := semaphore.NewWeighted(window)
	results := make(chan rendered, window)
	rect := image.Rect(0, 0, comp.Width, comp.Height)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(results)
		work, wctx := errgroup.WithContext(gctx)
		work.SetLimit(workers)
		for f := fr.Start; f < fr.End; f++ {
			if err := sem.Acquire(wctx, 1); err != nil {
				break
			}
			frame := f
			work.Go(func() error {
				r := <-renderers
				defer func() { renderers <- r }()

				start := time.Now()
				st, err := comp.Evaluate(frame)
				if err != nil {
					sem.Release(1)
					return err
				}
				img := system.GetImage(rect)
				if err := r.Render(st, img); err != nil {
					system.PutImage(img)
					sem.Release(1)
					return fmt.Errorf("composition %q: %w", comp.ID, err)
				}

				select {
				case results <- rendered{frame: frame, img: img, took: time.Since(start)}:
					return nil
				case <-wctx.Done():
					system.PutImage(img)
					sem.Release(1)
					return wctx.Err()
				}
			})
		}
		if err := work.Wait(); err != nil {
			return err
		}
		return gctx.Err()
	})

	g.Go(func() error {
		pending := make(map[int]rendered)
		defer func() {
			for _, res := range pending {
				system.PutImage(res.img)
			}
		}()
		next := fr.Start
		for res := range results {
			pending[res.frame] = res
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				err := sink(next, ready.img)
				system.PutImage(ready.img)
				sem.Release(1)
				if err != nil {
					return fmt.Errorf("frame %d: %w", next, err)
				}
				metrics.frameRendered(ready.took)
				next++
			}
		}
		if next != fr.End {
			return gctx.Err()
		}
		return nil
	})

	return g.Wait()
}
