package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
)

// Frame is one unit of work for Stream.
type Frame struct {
	Index   int // position in the input sequence
	FrameID int // sensor frame id, informational
	Source  xyzlut.RangeSource
}

// Result is a projected frame.
type Result struct {
	Index   int
	FrameID int
	Cloud   xyzlut.PointCloud
}

// PoolStats counts completed work.
type PoolStats struct {
	Frames int64 // frames projected
	Points int64 // pixels with a return across those frames
}

// Pool projects frames on a bounded number of goroutines.
type Pool struct {
	lut     *xyzlut.XYZLut
	workers int

	frames atomic.Int64
	points atomic.Int64
}

// NewPool creates a pool over lut. workers <= 0 uses GOMAXPROCS.
func NewPool(lut *xyzlut.XYZLut, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{lut: lut, workers: workers}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int { return p.workers }

// Stats returns counters accumulated since construction.
func (p *Pool) Stats() PoolStats {
	return PoolStats{Frames: p.frames.Load(), Points: p.points.Load()}
}

// ProjectAll projects every source and returns the clouds in input order.
// The first failing frame cancels the rest and its error is returned. A
// cancelled ctx returns its error and no clouds.
func (p *Pool) ProjectAll(ctx context.Context, sources []xyzlut.RangeSource) ([]xyzlut.PointCloud, error) {
	parent := ctx
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	out := make([]xyzlut.PointCloud, len(sources))
	for i, src := range sources {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cloud, err := p.lut.Apply(src)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			p.record(cloud)
			out[i] = cloud
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stream projects frames from in until it is closed, passing each result
// to sink. Results arrive in completion order; sink calls are serialised.
// A projection or sink error cancels the remaining work.
func (p *Pool) Stream(ctx context.Context, in <-chan Frame, sink func(Result) error) error {
	g, ctx := errgroup.WithContext(ctx)
	var sinkMu sync.Mutex

	for w := 0; w < p.workers; w++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case f, ok := <-in:
					if !ok {
						return nil
					}
					cloud, err := p.lut.Apply(f.Source)
					if err != nil {
						return fmt.Errorf("frame %d (id %d): %w", f.Index, f.FrameID, err)
					}
					p.record(cloud)

					sinkMu.Lock()
					err = sink(Result{Index: f.Index, FrameID: f.FrameID, Cloud: cloud})
					sinkMu.Unlock()
					if err != nil {
						return err
					}
				}
			}
		})
	}
	return g.Wait()
}

func (p *Pool) record(cloud xyzlut.PointCloud) {
	p.frames.Add(1)
	p.points.Add(int64(cloud.Count()))
}
