package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/xyzlut/internal/lidar/l1packets"
	"github.com/banshee-data/xyzlut/internal/lidar/l2frames"
	"github.com/banshee-data/xyzlut/internal/lidar/metadata"
	"github.com/banshee-data/xyzlut/internal/lidar/network"
	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
	"github.com/banshee-data/xyzlut/internal/monitoring"
)

var logf = monitoring.Component("pipeline")

// errFrameLimit stops a replay once MaxFrames scans have been queued.
var errFrameLimit = errors.New("frame limit reached")

// ReplayOptions controls a capture replay.
type ReplayOptions struct {
	UDPPort     int           // 0 accepts any port
	MaxFrames   int           // 0 means no limit
	LogInterval time.Duration // 0 disables progress logging
}

// ReplaySummary reports what a replay did.
type ReplaySummary struct {
	Capture network.ReplayStats
	Batcher l2frames.BatcherStats
	Pool    PoolStats

	PacketsRejected int
}

// ReplayFile opens path and calls Replay.
func (p *Pool) ReplayFile(ctx context.Context, path string, info *metadata.SensorInfo, opts ReplayOptions, sink func(Result) error) (ReplaySummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReplaySummary{}, err
	}
	defer f.Close()
	return p.Replay(ctx, f, info, opts, sink)
}

// Replay decodes a capture of info's sensor into scans and projects them
// on the pool. Scans are numbered in arrival order; sink sees them in
// completion order.
func (p *Pool) Replay(ctx context.Context, r io.Reader, info *metadata.SensorInfo, opts ReplayOptions, sink func(Result) error) (ReplaySummary, error) {
	var summary ReplaySummary

	format, err := l1packets.NewPacketFormat(info)
	if err != nil {
		return summary, err
	}
	parser := l1packets.NewParser(format)
	batcher := l2frames.NewScanBatcher(format)

	frames := make(chan Frame, p.workers)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.Stream(gctx, frames, sink)
	})

	g.Go(func() error {
		defer close(frames)

		next := 0
		send := func(src xyzlut.RangeSource, frameID int) error {
			if opts.MaxFrames > 0 && next >= opts.MaxFrames {
				return errFrameLimit
			}
			select {
			case frames <- Frame{Index: next, FrameID: frameID, Source: src}:
				next++
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		stopProgress := p.logProgress(gctx, opts.LogInterval)
		defer stopProgress()

		stats, err := network.ReadPCAP(gctx, r, opts.UDPPort, func(payload []byte, _ time.Time) error {
			columns, err := parser.ParsePacket(payload)
			if err != nil {
				// Counted by the parser; a bad packet only costs its columns.
				return nil
			}
			for _, s := range batcher.AddPacket(columns) {
				if err := send(xyzlut.ScanChannel(s), s.FrameID); err != nil {
					return err
				}
			}
			return nil
		})
		summary.Capture = stats
		if errors.Is(err, errFrameLimit) {
			return nil
		}
		if err != nil {
			return err
		}
		if s, ok := batcher.Flush(); ok {
			if err := send(xyzlut.ScanChannel(s), s.FrameID); err != nil && !errors.Is(err, errFrameLimit) {
				return err
			}
		}
		return nil
	})

	err = g.Wait()
	summary.Batcher = batcher.Stats()
	summary.Pool = p.Stats()
	_, summary.PacketsRejected = parser.Stats()
	logf("replay finished: %d packets, %d scans (%d incomplete), %d frames projected, %d points",
		summary.Capture.Matched, summary.Batcher.Scans, summary.Batcher.IncompleteScans,
		summary.Pool.Frames, summary.Pool.Points)
	return summary, err
}

// logProgress logs pool counters every interval until ctx ends or the
// returned stop func is called.
func (p *Pool) logProgress(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s := p.Stats()
				logf("projected %d frames, %d points", s.Frames, s.Points)
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
