package l2frames

import (
	"github.com/banshee-data/xyzlut/internal/lidar/l1packets/parse"
	"github.com/banshee-data/xyzlut/internal/lidar/scan"
)

// BatcherStats counts what the batcher has seen.
type BatcherStats struct {
	Scans           int // scans emitted, including Flush
	IncompleteScans int // emitted scans missing at least one column
	SkippedColumns  int // columns dropped for an out-of-range measurement id or bad status
}

// ScanBatcher accumulates columns into LidarScans. A scan is emitted when a
// column from a different frame id arrives, so the final scan of a capture
// is only available through Flush.
type ScanBatcher struct {
	format  parse.PacketFormat
	current *scan.LidarScan
	started bool
	stats   BatcherStats
}

// NewScanBatcher creates a batcher for scans of format's shape.
func NewScanBatcher(format parse.PacketFormat) *ScanBatcher {
	return &ScanBatcher{format: format}
}

// AddPacket adds every column of a decoded packet and returns the scans
// completed along the way, usually none or one.
func (b *ScanBatcher) AddPacket(columns []parse.Column) []*scan.LidarScan {
	var done []*scan.LidarScan
	for _, col := range columns {
		if s, ok := b.Add(col); ok {
			done = append(done, s)
		}
	}
	return done
}

// Add places col into the current scan. When col starts a new frame the
// previous scan is returned with ok set.
func (b *ScanBatcher) Add(col parse.Column) (*scan.LidarScan, bool) {
	var finished *scan.LidarScan
	if b.started && int(col.FrameID) != b.current.FrameID {
		finished = b.emit()
	}
	if !b.started {
		b.current = scan.New(b.format.PixelsPerColumn, b.format.ColumnsPerFrame)
		b.current.FrameID = int(col.FrameID)
		b.started = true
	}

	mid := int(col.MeasurementID)
	if mid >= b.format.ColumnsPerFrame || len(col.Pixels) != b.format.PixelsPerColumn || !col.Valid() {
		b.stats.SkippedColumns++
		debugf("frame %d: skipped column mid=%d status=0x%08x pixels=%d",
			col.FrameID, col.MeasurementID, col.Status, len(col.Pixels))
		return finished, finished != nil
	}

	s := b.current
	s.SetColumnHeader(mid, col.Timestamp, col.MeasurementID, col.Status)
	for row, px := range col.Pixels {
		s.Set(scan.Range, row, mid, px.Range)
		s.Set(scan.Reflectivity, row, mid, uint32(px.Reflectivity))
		s.Set(scan.Signal, row, mid, uint32(px.Signal))
		s.Set(scan.NearIR, row, mid, uint32(px.NearIR))
	}
	return finished, finished != nil
}

// Flush returns the in-progress scan, if any, and resets the batcher.
func (b *ScanBatcher) Flush() (*scan.LidarScan, bool) {
	if !b.started {
		return nil, false
	}
	return b.emit(), true
}

// Stats returns counters since construction.
func (b *ScanBatcher) Stats() BatcherStats { return b.stats }

func (b *ScanBatcher) emit() *scan.LidarScan {
	s := b.current
	b.current = nil
	b.started = false

	b.stats.Scans++
	if !s.Complete() {
		b.stats.IncompleteScans++
	}
	debugf("frame %d: emitted scan with %d/%d columns", s.FrameID, s.CompleteColumns(), s.Columns())
	return s
}
