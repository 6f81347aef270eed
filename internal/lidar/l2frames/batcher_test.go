package l2frames

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/xyzlut/internal/lidar/l1packets/parse"
	"github.com/banshee-data/xyzlut/internal/lidar/scan"
)

var testFormat = parse.PacketFormat{PixelsPerColumn: 2, ColumnsPerPacket: 2, ColumnsPerFrame: 4}

func column(frameID, mid uint16) parse.Column {
	return parse.Column{
		Timestamp:     uint64(mid) * 1000,
		MeasurementID: mid,
		FrameID:       frameID,
		Status:        parse.ColumnStatusValid,
		Pixels: []parse.Pixel{
			{Range: 1000 + uint32(mid), Signal: 7},
			{Range: 2000 + uint32(mid), Reflectivity: 3, NearIR: 9},
		},
	}
}

func TestScanBatcher_EmitsOnFrameChange(t *testing.T) {
	b := NewScanBatcher(testFormat)

	for mid := uint16(0); mid < 4; mid++ {
		s, ok := b.Add(column(10, mid))
		assert.False(t, ok)
		assert.Nil(t, s)
	}

	s, ok := b.Add(column(11, 0))
	require.True(t, ok)
	assert.Equal(t, 10, s.FrameID)
	assert.True(t, s.Complete())
	assert.Equal(t, uint32(1003), s.Get(scan.Range, 0, 3))
	assert.Equal(t, uint32(2001), s.Get(scan.Range, 1, 1))
	assert.Equal(t, uint32(3), s.Get(scan.Reflectivity, 1, 2))
	assert.Equal(t, uint32(7), s.Get(scan.Signal, 0, 0))
	assert.Equal(t, uint32(9), s.Get(scan.NearIR, 1, 0))
	assert.Equal(t, []uint64{0, 1000, 2000, 3000}, s.Timestamps())

	rest, ok := b.Flush()
	require.True(t, ok)
	assert.Equal(t, 11, rest.FrameID)
	assert.Equal(t, 1, rest.CompleteColumns())

	_, ok = b.Flush()
	assert.False(t, ok)

	stats := b.Stats()
	assert.Equal(t, 2, stats.Scans)
	assert.Equal(t, 1, stats.IncompleteScans)
}

func TestScanBatcher_AddPacket(t *testing.T) {
	b := NewScanBatcher(testFormat)
	assert.Empty(t, b.AddPacket([]parse.Column{column(1, 0), column(1, 1)}))
	assert.Empty(t, b.AddPacket([]parse.Column{column(1, 2), column(1, 3)}))

	done := b.AddPacket([]parse.Column{column(2, 0), column(2, 1)})
	require.Len(t, done, 1)
	assert.Equal(t, 1, done[0].FrameID)
}

func TestScanBatcher_SkipsBadColumns(t *testing.T) {
	var buf bytes.Buffer
	SetDebugLogger(&buf)
	defer SetDebugLogger(nil)

	b := NewScanBatcher(testFormat)

	outOfRange := column(5, 4)
	badStatus := column(5, 1)
	badStatus.Status = 0
	short := column(5, 2)
	short.Pixels = short.Pixels[:1]

	for _, c := range []parse.Column{outOfRange, badStatus, short, column(5, 0)} {
		_, ok := b.Add(c)
		assert.False(t, ok)
	}
	s, ok := b.Flush()
	require.True(t, ok)
	assert.Equal(t, 1, s.CompleteColumns())
	assert.Equal(t, uint32(0), s.Get(scan.Range, 0, 1))
	assert.Equal(t, 3, b.Stats().SkippedColumns)
	assert.True(t, strings.Contains(buf.String(), "skipped column mid=4"), buf.String())
}

func TestScanBatcher_DroppedFrames(t *testing.T) {
	b := NewScanBatcher(testFormat)
	b.Add(column(1, 0))
	s, ok := b.Add(column(3, 0))
	require.True(t, ok)
	assert.Equal(t, 1, s.FrameID)
	assert.False(t, s.Complete())
}
