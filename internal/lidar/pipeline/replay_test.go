package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/xyzlut/internal/lidar/metadata"
	"github.com/banshee-data/xyzlut/internal/lidar/synth"
	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
	"github.com/banshee-data/xyzlut/internal/testutil"
)

func syntheticCapture(t *testing.T, frames int) (*metadata.SensorInfo, *bytes.Buffer, [][]uint32) {
	t.Helper()
	info, err := metadata.Default()
	require.NoError(t, err)
	var buf bytes.Buffer
	images, err := synth.WriteCapture(&buf, info, frames, 7502)
	require.NoError(t, err)
	return info, &buf, images
}

func TestReplay(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	info, capture, images := syntheticCapture(t, 3)
	lut := testLUT(t)
	pool := NewPool(lut, 2)

	got := map[int]Result{}
	summary, err := pool.Replay(context.Background(), capture, info, ReplayOptions{UDPPort: 7502}, func(r Result) error {
		got[r.Index] = r
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, img := range images {
		frame, err := xyzlut.NewRangeFrame32(lut.Rows(), lut.Columns(), img)
		require.NoError(t, err)
		want, err := lut.Apply(xyzlut.Raw(frame))
		require.NoError(t, err)

		assert.Equal(t, i, got[i].FrameID)
		testutil.AssertCloudsNear(t, got[i].Cloud, want, 0)
	}

	assert.Equal(t, 3, summary.Batcher.Scans)
	assert.Zero(t, summary.Batcher.IncompleteScans)
	assert.Zero(t, summary.PacketsRejected)
	assert.Equal(t, int64(3), summary.Pool.Frames)
	assert.True(t, logs.Contains("[pipeline] replay finished"))
}

func TestReplay_MaxFrames(t *testing.T) {
	testutil.MuteLogs(t)
	info, capture, _ := syntheticCapture(t, 4)

	var n int
	summary, err := NewPool(testLUT(t), 2).Replay(context.Background(), capture, info,
		ReplayOptions{MaxFrames: 2}, func(Result) error { n++; return nil })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(2), summary.Pool.Frames)
}

func TestReplay_OtherPort(t *testing.T) {
	testutil.MuteLogs(t)
	info, capture, _ := syntheticCapture(t, 1)

	summary, err := NewPool(testLUT(t), 1).Replay(context.Background(), capture, info,
		ReplayOptions{UDPPort: 2368}, func(Result) error { return nil })
	require.NoError(t, err)
	assert.Zero(t, summary.Capture.Matched)
	assert.Zero(t, summary.Pool.Frames)
}

func TestReplay_SinkError(t *testing.T) {
	testutil.MuteLogs(t)
	info, capture, _ := syntheticCapture(t, 3)

	stop := errors.New("stop")
	_, err := NewPool(testLUT(t), 2).Replay(context.Background(), capture, info,
		ReplayOptions{}, func(Result) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestReplayFile_Missing(t *testing.T) {
	info, err := metadata.Default()
	require.NoError(t, err)
	_, err = NewPool(testLUT(t), 1).ReplayFile(context.Background(), "does-not-exist.pcap", info,
		ReplayOptions{}, func(Result) error { return nil })
	assert.Error(t, err)
}
