package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/xyzlut/internal/lidar/geometry"
)

func TestDefault(t *testing.T) {
	info, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "992011000121", info.ProdSN)
	assert.Equal(t, 16, info.Format.PixelsPerColumn)
	assert.Equal(t, 1024, info.Format.ColumnsPerFrame)
	assert.Equal(t, 16, info.Format.ColumnsPerPacket)
	assert.Len(t, info.BeamAltitudeAngles, 16)
	assert.Len(t, info.BeamAzimuthAngles, 16)
	assert.Len(t, info.Format.PixelShiftByRow, 16)

	_, err = geometry.Validate(info.Geometry())
	assert.NoError(t, err)
}

func TestGeometry(t *testing.T) {
	info := &SensorInfo{
		BeamAltitudeAngles:        []float64{1, -1},
		BeamAzimuthAngles:         []float64{2, -2},
		LidarOriginToBeamOriginMM: 12.5,
		Format:                    DataFormat{PixelsPerColumn: 2, ColumnsPerFrame: 512},
	}
	g := info.Geometry()
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 512, g.Columns())
	assert.Equal(t, [3]float64{12.5, 0, 0}, g.BeamOriginOffset())
	if diff := cmp.Diff(info.BeamAzimuthAngles, g.BeamAzimuthAngles()); diff != "" {
		t.Errorf("azimuths mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_LegacyModeOnly(t *testing.T) {
	data := []byte(`{
		"lidar_mode": "2048x10",
		"beam_altitude_angles": [0.5],
		"beam_azimuth_angles": [0.1],
		"data_format": {"pixels_per_column": 1}
	}`)
	info, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2048, info.Format.ColumnsPerFrame)
	assert.Equal(t, defaultColumnsPerPacket, info.Format.ColumnsPerPacket)
}

func TestParse_BeamIntrinsics(t *testing.T) {
	data := []byte(`{
		"beam_intrinsics": {
			"beam_altitude_angles": [10, -10],
			"beam_azimuth_angles": [1, -1],
			"lidar_origin_to_beam_origin_mm": 15.806
		},
		"data_format": {"pixels_per_column": 2, "columns_per_frame": 1024}
	}`)
	info, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, -10}, info.BeamAltitudeAngles)
	assert.Equal(t, []float64{1, -1}, info.BeamAzimuthAngles)
	assert.Equal(t, 15.806, info.LidarOriginToBeamOriginMM)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"bad mode", `{"lidar_mode": "fast"}`},
		{"bad mode columns", `{"lidar_mode": "abcx10"}`},
		{"bad mode rate", `{"lidar_mode": "1024xten"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParse_InconsistentGeometryStillParses(t *testing.T) {
	// Validation belongs to lookup table construction.
	info, err := Parse([]byte(`{"beam_altitude_angles": [1, 2, 3], "data_format": {"pixels_per_column": 2, "columns_per_frame": 8}}`))
	require.NoError(t, err)
	_, err = geometry.Validate(info.Geometry())
	assert.ErrorIs(t, err, geometry.ErrAngleLengthMismatch)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	raw, err := DefaultJSON()
	require.NoError(t, err)

	path := filepath.Join(dir, "meta.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	info, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "OS-1-16", info.ProdLine)

	_, err = Load(filepath.Join(dir, "meta.txt"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	info, err := Default()
	require.NoError(t, err)
	data, err := info.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(info, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
