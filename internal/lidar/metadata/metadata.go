// Package metadata reads the JSON sensor descriptor a lidar publishes for
// its current mode: beam angles, origin offset and data format.
package metadata

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/xyzlut/internal/lidar/geometry"
)

//go:embed sensor_configs/*.json
var embeddedConfigs embed.FS

// DefaultSensorFile is the embedded descriptor used when no file is given.
const DefaultSensorFile = "sensor_configs/os-992011000121_meta.json"

const (
	defaultColumnsPerPacket = 16
	maxFileSize             = 1 * 1024 * 1024
)

// DataFormat describes how a frame is laid out on the wire.
type DataFormat struct {
	PixelsPerColumn  int    `json:"pixels_per_column"`
	ColumnsPerPacket int    `json:"columns_per_packet"`
	ColumnsPerFrame  int    `json:"columns_per_frame"`
	PixelShiftByRow  []int  `json:"pixel_shift_by_row"`
	ColumnWindow     [2]int `json:"column_window"`
}

// SensorInfo is the parsed sensor descriptor.
type SensorInfo struct {
	Hostname                  string     `json:"hostname"`
	ProdLine                  string     `json:"prod_line"`
	ProdPN                    string     `json:"prod_pn"`
	ProdSN                    string     `json:"prod_sn"`
	BuildRev                  string     `json:"build_rev"`
	LidarMode                 string     `json:"lidar_mode"`
	TimestampMode             string     `json:"timestamp_mode"`
	BeamAltitudeAngles        []float64  `json:"beam_altitude_angles"`
	BeamAzimuthAngles         []float64  `json:"beam_azimuth_angles"`
	LidarOriginToBeamOriginMM float64    `json:"lidar_origin_to_beam_origin_mm"`
	Format                    DataFormat `json:"data_format"`
}

// beamIntrinsics is the nested layout newer firmware uses for beam angles.
type beamIntrinsics struct {
	BeamAltitudeAngles        []float64 `json:"beam_altitude_angles"`
	BeamAzimuthAngles         []float64 `json:"beam_azimuth_angles"`
	LidarOriginToBeamOriginMM float64   `json:"lidar_origin_to_beam_origin_mm"`
}

type document struct {
	SensorInfo
	BeamIntrinsics *beamIntrinsics `json:"beam_intrinsics"`
}

// Parse decodes a sensor descriptor. Beam geometry is not validated here;
// that happens when a lookup table is built from Geometry().
func Parse(data []byte) (*SensorInfo, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sensor metadata JSON: %w", err)
	}
	info := doc.SensorInfo

	if bi := doc.BeamIntrinsics; bi != nil {
		if info.BeamAltitudeAngles == nil {
			info.BeamAltitudeAngles = bi.BeamAltitudeAngles
		}
		if info.BeamAzimuthAngles == nil {
			info.BeamAzimuthAngles = bi.BeamAzimuthAngles
		}
		if info.LidarOriginToBeamOriginMM == 0 {
			info.LidarOriginToBeamOriginMM = bi.LidarOriginToBeamOriginMM
		}
	}

	// Older descriptors only carry the mode string, e.g. "1024x10".
	if info.Format.ColumnsPerFrame == 0 && info.LidarMode != "" {
		cols, _, err := ParseLidarMode(info.LidarMode)
		if err != nil {
			return nil, err
		}
		info.Format.ColumnsPerFrame = cols
	}
	if info.Format.ColumnsPerPacket == 0 {
		info.Format.ColumnsPerPacket = defaultColumnsPerPacket
	}
	return &info, nil
}

// Load reads and parses a descriptor file.
func Load(path string) (*SensorInfo, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("metadata file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat metadata file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("metadata file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded sample descriptor.
func Default() (*SensorInfo, error) {
	data, err := DefaultJSON()
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// DefaultJSON returns the raw embedded sample descriptor.
func DefaultJSON() ([]byte, error) {
	data, err := embeddedConfigs.ReadFile(DefaultSensorFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded sensor metadata: %w", err)
	}
	return data, nil
}

// ParseLidarMode splits a mode string "<columns>x<hz>".
func ParseLidarMode(mode string) (columns, hz int, err error) {
	w, f, ok := strings.Cut(mode, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid lidar mode %q: expected <columns>x<rate>", mode)
	}
	if columns, err = strconv.Atoi(w); err != nil {
		return 0, 0, fmt.Errorf("invalid lidar mode %q: %w", mode, err)
	}
	if hz, err = strconv.Atoi(f); err != nil {
		return 0, 0, fmt.Errorf("invalid lidar mode %q: %w", mode, err)
	}
	return columns, hz, nil
}

// Geometry returns the beam geometry. The origin offset lies along the
// beam's radial axis, i.e. (lidar_origin_to_beam_origin_mm, 0, 0) before
// rotation by the pixel azimuth.
func (s *SensorInfo) Geometry() geometry.Descriptor {
	return geometry.NewBuilder().
		Rows(s.Format.PixelsPerColumn).
		Columns(s.Format.ColumnsPerFrame).
		BeamAltitudeAngles(s.BeamAltitudeAngles).
		BeamAzimuthAngles(s.BeamAzimuthAngles).
		BeamOriginOffset(s.LidarOriginToBeamOriginMM, 0, 0).
		Build()
}

// Marshal encodes the descriptor back to JSON.
func (s *SensorInfo) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
