package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/banshee-data/xyzlut/internal/units"
)

// DefaultConfigPath is the path to the canonical projection defaults file.
const DefaultConfigPath = "config/xyz.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Defaults applied by the Get* accessors when a field is unset.
const (
	DefaultRangeUnit    = 1.0 // millimetres in, millimetres out
	DefaultUDPPort      = 7502
	DefaultOutputFormat = "asc"
	DefaultOutputDir    = "clouds"
	DefaultLogInterval  = 5 * time.Second
)

// ProjectionConfig holds the runtime settings of the xyz tool. Every field
// is optional; omitted fields fall back to the defaults above.
type ProjectionConfig struct {
	// Pool
	Workers *int `json:"workers,omitempty"` // 0 means GOMAXPROCS

	// Lookup table
	RangeUnit *float64 `json:"range_unit,omitempty"` // output units per input mm
	Units     *string  `json:"units,omitempty"`      // named output unit, used when range_unit is unset

	// Capture replay
	UDPPort   *int `json:"udp_port,omitempty"` // 0 accepts any port
	MaxFrames *int `json:"max_frames,omitempty"`

	// Export
	OutputFormat *string `json:"output_format,omitempty"` // "asc" or "pcd"
	OutputDir    *string `json:"output_dir,omitempty"`
	Destagger    *bool   `json:"destagger,omitempty"` // align columns to azimuth before export

	// Logging
	LogInterval *string `json:"log_interval,omitempty"` // duration string like "5s"
}

func ptrInt(v int) *int             { return &v }
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrBool(v bool) *bool          { return &v }

// EmptyProjectionConfig returns a config with every field unset.
func EmptyProjectionConfig() *ProjectionConfig {
	return &ProjectionConfig{}
}

// LoadProjectionConfig reads and validates a JSON config file. The file
// must have a .json extension and be under 1MB.
func LoadProjectionConfig(path string) (*ProjectionConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyProjectionConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching parent
// directories so tests can call it from any package. Panics on failure.
func MustLoadDefaultConfig() *ProjectionConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadProjectionConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *ProjectionConfig) Validate() error {
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.RangeUnit != nil {
		u := *c.RangeUnit
		if u <= 0 || math.IsNaN(u) || math.IsInf(u, 0) {
			return fmt.Errorf("range_unit must be a positive finite number, got %g", u)
		}
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), *c.Units)
	}
	if c.UDPPort != nil && (*c.UDPPort < 0 || *c.UDPPort > 65535) {
		return fmt.Errorf("udp_port must be between 0 and 65535, got %d", *c.UDPPort)
	}
	if c.MaxFrames != nil && *c.MaxFrames < 0 {
		return fmt.Errorf("max_frames must be non-negative, got %d", *c.MaxFrames)
	}
	if c.OutputFormat != nil {
		switch strings.ToLower(*c.OutputFormat) {
		case "asc", "pcd":
		default:
			return fmt.Errorf("output_format must be asc or pcd, got %q", *c.OutputFormat)
		}
	}
	if c.LogInterval != nil && *c.LogInterval != "" {
		d, err := time.ParseDuration(*c.LogInterval)
		if err != nil {
			return fmt.Errorf("invalid log_interval '%s': %w", *c.LogInterval, err)
		}
		if d < 0 {
			return fmt.Errorf("log_interval must be non-negative, got %s", d)
		}
	}
	return nil
}

// GetWorkers returns the pool size, resolving 0 or unset to GOMAXPROCS.
func (c *ProjectionConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return *c.Workers
}

// GetRangeUnit returns range_unit if set, else the scale of units, else
// DefaultRangeUnit.
func (c *ProjectionConfig) GetRangeUnit() float64 {
	if c.RangeUnit != nil {
		return *c.RangeUnit
	}
	if c.Units != nil {
		return units.PerMillimetre(*c.Units)
	}
	return DefaultRangeUnit
}

// GetUDPPort returns the capture filter port or DefaultUDPPort.
func (c *ProjectionConfig) GetUDPPort() int {
	if c.UDPPort == nil {
		return DefaultUDPPort
	}
	return *c.UDPPort
}

// GetMaxFrames returns the frame limit; 0 means unlimited.
func (c *ProjectionConfig) GetMaxFrames() int {
	if c.MaxFrames == nil {
		return 0
	}
	return *c.MaxFrames
}

// GetOutputFormat returns the lower-cased export format or DefaultOutputFormat.
func (c *ProjectionConfig) GetOutputFormat() string {
	if c.OutputFormat == nil || *c.OutputFormat == "" {
		return DefaultOutputFormat
	}
	return strings.ToLower(*c.OutputFormat)
}

// GetOutputDir returns the export directory or DefaultOutputDir.
func (c *ProjectionConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

// GetDestagger reports whether exported clouds are destaggered.
func (c *ProjectionConfig) GetDestagger() bool {
	return c.Destagger != nil && *c.Destagger
}

// GetLogInterval returns the progress log interval or DefaultLogInterval.
func (c *ProjectionConfig) GetLogInterval() time.Duration {
	if c.LogInterval == nil || *c.LogInterval == "" {
		return DefaultLogInterval
	}
	d, err := time.ParseDuration(*c.LogInterval)
	if err != nil {
		return DefaultLogInterval
	}
	return d
}

// Override copies every field set in o over c.
func (c *ProjectionConfig) Override(o *ProjectionConfig) {
	if o == nil {
		return
	}
	if o.Workers != nil {
		c.Workers = ptrInt(*o.Workers)
	}
	if o.RangeUnit != nil {
		c.RangeUnit = ptrFloat64(*o.RangeUnit)
	}
	if o.Units != nil {
		c.Units = ptrString(*o.Units)
		c.RangeUnit = nil
	}
	if o.UDPPort != nil {
		c.UDPPort = ptrInt(*o.UDPPort)
	}
	if o.MaxFrames != nil {
		c.MaxFrames = ptrInt(*o.MaxFrames)
	}
	if o.OutputFormat != nil {
		c.OutputFormat = ptrString(*o.OutputFormat)
	}
	if o.OutputDir != nil {
		c.OutputDir = ptrString(*o.OutputDir)
	}
	if o.Destagger != nil {
		c.Destagger = ptrBool(*o.Destagger)
	}
	if o.LogInterval != nil {
		c.LogInterval = ptrString(*o.LogInterval)
	}
}
