package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyProjectionConfig()

	if got := cfg.GetWorkers(); got != runtime.GOMAXPROCS(0) {
		t.Errorf("GetWorkers() = %d, want GOMAXPROCS", got)
	}
	if got := cfg.GetRangeUnit(); got != DefaultRangeUnit {
		t.Errorf("GetRangeUnit() = %g", got)
	}
	if got := cfg.GetUDPPort(); got != DefaultUDPPort {
		t.Errorf("GetUDPPort() = %d", got)
	}
	if got := cfg.GetMaxFrames(); got != 0 {
		t.Errorf("GetMaxFrames() = %d", got)
	}
	if got := cfg.GetOutputFormat(); got != "asc" {
		t.Errorf("GetOutputFormat() = %q", got)
	}
	if got := cfg.GetOutputDir(); got != DefaultOutputDir {
		t.Errorf("GetOutputDir() = %q", got)
	}
	if got := cfg.GetLogInterval(); got != DefaultLogInterval {
		t.Errorf("GetLogInterval() = %v", got)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetUDPPort() != 7502 {
		t.Errorf("udp_port = %d, want 7502", cfg.GetUDPPort())
	}
	if cfg.GetRangeUnit() != 1.0 {
		t.Errorf("range_unit = %g, want 1", cfg.GetRangeUnit())
	}
	if cfg.GetLogInterval() != 5*time.Second {
		t.Errorf("log_interval = %v", cfg.GetLogInterval())
	}
}

func TestLoadProjectionConfig_Partial(t *testing.T) {
	path := writeConfig(t, "xyz.json", `{"workers": 3, "range_unit": 0.001, "output_format": "PCD"}`)
	cfg, err := LoadProjectionConfig(path)
	if err != nil {
		t.Fatalf("LoadProjectionConfig: %v", err)
	}
	if cfg.GetWorkers() != 3 {
		t.Errorf("workers = %d", cfg.GetWorkers())
	}
	if cfg.GetRangeUnit() != 0.001 {
		t.Errorf("range_unit = %g", cfg.GetRangeUnit())
	}
	if cfg.GetOutputFormat() != "pcd" {
		t.Errorf("output_format = %q", cfg.GetOutputFormat())
	}
	if cfg.GetUDPPort() != DefaultUDPPort {
		t.Errorf("udp_port = %d, want default", cfg.GetUDPPort())
	}
}

func TestLoadProjectionConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"extension", "xyz.yaml", `{}`, ".json extension"},
		{"syntax", "xyz.json", `{`, "failed to parse"},
		{"workers", "xyz.json", `{"workers": -1}`, "workers"},
		{"range unit", "xyz.json", `{"range_unit": 0}`, "range_unit"},
		{"units", "xyz.json", `{"units": "furlong"}`, "units"},
		{"port", "xyz.json", `{"udp_port": 70000}`, "udp_port"},
		{"max frames", "xyz.json", `{"max_frames": -2}`, "max_frames"},
		{"format", "xyz.json", `{"output_format": "ply"}`, "output_format"},
		{"interval", "xyz.json", `{"log_interval": "soon"}`, "log_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProjectionConfig(writeConfig(t, tt.file, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadProjectionConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadProjectionConfig_TooLarge(t *testing.T) {
	body := `{"output_dir": "` + strings.Repeat("a", maxFileSize) + `"}`
	if _, err := LoadProjectionConfig(writeConfig(t, "big.json", body)); err == nil {
		t.Error("expected size error")
	}
}

func TestOverride(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	cfg.Override(&ProjectionConfig{Workers: ptrInt(2), OutputDir: ptrString("out")})
	cfg.Override(nil)

	if cfg.GetWorkers() != 2 {
		t.Errorf("workers = %d", cfg.GetWorkers())
	}
	if cfg.GetOutputDir() != "out" {
		t.Errorf("output_dir = %q", cfg.GetOutputDir())
	}
	if cfg.GetOutputFormat() != "asc" {
		t.Errorf("output_format = %q", cfg.GetOutputFormat())
	}
	if cfg.GetDestagger() {
		t.Error("destagger should default to false")
	}

	cfg.Override(&ProjectionConfig{Destagger: ptrBool(true)})
	if !cfg.GetDestagger() {
		t.Error("destagger override not applied")
	}
}

func TestGetRangeUnit_Units(t *testing.T) {
	cfg := &ProjectionConfig{Units: ptrString("m")}
	if got := cfg.GetRangeUnit(); got != 0.001 {
		t.Errorf("units m: GetRangeUnit() = %g, want 0.001", got)
	}

	cfg.RangeUnit = ptrFloat64(0.01)
	if got := cfg.GetRangeUnit(); got != 0.01 {
		t.Errorf("range_unit wins: GetRangeUnit() = %g, want 0.01", got)
	}

	cfg.Override(&ProjectionConfig{Units: ptrString("cm")})
	if got := cfg.GetRangeUnit(); got != 0.1 {
		t.Errorf("after units override: GetRangeUnit() = %g, want 0.1", got)
	}
}
