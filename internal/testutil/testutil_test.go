package testutil

import (
	"errors"
	"testing"

	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
	"github.com/banshee-data/xyzlut/internal/monitoring"
)

func TestAssertHelpers_Pass(t *testing.T) {
	fakeT := &testing.T{}
	AssertNoError(fakeT, nil)
	AssertError(fakeT, errors.New("boom"))
	if fakeT.Failed() {
		t.Error("expected no failure")
	}
}

func TestCaptureLogs(t *testing.T) {
	buf := CaptureLogs(t)
	monitoring.Component("pipeline")("projected %d frames", 3)

	if !buf.Contains("[pipeline] projected 3 frames") {
		t.Errorf("captured lines = %q", buf.Lines())
	}
}

func TestMuteLogs(t *testing.T) {
	buf := CaptureLogs(t)
	t.Run("muted", func(t *testing.T) {
		MuteLogs(t)
		monitoring.Logf("hidden")
	})
	monitoring.Logf("visible")

	lines := buf.Lines()
	if len(lines) != 1 || lines[0] != "visible" {
		t.Errorf("captured lines = %q, want [visible]", lines)
	}
}

func TestAssertCloudsNear(t *testing.T) {
	a := xyzlut.NewPointCloud(1, 2)
	b := xyzlut.NewPointCloud(1, 2)
	b.XYZ[4] = 1e-9

	AssertCloudsNear(t, a, b, 1e-6)
}
