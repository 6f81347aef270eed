// Package testutil provides shared test helpers for the lidar packages.
package testutil

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
	"github.com/banshee-data/xyzlut/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// LogBuffer collects formatted monitoring log lines.
type LogBuffer struct {
	mu    sync.Mutex
	lines []string
}

// Lines returns a copy of the captured lines.
func (b *LogBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Contains reports whether any captured line contains substr.
func (b *LogBuffer) Contains(substr string) bool {
	for _, l := range b.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func (b *LogBuffer) logf(format string, v ...interface{}) {
	b.mu.Lock()
	b.lines = append(b.lines, fmt.Sprintf(format, v...))
	b.mu.Unlock()
}

// CaptureLogs routes monitoring.Logf into a buffer until the test ends.
func CaptureLogs(t testing.TB) *LogBuffer {
	t.Helper()
	prev := monitoring.Logf
	buf := &LogBuffer{}
	monitoring.SetLogger(buf.logf)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
	return buf
}

// MuteLogs silences monitoring.Logf until the test ends.
func MuteLogs(t testing.TB) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })
}

// AssertCloudsNear fails unless got and want have the same shape and every
// coordinate differs by at most tol.
func AssertCloudsNear(t testing.TB, got, want xyzlut.PointCloud, tol float64) {
	t.Helper()
	if got.Rows != want.Rows || got.Columns != want.Columns || len(got.XYZ) != len(want.XYZ) {
		t.Fatalf("cloud shape = %dx%d (%d values), want %dx%d (%d values)",
			got.Rows, got.Columns, len(got.XYZ), want.Rows, want.Columns, len(want.XYZ))
	}
	for k := range got.XYZ {
		if d := math.Abs(got.XYZ[k] - want.XYZ[k]); d > tol || math.IsNaN(d) {
			pixel := k / 3
			t.Fatalf("pixel (%d,%d) axis %d = %v, want %v (tolerance %g)",
				pixel/got.Columns, pixel%got.Columns, k%3, got.XYZ[k], want.XYZ[k], tol)
		}
	}
}
