package parse

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogWriters(t *testing.T) {
	var ops bytes.Buffer
	SetLogWriters(&ops, nil, nil)
	defer SetLogWriters(nil, nil, nil)

	if opsLogger == nil {
		t.Fatal("opsLogger should be non-nil after SetLogWriters with a writer")
	}
	if diagLogger != nil || traceLogger != nil {
		t.Fatal("diag and trace loggers should be nil when passed nil writers")
	}

	opsf("dropped %d", 3)
	if !strings.Contains(ops.String(), "[packets] ") || !strings.Contains(ops.String(), "dropped 3") {
		t.Errorf("unexpected ops output %q", ops.String())
	}

	SetLogWriters(nil, nil, nil)
	// Should not panic when no logger is configured.
	opsf("silently discarded")
	diagf("silently discarded")
	tracef("silently discarded")
}

func TestParsePacket_LogsRejection(t *testing.T) {
	var ops bytes.Buffer
	SetLogWriters(&ops, nil, nil)
	defer SetLogWriters(nil, nil, nil)

	p := NewParser(PacketFormat{PixelsPerColumn: 1, ColumnsPerPacket: 1, ColumnsPerFrame: 4})
	if _, err := p.ParsePacket([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected size error")
	}
	if !strings.Contains(ops.String(), "rejected packet 1: 3 bytes, want 32") {
		t.Errorf("unexpected ops output %q", ops.String())
	}
}

func TestNewParser_LogsLayout(t *testing.T) {
	var diag bytes.Buffer
	SetLogWriters(nil, &diag, nil)
	defer SetLogWriters(nil, nil, nil)

	NewParser(PacketFormat{PixelsPerColumn: 16, ColumnsPerPacket: 16, ColumnsPerFrame: 1024})
	want := "[packets diag] "
	if !strings.Contains(diag.String(), want) {
		t.Errorf("diag output %q missing prefix %q", diag.String(), want)
	}
	if !strings.Contains(diag.String(), "16 beams x 1024 columns, 16 columns per packet, 3392 bytes per packet") {
		t.Errorf("unexpected diag output %q", diag.String())
	}
}
