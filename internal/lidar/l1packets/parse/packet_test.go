package parse

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/xyzlut/internal/lidar/metadata"
)

func testFormat() PacketFormat {
	return PacketFormat{PixelsPerColumn: 4, ColumnsPerPacket: 2, ColumnsPerFrame: 8}
}

func testColumns(format PacketFormat, frameID uint16, firstMID uint16) []Column {
	cols := make([]Column, format.ColumnsPerPacket)
	for i := range cols {
		mid := firstMID + uint16(i)
		px := make([]Pixel, format.PixelsPerColumn)
		for r := range px {
			px[r] = Pixel{
				Range:        uint32(1000*(r+1)) + uint32(mid),
				Reflectivity: uint16(r),
				Signal:       uint16(100 + r),
				NearIR:       uint16(200 + r),
			}
		}
		cols[i] = Column{
			Timestamp:     1_700_000_000_000_000_000 + uint64(mid)*97_656,
			MeasurementID: mid,
			FrameID:       frameID,
			EncoderCount:  uint32(mid) * 88,
			Status:        ColumnStatusValid,
			Pixels:        px,
		}
	}
	return cols
}

func TestPacketFormat_Sizes(t *testing.T) {
	f := testFormat()
	assert.Equal(t, 16+4*12+4, f.ColumnSize())
	assert.Equal(t, 2*(16+4*12+4), f.PacketSize())

	// 16 beams, 16 columns per packet
	f = PacketFormat{PixelsPerColumn: 16, ColumnsPerPacket: 16, ColumnsPerFrame: 1024}
	assert.Equal(t, 16+16*12+4, f.ColumnSize())
	assert.Equal(t, 16*(16+16*12+4), f.PacketSize())
	assert.Equal(t, 3392, f.PacketSize())
}

func TestNewPacketFormat(t *testing.T) {
	info, err := metadata.Default()
	require.NoError(t, err)

	f, err := NewPacketFormat(info)
	require.NoError(t, err)
	assert.Equal(t, PacketFormat{PixelsPerColumn: 16, ColumnsPerPacket: 16, ColumnsPerFrame: 1024}, f)

	_, err = NewPacketFormat(nil)
	assert.Error(t, err)

	info.Format.PixelsPerColumn = 0
	_, err = NewPacketFormat(info)
	assert.Error(t, err)
}

func TestPacketFormat_Validate(t *testing.T) {
	tests := []PacketFormat{
		{PixelsPerColumn: 0, ColumnsPerPacket: 16, ColumnsPerFrame: 1024},
		{PixelsPerColumn: 16, ColumnsPerPacket: 0, ColumnsPerFrame: 1024},
		{PixelsPerColumn: 16, ColumnsPerPacket: 16, ColumnsPerFrame: -1},
	}
	for _, f := range tests {
		assert.Error(t, f.Validate(), "%+v", f)
	}
}

func TestParsePacket_RoundTrip(t *testing.T) {
	f := testFormat()
	want := testColumns(f, 7, 2)

	data, err := EncodePacket(f, want)
	require.NoError(t, err)
	require.Len(t, data, f.PacketSize())

	p := NewParser(f)
	got, err := p.ParsePacket(data)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded columns mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got[0].Valid())

	packets, rejected := p.Stats()
	assert.Equal(t, 1, packets)
	assert.Equal(t, 0, rejected)
}

func TestParsePacket_RangeMask(t *testing.T) {
	f := PacketFormat{PixelsPerColumn: 1, ColumnsPerPacket: 1, ColumnsPerFrame: 4}
	data := make([]byte, f.PacketSize())
	// upper 12 bits of the range word are flags and must be dropped
	binary.LittleEndian.PutUint32(data[COLUMN_HEADER_SIZE:], 0xABC00000|12345)

	cols, err := NewParser(f).ParsePacket(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(12345), cols[0].Pixels[0].Range)
	assert.False(t, cols[0].Valid())
}

func TestParsePacket_InvalidSize(t *testing.T) {
	f := testFormat()
	p := NewParser(f)
	for _, n := range []int{0, f.PacketSize() - 1, f.PacketSize() + 4} {
		_, err := p.ParsePacket(make([]byte, n))
		assert.Error(t, err, "size %d", n)
	}
	_, rejected := p.Stats()
	assert.Equal(t, 3, rejected)
}

func TestEncodePacket_Errors(t *testing.T) {
	f := testFormat()
	_, err := EncodePacket(f, testColumns(f, 0, 0)[:1])
	assert.Error(t, err)

	cols := testColumns(f, 0, 0)
	cols[1].Pixels = cols[1].Pixels[:2]
	_, err = EncodePacket(f, cols)
	assert.Error(t, err)
}
