package parse

import (
	"encoding/binary"
	"fmt"

	"github.com/banshee-data/xyzlut/internal/lidar/metadata"
)

/*
Lidar data packet layout (all fields little-endian)

A packet carries ColumnsPerPacket consecutive measurement columns and nothing
else. Each column is:

├── Header (16 bytes)
│   ├── Timestamp      uint64  nanoseconds
│   ├── MeasurementID  uint16  column index within the frame, 0..ColumnsPerFrame-1
│   ├── FrameID        uint16  increments once per rotation, wraps at 65535
│   └── EncoderCount   uint32  raw shaft encoder position
├── Pixels (PixelsPerColumn × 12 bytes)
│   ├── Range          uint32  millimetres, low 20 bits valid (0 = no return)
│   ├── Reflectivity   uint16
│   ├── Signal         uint16
│   ├── NearIR         uint16
│   └── unused         uint16
└── Status (4 bytes)   0xFFFFFFFF when the column is good
*/
const (
	COLUMN_HEADER_SIZE = 16
	PIXEL_SIZE         = 12
	COLUMN_STATUS_SIZE = 4
	RANGE_MASK         = 0x000FFFFF

	// ColumnStatusValid marks a column carrying good data.
	ColumnStatusValid uint32 = 0xFFFFFFFF
)

// PacketFormat is the byte layout of one data packet for a sensor mode.
type PacketFormat struct {
	PixelsPerColumn  int
	ColumnsPerPacket int
	ColumnsPerFrame  int
}

// NewPacketFormat takes the layout from sensor metadata.
func NewPacketFormat(info *metadata.SensorInfo) (PacketFormat, error) {
	if info == nil {
		return PacketFormat{}, fmt.Errorf("nil sensor metadata")
	}
	f := PacketFormat{
		PixelsPerColumn:  info.Format.PixelsPerColumn,
		ColumnsPerPacket: info.Format.ColumnsPerPacket,
		ColumnsPerFrame:  info.Format.ColumnsPerFrame,
	}
	if err := f.Validate(); err != nil {
		return PacketFormat{}, err
	}
	return f, nil
}

// Validate checks that every dimension is positive.
func (f PacketFormat) Validate() error {
	if f.PixelsPerColumn <= 0 {
		return fmt.Errorf("invalid pixels per column: %d", f.PixelsPerColumn)
	}
	if f.ColumnsPerPacket <= 0 {
		return fmt.Errorf("invalid columns per packet: %d", f.ColumnsPerPacket)
	}
	if f.ColumnsPerFrame <= 0 {
		return fmt.Errorf("invalid columns per frame: %d", f.ColumnsPerFrame)
	}
	return nil
}

// ColumnSize is the number of bytes per column.
func (f PacketFormat) ColumnSize() int {
	return COLUMN_HEADER_SIZE + f.PixelsPerColumn*PIXEL_SIZE + COLUMN_STATUS_SIZE
}

// PacketSize is the number of bytes per packet.
func (f PacketFormat) PacketSize() int {
	return f.ColumnsPerPacket * f.ColumnSize()
}

// Pixel is one beam's measurement within a column.
type Pixel struct {
	Range        uint32 // millimetres, 0 = no return
	Reflectivity uint16
	Signal       uint16
	NearIR       uint16
}

// Column is one decoded measurement column.
type Column struct {
	Timestamp     uint64
	MeasurementID uint16
	FrameID       uint16
	EncoderCount  uint32
	Status        uint32
	Pixels        []Pixel
}

// Valid reports whether the sensor flagged the column as good.
func (c Column) Valid() bool {
	return c.Status == ColumnStatusValid
}

// Parser decodes data packets of a single format.
type Parser struct {
	format      PacketFormat
	packetCount int
	rejected    int
}

// NewParser creates a parser for format.
func NewParser(format PacketFormat) *Parser {
	diagf("layout: %d beams x %d columns, %d columns per packet, %d bytes per packet",
		format.PixelsPerColumn, format.ColumnsPerFrame, format.ColumnsPerPacket, format.PacketSize())
	return &Parser{format: format}
}

// Format returns the packet layout the parser expects.
func (p *Parser) Format() PacketFormat { return p.format }

// Stats returns packets seen and packets rejected for size.
func (p *Parser) Stats() (packets, rejected int) { return p.packetCount, p.rejected }

// ParsePacket decodes every column in data. The packet must be exactly
// PacketSize bytes.
func (p *Parser) ParsePacket(data []byte) ([]Column, error) {
	p.packetCount++

	if want := p.format.PacketSize(); len(data) != want {
		p.rejected++
		opsf("rejected packet %d: %d bytes, want %d", p.packetCount, len(data), want)
		return nil, fmt.Errorf("invalid packet size: expected %d, got %d", want, len(data))
	}

	columns := make([]Column, p.format.ColumnsPerPacket)
	colSize := p.format.ColumnSize()
	for i := range columns {
		columns[i] = p.parseColumn(data[i*colSize : (i+1)*colSize])
	}

	tracef("packet %d: frame %d, measurement ids %d..%d",
		p.packetCount, columns[0].FrameID, columns[0].MeasurementID, columns[len(columns)-1].MeasurementID)
	return columns, nil
}

func (p *Parser) parseColumn(data []byte) Column {
	col := Column{
		Timestamp:     binary.LittleEndian.Uint64(data[0:8]),
		MeasurementID: binary.LittleEndian.Uint16(data[8:10]),
		FrameID:       binary.LittleEndian.Uint16(data[10:12]),
		EncoderCount:  binary.LittleEndian.Uint32(data[12:16]),
		Pixels:        make([]Pixel, p.format.PixelsPerColumn),
	}

	offset := COLUMN_HEADER_SIZE
	for i := range col.Pixels {
		col.Pixels[i] = Pixel{
			Range:        binary.LittleEndian.Uint32(data[offset:offset+4]) & RANGE_MASK,
			Reflectivity: binary.LittleEndian.Uint16(data[offset+4 : offset+6]),
			Signal:       binary.LittleEndian.Uint16(data[offset+6 : offset+8]),
			NearIR:       binary.LittleEndian.Uint16(data[offset+8 : offset+10]),
		}
		offset += PIXEL_SIZE
	}
	col.Status = binary.LittleEndian.Uint32(data[offset : offset+COLUMN_STATUS_SIZE])
	return col
}

// EncodePacket serialises columns into one packet. It is the inverse of
// ParsePacket and is used to synthesise captures.
func EncodePacket(format PacketFormat, columns []Column) ([]byte, error) {
	if len(columns) != format.ColumnsPerPacket {
		return nil, fmt.Errorf("packet needs %d columns, got %d", format.ColumnsPerPacket, len(columns))
	}
	buf := make([]byte, format.PacketSize())
	colSize := format.ColumnSize()
	for i, col := range columns {
		if len(col.Pixels) != format.PixelsPerColumn {
			return nil, fmt.Errorf("column %d has %d pixels, want %d", i, len(col.Pixels), format.PixelsPerColumn)
		}
		data := buf[i*colSize : (i+1)*colSize]
		binary.LittleEndian.PutUint64(data[0:8], col.Timestamp)
		binary.LittleEndian.PutUint16(data[8:10], col.MeasurementID)
		binary.LittleEndian.PutUint16(data[10:12], col.FrameID)
		binary.LittleEndian.PutUint32(data[12:16], col.EncoderCount)

		offset := COLUMN_HEADER_SIZE
		for _, px := range col.Pixels {
			binary.LittleEndian.PutUint32(data[offset:offset+4], px.Range&RANGE_MASK)
			binary.LittleEndian.PutUint16(data[offset+4:offset+6], px.Reflectivity)
			binary.LittleEndian.PutUint16(data[offset+6:offset+8], px.Signal)
			binary.LittleEndian.PutUint16(data[offset+8:offset+10], px.NearIR)
			offset += PIXEL_SIZE
		}
		binary.LittleEndian.PutUint32(data[offset:offset+COLUMN_STATUS_SIZE], col.Status)
	}
	return buf, nil
}
