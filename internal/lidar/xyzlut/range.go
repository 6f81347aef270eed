package xyzlut

import "fmt"

// Width identifies the unsigned integer encoding of a RangeFrame.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

func (w Width) String() string {
	switch w {
	case Width8, Width16, Width32, Width64:
		return fmt.Sprintf("uint%d", uint8(w))
	default:
		return fmt.Sprintf("Width(%d)", uint8(w))
	}
}

// Unsigned is the set of range sample encodings a RangeFrame can hold.
type Unsigned interface {
	uint8 | uint16 | uint32 | uint64
}

// RangeFrame is a rows x columns grid of range samples in millimetres,
// row-major over (beam, column). Exactly one backing slice is set and Width
// records which. The frame references the caller's slice without copying.
type RangeFrame struct {
	rows    int
	columns int
	width   Width
	u8      []uint8
	u16     []uint16
	u32     []uint32
	u64     []uint64
}

// NewRangeFrame wraps data as a rows x columns frame of the matching width.
// len(data) must equal rows*columns.
func NewRangeFrame[T Unsigned](rows, columns int, data []T) (RangeFrame, error) {
	if rows < 0 || columns < 0 || len(data) != rows*columns {
		return RangeFrame{}, fmt.Errorf("%w: %d samples for a %dx%d frame", ErrShapeMismatch, len(data), rows, columns)
	}
	f := RangeFrame{rows: rows, columns: columns}
	switch d := any(data).(type) {
	case []uint8:
		f.width, f.u8 = Width8, d
	case []uint16:
		f.width, f.u16 = Width16, d
	case []uint32:
		f.width, f.u32 = Width32, d
	case []uint64:
		f.width, f.u64 = Width64, d
	}
	return f, nil
}

// NewRangeFrame8 wraps 8-bit samples.
func NewRangeFrame8(rows, columns int, data []uint8) (RangeFrame, error) {
	return NewRangeFrame(rows, columns, data)
}

// NewRangeFrame16 wraps 16-bit samples.
func NewRangeFrame16(rows, columns int, data []uint16) (RangeFrame, error) {
	return NewRangeFrame(rows, columns, data)
}

// NewRangeFrame32 wraps 32-bit samples.
func NewRangeFrame32(rows, columns int, data []uint32) (RangeFrame, error) {
	return NewRangeFrame(rows, columns, data)
}

// NewRangeFrame64 wraps 64-bit samples.
func NewRangeFrame64(rows, columns int, data []uint64) (RangeFrame, error) {
	return NewRangeFrame(rows, columns, data)
}

// Rows returns the number of beams in the frame.
func (f RangeFrame) Rows() int { return f.rows }

// Columns returns the number of columns in the frame.
func (f RangeFrame) Columns() int { return f.columns }

// Width returns the sample encoding; zero for the zero RangeFrame.
func (f RangeFrame) Width() Width { return f.width }

// Len returns rows*columns.
func (f RangeFrame) Len() int { return f.rows * f.columns }

// At returns the sample at (row, col) widened to uint64.
func (f RangeFrame) At(row, col int) uint64 {
	i := row*f.columns + col
	switch f.width {
	case Width8:
		return uint64(f.u8[i])
	case Width16:
		return uint64(f.u16[i])
	case Width32:
		return uint64(f.u32[i])
	case Width64:
		return f.u64[i]
	}
	panic("xyzlut: At on zero RangeFrame")
}
