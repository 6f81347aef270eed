// Package scan holds one rotation of lidar data as named per-pixel channels
// plus per-column headers.
package scan

import (
	"sort"

	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
)

// ChanField names a per-pixel channel.
type ChanField string

const (
	Range        ChanField = "RANGE"
	Signal       ChanField = "SIGNAL"
	Reflectivity ChanField = "REFLECTIVITY"
	NearIR       ChanField = "NEAR_IR"
)

// ColumnStatusValid is the status word of a column that carried good data.
const ColumnStatusValid uint32 = 0xFFFFFFFF

// LidarScan is a rows x columns frame. Channel data is row-major over
// (beam, column) in the sensor's staggered order, as received.
type LidarScan struct {
	FrameID int

	rows           int
	columns        int
	fields         map[ChanField][]uint32
	timestamps     []uint64
	measurementIDs []uint16
	status         []uint32
}

// New allocates a zeroed scan with the standard channels.
func New(rows, columns int) *LidarScan {
	s := &LidarScan{
		rows:           rows,
		columns:        columns,
		fields:         make(map[ChanField][]uint32, 4),
		timestamps:     make([]uint64, columns),
		measurementIDs: make([]uint16, columns),
		status:         make([]uint32, columns),
	}
	for _, f := range []ChanField{Range, Signal, Reflectivity, NearIR} {
		s.fields[f] = make([]uint32, rows*columns)
	}
	return s
}

func (s *LidarScan) Rows() int    { return s.rows }
func (s *LidarScan) Columns() int { return s.columns }

// Field returns the channel data for f, or nil if the scan has no such field.
// The slice aliases the scan.
func (s *LidarScan) Field(f ChanField) []uint32 {
	return s.fields[f]
}

// Fields lists the channels present, sorted by name.
func (s *LidarScan) Fields() []ChanField {
	out := make([]ChanField, 0, len(s.fields))
	for f := range s.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RangeField returns the RANGE channel.
func (s *LidarScan) RangeField() []uint32 {
	return s.fields[Range]
}

// Range returns the RANGE channel as a projection frame.
func (s *LidarScan) Range() (xyzlut.RangeFrame, error) {
	return xyzlut.Resolve(xyzlut.ScanChannel(s))
}

// Set writes v to channel f at (row, col).
func (s *LidarScan) Set(f ChanField, row, col int, v uint32) {
	s.fields[f][row*s.columns+col] = v
}

// Get reads channel f at (row, col).
func (s *LidarScan) Get(f ChanField, row, col int) uint32 {
	return s.fields[f][row*s.columns+col]
}

// SetColumnHeader records the header of column col.
func (s *LidarScan) SetColumnHeader(col int, timestamp uint64, measurementID uint16, status uint32) {
	s.timestamps[col] = timestamp
	s.measurementIDs[col] = measurementID
	s.status[col] = status
}

// Timestamps returns per-column timestamps in nanoseconds.
func (s *LidarScan) Timestamps() []uint64 { return s.timestamps }

// MeasurementIDs returns per-column measurement ids.
func (s *LidarScan) MeasurementIDs() []uint16 { return s.measurementIDs }

// Status returns per-column status words.
func (s *LidarScan) Status() []uint32 { return s.status }

// CompleteColumns counts columns whose status is ColumnStatusValid.
func (s *LidarScan) CompleteColumns() int {
	n := 0
	for _, st := range s.status {
		if st == ColumnStatusValid {
			n++
		}
	}
	return n
}

// Complete reports whether every column arrived with valid status.
func (s *LidarScan) Complete() bool {
	return s.CompleteColumns() == s.columns
}
