package xyzlut

import "fmt"

// RangeSource is the input to XYZLut.Apply: either a raw frame (Raw) or the
// range channel of a scan (ScanChannel). Both resolve to a RangeFrame before
// projection, so the same samples give the same cloud either way.
type RangeSource interface {
	resolve() (RangeFrame, error)
}

// RangeChannel is implemented by scan structures that carry a 32-bit range
// field of shape Rows() x Columns().
type RangeChannel interface {
	Rows() int
	Columns() int
	RangeField() []uint32
}

type rawSource struct {
	frame RangeFrame
}

func (s rawSource) resolve() (RangeFrame, error) { return s.frame, nil }

// Raw uses frame as-is.
func Raw(frame RangeFrame) RangeSource {
	return rawSource{frame: frame}
}

type scanSource struct {
	scan RangeChannel
}

func (s scanSource) resolve() (RangeFrame, error) {
	if s.scan == nil {
		return RangeFrame{}, fmt.Errorf("%w: nil scan", ErrShapeMismatch)
	}
	return NewRangeFrame32(s.scan.Rows(), s.scan.Columns(), s.scan.RangeField())
}

// ScanChannel extracts the range field of scan when resolved.
func ScanChannel(scan RangeChannel) RangeSource {
	return scanSource{scan: scan}
}

// Resolve returns the frame behind src.
func Resolve(src RangeSource) (RangeFrame, error) {
	if src == nil {
		return RangeFrame{}, fmt.Errorf("%w: nil range source", ErrShapeMismatch)
	}
	return src.resolve()
}
