package xyzlut

import "fmt"

// Project applies the table to frame and returns a new cloud. The frame must
// have exactly the table's shape; otherwise a *ShapeError is returned and no
// cloud is produced.
func (t *DirectionTable) Project(frame RangeFrame) (PointCloud, error) {
	if err := t.checkShape(frame); err != nil {
		return PointCloud{}, err
	}
	cloud := NewPointCloud(t.rows, t.columns)
	t.project(cloud.XYZ, frame)
	return cloud, nil
}

// ProjectInto writes the projection of frame into dst, which must hold
// 3*rows*columns values. Nothing is written when an error is returned.
func (t *DirectionTable) ProjectInto(dst []float64, frame RangeFrame) error {
	if err := t.checkShape(frame); err != nil {
		return err
	}
	if len(dst) != 3*t.rows*t.columns {
		return fmt.Errorf("%w: output buffer holds %d values, want %d", ErrShapeMismatch, len(dst), 3*t.rows*t.columns)
	}
	t.project(dst, frame)
	return nil
}

func (t *DirectionTable) checkShape(frame RangeFrame) error {
	if frame.rows != t.rows || frame.columns != t.columns || frame.width == 0 {
		return &ShapeError{Rows: frame.rows, Columns: frame.columns, WantRows: t.rows, WantColumns: t.columns}
	}
	return nil
}

// project dispatches once per frame on the sample width.
func (t *DirectionTable) project(dst []float64, frame RangeFrame) {
	switch frame.width {
	case Width8:
		projectKernel(dst, t.direction, t.offset, frame.u8)
	case Width16:
		projectKernel(dst, t.direction, t.offset, frame.u16)
	case Width32:
		projectKernel(dst, t.direction, t.offset, frame.u32)
	case Width64:
		projectKernel(dst, t.direction, t.offset, frame.u64)
	}
}

// projectKernel widens each sample to float64 before multiplying, so equal
// logical ranges give bit-identical points regardless of encoding. The
// explicit float64 conversion of each product stops the compiler fusing the
// multiply-add, which would otherwise round differently per platform.
func projectKernel[T Unsigned](dst, direction, offset []float64, ranges []T) {
	if len(ranges) == 0 {
		return
	}
	_ = dst[3*len(ranges)-1]
	for i, r := range ranges {
		k := 3 * i
		if r == 0 {
			dst[k], dst[k+1], dst[k+2] = 0, 0, 0
			continue
		}
		rf := float64(r)
		dst[k] = float64(direction[k]*rf) + offset[k]
		dst[k+1] = float64(direction[k+1]*rf) + offset[k+1]
		dst[k+2] = float64(direction[k+2]*rf) + offset[k+2]
	}
}
