package xyzlut

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when a frame or output buffer does not have
// the table's rows x columns shape.
var ErrShapeMismatch = errors.New("range frame shape does not match lookup table")

// ShapeError carries the shapes involved in a rejected projection.
type ShapeError struct {
	Rows, Columns         int // frame shape
	WantRows, WantColumns int // table shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: got %dx%d, want %dx%d", ErrShapeMismatch, e.Rows, e.Columns, e.WantRows, e.WantColumns)
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }
