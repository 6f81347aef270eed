package geometry

import (
	"errors"
	"fmt"
)

// Validation failures. Use errors.Is against these; the concrete value is
// always an *Error carrying the offending numbers.
var (
	ErrInvalidRows         = errors.New("invalid pixels per column")
	ErrInvalidColumns      = errors.New("invalid columns per frame")
	ErrAngleLengthMismatch = errors.New("beam angle count does not match pixels per column")
)

// Error reports why a Descriptor was rejected.
type Error struct {
	Kind  error  // one of the Err* sentinels
	Field string // descriptor field that failed
	Got   int
	Want  int // expected length for AngleLengthMismatch, else 0
}

func (e *Error) Error() string {
	if errors.Is(e.Kind, ErrAngleLengthMismatch) {
		return fmt.Sprintf("%v: %s has %d entries, want %d", e.Kind, e.Field, e.Got, e.Want)
	}
	return fmt.Sprintf("%v: %s = %d", e.Kind, e.Field, e.Got)
}

func (e *Error) Unwrap() error { return e.Kind }

// Valid is a Descriptor that has passed Validate. Only Validate creates one.
type Valid struct {
	d Descriptor
}

// Descriptor returns the validated geometry.
func (v Valid) Descriptor() Descriptor { return v.d }

// Validate checks d in a fixed order: rows, altitude count, azimuth count,
// columns. Columns is not compared against any other declared width.
func Validate(d Descriptor) (Valid, error) {
	if d.rows <= 0 {
		return Valid{}, &Error{Kind: ErrInvalidRows, Field: "pixels_per_column", Got: d.rows}
	}
	if len(d.altitudes) == 0 || len(d.altitudes) != d.rows {
		return Valid{}, &Error{Kind: ErrAngleLengthMismatch, Field: "beam_altitude_angles", Got: len(d.altitudes), Want: d.rows}
	}
	if len(d.azimuths) == 0 || len(d.azimuths) != d.rows {
		return Valid{}, &Error{Kind: ErrAngleLengthMismatch, Field: "beam_azimuth_angles", Got: len(d.azimuths), Want: d.rows}
	}
	if d.columns <= 0 {
		return Valid{}, &Error{Kind: ErrInvalidColumns, Field: "columns_per_frame", Got: d.columns}
	}
	return Valid{d: d.clone()}, nil
}
