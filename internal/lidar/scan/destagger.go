package scan

import "fmt"

// Destagger aligns a staggered rows x columns field so that each column
// shares one azimuth: row r is rotated right by shifts[r] columns.
func Destagger[T any](rows, columns int, shifts []int, data []T) ([]T, error) {
	return roll(rows, columns, shifts, data, false)
}

// Stagger undoes Destagger.
func Stagger[T any](rows, columns int, shifts []int, data []T) ([]T, error) {
	return roll(rows, columns, shifts, data, true)
}

func roll[T any](rows, columns int, shifts []int, data []T, inverse bool) ([]T, error) {
	if len(shifts) != rows {
		return nil, fmt.Errorf("pixel shift table has %d rows, field has %d", len(shifts), rows)
	}
	if len(data) != rows*columns {
		return nil, fmt.Errorf("field has %d values, want %d", len(data), rows*columns)
	}
	out := make([]T, len(data))
	if columns == 0 {
		return out, nil
	}
	for r := 0; r < rows; r++ {
		shift := shifts[r]
		if inverse {
			shift = -shift
		}
		shift = ((shift % columns) + columns) % columns

		src := data[r*columns : (r+1)*columns]
		dst := out[r*columns : (r+1)*columns]
		copy(dst[shift:], src[:columns-shift])
		copy(dst[:shift], src[columns-shift:])
	}
	return out, nil
}
