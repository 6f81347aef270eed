package xyzlut

import (
	"math"

	"github.com/banshee-data/xyzlut/internal/lidar/geometry"
)

// DirectionTable is the per-pixel lookup table: one unit direction and one
// Cartesian offset per (beam, column), both stored row-major as flat xyz
// triples. It has no mutators; share it freely across goroutines.
type DirectionTable struct {
	rows      int
	columns   int
	unit      float64
	direction []float64
	offset    []float64
}

type options struct {
	rangeUnit float64
}

// Option configures table construction.
type Option func(*options)

// WithRangeUnit scales output coordinates: a range of 1 mm becomes unit
// output units. 0.001 yields metres. Non-positive or non-finite values are
// ignored and the default of 1 (millimetres) is kept.
func WithRangeUnit(unit float64) Option {
	return func(o *options) {
		if unit > 0 && !math.IsInf(unit, 0) && !math.IsNaN(unit) {
			o.rangeUnit = unit
		}
	}
}

// BuildTable computes the lookup table for a validated geometry.
//
// For beam i and column j the pixel azimuth is azimuth_i + 360/columns*j
// degrees. The direction is (cos alt cos az, cos alt sin az, sin alt) and the
// offset is the beam origin offset rotated about +Z by the same azimuth.
func BuildTable(v geometry.Valid, opts ...Option) *DirectionTable {
	o := options{rangeUnit: 1}
	for _, opt := range opts {
		opt(&o)
	}

	d := v.Descriptor()
	rows, cols := d.Rows(), d.Columns()
	altitudes := d.BeamAltitudeAngles()
	azimuths := d.BeamAzimuthAngles()
	origin := d.BeamOriginOffset()

	t := &DirectionTable{
		rows:      rows,
		columns:   cols,
		unit:      o.rangeUnit,
		direction: make([]float64, 3*rows*cols),
		offset:    make([]float64, 3*rows*cols),
	}

	step := 360.0 / float64(cols)
	for i := 0; i < rows; i++ {
		altRad := altitudes[i] * math.Pi / 180.0
		cosAlt := math.Cos(altRad)
		sinAlt := math.Sin(altRad)

		for j := 0; j < cols; j++ {
			azRad := (azimuths[i] + step*float64(j)) * math.Pi / 180.0
			cosAz := math.Cos(azRad)
			sinAz := math.Sin(azRad)

			k := 3 * (i*cols + j)
			t.direction[k] = cosAlt * cosAz * o.rangeUnit
			t.direction[k+1] = cosAlt * sinAz * o.rangeUnit
			t.direction[k+2] = sinAlt * o.rangeUnit

			t.offset[k] = (origin[0]*cosAz - origin[1]*sinAz) * o.rangeUnit
			t.offset[k+1] = (origin[0]*sinAz + origin[1]*cosAz) * o.rangeUnit
			t.offset[k+2] = origin[2] * o.rangeUnit
		}
	}
	return t
}

// Rows returns the number of beams the table was built for.
func (t *DirectionTable) Rows() int { return t.rows }

// Columns returns the number of columns the table was built for.
func (t *DirectionTable) Columns() int { return t.columns }

// RangeUnit returns the output scale per millimetre of range.
func (t *DirectionTable) RangeUnit() float64 { return t.unit }

// Direction returns the direction at (row, col), scaled by RangeUnit.
func (t *DirectionTable) Direction(row, col int) [3]float64 {
	k := 3 * (row*t.columns + col)
	return [3]float64{t.direction[k], t.direction[k+1], t.direction[k+2]}
}

// Offset returns the offset at (row, col), scaled by RangeUnit.
func (t *DirectionTable) Offset(row, col int) [3]float64 {
	k := 3 * (row*t.columns + col)
	return [3]float64{t.offset[k], t.offset[k+1], t.offset[k+2]}
}
