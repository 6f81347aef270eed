// Package reference re-derives lidar XYZ projection directly from beam
// geometry, one pixel at a time, without a lookup table. It exists to check
// the xyzlut tables and is not meant for per-frame use.
package reference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/xyzlut/internal/lidar/geometry"
	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
)

var zAxis = r3.Vec{Z: 1}

// Project returns the cloud for frame under geometry d, with coordinates in
// unit output units per millimetre of range.
//
// Each beam starts as a vector in the XZ plane tilted up by its altitude and
// the origin offset as given; both are rotated about +Z by the pixel azimuth.
func Project(d geometry.Descriptor, frame xyzlut.RangeFrame, unit float64) (xyzlut.PointCloud, error) {
	if _, err := geometry.Validate(d); err != nil {
		return xyzlut.PointCloud{}, err
	}
	rows, cols := d.Rows(), d.Columns()
	if frame.Rows() != rows || frame.Columns() != cols {
		return xyzlut.PointCloud{}, fmt.Errorf("%w: got %dx%d, want %dx%d",
			xyzlut.ErrShapeMismatch, frame.Rows(), frame.Columns(), rows, cols)
	}

	altitudes := d.BeamAltitudeAngles()
	azimuths := d.BeamAzimuthAngles()
	o := d.BeamOriginOffset()
	origin := r3.Vec{X: o[0], Y: o[1], Z: o[2]}

	cloud := xyzlut.NewPointCloud(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			r := frame.At(i, j)
			if r == 0 {
				continue
			}
			p := Pixel(altitudes[i], azimuths[i]+360*float64(j)/float64(cols), origin, float64(r))
			p = r3.Scale(unit, p)

			k := 3 * (i*cols + j)
			cloud.XYZ[k] = p.X
			cloud.XYZ[k+1] = p.Y
			cloud.XYZ[k+2] = p.Z
		}
	}
	return cloud, nil
}

// Pixel returns the point for a single return of rangeMM millimetres at the
// given altitude and azimuth (degrees).
func Pixel(altitudeDeg, azimuthDeg float64, origin r3.Vec, rangeMM float64) r3.Vec {
	alt := altitudeDeg * math.Pi / 180
	az := azimuthDeg * math.Pi / 180

	beam := r3.Vec{X: math.Cos(alt), Z: math.Sin(alt)}
	dir := r3.Rotate(beam, az, zAxis)
	off := r3.Rotate(origin, az, zAxis)
	return r3.Add(r3.Scale(rangeMM, dir), off)
}
