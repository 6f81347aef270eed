package export

import (
	"fmt"

	"github.com/banshee-data/xyzlut/internal/lidar/scan"
	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
)

// Destagger returns a copy of cloud with each beam row rotated by its pixel
// shift, so that every column of the result holds a single azimuth.
// shifts has one entry per row, as in the sensor's pixel_shift_by_row.
func Destagger(cloud xyzlut.PointCloud, shifts []int) (xyzlut.PointCloud, error) {
	n := cloud.Rows * cloud.Columns
	if len(cloud.XYZ) != 3*n {
		return xyzlut.PointCloud{}, fmt.Errorf("cloud holds %d values, want %d", len(cloud.XYZ), 3*n)
	}

	points := make([][3]float64, n)
	for i := range points {
		copy(points[i][:], cloud.XYZ[3*i:3*i+3])
	}
	aligned, err := scan.Destagger(cloud.Rows, cloud.Columns, shifts, points)
	if err != nil {
		return xyzlut.PointCloud{}, fmt.Errorf("destagger: %w", err)
	}

	out := xyzlut.NewPointCloud(cloud.Rows, cloud.Columns)
	for i, p := range aligned {
		copy(out.XYZ[3*i:3*i+3], p[:])
	}
	return out, nil
}
