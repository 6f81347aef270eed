package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/xyzlut/internal/lidar/scan"
	"github.com/banshee-data/xyzlut/internal/lidar/xyzlut"
)

func TestDestagger(t *testing.T) {
	// 2 beams x 3 columns, point (row, col) = (row, col, 1)
	c := xyzlut.NewPointCloud(2, 3)
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			copy(c.XYZ[3*(row*3+col):], []float64{float64(row), float64(col), 1})
		}
	}

	got, err := Destagger(c, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, c.XYZ[:9], got.XYZ[:9], "unshifted row")
	assert.Equal(t, [3]float64{1, 2, 1}, got.At(1, 0))
	assert.Equal(t, [3]float64{1, 0, 1}, got.At(1, 1))
	assert.Equal(t, [3]float64{1, 1, 1}, got.At(1, 2))
	assert.Equal(t, c.Count(), got.Count())

	// ASC column indices follow the destaggered layout.
	var buf bytes.Buffer
	_, err = WriteASC(&buf, got)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1.000000 2.000000 1.000000 1 0\n")
}

func TestDestagger_InvertsStagger(t *testing.T) {
	c := twoByTwo()
	shifts := []int{1, -3}

	got, err := Destagger(c, shifts)
	require.NoError(t, err)

	points := make([][3]float64, 4)
	for i := range points {
		points[i] = got.At(i/2, i%2)
	}
	back, err := scan.Stagger(2, 2, shifts, points)
	require.NoError(t, err)
	for i, p := range back {
		assert.Equal(t, c.At(i/2, i%2), p, "pixel %d", i)
	}
}

func TestDestagger_Errors(t *testing.T) {
	_, err := Destagger(twoByTwo(), []int{0})
	assert.Error(t, err)

	_, err = Destagger(xyzlut.PointCloud{Rows: 2, Columns: 2, XYZ: make([]float64, 5)}, []int{0, 0})
	assert.Error(t, err)
}
