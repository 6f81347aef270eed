package xyzlut

// PointCloud is a rows x columns x 3 array of Cartesian coordinates,
// row-major over (beam, column, axis). Pixels without a return are zero.
type PointCloud struct {
	Rows    int
	Columns int
	XYZ     []float64
}

// NewPointCloud allocates a zeroed rows x columns cloud.
func NewPointCloud(rows, columns int) PointCloud {
	return PointCloud{Rows: rows, Columns: columns, XYZ: make([]float64, 3*rows*columns)}
}

// Shape returns (rows, columns, 3).
func (c PointCloud) Shape() (int, int, int) { return c.Rows, c.Columns, 3 }

// At returns the point at (row, col).
func (c PointCloud) At(row, col int) [3]float64 {
	k := 3 * (row*c.Columns + col)
	return [3]float64{c.XYZ[k], c.XYZ[k+1], c.XYZ[k+2]}
}

// Valid reports whether (row, col) holds a return, i.e. is not the zero point.
func (c PointCloud) Valid(row, col int) bool {
	p := c.At(row, col)
	return p[0] != 0 || p[1] != 0 || p[2] != 0
}

// Count returns the number of pixels holding a return.
func (c PointCloud) Count() int {
	n := 0
	for k := 0; k+2 < len(c.XYZ); k += 3 {
		if c.XYZ[k] != 0 || c.XYZ[k+1] != 0 || c.XYZ[k+2] != 0 {
			n++
		}
	}
	return n
}
