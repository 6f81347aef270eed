package xyzlut

import (
	"fmt"

	"github.com/banshee-data/xyzlut/internal/lidar/geometry"
	"github.com/banshee-data/xyzlut/internal/monitoring"
)

var logf = monitoring.Component("xyzlut")

// XYZLut pairs a validated geometry with its lookup table. Construct it once
// per sensor mode and call Apply for every frame.
type XYZLut struct {
	geometry geometry.Descriptor
	table    *DirectionTable
}

// New validates d and builds its lookup table. A geometry error is returned
// unchanged in kind (errors.Is against the geometry sentinels) and no table
// is built.
func New(d geometry.Descriptor, opts ...Option) (*XYZLut, error) {
	v, err := geometry.Validate(d)
	if err != nil {
		return nil, fmt.Errorf("xyz lut: %w", err)
	}
	t := BuildTable(v, opts...)
	logf("built %dx%d lookup table, range unit %g", t.rows, t.columns, t.unit)
	return &XYZLut{geometry: v.Descriptor(), table: t}, nil
}

// Apply resolves src and projects it into a new cloud.
func (l *XYZLut) Apply(src RangeSource) (PointCloud, error) {
	frame, err := Resolve(src)
	if err != nil {
		return PointCloud{}, err
	}
	return l.table.Project(frame)
}

// ApplyInto resolves src and projects it into dst (3*rows*columns values).
func (l *XYZLut) ApplyInto(dst []float64, src RangeSource) error {
	frame, err := Resolve(src)
	if err != nil {
		return err
	}
	return l.table.ProjectInto(dst, frame)
}

// Rows returns the number of beams.
func (l *XYZLut) Rows() int { return l.table.rows }

// Columns returns the number of columns per frame.
func (l *XYZLut) Columns() int { return l.table.columns }

// Table returns the shared, read-only lookup table.
func (l *XYZLut) Table() *DirectionTable { return l.table }

// Geometry returns the descriptor the table was built from.
func (l *XYZLut) Geometry() geometry.Descriptor { return l.geometry }
