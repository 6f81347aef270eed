package geometry

import "fmt"

// Descriptor is the beam geometry of one sensor mode.
//
// Rows is the number of beams (pixels per column) and Columns the number of
// azimuth samples per rotation. Angles are in degrees, one per beam; the
// origin offset is in millimetres from the beam emission point to the lidar
// coordinate origin.
type Descriptor struct {
	rows         int
	columns      int
	altitudes    []float64
	azimuths     []float64
	originOffset [3]float64
}

// Rows returns the number of beams (pixels per column).
func (d Descriptor) Rows() int { return d.rows }

// Columns returns the number of columns per frame.
func (d Descriptor) Columns() int { return d.columns }

// BeamAltitudeAngles returns a copy of the per-beam altitude angles in degrees.
func (d Descriptor) BeamAltitudeAngles() []float64 { return cloneFloats(d.altitudes) }

// BeamAzimuthAngles returns a copy of the per-beam azimuth offsets in degrees.
func (d Descriptor) BeamAzimuthAngles() []float64 { return cloneFloats(d.azimuths) }

// BeamOriginOffset returns the beam-to-origin offset in millimetres.
func (d Descriptor) BeamOriginOffset() [3]float64 { return d.originOffset }

// WithRows returns a copy of d with a different row count.
func (d Descriptor) WithRows(rows int) Descriptor {
	c := d.clone()
	c.rows = rows
	return c
}

// WithColumns returns a copy of d with a different column count.
func (d Descriptor) WithColumns(columns int) Descriptor {
	c := d.clone()
	c.columns = columns
	return c
}

// WithBeamAltitudeAngles returns a copy of d with the altitude angles replaced.
func (d Descriptor) WithBeamAltitudeAngles(angles []float64) Descriptor {
	c := d.clone()
	c.altitudes = cloneFloats(angles)
	return c
}

// WithBeamAzimuthAngles returns a copy of d with the azimuth angles replaced.
func (d Descriptor) WithBeamAzimuthAngles(angles []float64) Descriptor {
	c := d.clone()
	c.azimuths = cloneFloats(angles)
	return c
}

// WithBeamOriginOffset returns a copy of d with the origin offset replaced.
func (d Descriptor) WithBeamOriginOffset(offset [3]float64) Descriptor {
	c := d.clone()
	c.originOffset = offset
	return c
}

// Equal reports whether two descriptors describe the same geometry.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.rows != o.rows || d.columns != o.columns || d.originOffset != o.originOffset {
		return false
	}
	return floatsEqual(d.altitudes, o.altitudes) && floatsEqual(d.azimuths, o.azimuths)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("geometry{%dx%d, %d altitudes, %d azimuths, origin=%v mm}",
		d.rows, d.columns, len(d.altitudes), len(d.azimuths), d.originOffset)
}

func (d Descriptor) clone() Descriptor {
	c := d
	c.altitudes = cloneFloats(d.altitudes)
	c.azimuths = cloneFloats(d.azimuths)
	return c
}

// Builder assembles a Descriptor field by field.
type Builder struct {
	d Descriptor
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Rows(rows int) *Builder {
	b.d.rows = rows
	return b
}

func (b *Builder) Columns(columns int) *Builder {
	b.d.columns = columns
	return b
}

func (b *Builder) BeamAltitudeAngles(angles []float64) *Builder {
	b.d.altitudes = cloneFloats(angles)
	return b
}

func (b *Builder) BeamAzimuthAngles(angles []float64) *Builder {
	b.d.azimuths = cloneFloats(angles)
	return b
}

func (b *Builder) BeamOriginOffset(x, y, z float64) *Builder {
	b.d.originOffset = [3]float64{x, y, z}
	return b
}

// Build returns the assembled Descriptor. It does not validate; call
// Validate before building a lookup table from it.
func (b *Builder) Build() Descriptor {
	return b.d.clone()
}

func cloneFloats(s []float64) []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
