// Package xyzlut projects lidar range frames into Cartesian points through a
// precomputed per-pixel lookup table.
//
// A DirectionTable is built once per sensor geometry and holds, for every
// (beam, column) pixel, a unit direction and a Cartesian offset. Projection
// is then a multiply-add per axis: point = direction*range + offset, with a
// zero range producing the zero point ("no return").
//
// Coordinate convention: right-handed sensor frame with +Z up. Azimuth is
// measured counter-clockwise from +X about +Z; column j sits at
// 360/columns*j degrees plus the beam's own azimuth offset, so column 0 of a
// beam with zero offset points along +X.
//
// Tables are immutable after construction and safe for concurrent use by any
// number of projecting goroutines.
package xyzlut
