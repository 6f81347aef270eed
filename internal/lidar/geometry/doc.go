// Package geometry describes the fixed beam layout of a spinning multi-beam
// lidar and checks that the description is self-consistent.
//
// A Descriptor is an immutable value. Tests and callers that need a variant
// derive one with the With* methods instead of mutating shared state.
// Validate must succeed before a Descriptor is used to index frame data;
// its Valid result is the only input the LUT builder accepts.
package geometry
