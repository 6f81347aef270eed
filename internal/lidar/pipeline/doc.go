// Package pipeline applies one shared lookup table to many frames in
// parallel.
//
// It is the composition point between frame assembly (l2frames/scan) and
// projection (xyzlut); neither of those imports pipeline. The table is
// built before the pool exists and is only read afterwards, so workers
// share it without locking.
package pipeline
