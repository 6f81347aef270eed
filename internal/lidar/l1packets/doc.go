// Package l1packets owns Layer 1 (Packets) of the lidar data model.
//
// Responsibilities: decoding raw lidar data packets into columns of
// per-pixel measurements. Capture replay lives in internal/lidar/network;
// assembling columns into scans is Layer 2 (l2frames).
//
// Dependency rule: L1 has no inward dependencies on higher layers.
package l1packets
