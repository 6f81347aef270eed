// Package l2frames owns Layer 2 (Frames) of the lidar data model.
//
// Responsibilities: assembling decoded packet columns into complete
// rotation scans. Key type: ScanBatcher.
//
// Dependency rule: L2 may depend on L1, but never on projection or export.
package l2frames
