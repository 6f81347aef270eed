package l1packets

import (
	"github.com/banshee-data/xyzlut/internal/lidar/l1packets/parse"
)

// Type aliases re-export packet decoding types from the parse/ subpackage so
// callers can import from l1packets while the implementation stays in the
// dedicated subpackage.

// PacketFormat describes the byte layout of one data packet.
type PacketFormat = parse.PacketFormat

// Column is one decoded measurement column.
type Column = parse.Column

// Parser decodes data packets.
type Parser = parse.Parser

// NewPacketFormat derives the packet layout from sensor metadata.
var NewPacketFormat = parse.NewPacketFormat

// NewParser creates a packet parser for a format.
var NewParser = parse.NewParser
