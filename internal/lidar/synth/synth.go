// Package synth builds deterministic range images and the capture files
// that carry them, for replay tests and demos without sensor hardware.
package synth

import (
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/xyzlut/internal/lidar/l1packets/parse"
	"github.com/banshee-data/xyzlut/internal/lidar/metadata"
	"github.com/banshee-data/xyzlut/internal/lidar/network"
)

// FramePeriod is the spacing between synthetic frames (10 Hz).
const FramePeriod = 100 * time.Millisecond

// Epoch is the capture time of frame 0.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Ranges returns a rows x columns range image in millimetres for frame.
// Values sit between 2 m and about 12 m; every seventh pixel has no return.
func Ranges(rows, columns, frame int) []uint32 {
	out := make([]uint32, rows*columns)
	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			k := r*columns + c
			if (k+frame)%7 == 0 {
				continue
			}
			out[k] = uint32(2000 + (37*r+11*c+101*frame)%10000)
		}
	}
	return out
}

// Packets encodes one frame of ranges as data packets. ColumnsPerFrame
// must be a multiple of ColumnsPerPacket.
func Packets(format parse.PacketFormat, frameID int, ranges []uint32, ts time.Time) ([][]byte, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if format.ColumnsPerFrame%format.ColumnsPerPacket != 0 {
		return nil, fmt.Errorf("columns per frame %d is not a multiple of columns per packet %d",
			format.ColumnsPerFrame, format.ColumnsPerPacket)
	}
	if want := format.PixelsPerColumn * format.ColumnsPerFrame; len(ranges) != want {
		return nil, fmt.Errorf("range image has %d pixels, want %d", len(ranges), want)
	}

	n := format.ColumnsPerFrame / format.ColumnsPerPacket
	packets := make([][]byte, 0, n)
	for p := 0; p < n; p++ {
		cols := make([]parse.Column, format.ColumnsPerPacket)
		for i := range cols {
			mid := p*format.ColumnsPerPacket + i
			pixels := make([]parse.Pixel, format.PixelsPerColumn)
			for row := range pixels {
				rng := ranges[row*format.ColumnsPerFrame+mid]
				pixels[row] = parse.Pixel{Range: rng, Signal: uint16(rng / 64), Reflectivity: uint16(row)}
			}
			cols[i] = parse.Column{
				Timestamp:     uint64(ts.UnixNano()),
				MeasurementID: uint16(mid),
				FrameID:       uint16(frameID),
				EncoderCount:  uint32(mid * 88),
				Status:        parse.ColumnStatusValid,
				Pixels:        pixels,
			}
		}
		pkt, err := parse.EncodePacket(format, cols)
		if err != nil {
			return nil, fmt.Errorf("frame %d packet %d: %w", frameID, p, err)
		}
		packets = append(packets, pkt)
	}
	return packets, nil
}

// WriteCapture writes frames synthetic frames for info as a pcap stream
// addressed to udpPort, and returns the range image of each frame.
func WriteCapture(w io.Writer, info *metadata.SensorInfo, frames, udpPort int) ([][]uint32, error) {
	format, err := parse.NewPacketFormat(info)
	if err != nil {
		return nil, err
	}
	cw, err := network.NewCaptureWriter(w, udpPort)
	if err != nil {
		return nil, err
	}

	images := make([][]uint32, frames)
	for f := 0; f < frames; f++ {
		images[f] = Ranges(format.PixelsPerColumn, format.ColumnsPerFrame, f)
		ts := Epoch.Add(time.Duration(f) * FramePeriod)
		packets, err := Packets(format, f, images[f], ts)
		if err != nil {
			return nil, err
		}
		for i, pkt := range packets {
			if err := cw.WritePayload(pkt, ts.Add(time.Duration(i)*time.Microsecond)); err != nil {
				return nil, fmt.Errorf("write frame %d: %w", f, err)
			}
		}
	}
	return images, nil
}
