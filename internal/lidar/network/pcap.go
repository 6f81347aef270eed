// Package network replays lidar UDP payloads from capture files.
//
// Only offline replay is supported: classic pcap and pcapng files are read
// with gopacket's pure-Go readers, so no libpcap is required.
package network

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/banshee-data/xyzlut/internal/monitoring"
)

var logf = monitoring.Component("network")

// pcapngMagic is the section header block type that opens a pcapng file.
var pcapngMagic = []byte{0x0A, 0x0D, 0x0D, 0x0A}

// PacketHandler receives each matching UDP payload with its capture time.
// Returning an error stops the replay and the error is passed back to the
// caller.
type PacketHandler func(payload []byte, ts time.Time) error

// ReplayStats summarises one replay.
type ReplayStats struct {
	Packets  int // packets read from the file
	Matched  int // UDP payloads delivered to the handler
	Skipped  int // non-UDP or other-port packets
	Bytes    int64
	Duration time.Duration
}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// ReadPCAPFile replays the capture at path, delivering UDP payloads sent to
// udpPort (0 for any port) to handler.
func ReadPCAPFile(ctx context.Context, path string, udpPort int, handler PacketHandler) (ReplayStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReplayStats{}, fmt.Errorf("failed to open PCAP file %s: %w", path, err)
	}
	defer f.Close()

	stats, err := ReadPCAP(ctx, f, udpPort, handler)
	if err != nil {
		return stats, fmt.Errorf("replay %s: %w", path, err)
	}
	logf("PCAP file reading complete: %d packets, %d matched in %v", stats.Packets, stats.Matched, stats.Duration)
	return stats, nil
}

// ReadPCAP replays a capture stream. The format (pcap or pcapng) is detected
// from the first bytes.
func ReadPCAP(ctx context.Context, r io.Reader, udpPort int, handler PacketHandler) (stats ReplayStats, err error) {
	br := bufio.NewReader(r)
	src, err := openSource(br)
	if err != nil {
		return stats, err
	}

	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	linkType := src.LinkType()
	for {
		if err := ctx.Err(); err != nil {
			logf("PCAP reader stopping due to context cancellation (processed %d packets)", stats.Packets)
			return stats, err
		}

		data, ci, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("read packet %d: %w", stats.Packets+1, err)
		}
		stats.Packets++

		packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		udp, ok := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if !ok || len(udp.Payload) == 0 || (udpPort != 0 && int(udp.DstPort) != udpPort) {
			stats.Skipped++
			continue
		}

		stats.Matched++
		stats.Bytes += int64(len(udp.Payload))
		if err := handler(udp.Payload, ci.Timestamp); err != nil {
			return stats, err
		}
	}
}

func openSource(br *bufio.Reader) (packetSource, error) {
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}
	if string(magic) == string(pcapngMagic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("open pcapng stream: %w", err)
		}
		return ng, nil
	}
	rd, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open pcap stream: %w", err)
	}
	return rd, nil
}
