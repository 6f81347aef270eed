package network

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const snapLen = 65536

// CaptureWriter writes lidar payloads as Ethernet/IPv4/UDP frames into a
// classic pcap stream.
type CaptureWriter struct {
	w       *pcapgo.Writer
	srcIP   net.IP
	dstIP   net.IP
	srcPort layers.UDPPort
	dstPort layers.UDPPort
	buf     gopacket.SerializeBuffer
}

// NewCaptureWriter writes the pcap file header and returns a writer that
// addresses every payload to dstPort.
func NewCaptureWriter(w io.Writer, dstPort int) (*CaptureWriter, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("write pcap header: %w", err)
	}
	return &CaptureWriter{
		w:       pw,
		srcIP:   net.IPv4(169, 254, 10, 1),
		dstIP:   net.IPv4(169, 254, 10, 2),
		srcPort: layers.UDPPort(7502),
		dstPort: layers.UDPPort(dstPort),
		buf:     gopacket.NewSerializeBuffer(),
	}, nil
}

// WritePayload appends one UDP datagram captured at ts.
func (c *CaptureWriter) WritePayload(payload []byte, ts time.Time) error {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0xbc, 0x0f, 0xa7, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    c.srcIP,
		DstIP:    c.dstIP,
	}
	udp := &layers.UDP{SrcPort: c.srcPort, DstPort: c.dstPort}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return err
	}

	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(c.buf, opts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
		return fmt.Errorf("serialize packet: %w", err)
	}
	data := c.buf.Bytes()
	ci := gopacket.CaptureInfo{Timestamp: ts, CaptureLength: len(data), Length: len(data)}
	return c.w.WritePacket(ci, data)
}
