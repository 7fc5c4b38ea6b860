package packetio

import (
	"net"
	"testing"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

func buildIPv4TCP(t *testing.T, payload []byte) []byte {
	t.Helper()

	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("192.0.2.1").To4(),
		DstIP:    net.ParseIP("192.0.2.2").To4(),
	}
	tcp := &layers.TCP{
		SrcPort: 4000,
		DstPort: 80,
		SYN:     true,
		Window:  1024,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("SetNetworkLayerForChecksum: %v", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, tcp, gopacket.Payload(payload)); err != nil {
		t.Fatalf("SerializeLayers: %v", err)
	}
	return buf.Bytes()
}

func TestParsePacketIPv4RoundTrip(t *testing.T) {
	raw := buildIPv4TCP(t, []byte("hello"))

	pkt, err := ParsePacket(raw, layers.LayerTypeIPv4)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if pkt.IPv4 == nil {
		t.Fatalf("expected an IPv4 layer")
	}
	if pkt.SrcPort() != 4000 || pkt.DstPort() != 80 {
		t.Errorf("ports = %d/%d, want 4000/80", pkt.SrcPort(), pkt.DstPort())
	}
	if !pkt.SYN() {
		t.Errorf("SYN flag should be set")
	}
	if pkt.SrcIP() != "192.0.2.1" || pkt.DstIP() != "192.0.2.2" {
		t.Errorf("addresses = %s/%s, want 192.0.2.1/192.0.2.2", pkt.SrcIP(), pkt.DstIP())
	}
}

func TestParsePacketNoTCPLayerErrors(t *testing.T) {
	ip := &layers.IPv4{Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolUDP,
		SrcIP: net.ParseIP("10.0.0.1").To4(), DstIP: net.ParseIP("10.0.0.2").To4()}
	udp := &layers.UDP{SrcPort: 1, DstPort: 2}
	udp.SetNetworkLayerForChecksum(ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, udp); err != nil {
		t.Fatalf("SerializeLayers: %v", err)
	}

	if _, err := ParsePacket(buf.Bytes(), layers.LayerTypeIPv4); err == nil {
		t.Errorf("ParsePacket should error on a packet with no TCP layer")
	}
}

func TestPayloadLengthIPv4(t *testing.T) {
	payload := []byte("0123456789")
	raw := buildIPv4TCP(t, payload)

	pkt, err := ParsePacket(raw, layers.LayerTypeIPv4)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if got := pkt.PayloadLength(); got != uint16(len(payload)) {
		t.Errorf("PayloadLength() = %d, want %d", got, len(payload))
	}
}

func TestPayloadLengthZeroForBareSYN(t *testing.T) {
	raw := buildIPv4TCP(t, nil)

	pkt, err := ParsePacket(raw, layers.LayerTypeIPv4)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if got := pkt.PayloadLength(); got != 0 {
		t.Errorf("PayloadLength() = %d, want 0 for a bare SYN", got)
	}
}
