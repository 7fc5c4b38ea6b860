// Package packetio is the concrete binding for the §6 "downstream"
// interfaces spec.md declares as external collaborators: TCP-option
// iteration and IP/TCP header access. It wraps github.com/gopacket/gopacket
// layers rather than reinventing packet parsing, the way the teacher repo
// wraps its own hand-rolled header structs (lib/packet.go) — here the
// equivalent job is done by a real parsing library instead, since gopacket
// is already part of the example corpus's dependency surface.
package packetio

import (
	"fmt"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

// Packet bundles the parsed layers the engine needs from one frame: the IP
// header (v4 or v6) for the four-tuple and payload-length math of spec.md
// §4.B/§4.E.3, and the TCP header for ports, flags, and options.
type Packet struct {
	IPv4 *layers.IPv4 // nil if this is an IPv6 packet
	IPv6 *layers.IPv6 // nil if this is an IPv4 packet
	TCP  *layers.TCP
}

// ParsePacket decodes raw into a Packet, auto-detecting IPv4 vs IPv6.
func ParsePacket(raw []byte, linkType gopacket.LayerType) (*Packet, error) {
	pkt := gopacket.NewPacket(raw, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	if errLayer := pkt.ErrorLayer(); errLayer != nil {
		return nil, fmt.Errorf("packetio: decoding packet: %w", errLayer.Error())
	}

	tcpLayer := pkt.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return nil, fmt.Errorf("packetio: packet has no TCP layer")
	}
	tcp, ok := tcpLayer.(*layers.TCP)
	if !ok {
		return nil, fmt.Errorf("packetio: unexpected TCP layer type")
	}

	out := &Packet{TCP: tcp}
	if ip4 := pkt.Layer(layers.LayerTypeIPv4); ip4 != nil {
		out.IPv4, _ = ip4.(*layers.IPv4)
	} else if ip6 := pkt.Layer(layers.LayerTypeIPv6); ip6 != nil {
		out.IPv6, _ = ip6.(*layers.IPv6)
	} else {
		return nil, fmt.Errorf("packetio: packet has neither IPv4 nor IPv6 layer")
	}
	return out, nil
}

// SrcPort and DstPort expose the TCP header's ports in host byte order,
// matching spec.md §3's normalization requirement for subflow 4-tuples.
func (p *Packet) SrcPort() uint16 { return uint16(p.TCP.SrcPort) }
func (p *Packet) DstPort() uint16 { return uint16(p.TCP.DstPort) }

// SYN and ACK expose the TCP control flags the rewriter dispatches on.
func (p *Packet) SYN() bool { return p.TCP.SYN }
func (p *Packet) ACK() bool { return p.TCP.ACK }

// SrcIP and DstIP return the packet's network-layer addresses as strings,
// suitable for use as part of a subflow's four-tuple key.
func (p *Packet) SrcIP() string {
	if p.IPv4 != nil {
		return p.IPv4.SrcIP.String()
	}
	return p.IPv6.SrcIP.String()
}

func (p *Packet) DstIP() string {
	if p.IPv4 != nil {
		return p.IPv4.DstIP.String()
	}
	return p.IPv6.DstIP.String()
}

// PayloadLength computes the TCP data-level payload length:
// ip_total_bytes - ip_header_len - tcp_header_len (options included).
func (p *Packet) PayloadLength() uint16 {
	var ipTotal, ipHeaderLen int
	if p.IPv4 != nil {
		ipTotal = int(p.IPv4.Length)
		ipHeaderLen = int(p.IPv4.IHL) * 4
	} else {
		// IPv6 has a fixed 40-byte header and a payload-length field that
		// already excludes it.
		ipHeaderLen = 40
		ipTotal = ipHeaderLen + int(p.IPv6.Length)
	}
	tcpHeaderLen := int(p.TCP.DataOffset) * 4
	payload := ipTotal - ipHeaderLen - tcpHeaderLen
	if payload < 0 {
		payload = 0
	}
	return uint16(payload)
}
