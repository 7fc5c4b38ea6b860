package mptcp

import (
	"net"
	"testing"

	"github.com/arnaud-mptcp/mptcp-rewriter/packetio"
	"github.com/gopacket/gopacket/layers"
)

func fourTuplePacket(srcIP, dstIP string, srcPort, dstPort uint16) *packetio.Packet {
	return &packetio.Packet{
		IPv4: &layers.IPv4{SrcIP: net.ParseIP(srcIP), DstIP: net.ParseIP(dstIP)},
		TCP:  &layers.TCP{SrcPort: layers.TCPPort(srcPort), DstPort: layers.TCPPort(dstPort)},
	}
}

func TestSubflowTableCreateInboundAndFindByInbound(t *testing.T) {
	sess := newTestSession()
	pkt := fourTuplePacket("10.0.0.1", "10.0.0.2", 5000, 80)

	sf := sess.subflows.createInbound(pkt, sess)
	if sf.SrcPort != 5000 || sf.DstPort != 80 {
		t.Fatalf("createInbound copied the wrong 4-tuple: %+v", sf)
	}

	found := sess.subflows.findByInbound(pkt)
	if found != sf {
		t.Errorf("findByInbound did not find the subflow just created")
	}
}

func TestSubflowTableCreateOutboundPrimaryMirrorsTuple(t *testing.T) {
	sess := newTestSession()
	live := fourTuplePacket("10.0.0.2", "10.0.0.1", 80, 5000)

	sf := sess.subflows.createOutboundPrimary(live)
	if sf.SrcPort != 5000 || sf.DstPort != 80 {
		t.Fatalf("createOutboundPrimary should mirror the live packet's ports, got %+v", sf)
	}

	found := sess.subflows.findByOutbound(live)
	if found != sf {
		t.Errorf("findByOutbound did not find the subflow just created")
	}
}

func TestSubflowTableCreateOutboundJoinCarriesPeerFields(t *testing.T) {
	sess := newTestSession()
	live := fourTuplePacket("10.0.0.2", "10.0.0.1", 80, 5001)

	sf := sess.subflows.createOutboundJoin(live, 0xcafe, 3)
	if sf.PeerRand != 0xcafe || sf.PeerAddrID != 3 {
		t.Errorf("createOutboundJoin did not carry peer fields: %+v", sf)
	}
	if sf.LocalRand != 0 || sf.LocalAddrID != 0 {
		t.Errorf("createOutboundJoin should leave local fields zero until the SYN/ACK case fills them in: %+v", sf)
	}
}

func TestSubflowTableFindBySocket(t *testing.T) {
	sess := newTestSession()
	pkt := fourTuplePacket("10.0.0.1", "10.0.0.2", 6000, 443)
	sf := sess.subflows.createInbound(pkt, sess)

	found := sess.subflows.findBySocket(6000, 443)
	if found != sf {
		t.Errorf("findBySocket did not find the subflow created with matching ports")
	}

	if found := sess.subflows.findBySocket(1, 2); found != nil {
		t.Errorf("findBySocket should return nil for unmatched ports, got %+v", found)
	}
}

func TestSubflowAdvanceSeq(t *testing.T) {
	sess := newTestSession()
	pkt := fourTuplePacket("10.0.0.1", "10.0.0.2", 6000, 443)
	sf := sess.subflows.createInbound(pkt, sess)

	sess.subflows.advanceSeq(sf, 100)
	sess.subflows.advanceSeq(sf, 50)

	if sf.SubflowSeq != 150 {
		t.Errorf("SubflowSeq = %d, want 150", sf.SubflowSeq)
	}
}
