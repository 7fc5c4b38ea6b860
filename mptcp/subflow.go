package mptcp

import "github.com/arnaud-mptcp/mptcp-rewriter/packetio"

// Subflow is one TCP flow inside an MPTCP session, identified by its
// 4-tuple (spec.md §3, module B). Fields are append-only after creation
// except SubflowSeq, which only ever grows.
type Subflow struct {
	SrcIP, DstIP     string
	SrcPort, DstPort uint16

	LocalRand uint32
	PeerRand  uint32

	LocalAddrID uint8
	PeerAddrID  uint8

	SubflowSeq uint32
}

// subflowTable is the set of subflows tracked for one session. Storage is
// an append-only slice scanned linearly — MPTCP sessions in tests have
// O(10) subflows (spec.md §4.B), so a map/index would be premature.
type subflowTable struct {
	flows []*Subflow
}

func newSubflowTable() *subflowTable {
	return &subflowTable{}
}

// createInbound is called when rewriting an outgoing script packet that
// opens a new subflow: the 4-tuple is copied with src=tool side, a fresh
// local_rand is drawn, and a fresh local_addr_id is assigned from the
// session counter.
func (t *subflowTable) createInbound(pkt *packetio.Packet, sess *Session) *Subflow {
	sf := &Subflow{
		SrcIP:       pkt.SrcIP(),
		DstIP:       pkt.DstIP(),
		SrcPort:     pkt.SrcPort(),
		DstPort:     pkt.DstPort(),
		LocalRand:   sess.rand.Uint32(),
		LocalAddrID: sess.nextAddrID(),
	}
	t.flows = append([]*Subflow{sf}, t.flows...)
	return sf
}

// createOutboundPrimary records the session's first (non-joined) subflow
// when it's discovered on the outbound leg of the initial MP_CAPABLE
// handshake. Unlike a joined subflow, the primary subflow carries no
// rand/address-id exchange, so both are left zero.
func (t *subflowTable) createOutboundPrimary(live *packetio.Packet) *Subflow {
	sf := &Subflow{
		SrcIP:   live.DstIP(),
		DstIP:   live.SrcIP(),
		SrcPort: live.DstPort(),
		DstPort: live.SrcPort(),
	}
	t.flows = append([]*Subflow{sf}, t.flows...)
	return sf
}

// createOutboundJoin is called when the kernel initiates a new subflow via
// MP_JOIN: the 4-tuple is the mirror image of the live packet (src=tool
// side still, read from the kernel's perspective), and peerRand/
// peerAddrID come from the live MP_JOIN SYN option's fields. The local
// nonce/address-id are filled in later, by the MP_JOIN SYN/ACK case.
func (t *subflowTable) createOutboundJoin(live *packetio.Packet, peerRand uint32, peerAddrID uint8) *Subflow {
	sf := &Subflow{
		SrcIP:      live.DstIP(),
		DstIP:      live.SrcIP(),
		SrcPort:    live.DstPort(),
		DstPort:    live.SrcPort(),
		PeerRand:   peerRand,
		PeerAddrID: peerAddrID,
	}
	t.flows = append([]*Subflow{sf}, t.flows...)
	return sf
}

// findByInbound matches the tool-perspective 4-tuple directly: the script
// packet's own ports are the subflow's ports.
func (t *subflowTable) findByInbound(pkt *packetio.Packet) *Subflow {
	for _, sf := range t.flows {
		if sf.DstPort == pkt.DstPort() && sf.SrcPort == pkt.SrcPort() {
			return sf
		}
	}
	return nil
}

// findByOutbound matches against a live kernel packet, whose ports are
// swapped relative to the tool's perspective.
func (t *subflowTable) findByOutbound(pkt *packetio.Packet) *Subflow {
	for _, sf := range t.flows {
		if sf.DstPort == pkt.SrcPort() && sf.SrcPort == pkt.DstPort() {
			return sf
		}
	}
	return nil
}

// findBySocket matches by local/remote port pair, the socket-level lookup
// spec.md §4.B names alongside the packet-level matchers.
func (t *subflowTable) findBySocket(localPort, remotePort uint16) *Subflow {
	for _, sf := range t.flows {
		if sf.DstPort == remotePort && sf.SrcPort == localPort {
			return sf
		}
	}
	return nil
}

// advanceSeq grows a subflow's cumulative byte count by payloadLen.
func (t *subflowTable) advanceSeq(sf *Subflow, payloadLen uint32) {
	sf.SubflowSeq += payloadLen
}
