package mptcp

import (
	"fmt"

	"github.com/arnaud-mptcp/mptcp-rewriter/packetio"
)

// processMPJoin implements the MP_JOIN subroutine (spec.md §4.E.2): six
// cases dispatched on (direction, SYN, ACK, option length), opening new
// subflows and computing the HMAC-SHA1 authenticators that let the kernel
// validate the tool's side of the handshake.
func (e *Engine) processMPJoin(pkt, live *packetio.Packet, opt packetio.Option, dir Direction) error {
	syn, ack := pkt.SYN(), pkt.ACK()

	switch {
	case dir == Inbound && !ack && syn && opt.Length == LenMPJoinSYN:
		return e.mpJoinCase1OpenInboundSubflow(pkt, opt)

	case dir == Outbound && ack && syn && opt.Length == LenMPJoinSYNACK:
		return e.mpJoinCase2RespondSynAck(pkt, live, opt)

	case dir == Inbound && ack && !syn && opt.Length == LenMPJoinACK:
		return e.mpJoinCase3FinalAck(pkt, opt)

	case dir == Outbound && syn && !ack && opt.Length == LenMPJoinSYN:
		return e.mpJoinCase4OpenOutboundSubflow(pkt, live, opt)

	case dir == Inbound && syn && ack && opt.Length == LenMPJoinSYNACK:
		return e.mpJoinCase5RespondSynAck(pkt, opt)

	case dir == Outbound && ack && !syn && opt.Length == LenMPJoinACK:
		return e.mpJoinCase6FinalAck(pkt, opt)

	default:
		return &OptionError{
			Reason: fmt.Sprintf("MP_JOIN: no case matches dir=%s syn=%v ack=%v length=%d", dir, syn, ack, opt.Length),
			Err:    ErrBadOption,
		}
	}
}

// Case 1: IN, SYN, !ACK, len=JOIN_SYN — open a new inbound subflow.
func (e *Engine) mpJoinCase1OpenInboundSubflow(pkt *packetio.Packet, opt packetio.Option) error {
	if !e.sess.peerKeySet {
		return &StateError{Reason: "MP_JOIN SYN before peer key is known", Err: ErrKeysNotSet}
	}
	sf := e.sess.subflows.createInbound(pkt, e.sess)

	fields := packetio.MPJoinSYNFields{
		AddressID:     sf.LocalAddrID,
		ReceiverToken: token32(e.sess.peerKey),
		SenderRandom:  sf.LocalRand,
	}
	e.writeOption(pkt, packetio.MarshalMPJoinSYN(fields))
	return nil
}

// Case 2: OUT, SYN, ACK, len=JOIN_SYN_ACK — match the subflow opened in
// case 1 by its outbound 4-tuple, absorb the kernel's nonce/address-id,
// and synthesize the SYN/ACK HMAC with key order peer_key‖local_key and
// message order peer_rand‖local_rand.
func (e *Engine) mpJoinCase2RespondSynAck(pkt, live *packetio.Packet, opt packetio.Option) error {
	sf := e.sess.subflows.findByOutbound(live)
	if sf == nil {
		return &OptionError{Reason: "MP_JOIN SYN/ACK: no subflow matches the outbound 4-tuple", Err: ErrNotFound}
	}
	liveOpt, found := packetio.FindMPTCP(live)
	if !found {
		return &OptionError{Reason: "MP_JOIN SYN/ACK: live packet carries no MPTCP option", Err: ErrBadOption}
	}
	liveFields := packetio.UnmarshalMPJoinSYNACK(liveOpt.Data)

	sf.PeerAddrID = liveFields.AddressID
	sf.PeerRand = liveFields.SenderRandom

	hmac := hmac64(e.sess.peerKey, e.sess.localKey, sf.PeerRand, sf.LocalRand)

	fields := packetio.MPJoinSYNACKFields{
		AddressID:    liveFields.AddressID,
		SenderRandom: liveFields.SenderRandom,
		SenderHMAC:   hmac,
	}
	e.writeOption(pkt, packetio.MarshalMPJoinSYNACK(fields))
	return nil
}

// Case 3: IN, ACK, !SYN, len=JOIN_ACK — match by inbound 4-tuple, write
// the full 20-byte HMAC with key order local_key‖peer_key and message
// order local_rand‖peer_rand.
func (e *Engine) mpJoinCase3FinalAck(pkt *packetio.Packet, opt packetio.Option) error {
	sf := e.sess.subflows.findByInbound(pkt)
	if sf == nil {
		return &OptionError{Reason: "MP_JOIN ACK: no subflow matches the inbound 4-tuple", Err: ErrNotFound}
	}

	tag := hmac160(e.sess.localKey, e.sess.peerKey, sf.LocalRand, sf.PeerRand)
	e.writeOption(pkt, packetio.MarshalMPJoinACK(packetio.MPJoinACKFields{SenderHMAC: tag}))
	return nil
}

// Case 4: OUT, SYN, !ACK, len=JOIN_SYN — the kernel opened a new subflow;
// create its outbound-side record and write the tool's echo of the
// address-id, peer_rand, and receiver token.
func (e *Engine) mpJoinCase4OpenOutboundSubflow(pkt, live *packetio.Packet, opt packetio.Option) error {
	if !e.sess.peerKeySet {
		return &StateError{Reason: "MP_JOIN SYN (outbound) before peer key is known", Err: ErrKeysNotSet}
	}
	liveOpt, found := packetio.FindMPTCP(live)
	if !found {
		return &OptionError{Reason: "MP_JOIN SYN (outbound): live packet carries no MPTCP option", Err: ErrBadOption}
	}
	liveFields := packetio.UnmarshalMPJoinSYN(liveOpt.Data)

	sf := e.sess.subflows.createOutboundJoin(live, liveFields.SenderRandom, liveFields.AddressID)

	fields := packetio.MPJoinSYNFields{
		AddressID:     sf.PeerAddrID,
		ReceiverToken: token32(e.sess.peerKey),
		SenderRandom:  sf.PeerRand,
	}
	e.writeOption(pkt, packetio.MarshalMPJoinSYN(fields))
	return nil
}

// Case 5: IN, SYN, ACK, len=JOIN_SYN_ACK — match the inbound subflow
// created in case 4, draw a fresh local_rand, assign a new local_addr_id,
// and write the SYN/ACK HMAC with key order local_key‖peer_key and
// message order local_rand‖peer_rand.
func (e *Engine) mpJoinCase5RespondSynAck(pkt *packetio.Packet, opt packetio.Option) error {
	sf := e.sess.subflows.findByInbound(pkt)
	if sf == nil {
		return &OptionError{Reason: "MP_JOIN SYN/ACK (inbound): no subflow matches the 4-tuple", Err: ErrNotFound}
	}

	sf.LocalRand = e.sess.rand.Uint32()
	sf.LocalAddrID = e.sess.nextAddrID()

	hmac := hmac64(e.sess.localKey, e.sess.peerKey, sf.LocalRand, sf.PeerRand)

	fields := packetio.MPJoinSYNACKFields{
		AddressID:    sf.LocalAddrID,
		SenderRandom: sf.LocalRand,
		SenderHMAC:   hmac,
	}
	e.writeOption(pkt, packetio.MarshalMPJoinSYNACK(fields))
	return nil
}

// Case 6: OUT, ACK, !SYN, len=JOIN_ACK — match by outbound 4-tuple, write
// the full 20-byte HMAC with key order peer_key‖local_key and message
// order peer_rand‖local_rand.
func (e *Engine) mpJoinCase6FinalAck(pkt *packetio.Packet, opt packetio.Option) error {
	sf := e.sess.subflows.findByOutbound(pkt)
	if sf == nil {
		return &OptionError{Reason: "MP_JOIN ACK (outbound): no subflow matches the 4-tuple", Err: ErrNotFound}
	}

	tag := hmac160(e.sess.peerKey, e.sess.localKey, sf.PeerRand, sf.LocalRand)
	e.writeOption(pkt, packetio.MarshalMPJoinACK(packetio.MPJoinACKFields{SenderHMAC: tag}))
	return nil
}
