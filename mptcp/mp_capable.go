package mptcp

import (
	"fmt"

	"github.com/arnaud-mptcp/mptcp-rewriter/packetio"
)

// processMPCapable implements the MP_CAPABLE subroutine (spec.md §4.E.1):
// dispatch on (length, SYN, ACK, direction), drawing or extracting the
// connection's two keys and, once both are known, deriving initial_dsn/
// initial_dack and recording the primary subflow.
func (e *Engine) processMPCapable(pkt, live *packetio.Packet, opt packetio.Option, dir Direction) error {
	syn, ack := pkt.SYN(), pkt.ACK()

	switch {
	case opt.Length == LenMPCapableSYN && syn && dir == Inbound:
		// Covers both !ACK and ACK: the SYN-ACK case is synthesized on the
		// inbound path too (spec.md §4.E.1 table, rows 1-2).
		if err := e.genLocalKeyIfUnset(); err != nil {
			return err
		}
		key, err := e.sess.bindings.consumeNextKey()
		if err != nil {
			return err
		}
		e.writeOption(pkt, packetio.MarshalMPCapableSYN(key))
		return nil

	case opt.Length == LenMPCapableSYN && syn && !ack && dir == Outbound:
		if err := e.extractPeerKey(live); err != nil {
			return err
		}
		key, err := e.sess.bindings.consumeNextKey()
		if err != nil {
			return err
		}
		e.writeOption(pkt, packetio.MarshalMPCapableSYN(key))
		return nil

	case opt.Length == LenMPCapable && !syn && ack:
		senderKey, err := e.sess.bindings.consumeNextKey()
		if err != nil {
			return err
		}
		receiverKey, err := e.sess.bindings.consumeNextKey()
		if err != nil {
			return err
		}
		e.writeOption(pkt, packetio.MarshalMPCapable(senderKey, receiverKey))

		if err := e.sess.deriveInitialsOnce(); err != nil {
			return err
		}

		switch dir {
		case Inbound:
			e.sess.subflows.createInbound(pkt, e.sess)
		case Outbound:
			e.sess.subflows.createOutboundPrimary(live)
		}
		return nil

	default:
		return &OptionError{
			Reason: fmt.Sprintf("MP_CAPABLE: no case matches length=%d syn=%v ack=%v dir=%s", opt.Length, syn, ack, dir),
			Err:    ErrBadOption,
		}
	}
}

// genLocalKeyIfUnset implements spec.md §4.E.1's gen_local_key_if_unset:
// adopt a script-defined key if the pending name is already bound as one,
// otherwise draw a fresh random key and bind the pending name to it.
func (e *Engine) genLocalKeyIfUnset() error {
	name, ok := e.sess.bindings.peek()
	if !ok {
		return &StateError{Reason: "no pending variable name for local key", Err: ErrQueueEmpty}
	}

	if key, ok := e.sess.bindings.isScriptDefinedKey(name); ok {
		e.sess.setLocalKey(key)
		return nil
	}

	if !e.sess.localKeySet {
		e.sess.setLocalKey(e.sess.rand.Uint64())
		e.sess.bindings.bindKeyRef(name, localKeySlot)
	}
	return nil
}

// extractPeerKey implements spec.md §4.E.1's extract_peer_key: adopt a
// script-defined peer key if declared, otherwise adopt the key byte
// pattern observed on the live kernel packet and bind the pending name to
// the session's peer-key slot.
//
// Tie-break: a script-defined value always wins over both engine-generated
// and observed values.
func (e *Engine) extractPeerKey(live *packetio.Packet) error {
	name, ok := e.sess.bindings.peek()
	if !ok {
		return &StateError{Reason: "no pending variable name for peer key", Err: ErrQueueEmpty}
	}

	if key, ok := e.sess.bindings.isScriptDefinedKey(name); ok {
		e.sess.setPeerKey(key)
		return nil
	}

	if !e.sess.peerKeySet {
		liveOpt, found := packetio.FindMPTCP(live)
		if !found {
			return &OptionError{Reason: "outbound MP_CAPABLE SYN has no live MPTCP option to extract a key from", Err: ErrBadOption}
		}
		observedKey := packetio.UnmarshalMPCapableSYNKey(liveOpt.Data)
		e.sess.setPeerKey(observedKey)

		name, ok = e.sess.bindings.peek()
		if !ok {
			return &StateError{Reason: "no pending variable name to bind the peer key to", Err: ErrQueueEmpty}
		}
		e.sess.bindings.bindKeyRef(name, peerKeySlot)
	}
	return nil
}
