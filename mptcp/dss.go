package mptcp

import (
	"github.com/arnaud-mptcp/mptcp-rewriter/packetio"
)

// processDSS implements the DSS subroutine (spec.md §4.E.3). Only the
// inbound path is specified; outbound is a documented no-op (spec.md §9
// Open Question 3): the engine never asserts the kernel's own DSS fields
// against expected derivations.
func (e *Engine) processDSS(pkt, live *packetio.Packet, opt packetio.Option, dir Direction) error {
	if dir == Outbound {
		return nil
	}

	fields := packetio.UnmarshalDSS(opt.Data)
	payloadLen := pkt.PayloadLength()

	if fields.HasDSN {
		initialDSN, err := e.sess.InitialDSN()
		if err != nil {
			return err
		}

		rawDSN := fields.DataSeqNumber
		if fields.HasChecksum {
			fields.DataSeqNumber = initialDSN + rawDSN
		} else {
			// works for payload length 0 or 1 — a packetdrill scripting
			// convention, not a protocol rule (spec.md §9 Open Question 2).
			fields.DataSeqNumber = initialDSN + rawDSN + 1
		}
		fields.DataLevelLen = payloadLen

		sf := e.sess.subflows.findByInbound(pkt)
		if sf == nil {
			return &OptionError{Reason: "DSS: no subflow matches the inbound 4-tuple", Err: ErrNotFound}
		}
		fields.SubflowSeqNum = sf.SubflowSeq
		e.sess.subflows.advanceSeq(sf, uint32(payloadLen))

		if fields.HasChecksum {
			fields.Checksum = 0
			segment := pkt.TCP.Contents
			fields.Checksum = packetio.DSSChecksum(segment, fields.DataSeqNumber, fields.SubflowSeqNum, fields.DataLevelLen)
		}
	}

	if fields.HasDACK {
		initialDACK, err := e.sess.InitialDACK()
		if err != nil {
			return err
		}
		fields.DataAck = initialDACK + fields.DataAck
	}

	e.writeOption(pkt, packetio.MarshalDSS(fields))
	return nil
}
