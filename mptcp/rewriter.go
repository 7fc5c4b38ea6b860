package mptcp

import (
	"fmt"

	"github.com/arnaud-mptcp/mptcp-rewriter/packetio"
)

// Engine is the option rewriter (module E): the entry point that iterates
// every TCP option of a script packet and dispatches MPTCP ones to the
// MP_CAPABLE/MP_JOIN/DSS subroutines, reading and updating the session's
// state as it goes. One Engine serves one Session; the host tool creates
// one of each per MPTCP connection under test (spec.md §5: no
// cross-session sharing).
type Engine struct {
	sess *Session
}

// NewEngine binds an Engine to a session.
func NewEngine(sess *Session) *Engine {
	return &Engine{sess: sess}
}

// writeOption stages the freshly marshaled option bytes through the
// session's scratch pool before copying them into pkt's MPTCP option,
// the same borrow/copy/return shape the teacher uses for its own
// ring-pooled payload buffers (lib/pool.go).
func (e *Engine) writeOption(pkt *packetio.Packet, data []byte) bool {
	buf, release := e.sess.bufs.get()
	defer release()
	n := copy(buf.b[:], data)
	return packetio.WriteMPTCP(pkt, buf.b[:n])
}

// Process iterates every TCP option of pkt (the script packet about to be
// sent, for Inbound, or mutated for comparison, for Outbound) and
// dispatches MPTCP options by subtype. live is the captured kernel packet:
// equal to pkt for Inbound, and the real wire capture for Outbound.
//
// Processing is atomic with respect to the session: there are no
// suspension points, and state mutations from an earlier option in this
// same packet are visible to later ones (spec.md §5). The engine performs
// no partial rollback — the first error aborts the packet (spec.md §7).
func (e *Engine) Process(pkt, live *packetio.Packet, dir Direction) error {
	for _, opt := range packetio.Options(pkt) {
		if opt.Kind != packetio.MPTCPOptionKind {
			continue
		}
		var err error
		switch opt.Subtype() {
		case SubtypeMPCapable:
			err = e.processMPCapable(pkt, live, opt, dir)
		case SubtypeMPJoin:
			err = e.processMPJoin(pkt, live, opt, dir)
		case SubtypeDSS:
			err = e.processDSS(pkt, live, opt, dir)
		default:
			err = &OptionError{Reason: fmt.Sprintf("unknown MPTCP subtype %d", opt.Subtype()), Err: ErrBadOption}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
