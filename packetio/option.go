package packetio

import "github.com/gopacket/gopacket/layers"

// MPTCPOptionKind is the TCP option kind RFC 6824 reserves for MPTCP (30).
const MPTCPOptionKind = layers.TCPOptionKind(30)

// Option wraps one TCP option's raw bytes, giving the rewriter indexed
// read/write access the way the C source's tagged union
// (tcp_opt_to_modify->data.*) does. OptionData is *layers.TCPOption.Data,
// shared by reference so writes are visible on the packet being rewritten.
type Option struct {
	Kind   layers.TCPOptionKind
	Length uint8 // kind + length + data, i.e. 2 + len(Data)
	Data   []byte
}

// Subtype returns the MPTCP subtype nibble (spec.md §4.E's dispatch key).
// Only meaningful when Kind == MPTCPOptionKind.
func (o Option) Subtype() uint8 {
	if len(o.Data) == 0 {
		return 0xFF
	}
	return o.Data[0] >> 4
}

// Options returns every TCP option present on pkt, in header order, the
// tcp_options_iter primitive from spec.md §6.
func Options(pkt *Packet) []Option {
	opts := make([]Option, 0, len(pkt.TCP.Options))
	for _, o := range pkt.TCP.Options {
		opts = append(opts, Option{Kind: o.OptionType, Length: uint8(len(o.OptionData)) + 2, Data: o.OptionData})
	}
	return opts
}

// FindMPTCP returns the first MPTCP option on pkt, the get_tcp_option
// primitive from spec.md §6 specialized to TCPOPT_MPTCP.
func FindMPTCP(pkt *Packet) (Option, bool) {
	for i, o := range pkt.TCP.Options {
		if o.OptionType == MPTCPOptionKind {
			return Option{Kind: o.OptionType, Length: uint8(len(o.OptionData)) + 2, Data: pkt.TCP.Options[i].OptionData}, true
		}
	}
	return Option{}, false
}

// WriteMPTCP replaces the data bytes of the first MPTCP option on pkt with
// data, in place. The caller is responsible for sizing data to match the
// option's declared length.
func WriteMPTCP(pkt *Packet, data []byte) bool {
	for i, o := range pkt.TCP.Options {
		if o.OptionType == MPTCPOptionKind {
			copy(pkt.TCP.Options[i].OptionData, data)
			return true
		}
	}
	return false
}
