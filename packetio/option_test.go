package packetio

import (
	"testing"

	"github.com/gopacket/gopacket/layers"
)

func packetWithOptions(opts ...layers.TCPOption) *Packet {
	return &Packet{TCP: &layers.TCP{Options: opts}}
}

func TestOptionsPreservesOrderAndLength(t *testing.T) {
	pkt := packetWithOptions(
		layers.TCPOption{OptionType: layers.TCPOptionKindNop},
		layers.TCPOption{OptionType: MPTCPOptionKind, OptionData: []byte{0x00, 0x00, 0x01, 0x02}},
	)

	opts := Options(pkt)
	if len(opts) != 2 {
		t.Fatalf("Options returned %d options, want 2", len(opts))
	}
	if opts[1].Kind != MPTCPOptionKind {
		t.Fatalf("second option should be the MPTCP one, got kind %v", opts[1].Kind)
	}
	if opts[1].Length != 6 {
		t.Errorf("Length should be len(Data)+2 = 6, got %d", opts[1].Length)
	}
}

func TestOptionSubtypeFromHighNibble(t *testing.T) {
	opt := Option{Data: []byte{0x20}} // subtype 2 = DSS
	if got := opt.Subtype(); got != 2 {
		t.Errorf("Subtype() = %d, want 2", got)
	}
}

func TestOptionSubtypeEmptyData(t *testing.T) {
	opt := Option{Data: nil}
	if got := opt.Subtype(); got != 0xFF {
		t.Errorf("Subtype() on empty data = %d, want 0xFF sentinel", got)
	}
}

func TestFindMPTCPReturnsFirstMatch(t *testing.T) {
	pkt := packetWithOptions(
		layers.TCPOption{OptionType: layers.TCPOptionKindNop},
		layers.TCPOption{OptionType: MPTCPOptionKind, OptionData: []byte{0x01, 0x02}},
	)

	opt, found := FindMPTCP(pkt)
	if !found {
		t.Fatalf("FindMPTCP should find the MPTCP option")
	}
	if opt.Data[0] != 0x01 {
		t.Errorf("FindMPTCP returned the wrong option data: %v", opt.Data)
	}
}

func TestFindMPTCPNotFound(t *testing.T) {
	pkt := packetWithOptions(layers.TCPOption{OptionType: layers.TCPOptionKindNop})
	if _, found := FindMPTCP(pkt); found {
		t.Errorf("FindMPTCP should report not-found when no MPTCP option is present")
	}
}

func TestWriteMPTCPCopiesInPlace(t *testing.T) {
	pkt := packetWithOptions(
		layers.TCPOption{OptionType: MPTCPOptionKind, OptionData: make([]byte, 4)},
	)

	ok := WriteMPTCP(pkt, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	if !ok {
		t.Fatalf("WriteMPTCP should report success when an MPTCP option is present")
	}
	if pkt.TCP.Options[0].OptionData[0] != 0xAA {
		t.Errorf("WriteMPTCP did not update the option's data in place")
	}
}

func TestWriteMPTCPNoMatch(t *testing.T) {
	pkt := packetWithOptions(layers.TCPOption{OptionType: layers.TCPOptionKindNop})
	if WriteMPTCP(pkt, []byte{0x00}) {
		t.Errorf("WriteMPTCP should report failure when no MPTCP option is present")
	}
}
