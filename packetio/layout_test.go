package packetio

import "testing"

func TestMPCapableSYNRoundTrip(t *testing.T) {
	const key = 0x1122334455667788

	data := MarshalMPCapableSYN(key)
	if len(data) != 10 {
		t.Fatalf("MarshalMPCapableSYN length = %d, want 10", len(data))
	}
	if got := UnmarshalMPCapableSYNKey(data); got != key {
		t.Errorf("UnmarshalMPCapableSYNKey = %x, want %x", got, key)
	}
}

func TestMPCapableFinalACKLayout(t *testing.T) {
	data := MarshalMPCapable(1, 2)
	if len(data) != 18 {
		t.Fatalf("MarshalMPCapable length = %d, want 18", len(data))
	}
}

func TestMPJoinSYNRoundTrip(t *testing.T) {
	want := MPJoinSYNFields{AddressID: 4, ReceiverToken: 0xdeadbeef, SenderRandom: 0xcafef00d}
	data := MarshalMPJoinSYN(want)
	if len(data) != 10 {
		t.Fatalf("MarshalMPJoinSYN length = %d, want 10", len(data))
	}
	got := UnmarshalMPJoinSYN(data)
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestMPJoinSYNACKRoundTrip(t *testing.T) {
	want := MPJoinSYNACKFields{AddressID: 9, SenderRandom: 0x11223344, SenderHMAC: 0x0102030405060708}
	data := MarshalMPJoinSYNACK(want)
	if len(data) != 14 {
		t.Fatalf("MarshalMPJoinSYNACK length = %d, want 14", len(data))
	}
	got := UnmarshalMPJoinSYNACK(data)
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestMPJoinACKLayout(t *testing.T) {
	var tag [20]byte
	for i := range tag {
		tag[i] = byte(i)
	}
	data := MarshalMPJoinACK(MPJoinACKFields{SenderHMAC: tag})
	if len(data) != 22 {
		t.Fatalf("MarshalMPJoinACK length = %d, want 22", len(data))
	}
	for i := 0; i < 20; i++ {
		if data[2+i] != tag[i] {
			t.Fatalf("HMAC bytes not written at the expected offset")
		}
	}
}

func TestDSSRoundTripDACKOnly(t *testing.T) {
	want := DSSFields{HasDACK: true, DataAck: 0x1234567890abcdef}
	data := MarshalDSS(want)
	got := UnmarshalDSS(data)

	if got.HasDACK != true || got.DataAck != want.DataAck {
		t.Errorf("DACK-only round trip mismatch: got %+v, want %+v", got, want)
	}
	if got.HasDSN {
		t.Errorf("DACK-only option should not report HasDSN")
	}
}

func TestDSSRoundTripDSNWithChecksum(t *testing.T) {
	want := DSSFields{
		HasDSN:        true,
		HasChecksum:   true,
		DataSeqNumber: 0xaaaabbbbccccdddd,
		SubflowSeqNum: 42,
		DataLevelLen:  100,
		Checksum:      0xbeef,
	}
	data := MarshalDSS(want)
	got := UnmarshalDSS(data)

	if got.DataSeqNumber != want.DataSeqNumber || got.SubflowSeqNum != want.SubflowSeqNum ||
		got.DataLevelLen != want.DataLevelLen || got.Checksum != want.Checksum {
		t.Errorf("DSN+checksum round trip mismatch: got %+v, want %+v", got, want)
	}
	if !got.HasChecksum {
		t.Errorf("UnmarshalDSS should infer HasChecksum from the option's length")
	}
}

func TestDSSRoundTripDSNWithoutChecksum(t *testing.T) {
	want := DSSFields{
		HasDSN:        true,
		DataSeqNumber: 0x1111111111111111,
		SubflowSeqNum: 7,
		DataLevelLen:  10,
	}
	data := MarshalDSS(want)
	got := UnmarshalDSS(data)

	if got.HasChecksum {
		t.Errorf("UnmarshalDSS should not invent a checksum when the option carries none")
	}
	if got.DataSeqNumber != want.DataSeqNumber {
		t.Errorf("DataSeqNumber = %x, want %x", got.DataSeqNumber, want.DataSeqNumber)
	}
}

func TestDSSRoundTripBothDACKAndDSN(t *testing.T) {
	want := DSSFields{
		HasDACK:       true,
		DataAck:       0x2222,
		HasDSN:        true,
		DataSeqNumber: 0x3333,
		SubflowSeqNum: 1,
		DataLevelLen:  5,
	}
	data := MarshalDSS(want)
	got := UnmarshalDSS(data)

	if got.DataAck != want.DataAck || got.DataSeqNumber != want.DataSeqNumber {
		t.Errorf("combined DACK+DSN round trip mismatch: got %+v, want %+v", got, want)
	}
}
