package packetio

import "encoding/binary"

// SubtypeMPCapable is the MP_CAPABLE MPTCP option subtype, carried in the
// high nibble of the first option data byte (mirrors mptcp.SubtypeMPCapable).
const SubtypeMPCapable uint8 = 0x0

// This file is the Go-native stand-in for the C source's tagged union
// (tcp_opt_to_modify->data.mp_capable / .mp_join / .dss): it knows the
// byte layout RFC 6824 mandates for each MPTCP subtype and marshals/
// unmarshals engine-level field structs into/out of an Option's raw Data
// bytes. Field writes always go through encoding/binary, never through a
// pointer cast, which is exactly the fix spec.md §9 Open Question 4 calls
// for.

// MPCapableFields are the fields carried by an MP_CAPABLE option, both the
// 12-byte SYN/SYN-ACK variant (SenderKey only) and the 20-byte final-ACK
// variant (both keys).
type MPCapableFields struct {
	Version     uint8
	SenderKey   uint64
	ReceiverKey uint64 // only present/meaningful on the final-ACK variant
}

// MarshalMPCapableSYN writes the 10-byte data of the 12-byte SYN/SYN-ACK
// MP_CAPABLE option (subtype+version byte, flags byte, 8-byte key).
func MarshalMPCapableSYN(key uint64) []byte {
	b := make([]byte, 10)
	b[0] = SubtypeMPCapableByte(0)
	b[1] = 0 // flags
	binary.BigEndian.PutUint64(b[2:10], key)
	return b
}

// MarshalMPCapable writes the 18-byte final-ACK MP_CAPABLE data (both
// keys, no flags beyond the header byte).
func MarshalMPCapable(senderKey, receiverKey uint64) []byte {
	b := make([]byte, 18)
	b[0] = SubtypeMPCapableByte(0)
	b[1] = 0
	binary.BigEndian.PutUint64(b[2:10], senderKey)
	binary.BigEndian.PutUint64(b[10:18], receiverKey)
	return b
}

// UnmarshalMPCapableSYNKey reads the 8-byte key out of a 12-byte
// SYN/SYN-ACK MP_CAPABLE option's data.
func UnmarshalMPCapableSYNKey(data []byte) uint64 {
	return binary.BigEndian.Uint64(data[2:10])
}

// SubtypeMPCapableByte packs the MP_CAPABLE subtype into the option's
// first data byte, high nibble subtype / low nibble version.
func SubtypeMPCapableByte(version uint8) byte {
	return byte(SubtypeMPCapable<<4) | (version & 0x0F)
}

// subtypeJoinByte packs the MP_JOIN subtype into the option's first data
// byte; the low nibble carries the B flag (backup) which the engine never
// sets.
func subtypeJoinByte() byte {
	return byte(1 << 4) // SubtypeMPJoin, low nibble 0
}

// MPJoinSYNFields are the fields of the 10-byte MP_JOIN SYN data (the
// opening packet of a new subflow).
type MPJoinSYNFields struct {
	AddressID     uint8
	ReceiverToken uint32
	SenderRandom  uint32
}

func MarshalMPJoinSYN(f MPJoinSYNFields) []byte {
	b := make([]byte, 10)
	b[0] = subtypeJoinByte()
	b[1] = f.AddressID
	binary.BigEndian.PutUint32(b[2:6], f.ReceiverToken)
	binary.BigEndian.PutUint32(b[6:10], f.SenderRandom)
	return b
}

func UnmarshalMPJoinSYN(data []byte) MPJoinSYNFields {
	return MPJoinSYNFields{
		AddressID:     data[1],
		ReceiverToken: binary.BigEndian.Uint32(data[2:6]),
		SenderRandom:  binary.BigEndian.Uint32(data[6:10]),
	}
}

// MPJoinSYNACKFields are the fields of the 14-byte MP_JOIN SYN/ACK data.
type MPJoinSYNACKFields struct {
	AddressID    uint8
	SenderRandom uint32
	SenderHMAC   uint64 // truncated to the leading 8 bytes of the full tag
}

func MarshalMPJoinSYNACK(f MPJoinSYNACKFields) []byte {
	b := make([]byte, 14)
	b[0] = subtypeJoinByte()
	b[1] = f.AddressID
	binary.BigEndian.PutUint32(b[2:6], f.SenderRandom)
	binary.BigEndian.PutUint64(b[6:14], f.SenderHMAC)
	return b
}

func UnmarshalMPJoinSYNACK(data []byte) MPJoinSYNACKFields {
	return MPJoinSYNACKFields{
		AddressID:    data[1],
		SenderRandom: binary.BigEndian.Uint32(data[2:6]),
		SenderHMAC:   binary.BigEndian.Uint64(data[6:14]),
	}
}

// MPJoinACKFields are the fields of the 22-byte MP_JOIN ACK data: 2
// reserved bytes, then the full 20-byte HMAC-SHA1 tag.
type MPJoinACKFields struct {
	SenderHMAC [20]byte
}

func MarshalMPJoinACK(f MPJoinACKFields) []byte {
	b := make([]byte, 22)
	b[0] = subtypeJoinByte()
	b[1] = 0
	copy(b[2:22], f.SenderHMAC[:])
	return b
}

// DSSFields are the fields of a DSS option, covering the flag combinations
// spec.md §4.E.3 and §9 describe: a DACK, a DSN with or without its
// checksum, or both.
type DSSFields struct {
	HasDACK       bool
	HasDSN        bool
	HasChecksum   bool // only consulted when HasDSN
	DataAck       uint64
	DataSeqNumber uint64
	SubflowSeqNum uint32
	DataLevelLen  uint16
	Checksum      uint16
}

// DSS flag bits, packed into the low 5 bits of the option's second data
// byte (the first data byte carries the subtype nibble, like every other
// MPTCP subtype — Option.Subtype() always reads data[0]>>4).
const (
	dssFlagF = 1 << 0 // DATA_FIN
	dssFlagm = 1 << 1 // DSN is 8 octets
	dssFlagM = 1 << 2 // DSN present
	dssFlaga = 1 << 3 // DACK is 8 octets
	dssFlagA = 1 << 4 // DACK present
)

func subtypeDSSByte() byte {
	return byte(2 << 4) // SubtypeDSS, low nibble reserved
}

// MarshalDSS builds a DSS option's data bytes. Both DSN and DACK are
// always written as 8-octet fields here; the engine only ever deals in
// 64-bit sequence space (spec.md §3).
func MarshalDSS(f DSSFields) []byte {
	flags := byte(dssFlagm) // DSN always 8-octet when present
	if f.HasDSN {
		flags |= dssFlagM
	}
	if f.HasDACK {
		flags |= dssFlagA | dssFlaga
	}

	size := 2
	if f.HasDACK {
		size += 8
	}
	if f.HasDSN {
		size += 8 + 4 + 2
		if f.HasChecksum {
			size += 2
		}
	}
	b := make([]byte, size)
	b[0] = subtypeDSSByte()
	b[1] = flags
	off := 2
	if f.HasDACK {
		binary.BigEndian.PutUint64(b[off:off+8], f.DataAck)
		off += 8
	}
	if f.HasDSN {
		binary.BigEndian.PutUint64(b[off:off+8], f.DataSeqNumber)
		off += 8
		binary.BigEndian.PutUint32(b[off:off+4], f.SubflowSeqNum)
		off += 4
		binary.BigEndian.PutUint16(b[off:off+2], f.DataLevelLen)
		off += 2
		if f.HasChecksum {
			binary.BigEndian.PutUint16(b[off:off+2], f.Checksum)
			off += 2
		}
	}
	return b
}

// UnmarshalDSS reads a DSS option's data bytes back into DSSFields. The
// raw DSN/DACK values returned are whatever was encoded literally (the
// script's raw_dsn/raw_dack, before the engine adds initial_dsn/
// initial_dack).
func UnmarshalDSS(data []byte) DSSFields {
	flags := data[1]
	f := DSSFields{
		HasDACK:     flags&dssFlagA != 0,
		HasDSN:      flags&dssFlagM != 0,
		HasChecksum: false,
	}
	off := 2
	if f.HasDACK {
		f.DataAck = binary.BigEndian.Uint64(data[off : off+8])
		off += 8
	}
	if f.HasDSN {
		f.DataSeqNumber = binary.BigEndian.Uint64(data[off : off+8])
		off += 8
		f.SubflowSeqNum = binary.BigEndian.Uint32(data[off : off+4])
		off += 4
		f.DataLevelLen = binary.BigEndian.Uint16(data[off : off+2])
		off += 2
		if len(data) > off {
			f.HasChecksum = true
			f.Checksum = binary.BigEndian.Uint16(data[off : off+2])
		}
	}
	return f
}
