package packetio

import "encoding/binary"

// ones complement 16-bit checksum, the same algorithm the source's
// checksum() helper implements (and the one every TCP/IP checksum in the
// corpus uses, e.g. gopacket's own layer checksums).
func onesComplementSum(data []byte) uint32 {
	var sum uint32
	n := len(data)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(data[i : i+2]))
	}
	if n%2 == 1 {
		sum += uint32(data[n-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return sum
}

func foldChecksum(sum uint32) uint16 {
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}

// DSSChecksum computes the MPTCP-DSS checksum over the TCP segment
// (header + payload) folded with the pseudo-fields (dsn, ssn, dll, 0), per
// RFC 6824 §3.3 and spec.md §4.E.3 step 5. segment is the TCP header plus
// payload with the DSS option's checksum field already zeroed.
func DSSChecksum(segment []byte, dsn uint64, ssn uint32, dll uint16) uint16 {
	pseudo := make([]byte, 16)
	binary.BigEndian.PutUint64(pseudo[0:8], dsn)
	binary.BigEndian.PutUint32(pseudo[8:12], ssn)
	binary.BigEndian.PutUint16(pseudo[12:14], dll)
	binary.BigEndian.PutUint16(pseudo[14:16], 0)

	sum := onesComplementSum(segment) + onesComplementSum(pseudo)
	return foldChecksum(sum)
}
