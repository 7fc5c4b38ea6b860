package mptcp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
)

// token32, idsn64, hmac64, and hmac160 are the four pure crypto
// derivations of spec.md §4.D. All stdlib: crypto/sha1 and crypto/hmac are
// the idiomatic choice the corpus itself reaches for whenever it does
// HMAC/SHA1 work at all (scionproto-scion's apna/crypto.go and
// scion-pki/key/fingerprint.go both construct hmac.New(sha1.New, key) /
// sha1.Sum directly); see SPEC_FULL.md §6 and DESIGN.md.

// token32 derives the 32-bit MPTCP token from a connection key: the
// most-significant 32 bits of SHA1(key), per RFC 6824. spec.md §9 Open
// Question 1 flags the source's "least" naming as a red herring; this
// follows the RFC, not the C function name.
func token32(key uint64) uint32 {
	digest := sha1OfKey(key)
	return binary.BigEndian.Uint32(digest[0:4])
}

// idsn64 derives the initial DSN/DACK from a connection key: the
// least-significant 64 bits of SHA1(key).
func idsn64(key uint64) uint64 {
	digest := sha1OfKey(key)
	return binary.BigEndian.Uint64(digest[12:20])
}

func sha1OfKey(key uint64) [20]byte {
	var kb [8]byte
	binary.BigEndian.PutUint64(kb[:], key)
	return sha1.Sum(kb[:])
}

// hmac64 returns the leading 64 bits of HMAC-SHA1 over msg, keyed by the
// 16-byte concatenation keyA‖keyB, with message nA‖nB. The order of both
// the key halves and the message halves is direction-sensitive — callers
// must follow spec.md §4.D's table, not guess.
func hmac64(keyA, keyB uint64, nA, nB uint32) uint64 {
	tag := hmacTag(keyA, keyB, nA, nB)
	return binary.BigEndian.Uint64(tag[0:8])
}

// hmac160 returns the full 20-byte HMAC-SHA1 tag, same key/message layout
// rules as hmac64.
func hmac160(keyA, keyB uint64, nA, nB uint32) [20]byte {
	return hmacTag(keyA, keyB, nA, nB)
}

func hmacTag(keyA, keyB uint64, nA, nB uint32) [20]byte {
	var key [16]byte
	binary.BigEndian.PutUint64(key[0:8], keyA)
	binary.BigEndian.PutUint64(key[8:16], keyB)

	var msg [8]byte
	binary.BigEndian.PutUint32(msg[0:4], nA)
	binary.BigEndian.PutUint32(msg[4:8], nB)

	mac := hmac.New(sha1.New, key[:])
	mac.Write(msg[:])
	var tag [20]byte
	copy(tag[:], mac.Sum(nil))
	return tag
}
