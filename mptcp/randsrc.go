package mptcp

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
)

// Source draws the random values the engine needs: a fresh 64-bit key when
// the script doesn't supply one, and a fresh 32-bit nonce for every new
// subflow. Randomness is deliberately a collaborator passed into a Session
// rather than a package-level global (spec.md §9 flags the source's
// process-wide singleton as a reimplementation hazard).
type Source interface {
	Uint32() uint32
	Uint64() uint64
}

// cryptoSource draws straight from crypto/rand, the same way the teacher's
// packet.go generates its initial sequence numbers
// (binary.Read(rand.Reader, binary.BigEndian, &isn)).
type cryptoSource struct{}

// NewSource returns the default randomness source. If seed is non-zero, a
// deterministic math/rand source is used instead so that tests can assert
// exact key/nonce values; this is config.Config.DeterministicSeed's escape
// hatch.
func NewSource(seed int64) Source {
	if seed != 0 {
		return &seededSource{r: mathrand.New(mathrand.NewSource(seed))}
	}
	return cryptoSource{}
}

func (cryptoSource) Uint32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("mptcp: crypto/rand unavailable: %v", err))
	}
	return binary.BigEndian.Uint32(b[:])
}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("mptcp: crypto/rand unavailable: %v", err))
	}
	return binary.BigEndian.Uint64(b[:])
}

type seededSource struct {
	r *mathrand.Rand
}

func (s *seededSource) Uint32() uint32 {
	return s.r.Uint32()
}

func (s *seededSource) Uint64() uint64 {
	return s.r.Uint64()
}
