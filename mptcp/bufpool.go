package mptcp

import (
	"log"

	rp "github.com/Clouded-Sabre/ringpool/lib"
)

// scratchBufLen is sized for the largest option data the engine ever
// stages: 26 bytes for a DSS carrying a DACK, a DSN and a checksum.
const scratchBufLen = 32

// scratchBuf is the ring pool's pooled element type, the same role
// lib.Payload plays for the teacher's packet buffers.
type scratchBuf struct {
	b [scratchBufLen]byte
}

// newScratchBuf is the ring pool element factory, mirroring lib.NewPayload's
// signature (variadic params, rp.DataInterface return).
func newScratchBuf(params ...interface{}) rp.DataInterface {
	return &scratchBuf{}
}

func (s *scratchBuf) Reset() {
	s.b = [scratchBufLen]byte{}
}

// PrintContent implements lib.DataInterface.
func (s *scratchBuf) PrintContent() {
	log.Printf("scratchBuf: %x", s.b)
}

// scratchPool hands out zeroed scratch buffers in which Engine.writeOption
// stages each marshaled option before copying it into the packet. The
// crypto derivations in crypto.go do not use it. Pooling is a performance nicety here, not a
// correctness requirement: sessions only ever have O(10) subflows
// (spec.md §4.B), so a small fixed pool is plenty.
type scratchPool struct {
	pool *rp.RingPool
}

func newScratchPool(size int) *scratchPool {
	if size <= 0 {
		size = 32
	}
	return &scratchPool{pool: rp.NewRingPool("scratchPool", size, newScratchBuf, scratchBufLen)}
}

// get borrows a zeroed scratch buffer and a release func to return it.
func (p *scratchPool) get() (*scratchBuf, func()) {
	el := p.pool.GetElement()
	if el == nil {
		log.Println("mptcp: scratch pool exhausted, allocating transient buffer")
		return &scratchBuf{}, func() {}
	}
	buf, ok := el.Data.(*scratchBuf)
	if !ok {
		log.Println("mptcp: scratch pool returned unexpected element type")
		return &scratchBuf{}, func() {}
	}
	buf.Reset()
	return buf, func() { p.pool.ReturnElement(el) }
}
